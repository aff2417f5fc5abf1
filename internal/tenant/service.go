package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
)

// Service applies the tenant policy before touching persistence.
type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

// NewService creates a tenant lifecycle service.
func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, engine: engine, logger: logger}
}

// CreateInput carries caller-supplied fields for tenant creation.
type CreateInput struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UpdateInput carries caller-supplied fields for tenant updates. Nil
// fields are left unchanged.
type UpdateInput struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Create authorizes and persists a new tenant. Only staff principals may
// create tenants; holding a capability through a group is not enough.
func (s *Service) Create(ctx context.Context, p *auth.Principal, input CreateInput) (*Tenant, error) {
	if d := s.engine.AuthorizeTenantAction(p, authz.ActionCreate); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}

	if err := ValidateName(input.Name); err != nil {
		return nil, err
	}

	t := &Tenant{
		Name:     input.Name,
		IsActive: true,
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("creating tenant: %w", err)
	}

	s.logger.Info("tenant created", "tenant_id", t.ID, "name", t.Name, "created_by", p.Username)
	return t, nil
}

// Get retrieves a tenant. Reads are open to every principal, anonymous
// included.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id string) (*Tenant, error) {
	if d := s.engine.AuthorizeTenantAction(p, authz.ActionRead); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}
	return s.repo.GetByID(ctx, id)
}

// List retrieves all tenants. Reads are open to every principal.
func (s *Service) List(ctx context.Context, p *auth.Principal) ([]Tenant, error) {
	if d := s.engine.AuthorizeTenantAction(p, authz.ActionRead); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}
	return s.repo.List(ctx)
}

// Update authorizes and applies a partial update. Staff only.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id string, input UpdateInput) (*Tenant, error) {
	if d := s.engine.AuthorizeTenantAction(p, authz.ActionUpdate); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.IsActive != nil {
		t.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("updating tenant: %w", err)
	}

	s.logger.Info("tenant updated", "tenant_id", t.ID, "updated_by", p.Username)
	return t, nil
}

// Delete authorizes and removes a tenant. Staff only. Owned groups and
// devices are removed with it.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if d := s.engine.AuthorizeTenantAction(p, authz.ActionDelete); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("tenant deleted", "tenant_id", id, "deleted_by", p.Username)
	return nil
}
