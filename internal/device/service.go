package device

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
)

// Service orchestrates the device lifecycle: payload validation, name
// resolution, policy evaluation, then persistence, in that order.
type Service struct {
	repo    Repository
	tenants TenantDirectory
	groups  GroupResolver
	engine  *authz.Engine
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a device lifecycle service.
func NewService(repo Repository, tenants TenantDirectory, groups GroupResolver, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		tenants: tenants,
		groups:  groups,
		engine:  engine,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// UpdateInput carries caller-supplied fields for device updates. Nil
// fields are left unchanged; ownership fields are not updatable.
type UpdateInput struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	Note     *string `json:"note,omitempty"`
}

// Create validates, resolves, authorizes, and persists a new device.
//
// Validation runs first: an unknown tenant or group name fails as a
// ValidationError before any policy check. The authorization then tests
// membership in the resolved owner group plus the can_post_devices
// capability; a denial surfaces as a DeniedError with a single collapsed
// reason. The modified-by field records the acting principal, never a
// payload value.
func (s *Service) Create(ctx context.Context, p *auth.Principal, input CreateInput) (*Device, error) {
	resolved, err := resolveCreate(ctx, s.tenants, s.groups, input)
	if err != nil {
		return nil, err
	}

	decision, err := s.engine.AuthorizeDeviceCreate(ctx, p, resolved.owner.ID)
	if err != nil {
		return nil, fmt.Errorf("authorizing device create: %w", err)
	}
	if !decision.Allowed {
		return nil, authz.ErrDenied(decision)
	}

	d := &Device{
		Name:         resolved.name,
		IsActive:     resolved.isActive,
		TenantID:     resolved.tenant.ID,
		OwnerGroupID: resolved.owner.ID,
		Note:         resolved.note,
		LastModified: s.now(),
		ModifiedBy:   p.ID,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}

	s.logger.Info("device created",
		"device_id", d.ID,
		"owner_group_id", d.OwnerGroupID,
		"tenant_id", d.TenantID,
		"created_by", p.Username,
	)
	return d, nil
}

// Get retrieves a device. Reads are open to every principal.
func (s *Service) Get(ctx context.Context, p *auth.Principal, id string) (*Device, error) {
	if d := s.engine.AuthorizeDeviceAccess(p, authz.ActionRead, true); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}
	return s.repo.GetByID(ctx, id)
}

// List retrieves the devices visible to the principal: those owned by
// the groups the principal belongs to. Anonymous principals and staff
// without memberships both see an empty list.
func (s *Service) List(ctx context.Context, p *auth.Principal) ([]Device, error) {
	scope, err := s.engine.VisibleDeviceScope(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("resolving device scope: %w", err)
	}
	return s.repo.ListByOwnerGroups(ctx, scope)
}

// Update applies a partial update. Any authenticated principal may
// update any device; ownership is not re-checked here.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id string, input UpdateInput) (*Device, error) {
	if d := s.engine.AuthorizeDeviceAccess(p, authz.ActionUpdate, false); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		d.Name = *input.Name
	}
	if input.IsActive != nil {
		d.IsActive = *input.IsActive
	}
	if input.Note != nil {
		d.Note = *input.Note
	}
	d.LastModified = s.now()
	d.ModifiedBy = p.ID

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("updating device: %w", err)
	}

	s.logger.Info("device updated", "device_id", d.ID, "updated_by", p.Username)
	return d, nil
}

// Delete removes a device. Any authenticated principal may delete any
// device; ownership is not re-checked here.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if d := s.engine.AuthorizeDeviceAccess(p, authz.ActionDelete, false); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("device deleted", "device_id", id, "deleted_by", p.Username)
	return nil
}
