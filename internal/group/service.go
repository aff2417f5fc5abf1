package group

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
)

// Service applies the group-administration policy before touching
// persistence. Group management is staff-only; reads are open.
type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

// NewService creates a group lifecycle service.
func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{repo: repo, engine: engine, logger: logger}
}

// CreateInput carries caller-supplied fields for group creation.
type CreateInput struct {
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
	Active   *bool  `json:"active,omitempty"`
}

// UpdateInput carries caller-supplied fields for group updates. Nil
// fields are left unchanged.
type UpdateInput struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Create authorizes and persists a new group.
func (s *Service) Create(ctx context.Context, p *auth.Principal, input CreateInput) (*Group, error) {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}

	g := &Group{
		Name:     input.Name,
		TenantID: input.TenantID,
		Active:   true,
	}
	if input.Active != nil {
		g.Active = *input.Active
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("group created", "group_id", g.ID, "tenant_id", g.TenantID, "name", g.Name, "created_by", p.Username)
	return g, nil
}

// Get retrieves a group by id.
func (s *Service) Get(ctx context.Context, id string) (*Group, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves groups, optionally filtered by tenant.
func (s *Service) List(ctx context.Context, tenantID string) ([]Group, error) {
	return s.repo.List(ctx, tenantID)
}

// Update authorizes and applies a partial update.
func (s *Service) Update(ctx context.Context, p *auth.Principal, id string, input UpdateInput) (*Group, error) {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return nil, authz.ErrDenied(d)
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		g.Name = *input.Name
	}
	if input.Active != nil {
		g.Active = *input.Active
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("group updated", "group_id", g.ID, "updated_by", p.Username)
	return g, nil
}

// Delete authorizes and removes a group.
func (s *Service) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("group deleted", "group_id", id, "deleted_by", p.Username)
	return nil
}

// AddMember authorizes and records a membership.
func (s *Service) AddMember(ctx context.Context, p *auth.Principal, groupID, userID string) error {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.AddMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("adding member: %w", err)
	}

	s.logger.Info("group member added", "group_id", groupID, "user_id", userID, "added_by", p.Username)
	return nil
}

// RemoveMember authorizes and removes a membership.
func (s *Service) RemoveMember(ctx context.Context, p *auth.Principal, groupID, userID string) error {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if err := s.repo.RemoveMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	s.logger.Info("group member removed", "group_id", groupID, "user_id", userID, "removed_by", p.Username)
	return nil
}

// Members returns the user ids belonging to a group.
func (s *Service) Members(ctx context.Context, groupID string) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.MemberIDs(ctx, groupID)
}

// GrantCapability authorizes and attaches a capability to a group.
func (s *Service) GrantCapability(ctx context.Context, p *auth.Principal, groupID, capability string) error {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.GrantCapability(ctx, groupID, capability); err != nil {
		return err
	}

	s.logger.Info("capability granted", "group_id", groupID, "capability", capability, "granted_by", p.Username)
	return nil
}

// RevokeCapability authorizes and removes a capability grant.
func (s *Service) RevokeCapability(ctx context.Context, p *auth.Principal, groupID, capability string) error {
	if d := s.engine.AuthorizeGroupManage(p); !d.Allowed {
		return authz.ErrDenied(d)
	}

	if err := s.repo.RevokeCapability(ctx, groupID, capability); err != nil {
		return err
	}

	s.logger.Info("capability revoked", "group_id", groupID, "capability", capability, "revoked_by", p.Username)
	return nil
}

// Capabilities returns the capability names granted to a group.
func (s *Service) Capabilities(ctx context.Context, groupID string) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repo.Capabilities(ctx, groupID)
}
