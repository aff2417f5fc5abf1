package device

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/netreg/netreg-core/internal/group"
	"github.com/netreg/netreg-core/internal/tenant"
)

// TenantDirectory resolves tenant names cited in device payloads.
type TenantDirectory interface {
	GetByName(ctx context.Context, name string) (*tenant.Tenant, error)
}

// GroupResolver resolves owner-group names cited in device payloads.
type GroupResolver interface {
	ResolveByName(ctx context.Context, name string) (*group.Group, error)
}

// CreateInput carries caller-supplied fields for device creation. Tenant
// and owner group are cited by name, not id.
type CreateInput struct {
	Name       string `json:"name,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
	Tenant     string `json:"tenant"`
	OwnerGroup string `json:"owner_group"`
	Note       string `json:"note,omitempty"`
}

// resolvedCreate is a CreateInput with its names resolved to records.
type resolvedCreate struct {
	name     string
	isActive bool
	tenant   *tenant.Tenant
	owner    *group.Group
	note     string
}

const maxDeviceNameLength = 120

// resolveCreate validates the payload and resolves its tenant and group
// names. Any unresolvable name is a ValidationError; lookup failures
// other than "not found" propagate unchanged. The cited tenant and the
// resolved owner group are validated independently of each other.
func resolveCreate(ctx context.Context, tenants TenantDirectory, groups GroupResolver, input CreateInput) (*resolvedCreate, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DefaultName
	}
	if len(name) > maxDeviceNameLength {
		return nil, newValidationError("name", "exceeds 120 characters")
	}

	if strings.TrimSpace(input.Tenant) == "" {
		return nil, newValidationError("tenant", "is required")
	}
	if strings.TrimSpace(input.OwnerGroup) == "" {
		return nil, newValidationError("owner_group", "is required")
	}

	tnt, err := tenants.GetByName(ctx, input.Tenant)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, newValidationError("tenant", fmt.Sprintf("unknown tenant %q", input.Tenant))
		}
		return nil, fmt.Errorf("resolving tenant: %w", err)
	}

	owner, err := groups.ResolveByName(ctx, input.OwnerGroup)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			return nil, newValidationError("owner_group", fmt.Sprintf("unknown group %q", input.OwnerGroup))
		}
		return nil, fmt.Errorf("resolving owner group: %w", err)
	}

	resolved := &resolvedCreate{
		name:     name,
		isActive: true,
		tenant:   tnt,
		owner:    owner,
		note:     input.Note,
	}
	if input.IsActive != nil {
		resolved.isActive = *input.IsActive
	}

	return resolved, nil
}
