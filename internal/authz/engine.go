package authz

import (
	"context"
	"fmt"

	"github.com/netreg/netreg-core/internal/auth"
)

// Action is a resource operation being authorized.
type Action string

// Actions.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Capability names attachable to groups.
const (
	CapPostDevices = "can_post_devices"
	CapEditDevices = "can_edit_devices"
	CapPostTenants = "can_post_tenants"
	CapEditTenants = "can_edit_tenants"
)

// Deny reasons surfaced to callers.
const (
	ReasonNotAdministrator = "not an administrator"
	ReasonNotAuthenticated = "authentication required"
	ReasonForbidden        = "forbidden"
)

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// DeniedError is the error form of a Deny decision, used by lifecycle
// services to carry a denial through an error return.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "forbidden: " + e.Reason
}

// ErrDenied converts a denying decision into a DeniedError.
func ErrDenied(d Decision) error {
	return &DeniedError{Reason: d.Reason}
}

// MembershipStore answers membership and capability questions for the
// engine. Lookups read current state; errors propagate unchanged.
type MembershipStore interface {
	// IsMember reports whether the user belongs to the specific group id.
	IsMember(ctx context.Context, userID, groupID string) (bool, error)

	// HasCapability reports whether any active group the user belongs to
	// has been granted the named capability.
	HasCapability(ctx context.Context, userID, capability string) (bool, error)

	// GroupIDsForUser returns the ids of all groups the user belongs to.
	GroupIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// Engine evaluates the authorization policy. It is stateless per request:
// each evaluation reads the current membership snapshot and decides
// immediately. Safe for concurrent use.
type Engine struct {
	members MembershipStore
}

// NewEngine creates an authorization engine over the given store.
func NewEngine(members MembershipStore) *Engine {
	return &Engine{members: members}
}

// AuthorizeTenantAction evaluates the tenant policy.
//
// Reads are unconditionally permitted, authenticated or not. Creation,
// update, and deletion require the global staff flag; no capability
// lookup is consulted for tenant operations.
func (e *Engine) AuthorizeTenantAction(p *auth.Principal, action Action) Decision {
	if action == ActionRead {
		return Allow()
	}

	if !p.IsAuthenticated() {
		return Deny(ReasonNotAuthenticated)
	}
	if !p.IsStaff {
		return Deny(ReasonNotAdministrator)
	}
	return Allow()
}

// AuthorizeGroupManage evaluates the group-administration policy: group
// creation, membership changes, and capability grants are staff-only
// administrative actions.
func (e *Engine) AuthorizeGroupManage(p *auth.Principal) Decision {
	if !p.IsAuthenticated() {
		return Deny(ReasonNotAuthenticated)
	}
	if !p.IsStaff {
		return Deny(ReasonNotAdministrator)
	}
	return Allow()
}

// AuthorizeDeviceCreate evaluates the device-creation policy against the
// resolved owner group id. Both of the following must hold:
//
//  1. the principal is a member of that specific group — the check uses
//     the resolved id, never the group name, since names are not unique
//     across tenants;
//  2. the principal holds can_post_devices via some active group, not
//     necessarily the same one that satisfied (1).
//
// The two failure modes are deliberately collapsed into a single
// "forbidden" denial. A store failure is returned as an error, never as a
// decision.
func (e *Engine) AuthorizeDeviceCreate(ctx context.Context, p *auth.Principal, ownerGroupID string) (Decision, error) {
	if !p.IsAuthenticated() {
		return Deny(ReasonForbidden), nil
	}

	member, err := e.members.IsMember(ctx, p.ID, ownerGroupID)
	if err != nil {
		return Decision{}, fmt.Errorf("membership lookup: %w", err)
	}
	if !member {
		return Deny(ReasonForbidden), nil
	}

	canPost, err := e.members.HasCapability(ctx, p.ID, CapPostDevices)
	if err != nil {
		return Decision{}, fmt.Errorf("capability lookup: %w", err)
	}
	if !canPost {
		return Deny(ReasonForbidden), nil
	}

	return Allow(), nil
}

// AuthorizeDeviceAccess evaluates single-device retrieve/update/delete.
//
// Safe (read) requests are always permitted. For everything else any
// authenticated principal is permitted: there is no object-level
// ownership re-check at update/delete time — ownership is only enforced
// at creation. Known deficiency, kept deliberately; see the package
// comment.
func (e *Engine) AuthorizeDeviceAccess(p *auth.Principal, action Action, safeMethod bool) Decision {
	if safeMethod || action == ActionRead {
		return Allow()
	}
	if !p.IsAuthenticated() {
		return Deny(ReasonNotAuthenticated)
	}
	return Allow()
}

// VisibleDeviceScope returns the set of owner-group ids whose devices the
// principal may see in listings: exactly the groups the principal belongs
// to. Administrators get no widened view — a staff user who is in no
// group sees no devices.
func (e *Engine) VisibleDeviceScope(ctx context.Context, p *auth.Principal) ([]string, error) {
	if !p.IsAuthenticated() {
		return []string{}, nil
	}

	groupIDs, err := e.members.GroupIDsForUser(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("membership lookup: %w", err)
	}
	if groupIDs == nil {
		groupIDs = []string{}
	}
	return groupIDs, nil
}
