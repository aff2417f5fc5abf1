// Package authz is the authorization engine for Netreg.
//
// It decides which principal may create, read, update, or delete which
// resource across the tenant → group → device hierarchy. Every operation
// takes the acting Principal as an explicit argument and returns a
// Decision (Allow, or Deny with a reason); nothing is read from ambient
// request state and no decision is cached between calls.
//
// Membership and capability questions are delegated to a MembershipStore.
// A store failure is returned as an error and must be treated as fatal for
// the request — it is never silently converted to Allow or Deny.
//
// The policy deliberately preserves three documented gaps from the system
// it models:
//
//   - device.tenant is not checked against owner_group.tenant
//   - device update/delete has no object-level ownership re-check after
//     authentication
//   - the can_post_devices capability may come from a different group than
//     the one that satisfies the membership check
//
// Closing any of these is a policy change, not a bug fix; see DESIGN.md.
package authz
