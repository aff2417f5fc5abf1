// Package device manages device records and their creation flow.
//
// Devices cite a tenant and are owned by a user group. Creation payloads
// reference both by name; the service resolves the names to ids before
// any policy check, and an unresolvable name is a validation failure,
// never an authorization denial. Group names are only unique per tenant,
// so the bare-name resolve can pick a group in a different tenant than
// the one named in the payload; the membership check runs against the
// resolved group id either way, and the cited tenant is not cross-checked
// against the owner group's tenant.
//
// List visibility is membership-scoped: a principal sees the devices
// owned by the groups they belong to, nothing more.
package device
