// Package tenant manages tenant records, the root of the ownership
// hierarchy. Groups belong to tenants and devices cite one.
//
// The lifecycle service pairs persistence with the authorization engine:
// reads are open to everyone, while create, update, and delete require
// the staff flag. Tenant names are not unique; callers that need to
// address a tenant unambiguously must use its id.
package tenant
