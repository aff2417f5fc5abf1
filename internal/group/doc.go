// Package group manages user groups, their members, and the capabilities
// granted to them. Each group belongs to exactly one tenant; group names
// are unique within a tenant but not across tenants.
//
// The repository doubles as the membership oracle for the authorization
// engine. Two queries deliberately differ in how they treat the group
// active flag:
//
//   - membership checks and the visible-scope listing consider every
//     group the user belongs to, active or not;
//   - capability checks only honour grants held via active groups, so
//     deactivating a group revokes its capabilities without touching
//     its membership rows.
package group
