// Package auth provides principal identity for Netreg.
//
// It covers user accounts (persistence, password hashing), JWT access
// tokens, and resolution of the authenticated request identity into a
// Principal: the user's id, global administrative flags, and the set of
// groups they belong to.
//
// The Principal is an explicit value passed as an argument to every
// authorization operation. There is no ambient request or session state:
// an unauthenticated request resolves to Anonymous(), a principal with no
// memberships and no capabilities.
//
// Membership is re-read from the store on every resolution, so each
// request sees a current snapshot of group membership. Nothing in this
// package caches identity across requests.
package auth
