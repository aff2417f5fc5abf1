package auth

import (
	"context"
	"fmt"
)

// GroupDirectory answers which groups a user currently belongs to.
// Implemented by the group membership store.
type GroupDirectory interface {
	GroupIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// Identity resolves an authenticated user id into a Principal.
//
// Resolution re-reads the user record and the membership snapshot on every
// call, so concurrent requests each see current state. A failure to look
// either up is surfaced as an error, never as a degraded principal.
type Identity struct {
	users  UserRepository
	groups GroupDirectory
}

// NewIdentity creates an identity resolver over the given stores.
func NewIdentity(users UserRepository, groups GroupDirectory) *Identity {
	return &Identity{users: users, groups: groups}
}

// Resolve builds the Principal for the given user id.
//
// Returns ErrUserNotFound if the id does not exist and ErrUserInactive if
// the account has been deactivated; callers treat both as failed
// authentication, not as an anonymous principal.
func (i *Identity) Resolve(ctx context.Context, userID string) (*Principal, error) {
	user, err := i.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	groupIDs, err := i.groups.GroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving memberships for %s: %w", userID, err)
	}

	return &Principal{
		ID:          user.ID,
		Username:    user.Username,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		GroupIDs:    groupIDs,
	}, nil
}
