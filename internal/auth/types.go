package auth

import (
	"errors"
	"regexp"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// User represents a stored user account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialised
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the resolved identity of a request: who is acting, their
// global administrative flags, and the groups they currently belong to.
//
// A Principal is a per-request snapshot. It is passed explicitly to every
// authorization operation and never read from ambient state.
type Principal struct {
	ID          string
	Username    string
	IsStaff     bool
	IsSuperuser bool
	GroupIDs    []string
}

// Anonymous returns the principal for an unauthenticated request:
// no identity, no memberships, no capabilities.
func Anonymous() *Principal {
	return &Principal{}
}

// IsAuthenticated reports whether the principal carries an identity.
func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.ID != ""
}

// IsAdmin reports whether the principal holds a global administrative flag.
func (p *Principal) IsAdmin() bool {
	return p != nil && (p.IsStaff || p.IsSuperuser)
}

// MemberOf reports whether the principal belongs to the given group id.
func (p *Principal) MemberOf(groupID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
)
