package group

import (
	"errors"
	"strings"
	"time"
)

// Group is a named set of users within a tenant. Capabilities attach to
// groups, never to users directly.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TenantID  string    `json:"tenant_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sentinel errors for group operations.
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupExists   = errors.New("group name already used in tenant")
	ErrNameRequired  = errors.New("group name is required")
)

const maxNameLength = 120

// ValidateName checks a group name for basic shape.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	if len(trimmed) > maxNameLength {
		return errors.New("group name exceeds 120 characters")
	}
	return nil
}
