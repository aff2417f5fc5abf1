package tenant

import (
	"errors"
	"strings"
	"time"
)

// Tenant is an organisational unit that owns user groups and devices.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sentinel errors for tenant operations.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrNameRequired   = errors.New("tenant name is required")
)

const maxNameLength = 120

// ValidateName checks a tenant name for basic shape. Names are not
// required to be unique.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	if len(trimmed) > maxNameLength {
		return errors.New("tenant name exceeds 120 characters")
	}
	return nil
}
