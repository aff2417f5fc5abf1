package device

import (
	"errors"
	"fmt"
	"time"
)

// DefaultName is assigned when a creation payload omits the device name.
const DefaultName = "DEVICEDEFAULT"

// Device is a registered device owned by a user group.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	TenantID     string    `json:"tenant_id"`
	OwnerGroupID string    `json:"owner_group_id"`
	Note         string    `json:"note"`
	LastModified time.Time `json:"last_modified"`
	ModifiedBy   string    `json:"modified_by,omitempty"`
}

// Sentinel errors for device operations.
var ErrDeviceNotFound = errors.New("device not found")

// ValidationError reports a rejected payload field. It maps to a 400
// response, distinct from an authorization denial.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
