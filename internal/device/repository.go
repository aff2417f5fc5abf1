package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for devices.
type Repository interface {
	// Create inserts a new device.
	Create(ctx context.Context, d *Device) error
	// GetByID retrieves a device by ID.
	GetByID(ctx context.Context, id string) (*Device, error)
	// ListByOwnerGroups retrieves devices owned by any of the given
	// groups. An empty group list yields an empty result.
	ListByOwnerGroups(ctx context.Context, groupIDs []string) ([]Device, error)
	// Update modifies an existing device.
	Update(ctx context.Context, d *Device) error
	// Delete removes a device by ID.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed device repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, name, is_active, tenant_id, owner_group_id, note, last_modified, modified_by"

// Create inserts a new device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - d: Device to persist; a missing ID is generated
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
//
// Security: Uses parameterised SQL queries to prevent injection.
// Example:
//
//	err := repo.Create(ctx, &device.Device{Name: "sensor-1", TenantID: "tnt-1", OwnerGroupID: "grp-1"})
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if d == nil {
		return fmt.Errorf("device is required")
	}

	if d.ID == "" {
		d.ID = "dev-" + uuid.NewString()[:8]
	}
	if d.Name == "" {
		d.Name = DefaultName
	}
	if d.LastModified.IsZero() {
		d.LastModified = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (id, name, is_active, tenant_id, owner_group_id, note, last_modified, modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.Name,
		boolToInt(d.IsActive),
		d.TenantID,
		d.OwnerGroupID,
		d.Note,
		d.LastModified.Format(time.RFC3339),
		nullString(d.ModifiedBy),
	)
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}

	return nil
}

// GetByID retrieves a device by ID.
//
// Returns ErrDeviceNotFound if missing.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return d, nil
}

// ListByOwnerGroups retrieves devices owned by any of the given groups,
// ordered by name then id.
func (r *SQLiteRepository) ListByOwnerGroups(ctx context.Context, groupIDs []string) ([]Device, error) {
	if len(groupIDs) == 0 {
		return []Device{}, nil
	}

	placeholders := strings.Repeat("?,", len(groupIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(groupIDs))
	for i, id := range groupIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE owner_group_id IN ("+placeholders+") ORDER BY name, id",
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// Update modifies an existing device.
//
// Returns ErrDeviceNotFound if missing.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	if d == nil {
		return fmt.Errorf("device is required")
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, is_active = ?, note = ?, last_modified = ?, modified_by = ?
		WHERE id = ?`,
		d.Name,
		boolToInt(d.IsActive),
		d.Note,
		d.LastModified.Format(time.RFC3339),
		nullString(d.ModifiedBy),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Delete removes a device by ID.
//
// Returns ErrDeviceNotFound if missing.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var d Device
	var isActive int
	var lastModified string
	var modifiedBy sql.NullString

	err := s.Scan(
		&d.ID,
		&d.Name,
		&isActive,
		&d.TenantID,
		&d.OwnerGroupID,
		&d.Note,
		&lastModified,
		&modifiedBy,
	)
	if err != nil {
		return nil, err
	}

	d.IsActive = isActive != 0
	if modifiedBy.Valid {
		d.ModifiedBy = modifiedBy.String
	}

	d.LastModified, err = time.Parse(time.RFC3339, lastModified)
	if err != nil {
		return nil, fmt.Errorf("parsing last_modified: %w", err)
	}

	return &d, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
