package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for tenants.
type Repository interface {
	// Create inserts a new tenant.
	Create(ctx context.Context, t *Tenant) error
	// GetByID retrieves a tenant by ID.
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// GetByName retrieves the first tenant with the given name, ordered
	// by id. Names are not unique; callers get whichever sorts first.
	GetByName(ctx context.Context, name string) (*Tenant, error)
	// List retrieves all tenants ordered by name.
	List(ctx context.Context) ([]Tenant, error)
	// Update modifies an existing tenant.
	Update(ctx context.Context, t *Tenant) error
	// Delete removes a tenant by ID. Owned groups and devices cascade.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed tenant repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const tenantColumns = "id, name, is_active, created_at, updated_at"

// Create inserts a new tenant.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - t: Tenant to persist; a missing ID is generated
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
//
// Security: Uses parameterised SQL queries to prevent injection.
// Example:
//
//	err := repo.Create(ctx, &tenant.Tenant{Name: "Acme", IsActive: true})
func (r *SQLiteRepository) Create(ctx context.Context, t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = "tnt-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenants (id, name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		boolToInt(t.IsActive),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting tenant: %w", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID.
//
// Returns ErrTenantNotFound if missing, otherwise the underlying query error.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE id = ?", id)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("querying tenant: %w", err)
	}
	return t, nil
}

// GetByName retrieves the first tenant matching the name.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants WHERE name = ? ORDER BY id LIMIT 1", name)

	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("querying tenant by name: %w", err)
	}
	return t, nil
}

// List retrieves all tenants ordered by name then id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+tenantColumns+" FROM tenants ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}

	return tenants, nil
}

// Update modifies an existing tenant's name and active flag.
//
// Returns ErrTenantNotFound if missing.
func (r *SQLiteRepository) Update(ctx context.Context, t *Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	if err := ValidateName(t.Name); err != nil {
		return err
	}

	t.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET name = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		t.Name,
		boolToInt(t.IsActive),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating tenant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// Delete removes a tenant by ID.
//
// Returns ErrTenantNotFound if missing.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tenants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting tenant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTenantNotFound
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTenant scans a tenant from a row scanner.
func scanTenant(s scanner) (*Tenant, error) {
	var t Tenant
	var isActive int
	var createdAt, updatedAt string

	if err := s.Scan(&t.ID, &t.Name, &isActive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	t.IsActive = isActive != 0

	var err error
	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
