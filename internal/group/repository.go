package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for user groups, their
// members, and their capability grants.
type Repository interface {
	// Create inserts a new group.
	Create(ctx context.Context, g *Group) error
	// GetByID retrieves a group by ID.
	GetByID(ctx context.Context, id string) (*Group, error)
	// ResolveByName retrieves the first group with the given bare name,
	// across all tenants, ordered by tenant then id. Group names are only
	// unique within a tenant, so a bare-name lookup can land on a group
	// in a different tenant than the caller expects.
	ResolveByName(ctx context.Context, name string) (*Group, error)
	// List retrieves all groups, optionally filtered by tenant.
	List(ctx context.Context, tenantID string) ([]Group, error)
	// Update modifies a group's name and active flag.
	Update(ctx context.Context, g *Group) error
	// Delete removes a group. Membership and capability rows cascade.
	Delete(ctx context.Context, id string) error

	// AddMember records a user's membership in a group. Idempotent.
	AddMember(ctx context.Context, groupID, userID string) error
	// RemoveMember removes a user's membership. Idempotent.
	RemoveMember(ctx context.Context, groupID, userID string) error
	// MemberIDs returns the user ids belonging to a group.
	MemberIDs(ctx context.Context, groupID string) ([]string, error)

	// GrantCapability attaches a named capability to a group. Idempotent.
	GrantCapability(ctx context.Context, groupID, capability string) error
	// RevokeCapability removes a capability grant. Idempotent.
	RevokeCapability(ctx context.Context, groupID, capability string) error
	// Capabilities returns the capability names granted to a group.
	Capabilities(ctx context.Context, groupID string) ([]string, error)

	// IsMember reports whether the user belongs to the group. The group's
	// active flag is not consulted.
	IsMember(ctx context.Context, userID, groupID string) (bool, error)
	// HasCapability reports whether the user holds the capability through
	// any active group.
	HasCapability(ctx context.Context, userID, capability string) (bool, error)
	// GroupIDsForUser returns the ids of every group the user belongs to,
	// active or not.
	GroupIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed group repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const groupColumns = "id, name, tenant_id, active, created_at, updated_at"

// Create inserts a new group.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - g: Group to persist; a missing ID is generated
//
// Returns:
//   - error: nil on success, ErrGroupExists when the name is already used
//     within the tenant, otherwise the underlying database error
//
// Security: Uses parameterised SQL queries to prevent injection.
// Example:
//
//	err := repo.Create(ctx, &group.Group{Name: "Operators", TenantID: "tnt-1"})
func (r *SQLiteRepository) Create(ctx context.Context, g *Group) error {
	if g == nil {
		return fmt.Errorf("group is required")
	}
	if err := ValidateName(g.Name); err != nil {
		return err
	}
	if g.TenantID == "" {
		return fmt.Errorf("tenant id is required")
	}

	if g.ID == "" {
		g.ID = "grp-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_groups (id, name, tenant_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.Name,
		g.TenantID,
		boolToInt(g.Active),
		g.CreatedAt.Format(time.RFC3339),
		g.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGroupExists
		}
		return fmt.Errorf("inserting group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by ID.
//
// Returns ErrGroupNotFound if missing.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Group, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM user_groups WHERE id = ?", id)

	g, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("querying group: %w", err)
	}
	return g, nil
}

// ResolveByName retrieves the first group matching the bare name.
func (r *SQLiteRepository) ResolveByName(ctx context.Context, name string) (*Group, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM user_groups WHERE name = ? ORDER BY tenant_id, id LIMIT 1",
		name)

	g, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("resolving group by name: %w", err)
	}
	return g, nil
}

// List retrieves groups ordered by tenant then name. An empty tenantID
// returns groups across all tenants.
func (r *SQLiteRepository) List(ctx context.Context, tenantID string) ([]Group, error) {
	query := "SELECT " + groupColumns + " FROM user_groups"
	var args []any
	if tenantID != "" {
		query += " WHERE tenant_id = ?"
		args = append(args, tenantID)
	}
	query += " ORDER BY tenant_id, name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}

	return groups, nil
}

// Update modifies a group's name and active flag.
//
// Returns ErrGroupNotFound if missing, ErrGroupExists on a name clash
// within the tenant.
func (r *SQLiteRepository) Update(ctx context.Context, g *Group) error {
	if g == nil {
		return fmt.Errorf("group is required")
	}
	if err := ValidateName(g.Name); err != nil {
		return err
	}

	g.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE user_groups SET name = ?, active = ?, updated_at = ? WHERE id = ?`,
		g.Name,
		boolToInt(g.Active),
		g.UpdatedAt.Format(time.RFC3339),
		g.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGroupExists
		}
		return fmt.Errorf("updating group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// Delete removes a group by ID.
//
// Returns ErrGroupNotFound if missing.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM user_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

// AddMember records a user's membership in a group.
func (r *SQLiteRepository) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id) VALUES (?, ?)
		ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("adding group member: %w", err)
	}
	return nil
}

// RemoveMember removes a user's membership.
func (r *SQLiteRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID)
	if err != nil {
		return fmt.Errorf("removing group member: %w", err)
	}
	return nil
}

// MemberIDs returns the user ids belonging to a group.
func (r *SQLiteRepository) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	return r.queryStrings(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id",
		"querying group members", groupID)
}

// GrantCapability attaches a named capability to a group.
func (r *SQLiteRepository) GrantCapability(ctx context.Context, groupID, capability string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_capabilities (group_id, capability) VALUES (?, ?)
		ON CONFLICT (group_id, capability) DO NOTHING`,
		groupID, capability)
	if err != nil {
		return fmt.Errorf("granting capability: %w", err)
	}
	return nil
}

// RevokeCapability removes a capability grant.
func (r *SQLiteRepository) RevokeCapability(ctx context.Context, groupID, capability string) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM group_capabilities WHERE group_id = ? AND capability = ?",
		groupID, capability)
	if err != nil {
		return fmt.Errorf("revoking capability: %w", err)
	}
	return nil
}

// Capabilities returns the capability names granted to a group.
func (r *SQLiteRepository) Capabilities(ctx context.Context, groupID string) ([]string, error) {
	return r.queryStrings(ctx,
		"SELECT capability FROM group_capabilities WHERE group_id = ? ORDER BY capability",
		"querying group capabilities", groupID)
}

// IsMember reports whether the user belongs to the group.
func (r *SQLiteRepository) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM group_members WHERE user_id = ? AND group_id = ?",
		userID, groupID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return count > 0, nil
}

// HasCapability reports whether the user holds the capability through
// any active group. Grants held only via inactive groups do not count.
func (r *SQLiteRepository) HasCapability(ctx context.Context, userID, capability string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1)
		FROM group_members gm
		JOIN user_groups ug ON ug.id = gm.group_id
		JOIN group_capabilities gc ON gc.group_id = gm.group_id
		WHERE gm.user_id = ? AND gc.capability = ? AND ug.active = 1`,
		userID, capability).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking capability: %w", err)
	}
	return count > 0, nil
}

// GroupIDsForUser returns the ids of every group the user belongs to.
func (r *SQLiteRepository) GroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	return r.queryStrings(ctx,
		"SELECT group_id FROM group_members WHERE user_id = ? ORDER BY group_id",
		"querying user groups", userID)
}

// queryStrings runs a single-column query and collects the result.
func (r *SQLiteRepository) queryStrings(ctx context.Context, query, label string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", label, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	return values, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(s scanner) (*Group, error) {
	var g Group
	var active int
	var createdAt, updatedAt string

	if err := s.Scan(&g.ID, &g.Name, &g.TenantID, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	g.Active = active != 0

	var err error
	g.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	g.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &g, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
