package tenant

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the tenants schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "tenant-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE tenants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE INDEX idx_tenants_name ON tenants(name);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("applying tenants schema: %v", err)
	}

	return db
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	created := &Tenant{Name: "Acme Networks", IsActive: true}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Acme Networks" {
		t.Errorf("Name = %q, want %q", got.Name, "Acme Networks")
	}
	if !got.IsActive {
		t.Error("IsActive = false, want true")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not populated")
	}
}

func TestRepositoryCreateRejectsEmptyName(t *testing.T) {
	repo := NewRepository(testDB(t))

	err := repo.Create(context.Background(), &Tenant{Name: "   "})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("Create error = %v, want ErrNameRequired", err)
	}
}

func TestRepositoryDuplicateNamesAccepted(t *testing.T) {
	// Tenant names carry no uniqueness constraint.
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	first := &Tenant{Name: "Acme", IsActive: true}
	second := &Tenant{Name: "Acme", IsActive: true}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("Create duplicate name: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("duplicate tenants share an id")
	}

	tenants, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("List returned %d tenants, want 2", len(tenants))
	}
}

func TestRepositoryGetByName(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &Tenant{Name: "Globex", IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByName(ctx, "Globex")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.Name != "Globex" {
		t.Errorf("Name = %q, want %q", got.Name, "Globex")
	}

	if _, err := repo.GetByName(ctx, "missing"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("GetByName(missing) = %v, want ErrTenantNotFound", err)
	}
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo := NewRepository(testDB(t))

	_, err := repo.GetByID(context.Background(), "tnt-missing")
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("GetByID error = %v, want ErrTenantNotFound", err)
	}
}

func TestRepositoryUpdate(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	tnt := &Tenant{Name: "Initech", IsActive: true}
	if err := repo.Create(ctx, tnt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tnt.Name = "Initech Global"
	tnt.IsActive = false
	if err := repo.Update(ctx, tnt); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByID(ctx, tnt.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Initech Global" || got.IsActive {
		t.Errorf("updated tenant = %+v", got)
	}

	if err := repo.Update(ctx, &Tenant{ID: "tnt-missing", Name: "x"}); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Update missing = %v, want ErrTenantNotFound", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	tnt := &Tenant{Name: "Umbrella", IsActive: true}
	if err := repo.Create(ctx, tnt); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, tnt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tnt.ID); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrTenantNotFound", err)
	}
	if err := repo.Delete(ctx, tnt.ID); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("second Delete = %v, want ErrTenantNotFound", err)
	}
}
