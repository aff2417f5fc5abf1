package tenant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
)

// noMembership is a MembershipStore with no memberships or capabilities;
// tenant policy never consults it.
type noMembership struct{}

func (noMembership) IsMember(context.Context, string, string) (bool, error) { return false, nil }
func (noMembership) HasCapability(context.Context, string, string) (bool, error) {
	return false, nil
}
func (noMembership) GroupIDsForUser(context.Context, string) ([]string, error) { return nil, nil }

func testService(t *testing.T) *Service {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewRepository(testDB(t)), authz.NewEngine(noMembership{}), logger)
}

func staffPrincipal() *auth.Principal {
	return &auth.Principal{ID: "usr-adm", Username: "admin", IsStaff: true}
}

func memberPrincipal() *auth.Principal {
	return &auth.Principal{ID: "usr-m", Username: "member"}
}

func TestServiceCreateRequiresStaff(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		principal *auth.Principal
		wantDeny  bool
	}{
		{"staff allowed", staffPrincipal(), false},
		{"member denied", memberPrincipal(), true},
		{"anonymous denied", auth.Anonymous(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.principal, CreateInput{Name: "Acme"})
			var denied *authz.DeniedError
			if tt.wantDeny {
				if !errors.As(err, &denied) {
					t.Fatalf("Create error = %v, want DeniedError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
		})
	}
}

func TestServiceCreateDefaultsActive(t *testing.T) {
	svc := testService(t)

	created, err := svc.Create(context.Background(), staffPrincipal(), CreateInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !created.IsActive {
		t.Error("IsActive defaulted to false, want true")
	}

	inactive := false
	created, err = svc.Create(context.Background(), staffPrincipal(), CreateInput{Name: "Dormant", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.IsActive {
		t.Error("explicit IsActive=false ignored")
	}
}

func TestServiceReadOpenToAnonymous(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, staffPrincipal(), CreateInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, auth.Anonymous(), created.ID)
	if err != nil {
		t.Fatalf("anonymous Get: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("Get returned %s, want %s", got.ID, created.ID)
	}

	tenants, err := svc.List(ctx, auth.Anonymous())
	if err != nil {
		t.Fatalf("anonymous List: %v", err)
	}
	if len(tenants) != 1 {
		t.Errorf("List returned %d tenants, want 1", len(tenants))
	}
}

func TestServiceUpdateRequiresStaff(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, staffPrincipal(), CreateInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newName := "Acme Renamed"
	_, err = svc.Update(ctx, memberPrincipal(), created.ID, UpdateInput{Name: &newName})
	var denied *authz.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("member Update error = %v, want DeniedError", err)
	}
	if denied.Reason != authz.ReasonNotAdministrator {
		t.Errorf("Reason = %q, want %q", denied.Reason, authz.ReasonNotAdministrator)
	}

	updated, err := svc.Update(ctx, staffPrincipal(), created.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("staff Update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("Name = %q, want %q", updated.Name, newName)
	}
}

func TestServiceDeleteRequiresStaff(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, staffPrincipal(), CreateInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var denied *authz.DeniedError
	if err := svc.Delete(ctx, memberPrincipal(), created.ID); !errors.As(err, &denied) {
		t.Fatalf("member Delete error = %v, want DeniedError", err)
	}

	if err := svc.Delete(ctx, staffPrincipal(), created.ID); err != nil {
		t.Fatalf("staff Delete: %v", err)
	}
	if _, err := svc.Get(ctx, staffPrincipal(), created.ID); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Get after delete = %v, want ErrTenantNotFound", err)
	}
}

func TestServiceUpdateMissingTenant(t *testing.T) {
	svc := testService(t)

	name := "x"
	_, err := svc.Update(context.Background(), staffPrincipal(), "tnt-missing", UpdateInput{Name: &name})
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("Update missing = %v, want ErrTenantNotFound", err)
	}
}
