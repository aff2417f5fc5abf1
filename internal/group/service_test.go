package group

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/netreg/netreg-core/internal/auth"
	"github.com/netreg/netreg-core/internal/authz"
)

func testService(t *testing.T) *Service {
	t.Helper()

	db := testDB(t)
	seedTenant(t, db, "tnt-1", "Acme")
	repo := NewRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, authz.NewEngine(repo), logger)
}

func staffPrincipal() *auth.Principal {
	return &auth.Principal{ID: "usr-adm", Username: "admin", IsStaff: true}
}

func memberPrincipal() *auth.Principal {
	return &auth.Principal{ID: "usr-m", Username: "member"}
}

func TestServiceManagementIsStaffOnly(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	var denied *authz.DeniedError

	_, err := svc.Create(ctx, memberPrincipal(), CreateInput{Name: "Operators", TenantID: "tnt-1"})
	if !errors.As(err, &denied) {
		t.Fatalf("member Create error = %v, want DeniedError", err)
	}

	created, err := svc.Create(ctx, staffPrincipal(), CreateInput{Name: "Operators", TenantID: "tnt-1"})
	if err != nil {
		t.Fatalf("staff Create: %v", err)
	}

	if err := svc.AddMember(ctx, memberPrincipal(), created.ID, "usr-x"); !errors.As(err, &denied) {
		t.Errorf("member AddMember error = %v, want DeniedError", err)
	}
	if err := svc.GrantCapability(ctx, memberPrincipal(), created.ID, authz.CapPostDevices); !errors.As(err, &denied) {
		t.Errorf("member GrantCapability error = %v, want DeniedError", err)
	}
	if err := svc.Delete(ctx, auth.Anonymous(), created.ID); !errors.As(err, &denied) {
		t.Errorf("anonymous Delete error = %v, want DeniedError", err)
	}
}

func TestServiceMembershipRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	admin := staffPrincipal()

	g, err := svc.Create(ctx, admin, CreateInput{Name: "Operators", TenantID: "tnt-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !g.Active {
		t.Error("group not active by default")
	}

	if err := svc.AddMember(ctx, admin, g.ID, "usr-alice"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	members, err := svc.Members(ctx, g.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 || members[0] != "usr-alice" {
		t.Errorf("Members = %v, want [usr-alice]", members)
	}

	if err := svc.RemoveMember(ctx, admin, g.ID, "usr-alice"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	members, err = svc.Members(ctx, g.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("Members after remove = %v, want empty", members)
	}
}

func TestServiceCapabilityRoundTrip(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	admin := staffPrincipal()

	g, err := svc.Create(ctx, admin, CreateInput{Name: "Posters", TenantID: "tnt-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.GrantCapability(ctx, admin, g.ID, authz.CapPostDevices); err != nil {
		t.Fatalf("GrantCapability: %v", err)
	}
	caps, err := svc.Capabilities(ctx, g.ID)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if len(caps) != 1 || caps[0] != authz.CapPostDevices {
		t.Errorf("Capabilities = %v", caps)
	}

	if err := svc.RevokeCapability(ctx, admin, g.ID, authz.CapPostDevices); err != nil {
		t.Fatalf("RevokeCapability: %v", err)
	}
	caps, err = svc.Capabilities(ctx, g.ID)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if len(caps) != 0 {
		t.Errorf("Capabilities after revoke = %v, want empty", caps)
	}
}

func TestServiceAddMemberMissingGroup(t *testing.T) {
	svc := testService(t)

	err := svc.AddMember(context.Background(), staffPrincipal(), "grp-missing", "usr-alice")
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("AddMember missing group = %v, want ErrGroupNotFound", err)
	}
}
