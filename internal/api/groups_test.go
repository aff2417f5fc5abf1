package api

import (
	"net/http"
	"testing"
)

func TestGroupManagementStaffOnly(t *testing.T) {
	f := newFixture(t)
	f.seedOwnership(t, "tnt-1", "Acme", "grp-1", "Operators")
	_, adminToken := f.seedUser(t, "admin", true)
	alice, memberToken := f.seedUser(t, "alice", false)

	t.Run("member cannot create group", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups", memberToken, map[string]any{
			"name": "Viewers", "tenant_id": "tnt-1",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("staff creates group", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups", adminToken, map[string]any{
			"name": "Viewers", "tenant_id": "tnt-1",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("duplicate name in tenant is 409", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups", adminToken, map[string]any{
			"name": "Operators", "tenant_id": "tnt-1",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("staff manages membership", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups/grp-1/members", adminToken, map[string]any{
			"user_id": alice.ID,
		})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("add member status = %d", rec.Code)
		}

		rec = f.do(t, http.MethodGet, "/api/v1/groups/grp-1/members", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list members status = %d", rec.Code)
		}
		if decodeBody(t, rec)["count"] != float64(1) {
			t.Errorf("member count = %v, want 1", decodeBody(t, rec)["count"])
		}

		rec = f.do(t, http.MethodDelete, "/api/v1/groups/grp-1/members/"+alice.ID, adminToken, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("remove member status = %d", rec.Code)
		}
	})

	t.Run("member cannot grant capability", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups/grp-1/capabilities", memberToken, map[string]any{
			"capability": "can_post_devices",
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("staff manages capabilities", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/groups/grp-1/capabilities", adminToken, map[string]any{
			"capability": "can_post_devices",
		})
		if rec.Code != http.StatusNoContent {
			t.Fatalf("grant status = %d", rec.Code)
		}

		rec = f.do(t, http.MethodGet, "/api/v1/groups/grp-1/capabilities", "", nil)
		if decodeBody(t, rec)["count"] != float64(1) {
			t.Errorf("capability count = %v, want 1", decodeBody(t, rec)["count"])
		}

		rec = f.do(t, http.MethodDelete, "/api/v1/groups/grp-1/capabilities/can_post_devices", adminToken, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("revoke status = %d", rec.Code)
		}
	})
}

func TestCapabilityGrantTakesEffect(t *testing.T) {
	// Granting can_post_devices through the API immediately changes the
	// device-creation outcome for group members.
	f := newFixture(t)
	f.seedOwnership(t, "tnt-1", "Acme", "grp-1", "Operators")
	_, adminToken := f.seedUser(t, "admin", true)
	alice, aliceToken := f.seedUser(t, "alice", false)

	rec := f.do(t, http.MethodPost, "/api/v1/groups/grp-1/members", adminToken, map[string]any{"user_id": alice.ID})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("add member status = %d", rec.Code)
	}

	payload := map[string]any{"tenant": "Acme", "owner_group": "Operators"}

	rec = f.do(t, http.MethodPost, "/api/v1/devices", aliceToken, payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("pre-grant create status = %d, want 403", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/groups/grp-1/capabilities", adminToken, map[string]any{
		"capability": "can_post_devices",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("grant status = %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/devices", aliceToken, payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post-grant create status = %d, want 201", rec.Code)
	}
}

func TestUserEndpoints(t *testing.T) {
	f := newFixture(t)
	_, adminToken := f.seedUser(t, "admin", true)
	alice, aliceToken := f.seedUser(t, "alice", false)

	t.Run("member cannot list users", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/users", aliceToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("staff lists users", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if decodeBody(t, rec)["count"] != float64(2) {
			t.Errorf("count = %v, want 2", decodeBody(t, rec)["count"])
		}
	})

	t.Run("user reads self", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/users/"+alice.ID, aliceToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("staff creates a user", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/users", adminToken, map[string]any{
			"username": "carol",
			"password": "carol-password",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if _, exposed := body["password_hash"]; exposed {
			t.Error("password hash exposed in response")
		}
	})

	t.Run("duplicate username is 409", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/v1/users", adminToken, map[string]any{
			"username": "alice",
			"password": "x-password",
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})
}
