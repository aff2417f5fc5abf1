package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netreg/netreg-core/internal/tenant"
)

// handleListTenants returns all tenants. Open to every principal.
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.tenants.List(r.Context(), principalFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tenants": tenants,
		"count":   len(tenants),
	})
}

// handleCreateTenant creates a tenant. Staff only.
func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var input tenant.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	created, err := s.tenants.Create(r.Context(), principalFrom(r.Context()), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGetTenant returns a single tenant. Open to every principal.
func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenants.Get(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpdateTenant applies a partial update. Staff only.
func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	var input tenant.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.tenants.Update(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteTenant removes a tenant. Staff only.
func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.tenants.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
