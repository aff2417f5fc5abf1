package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netreg/netreg-core/internal/group"
)

// handleListGroups returns groups, optionally filtered by ?tenant_id=.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.List(r.Context(), r.URL.Query().Get("tenant_id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

// handleCreateGroup creates a group. Staff only.
func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var input group.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if input.TenantID == "" {
		writeBadRequest(w, "tenant_id is required")
		return
	}

	created, err := s.groups.Create(r.Context(), principalFrom(r.Context()), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGetGroup returns a single group.
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleUpdateGroup applies a partial update. Staff only.
func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var input group.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	updated, err := s.groups.Update(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteGroup removes a group. Staff only.
func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Delete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListGroupMembers returns the user ids belonging to a group.
func (s *Server) handleListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.Members(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if members == nil {
		members = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"members": members,
		"count":   len(members),
	})
}

// handleAddGroupMember adds a user to a group. Staff only.
func (s *Server) handleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeBadRequest(w, "user_id is required")
		return
	}

	groupID := chi.URLParam(r, "id")
	if err := s.groups.AddMember(r.Context(), principalFrom(r.Context()), groupID, req.UserID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveGroupMember removes a user from a group. Staff only.
func (s *Server) handleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userID")

	if err := s.groups.RemoveMember(r.Context(), principalFrom(r.Context()), groupID, userID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListGroupCapabilities returns the capabilities granted to a group.
func (s *Server) handleListGroupCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := s.groups.Capabilities(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if caps == nil {
		caps = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": caps,
		"count":        len(caps),
	})
}

// handleGrantGroupCapability attaches a capability to a group. Staff only.
func (s *Server) handleGrantGroupCapability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Capability string `json:"capability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Capability == "" {
		writeBadRequest(w, "capability is required")
		return
	}

	groupID := chi.URLParam(r, "id")
	if err := s.groups.GrantCapability(r.Context(), principalFrom(r.Context()), groupID, req.Capability); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRevokeGroupCapability removes a capability grant. Staff only.
func (s *Server) handleRevokeGroupCapability(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	capability := chi.URLParam(r, "capability")

	if err := s.groups.RevokeCapability(r.Context(), principalFrom(r.Context()), groupID, capability); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
