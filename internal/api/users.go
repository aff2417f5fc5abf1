package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netreg/netreg-core/internal/auth"
)

// createUserRequest is the request body for POST /users.
type createUserRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	IsStaff     bool   `json:"is_staff"`
}

// requireStaff rejects the request unless the principal is staff.
// User administration sits outside the group capability model.
func (s *Server) requireStaff(w http.ResponseWriter, r *http.Request) *auth.Principal {
	p := principalFrom(r.Context())
	if !p.IsAuthenticated() {
		writeUnauthorized(w, "authentication required")
		return nil
	}
	if !p.IsStaff {
		writeForbidden(w, "not an administrator")
		return nil
	}
	return p
}

// handleListUsers returns all user accounts. Staff only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if s.requireStaff(w, r) == nil {
		return
	}

	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCreateUser creates a user account. Staff only.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	p := s.requireStaff(w, r)
	if p == nil {
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !auth.IsValidUsername(req.Username) {
		writeBadRequest(w, "invalid username")
		return
	}
	if req.Password == "" {
		writeBadRequest(w, "password is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user := &auth.User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: hash,
		IsStaff:      req.IsStaff,
		IsActive:     true,
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}

	if err := s.users.Create(r.Context(), user); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("user created", "username", user.Username, "created_by", p.Username)
	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns a single user account. Staff may read anyone;
// other principals may only read themselves.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if !p.IsAuthenticated() {
		writeUnauthorized(w, "authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if !p.IsStaff && p.ID != id {
		writeForbidden(w, "not an administrator")
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user account. Staff only.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	p := s.requireStaff(w, r)
	if p == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("user deleted", "user_id", id, "deleted_by", p.Username)
	w.WriteHeader(http.StatusNoContent)
}
