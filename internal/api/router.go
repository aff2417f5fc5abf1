package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes. Every route runs through the identity middleware:
	// requests without credentials proceed as the anonymous principal and
	// the services decide what that principal may do.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identityMiddleware)

		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Get("/me", s.handleMe)
		})

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", s.handleListTenants)
			r.Post("/", s.handleCreateTenant)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetTenant)
				r.Patch("/", s.handleUpdateTenant)
				r.Delete("/", s.handleDeleteTenant)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetUser)
				r.Delete("/", s.handleDeleteUser)
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Patch("/", s.handleUpdateGroup)
				r.Delete("/", s.handleDeleteGroup)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", s.handleListGroupMembers)
					r.Post("/", s.handleAddGroupMember)
					r.Delete("/{userID}", s.handleRemoveGroupMember)
				})

				r.Route("/capabilities", func(r chi.Router) {
					r.Get("/", s.handleListGroupCapabilities)
					r.Post("/", s.handleGrantGroupCapability)
					r.Delete("/{capability}", s.handleRevokeGroupCapability)
				})
			})
		})

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Patch("/", s.handleUpdateDevice)
				r.Delete("/", s.handleDeleteDevice)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
