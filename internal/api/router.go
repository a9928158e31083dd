// Package api implements the marketplace REST surface and the MCP tool
// server.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flexhire/flexhire/internal/auth"
	"github.com/flexhire/flexhire/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB
const maxResumeBodySize = 10 << 20 // 10MB

type AppDeps struct {
	Store  *storage.Store
	Signer *auth.Signer
}

// NewHandler builds the REST API. Health, registration, login and open-job
// browsing are public; everything else requires a session token.
func NewHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/auth/register", handleRegister(deps))
	r.Post("/auth/login", handleLogin(deps))
	r.Get("/jobs", handleListJobs(deps))
	r.Get("/jobs/{id}", handleGetJob(deps))

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(deps.Signer))

		r.Get("/me", handleMe(deps))

		r.Post("/jobs", handleCreateJob(deps))
		r.Patch("/jobs/{id}", handlePatchJob(deps))
		r.Delete("/jobs/{id}", handleDeleteJob(deps))
		r.Post("/jobs/{id}/applications", handleApply(deps))
		r.Get("/jobs/{id}/applications", handleListApplicants(deps))

		r.Get("/users/{id}/jobs", handleListProviderJobs(deps))
		r.Get("/users/{id}/applications", handleListUserApplications(deps))
		r.Get("/users/{id}/profile", handleGetProfile(deps))
		r.Put("/users/{id}/profile", handlePutProfile(deps))
		r.Post("/users/{id}/resume", handleUploadResume(deps))
		r.Post("/users/{id}/ratings", handleAddRating(deps))
		r.Get("/users/{id}/rating", handleGetRating(deps))
		r.Get("/users/{id}/stats", handleGetStats(deps))

		r.Get("/notifications", handleListNotifications(deps))
		r.Post("/notifications/{id}/read", handleMarkNotificationRead(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
