package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flexhire/flexhire/internal/notify"
	"github.com/flexhire/flexhire/internal/storage"
)

type JobRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Location       string `json:"location"`
	DurationType   string `json:"duration_type"`
	DurationValue  int    `json:"duration_value"`
	Budget         int64  `json:"budget"`
	SkillsRequired string `json:"skills_required"`
	Urgency        string `json:"urgency"`
}

func validateJob(req JobRequest) string {
	switch {
	case req.Title == "":
		return "title is required"
	case !slices.Contains(storage.JobCategories, req.Category):
		return "unknown category"
	case !slices.Contains(storage.DurationTypes, req.DurationType):
		return "unknown duration_type"
	case req.DurationValue <= 0:
		return "duration_value must be positive"
	case req.Budget <= 0:
		return "budget must be positive"
	case req.Urgency != "" && !slices.Contains(storage.UrgencyLevels, req.Urgency):
		return "unknown urgency"
	}
	return ""
}

func handleCreateJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r)
		if id.Role != storage.RoleProvider {
			httpError(w, http.StatusForbidden, "permission_error", "only job providers post jobs")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req JobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if msg := validateJob(req); msg != "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", msg)
			return
		}
		if req.Urgency == "" {
			req.Urgency = "normal"
		}

		job := storage.Job{
			ID:             uuid.New().String(),
			ProviderID:     id.UserID,
			Title:          req.Title,
			Description:    StripHTML(req.Description),
			Category:       req.Category,
			Location:       req.Location,
			DurationType:   req.DurationType,
			DurationValue:  req.DurationValue,
			Budget:         req.Budget,
			SkillsRequired: req.SkillsRequired,
			Urgency:        req.Urgency,
			Status:         storage.JobOpen,
			PostedDate:     time.Now().UTC(),
		}
		if err := deps.Store.CreateJob(job); err != nil {
			storeError(w, err, "create job")
			return
		}

		created, err := deps.Store.GetJob(job.ID)
		if err != nil {
			storeError(w, err, "load job")
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleListJobs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := storage.JobFilter{
			Category:     q.Get("category"),
			Location:     q.Get("location"),
			DurationType: q.Get("duration"),
			Search:       q.Get("search"),
		}
		if raw := q.Get("max_budget"); raw != "" {
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || v < 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "max_budget must be a non-negative integer")
				return
			}
			filter.MaxBudget = v
		}

		jobs, err := deps.Store.ListOpenJobs(filter)
		if err != nil {
			storeError(w, err, "list jobs")
			return
		}
		if jobs == nil {
			jobs = []storage.Job{}
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func handleGetJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := deps.Store.GetJob(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "load job")
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

// ownedJob loads a job and checks the session user owns it.
func ownedJob(deps AppDeps, w http.ResponseWriter, r *http.Request) (storage.Job, bool) {
	job, err := deps.Store.GetJob(chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err, "load job")
		return storage.Job{}, false
	}
	if job.ProviderID != identityFrom(r).UserID {
		httpError(w, http.StatusForbidden, "permission_error", "not your job")
		return storage.Job{}, false
	}
	return job, true
}

type JobPatchRequest struct {
	Status              string `json:"status"`
	SelectedApplicantID string `json:"selected_applicant_id"`
}

func handlePatchJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := ownedJob(deps, w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req JobPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		switch req.Status {
		case storage.JobInProgress:
			if req.SelectedApplicantID == "" {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "selected_applicant_id is required")
				return
			}
			if err := deps.Store.SelectApplicant(job.ID, req.SelectedApplicantID); err != nil {
				storeError(w, err, "select applicant")
				return
			}
			notifyEvent(deps, notify.Payload{
				Kind:   notify.KindApplicantSelected,
				JobID:  job.ID,
				UserID: req.SelectedApplicantID,
			})
		case storage.JobCompleted:
			if err := deps.Store.CompleteJob(job.ID); err != nil {
				storeError(w, err, "complete job")
				return
			}
			if job.SelectedApplicantID != "" {
				notifyEvent(deps, notify.Payload{
					Kind:   notify.KindJobCompleted,
					JobID:  job.ID,
					UserID: job.SelectedApplicantID,
				})
			}
		default:
			httpError(w, http.StatusBadRequest, "invalid_request_error", "status must be in-progress or completed")
			return
		}

		updated, err := deps.Store.GetJob(job.ID)
		if err != nil {
			storeError(w, err, "load job")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteJob(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := ownedJob(deps, w, r)
		if !ok {
			return
		}
		if err := deps.Store.DeleteJob(job.ID); err != nil {
			storeError(w, err, "delete job")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleApply(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFrom(r)
		if id.Role != storage.RoleSeeker {
			httpError(w, http.StatusForbidden, "permission_error", "only job seekers apply")
			return
		}

		app := storage.Application{
			ID:          uuid.New().String(),
			JobID:       chi.URLParam(r, "id"),
			UserID:      id.UserID,
			AppliedDate: time.Now().UTC(),
		}
		if err := deps.Store.CreateApplication(app); err != nil {
			storeError(w, err, "apply")
			return
		}

		if job, err := deps.Store.GetJob(app.JobID); err == nil {
			notifyEvent(deps, notify.Payload{
				Kind:   notify.KindApplicationReceived,
				JobID:  job.ID,
				UserID: job.ProviderID,
			})
		}
		app.Status = "pending"
		writeJSON(w, http.StatusCreated, app)
	}
}

func handleListApplicants(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := ownedJob(deps, w, r)
		if !ok {
			return
		}
		apps, err := deps.Store.ListApplicationsByJob(job.ID)
		if err != nil {
			storeError(w, err, "list applicants")
			return
		}
		if apps == nil {
			apps = []storage.Application{}
		}
		writeJSON(w, http.StatusOK, apps)
	}
}

func handleListProviderJobs(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := deps.Store.ListJobsByProvider(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "list jobs")
			return
		}
		if jobs == nil {
			jobs = []storage.Job{}
		}
		writeJSON(w, http.StatusOK, jobs)
	}
}

func handleListUserApplications(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireSelf(w, r)
		if !ok {
			return
		}
		apps, err := deps.Store.ListApplicationsByUser(id)
		if err != nil {
			storeError(w, err, "list applications")
			return
		}
		if apps == nil {
			apps = []storage.Application{}
		}
		writeJSON(w, http.StatusOK, apps)
	}
}

// notifyEvent enqueues a notification task. Delivery is best-effort; a queue
// failure never fails the request that triggered it.
func notifyEvent(deps AppDeps, p notify.Payload) {
	if err := notify.Enqueue(deps.Store, p); err != nil {
		slog.Warn("failed to enqueue notification", "kind", p.Kind, "job", p.JobID, "error", err)
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
