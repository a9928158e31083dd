package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flexhire/flexhire/internal/auth"
	"github.com/flexhire/flexhire/internal/resume"
	"github.com/flexhire/flexhire/internal/storage"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitPattern = regexp.MustCompile(`\D`)
)

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	UserType   string `json:"user_type"`
	Location   string `json:"location"`
	Phone      string `json:"phone"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Bio        string `json:"bio"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  storage.User `json:"user"`
}

func validateRegistration(req RegisterRequest) string {
	switch {
	case !emailPattern.MatchString(req.Email):
		return "a valid email is required"
	case len(req.Password) < 6:
		return "password must be at least 6 characters"
	case req.Name == "":
		return "name is required"
	case req.UserType != storage.RoleSeeker && req.UserType != storage.RoleProvider:
		return "user_type must be jobSeeker or jobProvider"
	case req.Phone != "" && len(digitPattern.ReplaceAllString(req.Phone, "")) != 10:
		return "phone must contain exactly 10 digits"
	}
	return ""
}

func handleRegister(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if msg := validateRegistration(req); msg != "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%s", msg)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to hash password: %v", err)
			return
		}

		now := time.Now().UTC()
		u := storage.User{
			ID:           uuid.New().String(),
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			UserType:     req.UserType,
			Location:     req.Location,
			Phone:        req.Phone,
			Skills:       req.Skills,
			Experience:   req.Experience,
			Bio:          req.Bio,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := deps.Store.CreateUser(u); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				httpError(w, http.StatusConflict, "conflict", "email already registered")
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "failed to create user: %v", err)
			return
		}

		token, err := deps.Signer.Issue(auth.Identity{UserID: u.ID, Role: u.UserType})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to issue token: %v", err)
			return
		}
		writeJSON(w, http.StatusCreated, SessionResponse{Token: token, User: u})
	}
}

func handleLogin(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		u, err := deps.Store.GetUserByEmail(req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid email or password")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to look up user: %v", err)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid email or password")
			return
		}

		token, err := deps.Signer.Issue(auth.Identity{UserID: u.ID, Role: u.UserType})
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to issue token: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{Token: token, User: u})
	}
}

func handleMe(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := deps.Store.GetUserByID(identityFrom(r).UserID)
		if err != nil {
			storeError(w, err, "load user")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// requireSelf rejects requests where the {id} path segment is not the session
// user. Profiles, applications, stats and resumes are private.
func requireSelf(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id != identityFrom(r).UserID {
		httpError(w, http.StatusForbidden, "permission_error", "not your account")
		return "", false
	}
	return id, true
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireSelf(w, r)
		if !ok {
			return
		}
		u, err := deps.Store.GetUserByID(id)
		if err != nil {
			storeError(w, err, "load profile")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type ProfileRequest struct {
	Name       *string `json:"name"`
	Location   *string `json:"location"`
	Phone      *string `json:"phone"`
	Skills     *string `json:"skills"`
	Experience *string `json:"experience"`
	Bio        *string `json:"bio"`
}

func handlePutProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireSelf(w, r)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req ProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		patch := storage.ProfilePatch{
			Name:       req.Name,
			Location:   req.Location,
			Phone:      req.Phone,
			Skills:     req.Skills,
			Experience: req.Experience,
			Bio:        req.Bio,
		}
		if err := deps.Store.UpdateUserProfile(id, patch); err != nil {
			storeError(w, err, "update profile")
			return
		}

		u, err := deps.Store.GetUserByID(id)
		if err != nil {
			storeError(w, err, "load profile")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type ResumeRequest struct {
	Content string `json:"content"` // base64-encoded PDF
}

type ResumeResponse struct {
	Skills      []string `json:"skills"`
	SkillsField string   `json:"skills_field"`
}

func handleUploadResume(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireSelf(w, r)
		if !ok {
			return
		}
		if identityFrom(r).Role != storage.RoleSeeker {
			httpError(w, http.StatusForbidden, "permission_error", "only job seekers upload resumes")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxResumeBodySize)
		var req ResumeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		data, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
			return
		}

		text, err := resume.ExtractText(data)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "could not read pdf: %v", err)
			return
		}

		u, err := deps.Store.GetUserByID(id)
		if err != nil {
			storeError(w, err, "load user")
			return
		}

		found := resume.MatchSkills(text)
		merged := resume.MergeSkills(u.Skills, found)
		if err := deps.Store.UpdateUserProfile(id, storage.ProfilePatch{Skills: &merged}); err != nil {
			storeError(w, err, "update skills")
			return
		}
		writeJSON(w, http.StatusOK, ResumeResponse{Skills: found, SkillsField: merged})
	}
}

type RatingRequest struct {
	JobID   string `json:"job_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

func handleAddRating(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req RatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Score < 1 || req.Score > 5 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "score must be between 1 and 5")
			return
		}

		rating := storage.Rating{
			ID:      uuid.New().String(),
			UserID:  chi.URLParam(r, "id"),
			RaterID: identityFrom(r).UserID,
			JobID:   req.JobID,
			Score:   req.Score,
			Comment: req.Comment,
		}
		if err := deps.Store.AddRating(rating); err != nil {
			storeError(w, err, "add rating")
			return
		}
		writeJSON(w, http.StatusCreated, rating)
	}
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func handleGetRating(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avg, count, err := deps.Store.AverageRating(chi.URLParam(r, "id"))
		if err != nil {
			storeError(w, err, "load rating")
			return
		}
		writeJSON(w, http.StatusOK, RatingSummary{Average: avg, Count: count})
	}
}

func handleGetStats(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireSelf(w, r)
		if !ok {
			return
		}
		stats, err := deps.Store.GetUserStats(id)
		if err != nil {
			storeError(w, err, "load stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleListNotifications(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		notifications, err := deps.Store.ListNotifications(identityFrom(r).UserID, limit)
		if err != nil {
			storeError(w, err, "list notifications")
			return
		}
		if notifications == nil {
			notifications = []storage.Notification{}
		}
		writeJSON(w, http.StatusOK, notifications)
	}
}

func handleMarkNotificationRead(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Store.MarkNotificationRead(chi.URLParam(r, "id"), identityFrom(r).UserID)
		if err != nil {
			storeError(w, err, "mark notification read")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
	}
}
