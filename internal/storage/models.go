package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness rule
// (user email, or one application per job and seeker).
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidTransition is returned when a job status change would move
// backward or skip a state. Jobs only move open -> in-progress -> completed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrNotApplied is returned when a provider tries to select a user who
// holds no application on the job.
var ErrNotApplied = errors.New("user has not applied to this job")

// User roles.
const (
	RoleSeeker   = "jobSeeker"
	RoleProvider = "jobProvider"
)

// Job statuses.
const (
	JobOpen       = "open"
	JobInProgress = "in-progress"
	JobCompleted  = "completed"
)

// JobCategories are the accepted values for Job.Category.
var JobCategories = []string{
	"construction", "electrical", "plumbing", "agriculture", "repair", "cleaning", "other",
}

// DurationTypes are the accepted values for Job.DurationType.
var DurationTypes = []string{"hourly", "daily", "weekly", "monthly"}

// UrgencyLevels are the accepted values for Job.Urgency.
var UrgencyLevels = []string{"normal", "urgent", "very-urgent"}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	UserType     string    `json:"user_type"`
	Location     string    `json:"location"`
	Phone        string    `json:"phone"`
	Skills       string    `json:"skills"` // comma-separated free text
	Experience   string    `json:"experience"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Job struct {
	ID                  string    `json:"id"`
	ProviderID          string    `json:"provider_id"`
	ProviderName        string    `json:"provider_name,omitempty"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	Location            string    `json:"location"`
	DurationType        string    `json:"duration_type"`
	DurationValue       int       `json:"duration_value"`
	Budget              int64     `json:"budget"` // currency-agnostic whole units
	SkillsRequired      string    `json:"skills_required"`
	Urgency             string    `json:"urgency"`
	Status              string    `json:"status"`
	SelectedApplicantID string    `json:"selected_applicant_id,omitempty"`
	PostedDate          time.Time `json:"posted_date"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Application struct {
	ID          string    `json:"id"`
	JobID       string    `json:"job_id"`
	UserID      string    `json:"user_id"`
	AppliedDate time.Time `json:"applied_date"`
	Status      string    `json:"status"`

	// Joined applicant fields, populated by ListApplicationsByJob for the
	// provider's applicant view. Empty elsewhere.
	ApplicantName  string `json:"applicant_name,omitempty"`
	ApplicantEmail string `json:"applicant_email,omitempty"`
}

type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`  // ratee
	RaterID   string    `json:"rater_id"` // the job's provider
	JobID     string    `json:"job_id"`
	Score     int       `json:"score"` // 1..5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a queued background unit of work, currently only notifications.
type Task struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// JobFilter holds the optional, AND-combined browse filters for open jobs.
// Zero values mean "no constraint"; Location and Search match substrings
// case-insensitively, MaxBudget is an upper bound on Budget.
type JobFilter struct {
	Category     string
	Location     string
	DurationType string
	MaxBudget    int64
	Search       string
}

// UserStats aggregates a user's dashboard numbers. For seekers TotalJobs
// counts applications and Earnings sums completed budgets where the user
// was the selected applicant; for providers TotalJobs counts posted jobs.
type UserStats struct {
	TotalJobs     int     `json:"total_jobs"`
	CompletedJobs int     `json:"completed_jobs"`
	Rating        float64 `json:"rating"`
	Earnings      int64   `json:"earnings"`
}
