// Package notify turns queued marketplace events into user notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flexhire/flexhire/internal/storage"
)

// TaskType is the queue type the worker claims.
const TaskType = "notify"

// Notification kinds.
const (
	KindApplicationReceived = "application_received"
	KindApplicantSelected   = "applicant_selected"
	KindJobCompleted        = "job_completed"
)

// Payload is the JSON body of a notify task: which event happened on which
// job, and who should hear about it.
type Payload struct {
	Kind   string `json:"kind"`
	JobID  string `json:"job_id"`
	UserID string `json:"user_id"`
}

// Enqueue queues a notification event for the worker.
func Enqueue(store *storage.Store, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling notify payload: %w", err)
	}
	return store.EnqueueTask(storage.Task{
		ID:          uuid.New().String(),
		Type:        TaskType,
		PayloadJSON: string(body),
	})
}

// Worker polls the task queue and writes notification rows.
type Worker struct {
	store    *storage.Store
	interval time.Duration
}

func NewWorker(store *storage.Store, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Worker{store: store, interval: interval}
}

// Run polls until ctx is cancelled. After an empty poll it sleeps for the
// configured interval; after work it polls again immediately.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		worked, err := w.RunOnce()
		if err != nil {
			slog.Error("notification worker error", "error", err)
		}
		if worked {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce claims and processes at most one task. It reports whether a task
// was claimed.
func (w *Worker) RunOnce() (bool, error) {
	task, err := w.store.ClaimNextTask([]string{TaskType})
	if err != nil {
		return false, fmt.Errorf("claiming task: %w", err)
	}
	if task == nil {
		return false, nil
	}

	if err := w.process(task); err != nil {
		slog.Warn("notify task failed", "task", task.ID, "attempt", task.Attempts+1, "error", err)
		if failErr := w.store.FailTask(task.ID, err.Error()); failErr != nil {
			return true, fmt.Errorf("recording task failure: %w", failErr)
		}
		return true, nil
	}

	if err := w.store.CompleteTask(task.ID); err != nil {
		return true, fmt.Errorf("completing task: %w", err)
	}
	return true, nil
}

func (w *Worker) process(task *storage.Task) error {
	var p Payload
	if err := json.Unmarshal([]byte(task.PayloadJSON), &p); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if p.UserID == "" || p.JobID == "" {
		return fmt.Errorf("payload missing user_id or job_id")
	}

	job, err := w.store.GetJob(p.JobID)
	if err != nil {
		return fmt.Errorf("loading job %s: %w", p.JobID, err)
	}

	var body string
	switch p.Kind {
	case KindApplicationReceived:
		body = fmt.Sprintf("New application received for %q", job.Title)
	case KindApplicantSelected:
		body = fmt.Sprintf("You were selected for %q", job.Title)
	case KindJobCompleted:
		body = fmt.Sprintf("Job %q was marked completed", job.Title)
	default:
		return fmt.Errorf("unknown notification kind %q", p.Kind)
	}

	return w.store.AddNotification(storage.Notification{
		ID:        uuid.New().String(),
		UserID:    p.UserID,
		Kind:      p.Kind,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}
