package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func enqueue(t *testing.T, s *Store, typ string, mutate func(*Task)) Task {
	t.Helper()
	task := Task{ID: uuid.New().String(), Type: typ, PayloadJSON: "{}"}
	if mutate != nil {
		mutate(&task)
	}
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("EnqueueTask: %v", err)
	}
	return task
}

func TestClaimNextTask_Order(t *testing.T) {
	s := openTestStore(t)
	first := enqueue(t, s, "notify", func(task *Task) {
		task.RunAfter = time.Now().UTC().Add(-2 * time.Minute)
	})
	enqueue(t, s, "notify", func(task *Task) {
		task.RunAfter = time.Now().UTC().Add(-time.Minute)
	})

	claimed, err := s.ClaimNextTask([]string{"notify"})
	if err != nil {
		t.Fatalf("ClaimNextTask: %v", err)
	}
	if claimed == nil {
		t.Fatal("ClaimNextTask returned nil, want the oldest task")
	}
	if claimed.ID != first.ID {
		t.Errorf("claimed %s, want oldest %s", claimed.ID, first.ID)
	}
	if claimed.Status != "running" {
		t.Errorf("Status = %q, want running", claimed.Status)
	}
}

func TestClaimNextTask_TypeFilter(t *testing.T) {
	s := openTestStore(t)
	enqueue(t, s, "notify", nil)

	claimed, err := s.ClaimNextTask([]string{"reindex"})
	if err != nil {
		t.Fatalf("ClaimNextTask: %v", err)
	}
	if claimed != nil {
		t.Errorf("claimed task of type %q, want nil for unmatched types", claimed.Type)
	}

	if claimed, err = s.ClaimNextTask(nil); err != nil || claimed != nil {
		t.Errorf("ClaimNextTask(nil) = (%v, %v), want (nil, nil)", claimed, err)
	}
}

func TestClaimNextTask_SkipsFuture(t *testing.T) {
	s := openTestStore(t)
	enqueue(t, s, "notify", func(task *Task) {
		task.RunAfter = time.Now().UTC().Add(time.Hour)
	})

	claimed, err := s.ClaimNextTask([]string{"notify"})
	if err != nil {
		t.Fatalf("ClaimNextTask: %v", err)
	}
	if claimed != nil {
		t.Error("claimed a task scheduled in the future")
	}
}

func TestClaimNextTask_NotClaimedTwice(t *testing.T) {
	s := openTestStore(t)
	enqueue(t, s, "notify", nil)

	if claimed, err := s.ClaimNextTask([]string{"notify"}); err != nil || claimed == nil {
		t.Fatalf("first claim = (%v, %v), want a task", claimed, err)
	}
	claimed, err := s.ClaimNextTask([]string{"notify"})
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if claimed != nil {
		t.Error("running task claimed a second time")
	}
}

func TestCompleteTask(t *testing.T) {
	s := openTestStore(t)
	task := enqueue(t, s, "notify", nil)

	if _, err := s.ClaimNextTask([]string{"notify"}); err != nil {
		t.Fatalf("ClaimNextTask: %v", err)
	}
	if err := s.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	if err := s.CompleteTask("missing"); err != ErrNotFound {
		t.Errorf("CompleteTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestFailTask_BackoffThenFailed(t *testing.T) {
	s := openTestStore(t)
	task := enqueue(t, s, "notify", func(task *Task) { task.MaxAttempts = 2 })

	if _, err := s.ClaimNextTask([]string{"notify"}); err != nil {
		t.Fatalf("ClaimNextTask: %v", err)
	}
	if err := s.FailTask(task.ID, "smtp timeout"); err != nil {
		t.Fatalf("FailTask: %v", err)
	}

	// First failure reschedules with backoff, so nothing is due yet.
	claimed, err := s.ClaimNextTask([]string{"notify"})
	if err != nil {
		t.Fatalf("ClaimNextTask after failure: %v", err)
	}
	if claimed != nil {
		t.Fatal("claimed a task still in backoff")
	}

	var status string
	var attempts int
	var lastError string
	err = s.DB().QueryRow(
		"SELECT status, attempts, last_error FROM tasks WHERE id = ?", task.ID,
	).Scan(&status, &attempts, &lastError)
	if err != nil {
		t.Fatalf("querying task: %v", err)
	}
	if status != "pending" || attempts != 1 || lastError != "smtp timeout" {
		t.Errorf("after first failure: status=%q attempts=%d last_error=%q", status, attempts, lastError)
	}

	// Second failure exhausts max_attempts.
	if err := s.FailTask(task.ID, "smtp timeout"); err != nil {
		t.Fatalf("FailTask: %v", err)
	}
	if err := s.DB().QueryRow("SELECT status FROM tasks WHERE id = ?", task.ID).Scan(&status); err != nil {
		t.Fatalf("querying task: %v", err)
	}
	if status != "failed" {
		t.Errorf("status = %q after exhausting attempts, want failed", status)
	}
}

func TestFailTask_NotFound(t *testing.T) {
	s := openTestStore(t)
	if err := s.FailTask("missing", "boom"); err != ErrNotFound {
		t.Errorf("FailTask(missing) = %v, want ErrNotFound", err)
	}
}
