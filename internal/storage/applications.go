package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateApplication records a seeker's application in one transaction.
// The job must exist and still be open; a second application for the same
// (job, user) pair violates the unique constraint and maps to ErrDuplicate.
func (s *Store) CreateApplication(a Application) error {
	if a.AppliedDate.IsZero() {
		a.AppliedDate = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = "pending"
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning apply transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow("SELECT status FROM jobs WHERE id = ?", a.JobID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != JobOpen {
		return ErrInvalidTransition
	}

	_, err = tx.Exec(`
		INSERT INTO applications (id, job_id, user_id, applied_date, status)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.UserID, a.AppliedDate.Format(time.RFC3339), a.Status,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListApplicationsByJob returns the applications on a job joined with each
// applicant's name and email for the provider's applicant view.
func (s *Store) ListApplicationsByJob(jobID string) ([]Application, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.job_id, a.user_id, a.applied_date, a.status, u.name, u.email
		FROM applications a JOIN users u ON u.id = a.user_id
		WHERE a.job_id = ?
		ORDER BY a.applied_date ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Application
	for rows.Next() {
		var a Application
		var appliedDate string
		if err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &appliedDate, &a.Status,
			&a.ApplicantName, &a.ApplicantEmail); err != nil {
			return nil, err
		}
		if a.AppliedDate, err = time.Parse(time.RFC3339, appliedDate); err != nil {
			return nil, fmt.Errorf("parsing applied_date: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// ListApplicationsByUser returns a seeker's applications, newest first.
func (s *Store) ListApplicationsByUser(userID string) ([]Application, error) {
	rows, err := s.db.Query(`
		SELECT id, job_id, user_id, applied_date, status
		FROM applications
		WHERE user_id = ?
		ORDER BY applied_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Application
	for rows.Next() {
		var a Application
		var appliedDate string
		if err := rows.Scan(&a.ID, &a.JobID, &a.UserID, &appliedDate, &a.Status); err != nil {
			return nil, err
		}
		if a.AppliedDate, err = time.Parse(time.RFC3339, appliedDate); err != nil {
			return nil, fmt.Errorf("parsing applied_date: %w", err)
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

// CountApplications returns the number of applications on a job.
func (s *Store) CountApplications(jobID string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM applications WHERE job_id = ?", jobID).Scan(&n)
	return n, err
}
