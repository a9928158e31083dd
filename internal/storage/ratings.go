package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// AddRating records a provider's score for the seeker who worked a job.
// The job must be completed, raterID must own it, and userID must be the
// selected applicant. One rating per (job, rater) pair.
func (s *Store) AddRating(r Rating) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning rating transaction: %w", err)
	}
	defer tx.Rollback()

	var status, providerID string
	var selected sql.NullString
	err = tx.QueryRow(
		"SELECT status, provider_id, selected_applicant_id FROM jobs WHERE id = ?", r.JobID,
	).Scan(&status, &providerID, &selected)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != JobCompleted || providerID != r.RaterID || selected.String != r.UserID {
		return ErrInvalidTransition
	}

	_, err = tx.Exec(`
		INSERT INTO ratings (id, user_id, rater_id, job_id, score, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.RaterID, r.JobID, r.Score, r.Comment,
		r.CreatedAt.Format(time.RFC3339),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// AverageRating returns the mean score for a user and the rating count.
// A user with no ratings averages 0.
func (s *Store) AverageRating(userID string) (float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := s.db.QueryRow(
		"SELECT AVG(score), COUNT(*) FROM ratings WHERE user_id = ?", userID,
	).Scan(&avg, &count)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, count, nil
}

// ListRatingsByUser returns the ratings received by a user, newest first.
func (s *Store) ListRatingsByUser(userID string) ([]Rating, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, rater_id, job_id, score, comment, created_at
		FROM ratings
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Rating
	for rows.Next() {
		var r Rating
		var createdAt string
		if err := rows.Scan(&r.ID, &r.UserID, &r.RaterID, &r.JobID, &r.Score, &r.Comment, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
