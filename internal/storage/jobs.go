package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const jobColumns = `j.id, j.provider_id, u.name, j.title, j.description, j.category, j.location,
	j.duration_type, j.duration_value, j.budget, j.skills_required, j.urgency,
	j.status, j.selected_applicant_id, j.posted_date, j.updated_at`

// CreateJob inserts a new listing with status "open".
func (s *Store) CreateJob(j Job) error {
	now := time.Now().UTC()
	if j.PostedDate.IsZero() {
		j.PostedDate = now
	}
	if j.Status == "" {
		j.Status = JobOpen
	}
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, provider_id, title, description, category, location,
			duration_type, duration_value, budget, skills_required, urgency,
			status, posted_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.ProviderID, j.Title, j.Description, j.Category, j.Location,
		j.DurationType, j.DurationValue, j.Budget, j.SkillsRequired, j.Urgency,
		j.Status, j.PostedDate.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	return err
}

// GetJob returns a single job by id, or ErrNotFound.
func (s *Store) GetJob(id string) (Job, error) {
	row := s.db.QueryRow(`
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.provider_id
		WHERE j.id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return Job{}, ErrNotFound
	}
	return j, err
}

// ListOpenJobs returns open listings matching the AND-combined filter,
// newest first.
func (s *Store) ListOpenJobs(f JobFilter) ([]Job, error) {
	where := []string{"j.status = ?"}
	args := []any{JobOpen}

	if f.Category != "" && f.Category != "all" {
		where = append(where, "j.category = ?")
		args = append(args, f.Category)
	}
	if f.Location != "" {
		where = append(where, "instr(lower(j.location), lower(?)) > 0")
		args = append(args, f.Location)
	}
	if f.DurationType != "" && f.DurationType != "all" {
		where = append(where, "j.duration_type = ?")
		args = append(args, f.DurationType)
	}
	if f.MaxBudget > 0 {
		where = append(where, "j.budget <= ?")
		args = append(args, f.MaxBudget)
	}
	if f.Search != "" {
		where = append(where, "instr(lower(j.title), lower(?)) > 0")
		args = append(args, f.Search)
	}

	return s.queryJobs(`
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.provider_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY j.posted_date DESC`, args...)
}

// ListJobsByProvider returns all jobs posted by providerID, newest first.
func (s *Store) ListJobsByProvider(providerID string) ([]Job, error) {
	return s.queryJobs(`
		SELECT `+jobColumns+`
		FROM jobs j JOIN users u ON u.id = j.provider_id
		WHERE j.provider_id = ?
		ORDER BY j.posted_date DESC`, providerID)
}

// SelectApplicant moves an open job to in-progress and records the chosen
// seeker. The whole check-and-set runs in one transaction: the job must be
// open and applicantID must hold an application on it.
func (s *Store) SelectApplicant(jobID, applicantID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning select transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRow("SELECT status FROM jobs WHERE id = ?", jobID).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != JobOpen {
		return ErrInvalidTransition
	}

	var applied int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM applications WHERE job_id = ? AND user_id = ?",
		jobID, applicantID,
	).Scan(&applied); err != nil {
		return err
	}
	if applied == 0 {
		return ErrNotApplied
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(`
		UPDATE jobs SET status = ?, selected_applicant_id = ?, updated_at = ?
		WHERE id = ?`, JobInProgress, applicantID, now, jobID); err != nil {
		return err
	}

	return tx.Commit()
}

// CompleteJob moves an in-progress job to completed. The selected applicant
// is left untouched. Any other starting status is an invalid transition.
func (s *Store) CompleteJob(jobID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE jobs SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`, JobCompleted, now, jobID, JobInProgress)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM jobs WHERE id = ?", jobID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// DeleteJob removes a job. Its applications go with it via the foreign-key
// cascade; applications on other jobs are unaffected.
func (s *Store) DeleteJob(id string) error {
	res, err := s.db.Exec("DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var selected sql.NullString
	var postedDate, updatedAt string
	err := row.Scan(&j.ID, &j.ProviderID, &j.ProviderName, &j.Title, &j.Description,
		&j.Category, &j.Location, &j.DurationType, &j.DurationValue, &j.Budget,
		&j.SkillsRequired, &j.Urgency, &j.Status, &selected, &postedDate, &updatedAt)
	if err != nil {
		return Job{}, err
	}
	j.SelectedApplicantID = selected.String
	if j.PostedDate, err = time.Parse(time.RFC3339, postedDate); err != nil {
		return Job{}, fmt.Errorf("parsing posted_date: %w", err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Job{}, fmt.Errorf("parsing updated_at: %w", err)
	}
	return j, nil
}

func (s *Store) queryJobs(query string, args ...any) ([]Job, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, j)
	}
	return results, rows.Err()
}
