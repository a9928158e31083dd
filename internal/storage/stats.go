package storage

// GetUserStats computes the dashboard aggregates for a user based on their role.
func (s *Store) GetUserStats(userID string) (UserStats, error) {
	u, err := s.GetUserByID(userID)
	if err != nil {
		return UserStats{}, err
	}

	var stats UserStats
	if stats.Rating, _, err = s.AverageRating(userID); err != nil {
		return UserStats{}, err
	}

	if u.UserType == RoleProvider {
		if err := s.db.QueryRow(`
			SELECT COUNT(*), COALESCE(SUM(status = 'completed'), 0)
			FROM jobs WHERE provider_id = ?`, userID,
		).Scan(&stats.TotalJobs, &stats.CompletedJobs); err != nil {
			return UserStats{}, err
		}
		return stats, nil
	}

	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM applications WHERE user_id = ?", userID,
	).Scan(&stats.TotalJobs); err != nil {
		return UserStats{}, err
	}
	if err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(budget), 0)
		FROM jobs
		WHERE status = 'completed' AND selected_applicant_id = ?`, userID,
	).Scan(&stats.CompletedJobs, &stats.Earnings); err != nil {
		return UserStats{}, err
	}
	return stats, nil
}
