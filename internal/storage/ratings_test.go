package storage

import (
	"testing"

	"github.com/google/uuid"
)

// completeJobFor seeds a job, applies the seeker, selects them and completes
// the job, returning the finished job.
func completeJobFor(t *testing.T, s *Store, providerID, seekerID string, mutate func(*Job)) Job {
	t.Helper()
	j := seedJob(t, s, providerID, mutate)
	apply(t, s, j.ID, seekerID)
	if err := s.SelectApplicant(j.ID, seekerID); err != nil {
		t.Fatalf("SelectApplicant: %v", err)
	}
	if err := s.CompleteJob(j.ID); err != nil {
		t.Fatalf("CompleteJob: %v", err)
	}
	return j
}

func TestAddRating(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)
	j := completeJobFor(t, s, p.ID, seeker.ID, nil)

	r := Rating{
		ID: uuid.New().String(), UserID: seeker.ID, RaterID: p.ID,
		JobID: j.ID, Score: 4, Comment: "steady work",
	}
	if err := s.AddRating(r); err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	avg, count, err := s.AverageRating(seeker.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 4 || count != 1 {
		t.Errorf("AverageRating = (%v, %d), want (4, 1)", avg, count)
	}

	got, err := s.ListRatingsByUser(seeker.ID)
	if err != nil {
		t.Fatalf("ListRatingsByUser: %v", err)
	}
	if len(got) != 1 || got[0].Comment != "steady work" {
		t.Errorf("ListRatingsByUser = %+v, want one rating with the stored comment", got)
	}
}

func TestAddRating_OncePerJob(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)
	j := completeJobFor(t, s, p.ID, seeker.ID, nil)

	r := Rating{ID: uuid.New().String(), UserID: seeker.ID, RaterID: p.ID, JobID: j.ID, Score: 5}
	if err := s.AddRating(r); err != nil {
		t.Fatalf("AddRating: %v", err)
	}
	r.ID = uuid.New().String()
	r.Score = 1
	if err := s.AddRating(r); err != ErrDuplicate {
		t.Errorf("second rating = %v, want ErrDuplicate", err)
	}
}

func TestAddRating_RequiresCompletedJob(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)
	j := seedJob(t, s, p.ID, nil)
	apply(t, s, j.ID, seeker.ID)

	r := Rating{ID: uuid.New().String(), UserID: seeker.ID, RaterID: p.ID, JobID: j.ID, Score: 3}
	if err := s.AddRating(r); err != ErrInvalidTransition {
		t.Errorf("rating an open job = %v, want ErrInvalidTransition", err)
	}
}

func TestAddRating_OnlyOwnerRatesSelected(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	stranger := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)
	bystander := seedUser(t, s, RoleSeeker)
	j := completeJobFor(t, s, p.ID, seeker.ID, nil)

	r := Rating{ID: uuid.New().String(), UserID: seeker.ID, RaterID: stranger.ID, JobID: j.ID, Score: 2}
	if err := s.AddRating(r); err != ErrInvalidTransition {
		t.Errorf("rating by non-owner = %v, want ErrInvalidTransition", err)
	}

	r = Rating{ID: uuid.New().String(), UserID: bystander.ID, RaterID: p.ID, JobID: j.ID, Score: 2}
	if err := s.AddRating(r); err != ErrInvalidTransition {
		t.Errorf("rating a non-applicant = %v, want ErrInvalidTransition", err)
	}
}

func TestAverageRating_NoRatings(t *testing.T) {
	s := openTestStore(t)
	u := seedUser(t, s, RoleSeeker)

	avg, count, err := s.AverageRating(u.ID)
	if err != nil {
		t.Fatalf("AverageRating: %v", err)
	}
	if avg != 0 || count != 0 {
		t.Errorf("AverageRating = (%v, %d), want (0, 0)", avg, count)
	}
}

func TestGetUserStats_Provider(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)

	completeJobFor(t, s, p.ID, seeker.ID, nil)
	seedJob(t, s, p.ID, func(j *Job) { j.Title = "Tile a roof" })

	stats, err := s.GetUserStats(p.ID)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.TotalJobs != 2 {
		t.Errorf("TotalJobs = %d, want 2", stats.TotalJobs)
	}
	if stats.CompletedJobs != 1 {
		t.Errorf("CompletedJobs = %d, want 1", stats.CompletedJobs)
	}
	if stats.Earnings != 0 {
		t.Errorf("Earnings = %d, want 0 for a provider", stats.Earnings)
	}
}

func TestGetUserStats_Seeker(t *testing.T) {
	s := openTestStore(t)
	p := seedUser(t, s, RoleProvider)
	seeker := seedUser(t, s, RoleSeeker)

	completeJobFor(t, s, p.ID, seeker.ID, func(j *Job) { j.Budget = 300 })
	completeJobFor(t, s, p.ID, seeker.ID, func(j *Job) {
		j.Title = "Mow a field"
		j.Budget = 200
	})

	// An open application does not earn anything.
	open := seedJob(t, s, p.ID, func(j *Job) { j.Title = "Fix a gate" })
	apply(t, s, open.ID, seeker.ID)

	stats, err := s.GetUserStats(seeker.ID)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.TotalJobs != 3 {
		t.Errorf("TotalJobs = %d, want 3 applications", stats.TotalJobs)
	}
	if stats.CompletedJobs != 2 {
		t.Errorf("CompletedJobs = %d, want 2", stats.CompletedJobs)
	}
	if stats.Earnings != 500 {
		t.Errorf("Earnings = %d, want 500", stats.Earnings)
	}
}

func TestGetUserStats_UserMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetUserStats("missing"); err != ErrNotFound {
		t.Errorf("GetUserStats(missing) = %v, want ErrNotFound", err)
	}
}
