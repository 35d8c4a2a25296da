package jobs

import (
	"context"
	"log"
	"time"

	"xogs-backend/internal/services"
)

// ProfileRefreshJob periodically re-fetches Twitter profiles for users
// whose data has gone stale and re-runs scoring on the fresh snapshot.
type ProfileRefreshJob struct {
	users      *services.UserService
	staleAfter time.Duration
	batchSize  int
}

func NewProfileRefreshJob(users *services.UserService, staleAfter time.Duration) *ProfileRefreshJob {
	return &ProfileRefreshJob{
		users:      users,
		staleAfter: staleAfter,
		batchSize:  50,
	}
}

// Start begins the periodic profile refresh job
func (j *ProfileRefreshJob) Start(interval time.Duration) {
	go func() {
		ctx := context.Background()

		// Run immediately on start
		j.refreshStale(ctx)

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.refreshStale(ctx)
		}
	}()
}

func (j *ProfileRefreshJob) refreshStale(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-j.staleAfter)

	users, err := j.users.StaleUsers(cutoff, j.batchSize)
	if err != nil {
		log.Printf("Profile refresh: failed to load stale users: %v", err)
		return
	}
	if len(users) == 0 {
		return
	}

	refreshed := 0
	for _, u := range users {
		if _, err := j.users.RefreshProfile(ctx, u.ID, now); err != nil {
			log.Printf("Profile refresh: user %d (%s) failed: %v", u.ID, u.TwitterUsername, err)
			continue
		}
		refreshed++
	}

	log.Printf("Profile refresh: refreshed %d/%d users", refreshed, len(users))
}
