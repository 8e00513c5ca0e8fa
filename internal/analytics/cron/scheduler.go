package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/docshelf-app/docshelf-backend/internal/analytics"
)

type Scheduler struct {
	rollup *analytics.Rollup
}

func NewScheduler(rollup *analytics.Rollup) *Scheduler {
	return &Scheduler{rollup: rollup}
}

// Start schedules the nightly rollup. Shortly after midnight UTC the
// previous day's counters are copied into Postgres; today's counter is also
// refreshed so a mid-day restart loses nothing.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 10 0 * * *", func() {
		s.runNightly()
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Println("Analytics rollup scheduler started (nightly at 00:10 UTC)")
	c.Start()
}

func (s *Scheduler) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	for _, day := range []time.Time{now.AddDate(0, 0, -1), now} {
		written, err := s.rollup.Run(ctx, day)
		if err != nil {
			log.Printf("Rollup for %s failed: %v", day.Format("2006-01-02"), err)
			continue
		}
		log.Printf("Rollup for %s wrote %d project(s)", day.Format("2006-01-02"), written)
	}
}
