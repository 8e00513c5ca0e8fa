package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// DailyStore persists rolled-up daily view counts.
type DailyStore interface {
	UpsertDaily(ctx context.Context, projectID string, day time.Time, views int64) error
}

// RollupStore is the database/sql implementation of DailyStore used by the
// worker binary (lib/pq driver).
type RollupStore struct {
	db *sql.DB
}

func NewRollupStore(db *sql.DB) *RollupStore {
	return &RollupStore{db: db}
}

func (s *RollupStore) UpsertDaily(ctx context.Context, projectID string, day time.Time, views int64) error {
	const q = `
INSERT INTO project_view_daily (project_id, day, views)
VALUES ($1, $2, $3)
ON CONFLICT (project_id, day) DO UPDATE SET views = excluded.views;
`
	if _, err := s.db.ExecContext(ctx, q, projectID, day.UTC().Format(dayFormat), views); err != nil {
		return fmt.Errorf("upsert daily views for %s: %w", projectID, err)
	}
	return nil
}

// Rollup copies a day's Redis view counters into the daily table. Re-running
// for the same day is safe: the upsert overwrites with the latest counter.
type Rollup struct {
	counter *ViewCounter
	store   DailyStore
}

func NewRollup(counter *ViewCounter, store DailyStore) *Rollup {
	return &Rollup{counter: counter, store: store}
}

// Run rolls up the given day and returns the number of projects written.
func (r *Rollup) Run(ctx context.Context, day time.Time) (int, error) {
	counts, err := r.counter.Snapshot(ctx, day)
	if err != nil {
		return 0, err
	}

	written := 0
	for projectID, views := range counts {
		if err := r.store.UpsertDaily(ctx, projectID, day, views); err != nil {
			// keep going: one bad row must not lose the rest of the day
			log.Printf("analytics: rollup %s on %s: %v", projectID, day.Format(dayFormat), err)
			continue
		}
		written++
	}
	return written, nil
}
