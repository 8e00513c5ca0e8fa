package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewKeyPrefix = "views:"            // Per-day counter: views:{project_id}:{YYYY-MM-DD}
	counterTTL    = 40 * 24 * time.Hour // Counters outlive the rollup window with margin
	dayFormat     = "2006-01-02"
)

// ViewCounter tracks public page views in Redis. The hot path is a single
// INCR; aggregation into Postgres happens in the rollup worker.
type ViewCounter struct {
	client *redis.Client
}

func NewViewCounter(client *redis.Client) *ViewCounter {
	return &ViewCounter{client: client}
}

// RecordView increments today's counter for the project.
func (v *ViewCounter) RecordView(ctx context.Context, projectID string) error {
	key := v.dayKey(projectID, time.Now().UTC())

	pipe := v.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record view for %s: %w", projectID, err)
	}
	return nil
}

// ViewsOn returns the live counter for the project on the given day.
func (v *ViewCounter) ViewsOn(ctx context.Context, projectID string, day time.Time) (int64, error) {
	val, err := v.client.Get(ctx, v.dayKey(projectID, day)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get views for %s: %w", projectID, err)
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse view counter for %s: %w", projectID, err)
	}
	return n, nil
}

// Snapshot scans all counters for a day and returns project id → views.
// Used by the rollup worker.
func (v *ViewCounter) Snapshot(ctx context.Context, day time.Time) (map[string]int64, error) {
	pattern := viewKeyPrefix + "*:" + day.UTC().Format(dayFormat)
	out := make(map[string]int64)

	var cursor uint64
	for {
		keys, next, err := v.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan view counters: %w", err)
		}

		for _, key := range keys {
			val, err := v.client.Get(ctx, key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get %s: %w", key, err)
			}
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				continue
			}
			out[projectIDFromKey(key, day)] = n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

func (v *ViewCounter) dayKey(projectID string, day time.Time) string {
	return viewKeyPrefix + projectID + ":" + day.UTC().Format(dayFormat)
}

func projectIDFromKey(key string, day time.Time) string {
	id := key[len(viewKeyPrefix):]
	suffix := ":" + day.UTC().Format(dayFormat)
	return id[:len(id)-len(suffix)]
}
