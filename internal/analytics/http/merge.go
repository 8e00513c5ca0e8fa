package http

import (
	"time"

	"github.com/docshelf-app/docshelf-backend/internal/analytics"
)

// mergeDaily combines rolled-up history with the live counter for today.
// The live counter wins for today when it has a value; otherwise an
// already-rolled-up today row (a mid-day rollup followed by a Redis
// restart) is kept instead of being dropped.
func mergeDaily(daily []analytics.DailyViews, now time.Time, live int64) ([]analytics.DailyViews, int64) {
	var (
		total       int64
		todayRolled int64
	)
	today := now.UTC().Format("2006-01-02")

	merged := make([]analytics.DailyViews, 0, len(daily)+1)
	for _, d := range daily {
		if d.Day.Format("2006-01-02") == today {
			todayRolled = d.Views
			continue
		}
		merged = append(merged, d)
		total += d.Views
	}

	todayViews := live
	if todayViews == 0 {
		todayViews = todayRolled
	}
	if todayViews > 0 {
		merged = append(merged, analytics.DailyViews{Day: now.UTC().Truncate(24 * time.Hour), Views: todayViews})
		total += todayViews
	}
	return merged, total
}
