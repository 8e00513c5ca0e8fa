package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyViews is one rolled-up row as read back for the dashboard.
type DailyViews struct {
	Day   time.Time `json:"day"`
	Views int64     `json:"views"`
}

// History reads the rolled-up daily view counts for the dashboard API.
type History struct {
	db *pgxpool.Pool
}

func NewHistory(db *pgxpool.Pool) *History {
	return &History{db: db}
}

func (h *History) Daily(ctx context.Context, projectID string, since time.Time) ([]DailyViews, error) {
	const q = `
select day, views
from project_view_daily
where project_id = $1 and day >= $2
order by day asc;
`
	rows, err := h.db.Query(ctx, q, projectID, since.UTC().Format(dayFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailyViews, 0, 32)
	for rows.Next() {
		var d DailyViews
		if err := rows.Scan(&d.Day, &d.Views); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
