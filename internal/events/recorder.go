package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event names recorded by the mutation services.
const (
	ProjectCreated     = "project_created"
	ProjectUpdated     = "project_updated"
	ProjectDeleted     = "project_deleted"
	ProjectPublished   = "project_published"
	ProjectUnpublished = "project_unpublished"
	ProjectDuplicated  = "project_duplicated"
	DocumentCreated    = "document_created"
	DocumentUpdated    = "document_updated"
	DocumentDeleted    = "document_deleted"
)

// Event is a single analytics/audit entry appended to the event store.
type Event struct {
	TenantID  string
	ProjectID string
	ActorID   string
	Name      string
	Payload   map[string]interface{}
}

// Recorder appends events to the project_events table. Recording is
// fire-and-forget: failures are logged and never fail the calling mutation.
type Recorder struct {
	db *pgxpool.Pool
}

func NewRecorder(db *pgxpool.Pool) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(ctx context.Context, e Event) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		log.Printf("events: marshal payload for %s: %v", e.Name, err)
		payload = []byte("{}")
	}

	const q = `
insert into project_events (id, tenant_id, project_id, actor_id, name, payload)
values ($1, $2::uuid, $3, nullif($4,'')::uuid, $5, $6);
`
	if _, err := r.db.Exec(ctx, q, uuid.New().String(), e.TenantID, e.ProjectID, e.ActorID, e.Name, payload); err != nil {
		log.Printf("events: record %s for project %s: %v", e.Name, e.ProjectID, err)
	}
}

// RecentEntry is a stored event row as read back for the dashboard.
type RecentEntry struct {
	ID        string                 `json:"id"`
	ProjectID string                 `json:"project_id"`
	Name      string                 `json:"name"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Recent returns the newest events for a project, tenant-scoped.
func (r *Recorder) Recent(ctx context.Context, tenantID, projectID string, limit int) ([]RecentEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
select id::text, project_id, name, payload, created_at
from project_events
where tenant_id = $1::uuid and project_id = $2
order by created_at desc
limit $3;
`
	rows, err := r.db.Query(ctx, q, tenantID, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentEntry, 0, limit)
	for rows.Next() {
		var (
			e   RecentEntry
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &raw, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = decodePayload(e.ID, raw)
		out = append(out, e)
	}
	return out, rows.Err()
}

// decodePayload parses a stored payload blob. A corrupt blob is logged and
// read back as a nil payload instead of failing the whole listing.
func decodePayload(eventID string, raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("events: decode payload for event %s: %v", eventID, err)
		return nil
	}
	return payload
}
