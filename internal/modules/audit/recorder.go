package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Recorder is the fire-and-forget audit side channel. Record never
// returns an error: a lost audit event must not fail the operation
// that produced it.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// SQLiteRecorder persists audit events. Write failures are logged and
// swallowed.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRecorder creates a new audit recorder
func NewSQLiteRecorder(db *sql.DB, log zerolog.Logger) *SQLiteRecorder {
	return &SQLiteRecorder{
		db:  db,
		log: log.With().Str("component", "audit").Logger(),
	}
}

// Record writes one audit event
func (r *SQLiteRecorder) Record(ctx context.Context, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			space_id, entity_type, entity_id, action,
			before_json, after_json, metadata_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.SpaceID,
		event.EntityType,
		event.EntityID,
		string(event.Action),
		marshalOrNull(event.Before),
		marshalOrNull(event.After),
		marshalOrNull(event.Metadata),
		event.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		r.log.Error().
			Err(err).
			Str("entity_type", event.EntityType).
			Str("entity_id", event.EntityID).
			Str("action", string(event.Action)).
			Msg("Failed to record audit event")
		return
	}

	r.log.Debug().
		Str("entity_type", event.EntityType).
		Str("action", string(event.Action)).
		Msg("Audit event recorded")
}

func marshalOrNull(m map[string]interface{}) interface{} {
	if len(m) == 0 {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return string(data)
}

// NopRecorder discards events, used by tests.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event Event) {}
