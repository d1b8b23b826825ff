package audit

import "time"

// Action classifies what happened to an entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSystem Action = "system"
)

// Event is one audit record. Before/After/Metadata are free-form
// snapshots serialized as JSON by the sink.
type Event struct {
	SpaceID    string                 `json:"space_id"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Action     Action                 `json:"action"`
	Before     map[string]interface{} `json:"before,omitempty"`
	After      map[string]interface{} `json:"after,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}
