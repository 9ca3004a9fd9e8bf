package model

import "time"

// Activity actions.
const (
	ActionLogin          = "login"
	ActionMetadataUpdate = "metadata.update"
	ActionMetadataClear  = "metadata.clear"
	ActionDelete         = "screenshot.delete"
)

// Activity is one entry of the append-only audit trail.
// ObjectKey is empty for actions not tied to a screenshot.
type Activity struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	ObjectKey string    `json:"object_key,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
