package model

import "time"

// AuditEntry is one append-only audit trail row written in response to a
// committed domain event.  Payload holds the raw event payload as JSON.
type AuditEntry struct {
	ID         uint64    `json:"id"`
	ActorID    *uint64   `json:"actor_id,omitempty"`
	ActorType  string    `json:"actor_type"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type"`
	TargetID   uint64    `json:"target_id"`
	Payload    []byte    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}
