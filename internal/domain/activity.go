package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is a structured settlement/activity outcome handed to the audit
// sink after a commit. Nothing is ever recorded for an aborted operation.
type AuditEvent struct {
	Action           string
	ActorID          *uuid.UUID
	ActorEmail       string
	ActorRole        string
	TargetCollection string
	TargetID         uuid.UUID
	Metadata         map[string]any
	Status           string
}

// ActivityLog is the persisted form of an audit event
type ActivityLog struct {
	ID               uuid.UUID      `json:"id"`
	ActorID          *uuid.UUID     `json:"actor_id,omitempty"`
	ActorEmail       string         `json:"actor_email"`
	ActorRole        string         `json:"actor_role"`
	Action           string         `json:"action"`
	TargetCollection string         `json:"target_collection"`
	TargetID         uuid.UUID      `json:"target_id"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Status           string         `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
}
