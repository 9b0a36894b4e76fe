// Package agents stores marketplace agent records produced by the creation
// wizard. Records are owned by the session user and move from draft to
// pending review on submit.
package agents

import (
	"time"

	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/google/uuid"
)

// Status is the review state of an agent record.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
)

// Agent is a persisted wizard draft.
type Agent struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Status  Status    `json:"status"`
	wizard.Draft
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveCommand writes a draft. A nil ID creates a new record.
type SaveCommand struct {
	ID    uuid.UUID
	Draft wizard.Draft
}
