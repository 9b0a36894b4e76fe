package deployments

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/google/uuid"
)

// NewRecord is the row inserted when a deployment is accepted.
type NewRecord struct {
	AgentID     uuid.UUID
	OwnerID     uuid.UUID
	VersionID   string
	Environment string
	Limits      Limits
	Scaling     Scaling
	Snapshot    json.RawMessage
}

// Store persists deployment records. Every status write is conditional on
// the current status so records only move forward; a write against a record
// that has already moved past the expected state returns ErrInvalidStatus.
type Store interface {
	Create(ctx context.Context, rec NewRecord) (*Deployment, error)
	Find(ctx context.Context, id uuid.UUID) (*Deployment, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deployment], error)

	// MarkDeploying moves a pending record to deploying.
	MarkDeploying(ctx context.Context, id uuid.UUID) (*Deployment, error)

	// Progress raises progress (never lowers it) and appends a log line
	// while the record is deploying.
	Progress(ctx context.Context, id uuid.UUID, progress int, message string) error

	// Complete moves a non-terminal record to active or failed.
	Complete(ctx context.Context, id uuid.UUID, status Status, message string) (*Deployment, error)

	// FailInterrupted fails non-terminal records created before cutoff and
	// returns the count.
	FailInterrupted(ctx context.Context, cutoff time.Time, message string) (int64, error)
}
