package agents

import (
	"context"

	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/google/uuid"
)

// System defines the interface for agent storage and retrieval operations.
// Writes are attributed to the session carried on ctx.
type System interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error)
	Find(ctx context.Context, id uuid.UUID) (*Agent, error)
	SaveDraft(ctx context.Context, cmd SaveCommand) (*Agent, error)
	Submit(ctx context.Context, cmd SaveCommand) (*Agent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
