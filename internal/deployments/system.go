package deployments

import (
	"context"

	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/google/uuid"
)

// System starts, reads and cancels deployments. Start and Cancel act for
// the session carried on ctx.
type System interface {
	Start(ctx context.Context, cmd StartCommand) (*Deployment, error)
	Find(ctx context.Context, id uuid.UUID) (*Deployment, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deployment], error)
	Logs(ctx context.Context, id uuid.UUID) ([]LogLine, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Deployment, error)
}
