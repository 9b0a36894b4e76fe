package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-market/internal/metrics"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/agent-market/pkg/query"
	"github.com/JaimeStill/agent-market/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	metrics    *metrics.Metrics
}

// New creates a new agents repository implementing the System interface.
// m may be nil.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config, m *metrics.Metrics) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "agent"),
		pagination: pagination,
		metrics:    m,
	}
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Agent], error) {
	page.Normalize(r.pagination)

	if filters.Mine {
		s, err := session.FromContext(ctx)
		if err != nil {
			return nil, err
		}
		filters.OwnerID = &s.UserID
	}

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	agents, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAgent)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}

	result := pagination.NewPageResult(agents, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Agent, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAgent)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) SaveDraft(ctx context.Context, cmd SaveCommand) (*Agent, error) {
	if err := ValidateDraft(cmd.Draft); err != nil {
		return nil, err
	}
	return r.write(ctx, cmd, StatusDraft)
}

func (r *repo) Submit(ctx context.Context, cmd SaveCommand) (*Agent, error) {
	if err := ValidateDraft(cmd.Draft); err != nil {
		return nil, err
	}
	if err := wizard.Validate(cmd.Draft); err != nil {
		return nil, err
	}
	return r.write(ctx, cmd, StatusPendingReview)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := session.FromContext(ctx)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM agents WHERE id = $1 AND owner_id = $2", id, s.UserID)
		return struct{}{}, err
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("agent deleted", "id", id, "owner_id", s.UserID)
	return nil
}

func (r *repo) write(ctx context.Context, cmd SaveCommand, status Status) (*Agent, error) {
	s, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	args, err := writeArgs(normalize(cmd.Draft))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	created := cmd.ID == uuid.Nil

	var q string
	if created {
		q = insertSQL
		args = append(args, s.UserID, status)
	} else {
		q = updateSQL
		args = append(args, status, cmd.ID, s.UserID)
	}

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Agent, error) {
		return repository.QueryOne(ctx, tx, q, args, scanAgent)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.metrics.AgentSaved(string(status), created)
	r.logger.Info("agent saved", "id", a.ID, "status", a.Status, "created", created)
	return &a, nil
}

var insertSQL = `
	INSERT INTO agents AS a (title, description, category, price, tags, runtime, integration, test_cases, owner_id, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + projection.Columns()

var updateSQL = `
	UPDATE agents a
	SET title = $1, description = $2, category = $3, price = $4, tags = $5,
		runtime = $6, integration = $7, test_cases = $8, status = $9, updated_at = NOW()
	WHERE a.id = $10 AND a.owner_id = $11
	RETURNING ` + projection.Columns()

func writeArgs(d wizard.Draft) ([]any, error) {
	args := []any{d.BasicInfo.Title, d.BasicInfo.Description, d.BasicInfo.Category, d.BasicInfo.Price}

	for _, v := range []any{d.BasicInfo.Tags, d.Runtime, d.Integration, d.TestCases} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		args = append(args, json.RawMessage(raw))
	}

	return args, nil
}
