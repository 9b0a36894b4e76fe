package deployments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/agent-market/pkg/pagination"
	"github.com/JaimeStill/agent-market/pkg/query"
	"github.com/JaimeStill/agent-market/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates the PostgreSQL deployment store.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &repo{
		db:         db,
		logger:     logger.With("system", "deployment-store"),
		pagination: pagination,
	}
}

const appendLog = `d.logs || jsonb_build_array(jsonb_build_object('time', NOW(), 'message', %s::text))`

var (
	insertSQL = `
		INSERT INTO deployments AS d
			(agent_id, owner_id, version_id, environment, cpu_millicores, memory_bytes,
			 min_replicas, max_replicas, snapshot, status, logs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending',
			jsonb_build_array(jsonb_build_object('time', NOW(), 'message', $10::text)))
		RETURNING ` + projection.Columns()

	markDeployingSQL = `
		UPDATE deployments d
		SET status = 'deploying', started_at = NOW(), updated_at = NOW(),
			logs = ` + fmt.Sprintf(appendLog, "$2") + `
		WHERE d.id = $1 AND d.status = 'pending'
		RETURNING ` + projection.Columns()

	progressSQL = `
		UPDATE deployments d
		SET progress = GREATEST(d.progress, $2), updated_at = NOW(),
			logs = ` + fmt.Sprintf(appendLog, "$3") + `
		WHERE d.id = $1 AND d.status = 'deploying'`

	completeSQL = `
		UPDATE deployments d
		SET status = $2::text,
			progress = CASE WHEN $2::text = 'active' THEN 100 ELSE d.progress END,
			error_message = CASE WHEN $2::text = 'failed' THEN $3::text ELSE NULL END,
			completed_at = NOW(), updated_at = NOW(),
			logs = ` + fmt.Sprintf(appendLog, "$4") + `
		WHERE d.id = $1 AND d.status IN ('pending', 'deploying')
		RETURNING ` + projection.Columns()

	failInterruptedSQL = `
		UPDATE deployments d
		SET status = 'failed', error_message = $1::text, completed_at = NOW(), updated_at = NOW(),
			logs = ` + fmt.Sprintf(appendLog, "$1") + `
		WHERE d.status IN ('pending', 'deploying') AND d.created_at < $2`
)

func (r *repo) Create(ctx context.Context, rec NewRecord) (*Deployment, error) {
	snapshot := rec.Snapshot
	if snapshot == nil {
		snapshot = []byte("{}")
	}

	args := []any{
		rec.AgentID, rec.OwnerID, rec.VersionID, rec.Environment,
		rec.Limits.Millicores, rec.Limits.MemoryBytes,
		rec.Scaling.MinReplicas, rec.Scaling.MaxReplicas,
		snapshot,
		fmt.Sprintf("deployment of version %s to %s requested", rec.VersionID, rec.Environment),
	}

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Deployment, error) {
		return repository.QueryOne(ctx, tx, insertSQL, args, scanDeployment)
	})
	if err != nil {
		return nil, fmt.Errorf("create deployment: %w", err)
	}

	r.logger.Info("deployment created", "id", d.ID, "agent_id", d.AgentID, "environment", d.Environment)
	return &d, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDeployment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrInvalidStatus)
	}
	return &d, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Deployment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "VersionID", "Environment")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count deployments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDeployment)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) MarkDeploying(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	d, err := repository.QueryOne(ctx, r.db, markDeployingSQL, []any{id, "deployment started"}, scanDeployment)
	if err != nil {
		return nil, r.transitionError(ctx, id, err)
	}
	return &d, nil
}

func (r *repo) Progress(ctx context.Context, id uuid.UUID, progress int, message string) error {
	err := repository.ExecExpectOne(ctx, r.db, progressSQL, id, progress, message)
	if err != nil {
		return r.transitionError(ctx, id, err)
	}
	return nil
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID, status Status, message string) (*Deployment, error) {
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: %s is not terminal", ErrInvalidStatus, status)
	}

	line := "deployment active"
	if status == StatusFailed {
		line = "deployment failed: " + message
	}

	d, err := repository.QueryOne(ctx, r.db, completeSQL, []any{id, status, message, line}, scanDeployment)
	if err != nil {
		return nil, r.transitionError(ctx, id, err)
	}

	r.logger.Info("deployment completed", "id", id, "status", status)
	return &d, nil
}

func (r *repo) FailInterrupted(ctx context.Context, cutoff time.Time, message string) (int64, error) {
	res, err := r.db.ExecContext(ctx, failInterruptedSQL, message, cutoff)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted deployments: %w", err)
	}
	return res.RowsAffected()
}

// transitionError distinguishes a missing record from one whose status no
// longer admits the write.
func (r *repo) transitionError(ctx context.Context, id uuid.UUID, err error) error {
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	d, findErr := r.Find(ctx, id)
	if findErr != nil {
		return findErr
	}
	return fmt.Errorf("%w: deployment is %s", ErrInvalidStatus, d.Status)
}
