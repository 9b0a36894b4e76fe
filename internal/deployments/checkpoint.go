package deployments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-market/pkg/repository"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// CheckpointStore implements state.CheckpointStore on the
// deployment_checkpoints table, keyed by deployment id. Checkpoints record the
// last completed pipeline stage of every run.
type CheckpointStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCheckpointStore(db *sql.DB, logger *slog.Logger) *CheckpointStore {
	return &CheckpointStore{
		db:     db,
		logger: logger,
	}
}

// Save upserts the checkpoint for st.RunID.
func (s *CheckpointStore) Save(st state.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	const q = `
		INSERT INTO deployment_checkpoints (deployment_id, state_data, checkpoint_node, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (deployment_id) DO UPDATE SET
			state_data = EXCLUDED.state_data,
			checkpoint_node = EXCLUDED.checkpoint_node,
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(context.Background(), q, st.RunID, data, st.CheckpointNode); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint saved", "deployment_id", st.RunID, "node", st.CheckpointNode)
	return nil
}

func (s *CheckpointStore) Load(runID string) (state.State, error) {
	const q = `SELECT state_data FROM deployment_checkpoints WHERE deployment_id = $1`

	var data []byte
	if err := s.db.QueryRowContext(context.Background(), q, runID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state.State{}, fmt.Errorf("checkpoint not found: %s", runID)
		}
		return state.State{}, fmt.Errorf("query checkpoint: %w", err)
	}

	var st state.State
	if err := json.Unmarshal(data, &st); err != nil {
		return state.State{}, fmt.Errorf("unmarshal state: %w", err)
	}
	return st, nil
}

func (s *CheckpointStore) Delete(runID string) error {
	const q = `DELETE FROM deployment_checkpoints WHERE deployment_id = $1`

	if _, err := s.db.ExecContext(context.Background(), q, runID); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// List returns checkpointed deployment ids, newest first.
func (s *CheckpointStore) List() ([]string, error) {
	const q = `SELECT deployment_id::text FROM deployment_checkpoints ORDER BY created_at DESC`

	ids, err := repository.QueryMany(context.Background(), s.db, q, nil, func(sc repository.Scanner) (string, error) {
		var id string
		err := sc.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	return ids, nil
}
