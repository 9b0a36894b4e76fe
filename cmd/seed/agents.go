package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JaimeStill/agent-market/internal/agents"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/google/uuid"
)

//go:embed seeds/*.json
var seedFiles embed.FS

func init() {
	registerSeeder(&AgentSeeder{})
}

// AgentSeedData is the JSON layout of an agent seed file. Every agent is
// owned by OwnerID.
type AgentSeedData struct {
	OwnerID uuid.UUID   `json:"owner_id"`
	Agents  []AgentSeed `json:"agents"`
}

// AgentSeed is one seeded marketplace agent. ID is fixed so reseeding
// updates the same record.
type AgentSeed struct {
	ID     uuid.UUID     `json:"id"`
	Status agents.Status `json:"status"`
	wizard.Draft
}

// AgentSeeder upserts demo agents keyed by their fixed ids.
type AgentSeeder struct {
	file string
}

func (s *AgentSeeder) Name() string {
	return "agents"
}

func (s *AgentSeeder) Description() string {
	return "Seeds demo marketplace agents for a single owner"
}

// SetFile configures an external seed file path, overriding the embedded default.
func (s *AgentSeeder) SetFile(path string) {
	s.file = path
}

func (s *AgentSeeder) Seed(ctx context.Context, tx *sql.Tx) error {
	data, err := s.loadSeedData()
	if err != nil {
		return err
	}
	if data.OwnerID == uuid.Nil {
		return fmt.Errorf("seed data requires owner_id")
	}

	for _, a := range data.Agents {
		if err := validateSeed(a); err != nil {
			return fmt.Errorf("agent %q: %w", a.BasicInfo.Title, err)
		}
		if err := s.saveAgent(ctx, tx, data.OwnerID, a); err != nil {
			return fmt.Errorf("save agent %q: %w", a.BasicInfo.Title, err)
		}
	}

	return nil
}

// validateSeed applies the same rules the API enforces on save and submit.
func validateSeed(a AgentSeed) error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if a.BasicInfo.Title == "" {
		return fmt.Errorf("title is required")
	}
	if err := agents.ValidateDraft(a.Draft); err != nil {
		return err
	}
	switch a.Status {
	case agents.StatusDraft:
		return nil
	case agents.StatusPendingReview:
		return wizard.Validate(a.Draft)
	}
	return fmt.Errorf("unknown status %q", a.Status)
}

func (s *AgentSeeder) loadSeedData() (*AgentSeedData, error) {
	var (
		content []byte
		err     error
	)

	if s.file != "" {
		content, err = os.ReadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	} else {
		content, err = seedFiles.ReadFile("seeds/agents.json")
		if err != nil {
			return nil, fmt.Errorf("read embedded seed file: %w", err)
		}
	}

	var data AgentSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	return &data, nil
}

func (s *AgentSeeder) saveAgent(ctx context.Context, tx *sql.Tx, ownerID uuid.UUID, a AgentSeed) error {
	const query = `
		INSERT INTO agents (id, owner_id, status, title, description, category, price, tags, runtime, integration, test_cases)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			tags = EXCLUDED.tags,
			runtime = EXCLUDED.runtime,
			integration = EXCLUDED.integration,
			test_cases = EXCLUDED.test_cases,
			updated_at = NOW()`

	tags, err := jsonOr(a.BasicInfo.Tags, "[]")
	if err != nil {
		return err
	}
	runtime, err := json.Marshal(a.Runtime)
	if err != nil {
		return err
	}
	integration, err := json.Marshal(a.Integration)
	if err != nil {
		return err
	}
	testCases, err := jsonOr(a.TestCases, "[]")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, query,
		a.ID, ownerID, a.Status,
		a.BasicInfo.Title, a.BasicInfo.Description, a.BasicInfo.Category, a.BasicInfo.Price,
		tags, runtime, integration, testCases,
	)
	return err
}

func jsonOr[T any](v []T, empty string) ([]byte, error) {
	if len(v) == 0 {
		return []byte(empty), nil
	}
	return json.Marshal(v)
}
