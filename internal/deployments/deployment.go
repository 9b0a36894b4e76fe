// Package deployments starts agent deployments and tracks them through the
// forward-only status machine pending, deploying, then active or failed.
// Each deployment runs as a state graph whose observer writes progress and
// log lines into the record; clients poll or watch that record.
package deployments

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a deployment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDeploying Status = "deploying"
	StatusActive    Status = "active"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusActive || s == StatusFailed
}

// Rank orders statuses along the state machine. Unknown statuses rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusDeploying:
		return 1
	case StatusActive, StatusFailed:
		return 2
	}
	return -1
}

// CanTransition reports whether from may move to to. Transitions only move
// forward and terminal states never change.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusDeploying || to.Terminal()
	case StatusDeploying:
		return to.Terminal()
	}
	return false
}

// Resources are the per-replica limits in canonical form: CPU as millicores
// ("500m") and memory as binary units ("512MiB").
type Resources struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
}

type Scaling struct {
	MinReplicas int `json:"min_replicas"`
	MaxReplicas int `json:"max_replicas"`
}

// LogLine is one timestamped entry of a deployment log.
type LogLine struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// Deployment is the status-tracked record of making an agent live.
type Deployment struct {
	ID           uuid.UUID  `json:"id"`
	AgentID      uuid.UUID  `json:"agent_id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	VersionID    string     `json:"version_id"`
	Environment  string     `json:"environment"`
	Resources    Resources  `json:"resources"`
	Scaling      Scaling    `json:"scaling"`
	Status       Status     `json:"status"`
	Progress     int        `json:"progress"`
	Logs         []LogLine  `json:"logs"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StartCommand is the deployment invocation payload.
type StartCommand struct {
	AgentID     uuid.UUID `json:"agent_id"`
	VersionID   string    `json:"version_id,omitempty"`
	Environment string    `json:"environment"`
	Resources   Resources `json:"resources"`
	Scaling     Scaling   `json:"scaling"`
}
