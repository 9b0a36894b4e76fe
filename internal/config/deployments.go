package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDeploymentsPollInterval  = "DEPLOYMENTS_POLL_INTERVAL"
	EnvDeploymentsStageDelay    = "DEPLOYMENTS_STAGE_DELAY"
	EnvDeploymentsTimeout       = "DEPLOYMENTS_TIMEOUT"
	EnvDeploymentsMaxConcurrent = "DEPLOYMENTS_MAX_CONCURRENT"
	EnvDeploymentsEnvironments  = "DEPLOYMENTS_ENVIRONMENTS"
)

var knownEnvironments = []string{"development", "staging", "production"}

// DeploymentsConfig controls the deployment pipeline and the watch channel.
type DeploymentsConfig struct {
	// PollInterval is how often the watch channel re-reads a deployment.
	PollInterval string `toml:"poll_interval"`

	// StageDelay is the simulated duration of each pipeline stage.
	StageDelay string `toml:"stage_delay"`

	// Timeout bounds a single pipeline run and a single watch session.
	Timeout string `toml:"timeout"`

	MaxConcurrent int      `toml:"max_concurrent"`
	Environments  []string `toml:"environments"`
}

func (c *DeploymentsConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

func (c *DeploymentsConfig) StageDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.StageDelay)
	return d
}

func (c *DeploymentsConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
func (c *DeploymentsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *DeploymentsConfig) Merge(overlay *DeploymentsConfig) {
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.StageDelay != "" {
		c.StageDelay = overlay.StageDelay
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
	if overlay.Environments != nil {
		c.Environments = overlay.Environments
	}
}

func (c *DeploymentsConfig) loadDefaults() {
	if c.PollInterval == "" {
		c.PollInterval = "3s"
	}
	if c.StageDelay == "" {
		c.StageDelay = "2s"
	}
	if c.Timeout == "" {
		c.Timeout = "10m"
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 16
	}
	if len(c.Environments) == 0 {
		c.Environments = slices.Clone(knownEnvironments)
	}
}

func (c *DeploymentsConfig) loadEnv() {
	if v := os.Getenv(EnvDeploymentsPollInterval); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv(EnvDeploymentsStageDelay); v != "" {
		c.StageDelay = v
	}
	if v := os.Getenv(EnvDeploymentsTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvDeploymentsMaxConcurrent); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv(EnvDeploymentsEnvironments); v != "" {
		envs := make([]string, 0)
		for _, e := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(e); trimmed != "" {
				envs = append(envs, trimmed)
			}
		}
		c.Environments = envs
	}
}

func (c *DeploymentsConfig) validate() error {
	interval, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if _, err := time.ParseDuration(c.StageDelay); err != nil {
		return fmt.Errorf("invalid stage_delay: %w", err)
	}
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be positive")
	}
	for _, env := range c.Environments {
		if !slices.Contains(knownEnvironments, env) {
			return fmt.Errorf("unknown environment %q", env)
		}
	}
	return nil
}
