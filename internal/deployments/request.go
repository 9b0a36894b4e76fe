package deployments

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

const (
	defaultCPU    = "500m"
	defaultMemory = "512MiB"

	maxMillicores   = 64000
	minMemoryBytes  = 64 * units.MiB
	maxMemoryBytes  = 256 * units.GiB
	maxReplicaCount = 100
)

// Limits is the parsed form of Resources.
type Limits struct {
	Millicores  int
	MemoryBytes int64
}

// Normalize fills defaults, validates cmd against the allowed environments,
// and returns the parsed resource limits. Resources in cmd are rewritten in
// canonical form.
func Normalize(cmd *StartCommand, environments []string) (Limits, error) {
	var l Limits

	if cmd.Resources.CPU == "" {
		cmd.Resources.CPU = defaultCPU
	}
	if cmd.Resources.Memory == "" {
		cmd.Resources.Memory = defaultMemory
	}
	if cmd.Scaling.MinReplicas == 0 && cmd.Scaling.MaxReplicas == 0 {
		cmd.Scaling = Scaling{MinReplicas: 1, MaxReplicas: 1}
	}

	if !slices.Contains(environments, cmd.Environment) {
		return l, fmt.Errorf("%w: environment %q is not one of %s",
			ErrInvalidRequest, cmd.Environment, strings.Join(environments, ", "))
	}

	millis, err := ParseCPU(cmd.Resources.CPU)
	if err != nil {
		return l, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	mem, err := units.RAMInBytes(cmd.Resources.Memory)
	if err != nil {
		return l, fmt.Errorf("%w: memory: %v", ErrInvalidRequest, err)
	}
	if mem < minMemoryBytes || mem > maxMemoryBytes {
		return l, fmt.Errorf("%w: memory must be between %s and %s",
			ErrInvalidRequest, units.BytesSize(minMemoryBytes), units.BytesSize(maxMemoryBytes))
	}

	s := cmd.Scaling
	if s.MinReplicas < 1 || s.MaxReplicas < s.MinReplicas || s.MaxReplicas > maxReplicaCount {
		return l, fmt.Errorf("%w: scaling requires 1 <= min_replicas (%d) <= max_replicas (%d) <= %d",
			ErrInvalidRequest, s.MinReplicas, s.MaxReplicas, maxReplicaCount)
	}

	l = Limits{Millicores: millis, MemoryBytes: mem}
	cmd.Resources = l.Resources()
	return l, nil
}

// ParseCPU accepts whole or fractional cores ("2", "0.5") or millicores ("500m").
func ParseCPU(raw string) (int, error) {
	raw = strings.TrimSpace(raw)

	var millis int
	if v, ok := strings.CutSuffix(raw, "m"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("cpu %q: %w", raw, err)
		}
		millis = n
	} else {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("cpu %q: %w", raw, err)
		}
		millis = int(f * 1000)
	}

	if millis < 1 || millis > maxMillicores {
		return 0, fmt.Errorf("cpu %q must be between 1m and %d cores", raw, maxMillicores/1000)
	}
	return millis, nil
}

// Resources renders l in canonical form.
func (l Limits) Resources() Resources {
	return Resources{
		CPU:    fmt.Sprintf("%dm", l.Millicores),
		Memory: units.BytesSize(float64(l.MemoryBytes)),
	}
}
