package poll_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     poll.Config
		wantErr error
	}{
		{"timeout only", poll.Config{Interval: time.Second, Timeout: time.Minute}, nil},
		{"attempts only", poll.Config{Interval: time.Second, MaxAttempts: 3}, nil},
		{"unbounded", poll.Config{Interval: time.Second}, poll.ErrUnbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, poll.Config{MaxAttempts: 1}.Validate())
	assert.Error(t, poll.Config{Interval: time.Second, Timeout: -1}.Validate())
}

func TestUntil_CompletesImmediately(t *testing.T) {
	var calls atomic.Int32
	cfg := poll.Config{Interval: time.Hour, MaxAttempts: 5}

	err := poll.Until(context.Background(), cfg, func(ctx context.Context) (bool, error) {
		calls.Add(1)
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestUntil_CompletesAfterSeveralTicks(t *testing.T) {
	var calls atomic.Int32
	cfg := poll.Config{Interval: 5 * time.Millisecond, Timeout: time.Second}

	err := poll.Until(context.Background(), cfg, func(ctx context.Context) (bool, error) {
		return calls.Add(1) == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestUntil_AttemptsExhausted(t *testing.T) {
	var calls atomic.Int32
	cfg := poll.Config{Interval: time.Millisecond, MaxAttempts: 4}

	err := poll.Until(context.Background(), cfg, func(ctx context.Context) (bool, error) {
		calls.Add(1)
		return false, nil
	})

	assert.ErrorIs(t, err, poll.ErrAttemptsExhausted)
	assert.Equal(t, int32(4), calls.Load())
}

func TestUntil_Timeout(t *testing.T) {
	cfg := poll.Config{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond}

	err := poll.Until(context.Background(), cfg, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, poll.ErrTimeout)
}

func TestUntil_CheckError(t *testing.T) {
	boom := errors.New("boom")
	cfg := poll.Config{Interval: time.Millisecond, MaxAttempts: 10}

	err := poll.Until(context.Background(), cfg, func(ctx context.Context) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestUntil_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := poll.Config{Interval: 5 * time.Millisecond, Timeout: time.Minute}

	var calls atomic.Int32
	err := poll.Until(ctx, cfg, func(ctx context.Context) (bool, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUntil_RejectsUnbounded(t *testing.T) {
	err := poll.Until(context.Background(), poll.Config{Interval: time.Millisecond}, func(ctx context.Context) (bool, error) {
		t.Fatal("check must not run")
		return false, nil
	})
	assert.ErrorIs(t, err, poll.ErrUnbounded)
}
