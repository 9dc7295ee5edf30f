package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerHook_NormalOperation(t *testing.T) {
	hook := NewCircuitBreakerHook()

	// Circuit should start in closed state
	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return nil
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		assert.NoError(t, err)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_MissingKeyIsNotFailure(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return goredis.Nil
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "absent"))
		assert.ErrorIs(t, err, goredis.Nil)
	}

	// Cache misses must never trip the breaker
	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_TransientFailures(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	// 2 failures are below the minimum of 5 requests
	for i := 0; i < 2; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("connection refused")
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		assert.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}

	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_OpensAfterSustainedFailures(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("connection timeout")
		})
		err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
		assert.Error(t, err)
	}

	assert.Equal(t, circuitbreaker.OpenState, hook.GetState())
}

func TestCircuitBreakerHook_FailsFastWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("redis down")
		})
		_ = processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.GetState())

	called := false
	processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
		called = true
		return nil
	})
	err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.False(t, called, "Redis should not be called when circuit is open")
}

func TestCircuitBreakerHook_RecoveryAfterDelay(t *testing.T) {
	// Short delay so the test does not wait 30s
	hook := &CircuitBreakerHook{
		cb: circuitbreaker.NewBuilder[any]().
			WithFailureRateThreshold(0.6, 3, 10*time.Second).
			WithDelay(50 * time.Millisecond).
			WithSuccessThreshold(1).
			Build(),
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("failure")
		})
		_ = processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.GetState())

	time.Sleep(100 * time.Millisecond)

	// First success in half-open closes the circuit
	processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
		return nil
	})
	err := processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	require.NoError(t, err)

	assert.Equal(t, circuitbreaker.ClosedState, hook.GetState())
}

func TestCircuitBreakerHook_PipelineFailsWhenOpen(t *testing.T) {
	hook := NewCircuitBreakerHook()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		processHook := hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error {
			return errors.New("redis down")
		})
		_ = processHook(ctx, goredis.NewStringCmd(ctx, "get", "key"))
	}
	require.Equal(t, circuitbreaker.OpenState, hook.GetState())

	pipelineHook := hook.ProcessPipelineHook(func(ctx context.Context, cmds []goredis.Cmder) error {
		t.Fatal("Redis pipeline should not be called")
		return nil
	})
	err := pipelineHook(ctx, []goredis.Cmder{
		goredis.NewStringCmd(ctx, "get", "key1"),
		goredis.NewStringCmd(ctx, "get", "key2"),
	})

	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestStateToFloat(t *testing.T) {
	tests := []struct {
		state    circuitbreaker.State
		expected float64
	}{
		{circuitbreaker.ClosedState, 0},
		{circuitbreaker.HalfOpenState, 1},
		{circuitbreaker.OpenState, 2},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, stateToFloat(tt.state))
		})
	}
}
