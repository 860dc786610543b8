package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sentinela-app/sentinela-go/pkg/resilience"
)

func newBreaker(t *testing.T, cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	if cfg.Name == "" {
		cfg.Name = "sentinela-api"
	}
	return resilience.NewCircuitBreaker(cfg, zaptest.NewLogger(t), nil)
}

func TestCircuitBreaker_OpensAfterFailureLimit(t *testing.T) {
	ctx := context.Background()
	cb := newBreaker(t, resilience.CircuitBreakerConfig{
		MaxRequestsFail: 2,
		Timeout:         time.Minute,
	})

	fail := func(context.Context) (interface{}, error) { return nil, assert.AnError }

	_, err := cb.Execute(ctx, fail)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, resilience.StateClose, cb.GetState())

	_, err = cb.Execute(ctx, fail)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, resilience.StateOpen, cb.GetState())

	// Circuito aberto: a função nem é chamada
	called := false
	_, err = cb.Execute(ctx, func(context.Context) (interface{}, error) {
		called = true
		return nil, nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_RecoversThroughHalfOpen(t *testing.T) {
	ctx := context.Background()
	cb := newBreaker(t, resilience.CircuitBreakerConfig{
		MaxRequestsFail: 1,
		Timeout:         20 * time.Millisecond,
	})

	_, err := cb.Execute(ctx, func(context.Context) (interface{}, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	require.Equal(t, resilience.StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)

	// Após o timeout a próxima requisição passa como sonda do half-open
	result, err := cb.Execute(ctx, func(context.Context) (interface{}, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, resilience.StateClose, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	ctx := context.Background()
	cb := newBreaker(t, resilience.CircuitBreakerConfig{
		MaxRequestsFail: 1,
		Timeout:         20 * time.Millisecond,
	})

	_, err := cb.Execute(ctx, func(context.Context) (interface{}, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)

	time.Sleep(30 * time.Millisecond)

	_, err = cb.Execute(ctx, func(context.Context) (interface{}, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, resilience.StateOpen, cb.GetState())
}

func TestCircuitBreaker_HalfOpenLimitsConcurrentProbes(t *testing.T) {
	ctx := context.Background()
	cb := newBreaker(t, resilience.CircuitBreakerConfig{
		MaxRequestsFail: 1,
		Timeout:         20 * time.Millisecond,
		MaxRequests:     1,
	})

	_, err := cb.Execute(ctx, func(context.Context) (interface{}, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)

	time.Sleep(30 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := cb.Execute(ctx, func(context.Context) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
		done <- err
	}()

	<-started

	// Com a sonda em voo, o half-open não admite uma segunda requisição
	called := false
	_, err = cb.Execute(ctx, func(context.Context) (interface{}, error) {
		called = true
		return nil, nil
	})
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, resilience.StateClose, cb.GetState())
}

func TestCircuitBreaker_ResetClosesCircuit(t *testing.T) {
	ctx := context.Background()
	cb := newBreaker(t, resilience.CircuitBreakerConfig{
		MaxRequestsFail: 1,
		Timeout:         time.Minute,
	})

	_, err := cb.Execute(ctx, func(context.Context) (interface{}, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	require.Equal(t, resilience.StateOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, resilience.StateClose, cb.GetState())

	_, err = cb.Execute(ctx, func(context.Context) (interface{}, error) { return "ok", nil })
	assert.NoError(t, err)
}