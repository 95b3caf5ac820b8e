package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solmarket/pkg/core"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	limiter := New(5, time.Second)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Allow(), "request %d within burst", i)
	}
	assert.False(t, limiter.Allow())
}

func TestLimiter_Wait(t *testing.T) {
	limiter := New(100, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, limiter.Wait(ctx))
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := New(1, time.Minute)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx))
}

func TestLimiter_WaitOp_SeparateBuckets(t *testing.T) {
	limiter := New(100, time.Second)
	limiter.SetOpLimit(core.OpBuy, 1, time.Minute)

	ctx := context.Background()
	require.NoError(t, limiter.WaitOp(ctx, core.OpBuy))

	// The buy bucket is drained but scans still pass.
	quick, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, limiter.WaitOp(quick, core.OpBuy))
	assert.NoError(t, limiter.WaitOp(ctx, core.OpScan))
}

func TestLimiter_Stats(t *testing.T) {
	limiter := New(2, time.Minute)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())

	stats := limiter.Stats()
	assert.Equal(t, int64(2), stats.Allowed)
	assert.Equal(t, int64(1), stats.Denied)
}
