package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitEnforcesMinimumGap(t *testing.T) {
	l := NewJitterLimiter(20*time.Millisecond, 20*time.Millisecond)

	require.NoError(t, l.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestWaitReturnsContextError(t *testing.T) {
	l := NewJitterLimiter(time.Hour, time.Hour)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSleepZeroRangeReturnsImmediately(t *testing.T) {
	start := time.Now()
	require.NoError(t, Sleep(context.Background(), 0, 0))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
