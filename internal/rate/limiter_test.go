package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Burst(t *testing.T) {
	lim := New(1, 5)

	allowed := 0
	for i := 0; i < 10; i++ {
		if lim.allow() {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed, "burst bounds immediate tokens")
}

func TestLimiter_Refill(t *testing.T) {
	lim := New(100, 2)
	for lim.allow() {
	}

	time.Sleep(50 * time.Millisecond)
	assert.True(t, lim.allow(), "expected token after refill period")
}

func TestLimiter_BurstCap(t *testing.T) {
	lim := New(1000, 3)
	time.Sleep(100 * time.Millisecond)

	allowed := 0
	for i := 0; i < 10; i++ {
		if lim.allow() {
			allowed++
		}
	}
	assert.LessOrEqual(t, allowed, 3)
}

func TestLimiter_MinimumBurst(t *testing.T) {
	lim := New(1, 0)
	assert.True(t, lim.allow())
}

func TestLimiter_Wait(t *testing.T) {
	lim := New(100, 1)
	lim.allow()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	require.NoError(t, lim.Wait(ctx))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestLimiter_WaitCanceled(t *testing.T) {
	lim := New(0.1, 1)
	lim.allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, lim.Wait(ctx), context.DeadlineExceeded)
}

func TestLimiter_ConcurrentWaiters(t *testing.T) {
	lim := New(200, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, lim.Wait(context.Background()))
		}()
	}
	wg.Wait()
}
