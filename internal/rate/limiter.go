package rate

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket bounding how fast outbound KMS calls are issued.
// KMS enforces a per-account request quota shared by every Decrypt caller.
type Limiter struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
	rate   float64
	burst  float64
}

// New creates a limiter refilling requestsPerSecond tokens per second, holding
// at most burst. A burst below 1 is raised to 1.
func New(requestsPerSecond float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		tokens: float64(burst),
		last:   time.Now(),
		rate:   requestsPerSecond,
		burst:  float64(burst),
	}
}

// allow takes a token if one is available.
func (l *Limiter) allow() bool {
	_, ok := l.reserve()
	return ok
}

// reserve takes a token, or reports how long until one is available.
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > l.burst {
		l.tokens = l.burst
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}
	if l.rate <= 0 {
		return time.Second, false
	}
	return time.Duration((1 - l.tokens) / l.rate * float64(time.Second)), false
}

// Wait blocks until a token becomes available or ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		delay, ok := l.reserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
