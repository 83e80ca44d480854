package concurrency

import (
	"context"
	"sync/atomic"
	"time"
)

// Metrics tracks limiter performance counters
type Metrics struct {
	TotalAcquired   int64
	TotalReleased   int64
	PeakConcurrent  int64
	TotalWaitTimeNs int64
}

// Limiter provides semaphore-based admission control with observability.
// The planning service uses it to bound the number of plan requests solved
// at once, since each request already saturates several CPUs with planner
// threads.
type Limiter struct {
	sem    chan struct{}
	active int64

	acquired int64
	released int64
	peak     int64
	waitNs   int64
}

// NewLimiter creates a limiter allowing at most maxConcurrent concurrent holders
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Limiter{
		sem: make(chan struct{}, maxConcurrent),
	}
}

// Acquire blocks until a slot is available or the context is cancelled
func (l *Limiter) Acquire(ctx context.Context) error {
	start := time.Now()

	select {
	case l.sem <- struct{}{}:
		atomic.AddInt64(&l.waitNs, time.Since(start).Nanoseconds())
		atomic.AddInt64(&l.acquired, 1)

		current := atomic.AddInt64(&l.active, 1)
		l.updatePeak(current)
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot to the limiter
func (l *Limiter) Release() {
	select {
	case <-l.sem:
		atomic.AddInt64(&l.active, -1)
		atomic.AddInt64(&l.released, 1)
	default:
		// Release without a matching Acquire, ignore
	}
}

// GoSync executes fn while holding a slot, blocking until one is available
func (l *Limiter) GoSync(ctx context.Context, fn func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}

// CurrentActive returns the number of currently held slots
func (l *Limiter) CurrentActive() int64 {
	return atomic.LoadInt64(&l.active)
}

// GetMetrics returns a copy of the current counters
func (l *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalAcquired:   atomic.LoadInt64(&l.acquired),
		TotalReleased:   atomic.LoadInt64(&l.released),
		PeakConcurrent:  atomic.LoadInt64(&l.peak),
		TotalWaitTimeNs: atomic.LoadInt64(&l.waitNs),
	}
}

func (l *Limiter) updatePeak(current int64) {
	for {
		peak := atomic.LoadInt64(&l.peak)
		if current <= peak {
			return
		}
		if atomic.CompareAndSwapInt64(&l.peak, peak, current) {
			return
		}
	}
}
