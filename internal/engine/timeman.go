package engine

import (
	"context"
	"sync/atomic"
	"time"
)

// TimeManager turns a move time and a caller context into the search's
// stop flag. The flag is written here and read by the search at every node.
type TimeManager struct {
	limit     time.Duration // hard limit for this move (0 = none)
	startTime time.Time     // when search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Start arms stop to be set when ctx is done or limit elapses. The returned
// function disarms it and must be called when the search returns.
func (tm *TimeManager) Start(ctx context.Context, limit time.Duration, stop *atomic.Bool) func() {
	tm.startTime = time.Now()
	tm.limit = limit

	var cancel context.CancelFunc
	if limit > 0 {
		ctx, cancel = context.WithTimeout(ctx, limit)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	disarm := context.AfterFunc(ctx, func() {
		stop.Store(true)
	})
	return func() {
		disarm()
		cancel()
	}
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Limit returns the hard limit (0 = none).
func (tm *TimeManager) Limit() time.Duration {
	return tm.limit
}

// PastOptimum reports whether half the budget is spent. A new iteration
// costs more than all previous ones together.
func (tm *TimeManager) PastOptimum() bool {
	return tm.limit > 0 && tm.Elapsed() >= tm.limit/2
}
