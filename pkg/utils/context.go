package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepResult represents the outcome of a context-aware sleep.
type SleepResult int

const (
	// SleepCompleted indicates the full duration elapsed.
	SleepCompleted SleepResult = iota
	// SleepCancelled indicates the context was cancelled first.
	SleepCancelled
)

// ContextSleep sleeps for duration unless ctx is cancelled first.
func ContextSleep(ctx context.Context, duration time.Duration) SleepResult {
	if duration <= 0 {
		if ContextGuard(ctx) {
			return SleepCancelled
		}
		return SleepCompleted
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return SleepCompleted
	case <-ctx.Done():
		return SleepCancelled
	}
}

// ContextGuard reports whether ctx is already cancelled.
func ContextGuard(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// ContextGuardWithLog is ContextGuard that logs cancelMessage on cancellation.
func ContextGuardWithLog(ctx context.Context, logger *zap.Logger, cancelMessage string) bool {
	if !ContextGuard(ctx) {
		return false
	}

	if logger != nil && cancelMessage != "" {
		logger.Info(cancelMessage)
	}

	return true
}

// IntervalSleep pauses between iterations of a worker loop.
// Returns true if the worker should continue, false if ctx was cancelled.
func IntervalSleep(ctx context.Context, duration time.Duration, logger *zap.Logger, workerName string) bool {
	if ContextSleep(ctx, duration) == SleepCompleted {
		return true
	}

	if logger != nil {
		logger.Info("Context cancelled during pause, stopping " + workerName)
	}

	return false
}
