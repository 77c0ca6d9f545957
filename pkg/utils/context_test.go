package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/robalyx/steamfriends/pkg/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContextSleep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		duration    time.Duration
		cancelAfter time.Duration
		want        utils.SleepResult
	}{
		{name: "sleep completes normally", duration: 10 * time.Millisecond, want: utils.SleepCompleted},
		{
			name:        "context cancelled before sleep completes",
			duration:    time.Second,
			cancelAfter: 10 * time.Millisecond,
			want:        utils.SleepCancelled,
		},
		{name: "zero duration sleep", duration: 0, want: utils.SleepCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			if tt.cancelAfter > 0 {
				go func() {
					time.Sleep(tt.cancelAfter)
					cancel()
				}()
			}

			assert.Equal(t, tt.want, utils.ContextSleep(ctx, tt.duration))
		})
	}
}

func TestContextGuard(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	assert.False(t, utils.ContextGuard(ctx))
	assert.False(t, utils.ContextGuardWithLog(ctx, zap.NewNop(), "stopping"))

	cancel()
	assert.True(t, utils.ContextGuard(ctx))
	assert.True(t, utils.ContextGuardWithLog(ctx, zap.NewNop(), "stopping"))
	assert.Equal(t, utils.SleepCancelled, utils.ContextSleep(ctx, 0))
}

func TestIntervalSleep(t *testing.T) {
	t.Parallel()

	assert.True(t, utils.IntervalSleep(t.Context(), time.Millisecond, zap.NewNop(), "test worker"))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.False(t, utils.IntervalSleep(ctx, time.Hour, zap.NewNop(), "test worker"))
}
