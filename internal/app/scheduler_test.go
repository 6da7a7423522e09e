package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	calls atomic.Int32
	days  chan time.Time
	err   error
}

func (f *fakeCompleter) CompleteElapsed(_ context.Context, today time.Time) (int, error) {
	f.calls.Add(1)
	select {
	case f.days <- today:
	default:
	}
	return 0, f.err
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	completer := &fakeCompleter{days: make(chan time.Time, 1)}

	s := NewScheduler(completer, time.Hour, zap.NewNop())
	s.now = func() time.Time { return now }
	s.Start(context.Background())

	select {
	case got := <-completer.days:
		assert.Equal(t, now, got)
	case <-time.After(time.Second):
		t.Fatal("completion sweep did not run on start")
	}

	s.Stop()
	assert.Equal(t, int32(1), completer.calls.Load())
}

func TestSchedulerKeepsTickingAfterErrors(t *testing.T) {
	completer := &fakeCompleter{days: make(chan time.Time, 1), err: errors.New("db down")}

	s := NewScheduler(completer, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	require.Eventually(t, func() bool {
		return completer.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = NewLogger("development", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger("development", "loud")
	require.Error(t, err)
}
