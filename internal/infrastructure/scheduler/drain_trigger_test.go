package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	app "github.com/erp/shopify-connector/internal/application/integration"
)

type fakeDrainer struct {
	calls   atomic.Int32
	results []*app.DrainResult
	err     error
	block   chan struct{}
}

func (f *fakeDrainer) DrainPending(ctx context.Context) ([]*app.DrainResult, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func TestDrainTriggerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultDrainTriggerConfig().Validate())
	assert.ErrorIs(t, DrainTriggerConfig{RunTimeout: time.Minute}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, DrainTriggerConfig{Interval: time.Minute}.Validate(), ErrInvalidConfig)
}

func TestDrainTrigger_RunOnce(t *testing.T) {
	t.Run("records totals of a successful run", func(t *testing.T) {
		drainer := &fakeDrainer{results: []*app.DrainResult{
			{Processed: 125, Failed: 2},
			{Processed: 40},
		}}
		trigger, err := NewDrainTrigger(DefaultDrainTriggerConfig(), drainer, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, RunStatusIdle, trigger.Last().Status)

		require.NoError(t, trigger.RunOnce(context.Background()))
		snap := trigger.Last()
		assert.Equal(t, RunStatusSuccess, snap.Status)
		assert.Equal(t, 2, snap.Queues)
		assert.Equal(t, 165, snap.Processed)
		assert.Equal(t, 2, snap.Failed)
		assert.NotNil(t, snap.CompletedAt)
	})

	t.Run("records a failed run", func(t *testing.T) {
		drainer := &fakeDrainer{err: errors.New("database unavailable")}
		trigger, err := NewDrainTrigger(DefaultDrainTriggerConfig(), drainer, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.Error(t, trigger.RunOnce(context.Background()))
		snap := trigger.Last()
		assert.Equal(t, RunStatusFailed, snap.Status)
		assert.Equal(t, "database unavailable", snap.Error)
	})

	t.Run("refuses overlapping runs", func(t *testing.T) {
		drainer := &fakeDrainer{block: make(chan struct{})}
		trigger, err := NewDrainTrigger(DefaultDrainTriggerConfig(), drainer, zaptest.NewLogger(t))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- trigger.RunOnce(context.Background()) }()
		require.Eventually(t, func() bool { return trigger.Last().Status == RunStatusRunning }, time.Second, time.Millisecond)

		assert.ErrorIs(t, trigger.RunOnce(context.Background()), ErrAlreadyRunning)
		close(drainer.block)
		assert.NoError(t, <-done)
		assert.Equal(t, int32(1), drainer.calls.Load())
	})
}

func TestDrainTrigger_StartStop(t *testing.T) {
	drainer := &fakeDrainer{}
	trigger, err := NewDrainTrigger(DrainTriggerConfig{Interval: 5 * time.Millisecond, RunTimeout: time.Second}, drainer, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	assert.Eventually(t, func() bool { return drainer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	require.NoError(t, trigger.Stop(ctx))

	calls := drainer.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, drainer.calls.Load())
}

type recordingObserver struct {
	statuses []string
}

func (o *recordingObserver) DrainRun(status string, _ time.Time) {
	o.statuses = append(o.statuses, status)
}

func TestDrainTrigger_NotifiesObserver(t *testing.T) {
	drainer := &fakeDrainer{}
	trigger, err := NewDrainTrigger(DefaultDrainTriggerConfig(), drainer, zaptest.NewLogger(t))
	require.NoError(t, err)
	obs := &recordingObserver{}
	trigger.SetObserver(obs)

	require.NoError(t, trigger.RunOnce(context.Background()))
	drainer.err = errors.New("database unavailable")
	require.Error(t, trigger.RunOnce(context.Background()))

	assert.Equal(t, []string{"SUCCESS", "FAILED"}, obs.statuses)
}
