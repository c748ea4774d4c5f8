// Package scheduler runs the periodic background work of the connector.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	app "github.com/erp/shopify-connector/internal/application/integration"
)

// RunStatus represents the outcome of the last drain run
type RunStatus string

const (
	RunStatusIdle    RunStatus = "IDLE"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// QueueDrainer drains every pending sync queue
type QueueDrainer interface {
	DrainPending(ctx context.Context) ([]*app.DrainResult, error)
}

// RunObserver is notified after every drain run
type RunObserver interface {
	DrainRun(status string, completedAt time.Time)
}

// DrainTriggerConfig holds configuration for the drain trigger
type DrainTriggerConfig struct {
	// Interval is the time between two drain runs
	Interval time.Duration
	// RunTimeout bounds a single run
	RunTimeout time.Duration
}

// DefaultDrainTriggerConfig returns default drain trigger configuration
func DefaultDrainTriggerConfig() DrainTriggerConfig {
	return DrainTriggerConfig{
		Interval:   time.Minute,
		RunTimeout: 10 * time.Minute,
	}
}

// Validate validates the configuration
func (c DrainTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Snapshot describes the last drain run
type Snapshot struct {
	Status      RunStatus  `json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Queues      int        `json:"queues"`
	Processed   int        `json:"processed"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
}

// DrainTrigger periodically drains pending sync queues. Runs never overlap:
// a tick that arrives while a run is in progress is skipped.
type DrainTrigger struct {
	config  DrainTriggerConfig
	drainer QueueDrainer
	logger  *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool
	last      Snapshot
	observer  RunObserver
}

// NewDrainTrigger creates a new drain trigger
func NewDrainTrigger(config DrainTriggerConfig, drainer QueueDrainer, logger *zap.Logger) (*DrainTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DrainTrigger{
		config:  config,
		drainer: drainer,
		logger:  logger,
		last:    Snapshot{Status: RunStatusIdle},
	}, nil
}

// SetObserver registers a RunObserver. It must be called before Start.
func (d *DrainTrigger) SetObserver(o RunObserver) {
	d.observer = o
}

// Start starts the periodic loop
func (d *DrainTrigger) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = true
	d.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Queue drain trigger started", zap.Duration("interval", d.config.Interval))
	return nil
}

// Stop stops the loop and waits for an in-flight run, bounded by ctx
func (d *DrainTrigger) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return nil
	}
	d.isRunning = false
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Queue drain trigger stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Queue drain trigger stop timed out")
		return ctx.Err()
	}
}

// RunOnce drains pending queues now. It returns ErrAlreadyRunning when
// another run is in progress.
func (d *DrainTrigger) RunOnce(ctx context.Context) error {
	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	d.inFlight = true
	started := time.Now()
	d.last = Snapshot{Status: RunStatusRunning, StartedAt: &started}
	d.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, d.config.RunTimeout)
	defer cancel()
	results, err := d.drainer.DrainPending(runCtx)

	completed := time.Now()
	snap := Snapshot{Status: RunStatusSuccess, StartedAt: &started, CompletedAt: &completed, Queues: len(results)}
	for _, r := range results {
		snap.Processed += r.Processed
		snap.Failed += r.Failed
	}
	if err != nil {
		snap.Status = RunStatusFailed
		snap.Error = err.Error()
		d.logger.Error("Queue drain run failed", zap.Error(err))
	} else if snap.Queues > 0 {
		d.logger.Info("Queue drain run completed",
			zap.Int("queues", snap.Queues),
			zap.Int("processed", snap.Processed),
			zap.Int("failed", snap.Failed),
			zap.Duration("duration", completed.Sub(started)),
		)
	}

	d.mu.Lock()
	d.inFlight = false
	d.last = snap
	d.mu.Unlock()
	if d.observer != nil {
		d.observer.DrainRun(string(snap.Status), completed)
	}
	return err
}

// Last returns the snapshot of the last run
func (d *DrainTrigger) Last() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *DrainTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.RunOnce(ctx); errors.Is(err, ErrAlreadyRunning) {
				d.logger.Debug("Skipping queue drain tick, previous run still in progress")
			}
		}
	}
}
