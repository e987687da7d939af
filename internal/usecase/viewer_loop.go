package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultTickInterval is the refresh cadence of the viewer loop, about 30 per second.
const DefaultTickInterval = 33 * time.Millisecond

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("viewer loop stopped")

// TickReporter receives the number of records drained on every tick.
type TickReporter interface {
	ReportEvents(count int)
}

// ViewerLoop is the single goroutine that owns a ViewerUseCase. It drives Tick
// on a steady cadence and runs commands submitted from other goroutines in
// between ticks, so the history buffer is never shared.
type ViewerLoop struct {
	uc       *ViewerUseCase
	interval time.Duration
	reporter TickReporter
	logger   *slog.Logger
	commands chan func(*ViewerUseCase)
	done     chan struct{}
}

// NewViewerLoop creates a loop around uc. reporter may be nil.
func NewViewerLoop(uc *ViewerUseCase, interval time.Duration, reporter TickReporter, logger *slog.Logger) *ViewerLoop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &ViewerLoop{
		uc:       uc,
		interval: interval,
		reporter: reporter,
		logger:   logger.With("component", "viewer_loop"),
		commands: make(chan func(*ViewerUseCase)),
		done:     make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled.
func (l *ViewerLoop) Run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("viewer loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("viewer loop stopped")
			return
		case <-ticker.C:
			drained := l.uc.Tick()
			if l.reporter != nil && drained > 0 {
				l.reporter.ReportEvents(drained)
			}
		case cmd := <-l.commands:
			cmd(l.uc)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *ViewerLoop) Do(ctx context.Context, fn func(uc *ViewerUseCase)) error {
	finished := make(chan struct{})
	cmd := func(uc *ViewerUseCase) {
		defer close(finished)
		fn(uc)
	}

	select {
	case l.commands <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopStopped
	}
	<-finished
	return nil
}
