package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/V4T54L/udp-logview/internal/adapter/queue"
)

type countingReporter struct {
	mu    sync.Mutex
	total int
}

func (r *countingReporter) ReportEvents(count int) {
	r.mu.Lock()
	r.total += count
	r.mu.Unlock()
}

func (r *countingReporter) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func TestViewerLoop(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := queue.NewHandoffQueue()
	uc := NewViewerUseCase(q, ViewerOptions{MaxRecords: 100, EvictBatch: 10}, logger)
	reporter := &countingReporter{}
	loop := NewViewerLoop(uc, time.Millisecond, reporter, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	for i := 0; i < 20; i++ {
		q.Push(rec(i))
	}

	deadline := time.Now().Add(2 * time.Second)
	var total int
	for time.Now().Before(deadline) {
		if err := loop.Do(context.Background(), func(uc *ViewerUseCase) { total = uc.Total() }); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if total == 20 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if total != 20 {
		t.Fatalf("expected loop to drain 20 records, got %d", total)
	}
	if reporter.Total() != 20 {
		t.Errorf("expected reporter to see 20 records, got %d", reporter.Total())
	}

	cancel()
	<-done

	err := loop.Do(context.Background(), func(uc *ViewerUseCase) {})
	if !errors.Is(err, ErrLoopStopped) {
		t.Errorf("expected ErrLoopStopped after shutdown, got %v", err)
	}
}
