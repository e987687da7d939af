package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateMessage is pushed to every /events subscriber once per interval.
type RateMessage struct {
	Rate    float64 `json:"rate"`
	Records int     `json:"records"`
}

// SSEBroker turns per-tick drain counts into an ingestion rate and
// broadcasts it to connected clients.
type SSEBroker struct {
	logger   *slog.Logger
	interval time.Duration
	clients  map[chan []byte]struct{}
	mu       sync.RWMutex
	counts   chan int
}

// NewSSEBroker creates a new SSEBroker and starts its processing loop.
func NewSSEBroker(ctx context.Context, interval time.Duration, logger *slog.Logger) *SSEBroker {
	if interval <= 0 {
		interval = time.Second
	}
	broker := &SSEBroker{
		logger:   logger.With("component", "sse_broker"),
		interval: interval,
		clients:  make(map[chan []byte]struct{}),
		counts:   make(chan int, 256),
	}
	go broker.run(ctx)
	return broker
}

// ServeHTTP streams rate messages until the client goes away.
func (b *SSEBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	messages := make(chan []byte, 4)
	b.addClient(messages)
	defer b.removeClient(messages)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-messages:
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// ReportEvents records how many records a tick merged into the history.
// It never blocks the viewer loop.
func (b *SSEBroker) ReportEvents(count int) {
	select {
	case b.counts <- count:
	default:
		b.logger.Warn("rate report dropped, broker is behind")
	}
}

// Clients returns the number of connected subscribers.
func (b *SSEBroker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *SSEBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Debug("SSE client connected", "clients", len(b.clients))
}

func (b *SSEBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, client)
	b.logger.Debug("SSE client disconnected", "clients", len(b.clients))
}

func (b *SSEBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; it will pick up the next interval.
		}
	}
}

func (b *SSEBroker) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	var count int
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-b.counts:
			count += n
		case now := <-ticker.C:
			rate := 0.0
			if elapsed := now.Sub(last).Seconds(); elapsed > 0 {
				rate = float64(count) / elapsed
			}

			data, err := json.Marshal(RateMessage{Rate: rate, Records: count})
			if err != nil {
				b.logger.Error("failed to marshal rate message", "error", err)
				continue
			}
			b.broadcast(data)

			last = now
			count = 0
		}
	}
}
