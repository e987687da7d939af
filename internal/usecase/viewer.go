package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"time"

	"github.com/V4T54L/udp-logview/internal/adapter/metrics"
	"github.com/V4T54L/udp-logview/internal/domain"
)

const (
	defaultDrainBatch = 500
	exportTimeLayout  = "20060102_150405"
	exportNamePrefix  = "logs_"
)

// ErrUnknownSink is returned when an export names a destination that was not configured.
var ErrUnknownSink = errors.New("unknown export sink")

// ViewerOptions configure a ViewerUseCase.
type ViewerOptions struct {
	MaxRecords int
	EvictBatch int
	DrainBatch int // records pulled from the queue per tick; zero uses default
	MinLevel   domain.Level
	Exporters  map[string]domain.ExportRepository
	Metrics    *metrics.ViewerMetrics
	Now        func() time.Time // nil uses time.Now
}

// FilterInput is the filter state requested by the presentation layer.
type FilterInput struct {
	MinLevel domain.Level `json:"min_level"`
	Pattern  string       `json:"pattern"`
	Search   string       `json:"search"`
}

// FilterState describes the filter currently applied.
type FilterState struct {
	MinLevel      domain.Level `json:"min_level"`
	Pattern       string       `json:"pattern"`
	PatternActive bool         `json:"pattern_active"`
	Search        string       `json:"search"`
}

// Stats is the read-only summary shown next to the record list.
type Stats struct {
	Total   int         `json:"total"`
	Visible int         `json:"visible"`
	Queued  int         `json:"queued"`
	Paused  bool        `json:"paused"`
	Filter  FilterState `json:"filter"`
	Sinks   []string    `json:"sinks"`
}

// ExportResult reports a completed export.
type ExportResult struct {
	Sink        string `json:"sink"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	Count       int    `json:"count"`
}

// ViewerUseCase is the control surface over the ingestion pipeline. It owns
// the history buffer and the filter; all methods must be called from the
// same goroutine (see ViewerLoop).
type ViewerUseCase struct {
	queue      domain.RecordQueue
	history    *History
	filter     domain.FilterConfig
	paused     bool
	drainBatch int
	exporters  map[string]domain.ExportRepository
	metrics    *metrics.ViewerMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewViewerUseCase creates a new ViewerUseCase draining from q.
func NewViewerUseCase(q domain.RecordQueue, opts ViewerOptions, logger *slog.Logger) *ViewerUseCase {
	drainBatch := opts.DrainBatch
	if drainBatch <= 0 {
		drainBatch = defaultDrainBatch
	}
	minLevel := opts.MinLevel
	if minLevel == 0 {
		minLevel = domain.LevelInfo
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	exporters := opts.Exporters
	if exporters == nil {
		exporters = map[string]domain.ExportRepository{}
	}
	return &ViewerUseCase{
		queue:      q,
		history:    NewHistory(opts.MaxRecords, opts.EvictBatch),
		filter:     domain.NewFilterConfig(minLevel),
		drainBatch: drainBatch,
		exporters:  exporters,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "viewer"),
		now:        now,
	}
}

// Tick is the per-cycle driver: unless paused it drains up to one batch from
// the queue, then enforces the size cap. It returns the number of records drained.
func (uc *ViewerUseCase) Tick() int {
	drained := 0
	if !uc.paused {
		drained = uc.history.Drain(uc.queue, uc.drainBatch)
	}
	evicted := uc.history.EnforceCap()

	if uc.metrics != nil {
		uc.metrics.DrainedTotal.Add(float64(drained))
		uc.metrics.EvictedTotal.Add(float64(evicted))
		uc.metrics.BufferedRecords.Set(float64(uc.history.Len()))
		uc.metrics.QueueDepth.Set(float64(uc.queue.Len()))
	}
	if evicted > 0 {
		uc.logger.Debug("evicted oldest records", "count", evicted, "remaining", uc.history.Len())
	}
	return drained
}

// Pause stops merging queued records into the history. Records keep
// accumulating in the queue.
func (uc *ViewerUseCase) Pause() {
	if !uc.paused {
		uc.paused = true
		uc.logger.Info("ingestion paused")
	}
}

// Resume lets the following ticks flush the queue through the normal drain path.
func (uc *ViewerUseCase) Resume() {
	if uc.paused {
		uc.paused = false
		uc.logger.Info("ingestion resumed", "queued", uc.queue.Len())
	}
}

func (uc *ViewerUseCase) Paused() bool { return uc.paused }

// SetFilter replaces the filter. An invalid pattern silently disables the
// pattern predicate.
func (uc *ViewerUseCase) SetFilter(in FilterInput) FilterState {
	if in.MinLevel != 0 {
		uc.filter.MinLevel = in.MinLevel
	}
	uc.filter.SetPattern(in.Pattern)
	uc.filter.SetSearch(in.Search)
	if in.Pattern != "" && !uc.filter.PatternActive() {
		uc.logger.Debug("ignoring invalid tag/task pattern", "pattern", in.Pattern)
	}
	return uc.Filter()
}

// Filter returns the filter currently applied.
func (uc *ViewerUseCase) Filter() FilterState {
	return FilterState{
		MinLevel:      uc.filter.MinLevel,
		Pattern:       uc.filter.PatternText(),
		PatternActive: uc.filter.PatternActive(),
		Search:        uc.filter.SearchText(),
	}
}

// ClearHistory empties the history buffer. Queued records are kept.
func (uc *ViewerUseCase) ClearHistory() {
	uc.history.Clear()
	if uc.metrics != nil {
		uc.metrics.BufferedRecords.Set(0)
	}
	uc.logger.Info("history cleared")
}

// Total returns the number of records in the history buffer.
func (uc *ViewerUseCase) Total() int { return uc.history.Len() }

// Queued returns the number of records waiting in the handoff queue.
func (uc *ViewerUseCase) Queued() int { return uc.queue.Len() }

// Visible returns the currently visible records as a lazy sequence.
func (uc *ViewerUseCase) Visible() iter.Seq[domain.Record] {
	return Visible(uc.history, uc.filter)
}

// Sinks lists the configured export destinations.
func (uc *ViewerUseCase) Sinks() []string {
	names := make([]string, 0, len(uc.exporters))
	for name := range uc.exporters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarises buffer, queue and filter state.
func (uc *ViewerUseCase) Stats() Stats {
	return Stats{
		Total:   uc.history.Len(),
		Visible: CountVisible(uc.history, uc.filter),
		Queued:  uc.queue.Len(),
		Paused:  uc.paused,
		Filter:  uc.Filter(),
		Sinks:   uc.Sinks(),
	}
}

// ExportVisible writes the raw line of every visible record to a new output
// named after the current wall-clock time. Failures are returned as
// descriptive errors and leave the buffer untouched.
func (uc *ViewerUseCase) ExportVisible(ctx context.Context, sink string) (ExportResult, error) {
	repo, ok := uc.exporters[sink]
	if !ok {
		return ExportResult{}, fmt.Errorf("%w: %q", ErrUnknownSink, sink)
	}

	name := exportNamePrefix + uc.now().Format(exportTimeLayout)
	count, err := repo.WriteExport(ctx, name, uc.Visible())
	if err != nil {
		uc.countExport(sink, "error", 0)
		uc.logger.Error("export failed", "sink", sink, "name", name, "error", err)
		return ExportResult{}, fmt.Errorf("export to %s failed: %w", repo.Describe(name), err)
	}

	uc.countExport(sink, "ok", count)
	result := ExportResult{Sink: sink, Name: name, Destination: repo.Describe(name), Count: count}
	uc.logger.Info("exported visible records", "sink", sink, "destination", result.Destination, "count", count)
	return result, nil
}

func (uc *ViewerUseCase) countExport(sink, status string, count int) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.ExportsTotal.WithLabelValues(sink, status).Inc()
	uc.metrics.ExportedRecords.Add(float64(count))
}
