package redis

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/udp-logview/internal/adapter/repository"
	"github.com/V4T54L/udp-logview/internal/domain"
)

const pipelineBatch = 500

// ExportRepository writes each export to its own Redis Stream.
type ExportRepository struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewExportRepository creates a Redis-backed exporter. Streams are named
// "<prefix>:<export name>".
func NewExportRepository(client *redis.Client, prefix string, logger *slog.Logger) *ExportRepository {
	return &ExportRepository{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "redis_export_repository"),
	}
}

func (r *ExportRepository) streamKey(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

// Describe returns the stream an export called name is written to.
func (r *ExportRepository) Describe(name string) string {
	return "redis stream " + r.streamKey(name)
}

// WriteExport XADDs every record to a new stream through a pipeline flushed
// every pipelineBatch records.
func (r *ExportRepository) WriteExport(ctx context.Context, name string, seq iter.Seq[domain.Record]) (count int, err error) {
	ctx, span := repository.StartExportSpan(ctx, "redis", name)
	defer func() { repository.EndExportSpan(span, count, err) }()

	stream := r.streamKey(name)
	pipe := r.client.Pipeline()
	pending := 0

	flush := func() error {
		if pending == 0 {
			return nil
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to execute export pipeline for %s: %w", stream, err)
		}
		count += pending
		pending = 0
		return nil
	}

	for rec := range seq {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]interface{}{
				"raw":          rec.Raw,
				"level":        rec.Level.String(),
				"timestamp_ms": rec.TimestampMillis,
				"task":         rec.Task,
				"tag":          rec.Tag,
				"message":      rec.Message,
			},
		})
		pending++
		if pending >= pipelineBatch {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := flush(); err != nil {
		return count, err
	}

	r.logger.Debug("export stream written", "stream", stream, "count", count)
	return count, nil
}
