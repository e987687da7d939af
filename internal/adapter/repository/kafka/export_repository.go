package kafka

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/V4T54L/udp-logview/internal/adapter/repository"
	"github.com/V4T54L/udp-logview/internal/domain"
)

const writeBatch = 500

// MessageWriter is the subset of *kafka.Writer used for exports.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ExportRepository publishes each exported record as one message on a topic,
// keyed by the export name so an export stays on one partition in order.
type ExportRepository struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter builds the kafka-go writer used in production.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewExportRepository creates a Kafka exporter on top of w.
func NewExportRepository(w MessageWriter, topic string, logger *slog.Logger) *ExportRepository {
	return &ExportRepository{
		writer: w,
		topic:  topic,
		logger: logger.With("component", "kafka_export_repository"),
	}
}

// Describe returns where an export called name is published.
func (r *ExportRepository) Describe(name string) string {
	return fmt.Sprintf("kafka topic %s (key=%s)", r.topic, name)
}

// WriteExport publishes the records in batches of writeBatch messages.
func (r *ExportRepository) WriteExport(ctx context.Context, name string, seq iter.Seq[domain.Record]) (count int, err error) {
	ctx, span := repository.StartExportSpan(ctx, "kafka", name)
	defer func() { repository.EndExportSpan(span, count, err) }()

	key := []byte(name)
	batch := make([]kafka.Message, 0, writeBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.writer.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("failed to publish export %s: %w", name, err)
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for rec := range seq {
		batch = append(batch, kafka.Message{
			Key:   key,
			Value: []byte(rec.Raw),
			Headers: []kafka.Header{
				{Key: "level", Value: []byte(rec.Level.String())},
				{Key: "timestamp_ms", Value: []byte(strconv.FormatUint(rec.TimestampMillis, 10))},
				{Key: "task", Value: []byte(rec.Task)},
				{Key: "tag", Value: []byte(rec.Tag)},
			},
		})
		if len(batch) >= writeBatch {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := flush(); err != nil {
		return count, err
	}

	r.logger.Debug("export published", "topic", r.topic, "name", name, "count", count)
	return count, nil
}
