package domain

import (
	"context"
	"iter"
)

// RecordQueue is the handoff between the network receiver and the buffer
// owner. Push must never block on the consumer.
type RecordQueue interface {
	// Push appends a record to the tail of the queue.
	Push(r Record)

	// PopBatch appends up to max records from the head of the queue to dst and
	// returns the extended slice. It returns dst unchanged when the queue is empty.
	PopBatch(dst []Record, max int) []Record

	// Len returns the number of records waiting.
	Len() int
}

// ExportRepository writes the raw lines of a record sequence to a new,
// named output sink.
type ExportRepository interface {
	// WriteExport creates the sink called name and writes every record of seq
	// to it. It returns the number of records written.
	WriteExport(ctx context.Context, name string, seq iter.Seq[Record]) (int, error)

	// Describe returns where an export with the given name ends up, for
	// display to the operator.
	Describe(name string) string
}
