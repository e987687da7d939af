package usecase

import (
	"iter"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// History is the bounded, arrival-ordered record buffer. It is owned by a
// single goroutine and is not safe for concurrent use.
type History struct {
	records  []domain.Record
	maxLen   int
	evictLen int
	scratch  []domain.Record
}

// NewHistory creates an empty buffer holding at most maxLen records. When the
// cap is exceeded the oldest evictLen records are dropped in one go.
func NewHistory(maxLen, evictLen int) *History {
	if maxLen <= 0 {
		maxLen = 1
	}
	if evictLen <= 0 || evictLen > maxLen {
		evictLen = maxLen
	}
	return &History{maxLen: maxLen, evictLen: evictLen}
}

// Append adds records to the tail without enforcing the cap.
func (h *History) Append(records ...domain.Record) {
	h.records = append(h.records, records...)
}

// Drain pulls up to maxBatch pending records from q and appends them. It
// returns immediately with zero when the queue is empty.
func (h *History) Drain(q domain.RecordQueue, maxBatch int) int {
	if maxBatch <= 0 {
		return 0
	}
	h.scratch = q.PopBatch(h.scratch[:0], maxBatch)
	n := len(h.scratch)
	h.records = append(h.records, h.scratch...)
	clear(h.scratch)
	return n
}

// EnforceCap evicts the oldest records in batches until the length is back
// within the cap, and returns how many were evicted.
func (h *History) EnforceCap() int {
	evicted := 0
	for len(h.records) > h.maxLen {
		n := min(h.evictLen, len(h.records))
		kept := copy(h.records, h.records[n:])
		clear(h.records[kept:])
		h.records = h.records[:kept]
		evicted += n
	}
	return evicted
}

// Clear empties the buffer.
func (h *History) Clear() {
	clear(h.records)
	h.records = h.records[:0]
}

// Len returns the number of buffered records.
func (h *History) Len() int {
	return len(h.records)
}

// All yields the buffered records oldest first. Each range starts over from
// the current contents.
func (h *History) All() iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		for _, r := range h.records {
			if !yield(r) {
				return
			}
		}
	}
}
