package usecase

import (
	"strconv"
	"testing"
	"testing/quick"

	"github.com/V4T54L/udp-logview/internal/adapter/queue"
	"github.com/V4T54L/udp-logview/internal/domain"
)

func rec(i int) domain.Record {
	return domain.Record{Raw: strconv.Itoa(i), Level: domain.LevelInfo}
}

func collect(h *History) []domain.Record {
	var out []domain.Record
	for r := range h.All() {
		out = append(out, r)
	}
	return out
}

func TestHistory_EvictsOldestBatch(t *testing.T) {
	h := NewHistory(10000, 2000)
	for i := 0; i < 10001; i++ {
		h.Append(rec(i))
		h.EnforceCap()
	}

	if h.Len() != 8001 {
		t.Fatalf("expected 8001 records, got %d", h.Len())
	}
	got := collect(h)
	if got[0].Raw != "2000" {
		t.Errorf("expected first retained record to be 2000, got %s", got[0].Raw)
	}
	if got[len(got)-1].Raw != "10000" {
		t.Errorf("expected last record to be 10000, got %s", got[len(got)-1].Raw)
	}
}

func TestHistory_EnforceCapAfterLargeBatch(t *testing.T) {
	h := NewHistory(10, 3)
	for i := 0; i < 25; i++ {
		h.Append(rec(i))
	}

	evicted := h.EnforceCap()

	// 25 -> 22 -> 19 -> 16 -> 13 -> 10
	if evicted != 15 {
		t.Errorf("expected 15 evicted records, got %d", evicted)
	}
	if h.Len() != 10 {
		t.Fatalf("expected 10 records, got %d", h.Len())
	}
	if got := collect(h); got[0].Raw != "15" {
		t.Errorf("expected oldest retained record to be 15, got %s", got[0].Raw)
	}
}

func TestHistory_SettledLengthProperty(t *testing.T) {
	f := func(maxSeed, batchSeed uint8, extraSeed uint16) bool {
		max := int(maxSeed)%200 + 1
		batch := int(batchSeed)%max + 1
		n := max + int(extraSeed)%1000 + 1

		h := NewHistory(max, batch)
		for i := 0; i < n; i++ {
			h.Append(rec(i))
			h.EnforceCap()
			if h.Len() > max {
				return false
			}
		}
		if h.Len() < max-batch+1 || h.Len() > max {
			return false
		}
		got := collect(h)
		first := n - len(got)
		for i, r := range got {
			if r.Raw != strconv.Itoa(first+i) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestHistory_Drain(t *testing.T) {
	q := queue.NewHandoffQueue()
	h := NewHistory(100, 10)

	if n := h.Drain(q, 5); n != 0 {
		t.Errorf("expected 0 drained from empty queue, got %d", n)
	}

	for i := 0; i < 12; i++ {
		q.Push(rec(i))
	}
	if n := h.Drain(q, 5); n != 5 {
		t.Errorf("expected 5 drained, got %d", n)
	}
	if n := h.Drain(q, 5); n != 5 {
		t.Errorf("expected 5 drained, got %d", n)
	}
	if n := h.Drain(q, 5); n != 2 {
		t.Errorf("expected 2 drained, got %d", n)
	}
	if h.Len() != 12 {
		t.Errorf("expected 12 records, got %d", h.Len())
	}
	for i, r := range collect(h) {
		if r.Raw != strconv.Itoa(i) {
			t.Fatalf("arrival order broken at %d: %s", i, r.Raw)
		}
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(10, 5)
	h.Append(rec(1), rec(2))
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d", h.Len())
	}
	h.Append(rec(3))
	if got := collect(h); len(got) != 1 || got[0].Raw != "3" {
		t.Errorf("unexpected contents after clear: %+v", got)
	}
}
