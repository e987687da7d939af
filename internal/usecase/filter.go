package usecase

import (
	"iter"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// Visible yields the records of h that pass every predicate of cfg, in
// arrival order. The sequence is lazy and restartable: each range evaluates
// the buffer from scratch, and nothing is mutated.
func Visible(h *History, cfg domain.FilterConfig) iter.Seq[domain.Record] {
	return func(yield func(domain.Record) bool) {
		for r := range h.All() {
			if !cfg.Matches(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// CountVisible returns the number of records Visible would yield.
func CountVisible(h *History, cfg domain.FilterConfig) int {
	n := 0
	for range Visible(h, cfg) {
		n++
	}
	return n
}
