package mocks

import (
	"context"
	"iter"
	"sync"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// MockExportRepository is a mock implementation of domain.ExportRepository for testing.
type MockExportRepository struct {
	mu       sync.Mutex
	Names    []string
	Lines    []string
	WriteErr error
}

func (m *MockExportRepository) WriteExport(ctx context.Context, name string, seq iter.Seq[domain.Record]) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.Names = append(m.Names, name)
	count := 0
	for r := range seq {
		m.Lines = append(m.Lines, r.Raw)
		count++
	}
	return count, nil
}

func (m *MockExportRepository) Describe(name string) string {
	return "mock:" + name
}

// Written returns a copy of the exported raw lines.
func (m *MockExportRepository) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Lines))
	copy(out, m.Lines)
	return out
}
