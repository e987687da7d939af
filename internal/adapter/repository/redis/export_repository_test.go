package redis

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/udp-logview/internal/domain"
)

func newUnreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestExportRepository_Describe(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := NewExportRepository(newUnreachableClient(t), "log_exports", logger)
	if got := repo.Describe("logs_1"); got != "redis stream log_exports:logs_1" {
		t.Errorf("unexpected description %q", got)
	}

	bare := NewExportRepository(newUnreachableClient(t), "", logger)
	if got := bare.Describe("logs_1"); got != "redis stream logs_1" {
		t.Errorf("unexpected description %q", got)
	}
}

func TestExportRepository_WriteExport(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewExportRepository(newUnreachableClient(t), "log_exports", logger)

	t.Run("Empty Export Skips Redis", func(t *testing.T) {
		count, err := repo.WriteExport(context.Background(), "logs_1", slices.Values([]domain.Record(nil)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 records, got %d", count)
		}
	})

	t.Run("Unreachable Server", func(t *testing.T) {
		count, err := repo.WriteExport(context.Background(), "logs_1", slices.Values([]domain.Record{{Raw: "a"}}))
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if count != 0 {
			t.Errorf("expected 0 records, got %d", count)
		}
	})
}
