package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/V4T54L/udp-logview/internal/adapter/repository"
	"github.com/V4T54L/udp-logview/internal/domain"
)

const exportsTableName = "log_exports"

const createExportsTable = `
CREATE TABLE IF NOT EXISTS log_exports (
	export_id    UUID        NOT NULL,
	export_name  TEXT        NOT NULL,
	seq          INTEGER     NOT NULL,
	timestamp_ms BIGINT      NOT NULL,
	level        TEXT        NOT NULL,
	task         TEXT        NOT NULL,
	tag          TEXT        NOT NULL,
	message      TEXT        NOT NULL,
	raw          TEXT        NOT NULL,
	exported_at  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (export_id, seq)
);`

// ExportRepository writes exports as rows of the log_exports table, one
// export_id per export run.
type ExportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExportRepository creates a new PostgreSQL export repository.
func NewExportRepository(db *sql.DB, logger *slog.Logger) *ExportRepository {
	return &ExportRepository{db: db, logger: logger.With("component", "postgres_export_repository")}
}

// EnsureSchema creates the exports table when it does not exist yet.
func (r *ExportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createExportsTable); err != nil {
		return fmt.Errorf("failed to create %s table: %w", exportsTableName, err)
	}
	return nil
}

// Describe returns where an export called name is written to.
func (r *ExportRepository) Describe(name string) string {
	return fmt.Sprintf("postgres table %s (export_name=%s)", exportsTableName, name)
}

// WriteExport copies every record into log_exports using the COPY protocol in
// a single transaction, so an export is either fully visible or absent.
func (r *ExportRepository) WriteExport(ctx context.Context, name string, seq iter.Seq[domain.Record]) (count int, err error) {
	ctx, span := repository.StartExportSpan(ctx, "postgres", name)
	defer func() { repository.EndExportSpan(span, count, err) }()

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	stmt, err := txn.PrepareContext(ctx, pq.CopyIn(exportsTableName,
		"export_id", "export_name", "seq", "timestamp_ms", "level", "task", "tag", "message", "raw", "exported_at"))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare export copy: %w", err)
	}

	exportID := uuid.New()
	exportedAt := time.Now().UTC()
	n := 0
	for rec := range seq {
		_, err = stmt.ExecContext(ctx, exportID, name, n, int64(rec.TimestampMillis), rec.Level.String(), rec.Task, rec.Tag, rec.Message, rec.Raw, exportedAt)
		if err != nil {
			// Close the statement to avoid connection issues
			_ = stmt.Close()
			return 0, fmt.Errorf("failed to copy export row %d: %w", n, err)
		}
		n++
	}

	// The final Exec without arguments flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return 0, fmt.Errorf("failed to flush export copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return 0, fmt.Errorf("failed to close export copy: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export: %w", err)
	}

	r.logger.Debug("export rows written", "export_id", exportID, "name", name, "count", n)
	return n, nil
}
