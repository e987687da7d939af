package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/V4T54L/udp-logview/internal/adapter/repository"
	"github.com/V4T54L/udp-logview/internal/domain"
)

const (
	filePerm      = 0644
	plainExt      = ".txt"
	compressedExt = ".txt.zst"
)

// ExportRepository writes exports as newline-delimited raw lines, one file per
// export, optionally zstd compressed.
type ExportRepository struct {
	dir      string
	compress bool
	logger   *slog.Logger
}

// NewExportRepository creates a file exporter writing into dir.
func NewExportRepository(dir string, compress bool, logger *slog.Logger) *ExportRepository {
	if dir == "" {
		dir = "."
	}
	return &ExportRepository{
		dir:      dir,
		compress: compress,
		logger:   logger.With("component", "file_export_repository"),
	}
}

// Describe returns the path an export called name is written to.
func (e *ExportRepository) Describe(name string) string {
	ext := plainExt
	if e.compress {
		ext = compressedExt
	}
	return filepath.Join(e.dir, name+ext)
}

// WriteExport creates the export file and writes every record's raw line.
// The file is synced and closed before it returns.
func (e *ExportRepository) WriteExport(ctx context.Context, name string, seq iter.Seq[domain.Record]) (count int, err error) {
	ctx, span := repository.StartExportSpan(ctx, "file", name)
	defer func() { repository.EndExportSpan(span, count, err) }()

	path := e.Describe(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file %s: %w", path, cerr)
		}
	}()

	var sink io.Writer = f
	var enc *zstd.Encoder
	if e.compress {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return 0, fmt.Errorf("failed to start zstd encoder: %w", err)
		}
		sink = enc
	}

	w := bufio.NewWriter(sink)
	for r := range seq {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if _, err := w.WriteString(r.Raw); err != nil {
			return count, fmt.Errorf("failed to write export file %s: %w", path, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return count, fmt.Errorf("failed to write export file %s: %w", path, err)
		}
		count++
	}

	if err := w.Flush(); err != nil {
		return count, fmt.Errorf("failed to flush export file %s: %w", path, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return count, fmt.Errorf("failed to finish zstd stream %s: %w", path, err)
		}
	}
	if err := f.Sync(); err != nil {
		e.logger.Warn("failed to sync export file", "path", path, "error", err)
	}

	e.logger.Debug("export file written", "path", path, "count", count)
	return count, nil
}
