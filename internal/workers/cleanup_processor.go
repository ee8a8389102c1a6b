// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mcardoso/brecho-be/internal/core/ports"
	"github.com/mcardoso/brecho-be/internal/pkg/config"
)

// CleanupProcessor handles housekeeping tasks
type CleanupProcessor struct {
	db     ports.Database
	config *config.Config
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(database ports.Database, cfg *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     database,
		config: cfg,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupOldData removes finished import job records older than 30 days.
func (p *CleanupProcessor) CleanupOldData(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up old job records")

	query := `
		DELETE FROM async_jobs
		WHERE status IN ('completed', 'failed')
		  AND created_at < NOW() - INTERVAL '30 days'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to cleanup job records: %w", err)
	}

	p.logger.InfoContext(ctx, "old job records cleaned up",
		slog.Int64("rows_deleted", result.RowsAffected()))

	return nil
}

// CleanupTempFiles removes stale upload files from the temp directory.
func (p *CleanupProcessor) CleanupTempFiles(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "cleaning up temp files")

	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			if err := os.Remove(path); err != nil {
				p.logger.WarnContext(ctx, "failed to delete temp file",
					slog.String("file", path),
					slog.String("error", err.Error()))
			} else {
				deletedCount++
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to walk temp directory: %w", err)
	}

	p.logger.InfoContext(ctx, "temp files cleaned up",
		slog.Int("files_deleted", deletedCount))

	return nil
}
