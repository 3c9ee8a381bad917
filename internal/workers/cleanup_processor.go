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

	"github.com/ovalles/posledger-be/internal/core/ports"
	"github.com/ovalles/posledger-be/internal/pkg/config"
)

// CleanupProcessor handles periodic housekeeping tasks
type CleanupProcessor struct {
	db     ports.Database
	config *config.Config
	logger *slog.Logger
}

// NewCleanupProcessor creates a new cleanup processor
func NewCleanupProcessor(db ports.Database, cfg *config.Config, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		db:     db,
		config: cfg,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// CleanupTempData removes stale upload files and settled import job records
func (p *CleanupProcessor) CleanupTempData(ctx context.Context, t *asynq.Task) error {
	if err := p.cleanupOldJobs(ctx); err != nil {
		return err
	}
	return p.cleanupTempFiles(ctx)
}

func (p *CleanupProcessor) cleanupOldJobs(ctx context.Context) error {
	query := `
		DELETE FROM async_jobs
		WHERE status IN ('completed', 'failed')
		  AND updated_at < NOW() - INTERVAL '30 days'`

	result, err := p.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to cleanup import jobs: %w", err)
	}

	p.logger.InfoContext(ctx, "old import jobs cleaned up",
		slog.Int64("rows_deleted", result.RowsAffected()))

	return nil
}

func (p *CleanupProcessor) cleanupTempFiles(ctx context.Context) error {
	tempDir := p.config.FileProcessing.TempDir
	maxAge := 24 * time.Hour

	var deletedCount int
	err := filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
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
