// Package storage persists the history of search runs.
package storage

import (
	"context"

	"github.com/hyperjump/minigrep/internal/models"
)

// History records search runs and answers questions about them.
type History interface {
	// RecordRun stores run and sets its CreatedAt.
	RecordRun(ctx context.Context, run *models.RunRecord) error
	// CountRuns returns the number of runs recorded so far.
	CountRuns(ctx context.Context) (int64, error)
	// CountRunsForDocument returns the number of runs recorded against one document.
	CountRunsForDocument(ctx context.Context, documentID string) (int64, error)
	// ListRuns returns at most limit runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error)

	Close() error
}
