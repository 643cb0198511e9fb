package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/kwscan/internal/models"
)

// HistoryAdapter implements tasks.HistoryRecorder using SearchRepository.
type HistoryAdapter struct {
	repo *SearchRepository
}

// NewHistoryAdapter creates a new HistoryAdapter with the given repository
func NewHistoryAdapter(repo *SearchRepository) *HistoryAdapter {
	return &HistoryAdapter{repo: repo}
}

// RecordRun stores a finished submission.
func (a *HistoryAdapter) RecordRun(ctx context.Context, run *models.SearchRun) error {
	if err := a.repo.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}
