package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
)

// SearchRepository persists [models.SearchRun] records with their match results.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SearchRepository with the given database connection
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Create inserts a run and its results, generating an ID and timestamp when missing
func (r *SearchRepository) Create(ctx context.Context, run *models.SearchRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		return fmt.Errorf("%w: run status is required", shared.ErrInvalidInput)
	}
	if run.Results != nil {
		run.MatchCount = len(run.Results)
	}

	var sequential, parallel sql.NullFloat64
	if run.Timing != nil {
		sequential = sql.NullFloat64{Float64: run.Timing.Sequential, Valid: true}
		parallel = sql.NullFloat64{Float64: run.Timing.Parallel, Valid: true}
	}

	return WithTx(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO searches (id, root, keywords, exact_match, num_workers, file_count, total_bytes,
				status, error, sequential_secs, parallel_secs, result_count, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := tx.ExecContext(ctx, query,
			run.ID,
			run.Root,
			run.Parameters.Keywords,
			run.Parameters.ExactMatch,
			run.Parameters.NumWorkers,
			run.FileCount,
			run.TotalBytes,
			string(run.Status),
			run.Error,
			sequential,
			parallel,
			run.MatchCount,
			run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert search: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO matches (search_id, position, file, location, keywords, content)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare match insert: %w", err)
		}
		defer stmt.Close()

		for i, m := range run.Results {
			keywords, err := json.Marshal(m.Keywords)
			if err != nil {
				return fmt.Errorf("failed to encode keywords: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, run.ID, i, m.File, m.Location, string(keywords), m.Content); err != nil {
				return fmt.Errorf("failed to insert match %d: %w", i, err)
			}
		}

		return nil
	})
}

// Get retrieves a run by ID together with its match results
func (r *SearchRepository) Get(ctx context.Context, id string) (*models.SearchRun, error) {
	query := `
		SELECT id, root, keywords, exact_match, num_workers, file_count, total_bytes,
			status, error, sequential_secs, parallel_secs, result_count, created_at
		FROM searches
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSearchNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Results, err = r.matches(ctx, id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

// List retrieves the most recent runs first, without their match results.
//
// A limit of zero or less returns every run.
func (r *SearchRepository) List(ctx context.Context, limit int) ([]*models.SearchRun, error) {
	query := `
		SELECT id, root, keywords, exact_match, num_workers, file_count, total_bytes,
			status, error, sequential_secs, parallel_secs, result_count, created_at
		FROM searches
		ORDER BY created_at DESC, id ASC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var runs []*models.SearchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating searches: %w", err)
	}

	return runs, nil
}

// Delete removes a run and, through the foreign key cascade, its match results
func (r *SearchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSearchNotFound, id)
	}

	return nil
}

func (r *SearchRepository) matches(ctx context.Context, id string) ([]models.MatchResult, error) {
	query := `
		SELECT file, location, keywords, content
		FROM matches
		WHERE search_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	results := []models.MatchResult{}
	for rows.Next() {
		var m models.MatchResult
		var keywords string
		if err := rows.Scan(&m.File, &m.Location, &keywords, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &m.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
		if m.Keywords == nil {
			m.Keywords = []string{}
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.SearchRun, error) {
	var (
		run        models.SearchRun
		status     string
		sequential sql.NullFloat64
		parallel   sql.NullFloat64
	)

	err := row.Scan(
		&run.ID,
		&run.Root,
		&run.Parameters.Keywords,
		&run.Parameters.ExactMatch,
		&run.Parameters.NumWorkers,
		&run.FileCount,
		&run.TotalBytes,
		&status,
		&run.Error,
		&sequential,
		&parallel,
		&run.MatchCount,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan search: %w", err)
	}

	run.Status = models.RunStatus(status)
	if sequential.Valid && parallel.Valid {
		run.Timing = &models.Timing{Sequential: sequential.Float64, Parallel: parallel.Float64}
	}

	return &run, nil
}
