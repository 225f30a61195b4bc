package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/kakusu/internal/model"
)

// RunMetadata summarizes a stored run without loading its results.
type RunMetadata struct {
	ID                string    `json:"id"`
	Surname           string    `json:"surname"`
	CharCount         int       `json:"char_count"`
	GeneratedAt       time.Time `json:"generated_at"`
	TotalPatterns     int       `json:"total_patterns"`
	CompletedPatterns int       `json:"completed_patterns"`
	Partial           bool      `json:"partial,omitempty"`

	// BestScore and BestCharacters describe the top result, if any.
	BestScore      float64 `json:"best_score"`
	BestCharacters string  `json:"best_characters,omitempty"`
}

// SaveRun stores run. Saving the same ID again replaces the earlier copy.
func (s *Store) SaveRun(ctx context.Context, run *model.AnalysisRun) error {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	var best sql.NullFloat64
	var bestChars sql.NullString
	if len(run.TopResults) > 0 {
		best = sql.NullFloat64{Float64: run.TopResults[0].CompositeScore, Valid: true}
		bestChars = sql.NullString{String: run.TopResults[0].Characters, Valid: true}
	}

	query := `
	INSERT INTO analysis_runs (id, surname, char_count, generated_at, total_patterns,
		completed_patterns, partial, best_score, best_characters, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		completed_patterns = excluded.completed_patterns,
		partial = excluded.partial,
		best_score = excluded.best_score,
		best_characters = excluded.best_characters,
		run_json = excluded.run_json
	`

	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.Surname,
		run.CharCount,
		formatTimestamp(run.GeneratedAt),
		run.TotalPatterns,
		run.CompletedPatterns,
		run.Partial,
		best,
		bestChars,
		string(runJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis run: %w", err)
	}
	return nil
}

// GetRun loads a stored run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*model.AnalysisRun, error) {
	var runJSON string
	err := s.db.QueryRowContext(ctx, `SELECT run_json FROM analysis_runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	var run model.AnalysisRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse analysis run: %w", err)
	}
	return &run, nil
}

// ListRuns returns run summaries, newest first. An empty surname matches
// every run; limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, surname string, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, surname, char_count, generated_at, total_patterns, completed_patterns,
		partial, best_score, best_characters
	FROM analysis_runs
	WHERE 1=1
	`
	args := make([]any, 0, 2)
	if surname != "" {
		query += " AND surname = ?"
		args = append(args, surname)
	}
	query += " ORDER BY generated_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var generatedAt string
		var best sql.NullFloat64
		var bestChars sql.NullString
		if err := rows.Scan(
			&meta.ID,
			&meta.Surname,
			&meta.CharCount,
			&generatedAt,
			&meta.TotalPatterns,
			&meta.CompletedPatterns,
			&meta.Partial,
			&best,
			&bestChars,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		meta.GeneratedAt = parseTimestamp(generatedAt)
		meta.BestScore = best.Float64
		meta.BestCharacters = bestChars.String
		results = append(results, meta)
	}
	return results, rows.Err()
}
