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

// CachedVerdicts returns the verdicts stored under key if they were fetched
// within maxAge. maxAge <= 0 accepts any age.
func (s *Store) CachedVerdicts(ctx context.Context, key string, maxAge time.Duration) (model.Verdicts, bool, error) {
	var verdictsJSON, fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT verdicts_json, fetched_at FROM oracle_cache WHERE cache_key = ?`, key,
	).Scan(&verdictsJSON, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read verdict cache: %w", err)
	}

	if maxAge > 0 && s.now().Sub(parseTimestamp(fetchedAt)) > maxAge {
		return nil, false, nil
	}

	var v model.Verdicts
	if err := json.Unmarshal([]byte(verdictsJSON), &v); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached verdicts: %w", err)
	}
	return v, true, nil
}

// StoreVerdicts saves v under key, replacing an older entry.
func (s *Store) StoreVerdicts(ctx context.Context, key string, oracle model.OracleID, q model.Query, v model.Verdicts) error {
	verdictsJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize verdicts: %w", err)
	}

	query := `
	INSERT INTO oracle_cache (cache_key, oracle, surname, given_name, gender, verdicts_json, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		verdicts_json = excluded.verdicts_json,
		fetched_at = excluded.fetched_at
	`
	_, err = s.db.ExecContext(ctx, query,
		key,
		string(oracle),
		q.Surname,
		q.GivenName,
		string(q.Gender),
		string(verdictsJSON),
		formatTimestamp(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to write verdict cache: %w", err)
	}
	return nil
}

// PurgeVerdicts deletes cache entries older than maxAge and returns how
// many were removed.
func (s *Store) PurgeVerdicts(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := formatTimestamp(s.now().Add(-maxAge))
	res, err := s.db.ExecContext(ctx, `DELETE FROM oracle_cache WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge verdict cache: %w", err)
	}
	return res.RowsAffected()
}
