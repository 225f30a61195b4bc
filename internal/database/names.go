package database

import (
	"context"
	"fmt"

	"github.com/nao1215/kakusu/internal/model"
)

// DefaultNameLimit is the number of candidates QueryNames returns when no
// limit is given.
const DefaultNameLimit = 50

// NameQuery selects names by the stroke count of each character.
type NameQuery struct {
	// Strokes holds one entry per character; its length is the name length.
	Strokes []int
	// Gender filters by gender ("male" or "female"). Empty matches any.
	Gender string
	// Limit caps the result. Zero means DefaultNameLimit.
	Limit int
}

// InsertNames stores names in one transaction. Names already present are
// skipped. It returns the number of newly inserted rows.
func (s *Store) InsertNames(ctx context.Context, names []model.NameCandidate) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR IGNORE INTO names (name, yomi, chars, strokes_1, strokes_2, strokes_3,
		total_strokes, gender, source_url, scraped_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, n := range names {
		scrapedAt := n.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = s.now()
		}
		total := n.TotalStrokes
		if total == 0 {
			total = n.Strokes[0] + n.Strokes[1] + n.Strokes[2]
		}
		res, err := stmt.ExecContext(ctx,
			n.Name,
			n.Yomi,
			n.Chars,
			n.Strokes[0],
			n.Strokes[1],
			n.Strokes[2],
			total,
			n.Gender,
			n.SourceURL,
			formatTimestamp(scrapedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert name %q: %w", n.Name, err)
		}
		if affected, err := res.RowsAffected(); err == nil {
			inserted += int(affected)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit names: %w", err)
	}
	return inserted, nil
}

// QueryNames returns names whose characters have exactly the given stroke
// counts, in insertion order.
func (s *Store) QueryNames(ctx context.Context, q NameQuery) ([]model.NameCandidate, error) {
	if len(q.Strokes) < 1 || len(q.Strokes) > 3 {
		return nil, fmt.Errorf("stroke counts must have 1 to 3 entries, got %d", len(q.Strokes))
	}
	var strokes [3]int
	copy(strokes[:], q.Strokes)

	query := `
	SELECT id, name, yomi, chars, strokes_1, strokes_2, strokes_3, total_strokes,
		gender, source_url, scraped_at
	FROM names
	WHERE chars = ? AND strokes_1 = ? AND strokes_2 = ? AND strokes_3 = ?
	`
	args := []any{len(q.Strokes), strokes[0], strokes[1], strokes[2]}
	if q.Gender != "" {
		query += " AND gender = ?"
		args = append(args, q.Gender)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultNameLimit
	}
	query += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query names: %w", err)
	}
	defer rows.Close()

	var results []model.NameCandidate
	for rows.Next() {
		var n model.NameCandidate
		var scrapedAt string
		if err := rows.Scan(
			&n.ID,
			&n.Name,
			&n.Yomi,
			&n.Chars,
			&n.Strokes[0],
			&n.Strokes[1],
			&n.Strokes[2],
			&n.TotalStrokes,
			&n.Gender,
			&n.SourceURL,
			&scrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		n.ScrapedAt = parseTimestamp(scrapedAt)
		results = append(results, n)
	}
	return results, rows.Err()
}
