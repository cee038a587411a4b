package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brannerchinese/stockscrape/app/headline"
)

var _ HeadlineRepository = (*SQLHeadlineRepository)(nil)

// SQLHeadlineRepository handles database operations for headline records
type SQLHeadlineRepository struct {
	db *DB
}

func NewHeadlineRepository(db *DB) *SQLHeadlineRepository {
	return &SQLHeadlineRepository{db: db}
}

// LoadKnownKeys returns a snapshot of every (ticker, headline) pair in
// the store. Taken once per ingestion pass, before any insert, so the
// novelty view stays stable for the whole pass.
func (r *SQLHeadlineRepository) LoadKnownKeys(ctx context.Context) (map[Key]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker, headline FROM headlines`)
	if err != nil {
		return nil, fmt.Errorf("failed to load known keys: %w", err)
	}
	defer rows.Close()

	known := make(map[Key]struct{})
	for rows.Next() {
		var key Key
		if err := rows.Scan(&key.Ticker, &key.Headline); err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		known[key] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key rows: %w", err)
	}

	return known, nil
}

// InsertIfAbsent inserts a record unless its (ticker, headline) pair
// already exists. The unique constraint arbitrates, so the result is
// correct even when the caller's snapshot is stale.
func (r *SQLHeadlineRepository) InsertIfAbsent(ctx context.Context, record headline.Record) (InsertResult, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO headlines (ticker, headline, url, source, date, lookupdate)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (ticker, headline) DO NOTHING
	`, record.Symbol, record.Headline, record.URL, record.Source,
		record.Date.Format(DateLayout), record.LookupDate.Format(DateLayout))
	if err != nil {
		return AlreadyExists, fmt.Errorf("failed to insert headline: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return AlreadyExists, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return AlreadyExists, nil
	}

	return Inserted, nil
}

// GetByDateRange returns a ticker's headlines with date in [from, to],
// newest date first.
func (r *SQLHeadlineRepository) GetByDateRange(ctx context.Context, ticker string, from, to time.Time) ([]Headline, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticker, headline, url, source, date, lookupdate, created_at
		FROM headlines
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, id ASC
	`, ticker, from.Format(DateLayout), to.Format(DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get headlines by date range: %w", err)
	}
	defer rows.Close()

	var headlines []Headline
	for rows.Next() {
		var h Headline
		err := rows.Scan(&h.ID, &h.Ticker, &h.Headline, &h.URL, &h.Source,
			&h.Date, &h.LookupDate, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan headline row: %w", err)
		}
		headlines = append(headlines, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating headline rows: %w", err)
	}

	return headlines, nil
}

// HasHeadlines reports whether any headline was ever stored for the
// ticker, regardless of date.
func (r *SQLHeadlineRepository) HasHeadlines(ctx context.Context, ticker string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM headlines WHERE ticker = ? LIMIT 1`, ticker).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for headlines: %w", err)
	}
	return true, nil
}

// GetHeadlineCount returns the total number of stored headlines
func (r *SQLHeadlineRepository) GetHeadlineCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM headlines`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get headline count: %w", err)
	}
	return count, nil
}

// GetSymbolStats returns per-ticker headline counts and latest dates.
func (r *SQLHeadlineRepository) GetSymbolStats(ctx context.Context) ([]SymbolStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ticker, COUNT(*), MAX(date)
		FROM headlines
		GROUP BY ticker
		ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol stats: %w", err)
	}
	defer rows.Close()

	var stats []SymbolStats
	for rows.Next() {
		var s SymbolStats
		if err := rows.Scan(&s.Ticker, &s.Headlines, &s.LatestDate); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stats rows: %w", err)
	}

	return stats, nil
}
