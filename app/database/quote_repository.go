package database

import (
	"context"
	"fmt"
	"strings"
)

var _ QuoteRepository = (*SQLQuoteRepository)(nil)

// SQLQuoteRepository handles database operations for quote snapshots
type SQLQuoteRepository struct {
	db *DB
}

func NewQuoteRepository(db *DB) *SQLQuoteRepository {
	return &SQLQuoteRepository{db: db}
}

// UpsertQuote stores the latest snapshot for a ticker, replacing any
// previous one.
func (r *SQLQuoteRepository) UpsertQuote(ctx context.Context, quote Quote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes (ticker, trade_date, last_trade, change, pct_change,
			dividend, pay_date, ex_div_date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (ticker) DO UPDATE SET
			trade_date = excluded.trade_date,
			last_trade = excluded.last_trade,
			change = excluded.change,
			pct_change = excluded.pct_change,
			dividend = excluded.dividend,
			pay_date = excluded.pay_date,
			ex_div_date = excluded.ex_div_date,
			fetched_at = excluded.fetched_at
	`, quote.Ticker, quote.TradeDate, quote.LastTrade, quote.Change,
		quote.PctChange, quote.Dividend, quote.PayDate, quote.ExDivDate)

	if err != nil {
		return fmt.Errorf("failed to upsert quote: %w", err)
	}

	return nil
}

// GetQuotes returns stored snapshots for the given tickers, in the
// order the tickers were requested. Tickers without a snapshot are
// omitted.
func (r *SQLQuoteRepository) GetQuotes(ctx context.Context, tickers []string) ([]Quote, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tickers)), ",")
	args := make([]interface{}, len(tickers))
	for i, t := range tickers {
		args[i] = t
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, ticker, trade_date, last_trade, change, pct_change,
		       dividend, pay_date, ex_div_date, fetched_at
		FROM quotes
		WHERE ticker IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	byTicker := make(map[string]Quote)
	for rows.Next() {
		var q Quote
		err := rows.Scan(&q.ID, &q.Ticker, &q.TradeDate, &q.LastTrade, &q.Change,
			&q.PctChange, &q.Dividend, &q.PayDate, &q.ExDivDate, &q.FetchedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote row: %w", err)
		}
		byTicker[q.Ticker] = q
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", err)
	}

	quotes := make([]Quote, 0, len(byTicker))
	for _, t := range tickers {
		if q, ok := byTicker[t]; ok {
			quotes = append(quotes, q)
		}
	}

	return quotes, nil
}
