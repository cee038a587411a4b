package database

import (
	"context"
	"time"

	"github.com/brannerchinese/stockscrape/app/headline"
)

// DateLayout is the ISO 8601 form dates are stored in. Stored as text,
// string comparison and date comparison agree.
const DateLayout = "2006-01-02"

// Headline is a headline record as stored in the database.
type Headline struct {
	ID         int64
	Ticker     string
	Headline   string
	URL        string
	Source     string
	Date       string // YYYY-MM-DD
	LookupDate string // YYYY-MM-DD
	CreatedAt  string
}

// Key identifies a headline for deduplication.
type Key struct {
	Ticker   string
	Headline string
}

// InsertResult reports the outcome of an idempotent insert.
type InsertResult int

const (
	Inserted InsertResult = iota
	AlreadyExists
)

// SymbolStats summarizes stored headlines for one ticker.
type SymbolStats struct {
	Ticker     string
	Headlines  int
	LatestDate string
}

// Quote is the latest price snapshot for one ticker.
type Quote struct {
	ID        int64
	Ticker    string
	TradeDate string
	LastTrade string
	Change    string
	PctChange string
	Dividend  string
	PayDate   string
	ExDivDate string
	FetchedAt string
}

type HeadlineRepository interface {
	LoadKnownKeys(ctx context.Context) (map[Key]struct{}, error)
	InsertIfAbsent(ctx context.Context, record headline.Record) (InsertResult, error)

	GetByDateRange(ctx context.Context, ticker string, from, to time.Time) ([]Headline, error)
	HasHeadlines(ctx context.Context, ticker string) (bool, error)
	GetHeadlineCount(ctx context.Context) (int, error)
	GetSymbolStats(ctx context.Context) ([]SymbolStats, error)
}

type QuoteRepository interface {
	UpsertQuote(ctx context.Context, quote Quote) error
	GetQuotes(ctx context.Context, tickers []string) ([]Quote, error)
}
