package api

import (
	"context"
	"time"

	"github.com/brannerchinese/stockscrape/app/database"
	"github.com/brannerchinese/stockscrape/app/ingest"
)

// PassRunner triggers one ingestion pass on demand.
type PassRunner interface {
	Run(ctx context.Context, symbols []string, today time.Time) (ingest.Summary, error)
}

// Handler carries the dependencies of the HTTP endpoints.
type Handler struct {
	headlineRepo database.HeadlineRepository
	quoteRepo    database.QuoteRepository
	runner       PassRunner
	symbols      []string
	lookbackDays int
	version      string
	now          func() time.Time
}
