package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/brannerchinese/stockscrape/app/database"
	"github.com/brannerchinese/stockscrape/app/headline"
	"github.com/brannerchinese/stockscrape/app/source"
)

// Runner executes one ingestion pass: fetch headlines per symbol over
// a worker pool, normalize and date-resolve them, and persist the ones
// not seen before. Fetch and normalization problems are confined to
// their symbol; a storage error cancels the whole pass.
type Runner struct {
	src          source.Source
	normalizer   *headline.Normalizer
	resolver     *headline.Resolver
	headlineRepo database.HeadlineRepository
	workerCount  int
}

func NewRunner(src source.Source, headlineRepo database.HeadlineRepository, workerCount int) *Runner {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Runner{
		src:          src,
		normalizer:   headline.NewNormalizer(),
		resolver:     headline.NewResolver(),
		headlineRepo: headlineRepo,
		workerCount:  workerCount,
	}
}

// Run processes all symbols against the reference date and returns the
// pass summary. The known-key snapshot is loaded once up front, so a
// pass observes a single consistent view of the store; inserts remain
// idempotent at the database level regardless.
func (r *Runner) Run(ctx context.Context, symbols []string, today time.Time) (Summary, error) {
	known, err := r.headlineRepo.LoadKnownKeys(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to load known headline keys: %w", err)
	}

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	results := make(chan SymbolReport, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < r.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				report := r.processSymbol(passCtx, symbol, today, known)
				if report.Err != nil && !isSymbolError(report.Err) {
					// Storage or cancellation: no point continuing.
					cancel()
				}
				results <- report
			}
		}()
	}

	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()
	close(results)

	reports := make([]SymbolReport, 0, len(symbols))
	for report := range results {
		reports = append(reports, report)
	}

	summary := summarize(reports)
	slog.Info("Ingestion pass completed",
		"symbols", summary.Symbols,
		"fetched", summary.Fetched,
		"new", summary.Inserted,
		"duplicates", summary.AlreadyKnown,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	if err := passCtx.Err(); err != nil {
		return summary, fmt.Errorf("ingestion pass aborted: %w", firstFatal(reports, err))
	}
	return summary, nil
}

func (r *Runner) processSymbol(ctx context.Context, symbol string, today time.Time, known map[database.Key]struct{}) SymbolReport {
	report := SymbolReport{Symbol: symbol}

	raws, err := r.src.Fetch(ctx, symbol, today)
	if err != nil {
		slog.Warn("Fetch failed, skipping symbol", "symbol", symbol, "error", err)
		report.Err = err
		return report
	}
	report.Fetched = len(raws)

	for _, raw := range raws {
		record, err := r.normalizer.Normalize(symbol, raw)
		if err != nil {
			slog.Debug("Skipping non-headline item", "symbol", symbol, "error", err)
			report.Skipped++
			continue
		}

		record.Date, err = r.resolveDate(raw, today)
		if err != nil {
			slog.Warn("Skipping headline with unusable date", "symbol", symbol, "date_text", raw.DateText, "error", err)
			report.Skipped++
			continue
		}
		record.LookupDate = today

		if _, ok := known[database.Key{Ticker: record.Symbol, Headline: record.Headline}]; ok {
			report.AlreadyKnown++
			continue
		}

		result, err := r.headlineRepo.InsertIfAbsent(ctx, record)
		if err != nil {
			report.Err = fmt.Errorf("failed to store headline: %w", err)
			return report
		}
		switch result {
		case database.Inserted:
			report.Inserted++
		case database.AlreadyExists:
			report.AlreadyKnown++
		}
	}

	slog.Debug("Symbol processed",
		"symbol", symbol,
		"fetched", report.Fetched,
		"new", report.Inserted,
		"duplicates", report.AlreadyKnown,
		"skipped", report.Skipped)

	return report
}

// resolveDate picks the headline's calendar date. Feed items carry a
// full timestamp; page items carry partial date text; an item with
// neither is same-day news.
func (r *Runner) resolveDate(raw headline.RawHeadline, today time.Time) (time.Time, error) {
	if raw.Published != nil {
		p := raw.Published
		return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if raw.DateText == "" {
		return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return r.resolver.Resolve(raw.DateText, today)
}

// isSymbolError reports whether an error is confined to one symbol.
func isSymbolError(err error) bool {
	var fetchErr *source.FetchError
	return errors.As(err, &fetchErr)
}

func firstFatal(reports []SymbolReport, fallback error) error {
	for _, report := range reports {
		if report.Err != nil && !isSymbolError(report.Err) {
			return report.Err
		}
	}
	return fallback
}
