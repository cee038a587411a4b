package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brannerchinese/stockscrape/app/api"
	"github.com/brannerchinese/stockscrape/app/cfg"
	"github.com/brannerchinese/stockscrape/app/database"
	"github.com/brannerchinese/stockscrape/app/digest"
	"github.com/brannerchinese/stockscrape/app/ingest"
	"github.com/brannerchinese/stockscrape/app/quote"
	"github.com/brannerchinese/stockscrape/app/source"
	"github.com/brannerchinese/stockscrape/app/watchlist"
)

func main() {
	appCfg, command, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown.
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg, command); err != nil {
		slog.Error("Fatal error", "command", command, "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg, command string) error {
	slog.Info("Starting stockscrape", "version", appCfg.Version, "command", command)

	symbols, err := watchlist.Load(appCfg.WatchlistFile)
	if err != nil {
		return err
	}
	slog.Info("Watchlist loaded", "file", appCfg.WatchlistFile, "symbols", len(symbols))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	headlineRepo := database.NewHeadlineRepository(db)
	quoteRepo := database.NewQuoteRepository(db)

	httpClient := &http.Client{}
	fetchTimeout := time.Duration(appCfg.FetchTimeout) * time.Second

	var src source.Source
	switch appCfg.SourceKind {
	case "rss":
		src = source.NewRSSSource(httpClient, "", appCfg.UserAgent, fetchTimeout)
	default:
		src = source.NewHTMLSource(httpClient, "", appCfg.UserAgent, fetchTimeout)
	}

	runner := ingest.NewRunner(src, headlineRepo, appCfg.WorkerCount)
	quoteClient := quote.NewClient(httpClient, "", appCfg.UserAgent, fetchTimeout)
	renderer := digest.NewRenderer(headlineRepo, quoteRepo, appCfg.TemplateDir, appCfg.LookbackDays)

	today, err := referenceDate(appCfg.ReferenceDate)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch command {
	case "ingest":
		if _, err := runner.Run(ctx, symbols, today); err != nil {
			return err
		}
		refreshQuotes(ctx, quoteClient, quoteRepo, symbols)
		return nil

	case "render":
		refreshQuotes(ctx, quoteClient, quoteRepo, symbols)
		if err := ensureOutputDir(appCfg.OutputFile); err != nil {
			return err
		}
		if err := renderer.RenderToFile(ctx, symbols, today, appCfg.OutputFile); err != nil {
			return err
		}
		slog.Info("Digest written", "output", appCfg.OutputFile, "symbols", len(symbols))
		return nil

	case "serve":
		return serve(appCfg, symbols, headlineRepo, quoteRepo, runner, quoteClient)

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// referenceDate returns the pass date: an explicit override, or today.
func referenceDate(override string) (time.Time, error) {
	if override != "" {
		parsed, err := time.Parse(database.DateLayout, override)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid reference date %q: %w", override, err)
		}
		return parsed, nil
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}

// refreshQuotes updates the stored price snapshot. Quote data is
// decoration for the digest, so failures are logged and tolerated.
func refreshQuotes(ctx context.Context, client *quote.Client, repo database.QuoteRepository, symbols []string) {
	quotes, err := client.Lookup(ctx, symbols)
	if err != nil {
		slog.Warn("Quote lookup failed, keeping stored snapshot", "error", err)
		return
	}

	stored := 0
	for _, q := range quotes {
		if err := repo.UpsertQuote(ctx, q); err != nil {
			slog.Warn("Failed to store quote", "symbol", q.Ticker, "error", err)
			continue
		}
		stored++
	}
	slog.Info("Quotes refreshed", "fetched", len(quotes), "stored", stored)
}

func ensureOutputDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

func serve(appCfg *cfg.Cfg, symbols []string, headlineRepo database.HeadlineRepository,
	quoteRepo database.QuoteRepository, runner *ingest.Runner, quoteClient *quote.Client) error {

	handler := api.NewHandler(headlineRepo, quoteRepo, runner, symbols, appCfg.LookbackDays, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	passCtx, cancelPasses := context.WithCancel(context.Background())
	defer cancelPasses()

	// Periodic ingestion: one pass at startup, then on the interval.
	go func() {
		interval := time.Duration(appCfg.IngestInterval) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runPass := func() {
			today, err := referenceDate(appCfg.ReferenceDate)
			if err != nil {
				slog.Error("Invalid reference date", "error", err)
				return
			}
			if _, err := runner.Run(passCtx, symbols, today); err != nil {
				slog.Error("Scheduled ingestion pass failed", "error", err)
				return
			}
			refreshQuotes(passCtx, quoteClient, quoteRepo, symbols)
		}

		runPass()
		for {
			select {
			case <-passCtx.Done():
				return
			case <-ticker.C:
				runPass()
			}
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	cancelPasses()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	slog.Info("Shutdown complete")

	return nil
}
