package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./hl.db" description:"Path to the SQLite database file"`

	// Ingestion configuration
	WatchlistFile string `long:"watchlist" env:"WATCHLIST_FILE" default:"./stock_list.txt" description:"Symbol list file (.txt, one per line, or .yml)"`
	SourceKind    string `long:"source" env:"HEADLINE_SOURCE" default:"html" choice:"html" choice:"rss" description:"Headline source to fetch from"`
	WorkerCount   int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of workers fetching symbols concurrently"`
	FetchTimeout  int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-symbol fetch timeout in seconds"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"stockscrape/1.0" description:"User agent string for HTTP requests"`
	ReferenceDate string `long:"date" env:"REFERENCE_DATE" description:"Reference date for the pass in YYYY-MM-DD (default: today)"`

	// Digest configuration
	LookbackDays int    `long:"lookback-days" env:"LOOKBACK_DAYS" default:"7" description:"Days of stored history a digest render includes"`
	OutputFile   string `long:"output" env:"OUTPUT_FILE" default:"./output/stock_report.tex" description:"Digest output path"`
	TemplateDir  string `long:"template-dir" env:"TEMPLATE_DIR" description:"Directory with file_start.tex/file_end.tex overriding the embedded templates"`

	// Server configuration
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	APIAccessKey   string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the ingest trigger endpoint (optional)"`
	IngestInterval int    `long:"ingest-interval" env:"INGEST_INTERVAL" default:"3600" description:"Seconds between ingestion passes in serve mode"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		Command string `positional-arg-name:"command" description:"ingest (default), render, or serve"`
	} `positional-args:"yes"`
}

var globalCfg *Cfg

// Load parses command-line flags and environment variables. It returns
// the parsed configuration together with the requested command; a nil
// configuration with a nil error means help was shown.
func Load() (*Cfg, string, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, "", nil
			}
		}
		return nil, "", fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:         raw.DBPath,
		WatchlistFile:  raw.WatchlistFile,
		SourceKind:     raw.SourceKind,
		WorkerCount:    raw.WorkerCount,
		FetchTimeout:   raw.FetchTimeout,
		UserAgent:      raw.UserAgent,
		ReferenceDate:  raw.ReferenceDate,
		LookbackDays:   raw.LookbackDays,
		OutputFile:     raw.OutputFile,
		TemplateDir:    raw.TemplateDir,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		IngestInterval: raw.IngestInterval,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	command := cmp.Or(raw.Args.Command, "ingest")
	switch command {
	case "ingest", "render", "serve":
	default:
		return nil, "", fmt.Errorf("unknown command %q (expected ingest, render, or serve)", command)
	}

	if raw.ReferenceDate != "" {
		if _, err := time.Parse("2006-01-02", raw.ReferenceDate); err != nil {
			return nil, "", fmt.Errorf("invalid reference date %q: %w", raw.ReferenceDate, err)
		}
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, command, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
