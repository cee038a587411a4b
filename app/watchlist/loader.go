package watchlist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one watched symbol in a YAML watchlist.
type Entry struct {
	Symbol  string `yaml:"symbol"`
	Enabled *bool  `yaml:"enabled"`
}

type yamlWatchlist struct {
	Symbols []Entry `yaml:"symbols"`
}

// Load reads the watchlist file at path and returns the enabled symbols
// in file order. A `.yml` or `.yaml` file is parsed as a structured
// watchlist with per-symbol enable flags; anything else is treated as
// plain text, one symbol per line, with blank lines ignored.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return parseYAML(data)
	default:
		return parsePlain(data), nil
	}
}

func parsePlain(data []byte) []string {
	var symbols []string
	for _, line := range strings.Split(string(data), "\n") {
		symbol := strings.TrimSpace(line)
		if symbol == "" {
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols
}

func parseYAML(data []byte) ([]string, error) {
	var list yamlWatchlist
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist YAML: %w", err)
	}

	if err := validate(&list); err != nil {
		return nil, fmt.Errorf("invalid watchlist: %w", err)
	}

	var symbols []string
	for _, entry := range list.Symbols {
		// Symbols are enabled unless the flag says otherwise.
		if entry.Enabled != nil && !*entry.Enabled {
			continue
		}
		symbols = append(symbols, strings.TrimSpace(entry.Symbol))
	}
	return symbols, nil
}

func validate(list *yamlWatchlist) error {
	seen := make(map[string]bool)
	for i, entry := range list.Symbols {
		symbol := strings.TrimSpace(entry.Symbol)
		if symbol == "" {
			return fmt.Errorf("symbol is required at index %d", i)
		}
		if seen[symbol] {
			return fmt.Errorf("duplicate symbol: %s", symbol)
		}
		seen[symbol] = true
	}
	return nil
}
