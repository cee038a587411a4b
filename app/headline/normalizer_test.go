package headline

import (
	"errors"
	"testing"
)

func TestEscapeTextOrdering(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html entity ampersand", "Johnson &amp; Johnson", `Johnson \& Johnson`},
		{"literal ampersand", "AT&T earnings", `AT\&T earnings`},
		{"entity not double escaped", "A &amp; B & C", `A \& B \& C`},
		{"gt lt entities", "&gt;5% &lt;10%", `>5\% <10\%`},
		{"dollar and hash", "$5 target #1 pick", `\$5 target \#1 pick`},
		{"opening double quote", `he said "buy now"`, "he said ``buy now''"},
		{"opening single quote", "analysts 'bullish' call", "analysts `bullish' call"},
		{"non-breaking space", "Reuters News", "Reuters News"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeText(tt.in)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizeStripsTrackingPrefix(t *testing.T) {
	normalizer := NewNormalizer()

	rec, err := normalizer.Normalize("ACME", RawHeadline{
		Title:  "ACME beats estimates",
		Link:   "http://tracker.example.com/click*http://news.example.com/story",
		Source: "Reuters",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.URL != "http://news.example.com/story" {
		t.Errorf("Expected tracking prefix stripped, got %q", rec.URL)
	}
}

func TestNormalizeTrackingPrefixLongestMatch(t *testing.T) {
	normalizer := NewNormalizer()

	// Two asterisks: the prefix runs through the final one.
	rec, err := normalizer.Normalize("ACME", RawHeadline{
		Title:  "X",
		Link:   "http://a*http://b*http://real.example.com",
		Source: "Reuters",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.URL != "http://real.example.com" {
		t.Errorf("Expected longest prefix match, got %q", rec.URL)
	}
}

func TestNormalizeCleansSource(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"cite tags removed", "<cite>Reuters</cite>", "Reuters"},
		{"leading at removed", "at MarketWatch", "MarketWatch"},
		{"cite tags and at", "<cite>at Barron's</cite>", "Barron's"},
		{"plain source untouched", "Bloomberg", "Bloomberg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := normalizer.Normalize("ACME", RawHeadline{
				Title:  "X",
				Link:   "http://example.com",
				Source: tt.source,
			})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if rec.Source != tt.want {
				t.Errorf("Expected source %q, got %q", tt.want, rec.Source)
			}
		})
	}
}

func TestNormalizeEscapesTitleAndSource(t *testing.T) {
	normalizer := NewNormalizer()

	rec, err := normalizer.Normalize("T", RawHeadline{
		Title:  "AT&T up 5%",
		Link:   "http://example.com",
		Source: "Dow Jones &amp; Company",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.Headline != `AT\&T up 5\%` {
		t.Errorf("Expected escaped headline, got %q", rec.Headline)
	}
	if rec.Source != `Dow Jones \& Company` {
		t.Errorf("Expected escaped source, got %q", rec.Source)
	}
}

func TestNormalizeRejectsNonHeadlines(t *testing.T) {
	normalizer := NewNormalizer()

	tests := []struct {
		name string
		raw  RawHeadline
	}{
		{"missing title", RawHeadline{Link: "http://example.com", Source: "Reuters"}},
		{"missing source", RawHeadline{Title: "X", Link: "http://example.com"}},
		{"literal None source", RawHeadline{Title: "X", Link: "http://example.com", Source: "None"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizer.Normalize("ACME", tt.raw)
			if err == nil {
				t.Fatal("Expected error, got none")
			}
			var normErr *NormalizationError
			if !errors.As(err, &normErr) {
				t.Errorf("Expected NormalizationError, got: %v", err)
			}
		})
	}
}

func TestNormalizeKeepsSymbol(t *testing.T) {
	normalizer := NewNormalizer()

	rec, err := normalizer.Normalize("ACME", RawHeadline{
		Title:  "Quarterly results",
		Link:   "http://example.com",
		Source: "Reuters",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.Symbol != "ACME" {
		t.Errorf("Expected symbol 'ACME', got %q", rec.Symbol)
	}
	if !rec.Date.IsZero() || !rec.LookupDate.IsZero() {
		t.Error("Expected dates to be left unset by normalization")
	}
}
