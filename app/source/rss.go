package source

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/brannerchinese/stockscrape/app/headline"
)

// DefaultRSSBaseURL is the per-symbol headline feed.
const DefaultRSSBaseURL = "http://finance.yahoo.com/rss/headline"

var _ Source = (*RSSSource)(nil)

// RSSSource reads headline tuples from the per-symbol RSS feed. Feed
// items carry full publication timestamps, so records from this source
// skip partial-date resolution.
type RSSSource struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	parser     *gofeed.Parser
}

func NewRSSSource(httpClient *http.Client, baseURL, userAgent string, timeout time.Duration) *RSSSource {
	if baseURL == "" {
		baseURL = DefaultRSSBaseURL
	}
	return &RSSSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
		parser:     gofeed.NewParser(),
	}
}

func (s *RSSSource) Fetch(ctx context.Context, symbol string, today time.Time) ([]headline.RawHeadline, error) {
	feedURL := fmt.Sprintf("%s?s=%s", s.baseURL, url.QueryEscape(symbol))

	data, err := fetchURL(ctx, s.httpClient, feedURL, s.userAgent, s.timeout)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: err}
	}

	feed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	publisher := cmp.Or(feed.Title, "Yahoo Finance")

	raws := make([]headline.RawHeadline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		raw := headline.RawHeadline{
			Title:  item.Title,
			Link:   item.Link,
			Source: publisher,
		}
		if item.PublishedParsed != nil {
			published := item.PublishedParsed.UTC()
			raw.Published = &published
		}
		raws = append(raws, raw)
	}

	return raws, nil
}
