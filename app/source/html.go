package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brannerchinese/stockscrape/app/headline"
)

// DefaultHTMLBaseURL is the per-symbol headline page.
const DefaultHTMLBaseURL = "http://finance.yahoo.com/q/h"

var _ Source = (*HTMLSource)(nil)

// HTMLSource scrapes headline tuples out of the per-symbol headline
// page. Each headline is a list item holding an anchor (title, link),
// a cite (publisher) and a span (partial date or time of day). The
// extracted fields are raw: markup remnants and tracking prefixes are
// the normalizer's problem.
type HTMLSource struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
}

func NewHTMLSource(httpClient *http.Client, baseURL, userAgent string, timeout time.Duration) *HTMLSource {
	if baseURL == "" {
		baseURL = DefaultHTMLBaseURL
	}
	return &HTMLSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (s *HTMLSource) Fetch(ctx context.Context, symbol string, today time.Time) ([]headline.RawHeadline, error) {
	pageURL := fmt.Sprintf("%s?s=%s&t=%s", s.baseURL, url.QueryEscape(symbol), today.Format("2006-01-02"))

	data, err := fetchURL(ctx, s.httpClient, pageURL, s.userAgent, s.timeout)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: err}
	}

	raws, err := parseHeadlinePage(data)
	if err != nil {
		return nil, &FetchError{Symbol: symbol, Err: err}
	}

	return raws, nil
}

func parseHeadlinePage(data []byte) ([]headline.RawHeadline, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var raws []headline.RawHeadline
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		anchor := li.Find("a").First()
		if anchor.Length() == 0 {
			// Not a headline item.
			return
		}

		raw := headline.RawHeadline{
			Title: anchor.Text(),
			Link:  anchor.AttrOr("href", ""),
		}

		// The cite holds the publisher; the span inside it holds the
		// date and is stripped here so only the date-free publisher
		// markup travels onward.
		if cite := li.Find("cite").First(); cite.Length() > 0 {
			clone := cite.Clone()
			clone.Find("span").Remove()
			if html, err := goquery.OuterHtml(clone); err == nil {
				raw.Source = html
			}
		}

		if span := li.Find("span").First(); span.Length() > 0 {
			raw.DateText = span.Text()
		}

		raws = append(raws, raw)
	})

	return raws, nil
}
