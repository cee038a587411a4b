package quote

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brannerchinese/stockscrape/app/database"
)

// DefaultBaseURL is the CSV quote endpoint.
const DefaultBaseURL = "http://finance.yahoo.com/d/quotes.csv"

// statFields selects symbol, last trade date, last trade, change,
// dividend/share, dividend pay date and ex-dividend date.
const statFields = "sd1l1c1dr1q"

// Client fetches price snapshots for a batch of symbols in a single
// CSV request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Lookup fetches one quote per symbol. All symbols travel in one
// request, joined with plus signs. Rows come back in request order.
func (c *Client) Lookup(ctx context.Context, symbols []string) ([]database.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	quoteURL := fmt.Sprintf("%s?s=%s&f=%s", c.baseURL, url.QueryEscape(strings.Join(symbols, "+")), statFields)

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", quoteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return parseQuotes(resp.Body)
}

func parseQuotes(r io.Reader) ([]database.Quote, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	var quotes []database.Quote
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse quote CSV: %w", err)
		}

		quote := database.Quote{
			Ticker:    row[0],
			TradeDate: row[1],
			LastTrade: row[2],
			Change:    row[3],
			Dividend:  row[4],
			PayDate:   row[5],
			ExDivDate: row[6],
		}
		quote.PctChange = PercentChange(quote.LastTrade, quote.Change)
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

// PercentChange derives the day's percent change from the last trade
// and the absolute change. Unquoted symbols pass "N/A" through. Gains
// get a "+" prefix; a flat day is a bare "0".
func PercentChange(lastTrade, change string) string {
	if lastTrade == "N/A" || change == "N/A" {
		return "N/A"
	}

	last, err := strconv.ParseFloat(lastTrade, 64)
	if err != nil {
		return "N/A"
	}
	chg, err := strconv.ParseFloat(change, 64)
	if err != nil {
		return "N/A"
	}

	previous := last - chg
	if previous == 0 {
		return "N/A"
	}

	pct := fmt.Sprintf("%.2f%%", chg*100/previous)
	switch {
	case strings.HasPrefix(pct, "-"):
		return pct
	case pct == "0.00%":
		return "0"
	default:
		return "+" + pct
	}
}
