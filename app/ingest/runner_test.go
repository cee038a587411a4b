package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brannerchinese/stockscrape/app/database"
	"github.com/brannerchinese/stockscrape/app/headline"
	"github.com/brannerchinese/stockscrape/app/source"
)

type fakeSource struct {
	headlines map[string][]headline.RawHeadline
	failing   map[string]bool
}

func (f *fakeSource) Fetch(ctx context.Context, symbol string, today time.Time) ([]headline.RawHeadline, error) {
	if f.failing[symbol] {
		return nil, &source.FetchError{Symbol: symbol, Err: errors.New("connection refused")}
	}
	return f.headlines[symbol], nil
}

func newTestRepo(t *testing.T) database.HeadlineRepository {
	t.Helper()
	db, err := database.NewConnection("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return database.NewHeadlineRepository(db)
}

func rawHeadline(title, dateText string) headline.RawHeadline {
	return headline.RawHeadline{
		Title:    title,
		Link:     "http://news.example.com/story",
		Source:   "Reuters",
		DateText: dateText,
	}
}

func TestRunnerPassIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	src := &fakeSource{headlines: map[string][]headline.RawHeadline{
		"ACME": {
			rawHeadline("ACME beats estimates", "(Fri, Mar 01)"),
			rawHeadline("ACME announces dividend", "(10:02AM)"),
		},
		"GLOBEX": {
			rawHeadline("GLOBEX misses badly", "(Thu, Dec 20)"),
		},
	}}
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	runner := NewRunner(src, repo, 2)

	summary, err := runner.Run(context.Background(), []string{"ACME", "GLOBEX"}, today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Inserted != 3 {
		t.Errorf("Expected 3 inserted on first pass, got: %d", summary.Inserted)
	}
	if summary.AlreadyKnown != 0 {
		t.Errorf("Expected 0 duplicates on first pass, got: %d", summary.AlreadyKnown)
	}

	summary, err = runner.Run(context.Background(), []string{"ACME", "GLOBEX"}, today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Inserted != 0 {
		t.Errorf("Expected 0 inserted on second pass, got: %d", summary.Inserted)
	}
	if summary.AlreadyKnown != 3 {
		t.Errorf("Expected 3 duplicates on second pass, got: %d", summary.AlreadyKnown)
	}

	count, err := repo.GetHeadlineCount(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 stored headlines, got: %d", count)
	}
}

func TestRunnerResolvesDates(t *testing.T) {
	repo := newTestRepo(t)
	published := time.Date(2013, time.March, 1, 14, 30, 0, 0, time.UTC)
	src := &fakeSource{headlines: map[string][]headline.RawHeadline{
		"ACME": {
			rawHeadline("Dated last year", "(Thu, Dec 20)"),
			rawHeadline("Same-day item", "(10:02AM)"),
			{
				Title:     "Feed item",
				Link:      "http://news.example.com/feed",
				Source:    "Reuters",
				Published: &published,
			},
			rawHeadline("Undated item", ""),
		},
	}}
	today := time.Date(2013, time.January, 15, 0, 0, 0, 0, time.UTC)

	runner := NewRunner(src, repo, 1)

	if _, err := runner.Run(context.Background(), []string{"ACME"}, today); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	from := time.Date(2012, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2013, time.December, 31, 0, 0, 0, 0, time.UTC)
	stored, err := repo.GetByDateRange(context.Background(), "ACME", from, to)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	dates := make(map[string]string)
	for _, h := range stored {
		dates[h.Headline] = h.Date
	}

	want := map[string]string{
		"Dated last year": "2012-12-20",
		"Same-day item":   "2013-01-15",
		"Feed item":       "2013-03-01",
		"Undated item":    "2013-01-15",
	}
	for title, wantDate := range want {
		if dates[title] != wantDate {
			t.Errorf("Expected date %s for %q, got %q", wantDate, title, dates[title])
		}
	}
}

func TestRunnerSkipsBadItemsWithoutAborting(t *testing.T) {
	repo := newTestRepo(t)
	src := &fakeSource{headlines: map[string][]headline.RawHeadline{
		"ACME": {
			rawHeadline("Good headline", "(Fri, Mar 01)"),
			rawHeadline("", "(Fri, Mar 01)"),          // no title
			rawHeadline("Garbled date", "yesterday?"), // unparseable
			{Title: "No publisher", Link: "http://news.example.com/x", Source: "None", DateText: "(Fri, Mar 01)"},
		},
	}}
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	runner := NewRunner(src, repo, 1)

	summary, err := runner.Run(context.Background(), []string{"ACME"}, today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if summary.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got: %d", summary.Inserted)
	}
	if summary.Skipped != 3 {
		t.Errorf("Expected 3 skipped, got: %d", summary.Skipped)
	}
}

func TestRunnerFetchFailureIsIsolated(t *testing.T) {
	repo := newTestRepo(t)
	src := &fakeSource{
		headlines: map[string][]headline.RawHeadline{
			"ACME": {rawHeadline("ACME beats estimates", "(Fri, Mar 01)")},
		},
		failing: map[string]bool{"GLOBEX": true},
	}
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	runner := NewRunner(src, repo, 2)

	summary, err := runner.Run(context.Background(), []string{"GLOBEX", "ACME"}, today)
	if err != nil {
		t.Fatalf("Expected pass to survive a per-symbol fetch failure, got: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("Expected 1 failed symbol, got: %d", summary.Failed)
	}
	if summary.Inserted != 1 {
		t.Errorf("Expected the healthy symbol stored, got: %d inserted", summary.Inserted)
	}
}
