package headline

import (
	"errors"
	"testing"
	"time"
)

func TestResolveSameYear(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	resolved, err := resolver.Resolve("Fri, Mar 01", today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := time.Date(2013, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !resolved.Equal(want) {
		t.Errorf("Expected %s, got %s", want.Format("2006-01-02"), resolved.Format("2006-01-02"))
	}
}

func TestResolvePreviousYearRollover(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.January, 15, 0, 0, 0, 0, time.UTC)

	resolved, err := resolver.Resolve("Thu, Dec 20", today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := time.Date(2012, time.December, 20, 0, 0, 0, 0, time.UTC)
	if !resolved.Equal(want) {
		t.Errorf("Expected %s, got %s", want.Format("2006-01-02"), resolved.Format("2006-01-02"))
	}
}

func TestResolveYearBoundary(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		name     string
		today    time.Time
		dateText string
		want     time.Time
	}{
		{
			name:     "same month resolves to current year",
			today:    time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC),
			dateText: "Mon, Mar 04",
			want:     time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "earlier month resolves to current year",
			today:    time.Date(2013, time.June, 1, 0, 0, 0, 0, time.UTC),
			dateText: "Tue, Jan 15",
			want:     time.Date(2013, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "later month resolves to previous year",
			today:    time.Date(2013, time.June, 1, 0, 0, 0, 0, time.UTC),
			dateText: "Wed, Jul 18",
			want:     time.Date(2012, time.July, 18, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := resolver.Resolve(tt.dateText, tt.today)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !resolved.Equal(tt.want) {
				t.Errorf("Expected %s, got %s", tt.want.Format("2006-01-02"), resolved.Format("2006-01-02"))
			}
		})
	}
}

func TestResolveTimeOfDayMeansToday(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.March, 4, 16, 45, 12, 0, time.UTC)

	for _, text := range []string{"10:02AM", "3:15 PM", "(11:59AM)"} {
		resolved, err := resolver.Resolve(text, today)
		if err != nil {
			t.Fatalf("Expected no error for %q, got: %v", text, err)
		}
		want := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)
		if !resolved.Equal(want) {
			t.Errorf("Expected today (%s) for %q, got %s", want.Format("2006-01-02"), text, resolved.Format("2006-01-02"))
		}
	}
}

func TestResolveStripsParentheses(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	resolved, err := resolver.Resolve("(Fri, Mar 01)", today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if resolved.Day() != 1 || resolved.Month() != time.March {
		t.Errorf("Expected Mar 1, got %s", resolved.Format("2006-01-02"))
	}
}

func TestResolveParseErrors(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{"", "yesterday", "Mar 01", "Fri, Xyz 01", "Friday, March 1"} {
		_, err := resolver.Resolve(text, today)
		if err == nil {
			t.Errorf("Expected error for %q, got none", text)
			continue
		}
		var parseErr *DateParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("Expected DateParseError for %q, got: %v", text, err)
		}
	}
}

func TestResolveLeapDayIntoNonLeapYear(t *testing.T) {
	resolver := NewResolver()
	// Feb 29 exists in 2012; resolved against a 2013 reference date in
	// March it lands in 2013, which has no Feb 29.
	today := time.Date(2013, time.March, 4, 0, 0, 0, 0, time.UTC)

	_, err := resolver.Resolve("Wed, Feb 29", today)
	if err == nil {
		t.Fatal("Expected error for Feb 29 in a non-leap year, got none")
	}

	var calErr *InvalidCalendarDateError
	if !errors.As(err, &calErr) {
		t.Fatalf("Expected InvalidCalendarDateError, got: %v", err)
	}
	if calErr.Year != 2013 || calErr.Month != time.February || calErr.Day != 29 {
		t.Errorf("Expected 2013 Feb 29 in error, got: %v", calErr)
	}
}

func TestResolveLeapDayIntoLeapYear(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2012, time.March, 4, 0, 0, 0, 0, time.UTC)

	resolved, err := resolver.Resolve("Wed, Feb 29", today)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := time.Date(2012, time.February, 29, 0, 0, 0, 0, time.UTC)
	if !resolved.Equal(want) {
		t.Errorf("Expected %s, got %s", want.Format("2006-01-02"), resolved.Format("2006-01-02"))
	}
}

func TestResolveInvalidDayOfMonth(t *testing.T) {
	resolver := NewResolver()
	today := time.Date(2013, time.June, 1, 0, 0, 0, 0, time.UTC)

	_, err := resolver.Resolve("Mon, Apr 31", today)
	var calErr *InvalidCalendarDateError
	if !errors.As(err, &calErr) {
		t.Fatalf("Expected InvalidCalendarDateError for Apr 31, got: %v", err)
	}
}
