package headline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateParseError reports date text that does not match the expected
// "<Wkday>, <Mon> <Day>" grammar.
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unrecognized headline date %q", e.Text)
}

// InvalidCalendarDateError reports a month/day pair that does not exist
// in the resolved year, e.g. Feb 29 resolved into a non-leap year.
type InvalidCalendarDateError struct {
	Year  int
	Month time.Month
	Day   int
}

func (e *InvalidCalendarDateError) Error() string {
	return fmt.Sprintf("no such date: %d %s %d", e.Year, e.Month, e.Day)
}

var partialDatePattern = regexp.MustCompile(`^[A-Za-z]{3}, ([A-Za-z]{3}) (\d{1,2})$`)

var monthsByAbbr = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// Resolver turns year-less headline dates into calendar dates relative
// to a reference date.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve parses dateText against today. Text containing an AM/PM
// marker carries no date at all (same-day news) and resolves to today.
// Otherwise the text must match "<Wkday>, <Mon> <Day>"; the year is
// today's, unless the month is later than today's month, in which case
// the headline is read as belonging to the previous year. The source
// is assumed to publish nothing older than ~11 months, so the rollover
// is inherently ambiguous beyond that; this mirrors the source's own
// convention rather than tightening it.
func (r *Resolver) Resolve(dateText string, today time.Time) (time.Time, error) {
	s := strings.NewReplacer("(", "", ")", "").Replace(dateText)
	s = strings.TrimSpace(s)

	if strings.Contains(s, "AM") || strings.Contains(s, "PM") {
		return dateOnly(today), nil
	}

	m := partialDatePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, &DateParseError{Text: dateText}
	}

	month, ok := monthsByAbbr[m[1]]
	if !ok {
		return time.Time{}, &DateParseError{Text: dateText}
	}

	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, &DateParseError{Text: dateText}
	}

	year := today.Year()
	if month > today.Month() {
		year--
	}

	// time.Date normalizes out-of-range days (Feb 29 in a non-leap
	// year becomes Mar 1); a shifted result means the date does not
	// exist in the resolved year.
	resolved := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if resolved.Month() != month || resolved.Day() != day {
		return time.Time{}, &InvalidCalendarDateError{Year: year, Month: month, Day: day}
	}

	return resolved, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
