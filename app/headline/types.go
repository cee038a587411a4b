package headline

import (
	"time"
)

// RawHeadline is one headline tuple as produced by a source, before
// normalization and date resolution.
type RawHeadline struct {
	Title    string
	Link     string
	Source   string // may carry markup remnants from the page
	DateText string // "<Wkday>, <Mon> <Day>", or a time-of-day string for same-day news

	// Published is set when the source supplies a full timestamp
	// (e.g. RSS), in which case DateText is ignored.
	Published *time.Time
}

// Record is a normalized headline ready for storage. Symbol and
// Headline together form the dedup key.
type Record struct {
	Symbol     string
	Headline   string
	URL        string
	Source     string
	Date       time.Time // date the headline concerns
	LookupDate time.Time // date the ingestion pass ran
}
