package ingest

// SymbolReport is the outcome of one symbol's pass.
type SymbolReport struct {
	Symbol       string
	Fetched      int
	Inserted     int
	AlreadyKnown int
	Skipped      int
	Err          error
}

// Summary aggregates the symbol reports of one pass.
type Summary struct {
	Symbols      int
	Fetched      int
	Inserted     int
	AlreadyKnown int
	Skipped      int
	Failed       int
	Reports      []SymbolReport
}

func summarize(reports []SymbolReport) Summary {
	summary := Summary{Symbols: len(reports), Reports: reports}
	for _, report := range reports {
		summary.Fetched += report.Fetched
		summary.Inserted += report.Inserted
		summary.AlreadyKnown += report.AlreadyKnown
		summary.Skipped += report.Skipped
		if report.Err != nil {
			summary.Failed++
		}
	}
	return summary
}
