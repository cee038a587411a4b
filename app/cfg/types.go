package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Ingestion configuration
	WatchlistFile string
	SourceKind    string
	WorkerCount   int
	FetchTimeout  int
	UserAgent     string
	ReferenceDate string

	// Digest configuration
	LookbackDays int
	OutputFile   string
	TemplateDir  string

	// Server configuration
	Port           string
	APIAccessKey   string
	IngestInterval int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
