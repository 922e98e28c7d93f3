package cfg

type Cfg struct {
	// Command to run (build, stats, feed, graph, history, serve, languages)
	Command string

	// Input and output locations
	SourceDir  string
	LocalesDir string
	OutDir     string
	Builder    string
	SiteConfig string
	Metadata   string
	DBPath     string

	// Preview server
	Port            string
	RebuildInterval int
	WorkerCount     int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
