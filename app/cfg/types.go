package cfg

type Cfg struct {
	// Storage
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Fetching
	UserAgent    string
	FetchTimeout int // seconds

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// EffectiveLogLevel lets the debug switch override the configured level.
func (c *Cfg) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
