package config

// Date formats for date and time columns.
const (
	DateFormatLocale = "locale"
	DateFormatISO    = "iso"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DefaultFlushBytes is the output buffer size after which the JSON writer
// flushes to the output file.
const DefaultFlushBytes = 64 * 1024

// Config holds the effective settings of a run.
type Config struct {
	// Debug enables diagnostic output: debug logs, unsupported column
	// warnings and full error chains.
	Debug bool

	// LogFormat is "text" or "json".
	LogFormat string

	// Locale selects the date and time patterns. Empty means the locale of
	// the environment (LC_ALL, LC_TIME, LANG).
	Locale string

	// DateFormat is "locale" or "iso".
	DateFormat string

	// ContinueOnError runs the remaining jobs after a job fails.
	ContinueOnError bool

	// Pretty is the indent width of the JSON output; 0 writes compact JSON.
	Pretty int

	// DotEnv lists dotenv files consulted when expanding ${VAR} in urls.
	// Relative paths are resolved against the directory of the job file.
	DotEnv []string

	// FlushBytes is the buffered output size that triggers a flush.
	FlushBytes int

	// ConfigFileUsed is the config file that was read, if any.
	ConfigFileUsed string

	// Warnings are problems found while loading the configuration.
	Warnings []string
}
