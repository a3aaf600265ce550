package config

// Definition holds the configuration as read from the config file,
// environment variables and command-line flags.
type Definition struct {
	Debug           bool     `mapstructure:"debug"`
	LogFormat       string   `mapstructure:"log_format"`
	Locale          string   `mapstructure:"locale"`
	DateFormat      string   `mapstructure:"date_format"`
	ContinueOnError bool     `mapstructure:"continue_on_error"`
	Pretty          int      `mapstructure:"pretty"`
	DotEnv          []string `mapstructure:"dotenv"`
	FlushBytes      int      `mapstructure:"flush_bytes"`
}
