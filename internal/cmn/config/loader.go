package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// ConfigLoader reads and merges configuration from the config file,
// environment variables and bound command-line flags.
type ConfigLoader struct {
	v          *viper.Viper
	configFile string
	configDir  string
	warnings   []string
}

// ConfigLoaderOption defines a functional option for configuring a ConfigLoader.
type ConfigLoaderOption func(*ConfigLoader)

// WithConfigFile returns a ConfigLoaderOption that sets the configuration file path.
func WithConfigFile(configFile string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configFile = configFile
	}
}

// WithConfigDir overrides the directory searched for config.yaml when no
// config file is given. It defaults to $XDG_CONFIG_HOME/sqljson.
func WithConfigDir(dir string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configDir = dir
	}
}

// NewConfigLoader creates a ConfigLoader on top of v.
func NewConfigLoader(v *viper.Viper, options ...ConfigLoaderOption) *ConfigLoader {
	loader := &ConfigLoader{v: v}
	for _, opt := range options {
		opt(loader)
	}
	return loader
}

// Load reads the configuration. A missing config.yaml in the config
// directory is not an error; a missing explicit config file is.
func (l *ConfigLoader) Load() (*Config, error) {
	configDir := l.configDir
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, AppSlug)
	}

	l.configureViper(configDir, l.configFile)
	l.bindEnvironmentVariables()
	l.setViperDefaultValues()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var def Definition
	if err := l.v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := l.buildConfig(def)
	cfg.ConfigFileUsed = l.v.ConfigFileUsed()
	return cfg, nil
}

func (l *ConfigLoader) buildConfig(def Definition) *Config {
	cfg := &Config{
		Debug:           def.Debug,
		LogFormat:       strings.ToLower(strings.TrimSpace(def.LogFormat)),
		Locale:          strings.TrimSpace(def.Locale),
		DateFormat:      strings.ToLower(strings.TrimSpace(def.DateFormat)),
		ContinueOnError: def.ContinueOnError,
		Pretty:          def.Pretty,
		FlushBytes:      def.FlushBytes,
	}

	for _, file := range def.DotEnv {
		if file = strings.TrimSpace(file); file != "" {
			cfg.DotEnv = append(cfg.DotEnv, file)
		}
	}

	switch cfg.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		l.warnings = append(l.warnings, fmt.Sprintf("Invalid log_format %q, using %q", def.LogFormat, LogFormatText))
		cfg.LogFormat = LogFormatText
	}

	switch cfg.DateFormat {
	case DateFormatLocale, DateFormatISO:
	default:
		l.warnings = append(l.warnings, fmt.Sprintf("Invalid date_format %q, using %q", def.DateFormat, DateFormatLocale))
		cfg.DateFormat = DateFormatLocale
	}

	if cfg.Pretty < 0 {
		l.warnings = append(l.warnings, fmt.Sprintf("Invalid pretty indent %d, writing compact output", def.Pretty))
		cfg.Pretty = 0
	}

	if cfg.FlushBytes <= 0 {
		l.warnings = append(l.warnings, fmt.Sprintf("Invalid flush_bytes %d, using %d", def.FlushBytes, DefaultFlushBytes))
		cfg.FlushBytes = DefaultFlushBytes
	}

	cfg.Warnings = l.warnings
	return cfg
}

func (l *ConfigLoader) setViperDefaultValues() {
	l.v.SetDefault("debug", false)
	l.v.SetDefault("log_format", LogFormatText)
	l.v.SetDefault("locale", "")
	l.v.SetDefault("date_format", DateFormatLocale)
	l.v.SetDefault("continue_on_error", false)
	l.v.SetDefault("pretty", 0)
	l.v.SetDefault("dotenv", []string{})
	l.v.SetDefault("flush_bytes", DefaultFlushBytes)
}

type envBinding struct {
	key string
	env string
}

var envBindings = []envBinding{
	{key: "debug", env: "DEBUG"},
	{key: "log_format", env: "LOG_FORMAT"},
	{key: "locale", env: "LOCALE"},
	{key: "date_format", env: "DATE_FORMAT"},
	{key: "continue_on_error", env: "CONTINUE_ON_ERROR"},
	{key: "pretty", env: "PRETTY"},
	{key: "dotenv", env: "DOTENV"},
	{key: "flush_bytes", env: "FLUSH_BYTES"},
}

func (l *ConfigLoader) bindEnvironmentVariables() {
	prefix := strings.ToUpper(AppSlug) + "_"
	for _, b := range envBindings {
		_ = l.v.BindEnv(b.key, prefix+b.env)
	}
}

func (l *ConfigLoader) configureViper(configDir, configFile string) {
	if configFile == "" {
		l.v.AddConfigPath(configDir)
		l.v.SetConfigName("config")
	} else {
		l.v.SetConfigFile(configFile)
	}
	l.v.SetConfigType("yaml")
	l.v.SetEnvPrefix(strings.ToUpper(AppSlug))
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	l.v.AutomaticEnv()
}
