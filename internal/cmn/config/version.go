package config

var (
	// Version is the application version, set at build time via ldflags
	Version = "dev"
	// AppName is the human-readable application name
	AppName = "sqljson"
	// AppSlug is the lowercase application identifier used in paths and environment variables
	AppSlug = "sqljson"
)
