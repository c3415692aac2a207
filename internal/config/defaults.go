package config

// DefaultConfig returns configuration with sensible defaults. These are
// used when no config file exists or when a field is missing from it.
func DefaultConfig() *Config {
	return &Config{
		Git: GitConfig{
			BaseBranch:   "main",
			MaxDiffLines: 500,
		},
		Templates: TemplatesConfig{
			Dir:            "templates",
			SkipUnreadable: false,
		},
		Events: EventsConfig{
			File: "github_events.json",
		},
		Webhook: WebhookConfig{
			Addr: ":8080",
			Path: "/webhook/github",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ValidLogFormats lists the valid values for log format.
var ValidLogFormats = []string{"json", "text"}

// IsValidLogFormat checks if the given log format is valid.
func IsValidLogFormat(format string) bool {
	for _, valid := range ValidLogFormats {
		if format == valid {
			return true
		}
	}
	return false
}
