package config

import "fmt"

func validate(cfg *Config) error {
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must be set")
	}
	switch cfg.App.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level %q is not one of debug/info/warn/error", cfg.App.LogLevel)
	}
	if cfg.Search.MaxResults > 100 {
		return fmt.Errorf("search.max_results %d exceeds the cap of 100", cfg.Search.MaxResults)
	}
	return nil
}
