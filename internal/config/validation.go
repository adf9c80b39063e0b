package config

import (
	"fmt"
	"strings"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found so startup reports them all
// at once.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):", len(v)))
	for i, err := range v {
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks a fully defaulted Config.
func Validate(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		add("server.port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Server.Port))
	}
	if cfg.Session.TTL <= 0 {
		add("session.ttl", "must be positive")
	}
	if cfg.Session.CookieName == "" {
		add("session.cookie_name", "must not be empty")
	}
	if cfg.Session.Secret != "" && len(cfg.Session.Secret) < 16 {
		add("session.secret", "must be at least 16 characters when set")
	}

	switch cfg.Flash.Backend {
	case FlashBackendMemory:
	case FlashBackendRedis:
		if cfg.Redis.Address == "" {
			add("redis.address", "required when flash.backend is redis")
		}
	default:
		add("flash.backend", fmt.Sprintf("unknown backend %q (want memory or redis)", cfg.Flash.Backend))
	}
	if cfg.Flash.TTL <= 0 {
		add("flash.ttl", "must be positive")
	}

	if cfg.Upload.MaxBytes <= 0 {
		add("upload.max_bytes", "must be positive")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", fmt.Sprintf("unknown level %q (want debug, info, warn or error)", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		add("logging.format", fmt.Sprintf("unknown format %q (want json or console)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
