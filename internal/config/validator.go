package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "dedup.backend")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidDedupBackends returns the list of valid dedup backends
func ValidDedupBackends() []string {
	return []string{DedupMemory, DedupRedis, DedupNone}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	if c.VerificationToken == "" {
		add("verification_token", "", "is required")
	}
	if c.TemplatePath == "" {
		add("template_path", "", "is required")
	}
	if c.Server.Addr == "" {
		add("server.addr", "", "is required")
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		add("log.level", c.Log.Level, fmt.Sprintf("must be one of %v", ValidLogLevels()))
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Log.Format)) {
		add("log.format", c.Log.Format, fmt.Sprintf("must be one of %v", ValidLogFormats()))
	}

	if c.Dispatch.Timeout < 0 {
		add("dispatch.timeout", c.Dispatch.Timeout, "must not be negative")
	}

	if !slices.Contains(ValidDedupBackends(), c.Dedup.Backend) {
		add("dedup.backend", c.Dedup.Backend, fmt.Sprintf("must be one of %v", ValidDedupBackends()))
	}
	if c.Dedup.Backend != DedupNone && c.Dedup.TTL <= 0 {
		add("dedup.ttl", c.Dedup.TTL, "must be positive")
	}
	if c.Dedup.Backend == DedupRedis && c.Redis.Addr == "" {
		add("redis.addr", "", "is required when dedup.backend is redis")
	}
	if c.Redis.DB < 0 {
		add("redis.db", c.Redis.DB, "must not be negative")
	}

	seen := make(map[string]bool)
	for i, team := range c.InstalledTeams() {
		field := fmt.Sprintf("teams[%d]", i)
		if team.Key() == "" {
			add(field+".id", "", "is required")
			continue
		}
		if team.BotToken == "" {
			add(field+".bot_token", "", "is required")
		}
		if seen[team.Key()] {
			add(field+".id", team.Key(), "is duplicated")
		}
		seen[team.Key()] = true
	}
	return errs
}
