package events

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// DefaultRedactPatterns match envelope keys whose values never reach the logs.
var DefaultRedactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^token$`),
	regexp.MustCompile(`(?i)secret|password|authed_users`),
}

// Redact returns body as a string with the values of keys matching patterns
// masked, at any depth. Invalid JSON is summarized instead of echoed.
func Redact(body []byte, patterns []*regexp.Regexp) string {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Sprintf("<%d bytes, not json>", len(body))
	}
	mask(v, patterns)

	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%d bytes>", len(body))
	}
	return string(out)
}

func mask(v any, patterns []*regexp.Regexp) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if matchAny(k, patterns) {
				t[k] = "***"
				continue
			}
			mask(child, patterns)
		}
	case []any:
		for _, child := range t {
			mask(child, patterns)
		}
	}
}

func matchAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
