package events_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/onboard/pkg/events"
)

func TestRedact(t *testing.T) {
	body := []byte(`{"token":"s3cret","type":"event_callback","authed_users":["U1"],"event":{"type":"x","items":[{"client_secret":"abc","ok":1}]}}`)

	got := events.Redact(body, events.DefaultRedactPatterns)

	assert.NotContains(t, got, "s3cret")
	assert.NotContains(t, got, "abc")
	assert.NotContains(t, got, "U1")
	assert.Contains(t, got, `"token":"***"`)
	assert.Contains(t, got, `"ok":1`)
	assert.Contains(t, got, `"type":"event_callback"`)
}

func TestRedact_CustomPatternsAndGarbage(t *testing.T) {
	got := events.Redact([]byte(`{"user":"U1","channel":"C1"}`), []*regexp.Regexp{regexp.MustCompile(`^user$`)})
	assert.JSONEq(t, `{"user":"***","channel":"C1"}`, got)

	assert.Equal(t, "<5 bytes, not json>", events.Redact([]byte("nope!"), nil))
}
