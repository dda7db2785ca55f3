package events

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/onboard/pkg/domain"
)

// MaxIDSize bounds team, user and channel IDs and message timestamps.
const MaxIDSize = 255

// checkIDs rejects identifiers that are oversized, not UTF-8, or contain
// control characters. They end up in store keys and log lines, so they are
// rejected rather than cleaned.
func checkIDs(kind string, ids map[string]string) error {
	for field, id := range ids {
		if len(id) > MaxIDSize {
			return fmt.Errorf("%w: %s %s exceeds %d bytes", domain.ErrMalformedEvent, kind, field, MaxIDSize)
		}
		if !utf8.ValidString(id) {
			return fmt.Errorf("%w: %s %s is not valid UTF-8", domain.ErrMalformedEvent, kind, field)
		}
		for _, r := range id {
			if unicode.IsControl(r) {
				return fmt.Errorf("%w: %s %s contains control characters", domain.ErrMalformedEvent, kind, field)
			}
		}
	}
	return nil
}
