package onboard

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of onboard.
var Version = strings.TrimSpace(rawVersion)
