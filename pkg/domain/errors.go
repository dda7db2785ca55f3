package domain

import "errors"

// ErrInvalidToken is returned when an inbound request does not carry the shared verification token.
var ErrInvalidToken = errors.New("invalid verification token")

// ErrUnknownEvent is returned when an event kind has no registered handler.
var ErrUnknownEvent = errors.New("unknown event kind")

// ErrMalformedEvent is returned when a recognized event is missing required fields.
var ErrMalformedEvent = errors.New("malformed event payload")

// ErrTeamNotFound is returned when a team ID cannot be found in the store.
var ErrTeamNotFound = errors.New("team not found")

// ErrUserNotFound is returned when a user ID cannot be found within a team.
var ErrUserNotFound = errors.New("user not found")

// ErrTeamNotInstalled is returned when a team has no platform client to send through.
var ErrTeamNotInstalled = errors.New("team has no platform client installed")

// ErrInvalidTemplate is returned when the tutorial definition is missing required structure.
var ErrInvalidTemplate = errors.New("invalid tutorial template")
