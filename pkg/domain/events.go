package domain

import (
	"context"
	"time"
)

// EnvelopeType distinguishes the handshake from regular event delivery.
type EnvelopeType string

const (
	EnvelopeURLVerification EnvelopeType = "url_verification"
	EnvelopeEventCallback   EnvelopeType = "event_callback"
)

// Envelope is the top-level inbound payload.
type Envelope struct {
	Token     string
	Type      EnvelopeType
	Challenge string // url_verification only
	TeamID    string // event_callback only
	EventID   string // optional, used to drop redeliveries
	Event     Event  // event_callback only

	// Raw is the original request body, kept for diagnostics.
	Raw []byte
}

// EventKind is the inner event type of a callback.
type EventKind string

const (
	KindTeamJoin      EventKind = "team_join"
	KindReactionAdded EventKind = "reaction_added"
	KindPinAdded      EventKind = "pin_added"
	KindMessage       EventKind = "message"
)

// Event is the tagged union over the recognized callback kinds.
// Each variant carries the fields its handler needs, already extracted.
type Event interface {
	Kind() EventKind
	Actor() string
}

// TeamJoin is delivered when a user joins the team.
type TeamJoin struct {
	UserID string
}

// ReactionAdded is delivered when a user reacts to a message.
type ReactionAdded struct {
	UserID  string
	Channel string
	TS      string
}

// PinAdded is delivered when a user pins a message.
// TS is the pinned message's timestamp, not the pin event's.
type PinAdded struct {
	UserID  string
	Channel string
	TS      string
}

// Message is delivered for messages posted in channels the bot can see.
type Message struct {
	UserID      string
	Channel     string
	Attachments []MessageAttachment
}

// MessageAttachment is the part of an inbound attachment relevant to share detection.
type MessageAttachment struct {
	IsShare bool
	TS      string
}

// UnknownEvent is any callback kind without a handler.
type UnknownEvent struct {
	Type string
}

func (TeamJoin) Kind() EventKind       { return KindTeamJoin }
func (ReactionAdded) Kind() EventKind  { return KindReactionAdded }
func (PinAdded) Kind() EventKind       { return KindPinAdded }
func (Message) Kind() EventKind        { return KindMessage }
func (e UnknownEvent) Kind() EventKind { return EventKind(e.Type) }

func (e TeamJoin) Actor() string      { return e.UserID }
func (e ReactionAdded) Actor() string { return e.UserID }
func (e PinAdded) Actor() string      { return e.UserID }
func (e Message) Actor() string       { return e.UserID }
func (UnknownEvent) Actor() string    { return "" }

// SharedAttachment returns the first attachment if it is a shared message.
func (m Message) SharedAttachment() (MessageAttachment, bool) {
	if len(m.Attachments) == 0 || !m.Attachments[0].IsShare {
		return MessageAttachment{}, false
	}
	return m.Attachments[0], true
}

// ObservedEvent is passed to lifecycle hooks.
type ObservedEvent struct {
	Timestamp time.Time
	TeamID    string
	UserID    string
	Kind      EventKind
}

// StepEvent reports a completed tutorial step.
type StepEvent struct {
	ObservedEvent
	Step StepName
}

// SendEvent reports an outbound platform call.
type SendEvent struct {
	ObservedEvent
	Channel  string
	Update   bool
	Duration time.Duration
	Err      error
}

// HandledEvent reports the end of an asynchronous handler run.
type HandledEvent struct {
	ObservedEvent
	Duration time.Duration
	Err      error
}

// LifecycleHooks defines callbacks for observability. Every field is optional.
type LifecycleHooks struct {
	OnEvent         func(context.Context, *ObservedEvent)
	OnReject        func(ctx context.Context, reason string)
	OnStepCompleted func(context.Context, *StepEvent)
	OnSend          func(context.Context, *SendEvent)
	OnHandled       func(context.Context, *HandledEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnEvent:         chain(h.OnEvent, other.OnEvent),
		OnReject:        chain(h.OnReject, other.OnReject),
		OnStepCompleted: chain(h.OnStepCompleted, other.OnStepCompleted),
		OnSend:          chain(h.OnSend, other.OnSend),
		OnHandled:       chain(h.OnHandled, other.OnHandled),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
