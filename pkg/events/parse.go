package events

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/onboard/pkg/domain"
)

// wireEnvelope mirrors the outer callback payload.
type wireEnvelope struct {
	Token     string          `json:"token"`
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	TeamID    string          `json:"team_id"`
	EventID   string          `json:"event_id"`
	Event     json.RawMessage `json:"event"`
}

// wireEvent is the union of inner event fields across the kinds we handle.
// The "user" field is an object for team_join and a string otherwise.
type wireEvent struct {
	Type        string           `json:"type"`
	User        json.RawMessage  `json:"user"`
	Channel     string           `json:"channel"`
	Item        *wireItem        `json:"item"`
	Attachments []wireAttachment `json:"attachments"`
}

type wireItem struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Message *struct {
		TS string `json:"ts"`
	} `json:"message"`
}

type wireAttachment struct {
	IsShare bool   `json:"is_share"`
	TS      string `json:"ts"`
}

// Parse decodes a request body into an Envelope.
// Invalid JSON and recognized events missing required fields return
// domain.ErrMalformedEvent. Unrecognized kinds become domain.UnknownEvent.
// A JSON object with a mistyped field still yields its well-typed fields,
// Token included, alongside the error.
func Parse(body []byte) (domain.Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(body, &w); err != nil {
		return partialEnvelope(body), fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	env := domain.Envelope{
		Token:     w.Token,
		Type:      domain.EnvelopeType(w.Type),
		Challenge: w.Challenge,
		TeamID:    w.TeamID,
		EventID:   w.EventID,
		Raw:       body,
	}
	if env.Type != domain.EnvelopeEventCallback {
		return env, nil
	}

	if len(w.Event) == 0 || string(w.Event) == "null" {
		return env, fmt.Errorf("%w: event_callback without event", domain.ErrMalformedEvent)
	}
	ev, err := parseEvent(w.Event)
	if err != nil {
		return env, err
	}
	if err := checkEvent(env.TeamID, ev); err != nil {
		return env, err
	}
	env.Event = ev
	return env, nil
}

// partialEnvelope keeps the string fields of a body that failed strict decoding.
// Event is never set.
func partialEnvelope(body []byte) domain.Envelope {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.Envelope{}
	}
	str := func(key string) string {
		var v string
		_ = json.Unmarshal(fields[key], &v)
		return v
	}
	return domain.Envelope{
		Token:     str("token"),
		Type:      domain.EnvelopeType(str("type")),
		Challenge: str("challenge"),
		TeamID:    str("team_id"),
		EventID:   str("event_id"),
		Raw:       body,
	}
}

func parseEvent(raw json.RawMessage) (domain.Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	switch domain.EventKind(w.Type) {
	case domain.KindTeamJoin:
		var user struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(w.User, &user); err != nil || user.ID == "" {
			return nil, malformed(w.Type, "user.id")
		}
		return domain.TeamJoin{UserID: user.ID}, nil

	case domain.KindReactionAdded:
		userID, ok := stringField(w.User)
		if !ok {
			return nil, malformed(w.Type, "user")
		}
		if w.Item == nil || w.Item.Channel == "" || w.Item.TS == "" {
			return nil, malformed(w.Type, "item.channel/item.ts")
		}
		return domain.ReactionAdded{UserID: userID, Channel: w.Item.Channel, TS: w.Item.TS}, nil

	case domain.KindPinAdded:
		userID, ok := stringField(w.User)
		if !ok {
			return nil, malformed(w.Type, "user")
		}
		if w.Item == nil || w.Item.Channel == "" || w.Item.Message == nil || w.Item.Message.TS == "" {
			return nil, malformed(w.Type, "item.channel/item.message.ts")
		}
		return domain.PinAdded{UserID: userID, Channel: w.Item.Channel, TS: w.Item.Message.TS}, nil

	case domain.KindMessage:
		// Bot and system messages may carry no user; they are never a share.
		userID, _ := stringField(w.User)
		msg := domain.Message{UserID: userID, Channel: w.Channel}
		for _, a := range w.Attachments {
			msg.Attachments = append(msg.Attachments, domain.MessageAttachment{IsShare: a.IsShare, TS: a.TS})
		}
		if _, shared := msg.SharedAttachment(); shared && (msg.Channel == "" || msg.Attachments[0].TS == "") {
			return nil, malformed(w.Type, "channel/attachments[0].ts")
		}
		return msg, nil

	default:
		return domain.UnknownEvent{Type: w.Type}, nil
	}
}

func checkEvent(teamID string, ev domain.Event) error {
	ids := map[string]string{"team_id": teamID}
	switch e := ev.(type) {
	case domain.TeamJoin:
		ids["user"] = e.UserID
	case domain.ReactionAdded:
		ids["user"], ids["channel"], ids["ts"] = e.UserID, e.Channel, e.TS
	case domain.PinAdded:
		ids["user"], ids["channel"], ids["ts"] = e.UserID, e.Channel, e.TS
	case domain.Message:
		ids["user"], ids["channel"] = e.UserID, e.Channel
		if att, ok := e.SharedAttachment(); ok {
			ids["ts"] = att.TS
		}
	default:
		return nil
	}
	return checkIDs(string(ev.Kind()), ids)
}

func stringField(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return "", false
	}
	return s, true
}

func malformed(kind, field string) error {
	return fmt.Errorf("%w: %s missing %s", domain.ErrMalformedEvent, kind, field)
}
