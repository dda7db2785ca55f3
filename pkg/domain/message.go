package domain

// Attachment is the wire shape of one tutorial step.
type Attachment struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// OutboundMessage is a create or update request for the platform.
// An empty TS means create.
type OutboundMessage struct {
	AsUser      bool
	Channel     string
	TS          string
	Text        string
	Attachments []Attachment
}

// IsUpdate reports whether the message edits an existing one.
func (m OutboundMessage) IsUpdate() bool {
	return m.TS != ""
}

// Attachments serializes the instance into the wire attachment format.
func (in Instance) Attachments() []Attachment {
	out := make([]Attachment, len(in))
	for i, s := range in {
		out[i] = Attachment{Text: s.Text, Color: s.Color}
	}
	return out
}
