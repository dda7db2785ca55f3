package domain

import (
	"fmt"
	"strings"
)

// StepName is the symbolic name of a tutorial step.
type StepName string

const (
	StepReaction StepName = "reaction"
	StepPin      StepName = "pin"
	StepShare    StepName = "share"
)

// stepIndex maps each symbolic step to its position in the template.
var stepIndex = map[StepName]int{
	StepReaction: 0,
	StepPin:      1,
	StepShare:    2,
}

// StepNames returns the known steps in template order.
func StepNames() []StepName {
	return []StepName{StepReaction, StepPin, StepShare}
}

// MustStepIndex resolves a step name to its template position.
// An unknown name is a programming error and panics.
func MustStepIndex(name StepName) int {
	idx, ok := stepIndex[name]
	if !ok {
		panic(fmt.Sprintf("domain: unknown tutorial step %q", name))
	}
	return idx
}

// Step is one tutorial item as displayed to the user.
type Step struct {
	Text  string `json:"text" yaml:"text" mapstructure:"text"`
	Color string `json:"color" yaml:"color" mapstructure:"color"`

	// Done is the step's completion sub-state. It only moves from false to true.
	Done bool `json:"-" yaml:"-" mapstructure:"-"`
}

// Template is the immutable tutorial definition shared by every user.
type Template struct {
	Steps []Step
}

// Validate checks that every named step resolves to a step carrying the pending marker.
func (t *Template) Validate() error {
	if t == nil || len(t.Steps) == 0 {
		return fmt.Errorf("%w: no steps defined", ErrInvalidTemplate)
	}
	for _, name := range StepNames() {
		idx := MustStepIndex(name)
		if idx >= len(t.Steps) {
			return fmt.Errorf("%w: step %q expects index %d but template has %d steps", ErrInvalidTemplate, name, idx, len(t.Steps))
		}
	}
	for i, s := range t.Steps {
		if !strings.Contains(s.Text, PendingMarker) {
			return fmt.Errorf("%w: step %d text is missing the %s marker", ErrInvalidTemplate, i, PendingMarker)
		}
	}
	return nil
}

// NewInstance returns an independent copy of the template steps.
func (t *Template) NewInstance() Instance {
	inst := make(Instance, len(t.Steps))
	copy(inst, t.Steps)
	for i := range inst {
		inst[i].Done = false
	}
	return inst
}

// Instance is a user's private copy of the tutorial.
type Instance []Step

// Complete marks the named step as done. Applying it again changes nothing.
func (in Instance) Complete(name StepName) {
	s := &in[MustStepIndex(name)]
	if s.Done {
		return
	}
	s.Text = strings.Replace(s.Text, PendingMarker, CompletedMarker, 1)
	s.Color = CompletedColor
	s.Done = true
}

// IsDone reports whether the named step has been completed.
func (in Instance) IsDone(name StepName) bool {
	return in[MustStepIndex(name)].Done
}

// Progress returns how many of the named steps are done.
func (in Instance) Progress() (done, total int) {
	for _, name := range StepNames() {
		total++
		if in.IsDone(name) {
			done++
		}
	}
	return done, total
}

// Finished reports whether every step is done. It is a display fact, not a tracked state.
func (in Instance) Finished() bool {
	done, total := in.Progress()
	return done == total
}

// Clone returns a copy that shares nothing with the receiver.
func (in Instance) Clone() Instance {
	if in == nil {
		return nil
	}
	out := make(Instance, len(in))
	copy(out, in)
	return out
}
