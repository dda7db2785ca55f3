package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/onboard/pkg/domain"
)

// triggers names the callback that completes each step.
var triggers = map[domain.StepName]domain.EventKind{
	domain.StepReaction: domain.KindReactionAdded,
	domain.StepPin:      domain.KindPinAdded,
	domain.StepShare:    domain.KindMessage,
}

// GenerateMermaid produces a Mermaid flowchart of the tutorial.
// The join is the entry ((Circle)); each step hangs off it, labelled with the
// event that completes it. Steps are independent, so there are no edges
// between them. Completed steps get the "completed" class, with the color
// the platform message shows.
func GenerateMermaid(inst domain.Instance) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    join((\"%s\"))\n", domain.KindTeamJoin))

	for i, name := range domain.StepNames() {
		if i >= len(inst) {
			break
		}
		id := sanitizeMermaidID(string(name))
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label(inst[i].Text)))
		sb.WriteString(fmt.Sprintf("    join -- \"%s\" --> %s\n", triggers[name], id))
	}

	sb.WriteString("\n    %% Progress Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString(fmt.Sprintf("    classDef completed fill:%s,stroke:#01579b,stroke-width:2px,color:#000;\n", domain.CompletedColor))
	sb.WriteString("    classDef pending fill:#fff8e1,stroke:#fbc02d,stroke-width:1px,color:#000;\n")
	for i, name := range domain.StepNames() {
		if i >= len(inst) {
			break
		}
		class := "pending"
		if inst.IsDone(name) {
			class = "completed"
		}
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(string(name)), class))
	}

	return sb.String()
}

// label keeps the first line of a step, without the marker emoji or markup.
func label(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.NewReplacer(
		domain.PendingMarker, "",
		domain.CompletedMarker, "",
		"*", "",
		"\"", "'",
	).Replace(line)
	return strings.TrimSpace(line)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
