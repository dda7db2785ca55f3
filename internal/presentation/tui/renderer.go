package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/onboard/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// width <= 0 keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithEmoji(),
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// TutorialMarkdown lays out the welcome message as the user will receive it.
func TutorialMarkdown(welcome string, inst domain.Instance) string {
	var sb strings.Builder
	for _, line := range strings.Split(welcome, "\n") {
		sb.WriteString(line)
		sb.WriteString("  \n")
	}
	sb.WriteString("\n")

	done, total := inst.Progress()
	for i, step := range inst {
		fmt.Fprintf(&sb, "%d. %s `%s`\n", i+1, step.Text, step.Color)
	}
	fmt.Fprintf(&sb, "\n_%d of %d steps completed_\n", done, total)
	return sb.String()
}
