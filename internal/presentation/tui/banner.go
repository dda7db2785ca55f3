package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"              _                         _ ", "#f2c744"},
	{"  ___  _ __  | |__   ___   __ _ _ __ __| |", "#e7b94f"},
	{" / _ \\| '_ \\ | '_ \\ / _ \\ / _` | '__/ _` |", "#a3b18a"},
	{"| (_) | | | || |_) | (_) | (_| | | | (_| |", "#6fa8c7"},
	{" \\___/|_| |_||_.__/ \\___/ \\__,_|_|  \\__,_|", "#439FE0"},
}

// PrintBanner writes the onboard ASCII banner to w, fading from the pending
// step color to the completed one.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
