package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the regtrain banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	s1 := termenv.String("                _             _       ").Foreground(p.Color("#34d399"))
	s2 := termenv.String("  _ __ ___  __ _| |_ _ __ __ _(_)_ __  ").Foreground(p.Color("#2dd4bf"))
	s3 := termenv.String(" | '__/ _ \\/ _` | __| '__/ _` | | '_ \\ ").Foreground(p.Color("#22d3ee"))
	s4 := termenv.String(" | | |  __/ (_| | |_| | | (_| | | | | |").Foreground(p.Color("#38bdf8"))
	s5 := termenv.String(" |_|  \\___|\\__, |\\__|_|  \\__,_|_|_| |_|").Foreground(p.Color("#60a5fa"))
	s6 := termenv.String("           |___/                        ").Foreground(p.Color("#818cf8"))

	fmt.Fprintln(w)
	for _, s := range []termenv.Style{s1, s2, s3, s4, s5, s6} {
		fmt.Fprintln(w, s)
	}
	fmt.Fprintln(w)
}
