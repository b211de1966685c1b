package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the title banner. Pass termenv.Ascii to disable color.
func PrintBanner(w io.Writer, p termenv.Profile) {
	// Phosphor green fading into cyan
	lines := []struct{ text, color string }{
		{` ____  _                                      _           _ `, "#22c55e"},
		{`|  _ \(_)___  ___ ___  _ __  _ __   ___  ___| |_ ___  __| |`, "#10b981"},
		{`| | | | / __|/ __/ _ \| '_ \| '_ \ / _ \/ __| __/ _ \/ _' |`, "#14b8a6"},
		{`| |_| | \__ \ (_| (_) | | | | | | |  __/ (__| ||  __/ (_| |`, "#06b6d4"},
		{`|____/|_|___/\___\___/|_| |_|_| |_|\___|\___|\__\___|\__,_|`, "#0ea5e9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  ECHO station online. Trust no one.").Foreground(p.Color("#64748b")).Italic())
	fmt.Fprintln(w)
}
