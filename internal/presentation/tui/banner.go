package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the server banner to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	title := out.String("  $ mathspan $").Foreground(out.Color("#818cf8")).Bold()
	ver := out.String("v" + strings.TrimSpace(version)).Foreground(out.Color("#c084fc"))
	fmt.Fprintf(w, "\n%s %s\n\n", title, ver)
}
