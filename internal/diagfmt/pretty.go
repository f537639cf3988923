package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"borrowck/internal/diag"
)

// Pretty renders diagnostics for humans, one finding per line:
//
//	<fn>:<point>: <SEV> <CODE>: <message>
//	    note: <point>: <message>
//
// Severity labels are padded to a common width so messages line up in a
// column. Expects bag.Sort() to have been called already.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) {
	sevWidth := 0
	for _, d := range bag.Items() {
		if width := runewidth.StringWidth(d.Severity.String()); width > sevWidth {
			sevWidth = width
		}
	}

	for _, d := range bag.Items() {
		label := padRight(d.Severity.String(), sevWidth)
		if opts.Color {
			label = colorizeSeverity(d.Severity, label)
		}
		fmt.Fprintf(w, "%s:%s: %s %s: %s\n", d.Fn, d.Point, label, d.Code.ID(), d.Message)
		if !opts.ShowNotes {
			continue
		}
		for _, note := range d.Notes {
			fmt.Fprintf(w, "    note: %s: %s\n", note.Point, note.Msg)
		}
	}
}

func padRight(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

func colorizeSeverity(sev diag.Severity, label string) string {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold).Sprint(label)
	case diag.SevWarning:
		return color.New(color.FgYellow).Sprint(label)
	case diag.SevInfo:
		return color.New(color.FgCyan).Sprint(label)
	}
	return label
}
