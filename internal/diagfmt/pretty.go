// Package diagfmt renders diagnostics for the CLI. The diag package stays
// data-only; everything about colors and layout on screen lives here.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"gofort/internal/diag"
	"gofort/internal/source"
)

// PrettyOpts controls rendering.
type PrettyOpts struct {
	Color bool
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan)
	noteColor  = color.New(color.Faint)
)

// Pretty writes diagnostics one per line as
//
//	<path>:<line>:<col>: <SEV> [<CODE>]: <message>
//
// followed by indented notes. Callers are expected to Sort the bag first.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s [%s]: %s\n",
			position(fs, d.Primary), severity(d.Severity, opts.Color), d.Code.ID(), d.Message)
		for _, note := range d.Notes {
			text := fmt.Sprintf("  note: %s: %s", position(fs, note.Span), note.Msg)
			if opts.Color {
				text = noteColor.Sprint(text)
			}
			fmt.Fprintln(w, text)
		}
	}
}

func position(fs *source.FileSet, span source.Span) string {
	if fs == nil {
		return span.String()
	}
	f := fs.Get(span.File)
	if f == nil {
		return span.String()
	}
	lc := fs.Position(span.File, span.Start)
	return fmt.Sprintf("%s:%d:%d", f.Path, lc.Line, lc.Col)
}

func severity(sev diag.Severity, colored bool) string {
	text := sev.String()
	if !colored {
		return text
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(text)
	case diag.SevWarning:
		return warnColor.Sprint(text)
	default:
		return infoColor.Sprint(text)
	}
}
