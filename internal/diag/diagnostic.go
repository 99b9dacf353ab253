package diag

import (
	"gofort/internal/source"
)

// Severity ranks how bad a diagnostic is. The zero value is informational,
// so an unset severity can never mask a layout error.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool { return s >= min }

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Note is a secondary span attached to a diagnostic for extra context.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
