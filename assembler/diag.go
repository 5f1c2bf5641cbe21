package assembler

import (
	"fmt"

	"github.com/grimdal/m88k/lexer"
)

// Severity of a diagnostic. Warnings never abort a statement; errors
// abort only the statement they occur in.
type Severity int

const (
	// SevWarning is a recoverable, diagnosed condition.
	SevWarning Severity = iota
	// SevError aborts the current statement.
	SevError
)

func (s Severity) String() string {
	if s == SevWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one location-tagged message.
type Diagnostic struct {
	Sev Severity
	Msg string
	Loc lexer.Loc
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Sev, d.Msg)
}

// errorf records an error diagnostic against a source location.
func (a *Assembler) errorf(loc lexer.Loc, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Sev: SevError, Msg: fmt.Sprintf(format, args...), Loc: loc})
}

// warnf records a warning diagnostic against a source location.
func (a *Assembler) warnf(loc lexer.Loc, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Sev: SevWarning, Msg: fmt.Sprintf(format, args...), Loc: loc})
}
