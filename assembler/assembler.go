// Package assembler parses M88k assembly text, matches each statement
// against the instruction encoding table, and hands the selected
// instructions to an emission sink. Parsing is single-pass and
// recovers per statement: an error abandons the current statement and
// resumes at the next one, so a full run reports every error.
package assembler

import (
	"fmt"
	"strings"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/lexer"
	"github.com/grimdal/m88k/mc"
)

// Assembler holds the state for one assembly run: the token source,
// the expression parser, the active feature set, and the collected
// diagnostics. The feature set is the only state that outlives a
// statement; it is owned here and mutated only by the directive
// handler.
type Assembler struct {
	lex      *lexer.Lexer
	exprs    *expr.Parser
	features cpu.Feature
	out      mc.Streamer
	diags    []Diagnostic
}

// New creates an Assembler emitting to out, with the default CPU
// profile active.
func New(out mc.Streamer) *Assembler {
	return &Assembler{
		features: cpu.Profiles[cpu.DefaultCPU],
		out:      out,
	}
}

// SetCPU selects the active CPU profile by name.
func (a *Assembler) SetCPU(name string) error {
	feats, ok := cpu.Profiles[name]
	if !ok {
		return fmt.Errorf("unknown cpu: %s", name)
	}
	a.features = feats
	return nil
}

// Features returns the active feature set.
func (a *Assembler) Features() cpu.Feature { return a.features }

// Diagnostics returns every diagnostic collected so far.
func (a *Assembler) Diagnostics() []Diagnostic { return a.diags }

// Assemble parses and matches the whole source text. It returns an
// error if any statement failed; warnings alone do not fail the run.
func (a *Assembler) Assemble(src string) error {
	a.lex = lexer.New(src)
	a.exprs = expr.NewParser(a.lex)

	for {
		tok := a.lex.Peek()
		switch {
		case tok.Is(lexer.EOF):
			return a.runError()

		case tok.Is(lexer.EndOfStatement):
			a.lex.Next()

		case tok.Is(lexer.Identifier) && strings.HasPrefix(tok.Text, "."):
			a.lex.Next()
			if !a.parseDirective(tok) {
				a.errorf(tok.Loc, "unknown directive")
				a.recover()
			}

		case tok.Is(lexer.Identifier):
			a.lex.Next()
			if a.lex.Peek().Is(lexer.Colon) {
				a.lex.Next()
				a.out.EmitLabel(tok.Text)
				continue
			}
			a.statement(tok)

		default:
			a.errorf(tok.Loc, "expected instruction mnemonic")
			a.recover()
		}
	}
}

// statement parses the operands of one instruction and matches it.
// The mnemonic token has already been consumed.
func (a *Assembler) statement(name lexer.Token) {
	operands, ok := a.parseInstruction(name.Text, name.Loc)
	if !ok {
		return
	}
	a.matchAndEmit(name.Loc, operands)
}

// recover discards the rest of the current statement.
func (a *Assembler) recover() {
	a.lex.EatToEndOfStatement()
	if a.lex.Peek().Is(lexer.EndOfStatement) {
		a.lex.Next()
	}
}

// runError summarizes the collected diagnostics as a single error, or
// nil if no error-severity diagnostic was recorded.
func (a *Assembler) runError() error {
	n := 0
	var first *Diagnostic
	for i := range a.diags {
		if a.diags[i].Sev == SevError {
			if first == nil {
				first = &a.diags[i]
			}
			n++
		}
	}
	if first == nil {
		return nil
	}
	if n == 1 {
		return fmt.Errorf("%s", first)
	}
	return fmt.Errorf("%s (and %d more errors)", first, n-1)
}
