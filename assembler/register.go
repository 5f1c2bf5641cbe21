package assembler

import (
	"fmt"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/lexer"
)

// parseRegister parses a register of the form %(r|x|cr|fcr)<No>, with
// primary and alternate spellings. With restoreOnFailure set, a failed
// resolution pushes the sigil back onto the token source instead of
// reporting, so the caller can try another parse.
func (a *Assembler) parseRegister(restoreOnFailure bool) (cpu.Reg, lexer.Loc, lexer.Loc, error) {
	startLoc := a.lex.Peek().Loc

	sigil := a.lex.Peek()
	if sigil.IsNot(lexer.Percent) {
		return cpu.NoReg, startLoc, startLoc, fmt.Errorf("expected register")
	}
	a.lex.Next()

	id := a.lex.Peek()
	reg := cpu.NoReg
	if id.Is(lexer.Identifier) {
		reg, _ = cpu.Resolve(id.Text)
	}
	if reg == cpu.NoReg {
		if restoreOnFailure {
			a.lex.UnLex(sigil)
			return cpu.NoReg, startLoc, startLoc, fmt.Errorf("invalid register")
		}
		a.errorf(startLoc, "invalid register")
		return cpu.NoReg, startLoc, startLoc, fmt.Errorf("invalid register")
	}

	a.lex.Next()
	endLoc := a.lex.Peek().Loc
	return reg, startLoc, endLoc, nil
}
