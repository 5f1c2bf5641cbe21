package assembler

import (
	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/lexer"
)

// parseDirective handles an assembler directive. It returns false when
// the directive is unknown; the caller reports and recovers.
func (a *Assembler) parseDirective(tok lexer.Token) bool {
	switch tok.Text {
	case ".requires_88110":
		a.features = cpu.Profiles["mc88110"]
		a.out.EmitRequires88110()
		if a.lex.Peek().Is(lexer.EndOfStatement) {
			a.lex.Next()
		}
		return true
	}
	return false
}
