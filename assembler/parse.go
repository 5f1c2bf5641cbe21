package assembler

import (
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/lexer"
)

// parseInstruction parses the operand list of one statement. The
// mnemonic is recorded as the first operand. A statement carries up to
// four parsed operands; bitfield groups and scaled-register forms push
// extra literal-token markers, so the list holds one to six entries
// plus the mnemonic. On failure the statement is reported, discarded,
// and false returned.
func (a *Assembler) parseInstruction(name string, nameLoc lexer.Loc) ([]Operand, bool) {
	operands := []Operand{tokenOperand(name, nameLoc)}

	if a.lex.Peek().IsNot(lexer.EndOfStatement) && a.lex.Peek().IsNot(lexer.EOF) {
		// First operand.
		if !a.parseOperand(&operands, name, 1, "expected operand") {
			return nil, false
		}

		// Second operand.
		if a.lex.Peek().Is(lexer.Comma) {
			a.lex.Next()
			if !a.parseOperand(&operands, name, 2, "expected operand") {
				return nil, false
			}

			// Third operand, or a scaled register.
			if a.lex.Peek().Is(lexer.Comma) {
				a.lex.Next()
				if a.lex.Peek().Is(lexer.Less) && name == "rot" {
					operands = append(operands, tokenOperand("<", a.lex.Peek().Loc))
				}
				if !a.parseOperand(&operands, name, 3, "expected register or immediate") {
					return nil, false
				}
				// Bitfield offset after the width.
				if a.lex.Peek().Is(lexer.Less) {
					operands = append(operands, tokenOperand("<", a.lex.Peek().Loc))
					if !a.parseOperand(&operands, name, 4, "expected bitfield offset") {
						return nil, false
					}
				}
			} else if a.lex.Peek().Is(lexer.LBrac) {
				if !a.parseScaledRegister(&operands) {
					a.errorf(a.lex.Peek().Loc, "expected scaled register operand")
					a.recover()
					return nil, false
				}
			}
		}

		if tok := a.lex.Peek(); tok.IsNot(lexer.EndOfStatement) && tok.IsNot(lexer.EOF) {
			a.errorf(tok.Loc, "unexpected token in argument list")
			a.recover()
			return nil, false
		}
	}

	// Consume the end of the statement.
	if a.lex.Peek().Is(lexer.EndOfStatement) {
		a.lex.Next()
	}
	return operands, true
}

// parseOperand parses one operand. The slot's micro-parser, if any,
// gets the first try; on no-match the operand is a register or an
// immediate expression.
func (a *Assembler) parseOperand(ops *[]Operand, mnemonic string, slot int, failMsg string) bool {
	if mp := microParsers[mnemonic][slot]; mp != nil {
		before := len(a.diags)
		switch mp(a, ops) {
		case matched:
			return true
		case failedMatch:
			a.lex.EatToEndOfStatement()
			// Micro-parsers with a specific message (range checks)
			// have already reported; add the generic one otherwise.
			if len(a.diags) == before {
				a.errorf(a.lex.Peek().Loc, "%s", failMsg)
			}
			a.recover()
			return false
		}
		// noMatch falls through to the generic paths.
	}

	tok := a.lex.Peek()

	// Register operand, tried speculatively so a failed resolution
	// leaves the token stream intact.
	if reg, startLoc, endLoc, err := a.parseRegister(true); err == nil {
		*ops = append(*ops, regOperand(reg, startLoc, endLoc))
		return true
	}
	if tok.Is(lexer.Percent) {
		a.errorf(tok.Loc, "invalid register")
		a.recover()
		return false
	}

	// Immediate or address.
	if expr.Starts(tok) {
		startLoc := tok.Loc
		e, err := a.exprs.Parse()
		if err != nil {
			a.errorf(startLoc, "%s", err)
			a.recover()
			return false
		}
		endLoc := a.lex.Peek().Loc
		*ops = append(*ops, immOperand(e, startLoc, endLoc))
		return true
	}

	a.errorf(tok.Loc, "%s", failMsg)
	a.recover()
	return false
}

// parseScaledRegister parses the '[reg]' memory form, pushing the
// bracket markers and the register.
func (a *Assembler) parseScaledRegister(ops *[]Operand) bool {
	lbracLoc := a.lex.Peek().Loc
	if a.lex.Peek().IsNot(lexer.LBrac) {
		return false
	}
	a.lex.Next()

	reg, startLoc, endLoc, err := a.parseRegister(false)
	if err != nil {
		return false
	}

	if a.lex.Peek().IsNot(lexer.RBrac) {
		return false
	}
	rbracLoc := a.lex.Peek().Loc
	a.lex.Next()

	*ops = append(*ops,
		tokenOperand("[", lbracLoc),
		regOperand(reg, startLoc, endLoc),
		tokenOperand("]", rbracLoc),
	)
	return true
}
