package assembler

import (
	"fmt"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/lexer"
)

// opKind tags a parsed operand.
type opKind int

const (
	opToken opKind = iota
	opReg
	opImm
)

// Operand is one parsed operand of a statement: a literal token marker
// (the mnemonic itself, '<', '>', '[' or ']'), a register, or an
// immediate expression. Every operand carries its source span.
type Operand struct {
	kind  opKind
	tok   string
	reg   cpu.Reg
	imm   expr.Expr
	start lexer.Loc
	end   lexer.Loc
}

func tokenOperand(text string, loc lexer.Loc) Operand {
	return Operand{kind: opToken, tok: text, start: loc, end: loc}
}

func regOperand(r cpu.Reg, start, end lexer.Loc) Operand {
	return Operand{kind: opReg, reg: r, start: start, end: end}
}

func immOperand(e expr.Expr, start, end lexer.Loc) Operand {
	return Operand{kind: opImm, imm: e, start: start, end: end}
}

func (o Operand) isToken() bool { return o.kind == opToken }
func (o Operand) isReg() bool   { return o.kind == opReg }
func (o Operand) isImm() bool   { return o.kind == opImm }

// Token returns the text of a token operand.
func (o Operand) Token() string { return o.tok }

// Reg returns the register of a register operand.
func (o Operand) Reg() cpu.Reg { return o.reg }

// Imm returns the expression of an immediate operand.
func (o Operand) Imm() expr.Expr { return o.imm }

// Start returns the location of the operand's first token.
func (o Operand) Start() lexer.Loc { return o.start }

// End returns the location just past the operand's last token.
func (o Operand) End() lexer.Loc { return o.end }

// inRange reports whether the operand is a constant immediate within
// [min, max]. Non-constant expressions are never in range.
func (o Operand) inRange(min, max int64) bool {
	if o.kind != opImm {
		return false
	}
	v, ok := expr.ConstantValue(o.imm)
	return ok && v >= min && v <= max
}

func (o Operand) String() string {
	switch o.kind {
	case opToken:
		return fmt.Sprintf("token(%q)", o.tok)
	case opReg:
		return fmt.Sprintf("reg(%s)", o.reg)
	default:
		return fmt.Sprintf("imm(%s)", o.imm)
	}
}
