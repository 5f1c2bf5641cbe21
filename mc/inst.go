// Package mc defines the machine-code level instruction: an opcode with
// its encoded operand list, ready for emission. Both the textual
// assembler and the operand lowering engine produce mc.Inst values and
// hand them to a Streamer.
package mc

import (
	"fmt"
	"strings"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/lexer"
)

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	// KindReg is a physical register operand.
	KindReg OperandKind = iota
	// KindImm is a constant immediate operand.
	KindImm
	// KindExpr is a symbolic expression resolved at link time.
	KindExpr
)

// Operand is one encoded instruction operand.
type Operand struct {
	Kind OperandKind
	Reg  cpu.Reg
	Imm  int64
	Expr expr.Expr
}

// RegOperand creates a register operand.
func RegOperand(r cpu.Reg) Operand { return Operand{Kind: KindReg, Reg: r} }

// ImmOperand creates an immediate operand.
func ImmOperand(v int64) Operand { return Operand{Kind: KindImm, Imm: v} }

// ExprOperand creates an operand from an expression. Constant
// expressions collapse to immediates; a nil expression is immediate 0.
func ExprOperand(e expr.Expr) Operand {
	if e == nil {
		return ImmOperand(0)
	}
	if v, ok := expr.ConstantValue(e); ok {
		return ImmOperand(v)
	}
	return Operand{Kind: KindExpr, Expr: e}
}

func (o Operand) String() string {
	switch o.Kind {
	case KindReg:
		return "%" + o.Reg.String()
	case KindImm:
		return fmt.Sprintf("%d", o.Imm)
	default:
		return o.Expr.String()
	}
}

// Inst is one selected and encoded instruction, stamped with the source
// location of the statement it came from (zero for lowered
// instructions, which have no source text).
type Inst struct {
	Op       cpu.Opcode
	Operands []Operand
	Loc      lexer.Loc
}

func (in Inst) String() string {
	var sb strings.Builder
	sb.WriteString(in.Op.Mnemonic())
	for i, op := range in.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(op.String())
	}
	return sb.String()
}

// Streamer is the emission sink for assembled output. Implementations
// serialize instructions, record labels, and react to mode directives.
type Streamer interface {
	// EmitInstruction receives one finished instruction.
	EmitInstruction(inst Inst)
	// EmitLabel records a label at the current position.
	EmitLabel(name string)
	// EmitRequires88110 is called when the .requires_88110 directive
	// was seen, so object writers can record the requirement.
	EmitRequires88110()
}
