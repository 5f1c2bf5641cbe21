// Package lower converts generic machine instructions, as produced by
// an instruction selector, into encoded mc instructions. Register
// operands collapse pairs to their high half, symbolic operands become
// relocation expressions, and bookkeeping operands (implicit uses and
// defs, register masks) are dropped.
package lower

import (
	"errors"
	"fmt"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/mc"
)

// ErrInternal marks a lowering failure that indicates a malformed
// generic instruction rather than bad user input. Callers should treat
// it as fatal.
var ErrInternal = errors.New("internal lowering error")

// Kind classifies a generic machine operand.
type Kind int

const (
	// KindRegister is a physical register, possibly a pair.
	KindRegister Kind = iota
	// KindImmediate is a constant.
	KindImmediate
	// KindBlock is a basic-block label, by block number.
	KindBlock
	// KindGlobal is a global symbol, by name.
	KindGlobal
	// KindExternal is an external symbol, by name.
	KindExternal
	// KindJumpTable is a jump-table entry, by index.
	KindJumpTable
	// KindConstantPool is a constant-pool entry, by index.
	KindConstantPool
	// KindBlockAddress is the address of a basic block taken as a
	// value, by index.
	KindBlockAddress
)

// Flag selects the relocation variant of a symbolic operand.
type Flag int

const (
	// FlagNone requests a plain absolute relocation.
	FlagNone Flag = iota
	// FlagAbsHi requests the high 16 bits of the address.
	FlagAbsHi
	// FlagAbsLo requests the low 16 bits of the address.
	FlagAbsLo
)

// Operand is one generic machine operand before lowering.
type Operand struct {
	Kind   Kind
	Reg    cpu.Reg
	SubReg int
	Imm    int64
	Sym    string
	Index  int
	Offset int64
	Flag   Flag
	// Implicit marks a use or def added for liveness tracking; such
	// operands carry no encoding bits.
	Implicit bool
	// RegMask marks a call-clobber mask operand.
	RegMask bool
}

// Inst is one generic machine instruction.
type Inst struct {
	Op       cpu.Opcode
	Operands []Operand
}

// Namer maps symbolic operand targets to their emitted symbol names.
// The object writer owns the naming scheme; lowering only consumes it.
type Namer interface {
	GlobalName(sym string) string
	ExternalName(sym string) string
	BlockName(index int) string
	JumpTableName(index int) string
	ConstantPoolName(index int) string
	BlockAddressName(index int) string
}

// Lowerer lowers generic instructions using a Namer for symbol
// operands.
type Lowerer struct {
	names Namer
}

// New creates a Lowerer.
func New(names Namer) *Lowerer {
	return &Lowerer{names: names}
}

// Lower converts one generic instruction. Implicit operands and
// register masks are skipped; everything else must lower or the whole
// instruction fails.
func (l *Lowerer) Lower(in Inst) (mc.Inst, error) {
	out := mc.Inst{Op: in.Op}
	for i := range in.Operands {
		op := &in.Operands[i]
		if op.Implicit || op.RegMask {
			continue
		}
		lowered, err := l.lowerOperand(op)
		if err != nil {
			return mc.Inst{}, fmt.Errorf("lowering %s operand %d: %w", in.Op, i, err)
		}
		out.Operands = append(out.Operands, lowered)
	}
	return out, nil
}

func (l *Lowerer) lowerOperand(op *Operand) (mc.Operand, error) {
	switch op.Kind {
	case KindRegister:
		if op.SubReg != 0 {
			return mc.Operand{}, fmt.Errorf("%w: subregister reference", ErrInternal)
		}
		// A pair encodes as its even high half.
		return mc.RegOperand(op.Reg.PairHi()), nil

	case KindImmediate:
		return mc.ImmOperand(op.Imm), nil

	case KindBlock, KindGlobal, KindExternal, KindJumpTable,
		KindConstantPool, KindBlockAddress:
		return l.lowerSymbolOperand(op)
	}
	return mc.Operand{}, fmt.Errorf("%w: unknown operand kind %d", ErrInternal, op.Kind)
}

// lowerSymbolOperand builds the relocation expression for a symbolic
// operand. The address-valued kinds fold their offset into the
// expression; block labels and jump-table indices never carry one, so
// it is ignored there.
func (l *Lowerer) lowerSymbolOperand(op *Operand) (mc.Operand, error) {
	var name string
	hasOffset := false
	switch op.Kind {
	case KindBlock:
		name = l.names.BlockName(op.Index)
	case KindGlobal:
		name = l.names.GlobalName(op.Sym)
		hasOffset = true
	case KindExternal:
		name = l.names.ExternalName(op.Sym)
		hasOffset = true
	case KindJumpTable:
		name = l.names.JumpTableName(op.Index)
	case KindConstantPool:
		name = l.names.ConstantPoolName(op.Index)
		hasOffset = true
	case KindBlockAddress:
		name = l.names.BlockAddressName(op.Index)
		hasOffset = true
	}

	var variant expr.Variant
	switch op.Flag {
	case FlagNone:
		variant = expr.None
	case FlagAbsHi:
		variant = expr.AbsHi
	case FlagAbsLo:
		variant = expr.AbsLo
	default:
		return mc.Operand{}, fmt.Errorf("%w: unknown operand flag %d", ErrInternal, op.Flag)
	}

	var e expr.Expr = &expr.SymbolRef{Name: name, Variant: variant}
	if hasOffset && op.Offset != 0 {
		e = &expr.BinaryAdd{LHS: e, RHS: &expr.Constant{Value: op.Offset}}
	}
	return mc.ExprOperand(e), nil
}
