// Package expr provides the expression trees consumed by the assembler
// and the lowering engine, and a parser for the textual forms: integer
// literals, symbol references with optional hi16/lo16 relocation
// variants, additive chains, and $( ... ) compile-time constant groups.
package expr

import (
	"fmt"
	"strconv"
)

// Variant marks an address expression as the high or low half of a
// split-load sequence.
type Variant int

const (
	// None is a plain address expression.
	None Variant = iota
	// AbsHi selects the high 16 bits of an absolute address.
	AbsHi
	// AbsLo selects the low 16 bits of an absolute address.
	AbsLo
)

func (v Variant) String() string {
	switch v {
	case AbsHi:
		return "hi16"
	case AbsLo:
		return "lo16"
	default:
		return ""
	}
}

// Expr is an expression tree node.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Constant is an integer literal or a folded constant expression.
type Constant struct {
	Value int64
}

// SymbolRef references a symbol by name, optionally through a
// relocation variant.
type SymbolRef struct {
	Name    string
	Variant Variant
}

// BinaryAdd is the sum of two sub-expressions.
type BinaryAdd struct {
	LHS Expr
	RHS Expr
}

func (*Constant) isExpr()  {}
func (*SymbolRef) isExpr() {}
func (*BinaryAdd) isExpr() {}

func (c *Constant) String() string { return strconv.FormatInt(c.Value, 10) }

func (s *SymbolRef) String() string {
	if s.Variant != None {
		return fmt.Sprintf("%s(%s)", s.Variant, s.Name)
	}
	return s.Name
}

func (b *BinaryAdd) String() string {
	if c, ok := b.RHS.(*Constant); ok && c.Value < 0 {
		return fmt.Sprintf("%s-%d", b.LHS, -c.Value)
	}
	return fmt.Sprintf("%s+%s", b.LHS, b.RHS)
}

// ConstantValue returns the value of e if it is a constant.
func ConstantValue(e Expr) (int64, bool) {
	c, ok := e.(*Constant)
	if !ok {
		return 0, false
	}
	return c.Value, true
}
