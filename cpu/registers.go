// Package cpu holds the static M88k ISA data shared by the assembler
// and the lowering engine: physical registers, register pairs, CPU
// feature sets, condition codes and the opcode enumeration.
package cpu

import "fmt"

// Reg identifies one physical register.
type Reg uint16

// General-purpose registers %r0-%r31. %r0 always reads zero.
const (
	NoReg Reg = iota
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	R16
	R17
	R18
	R19
	R20
	R21
	R22
	R23
	R24
	R25
	R26
	R27
	R28
	R29
	R30
	R31
)

// Extended (80-bit) registers %x0-%x31, present on the MC88110 only.
const (
	X0 Reg = R31 + 1 + Reg(iota)
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
	X31
)

// Control registers %cr0-%cr20 and floating-point control registers
// %fcr0-%fcr63. Only the bases get names; the rest are CR0+n / FCR0+n.
const (
	CR0  Reg = X31 + 1
	CR20 Reg = CR0 + 20

	FCR0  Reg = CR20 + 1
	FCR63 Reg = FCR0 + 63
)

// Register pairs: two adjacent general registers holding one 64-bit
// value. The even register is the high half.
const (
	R0R1 Reg = FCR63 + 1 + Reg(iota)
	R2R3
	R4R5
	R6R7
	R8R9
	R10R11
	R12R13
	R14R15
	R16R17
	R18R19
	R20R21
	R22R23
	R24R25
	R26R27
	R28R29
	R30R31
)

// NumRegs is one past the last defined register.
const NumRegs = R30R31 + 1

var (
	regNames = map[string]Reg{}
	altNames = map[string]Reg{
		"sp": R31,
		"fp": R30,
	}
	nameOf = map[Reg]string{}
)

func init() {
	define := func(name string, r Reg) {
		regNames[name] = r
		nameOf[r] = name
	}
	for i := Reg(0); i < 32; i++ {
		define(fmt.Sprintf("r%d", i), R0+i)
		define(fmt.Sprintf("x%d", i), X0+i)
	}
	for i := Reg(0); i <= 20; i++ {
		define(fmt.Sprintf("cr%d", i), CR0+i)
	}
	for i := Reg(0); i <= 63; i++ {
		define(fmt.Sprintf("fcr%d", i), FCR0+i)
	}
	for i := Reg(0); i < 16; i++ {
		nameOf[R0R1+i] = fmt.Sprintf("r%d_r%d", 2*i, 2*i+1)
	}
}

// ByName resolves a primary register spelling.
func ByName(name string) (Reg, bool) {
	r, ok := regNames[name]
	return r, ok
}

// ByAltName resolves an alternate register spelling.
func ByAltName(name string) (Reg, bool) {
	r, ok := altNames[name]
	return r, ok
}

// Resolve maps a textual register name to a physical register, trying
// the primary name table first and the alternate names second.
func Resolve(name string) (Reg, bool) {
	if r, ok := ByName(name); ok {
		return r, true
	}
	return ByAltName(name)
}

func (r Reg) String() string {
	if name, ok := nameOf[r]; ok {
		return name
	}
	return fmt.Sprintf("reg(%d)", uint16(r))
}

// IsGPR reports whether r is a general-purpose register.
func (r Reg) IsGPR() bool { return r >= R0 && r <= R31 }

// IsExtended reports whether r is an MC88110 extended register.
func (r Reg) IsExtended() bool { return r >= X0 && r <= X31 }

// IsPair reports whether r is a 64-bit register pair.
func (r Reg) IsPair() bool { return r >= R0R1 && r <= R30R31 }

// PairHi returns the high half of a register pair. Only the high half
// is ever encoded; the low half is the adjacent odd register.
func (r Reg) PairHi() Reg {
	if !r.IsPair() {
		return r
	}
	return R0 + 2*(r-R0R1)
}

// Num returns the register's encoding number within its bank.
func (r Reg) Num() uint32 {
	switch {
	case r.IsGPR():
		return uint32(r - R0)
	case r.IsExtended():
		return uint32(r - X0)
	case r >= CR0 && r <= CR20:
		return uint32(r - CR0)
	case r >= FCR0 && r <= FCR63:
		return uint32(r - FCR0)
	case r.IsPair():
		return uint32(r.PairHi() - R0)
	}
	return 0
}
