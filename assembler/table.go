package assembler

import (
	"fmt"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/mc"
)

// operandClass is a predicate over parsed operands for one encoding
// slot. Literal classes match token markers ('<', '>', '[', ']') and
// contribute no encoding bits.
type operandClass struct {
	lit   string
	check func(Operand) bool
	fail  matchKind
}

func (c operandClass) match(o Operand) bool {
	if c.lit != "" {
		return o.isToken() && o.Token() == c.lit
	}
	return c.check(o)
}

func (c operandClass) failKind() matchKind { return c.fail }

func lit(text string) operandClass {
	return operandClass{lit: text}
}

func immRange(min, max int64) operandClass {
	return operandClass{check: func(o Operand) bool { return o.inRange(min, max) }}
}

// immOrSym accepts a constant in range, or any symbolic expression;
// symbolic values are resolved by relocation after assembly.
func immOrSym(min, max int64) operandClass {
	return operandClass{check: func(o Operand) bool {
		if !o.isImm() {
			return false
		}
		if _, isConst := expr.ConstantValue(o.Imm()); !isConst {
			return true
		}
		return o.inRange(min, max)
	}}
}

var (
	classGPR = operandClass{check: func(o Operand) bool {
		return o.isReg() && o.Reg().IsGPR()
	}}
	// GPR64 names a register pair by its even (high) half. Odd
	// registers are accepted too; see DESIGN.md on the deliberate
	// permissiveness of this class.
	classGPR64 = operandClass{check: func(o Operand) bool {
		return o.isReg() && o.Reg().IsGPR()
	}}
	classU5    = immRange(0, 31)
	classCC    = immRange(0, 31)
	classVec9  = immRange(0, 511)
	classS16   = immOrSym(-32768, 32767)
	classU16   = immOrSym(0, 65535)
	classBFW   = operandClass{check: immRange(0, 31).check, fail: matchInvalidBFWidth}
	classBFO   = operandClass{check: immRange(0, 31).check, fail: matchInvalidBFOffset}
	classPxRot = operandClass{check: immRange(0, 60).check, fail: matchInvalidPixelRot}
	// PC-relative displacements were range-checked while parsing;
	// symbolic targets resolve later.
	classPCRel = operandClass{check: func(o Operand) bool { return o.isImm() }}
)

// entry is one candidate instruction encoding.
type entry struct {
	mnemonic string
	classes  []operandClass
	features cpu.Feature
	op       cpu.Opcode
	encode   func(mc.Inst) uint32
}

func regAt(in mc.Inst, i int) uint32 { return in.Operands[i].Reg.Num() }

// immAt returns an immediate operand's value; symbolic expressions
// encode as zero and are fixed up by relocation.
func immAt(in mc.Inst, i int) uint32 {
	if op := in.Operands[i]; op.Kind == mc.KindImm {
		return uint32(op.Imm)
	}
	return 0
}

// Triadic register form: rd in 25-21, rs1 in 20-16, rs2 in 4-0.
func encRRR(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)<<16 | regAt(in, 2)
	}
}

// Immediate form: rd, rs1, 16-bit immediate in the low half-word.
func encRRI16(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)<<16 | immAt(in, 2)&0xffff
	}
}

// Bitfield immediate form: width in 9-5, offset in 4-0.
func encBitfield(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)<<16 |
			(immAt(in, 2)&0x1f)<<5 | immAt(in, 3)&0x1f
	}
}

// Rotate immediate form: offset only, width field left clear.
func encRotate(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)<<16 | immAt(in, 2)&0x1f
	}
}

// Pixel-rotate immediate form: rotate amount in 10-5.
func encPixelRot(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)<<16 | (immAt(in, 2)&0x3f)<<5
	}
}

// Unconditional branch: 26-bit word displacement.
func encBranch26(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | (immAt(in, 0)>>2)&0x03ffffff
	}
}

// bb0/bb1: bit number in 25-21, rs1 in 20-16, 16-bit word displacement.
// bcnd: the 5-bit condition match field takes the bit number's place.
func encCondBr(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | (immAt(in, 0)&0x1f)<<21 | regAt(in, 1)<<16 | (immAt(in, 2)>>2)&0xffff
	}
}

// tb0/tb1: bit number, rs1, 9-bit trap vector.
func encTrap(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | (immAt(in, 0)&0x1f)<<21 | regAt(in, 1)<<16 | immAt(in, 2)&0x1ff
	}
}

// jmp/jsr: target register in 4-0.
func encJump(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)
	}
}

// ff0/ff1: rd and rs2 only.
func encFindFirst(base uint32) func(mc.Inst) uint32 {
	return func(in mc.Inst) uint32 {
		return base | regAt(in, 0)<<21 | regAt(in, 1)
	}
}

func rrr(m string, feat cpu.Feature, op cpu.Opcode, base uint32) entry {
	return entry{m, []operandClass{classGPR, classGPR, classGPR}, feat, op, encRRR(base)}
}

func rri16(m string, cls operandClass, op cpu.Opcode, base uint32) entry {
	return entry{m, []operandClass{classGPR, classGPR, cls}, 0, op, encRRI16(base)}
}

func bitfield(m string, op cpu.Opcode, base uint32) entry {
	return entry{m, []operandClass{classGPR, classGPR, classBFW, lit("<"), classBFO, lit(">")}, 0, op, encBitfield(base)}
}

func memRI(m string, rd operandClass, op cpu.Opcode, base uint32) entry {
	return entry{m, []operandClass{rd, classGPR, classU16}, 0, op, encRRI16(base)}
}

func memScaled(m string, op cpu.Opcode, base uint32) entry {
	return entry{m, []operandClass{classGPR, classGPR, lit("["), classGPR, lit("]")}, 0, op, encRRR(base)}
}

// table lists every candidate encoding, scanned linearly; declaration
// order breaks ties between otherwise-ambiguous matches.
var table = []entry{
	// Logical, register and imm16 forms.
	rrr("and", 0, cpu.OpANDrr, 0xf4004000),
	rri16("and", classU16, cpu.OpANDri, 0x40000000),
	rri16("and.u", classU16, cpu.OpANDriu, 0x44000000),
	rri16("mask", classU16, cpu.OpMASKri, 0x48000000),
	rri16("mask.u", classU16, cpu.OpMASKriu, 0x4c000000),
	rrr("xor", 0, cpu.OpXORrr, 0xf4005000),
	rri16("xor", classU16, cpu.OpXORri, 0x50000000),
	rri16("xor.u", classU16, cpu.OpXORriu, 0x54000000),
	rrr("or", 0, cpu.OpORrr, 0xf4005800),
	rri16("or", classU16, cpu.OpORri, 0x58000000),
	rri16("or.u", classU16, cpu.OpORriu, 0x5c000000),

	// Integer arithmetic.
	rrr("add", 0, cpu.OpADDrr, 0xf4007000),
	rri16("add", classS16, cpu.OpADDri, 0x70000000),
	rrr("sub", 0, cpu.OpSUBrr, 0xf4007400),
	rri16("sub", classS16, cpu.OpSUBri, 0x74000000),
	rrr("div", 0, cpu.OpDIVrr, 0xf4007800),
	rri16("div", classS16, cpu.OpDIVri, 0x78000000),
	rrr("cmp", 0, cpu.OpCMPrr, 0xf4007c00),
	rri16("cmp", classS16, cpu.OpCMPri, 0x7c000000),
	rrr("addu", 0, cpu.OpADDUrr, 0xf4006000),
	rri16("addu", classU16, cpu.OpADDUri, 0x60000000),
	rrr("subu", 0, cpu.OpSUBUrr, 0xf4006400),
	rri16("subu", classU16, cpu.OpSUBUri, 0x64000000),
	rrr("divu", 0, cpu.OpDIVUrr, 0xf4006800),
	rri16("divu", classU16, cpu.OpDIVUri, 0x68000000),
	rrr("mulu", 0, cpu.OpMULUrr, 0xf4006c00),
	rri16("mulu", classU16, cpu.OpMULUri, 0x6c000000),

	// Loads and stores.
	memRI("ld", classGPR, cpu.OpLDri, 0x14000000),
	memScaled("ld", cpu.OpLDrrs, 0xf4001400),
	memRI("ld.b", classGPR, cpu.OpLDBri, 0x1c000000),
	memRI("ld.h", classGPR, cpu.OpLDHri, 0x18000000),
	memRI("ld.d", classGPR64, cpu.OpLDDri, 0x10000000),
	memRI("st", classGPR, cpu.OpSTri, 0x24000000),
	memScaled("st", cpu.OpSTrrs, 0xf4002400),
	memRI("st.b", classGPR, cpu.OpSTBri, 0x2c000000),
	memRI("st.h", classGPR, cpu.OpSTHri, 0x28000000),
	memRI("st.d", classGPR64, cpu.OpSTDri, 0x20000000),

	// Flow control.
	{"br", []operandClass{classPCRel}, 0, cpu.OpBR, encBranch26(0xc0000000)},
	{"br.n", []operandClass{classPCRel}, 0, cpu.OpBRN, encBranch26(0xc4000000)},
	{"bsr", []operandClass{classPCRel}, 0, cpu.OpBSR, encBranch26(0xc8000000)},
	{"bsr.n", []operandClass{classPCRel}, 0, cpu.OpBSRN, encBranch26(0xcc000000)},
	{"bb0", []operandClass{classU5, classGPR, classPCRel}, 0, cpu.OpBB0, encCondBr(0xd0000000)},
	{"bb0.n", []operandClass{classU5, classGPR, classPCRel}, 0, cpu.OpBB0N, encCondBr(0xd4000000)},
	{"bb1", []operandClass{classU5, classGPR, classPCRel}, 0, cpu.OpBB1, encCondBr(0xd8000000)},
	{"bb1.n", []operandClass{classU5, classGPR, classPCRel}, 0, cpu.OpBB1N, encCondBr(0xdc000000)},
	{"bcnd", []operandClass{classCC, classGPR, classPCRel}, 0, cpu.OpBCND, encCondBr(0xe8000000)},
	{"bcnd.n", []operandClass{classCC, classGPR, classPCRel}, 0, cpu.OpBCNDN, encCondBr(0xec000000)},
	{"jmp", []operandClass{classGPR}, 0, cpu.OpJMP, encJump(0xf400c000)},
	{"jmp.n", []operandClass{classGPR}, 0, cpu.OpJMPN, encJump(0xf400c400)},
	{"jsr", []operandClass{classGPR}, 0, cpu.OpJSR, encJump(0xf400c800)},
	{"jsr.n", []operandClass{classGPR}, 0, cpu.OpJSRN, encJump(0xf400cc00)},
	{"tb0", []operandClass{classU5, classGPR, classVec9}, 0, cpu.OpTB0, encTrap(0xf000d000)},
	{"tb1", []operandClass{classU5, classGPR, classVec9}, 0, cpu.OpTB1, encTrap(0xf000d800)},

	// Bitfield unit.
	rrr("clr", 0, cpu.OpCLRrr, 0xf4008000),
	bitfield("clr", cpu.OpCLRri, 0xf0008000),
	rrr("set", 0, cpu.OpSETrr, 0xf4008800),
	bitfield("set", cpu.OpSETri, 0xf0008800),
	rrr("ext", 0, cpu.OpEXTrr, 0xf4009000),
	bitfield("ext", cpu.OpEXTri, 0xf0009000),
	rrr("extu", 0, cpu.OpEXTUrr, 0xf4009800),
	bitfield("extu", cpu.OpEXTUri, 0xf0009800),
	rrr("mak", 0, cpu.OpMAKrr, 0xf400a000),
	bitfield("mak", cpu.OpMAKri, 0xf000a000),
	rrr("rot", 0, cpu.OpROTrr, 0xf400a800),
	{"rot", []operandClass{classGPR, classGPR, lit("<"), classBFO, lit(">")}, 0, cpu.OpROTri, encRotate(0xf000a800)},
	{"ff0", []operandClass{classGPR, classGPR}, 0, cpu.OpFF0, encFindFirst(0xf400ec00)},
	{"ff1", []operandClass{classGPR, classGPR}, 0, cpu.OpFF1, encFindFirst(0xf400e800)},

	// MC88110 graphics unit.
	rrr("padd", cpu.FeatureMC88110, cpu.OpPADD, 0x88006000),
	rrr("psub", cpu.FeatureMC88110, cpu.OpPSUB, 0x88006800),
	rrr("ppack", cpu.FeatureMC88110, cpu.OpPPACK, 0x88006400),
	{"punpk", []operandClass{classGPR, classGPR}, cpu.FeatureMC88110, cpu.OpPUNPK, encFindFirst(0x88003000)},
	rrr("prot", cpu.FeatureMC88110, cpu.OpPROTrr, 0x88007800),
	{"prot", []operandClass{classGPR, classGPR, classPxRot}, cpu.FeatureMC88110, cpu.OpPROTri, encPixelRot(0x88007000)},
}

var encoders = map[cpu.Opcode]func(mc.Inst) uint32{}

func init() {
	for i := range table {
		encoders[table[i].op] = table[i].encode
	}
}

// Encode produces the 32-bit instruction word for a matched or lowered
// instruction.
func Encode(inst mc.Inst) (uint32, error) {
	enc, ok := encoders[inst.Op]
	if !ok {
		return 0, fmt.Errorf("no encoding for opcode %s", inst.Op)
	}
	return enc(inst), nil
}
