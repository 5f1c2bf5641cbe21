package cpu

// Opcode identifies one instruction encoding. Each textual form that
// encodes differently (register vs. immediate, delay-slot vs. not) is a
// distinct opcode, as in the encoding table of the reference assembler.
type Opcode uint16

const (
	OpInvalid Opcode = iota

	// Logical and mask, imm16 and triadic register forms.
	OpANDri
	OpANDriu // and.u: operate on the high half-word
	OpANDrr
	OpMASKri
	OpMASKriu
	OpXORri
	OpXORriu
	OpXORrr
	OpORri
	OpORriu
	OpORrr

	// Integer arithmetic.
	OpADDUri
	OpADDUrr
	OpSUBUri
	OpSUBUrr
	OpDIVUri
	OpDIVUrr
	OpMULUri
	OpMULUrr
	OpADDri
	OpADDrr
	OpSUBri
	OpSUBrr
	OpDIVri
	OpDIVrr
	OpCMPri
	OpCMPrr

	// Loads and stores: imm16 offset and scaled-register forms.
	OpLDri
	OpLDBri
	OpLDHri
	OpLDDri
	OpLDrrs
	OpSTri
	OpSTBri
	OpSTHri
	OpSTDri
	OpSTrrs

	// Flow control.
	OpBR
	OpBRN
	OpBSR
	OpBSRN
	OpBB0
	OpBB0N
	OpBB1
	OpBB1N
	OpBCND
	OpBCNDN
	OpJMP
	OpJMPN
	OpJSR
	OpJSRN
	OpTB0
	OpTB1

	// Bitfield unit, imm (width<offset>) and register forms.
	OpCLRri
	OpCLRrr
	OpSETri
	OpSETrr
	OpEXTri
	OpEXTrr
	OpEXTUri
	OpEXTUrr
	OpMAKri
	OpMAKrr
	OpROTri
	OpROTrr
	OpFF0
	OpFF1

	// MC88110 graphics unit.
	OpPADD
	OpPSUB
	OpPPACK
	OpPUNPK
	OpPROTri
	OpPROTrr

	numOpcodes
)

var opcodeNames = map[Opcode]string{
	OpANDri: "and", OpANDriu: "and.u", OpANDrr: "and",
	OpMASKri: "mask", OpMASKriu: "mask.u",
	OpXORri: "xor", OpXORriu: "xor.u", OpXORrr: "xor",
	OpORri: "or", OpORriu: "or.u", OpORrr: "or",
	OpADDUri: "addu", OpADDUrr: "addu",
	OpSUBUri: "subu", OpSUBUrr: "subu",
	OpDIVUri: "divu", OpDIVUrr: "divu",
	OpMULUri: "mulu", OpMULUrr: "mulu",
	OpADDri: "add", OpADDrr: "add",
	OpSUBri: "sub", OpSUBrr: "sub",
	OpDIVri: "div", OpDIVrr: "div",
	OpCMPri: "cmp", OpCMPrr: "cmp",
	OpLDri: "ld", OpLDBri: "ld.b", OpLDHri: "ld.h", OpLDDri: "ld.d", OpLDrrs: "ld",
	OpSTri: "st", OpSTBri: "st.b", OpSTHri: "st.h", OpSTDri: "st.d", OpSTrrs: "st",
	OpBR: "br", OpBRN: "br.n", OpBSR: "bsr", OpBSRN: "bsr.n",
	OpBB0: "bb0", OpBB0N: "bb0.n", OpBB1: "bb1", OpBB1N: "bb1.n",
	OpBCND: "bcnd", OpBCNDN: "bcnd.n",
	OpJMP: "jmp", OpJMPN: "jmp.n", OpJSR: "jsr", OpJSRN: "jsr.n",
	OpTB0: "tb0", OpTB1: "tb1",
	OpCLRri: "clr", OpCLRrr: "clr", OpSETri: "set", OpSETrr: "set",
	OpEXTri: "ext", OpEXTrr: "ext", OpEXTUri: "extu", OpEXTUrr: "extu",
	OpMAKri: "mak", OpMAKrr: "mak", OpROTri: "rot", OpROTrr: "rot",
	OpFF0: "ff0", OpFF1: "ff1",
	OpPADD: "padd", OpPSUB: "psub", OpPPACK: "ppack", OpPUNPK: "punpk",
	OpPROTri: "prot", OpPROTrr: "prot",
}

// Mnemonic returns the textual mnemonic of an opcode.
func (op Opcode) Mnemonic() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "???"
}

func (op Opcode) String() string { return op.Mnemonic() }
