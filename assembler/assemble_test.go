package assembler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grimdal/m88k/assembler"
	"github.com/grimdal/m88k/mc"
)

// capture collects the emission stream of one test run.
type capture struct {
	insts   []mc.Inst
	labels  []string
	req8110 bool
}

func (c *capture) EmitInstruction(inst mc.Inst) { c.insts = append(c.insts, inst) }
func (c *capture) EmitLabel(name string)        { c.labels = append(c.labels, name) }
func (c *capture) EmitRequires88110()           { c.req8110 = true }

// assembleWords assembles source and returns the encoded instruction
// words. Assembly must succeed.
func assembleWords(t *testing.T, src string) []uint32 {
	t.Helper()
	out := &capture{}
	asm := assembler.New(out)
	require.NoError(t, asm.Assemble(src), "source:\n%s", src)

	words := make([]uint32, len(out.insts))
	for i, inst := range out.insts {
		w, err := assembler.Encode(inst)
		require.NoError(t, err, "encoding %s", inst)
		words[i] = w
	}
	return words
}

// assembleErr assembles source expecting failure and returns the error
// text.
func assembleErr(t *testing.T, src string) string {
	t.Helper()
	asm := assembler.New(&capture{})
	err := asm.Assemble(src)
	require.Error(t, err, "source:\n%s", src)
	return err.Error()
}

func TestBasicEncodings(t *testing.T) {
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"ADD_Imm", "add %r3, %r4, 100", 0x70640064},
		{"ADD_Reg", "add %r1, %r2, %r3", 0xf4227003},
		{"ADDU_Imm", "addu %r1, %r2, 0xffff", 0x6022ffff},
		{"SUB_AltName", "sub %r1, %sp, 4", 0x743f0004},
		{"AND_Reg", "and %r1, %r2, %r3", 0xf4224003},
		{"AND_Imm", "and %r1, %r2, 10", 0x4022000a},
		{"OR_Upper", "or.u %r1, %r0, 0x1234", 0x5c201234},
		{"MASK", "mask %r4, %r5, 0xff", 0x488500ff},
		{"CMP_Imm", "cmp %r2, %r3, -1", 0x7c43ffff},
		{"LD", "ld %r5, %r6, 32", 0x14a60020},
		{"LD_Scaled", "ld %r5, %r6[%r7]", 0xf4a61407},
		{"LD_Byte", "ld.b %r5, %r6, 1", 0x1ca60001},
		{"ST", "st %r5, %r6, 32", 0x24a60020},
		{"ST_Double", "st.d %r6, %r8, 0", 0x20c80000},
		{"JMP", "jmp %r1", 0xf400c001},
		{"JSR_Delay", "jsr.n %r2", 0xf400cc02},
		{"FF1", "ff1 %r3, %r4", 0xf460e804},
		{"TB0", "tb0 0, %r3, 0x1ff", 0xf003d1ff},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			words := assembleWords(t, tc.src)
			require.Len(t, words, 1)
			assert.Equal(t, tc.want, words[0], "%s: got %08x", tc.src, words[0])
		})
	}
}

func TestBranchEncodings(t *testing.T) {
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"BR", "br 8", 0xc0000002},
		{"BR_Delay", "br.n 8", 0xc4000002},
		{"BR_Back", "br -8", 0xc3fffffe},
		{"BSR", "bsr 0x1000", 0xc8000400},
		{"BB0", "bb0 3, %r2, 12", 0xd0620003},
		{"BB1_Delay", "bb1.n 31, %r1, 4", 0xdfe10001},
		{"BCND_Sym", "bcnd eq0, %r2, 8", 0xe8420002},
		{"BCND_Numeric", "bcnd 2, %r2, 8", 0xe8420002},
		{"BCND_NE0", "bcnd ne0, %r7, 8", 0xe9a70002},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			words := assembleWords(t, tc.src)
			require.Len(t, words, 1)
			assert.Equal(t, tc.want, words[0], "%s: got %08x", tc.src, words[0])
		})
	}
}

// Numeric condition codes that do not fit the 5-bit field are cast to
// 32 bits and passed through to matching: a value that wraps into
// range is accepted as if written in range, one that does not is
// rejected by the operand class.
func TestConditionCodeCast(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, "bcnd 0x100000002, %r2, 8")
	require.Len(t, words, 1)
	assert.Equal(assembleWords(t, "bcnd eq0, %r2, 8"), words)

	assert.Contains(assembleErr(t, "bcnd 40, %r2, 8"),
		"Invalid operand for instruction")
}

// Symbolic branch targets encode with a zero displacement field; the
// relocation fills it in later.
func TestSymbolicBranch(t *testing.T) {
	assert := assert.New(t)

	out := &capture{}
	asm := assembler.New(out)
	require.NoError(t, asm.Assemble("loop: add %r3, %r4, 100\nbr loop\nbcnd eq0, %r2, loop"))

	assert.Equal([]string{"loop"}, out.labels)
	require.Len(t, out.insts, 3)

	br := out.insts[1]
	require.Len(t, br.Operands, 1)
	assert.Equal(mc.KindExpr, br.Operands[0].Kind)
	assert.Equal("loop", br.Operands[0].Expr.String())

	w, err := assembler.Encode(br)
	require.NoError(t, err)
	assert.Equal(uint32(0xc0000000), w)
}

func TestBitfieldEncodings(t *testing.T) {
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"CLR", "clr %r2, %r3, 5<7>", 0xf04380a7},
		{"SET", "set %r2, %r3, 5<7>", 0xf04388a7},
		{"EXT", "ext %r4, %r5, 10<2>", 0xf0859142},
		{"EXTU", "extu %r4, %r5, 10<2>", 0xf0859942},
		{"MAK", "mak %r4, %r5, 10<2>", 0xf085a142},
		{"CLR_Reg", "clr %r2, %r3, %r4", 0xf4438004},
		{"ROT_Imm", "rot %r4, %r5, <9>", 0xf085a809},
		{"ROT_Reg", "rot %r4, %r5, %r6", 0xf485a806},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			words := assembleWords(t, tc.src)
			require.Len(t, words, 1)
			assert.Equal(t, tc.want, words[0], "%s: got %08x", tc.src, words[0])
		})
	}
}

// A bare width operand is really an offset with the width elided: both
// spellings must encode identically.
func TestBitfieldBareOffset(t *testing.T) {
	assert := assert.New(t)

	for n := 0; n < 32; n += 7 {
		full := assembleWords(t, fmt.Sprintf("clr %%r2, %%r3, 0<%d>", n))
		bare := assembleWords(t, fmt.Sprintf("clr %%r2, %%r3, %d", n))
		assert.Equal(full, bare, "offset %d", n)
	}
}

func TestGraphicsInstructions(t *testing.T) {
	tests := []struct {
		name, src string
		want      uint32
	}{
		{"PADD", "padd %r1, %r2, %r3", 0x88226003},
		{"PSUB", "psub %r1, %r2, %r3", 0x88226803},
		{"PPACK", "ppack %r1, %r2, %r3", 0x88226403},
		{"PUNPK", "punpk %r1, %r2", 0x88203002},
		{"PROT_Reg", "prot %r1, %r2, %r3", 0x88227803},
		{"PROT_Imm", "prot %r1, %r2, <12>", 0x88227180},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			words := assembleWords(t, ".requires_88110\n"+tc.src)
			require.Len(t, words, 1)
			assert.Equal(t, tc.want, words[0], "%s: got %08x", tc.src, words[0])
		})
	}
}

func TestFeatureGating(t *testing.T) {
	assert := assert.New(t)

	msg := assembleErr(t, "padd %r1, %r2, %r3")
	assert.Contains(msg, "instruction requires the following: mc88110")

	// The directive unlocks the graphics unit mid-run.
	out := &capture{}
	asm := assembler.New(out)
	err := asm.Assemble(".requires_88110\npadd %r1, %r2, %r3")
	assert.NoError(err)
	assert.True(out.req8110)
	assert.Len(out.insts, 1)

	// SetCPU does the same up front.
	asm = assembler.New(&capture{})
	require.NoError(t, asm.SetCPU("mc88110"))
	assert.NoError(asm.Assemble("padd %r1, %r2, %r3"))

	assert.Error(asm.SetCPU("mc68000"))
}

// A misaligned pixel rotate amount is truncated with a warning, and the
// run still succeeds.
func TestPixelRotateTruncation(t *testing.T) {
	assert := assert.New(t)

	out := &capture{}
	asm := assembler.New(out)
	err := asm.Assemble(".requires_88110\nprot %r1, %r2, <14>")
	assert.NoError(err)

	diags := asm.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(assembler.SevWarning, diags[0].Sev)
	assert.Contains(diags[0].String(), "Removed lower 2 bits of expression")

	require.Len(t, out.insts, 1)
	w, err := assembler.Encode(out.insts[0])
	require.NoError(t, err)
	aligned := assembleWords(t, ".requires_88110\nprot %r1, %r2, <12>")
	assert.Equal(aligned[0], w)
}

func TestBranchRange(t *testing.T) {
	assert := assert.New(t)

	// 26-bit branches take displacements up to 2^28-1.
	assert.Contains(assembleErr(t, "br 0x10000000"), "offset out of range")
	assert.Contains(assembleErr(t, "br -0x10000004"), "offset out of range")
	// 16-bit branches stop at 2^18-1.
	assert.Contains(assembleErr(t, "bb0 3, %r2, 0x40000"), "offset out of range")
	// Branch targets are word-aligned.
	assert.Contains(assembleErr(t, "br 7"), "offset out of range")
	// The constant side of symbol+constant is checked conservatively.
	assert.Contains(assembleErr(t, "br target+0x10000000"), "offset out of range")

	words := assembleWords(t, "br 0x0ffffffc")
	assert.Equal(uint32(0xc3ffffff), words[0])
}

func TestDiagnostics(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name, src, want string
	}{
		{"SpellCheck", "adddd %r1, %r2, %r3", "invalid instruction, did you mean: add?"},
		{"NoSuggestion", "frobnicate %r1", "invalid instruction"},
		{"TooFew", "add %r1, %r2", "Too few operands for instruction"},
		{"WrongClass", "and %x1, %r2, %r3", "Invalid operand for instruction"},
		{"BadWidth", "clr %r2, %r3, 32<4>", "invalid bitfield width"},
		{"BadRegister", "add %r1, %r99, 4", "invalid register"},
		{"BadRegisterNumeric", "jmp %5", "invalid register"},
		{"TrailingJunk", "jmp %r1 %r2", "unexpected token in argument list"},
		{"UnknownDirective", ".frobnicate", "unknown directive"},
		{"NotAStatement", "42", "expected instruction mnemonic"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(assembleErr(t, tc.src), tc.want, tc.src)
		})
	}
}

// Every statement is diagnosed in one run; the summary counts them.
func TestErrorRecovery(t *testing.T) {
	assert := assert.New(t)

	out := &capture{}
	asm := assembler.New(out)
	err := asm.Assemble("add %r1, %r99, 4\nadd %r1, %r2, 4\nfrobnicate %r1")
	require.Error(t, err)
	assert.Contains(err.Error(), "and 1 more error")
	assert.Len(out.insts, 1)

	errs := 0
	for _, d := range asm.Diagnostics() {
		if d.Sev == assembler.SevError {
			errs++
		}
	}
	assert.Equal(2, errs)
}

// The first matching table entry wins, every time.
func TestMatchDeterminism(t *testing.T) {
	assert := assert.New(t)

	src := "and %r1, %r2, %r3\nand %r1, %r2, 10\nld %r5, %r6, 32\nld %r5, %r6[%r7]"
	first := assembleWords(t, src)
	for i := 0; i < 10; i++ {
		assert.Equal(first, assembleWords(t, src))
	}
}

func TestRelocationOperands(t *testing.T) {
	assert := assert.New(t)

	out := &capture{}
	asm := assembler.New(out)
	require.NoError(t, asm.Assemble("or.u %r2, %r0, hi16(addr)\nor %r2, %r2, lo16(addr)"))
	require.Len(t, out.insts, 2)

	hi := out.insts[0].Operands[2]
	assert.Equal(mc.KindExpr, hi.Kind)
	assert.Equal("hi16(addr)", hi.Expr.String())
	lo := out.insts[1].Operands[2]
	assert.Equal("lo16(addr)", lo.Expr.String())
}

func TestEvalExpressions(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, "add %r3, %r4, $(25 * 4)")
	assert.Equal(uint32(0x70640064), words[0])
}

func TestComments(t *testing.T) {
	assert := assert.New(t)

	words := assembleWords(t, "; header\nadd %r3, %r4, 100 ; trailing\n\n")
	require.Len(t, words, 1)
	assert.Equal(uint32(0x70640064), words[0])
}
