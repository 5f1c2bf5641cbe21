package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grimdal/m88k/lexer"
)

func parseOne(t *testing.T, src string) Expr {
	t.Helper()
	p := NewParser(lexer.New(src))
	e, err := p.Parse()
	require.NoError(t, err, src)
	return e
}

func TestParseConstants(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		src  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x10", 16},
		{"0xFFFF", 65535},
		{"-5", -5},
		{"10+20", 30},
		{"10-4", 6},
		{"1+2+3", 6},
		{"(2+3)", 5},
		{"$(2 + 3)", 5},
		{"$(1 << 16)", 65536},
		{"$((7 // 2) * 4)", 12},
	}
	for _, tc := range tests {
		v, ok := ConstantValue(parseOne(t, tc.src))
		assert.True(ok, tc.src)
		assert.Equal(tc.want, v, tc.src)
	}
}

func TestParseSymbols(t *testing.T) {
	assert := assert.New(t)

	e := parseOne(t, "target")
	sym, ok := e.(*SymbolRef)
	assert.True(ok)
	assert.Equal("target", sym.Name)
	assert.Equal(None, sym.Variant)

	e = parseOne(t, "hi16(addr)")
	sym, ok = e.(*SymbolRef)
	assert.True(ok)
	assert.Equal("addr", sym.Name)
	assert.Equal(AbsHi, sym.Variant)

	e = parseOne(t, "lo16(addr)")
	sym = e.(*SymbolRef)
	assert.Equal(AbsLo, sym.Variant)
}

// A symbol plus a constant stays a BinaryAdd; the constant side is
// visible for later range checks.
func TestSymbolPlusConstant(t *testing.T) {
	assert := assert.New(t)

	e := parseOne(t, "target+8")
	add, ok := e.(*BinaryAdd)
	assert.True(ok)
	_, isSym := add.LHS.(*SymbolRef)
	assert.True(isSym)
	v, ok := ConstantValue(add.RHS)
	assert.True(ok)
	assert.Equal(int64(8), v)

	e = parseOne(t, "target-8")
	add = e.(*BinaryAdd)
	v, _ = ConstantValue(add.RHS)
	assert.Equal(int64(-8), v)
}

func TestParseErrors(t *testing.T) {
	assert := assert.New(t)

	for _, src := range []string{
		"target-other", // only constants may follow '-'
		"(1+2",
		"hi16(",
		"hi16(3)",
		"$(1/0)",
		"$('text')",
	} {
		p := NewParser(lexer.New(src))
		_, err := p.Parse()
		assert.Error(err, src)
	}
}

func TestExprString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("42", parseOne(t, "42").String())
	assert.Equal("hi16(addr)", parseOne(t, "hi16(addr)").String())
	assert.Equal("target+8", parseOne(t, "target+8").String())
	assert.Equal("target-8", parseOne(t, "target-8").String())
}
