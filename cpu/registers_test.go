package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name string
		want Reg
	}{
		{"r0", R0},
		{"r31", R31},
		{"x0", X0},
		{"x31", X31},
		{"cr0", CR0},
		{"cr20", CR20},
		{"fcr0", FCR0},
		{"fcr63", FCR63},
		{"sp", R31},
		{"fp", R30},
	}
	for _, tc := range tests {
		r, ok := Resolve(tc.name)
		assert.True(ok, tc.name)
		assert.Equal(tc.want, r, tc.name)
	}

	_, ok := Resolve("r32")
	assert.False(ok)
	_, ok = Resolve("pc")
	assert.False(ok)
}

// Alternate spellings resolve to the same register as the primary name.
func TestAltNamesAlias(t *testing.T) {
	assert := assert.New(t)

	sp, _ := Resolve("sp")
	r31, _ := Resolve("r31")
	assert.Equal(r31, sp)

	fp, _ := Resolve("fp")
	r30, _ := Resolve("r30")
	assert.Equal(r30, fp)
}

func TestRegNum(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint32(0), R0.Num())
	assert.Equal(uint32(31), R31.Num())
	assert.Equal(uint32(5), X5.Num())
	assert.Equal(uint32(20), CR20.Num())
	assert.Equal(uint32(63), FCR63.Num())
	// Pairs encode as the high (even) register.
	assert.Equal(uint32(6), R6R7.Num())
}

func TestPairHi(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(R0, R0R1.PairHi())
	assert.Equal(R6, R6R7.PairHi())
	assert.Equal(R30, R30R31.PairHi())
	// Non-pairs are returned unchanged.
	assert.Equal(R7, R7.PairHi())
	assert.Equal(X3, X3.PairHi())
}

func TestRegString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("r17", R17.String())
	assert.Equal("x2", X2.String())
	assert.Equal("fcr62", (FCR0 + 62).String())
	assert.Equal("r6_r7", R6R7.String())
}

func TestProfiles(t *testing.T) {
	assert := assert.New(t)

	base := Profiles["mc88100"]
	full := Profiles["mc88110"]
	assert.True(base.HasAll(FeatureMC88100))
	assert.False(base.HasAll(FeatureMC88110))
	assert.True(full.HasAll(FeatureMC88100 | FeatureMC88110))

	missing := FeatureMC88110 &^ base
	assert.Equal([]string{"mc88110"}, missing.Names())
}
