package cpu

// CondCodes maps the symbolic condition-code mnemonics of bcnd/tcnd to
// their encoded 5-bit match field values.
var CondCodes = map[string]int64{
	"eq0": 0x2,
	"ne0": 0xd,
	"gt0": 0x1,
	"lt0": 0xc,
	"ge0": 0x3,
	"le0": 0xe,
}
