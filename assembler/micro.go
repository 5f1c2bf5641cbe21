package assembler

import (
	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/expr"
	"github.com/grimdal/m88k/lexer"
)

// parseStatus is the outcome of a micro-parser: it matched and pushed
// operands, it did not apply (the caller falls back to generic
// parsing), or it committed and then failed (the statement is
// abandoned).
type parseStatus int

const (
	noMatch parseStatus = iota
	matched
	failedMatch
)

// microParser is one specialized operand parsing routine.
type microParser func(a *Assembler, ops *[]Operand) parseStatus

// microParsers dispatches micro-parsers per mnemonic and operand slot
// (1-based, counting statement-level parseOperand calls). This is the
// static counterpart of the candidate table's operand-class metadata:
// the slot's expected class picks the parser.
var microParsers = map[string]map[int]microParser{
	"br":     {1: parsePCRel26},
	"br.n":   {1: parsePCRel26},
	"bsr":    {1: parsePCRel26},
	"bsr.n":  {1: parsePCRel26},
	"bb0":    {3: parsePCRel16},
	"bb0.n":  {3: parsePCRel16},
	"bb1":    {3: parsePCRel16},
	"bb1.n":  {3: parsePCRel16},
	"bcnd":   {1: parseConditionCode, 3: parsePCRel16},
	"bcnd.n": {1: parseConditionCode, 3: parsePCRel16},
	"clr":    {3: parseBFWidth, 4: parseBFOffset},
	"set":    {3: parseBFWidth, 4: parseBFOffset},
	"ext":    {3: parseBFWidth, 4: parseBFOffset},
	"extu":   {3: parseBFWidth, 4: parseBFOffset},
	"mak":    {3: parseBFWidth, 4: parseBFOffset},
	"rot":    {3: parseBFOffset},
	"prot":   {3: parsePixelRot},
}

// parseBFWidth parses the width of a bitfield specifier. A bare
// integer with no following '<' is really the offset with the width
// elided; it is rewritten to the canonical width-then-offset sequence
// 0 '<' value '>' so matching sees one shape.
func parseBFWidth(a *Assembler, ops *[]Operand) parseStatus {
	startLoc := a.lex.Peek().Loc
	hasWidth := false
	var width int64
	if tok := a.lex.Peek(); tok.Is(lexer.Integer) {
		width = tok.Val
		hasWidth = true
		a.lex.Next()
	}
	isReallyOffset := false
	if a.lex.Peek().IsNot(lexer.Less) {
		if !hasWidth {
			return noMatch
		}
		isReallyOffset = true
	}

	endLoc := a.lex.Peek().Loc
	if isReallyOffset {
		*ops = append(*ops,
			immOperand(&expr.Constant{Value: 0}, startLoc, endLoc),
			tokenOperand("<", endLoc),
			immOperand(&expr.Constant{Value: width}, startLoc, endLoc),
			tokenOperand(">", endLoc),
		)
	} else {
		*ops = append(*ops, immOperand(&expr.Constant{Value: width}, startLoc, endLoc))
	}
	return matched
}

// parseBFOffset parses a '<offset>' group. Once the '<' is consumed
// the group is committed: a missing integer or '>' is a hard failure.
func parseBFOffset(a *Assembler, ops *[]Operand) parseStatus {
	startLoc := a.lex.Peek().Loc
	if a.lex.Peek().IsNot(lexer.Less) {
		return noMatch
	}
	a.lex.Next()
	tok := a.lex.Peek()
	if tok.IsNot(lexer.Integer) {
		return failedMatch
	}
	offset := tok.Val
	a.lex.Next()
	if a.lex.Peek().IsNot(lexer.Greater) {
		return failedMatch
	}
	a.lex.Next()

	endLoc := a.lex.Peek().Loc
	*ops = append(*ops,
		immOperand(&expr.Constant{Value: offset}, startLoc, endLoc),
		tokenOperand(">", endLoc),
	)
	return matched
}

// parsePixelRot parses a '<amount>' pixel-rotate group. The hardware
// rotates in steps of 4 bits; a misaligned amount is truncated with a
// warning rather than rejected.
func parsePixelRot(a *Assembler, ops *[]Operand) parseStatus {
	startLoc := a.lex.Peek().Loc
	if a.lex.Peek().IsNot(lexer.Less) {
		return noMatch
	}
	a.lex.Next()
	tok := a.lex.Peek()
	if tok.IsNot(lexer.Integer) {
		return failedMatch
	}
	rotateSize := tok.Val
	a.lex.Next()
	if a.lex.Peek().IsNot(lexer.Greater) {
		return failedMatch
	}
	a.lex.Next()

	if rotateSize&0x3 != 0 {
		a.warnf(startLoc, "Removed lower 2 bits of expression")
		rotateSize &^= 0x3
	}
	endLoc := a.lex.Peek().Loc
	*ops = append(*ops, immOperand(&expr.Constant{Value: rotateSize}, startLoc, endLoc))
	return matched
}

// parseConditionCode parses the condition operand of bcnd/tcnd: either
// a symbolic mnemonic, or a numeric code. Numbers that fit the 5-bit
// field fall through to the generic immediate path; larger ones keep
// the reference assembler's cast-and-accept behavior.
func parseConditionCode(a *Assembler, ops *[]Operand) parseStatus {
	startLoc := a.lex.Peek().Loc
	var cc int64

	tok := a.lex.Peek()
	switch {
	case tok.Is(lexer.Integer):
		if tok.Val >= 0 && tok.Val <= 31 {
			return noMatch
		}
		cc = int64(uint32(tok.Val))
	case tok.Is(lexer.Identifier):
		code, ok := cpu.CondCodes[tok.Text]
		if !ok {
			return noMatch
		}
		cc = code
	default:
		return noMatch
	}
	a.lex.Next()

	endLoc := a.lex.Peek().Loc
	*ops = append(*ops, immOperand(&expr.Constant{Value: cc}, startLoc, endLoc))
	return matched
}

// parsePCRel parses a PC-relative displacement and range-checks it
// against [-2^bits, 2^bits-1]; branch targets are word-aligned so odd
// displacements are out of range too. A symbol plus constant is
// conservatively checked on the constant operand alone, matching the
// GNU assembler.
func parsePCRel(a *Assembler, ops *[]Operand, bits uint) parseStatus {
	startLoc := a.lex.Peek().Loc
	e, err := a.exprs.Parse()
	if err != nil {
		return noMatch
	}

	minVal := -(int64(1) << bits)
	maxVal := (int64(1) << bits) - 1
	outOfRange := func(e expr.Expr) bool {
		v, ok := expr.ConstantValue(e)
		return ok && (v&1 != 0 || v < minVal || v > maxVal)
	}

	if outOfRange(e) {
		a.errorf(startLoc, "offset out of range")
		return failedMatch
	}
	if be, ok := e.(*expr.BinaryAdd); ok {
		if outOfRange(be.LHS) || outOfRange(be.RHS) {
			a.errorf(startLoc, "offset out of range")
			return failedMatch
		}
	}

	endLoc := a.lex.Peek().Loc
	*ops = append(*ops, immOperand(e, startLoc, endLoc))
	return matched
}

func parsePCRel16(a *Assembler, ops *[]Operand) parseStatus {
	return parsePCRel(a, ops, 18)
}

func parsePCRel26(a *Assembler, ops *[]Operand) parseStatus {
	return parsePCRel(a, ops, 28)
}
