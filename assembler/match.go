package assembler

import (
	"strings"

	"github.com/grimdal/m88k/cpu"
	"github.com/grimdal/m88k/lexer"
	"github.com/grimdal/m88k/mc"
)

// matchKind classifies a failed match attempt.
type matchKind int

const (
	matchInvalidOperand matchKind = iota
	matchInvalidBFWidth
	matchInvalidBFOffset
	matchInvalidPixelRot
	matchMissingFeature
)

// matchAndEmit scans the candidate table in declaration order and
// emits the first entry whose arity, per-slot operand classes, and
// required features all accept the statement. On failure the most
// specific diagnostic of the best candidate is reported: the candidate
// that got furthest wins, class-specific failures beat the generic
// one, and a missing feature beats both (the operands were fine).
func (a *Assembler) matchAndEmit(idLoc lexer.Loc, operands []Operand) bool {
	mnemonic := operands[0].Token()
	seenMnemonic := false

	type failure struct {
		kind    matchKind
		errIdx  int
		missing cpu.Feature
	}
	var best *failure
	record := func(f failure) {
		if best == nil || betterFailure(f.kind, f.errIdx, best.kind, best.errIdx) {
			best = &f
		}
	}

	for i := range table {
		e := &table[i]
		if e.mnemonic != mnemonic {
			continue
		}
		seenMnemonic = true

		nops := len(operands) - 1
		if len(e.classes) != nops {
			errIdx := nops + 1
			if len(e.classes) < nops {
				errIdx = len(e.classes) + 1
			}
			record(failure{kind: matchInvalidOperand, errIdx: errIdx})
			continue
		}

		ok := true
		for j := range e.classes {
			if !e.classes[j].match(operands[j+1]) {
				record(failure{kind: e.classes[j].failKind(), errIdx: j + 1})
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		if !a.features.HasAll(e.features) {
			record(failure{kind: matchMissingFeature, missing: e.features &^ a.features})
			continue
		}

		a.out.EmitInstruction(buildInst(e, operands, idLoc))
		return true
	}

	if !seenMnemonic {
		a.errorf(idLoc, "invalid instruction%s", spellCheck(mnemonic))
		return false
	}

	switch best.kind {
	case matchMissingFeature:
		a.errorf(idLoc, "instruction requires the following: %s",
			strings.Join(best.missing.Names(), ", "))
	case matchInvalidBFWidth:
		a.errorf(operands[best.errIdx].Start(), "invalid bitfield width")
	case matchInvalidBFOffset:
		a.errorf(operands[best.errIdx].Start(), "invalid bitfield offset")
	case matchInvalidPixelRot:
		a.errorf(operands[best.errIdx].Start(), "invalid pixel rotation size")
	default:
		if best.errIdx >= len(operands) {
			a.errorf(idLoc, "Too few operands for instruction")
		} else {
			a.errorf(operands[best.errIdx].Start(), "Invalid operand for instruction")
		}
	}
	return false
}

// betterFailure orders failed candidates: missing-feature first (the
// operands were fine), then a class-specific failure over the generic
// one, then the furthest failing operand.
func betterFailure(kind matchKind, errIdx int, bestKind matchKind, bestIdx int) bool {
	if (kind == matchMissingFeature) != (bestKind == matchMissingFeature) {
		return kind == matchMissingFeature
	}
	if (kind != matchInvalidOperand) != (bestKind != matchInvalidOperand) {
		return kind != matchInvalidOperand
	}
	return errIdx > bestIdx
}

// buildInst converts the matched operands into the encoded
// instruction. Literal token markers contribute no encoding bits.
func buildInst(e *entry, operands []Operand, loc lexer.Loc) mc.Inst {
	inst := mc.Inst{Op: e.op, Loc: loc}
	for j := range e.classes {
		if e.classes[j].lit != "" {
			continue
		}
		o := operands[j+1]
		if o.isReg() {
			inst.Operands = append(inst.Operands, mc.RegOperand(o.Reg()))
		} else {
			inst.Operands = append(inst.Operands, mc.ExprOperand(o.Imm()))
		}
	}
	return inst
}

// spellCheck suggests the nearest valid mnemonic by edit distance, or
// an empty string if nothing is close.
func spellCheck(mnemonic string) string {
	const maxDist = 2
	bestDist := maxDist + 1
	bestName := ""
	for i := range table {
		name := table[i].mnemonic
		if name == bestName {
			continue
		}
		if d := editDistance(mnemonic, name); d < bestDist {
			bestDist = d
			bestName = name
		}
	}
	if bestName == "" {
		return ""
	}
	return ", did you mean: " + bestName + "?"
}

func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j-1]+cost, min(prev[j]+1, cur[j-1]+1))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
