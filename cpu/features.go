package cpu

import "strings"

// Feature is a bitset of CPU-variant capabilities. Candidate encodings
// list the features they need; the matcher only accepts an entry whose
// required features are a subset of the active set.
type Feature uint8

const (
	// FeatureMC88100 covers the base MC88100 instruction set.
	FeatureMC88100 Feature = 1 << iota
	// FeatureMC88110 covers the MC88110 extensions (graphics unit,
	// extended register file).
	FeatureMC88110
)

var featureNames = []struct {
	bit  Feature
	name string
}{
	{FeatureMC88100, "mc88100"},
	{FeatureMC88110, "mc88110"},
}

// HasAll reports whether every feature in req is present in f.
func (f Feature) HasAll(req Feature) bool { return f&req == req }

// Names lists the names of the set features, in declaration order.
func (f Feature) Names() []string {
	var names []string
	for _, fn := range featureNames {
		if f&fn.bit != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Feature) String() string { return strings.Join(f.Names(), ",") }

// Profiles maps CPU names to the feature set they enable.
var Profiles = map[string]Feature{
	"mc88100": FeatureMC88100,
	"mc88110": FeatureMC88100 | FeatureMC88110,
}

// DefaultCPU is the profile a new parser context starts with.
const DefaultCPU = "mc88100"
