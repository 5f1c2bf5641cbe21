package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grimdal/m88k/assembler"
	"github.com/grimdal/m88k/mc"
	"github.com/k0kubun/pp/v3"
)

// program collects the emission stream of one assembly run.
type program struct {
	insts      []mc.Inst
	labels     map[string]int
	needs88110 bool
}

func newProgram() *program {
	return &program{labels: map[string]int{}}
}

func (p *program) EmitInstruction(inst mc.Inst) { p.insts = append(p.insts, inst) }

func (p *program) EmitLabel(name string) { p.labels[name] = len(p.insts) }

func (p *program) EmitRequires88110() { p.needs88110 = true }

func main() {
	cpuName := flag.String("cpu", "", "CPU profile (mc88100 or mc88110)")
	verbose := flag.Bool("v", false, "dump the parsed instruction stream")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-cpu name] [-v] <inputfile>\n", os.Args[0])
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	prog := newProgram()
	asm := assembler.New(prog)
	if *cpuName != "" {
		if err := asm.SetCPU(*cpuName); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	asmErr := asm.Assemble(string(data))
	for _, d := range asm.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}
	if asmErr != nil {
		os.Exit(1)
	}

	if *verbose {
		pp.Fprintln(os.Stderr, prog)
	}

	for i, inst := range prog.insts {
		word, err := assembler.Encode(inst)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encoding error: %v\n", err)
			os.Exit(1)
		}
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Printf("%08x", word)
	}
	fmt.Println()
}
