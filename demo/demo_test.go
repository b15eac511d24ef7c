package demo

import (
	"testing"

	"github.com/ahead-sim/revsim/asm"
	"github.com/ahead-sim/revsim/machine"
)

func TestIncrementRoundTrip(t *testing.T) {
	m := machine.New()
	if err := m.LoadProgram(Increment(), nil); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	m.Registers[1] = 5
	m.Registers[2] = 1

	if _, err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Registers[1] != 8 {
		t.Fatalf("r1 = %d, want 8", m.Registers[1])
	}

	for i := 0; i < 3; i++ {
		if err := m.ReverseStep(); err != nil {
			t.Fatalf("ReverseStep %d: %v", i, err)
		}
	}
	if m.Registers[1] != 5 {
		t.Fatalf("r1 after reverse = %d, want 5", m.Registers[1])
	}
}

func TestLoopSourceParsesAndHalts(t *testing.T) {
	p := asm.NewParser()
	program, err := p.Parse(LoopSource)
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
	if !m.Halted() {
		t.Fatal("machine did not halt")
	}
	if m.Registers[2] != 55 {
		t.Fatalf("r2 = %d, want 55", m.Registers[2])
	}
}

func TestBuggyProgramCorrupts(t *testing.T) {
	m := machine.New()
	if err := m.LoadProgram(BuggyProgram(), nil); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if _, err := m.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if m.Registers[2] == 15 {
		t.Fatal("r2 = 15, want the corrupted value (bug did not trigger)")
	}
}
