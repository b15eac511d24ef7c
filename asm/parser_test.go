package asm

import (
	"errors"
	"testing"

	"github.com/ahead-sim/revsim/isa"
	"github.com/ahead-sim/revsim/machine"
)

const loopSource = `
; Example mixed reversible and irreversible loop

ADD r1, r0, 10      ; r1 = 10
ADD r2, r0, 0       ; r2 = 0
ADD r3, r0, 1       ; r3 = 1

loop_start:
BEQ r1, r0, done    ; if r1 == 0, exit loop

RADD r2, r1         ; r2 = r2 + r1
RXOR r2, r1         ; reversible mix
RXOR r2, r1         ; unmix

SUB r1, r1, r3      ; r1 = r1 - 1

BEQ r0, r0, loop_start

done:
HALT
`

func TestParseLoopProgram(t *testing.T) {
	p := NewParser()
	program, err := p.Parse(loopSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program) != 10 {
		t.Fatalf("len(program) = %d, want 10", len(program))
	}

	wantLoopStart, ok := p.Labels["loop_start"]
	if !ok || wantLoopStart != 3 {
		t.Errorf("labels[loop_start] = %d, ok=%v, want 3,true", wantLoopStart, ok)
	}
	wantDone, ok := p.Labels["done"]
	if !ok || wantDone != 9 {
		t.Errorf("labels[done] = %d, ok=%v, want 9,true", wantDone, ok)
	}

	// Invariant 8: labels point at the instruction immediately following
	// the label declaration.
	if program[wantLoopStart].Op != isa.BEQ {
		t.Errorf("program[loop_start] = %v, want BEQ", program[wantLoopStart].Op)
	}
	if program[wantDone].Op != isa.HALT {
		t.Errorf("program[done] = %v, want HALT", program[wantDone].Op)
	}
}

// TestParseThenRunLoop covers scenario S2 via the parser, confirming
// invariant 8's round-trip claim end to end.
func TestParseThenRunLoop(t *testing.T) {
	p := NewParser()
	program, err := p.Parse(loopSource)
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
		t.Errorf("steps = %d, want < 1000", steps)
	}
	if m.Registers[2] != 55 {
		t.Errorf("r2 = %d, want 55", m.Registers[2])
	}
}

func TestParseRejectsDuplicateLabel(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("a:\nHALT\na:\nHALT\n")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Parse with duplicate label: err = %v, want ErrParse", err)
	}
}

func TestParseRejectsUnknownMnemonic(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("NOTANOP r1, r2\n")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Parse with unknown mnemonic: err = %v, want ErrParse", err)
	}
}

func TestParseRejectsMalformedOperand(t *testing.T) {
	p := NewParser()
	_, err := p.Parse("ADD r1, r0, notanumber\n")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Parse with malformed operand: err = %v, want ErrParse", err)
	}
}

func TestParseRegisterTokenForms(t *testing.T) {
	p := NewParser()
	program, err := p.Parse("RXOR x3, x5\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program) != 1 {
		t.Fatalf("len(program) = %d, want 1", len(program))
	}
	if *program[0].Rd != 3 || *program[0].Rs1 != 5 {
		t.Errorf("Rd=%v Rs1=%v, want 3,5", program[0].Rd, program[0].Rs1)
	}
}

func TestParseCommentOnlyAndBlankLinesIgnored(t *testing.T) {
	p := NewParser()
	program, err := p.Parse("; just a comment\n\nHALT\n; trailing\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(program) != 1 {
		t.Fatalf("len(program) = %d, want 1", len(program))
	}
}
