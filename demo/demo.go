// Package demo supplies the canned programs used by the cmd/revsim
// subcommands and by integration tests: the three-instruction counter
// increment, the mixed reversible/irreversible counting loop, and the
// intentionally buggy program used to exercise the time-travel debugger.
package demo

import "github.com/ahead-sim/revsim/isa"

// Increment returns a program that adds r2 into r1 three times via RADD,
// then halts. Callers typically seed r1=5, r2=1 before running it, which
// drives r1 to 8.
func Increment() []isa.Instruction {
	return []isa.Instruction{
		isa.NewRADD(1, 2),
		isa.NewRADD(1, 2),
		isa.NewRADD(1, 2),
		isa.NewHALT(),
	}
}

// LoopSource is the assembly text for a mixed reversible/irreversible
// counting loop: r1 counts down from 10, r2 accumulates the sum 10+9+...+1
// via a reversible RADD wrapped in a pointless but harmless RXOR/RXOR
// pair, and the loop exits via an ordinary BEQ once r1 reaches zero.
const LoopSource = `
; Example mixed reversible and irreversible loop

; r1 = loop counter
; r2 = accumulator
; r3 = decrement value (1)

ADD r1, r0, 10      ; r1 = 10
ADD r2, r0, 0       ; r2 = 0
ADD r3, r0, 1       ; r3 = 1

loop_start:
BEQ r1, r0, done    ; if r1 == 0, exit loop

; Reversible work
RADD r2, r1         ; r2 = r2 + r1
RXOR r2, r1         ; reversible mix
RXOR r2, r1         ; unmix

; Irreversible decrement
SUB r1, r1, r3      ; r1 = r1 - 1

; Unconditional jump via BEQ r0, r0, label
BEQ r0, r0, loop_start

done:
HALT
`

// BuggyProgram returns a small reversible program with an intentional
// defect: r1=5 and r2=10 are seeded irreversibly, a correct RADD brings
// r2 to 15, and a final RXOR corrupts it. The time-travel debugger's job
// is to walk backward from the wrong final r2 and land on that RXOR.
func BuggyProgram() []isa.Instruction {
	return []isa.Instruction{
		isa.NewADDImm(1, 0, 5),
		isa.NewADDImm(2, 0, 10),
		isa.NewRADD(2, 1),
		isa.NewRXOR(2, 1),
		isa.NewHALT(),
	}
}
