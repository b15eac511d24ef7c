// Package debugger implements the time-travel debugger: a consumer of
// package machine that registers watchpoints, runs a machine forward
// until one trips, then reverses through the machine's execution log
// until the watched register's value changes, producing a corruption
// report. It exclusively borrows the machine for the session and owns
// its own history buffer and watchpoint list (spec.md §4.6, §9).
package debugger

import (
	"fmt"
	"strings"

	"github.com/ahead-sim/revsim/history"
	"github.com/ahead-sim/revsim/isa"
	"github.com/ahead-sim/revsim/machine"
)

// Watchpoint is a predicate over one register's value. Condition returns
// true when the state is BAD, i.e. the watchpoint trips.
type Watchpoint struct {
	Name        string
	Register    int
	Condition   func(value uint32) bool
	Description string
}

// Violation records one tripped watchpoint: the step it tripped at, the
// watchpoint itself, and the offending value.
type Violation struct {
	Step  int
	Point Watchpoint
	Value uint32
}

// CorruptionReport describes where, during a reverse walk, a watched
// register's value first changed.
type CorruptionReport struct {
	PC           int
	Instruction  isa.Instruction
	Register     int
	ValueBefore  uint32 // value immediately after undoing the instruction
	ValueAfter   uint32 // value immediately before undoing it
	StepsBack    int
}

// TimeTravelDebugger drives one machine through a forward-run/
// reverse-walk debugging session.
type TimeTravelDebugger struct {
	Machine     *machine.Machine
	Watchpoints []Watchpoint
	History     *history.Buffer

	stepCount  int
	violations []Violation
}

// New returns a debugger session borrowing m for its lifetime.
func New(m *machine.Machine) *TimeTravelDebugger {
	return &TimeTravelDebugger{
		Machine: m,
		History: history.NewBuffer(),
	}
}

// AddWatchpoint registers a watchpoint. description defaults to
// "Watch r<register>" if empty.
func (d *TimeTravelDebugger) AddWatchpoint(name string, register int, condition func(uint32) bool, description string) {
	if description == "" {
		description = fmt.Sprintf("Watch r%d", register)
	}
	d.Watchpoints = append(d.Watchpoints, Watchpoint{
		Name:        name,
		Register:    register,
		Condition:   condition,
		Description: description,
	})
}

// WatchEquals registers a convenience watchpoint that trips when
// r[register] != expected.
func (d *TimeTravelDebugger) WatchEquals(register int, expected uint32, name string) {
	if name == "" {
		name = fmt.Sprintf("r%d==%d", register, expected)
	}
	d.AddWatchpoint(name, register, func(v uint32) bool { return v != expected },
		fmt.Sprintf("Triggered when r%d != %d", register, expected))
}

// WatchRange registers a convenience watchpoint that trips when
// r[register] is outside [lo, hi].
func (d *TimeTravelDebugger) WatchRange(register int, lo, hi uint32, name string) {
	if name == "" {
		name = fmt.Sprintf("r%d in [%d,%d]", register, lo, hi)
	}
	d.AddWatchpoint(name, register, func(v uint32) bool { return v < lo || v > hi },
		fmt.Sprintf("Triggered when r%d outside [%d, %d]", register, lo, hi))
}

// checkWatchpoints returns the first tripped watchpoint in insertion
// order, recording a Violation for it, or ok=false if none trip.
func (d *TimeTravelDebugger) checkWatchpoints() (Watchpoint, bool) {
	for _, wp := range d.Watchpoints {
		value := d.Machine.Registers[wp.Register]
		if wp.Condition(value) {
			d.violations = append(d.violations, Violation{Step: d.stepCount, Point: wp, Value: value})
			return wp, true
		}
	}
	return Watchpoint{}, false
}

// recordHistory classifies the about-to-execute instruction and pushes
// it into the debugger's own history buffer, separate from the
// machine's execution log.
func (d *TimeTravelDebugger) recordHistory(instr isa.Instruction) {
	kind := history.ClassifyOp(instr.Op == isa.BEQ, instr.Reversible())
	if kind == history.IrreversibleOp {
		// Irreversible ops are not recorded: they can't be reversed anyway.
		return
	}
	d.History.Push(d.Machine.PC, instr.Op.String(), kind, nil)
}

// RunUntilViolation runs the machine forward, pushing history entries and
// checking watchpoints after every step, until a watchpoint trips, the
// machine halts, or maxSteps is reached. It returns the tripped
// watchpoint and ok=true, or ok=false on a clean halt/step-budget
// exhaustion.
func (d *TimeTravelDebugger) RunUntilViolation(maxSteps int) (Watchpoint, bool, error) {
	for !d.Machine.Halted() && d.stepCount < maxSteps {
		if d.Machine.PC >= 0 && d.Machine.PC < len(d.Machine.Program) {
			d.recordHistory(d.Machine.Program[d.Machine.PC])
		}

		if err := d.Machine.Step(); err != nil {
			return Watchpoint{}, false, err
		}
		d.stepCount++
		d.History.RecordSnapshot(d.stepCount)

		if wp, tripped := d.checkWatchpoints(); tripped {
			return wp, true, nil
		}
	}
	return Watchpoint{}, false, nil
}

// FindCorruptionSource walks backward through the machine's execution
// log one step at a time, comparing the watched register's value before
// and after each undo, and returns a report for the first step that
// changes it. It returns ok=false if the log is exhausted without the
// value changing.
func (d *TimeTravelDebugger) FindCorruptionSource(register int, badValue uint32) (CorruptionReport, bool, error) {
	stepsBack := 0
	currentValue := d.Machine.Registers[register]

	for {
		pc, instr, ok := d.Machine.PeekExecLog()
		if !ok {
			return CorruptionReport{}, false, nil
		}

		if err := d.Machine.ReverseStep(); err != nil {
			return CorruptionReport{}, false, err
		}
		stepsBack++

		newValue := d.Machine.Registers[register]
		if newValue != currentValue {
			return CorruptionReport{
				PC:          pc,
				Instruction: instr,
				Register:    register,
				ValueBefore: newValue,
				ValueAfter:  currentValue,
				StepsBack:   stepsBack,
			}, true, nil
		}
		currentValue = newValue
	}
}

// RunAndDiagnose runs the complete debug workflow — run forward, detect
// a violation, walk backward to find its source — and renders a report
// in the style of the original prototype's run_and_diagnose.
func (d *TimeTravelDebugger) RunAndDiagnose(maxSteps int) (string, error) {
	var lines []string
	bar := strings.Repeat("=", 65)

	lines = append(lines, bar, "TIME-TRAVEL DEBUGGER", bar, "")
	lines = append(lines, fmt.Sprintf("Watchpoints configured: %d", len(d.Watchpoints)))
	for _, wp := range d.Watchpoints {
		lines = append(lines, fmt.Sprintf("  - %s: %s", wp.Name, wp.Description))
	}
	lines = append(lines, "")

	lines = append(lines, "Running forward...")
	violation, tripped, err := d.RunUntilViolation(maxSteps)
	if err != nil {
		return "", err
	}

	if !tripped {
		lines = append(lines,
			fmt.Sprintf("  Completed %d steps without violation.", d.stepCount),
			"",
			d.History.FormatReport(),
		)
		return strings.Join(lines, "\n"), nil
	}

	badValue := d.Machine.Registers[violation.Register]
	lines = append(lines,
		fmt.Sprintf("  Violation at step %d", d.stepCount),
		fmt.Sprintf("    Watchpoint: %s", violation.Name),
		fmt.Sprintf("    Register r%d = %d", violation.Register, badValue),
		"",
	)

	lines = append(lines, "Walking backward through reversible history...")
	report, found, err := d.FindCorruptionSource(violation.Register, badValue)
	if err != nil {
		return "", err
	}

	if !found {
		lines = append(lines, "  Could not locate corruption source in reversible region.")
	} else {
		lines = append(lines,
			fmt.Sprintf("  Found corruption source after %d reverse steps", report.StepsBack),
			"",
			"+---------------------------------------------------------------+",
			"| CORRUPTION SOURCE                                              |",
			"+---------------------------------------------------------------+",
			fmt.Sprintf("| PC:          %-52d|", report.PC),
			fmt.Sprintf("| Instruction: %-52s|", report.Instruction.String()),
			fmt.Sprintf("| Register:    r%-51d|", report.Register),
			fmt.Sprintf("| Before:      %-52d|", report.ValueBefore),
			fmt.Sprintf("| After:       %-52d|", report.ValueAfter),
			"+---------------------------------------------------------------+",
			"",
		)
	}

	lines = append(lines, "", d.History.FormatReport())

	return strings.Join(lines, "\n"), nil
}

// StepCount returns the number of forward steps taken this session.
func (d *TimeTravelDebugger) StepCount() int {
	return d.stepCount
}

// Violations returns the violations recorded this session, in the order
// they tripped.
func (d *TimeTravelDebugger) Violations() []Violation {
	return d.violations
}
