// Package machine implements the reversible execution core: the register
// file, program counter, loaded program and label map, the execution log
// that makes reversal possible, and the forward/backward step functions
// described in spec.md §4.1.
package machine

import (
	"fmt"

	"github.com/btcsuite/goleveldb/leveldb/errors"

	"github.com/ahead-sim/revsim/energy"
	"github.com/ahead-sim/revsim/isa"
	"github.com/ahead-sim/revsim/mem"
	"github.com/ahead-sim/revsim/metrics"
)

// Error taxonomy, per spec.md §7. Each is a sentinel that callers can
// match with errors.Is; wrapped errors add the offending detail.
var (
	// ErrProgramValidity is raised by LoadProgram for a program that
	// cannot be executed reversibly as written (currently: RADD/RXOR
	// with rd == rs1).
	ErrProgramValidity = errors.New("machine: program validity error")
	// ErrPCOutOfRange is raised by Step when the PC is outside
	// [0, len(program)).
	ErrPCOutOfRange = errors.New("machine: PC out of range")
	// ErrUnknownLabel is raised when a BEQ references a label absent
	// from the label map.
	ErrUnknownLabel = errors.New("machine: unknown label")
	// ErrUnsupportedOpcode indicates a forward or reverse handler is
	// missing for a declared opcode; reaching this is an engine bug.
	ErrUnsupportedOpcode = errors.New("machine: unsupported opcode")
)

// DefaultNumRegs is the default register file length.
const DefaultNumRegs = 32

// wordMemory is the minimal memory interface the machine needs for LOAD
// and STORE. mem.Memory, mem.ReversibleMemory and mem.MemoryController
// all satisfy it; the machine itself never distinguishes hot/cold paths
// (a mem.MemoryController passed in as the memory does that accounting).
type wordMemory interface {
	LoadWord(addr uint32) uint32
	StoreWord(addr uint32, value uint32)
}

// beqPayload is the execution-log payload for a reversed BEQ: the
// taken/not-taken decision plus the PC the branch was fetched from.
// taken is redundant given fromPC and the program, but is kept for
// history/analysis use (spec.md §9).
type beqPayload struct {
	taken  bool
	fromPC int
}

// logEntry is one execution-log record. Payload is nil for every
// data-reversible opcode (their inverse is purely algebraic); it holds a
// *beqPayload for BEQ.
type logEntry struct {
	pc      int
	instr   isa.Instruction
	payload *beqPayload
}

// Machine is the reversible execution core. It exclusively owns its
// register file, memory, execution log, energy model, and metrics; a
// debugger may borrow it for the duration of a session but never shares
// it with another machine.
type Machine struct {
	Registers []uint32
	PC        int

	Program []isa.Instruction
	Labels  map[string]int

	Memory  wordMemory
	Energy  *energy.Model
	Metrics *metrics.Metrics

	execLog []logEntry
	halted  bool
}

// New returns a machine with DefaultNumRegs registers, a fresh plain
// memory, energy model, and metrics, and no program loaded.
func New() *Machine {
	return &Machine{
		Registers: make([]uint32, DefaultNumRegs),
		Memory:    mem.NewMemory(),
		Energy:    energy.NewModel(),
		Metrics:   metrics.New(),
	}
}

// NewWithMemory is like New but wires in a caller-supplied memory, e.g. a
// *mem.ReversibleMemory, so LOAD/STORE land on it.
func NewWithMemory(m wordMemory) *Machine {
	mach := New()
	mach.Memory = m
	return mach
}

// Halted reports whether the machine has executed a HALT.
func (m *Machine) Halted() bool {
	return m.halted
}

// ExecLogLen returns the current execution-log depth: the number of
// logged forward steps (BEQ, RXOR, RADD, RSWAP) minus the reverse steps
// taken since the last LoadProgram, clamped at 0. ADD, SUB, LOAD, STORE
// and HALT are never logged.
func (m *Machine) ExecLogLen() int {
	return len(m.execLog)
}

// LoadProgram replaces the program and label map, resets the PC to 0,
// clears the execution log, clears halted, and installs a fresh metrics
// counter. Registers and memory are left untouched so the caller may
// preset them.
//
// Per spec.md §4.1's mandated resolution of the rd==rs1 open question,
// any RADD or RXOR instruction with rd == rs1 is rejected here with
// ErrProgramValidity: such an instruction would lose information on
// reversal (RXOR self-zeroes; RADD doubles and cannot be inverted from
// the doubled value alone).
func (m *Machine) LoadProgram(program []isa.Instruction, labels map[string]int) error {
	for pc, instr := range program {
		if (instr.Op == isa.RADD || instr.Op == isa.RXOR) && instr.Rd != nil && instr.Rs1 != nil && *instr.Rd == *instr.Rs1 {
			return fmt.Errorf("%w: instruction %d (%s): rd == rs1 == r%d is not reversibly safe",
				ErrProgramValidity, pc, instr.Op, *instr.Rd)
		}
	}

	m.Program = program
	m.PC = 0
	m.execLog = nil
	m.halted = false
	m.Metrics = metrics.New()
	m.Labels = make(map[string]int, len(labels))
	for k, v := range labels {
		m.Labels[k] = v
	}
	return nil
}

// Run steps the machine until it halts, optionally stopping after
// maxSteps steps. maxSteps <= 0 means unbounded. It returns the number of
// steps actually taken and propagates the first error from Step.
func (m *Machine) Run(maxSteps int) (int, error) {
	steps := 0
	for !m.halted {
		if err := m.Step(); err != nil {
			return steps, err
		}
		steps++
		if maxSteps > 0 && steps >= maxSteps {
			break
		}
	}
	return steps, nil
}

func (m *Machine) resolveLabel(label *string) (int, error) {
	if label == nil {
		return 0, fmt.Errorf("%w: BEQ missing label", ErrProgramValidity)
	}
	pc, ok := m.Labels[*label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, *label)
	}
	return pc, nil
}

// Step executes exactly one instruction. It is a no-op returning nil if
// the machine is already halted. It returns ErrPCOutOfRange if the PC is
// outside [0, len(Program)), and ErrUnknownLabel if a BEQ's label is not
// in the label map.
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}
	if m.PC < 0 || m.PC >= len(m.Program) {
		return fmt.Errorf("%w: %d", ErrPCOutOfRange, m.PC)
	}

	instr := m.Program[m.PC]

	if instr.Op == isa.BEQ {
		return m.execBEQ(instr)
	}

	if instr.Reversible() {
		if err := m.execReversible(instr); err != nil {
			return err
		}
		m.execLog = append(m.execLog, logEntry{pc: m.PC, instr: instr})
		m.Energy.ChargeReversible()
		m.Metrics.Record(instr.Op, true)
	} else {
		if err := m.execIrreversible(instr); err != nil {
			return err
		}
		m.Energy.ChargeIrreversible()
		m.Metrics.Record(instr.Op, false)
	}

	if instr.Op != isa.HALT {
		m.PC++
	}
	return nil
}

func (m *Machine) execBEQ(instr isa.Instruction) error {
	val1 := m.Registers[*instr.Rs1]
	val2 := m.Registers[*instr.Rs2]
	taken := val1 == val2

	m.execLog = append(m.execLog, logEntry{
		pc:      m.PC,
		instr:   instr,
		payload: &beqPayload{taken: taken, fromPC: m.PC},
	})
	m.Energy.ChargeReversible()
	m.Metrics.Record(instr.Op, true)

	if taken {
		target, err := m.resolveLabel(instr.Label)
		if err != nil {
			return err
		}
		m.PC = target
	} else {
		m.PC++
	}
	return nil
}

func (m *Machine) execReversible(instr isa.Instruction) error {
	rd := *instr.Rd
	switch instr.Op {
	case isa.RXOR:
		m.Registers[rd] ^= m.Registers[*instr.Rs1]
	case isa.RADD:
		m.Registers[rd] = m.Registers[rd] + m.Registers[*instr.Rs1]
	case isa.RSWAP:
		m.Registers[rd], m.Registers[*instr.Rs1] = m.Registers[*instr.Rs1], m.Registers[rd]
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOpcode, instr.Op)
	}
	return nil
}

func (m *Machine) execIrreversible(instr isa.Instruction) error {
	switch instr.Op {
	case isa.ADD:
		m.Registers[*instr.Rd] = m.Registers[*instr.Rs1] + m.operandOrReg(instr)
	case isa.SUB:
		m.Registers[*instr.Rd] = m.Registers[*instr.Rs1] - m.operandOrReg(instr)
	case isa.LOAD:
		addr := m.Registers[*instr.Rs1] + immOrZero(instr.Imm)
		m.Registers[*instr.Rd] = m.Memory.LoadWord(addr)
	case isa.STORE:
		addr := m.Registers[*instr.Rs1] + immOrZero(instr.Imm)
		m.Memory.StoreWord(addr, m.Registers[*instr.Rs2])
	case isa.HALT:
		m.halted = true
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOpcode, instr.Op)
	}
	return nil
}

// operandOrReg returns the immediate if present, else rs2's value. Used
// by ADD/SUB per spec.md's "imm or rs2" operand rule.
func (m *Machine) operandOrReg(instr isa.Instruction) uint32 {
	if instr.Imm != nil {
		return uint32(*instr.Imm)
	}
	return m.Registers[*instr.Rs2]
}

func immOrZero(imm *int64) uint32 {
	if imm == nil {
		return 0
	}
	return uint32(*imm)
}

// ReverseStep pops the top execution-log entry and inverts it. If the
// log is empty this is a defined no-op (spec.md §7): it does not error
// and does not change the halted flag, allowing callers to "rewind to
// origin" idempotently.
func (m *Machine) ReverseStep() error {
	if len(m.execLog) == 0 {
		return nil
	}

	n := len(m.execLog) - 1
	entry := m.execLog[n]
	m.execLog = m.execLog[:n]

	if entry.instr.Op == isa.BEQ {
		m.PC = entry.payload.fromPC
		return nil
	}

	if err := m.undoReversible(entry.instr); err != nil {
		return err
	}
	m.PC = entry.pc
	return nil
}

func (m *Machine) undoReversible(instr isa.Instruction) error {
	rd := *instr.Rd
	switch instr.Op {
	case isa.RXOR:
		// XOR is its own inverse.
		m.Registers[rd] ^= m.Registers[*instr.Rs1]
	case isa.RADD:
		// Correctness here depends on rs1 not having changed since this
		// entry was pushed without also being undone, which the log's
		// LIFO discipline guarantees.
		m.Registers[rd] = m.Registers[rd] - m.Registers[*instr.Rs1]
	case isa.RSWAP:
		m.Registers[rd], m.Registers[*instr.Rs1] = m.Registers[*instr.Rs1], m.Registers[rd]
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOpcode, instr.Op)
	}
	return nil
}

// PeekExecLog returns the top-of-log (pc, instruction) pair without
// popping it, or ok=false if the log is empty. Consumers like the
// time-travel debugger use this to capture the PC and instruction they
// are about to undo before calling ReverseStep.
func (m *Machine) PeekExecLog() (pc int, instr isa.Instruction, ok bool) {
	if len(m.execLog) == 0 {
		return 0, isa.Instruction{}, false
	}
	top := m.execLog[len(m.execLog)-1]
	return top.pc, top.instr, true
}

