// Package history implements the history-buffer instrumentation sidecar:
// an accounting-only model of the silicon structure a reversible
// processor would need to store dynamic-instruction state for reversal.
// It is entirely separate from the machine's execution log (package
// machine), which is the correctness-critical undo record; nothing here
// is required for correctness.
package history

import (
	"fmt"
	"strings"
)

// EntryType classifies one dynamic instruction for bit-cost accounting.
type EntryType int

const (
	// BranchDecision costs 33 bits: 1 taken/not-taken bit plus a 32-bit
	// source PC.
	BranchDecision EntryType = iota
	// BranchSource is reserved for a future representation that stores
	// only the source PC (32 bits) without the decision bit.
	BranchSource
	// ReversibleOp costs 8 bits: just enough to identify which algebraic
	// inverse to apply (no operand data needs storing).
	ReversibleOp
	// IrreversibleOp costs 0 bits: irreversible instructions are never
	// pushed.
	IrreversibleOp
)

var entryTypeNames = [...]string{"BRANCH_DECISION", "BRANCH_SOURCE", "REVERSIBLE_OP", "IRREVERSIBLE_OP"}

func (t EntryType) String() string {
	if int(t) < 0 || int(t) >= len(entryTypeNames) {
		return "UNKNOWN"
	}
	return entryTypeNames[t]
}

// BitCost returns the estimated bits required to store one entry of this
// type, per the bit-cost contract in spec.md §3.
func (t EntryType) BitCost() int {
	switch t {
	case BranchDecision:
		return 1 + 32
	case BranchSource:
		return 32
	case ReversibleOp:
		return 8
	default:
		return 0
	}
}

// Entry is one record in the history buffer.
type Entry struct {
	PC      int
	OpName  string
	Type    EntryType
	Payload any
}

// BitCost is a convenience wrapper around Entry.Type.BitCost().
func (e Entry) BitCost() int {
	return e.Type.BitCost()
}

// Buffer is the instrumented history buffer. It tracks current depth and
// bit usage, high-water marks, per-type statistics, and a depth timeline
// for pressure analysis over the course of a run.
type Buffer struct {
	entries []Entry

	maxDepth int
	maxBits  int

	countsByType map[EntryType]int
	bitsByType   map[EntryType]int

	depthTimeline []DepthSample
}

// DepthSample pairs a step number with the buffer depth recorded at that
// step.
type DepthSample struct {
	Step  int
	Depth int
}

// NewBuffer returns an empty history buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		countsByType: make(map[EntryType]int),
		bitsByType:   make(map[EntryType]int),
	}
}

// Push records one history entry and updates the running statistics and
// high-water marks.
func (b *Buffer) Push(pc int, opName string, typ EntryType, payload any) {
	e := Entry{PC: pc, OpName: opName, Type: typ, Payload: payload}
	b.entries = append(b.entries, e)

	b.countsByType[typ]++
	b.bitsByType[typ] += e.BitCost()

	if d := len(b.entries); d > b.maxDepth {
		b.maxDepth = d
	}
	if bits := b.CurrentBits(); bits > b.maxBits {
		b.maxBits = bits
	}
}

// Pop removes and returns the most recent entry, or ok=false if the
// buffer is empty.
func (b *Buffer) Pop() (Entry, bool) {
	if len(b.entries) == 0 {
		return Entry{}, false
	}
	n := len(b.entries) - 1
	e := b.entries[n]
	b.entries = b.entries[:n]
	return e, true
}

// RecordSnapshot appends (step, current depth) to the depth timeline.
func (b *Buffer) RecordSnapshot(step int) {
	b.depthTimeline = append(b.depthTimeline, DepthSample{Step: step, Depth: len(b.entries)})
}

// CurrentDepth returns the number of entries currently buffered.
func (b *Buffer) CurrentDepth() int {
	return len(b.entries)
}

// CurrentBits returns the sum of bit costs over currently buffered
// entries.
func (b *Buffer) CurrentBits() int {
	total := 0
	for _, e := range b.entries {
		total += e.BitCost()
	}
	return total
}

// TotalEntriesEver returns the cumulative count of entries ever pushed.
func (b *Buffer) TotalEntriesEver() int {
	total := 0
	for _, c := range b.countsByType {
		total += c
	}
	return total
}

// TotalBitsEver returns the cumulative bit cost of entries ever pushed.
func (b *Buffer) TotalBitsEver() int {
	total := 0
	for _, bits := range b.bitsByType {
		total += bits
	}
	return total
}

// TypeStat is the count/bits breakdown for one EntryType.
type TypeStat struct {
	Count int
	Bits  int
}

// Summary reports the buffer's current and peak statistics for silicon
// sizing.
type Summary struct {
	CurrentDepth   int
	CurrentBits    int
	MaxDepth       int
	MaxBits        int
	TotalEntries   int
	TotalBits      int
	ByType         map[EntryType]TypeStat
	BitsPerEntry   float64
}

// Summary returns the buffer's current summary statistics.
func (b *Buffer) Summary() Summary {
	byType := make(map[EntryType]TypeStat, 4)
	for _, t := range []EntryType{BranchDecision, BranchSource, ReversibleOp, IrreversibleOp} {
		byType[t] = TypeStat{Count: b.countsByType[t], Bits: b.bitsByType[t]}
	}

	total := b.TotalEntriesEver()
	var avg float64
	if total > 0 {
		avg = float64(b.TotalBitsEver()) / float64(total)
	}

	return Summary{
		CurrentDepth: b.CurrentDepth(),
		CurrentBits:  b.CurrentBits(),
		MaxDepth:     b.maxDepth,
		MaxBits:      b.maxBits,
		TotalEntries: total,
		TotalBits:    b.TotalBitsEver(),
		ByType:       byType,
		BitsPerEntry: avg,
	}
}

// FormatReport renders a human-readable history-buffer report, the form
// silicon engineers were shown in the original prototype's
// HistoryBuffer.format_report.
func (b *Buffer) FormatReport() string {
	s := b.Summary()
	bar := strings.Repeat("=", 60)

	var out strings.Builder
	fmt.Fprintln(&out, bar)
	fmt.Fprintln(&out, "HISTORY BUFFER ANALYSIS")
	fmt.Fprintln(&out, bar)
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "Peak Requirements:")
	fmt.Fprintf(&out, "  Max depth:     %d entries\n", s.MaxDepth)
	fmt.Fprintf(&out, "  Max bits:      %d bits (%.1f bytes)\n", s.MaxBits, float64(s.MaxBits)/8)
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "Cumulative (full execution):")
	fmt.Fprintf(&out, "  Total entries: %d\n", s.TotalEntries)
	fmt.Fprintf(&out, "  Total bits:    %d bits (%.1f bytes)\n", s.TotalBits, float64(s.TotalBits)/8)
	fmt.Fprintf(&out, "  Avg bits/entry: %.1f\n", s.BitsPerEntry)
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "By Entry Type:")
	for _, t := range []EntryType{BranchDecision, BranchSource, ReversibleOp, IrreversibleOp} {
		stat := s.ByType[t]
		if stat.Count > 0 {
			fmt.Fprintf(&out, "  %-20s: %5d entries, %6d bits\n", t, stat.Count, stat.Bits)
		}
	}
	fmt.Fprintln(&out)
	fmt.Fprintln(&out, "Silicon Implications:")
	fmt.Fprintf(&out, "  SRAM for history buffer: ~%.2f KB\n", float64(s.MaxBits)/8/1024)
	fmt.Fprintf(&out, "  Entries at 64-deep FIFO: %s\n", fifoStatus(s.MaxDepth, 64))
	fmt.Fprintf(&out, "  Entries at 256-deep FIFO: %s\n", fifoStatus(s.MaxDepth, 256))
	fmt.Fprintln(&out, bar)

	return out.String()
}

func fifoStatus(depth, capacity int) string {
	if depth <= capacity {
		return "OK"
	}
	return "OVERFLOW"
}

// ClassifyOp returns the EntryType for an instruction, given whether it
// is a BEQ, reversible (non-BEQ), or irreversible. Irreversible
// instructions should not be pushed at all; callers check for
// IrreversibleOp to skip the push.
func ClassifyOp(isBEQ, reversible bool) EntryType {
	switch {
	case isBEQ:
		return BranchDecision
	case reversible:
		return ReversibleOp
	default:
		return IrreversibleOp
	}
}
