// Package metrics tallies reversible/irreversible opcode counts per run,
// the accounting layer the machine consults to report how reversible a
// given program turned out to be in practice.
package metrics

import (
	"fmt"

	"github.com/ahead-sim/revsim/isa"
)

// Metrics holds running reversible/irreversible counters and a per-opcode
// breakdown.
type Metrics struct {
	ReversibleCount   int
	IrreversibleCount int
	PerOpCounts       map[string]int
}

// New returns a fresh, zeroed Metrics.
func New() *Metrics {
	return &Metrics{PerOpCounts: make(map[string]int)}
}

// Record charges one step of op to the counters, classifying it as
// reversible or irreversible.
func (m *Metrics) Record(op isa.OpCode, reversible bool) {
	if reversible {
		m.ReversibleCount++
	} else {
		m.IrreversibleCount++
	}
	m.PerOpCounts[op.String()]++
}

// Total returns the total number of recorded steps.
func (m *Metrics) Total() int {
	return m.ReversibleCount + m.IrreversibleCount
}

// ReversibleRatio returns ReversibleCount/Total, or 0 if no steps were
// recorded.
func (m *Metrics) ReversibleRatio() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	return float64(m.ReversibleCount) / float64(total)
}

// Summary renders a one-line human-readable summary.
func (m *Metrics) Summary() string {
	return fmt.Sprintf("reversible=%d, irreversible=%d, ratio=%.2f",
		m.ReversibleCount, m.IrreversibleCount, m.ReversibleRatio())
}
