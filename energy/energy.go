// Package energy implements the simulator's stylized per-step energy
// accounting: a single running accumulator charged a fixed amount for
// every reversible or irreversible step. The numbers are illustrative,
// not calibrated to any real process node (spec.md §9).
package energy

// Model accumulates energy charged per executed step.
type Model struct {
	// ReversibleCost and IrreversibleCost are the units charged per
	// reversible/irreversible step. Defaults are 0.1 and 1.0.
	ReversibleCost   float64
	IrreversibleCost float64

	// TotalEnergy is the running sum of all charges so far.
	TotalEnergy float64
}

// NewModel returns a Model with the default costs from spec.md §3.
func NewModel() *Model {
	return &Model{
		ReversibleCost:   0.1,
		IrreversibleCost: 1.0,
	}
}

// ChargeReversible adds ReversibleCost to TotalEnergy.
func (m *Model) ChargeReversible() {
	m.TotalEnergy += m.ReversibleCost
}

// ChargeIrreversible adds IrreversibleCost to TotalEnergy.
func (m *Model) ChargeIrreversible() {
	m.TotalEnergy += m.IrreversibleCost
}
