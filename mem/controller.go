package mem

import (
	"fmt"
	"strings"
)

// MemoryController models a silicon memory controller with separate hot
// and cold pipelines: HOT routes standard loads/stores (low latency,
// irreversible); COLD routes exchanges (slightly higher latency,
// reversible). The controller owns no memory semantics of its own —
// correctness is entirely delegated to the wrapped ReversibleMemory.
type MemoryController struct {
	Memory *ReversibleMemory

	hotRequests  int
	coldRequests int

	// HotLatency and ColdLatency are cycle counts charged per request on
	// each path. Defaults match spec.md §4.3: hot=1, cold=2.
	HotLatency  int
	ColdLatency int

	totalCycles int
}

// NewMemoryController returns a controller wrapping a fresh
// ReversibleMemory with the default hot/cold latencies.
func NewMemoryController() *MemoryController {
	return &MemoryController{
		Memory:      NewReversibleMemory(),
		HotLatency:  1,
		ColdLatency: 2,
	}
}

// LoadWord and StoreWord let a MemoryController stand in directly for a
// machine's wordMemory: every LOAD/STORE the machine executes is an
// irreversible access, so they always take the hot path. This is how
// cmd/revsim wires controller accounting into a real run instead of
// exercising it only from mem's own tests.

// LoadWord performs a hot-path load, discarding the latency figure.
func (c *MemoryController) LoadWord(addr uint32) uint32 {
	v, _ := c.HotLoad(addr)
	return v
}

// StoreWord performs a hot-path store, discarding the latency figure.
func (c *MemoryController) StoreWord(addr uint32, value uint32) {
	c.HotStore(addr, value)
}

// HotLoad performs a hot-path (standard, irreversible) load and returns
// the loaded value together with the latency charged.
func (c *MemoryController) HotLoad(addr uint32) (value uint32, latency int) {
	c.hotRequests++
	c.totalCycles += c.HotLatency
	return c.Memory.LoadWord(addr), c.HotLatency
}

// HotStore performs a hot-path (standard, irreversible) store and
// returns the latency charged.
func (c *MemoryController) HotStore(addr uint32, value uint32) (latency int) {
	c.hotRequests++
	c.totalCycles += c.HotLatency
	c.Memory.StoreWord(addr, value)
	return c.HotLatency
}

// ColdExchange performs a cold-path (reversible) exchange and returns the
// prior memory value together with the latency charged.
func (c *MemoryController) ColdExchange(addr uint32, regValue uint32) (old uint32, latency int) {
	c.coldRequests++
	c.totalCycles += c.ColdLatency
	return c.Memory.Exchange(addr, regValue), c.ColdLatency
}

// ControllerSummary reports hot/cold request distribution and latency
// for silicon analysis.
type ControllerSummary struct {
	HotRequests   int
	ColdRequests  int
	TotalRequests int
	HotRatio      float64
	ColdRatio     float64
	TotalCycles   int
	AvgLatency    float64
	Memory        MemorySummary
}

// Summary returns the controller's current statistics.
func (c *MemoryController) Summary() ControllerSummary {
	total := c.hotRequests + c.coldRequests
	s := ControllerSummary{
		HotRequests:   c.hotRequests,
		ColdRequests:  c.coldRequests,
		TotalRequests: total,
		TotalCycles:   c.totalCycles,
		Memory:        c.Memory.Summary(),
	}
	if total > 0 {
		s.HotRatio = float64(c.hotRequests) / float64(total)
		s.ColdRatio = float64(c.coldRequests) / float64(total)
		s.AvgLatency = float64(c.totalCycles) / float64(total)
	}
	return s
}

// FormatReport renders a human-readable report of controller activity,
// the form silicon engineers were shown in the original prototype's
// MemoryController.format_report.
func (c *MemoryController) FormatReport() string {
	s := c.Summary()
	bar := strings.Repeat("=", 60)

	var b strings.Builder
	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b, "MEMORY CONTROLLER ANALYSIS")
	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Request Distribution:")
	fmt.Fprintf(&b, "  HOT (irreversible):  %5d (%5.1f%%)\n", s.HotRequests, s.HotRatio*100)
	fmt.Fprintf(&b, "  COLD (reversible):   %5d (%5.1f%%)\n", s.ColdRequests, s.ColdRatio*100)
	fmt.Fprintf(&b, "  Total:               %5d\n", s.TotalRequests)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Latency:")
	fmt.Fprintf(&b, "  Total cycles:        %5d\n", s.TotalCycles)
	fmt.Fprintf(&b, "  Avg cycles/request:  %5.2f\n", s.AvgLatency)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Memory Subsystem:")
	fmt.Fprintf(&b, "  Words allocated:     %5d\n", s.Memory.TotalWords)
	fmt.Fprintf(&b, "  Exchange log depth:  %5d\n", s.Memory.ExchangeLogDepth)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Silicon Implications:")
	hotOnly := s.HotRequests * c.HotLatency
	fmt.Fprintf(&b, "  If HOT-only: %d cycles\n", hotOnly)
	fmt.Fprintf(&b, "  With COLD:   %d cycles\n", s.TotalCycles)
	fmt.Fprintf(&b, "  Overhead:    %d cycles for reversibility\n", s.TotalCycles-hotOnly)
	fmt.Fprintln(&b, bar)

	return b.String()
}
