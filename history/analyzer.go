package history

import (
	"fmt"
	"strings"
)

// RunResult captures one recorded run's history-buffer summary plus the
// reversibility context needed to compute bits-per-instruction.
type RunResult struct {
	History            Summary
	ReversibilityRatio float64
	TotalInstructions  int
}

// Analyzer collects named runs for cross-program comparison: linear code
// vs loops, branch-heavy vs compute-heavy, different reversibility
// ratios.
type Analyzer struct {
	order   []string
	results map[string]RunResult
}

// NewAnalyzer returns an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{results: make(map[string]RunResult)}
}

// RecordRun records one program's results under name. Re-recording the
// same name overwrites its entry but preserves its original position in
// Compare's table.
func (a *Analyzer) RecordRun(name string, buf *Buffer, reversibleRatio float64, totalInstructions int) {
	if _, exists := a.results[name]; !exists {
		a.order = append(a.order, name)
	}
	a.results[name] = RunResult{
		History:            buf.Summary(),
		ReversibilityRatio: reversibleRatio,
		TotalInstructions:  totalInstructions,
	}
}

// Compare renders a comparison table across every recorded run, in
// recording order.
func (a *Analyzer) Compare() string {
	if len(a.results) == 0 {
		return "No runs recorded."
	}

	names := a.order

	var b strings.Builder
	bar := strings.Repeat("=", 70)
	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b, "HISTORY BUFFER COMPARISON ACROSS PROGRAMS")
	fmt.Fprintln(&b, bar)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%-25s %10s %10s %8s %12s\n", "Program", "MaxDepth", "MaxBits", "Rev%", "Bits/Instr")
	fmt.Fprintln(&b, strings.Repeat("-", 70))

	for _, name := range names {
		r := a.results[name]
		var bitsPerInstr float64
		if r.TotalInstructions > 0 {
			bitsPerInstr = float64(r.History.MaxBits) / float64(r.TotalInstructions)
		}
		fmt.Fprintf(&b, "%-25s %10d %10d %7.0f%% %12.1f\n",
			name, r.History.MaxDepth, r.History.MaxBits, r.ReversibilityRatio*100, bitsPerInstr)
	}

	fmt.Fprintln(&b, strings.Repeat("-", 70))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Key Insight: Bits/Instruction tells you buffer cost per compute.")
	fmt.Fprintln(&b, "Lower is better for silicon area.")
	fmt.Fprintln(&b, bar)

	return b.String()
}
