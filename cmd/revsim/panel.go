package main

import (
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/ahead-sim/revsim/debugger"
)

// runWatchPanel drives the debugger one step at a time behind a live
// termui layout: registers r0-r9, debugger status with the last event,
// and the debugger's history-buffer depth and bits, refreshed on every
// space-bar step or 'r' run-to-violation and exited on q/Ctrl-C.
func runWatchPanel(d *debugger.TimeTravelDebugger) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("termui init: %w", err)
	}
	defer ui.Close()

	regs := widgets.NewParagraph()
	regs.Title = "Registers"
	regs.SetRect(0, 0, 50, 10)

	status := widgets.NewParagraph()
	status.Title = "Debugger"
	status.SetRect(0, 10, 50, 18)

	history := widgets.NewParagraph()
	history.Title = "History Buffer"
	history.SetRect(50, 0, 100, 18)

	draw := func(lastEvent string) {
		var rb strings.Builder
		for i, v := range d.Machine.Registers {
			if i > 9 {
				break
			}
			fmt.Fprintf(&rb, "r%-2d = %d\n", i, v)
		}
		regs.Text = rb.String()

		status.Text = fmt.Sprintf(
			"PC: %d\nHalted: %v\nStep: %d\nWatchpoints: %d\nViolations: %d\n\n%s",
			d.Machine.PC, d.Machine.Halted(), d.StepCount(), len(d.Watchpoints), len(d.Violations()), lastEvent,
		)

		history.Text = fmt.Sprintf("Depth: %d\nBits: %d", d.History.CurrentDepth(), d.History.CurrentBits())

		ui.Render(regs, status, history)
	}

	draw("Press <Space> to step, 'r' to run to violation, q to quit.")

	for e := range ui.PollEvents() {
		if e.Type != ui.KeyboardEvent {
			continue
		}
		switch e.ID {
		case "q", "<C-c>":
			return nil
		case "<Space>":
			if d.Machine.Halted() {
				draw("Machine halted.")
				continue
			}
			if err := d.Machine.Step(); err != nil {
				draw(fmt.Sprintf("step error: %v", err))
				continue
			}
			draw("Stepped one instruction.")
		case "r":
			wp, tripped, err := d.RunUntilViolation(10000)
			if err != nil {
				draw(fmt.Sprintf("run error: %v", err))
				continue
			}
			if tripped {
				draw(fmt.Sprintf("Violation: %s", wp.Name))
			} else {
				draw("Ran to completion without violation.")
			}
		}
	}
	return nil
}
