// Command revsim is the CLI front end for the reversible register
// machine: run canned or file-supplied programs, inspect history-buffer
// pressure, and drive the time-travel debugger, optionally with a live
// termui panel.
package main

import (
	"fmt"
	"log"
	"os"

	cli "gopkg.in/urfave/cli.v2"

	"github.com/ahead-sim/revsim/asm"
	"github.com/ahead-sim/revsim/debugger"
	"github.com/ahead-sim/revsim/demo"
	"github.com/ahead-sim/revsim/history"
	"github.com/ahead-sim/revsim/isa"
	"github.com/ahead-sim/revsim/machine"
	"github.com/ahead-sim/revsim/mem"
)

func main() {
	app := &cli.App{
		Name:    "revsim",
		Usage:   "Reversible register-machine simulator",
		Version: "v0.1.0",
		Commands: []*cli.Command{
			exampleCommand(),
			loopCommand(),
			runCommand(),
			debugCommand(),
			analyzeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// exampleCommand runs the three-RADD increment demo and prints the
// before/after registers across a full forward run and full reversal.
func exampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Run the reversible-increment demo and reverse it back",
		Action: func(c *cli.Context) error {
			m := machine.New()
			if err := m.LoadProgram(demo.Increment(), nil); err != nil {
				return err
			}
			m.Registers[1] = 5
			m.Registers[2] = 1

			fmt.Printf("Before: r1=%d r2=%d\n", m.Registers[1], m.Registers[2])
			if _, err := m.Run(0); err != nil {
				return err
			}
			fmt.Printf("After forward run: r1=%d r2=%d\n", m.Registers[1], m.Registers[2])

			for m.ExecLogLen() > 0 {
				if err := m.ReverseStep(); err != nil {
					return err
				}
			}
			fmt.Printf("After full reversal: r1=%d r2=%d\n", m.Registers[1], m.Registers[2])
			return nil
		},
	}
}

// loopCommand parses and runs the mixed reversible/irreversible counting
// loop, then reverses every reversible step taken.
func loopCommand() *cli.Command {
	return &cli.Command{
		Name:  "loop",
		Usage: "Run the mixed reversible/irreversible counting loop",
		Action: func(c *cli.Context) error {
			p := asm.NewParser()
			program, err := p.Parse(demo.LoopSource)
			if err != nil {
				return err
			}

			m := machine.New()
			if err := m.LoadProgram(program, p.Labels); err != nil {
				return err
			}

			fmt.Println("Running reversible loop...")
			steps, err := m.Run(1000)
			if err != nil {
				return err
			}

			fmt.Printf("Steps executed: %d\n", steps)
			fmt.Printf("Final registers (r1, r2, r3): %d, %d, %d\n",
				m.Registers[1], m.Registers[2], m.Registers[3])
			fmt.Printf("Total energy: %.2f\n", m.Energy.TotalEnergy)
			fmt.Printf("Metrics: %s\n", m.Metrics.Summary())
			fmt.Printf("Execution log depth: %d\n", m.ExecLogLen())

			fmt.Println("\nReversing reversible steps...")
			for m.ExecLogLen() > 0 {
				if err := m.ReverseStep(); err != nil {
					return err
				}
			}
			fmt.Printf("Registers after full reverse of reversible ops: (r1, r2, r3): %d, %d, %d\n",
				m.Registers[1], m.Registers[2], m.Registers[3])
			return nil
		},
	}
}

// runCommand parses and executes an assembly file from disk.
func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Parse and run an assembly file",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-steps",
				Usage: "Maximum steps to execute before giving up (0 = unbounded)",
				Value: 10000,
			},
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return cli.Exit("usage: revsim run <path>", 1)
			}
			path := c.Args().Get(0)
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			p := asm.NewParser()
			program, err := p.Parse(string(src))
			if err != nil {
				return err
			}

			// Every LOAD/STORE the machine executes is irreversible, so
			// routing them through a MemoryController's hot path turns the
			// run's memory traffic into real silicon-sizing numbers instead
			// of leaving the controller exercised only by mem's own tests.
			controller := mem.NewMemoryController()
			m := machine.NewWithMemory(controller)
			if err := m.LoadProgram(program, p.Labels); err != nil {
				return err
			}

			steps, err := m.Run(c.Int("max-steps"))
			if err != nil {
				return err
			}
			if !m.Halted() {
				fmt.Fprintf(os.Stderr, "did not halt within %d steps\n", c.Int("max-steps"))
			}
			fmt.Printf("Steps executed: %d\n", steps)
			fmt.Printf("Registers: %v\n", m.Registers)
			fmt.Printf("Total energy: %.2f\n", m.Energy.TotalEnergy)
			fmt.Printf("Metrics: %s\n", m.Metrics.Summary())
			if s := controller.Summary(); s.TotalRequests > 0 {
				fmt.Println()
				fmt.Print(controller.FormatReport())
			}
			return nil
		},
	}
}

// debugCommand runs the intentionally buggy demo program through the
// time-travel debugger, printing its diagnostic report. With --watch it
// instead opens a live termui panel.
func debugCommand() *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Run the time-travel debugger against the buggy demo program",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Open a live termui panel instead of printing a static report",
			},
		},
		Action: func(c *cli.Context) error {
			m := machine.New()
			if err := m.LoadProgram(demo.BuggyProgram(), nil); err != nil {
				return err
			}

			d := debugger.New(m)
			d.WatchEquals(2, 15, "r2==15")

			if c.Bool("watch") {
				return runWatchPanel(d)
			}

			report, err := d.RunAndDiagnose(1000)
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}
}

// analyzeCommand runs the increment demo and the counting loop side by
// side through a history.Analyzer and prints the comparison table.
func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Compare history-buffer pressure across the canned demo programs",
		Action: func(c *cli.Context) error {
			a := history.NewAnalyzer()

			if err := recordRun(a, "increment", demo.Increment(), nil); err != nil {
				return err
			}

			p := asm.NewParser()
			loop, err := p.Parse(demo.LoopSource)
			if err != nil {
				return err
			}
			if err := recordRun(a, "loop", loop, p.Labels); err != nil {
				return err
			}

			fmt.Println(a.Compare())
			return nil
		},
	}
}

// recordRun runs program to completion, tracking its history-buffer
// pressure and reversibility ratio, and records the result under name.
func recordRun(a *history.Analyzer, name string, program []isa.Instruction, labels map[string]int) error {
	m := machine.New()
	if err := m.LoadProgram(program, labels); err != nil {
		return err
	}

	buf := history.NewBuffer()
	step := 0
	for !m.Halted() && step < 10000 {
		if m.PC >= 0 && m.PC < len(m.Program) {
			instr := m.Program[m.PC]
			if kind := history.ClassifyOp(instr.Op == isa.BEQ, instr.Reversible()); kind != history.IrreversibleOp {
				buf.Push(m.PC, instr.Op.String(), kind, nil)
			}
		}
		if err := m.Step(); err != nil {
			return err
		}
		step++
		buf.RecordSnapshot(step)
	}

	var ratio float64
	if total := m.Metrics.Total(); total > 0 {
		ratio = m.Metrics.ReversibleRatio()
	}
	a.RecordRun(name, buf, ratio, len(program))
	return nil
}
