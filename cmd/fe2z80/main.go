package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oisee/fe2z80/pkg/cpu"
	"github.com/oisee/fe2z80/pkg/inst"
	"github.com/oisee/fe2z80/pkg/machine"
)

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "fe2z80",
		Short:         "Clock-edge Z80 emulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	// run command
	cfg := machine.DefaultConfig()
	var intAt, nmiAt []uint

	runCmd := &cobra.Command{
		Use:   "run [image]",
		Short: "Load a binary image and clock it until it halts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cfg.Image = image
			for _, at := range intAt {
				cfg.Stimuli = append(cfg.Stimuli, machine.Stimulus{Kind: machine.Int, At: uint64(at)})
			}
			for _, at := range nmiAt {
				cfg.Stimuli = append(cfg.Stimuli, machine.Stimulus{Kind: machine.NMI, At: uint64(at), Edges: 1})
			}

			console := &countingWriter{w: os.Stdout}
			m, err := machine.New(cfg, machine.WithLogger(slog.Default()), machine.WithConsole(console))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			res, err := m.Run(ctx)
			if err != nil {
				return err
			}

			if console.n > 0 && term.IsTerminal(int(os.Stdout.Fd())) {
				fmt.Println()
			}
			fmt.Printf("stopped: %s after %d T-states, %d instructions\n", res.Stop, res.TStates, res.Instructions)
			fmt.Println(dumpRegisters(&m.Regs))
			return nil
		},
	}
	runCmd.Flags().Var(&cfg.ROM, "rom", "Read-only page ranges, e.g. 0x00-0x3f")
	runCmd.Flags().Var(&cfg.RAM, "ram", "Read-write page ranges (default: every page when --rom is also unset)")
	runCmd.Flags().Uint16Var(&cfg.Origin, "origin", 0, "Load address and initial PC")
	runCmd.Flags().Uint64Var(&cfg.MaxTStates, "max-tstates", 100_000_000, "Stop after this many T-states (0 = no limit)")
	runCmd.Flags().UintSliceVar(&intAt, "int-at", nil, "Assert INT from these clock edges until acknowledged")
	runCmd.Flags().UintSliceVar(&nmiAt, "nmi-at", nil, "Pulse NMI at these clock edges")
	runCmd.Flags().Uint8Var(&cfg.IntVector, "im2-vector", 0xFF, "Byte on the data bus during INT acknowledge")
	runCmd.Flags().IntVar(&cfg.ConsolePort, "console-port", -1, "Low byte of the port whose writes go to stdout (-1 = none)")

	// timing command
	timingCmd := &cobra.Command{
		Use:   "timing",
		Short: "Check the emulated duration of every instruction against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checked, bad, err := machine.CheckTiming()
			if err != nil {
				return err
			}
			for _, m := range bad {
				fmt.Println(m)
			}
			fmt.Printf("%d instructions checked, %d mismatches\n", checked, len(bad))
			if len(bad) > 0 {
				return fmt.Errorf("%d timing mismatches", len(bad))
			}
			return nil
		},
	}

	// disasm command
	var disasmOrigin uint16

	disasmCmd := &cobra.Command{
		Use:   "disasm [image]",
		Short: "Disassemble a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return disassemble(os.Stdout, code, disasmOrigin)
		},
	}
	disasmCmd.Flags().Uint16Var(&disasmOrigin, "origin", 0, "Address of the first byte")

	rootCmd.AddCommand(runCmd, timingCmd, disasmCmd, newBenchCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fe2z80:", err)
		os.Exit(1)
	}
}

// countingWriter counts the bytes the console port produced.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func dumpRegisters(r *cpu.Registers) string {
	iff := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return fmt.Sprintf("PC=%04X SP=%04X AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X\n"+
		"AF'=%04X BC'=%04X DE'=%04X HL'=%04X I=%02X R=%02X IFF1=%s IFF2=%s IM=%d",
		r.PC, r.SP, r.AF(), r.BC(), r.DE(), r.HL(), r.IX, r.IY,
		r.AF2(), r.BC2(), r.DE2(), r.HL2(), r.I, r.R, iff(r.IFF1), iff(r.IFF2), r.IM)
}

// disassemble lists code one instruction per line. Bytes that do not
// decode are emitted as DB.
func disassemble(w io.Writer, code []byte, origin uint16) error {
	for pc := 0; pc < len(code); {
		addr := origin + uint16(pc)
		text, n, err := inst.Disassemble(code[pc:], addr)
		if err != nil {
			text, n = fmt.Sprintf("DB 0%02Xh", code[pc]), 1
		}
		hex := make([]string, n)
		for i := range hex {
			hex[i] = fmt.Sprintf("%02X", code[pc+i])
		}
		if _, err := fmt.Fprintf(w, "%04X  %-12s %s\n", addr, strings.Join(hex, " "), text); err != nil {
			return err
		}
		pc += n
	}
	return nil
}
