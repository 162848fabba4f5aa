package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/oisee/fe2z80/internal/statsview"
	"github.com/oisee/fe2z80/pkg/bench"
	"github.com/oisee/fe2z80/pkg/result"
)

func newBenchCmd() *cobra.Command {
	var (
		numWorkers int
		tstates    uint64
		copies     int
		cpuProfile bool
		memProfile bool
		profileDir string
		stats      bool
		statsAddr  string
		save       string
		compare    string
	)

	cmd := &cobra.Command{
		Use:   "bench [images...]",
		Short: "Run independent machines in parallel and report emulation speed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile && memProfile {
				return errors.New("--cpuprofile and --memprofile are exclusive")
			}
			if cpuProfile {
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
			}
			if memProfile {
				defer profile.Start(profile.MemProfile, profile.ProfilePath(profileDir), profile.Quiet).Stop()
			}
			if stats {
				srv, err := statsview.Launch(statsAddr)
				if err != nil {
					return err
				}
				defer srv.Stop()
				fmt.Printf("Runtime statistics at %s\n", srv.URL)
			}

			tasks := bench.Workloads(tstates)
			for _, path := range args {
				image, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				tasks = append(tasks, bench.Task{Name: filepath.Base(path), Image: image, TStates: tstates})
			}
			var all []bench.Task
			for i := 0; i < copies; i++ {
				for _, t := range tasks {
					if copies > 1 {
						t.Name = fmt.Sprintf("%s#%d", t.Name, i)
					}
					all = append(all, t)
				}
			}

			pool := bench.NewPool(numWorkers)
			pool.Log = slog.Default()
			fmt.Printf("fe2z80 bench\n")
			fmt.Printf("  Tasks: %d\n", len(all))
			fmt.Printf("  Workers: %d\n", pool.NumWorkers)
			fmt.Printf("  T-states per task: %d\n", tstates)
			fmt.Println()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			start := time.Now()
			if err := pool.Run(ctx, all); err != nil {
				return err
			}
			elapsed := time.Since(start)

			rows := pool.Results.Rows()
			for _, r := range rows {
				fmt.Printf("  %-16s %8.2f MHz  %10d insns  %s\n", r.Name, r.MHz(), r.Instructions, r.Stop)
			}
			total, done := pool.Stats()
			fmt.Printf("\n%d tasks, %d T-states in %s (%.2f MHz aggregate)\n",
				done, total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds()/1e6)

			if compare != "" {
				base, err := result.LoadBaseline(compare)
				if err != nil {
					return err
				}
				fmt.Printf("\nAgainst %s (%s):\n", compare, base.Taken.Format(time.DateTime))
				for _, d := range base.Compare(rows) {
					if d.Before == 0 {
						fmt.Printf("  %-16s new\n", d.Name)
						continue
					}
					fmt.Printf("  %-16s %6.2fx\n", d.Name, d.Ratio())
				}
			}
			if save != "" {
				if err := result.SaveBaseline(save, &result.Baseline{Rows: rows, Taken: time.Now()}); err != nil {
					return err
				}
				fmt.Printf("Written to %s\n", save)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	cmd.Flags().Uint64Var(&tstates, "tstates", 10_000_000, "T-states each task runs for")
	cmd.Flags().IntVar(&copies, "copies", 1, "Run every task this many times")
	cmd.Flags().BoolVar(&cpuProfile, "cpuprofile", false, "Write a CPU profile")
	cmd.Flags().BoolVar(&memProfile, "memprofile", false, "Write a heap profile")
	cmd.Flags().StringVar(&profileDir, "profile-dir", ".", "Directory for profile output")
	cmd.Flags().BoolVar(&stats, "statsview", false, "Serve live runtime statistics (statsview builds only)")
	cmd.Flags().StringVar(&statsAddr, "statsview-addr", statsview.DefaultAddr, "Listen address for --statsview")
	cmd.Flags().StringVar(&save, "save", "", "Save results as a baseline file")
	cmd.Flags().StringVar(&compare, "compare", "", "Compare results with a saved baseline")
	return cmd
}
