// Package bench runs many independent machines in parallel and records how
// fast each one emulates.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oisee/fe2z80/pkg/machine"
	"github.com/oisee/fe2z80/pkg/result"
)

// Task is one program to run for a fixed number of T-states, or until it
// halts.
type Task struct {
	Name    string
	Image   []byte
	Origin  uint16
	TStates uint64
}

// Pool manages parallel benchmark workers. Each task gets its own Machine,
// so workers share nothing but the result table and counters.
type Pool struct {
	NumWorkers int
	Results    *result.Table
	Log        *slog.Logger

	tstates atomic.Uint64
	done    atomic.Int64
}

// NewPool creates a pool with the given number of workers.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{
		NumWorkers: numWorkers,
		Results:    result.NewTable(),
		Log:        slog.New(slog.DiscardHandler),
	}
}

// Stats returns the T-states emulated and tasks completed so far. Safe to
// call while Run is in progress.
func (p *Pool) Stats() (tstates uint64, done int64) {
	return p.tstates.Load(), p.done.Load()
}

// Run distributes tasks across workers and waits for them. The first task
// error cancels the rest.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.NumWorkers)
	for _, task := range tasks {
		g.Go(func() error { return p.runTask(ctx, task) })
	}
	return g.Wait()
}

func (p *Pool) runTask(ctx context.Context, task Task) error {
	cfg := machine.DefaultConfig()
	cfg.Image = task.Image
	cfg.Origin = task.Origin
	cfg.MaxTStates = task.TStates
	m, err := machine.New(cfg)
	if err != nil {
		return fmt.Errorf("task %s: %w", task.Name, err)
	}

	start := time.Now()
	res, err := m.Run(ctx)
	elapsed := time.Since(start)
	p.tstates.Add(res.TStates)
	if err != nil {
		return fmt.Errorf("task %s: %w", task.Name, err)
	}
	p.done.Add(1)

	p.Results.Add(result.Row{
		Name:         task.Name,
		TStates:      res.TStates,
		Instructions: res.Instructions,
		Elapsed:      elapsed,
		Stop:         res.Stop.String(),
	})
	p.Log.Debug("task done", "task", task.Name, "tstates", res.TStates, "elapsed", elapsed)
	return nil
}
