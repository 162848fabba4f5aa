// Package machine is a host for the z80 core: it owns the backing memory,
// the pins and the register file, maps pages from a Config, services port
// I/O and drives scheduled input stimuli while clocking the CPU.
package machine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/oisee/fe2z80/pkg/cpu"
	"github.com/oisee/fe2z80/pkg/mmu"
	"github.com/oisee/fe2z80/pkg/pins"
	"github.com/oisee/fe2z80/pkg/z80"
)

// ErrNoBoundary is returned by Step when the CPU does not reach an
// instruction boundary, for example because WAIT or BUSREQ is held.
var ErrNoBoundary = errors.New("machine: no instruction boundary")

// stepLimit bounds the edges Step spends looking for a boundary.
const stepLimit = 1 << 16

// checkEvery is how often Run polls its context, in edges.
const checkEvery = 4096

// IO services the port reads and writes the CPU performs.
type IO interface {
	In(port uint16) uint8
	Out(port uint16, v uint8)
}

// openPorts answers every read with 0xFF and drops writes.
type openPorts struct{}

func (openPorts) In(uint16) uint8    { return 0xFF }
func (openPorts) Out(uint16, uint8) {}

// StopReason says why Run returned.
type StopReason uint8

const (
	Halted StopReason = iota
	Limited
	Cancelled
)

func (s StopReason) String() string {
	switch s {
	case Halted:
		return "halted"
	case Limited:
		return "limit"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("StopReason(%d)", uint8(s))
}

// Result summarises a Run.
type Result struct {
	Stop         StopReason
	TStates      uint64
	Instructions uint64
}

type scheduled struct {
	Stimulus
	acked bool
}

// active reports whether the stimulus drives its pin on edge n.
func (s *scheduled) active(n uint64) bool {
	if n < s.At {
		return false
	}
	if s.Kind == Int && s.Edges == 0 {
		return !s.acked
	}
	return n < s.At+max(s.Edges, 1)
}

// done reports whether the stimulus can no longer affect edges from n on.
func (s *scheduled) done(n uint64) bool {
	if s.Kind == Int && s.Edges == 0 {
		return s.acked
	}
	return n >= s.At+max(s.Edges, 1)
}

// Machine is one CPU with its memory and peripherals. It is not safe for
// concurrent use; independent Machines share nothing.
type Machine struct {
	Regs cpu.Registers
	In   pins.InputPins
	Out  pins.OutputPins
	Bus  pins.DataPins

	cfg     Config
	emu     *z80.Emulator
	mem     []byte
	log     *slog.Logger
	io      IO
	console io.Writer

	edge    uint64
	stimuli []scheduled
	portIn  uint8
	prevIOR bool
	prevIOW bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger for the machine and its CPU.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithIO routes port accesses to io. Writes to the console port still go to
// the console writer.
func WithIO(p IO) Option {
	return func(m *Machine) { m.io = p }
}

// WithConsole sets where console port writes go.
func WithConsole(w io.Writer) Option {
	return func(m *Machine) { m.console = w }
}

// New validates cfg, maps its pages, loads the image and leaves the CPU
// with reset register values and PC at the image origin.
func New(cfg Config, opts ...Option) (*Machine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		cfg:     cfg,
		mem:     make([]byte, 0x10000),
		log:     slog.New(slog.DiscardHandler),
		io:      openPorts{},
		console: io.Discard,
	}
	for _, o := range opts {
		o(m)
	}
	m.emu = z80.New(z80.WithLogger(m.log))

	mapped := 0
	for p := 0; p < mmu.PageCount; p++ {
		a := cfg.access(p)
		if a == mmu.Unmapped {
			continue
		}
		if err := m.emu.Attach(p, a, m.mem[p*mmu.PageSize:(p+1)*mmu.PageSize]); err != nil {
			return nil, fmt.Errorf("machine: map page 0x%02x: %w", p, err)
		}
		mapped++
	}
	copy(m.mem[cfg.Origin:], cfg.Image)

	m.stimuli = make([]scheduled, len(cfg.Stimuli))
	for i, s := range cfg.Stimuli {
		m.stimuli[i] = scheduled{Stimulus: s}
	}

	m.Regs.Reset()
	m.Regs.PC = cfg.Origin
	m.log.Info("machine ready", "pages", mapped, "image", len(cfg.Image), "origin", fmt.Sprintf("0x%04x", cfg.Origin))
	return m, nil
}

// Memory returns the backing store for all 64K of address space. Pages
// that are unmapped are present but invisible to the CPU.
func (m *Machine) Memory() []byte { return m.mem }

// CPU returns the emulator, for status queries and page changes.
func (m *Machine) CPU() *z80.Emulator { return m.emu }

// Tick applies the stimuli for the next edge, clocks the CPU once and
// plays the host side of the bus for the edge that follows.
func (m *Machine) Tick() {
	m.drive()
	m.emu.OnClock(&m.In, &m.Out, &m.Bus, &m.Regs)
	m.edge++

	if m.Out.IntAck() {
		m.Bus.DataBus = m.cfg.IntVector
		for i := range m.stimuli {
			s := &m.stimuli[i]
			if s.Kind == Int && s.Edges == 0 && s.At < m.edge {
				s.acked = true
			}
		}
	}

	ior := m.Out.IORead()
	if ior {
		if !m.prevIOR {
			m.portIn = m.io.In(m.Out.AddressBus)
		}
		m.Bus.DataBus = m.portIn
	}
	m.prevIOR = ior

	iow := m.Out.IOWrite()
	if iow && !m.prevIOW {
		m.output(m.Out.AddressBus, m.Bus.DataBus)
	}
	m.prevIOW = iow
}

func (m *Machine) output(port uint16, v uint8) {
	if m.cfg.ConsolePort >= 0 && int(port&0xFF) == m.cfg.ConsolePort {
		if _, err := m.console.Write([]byte{v}); err != nil {
			m.log.Warn("console write failed", "err", err)
		}
		return
	}
	m.io.Out(port, v)
}

// drive sets the input pins from the stimulus schedule.
func (m *Machine) drive() {
	var in pins.InputPins
	for i := range m.stimuli {
		s := &m.stimuli[i]
		if !s.active(m.edge) {
			continue
		}
		switch s.Kind {
		case Int:
			in.Int = pins.Active
		case NMI:
			in.NMI = pins.Active
		case Wait:
			in.Wait = pins.Active
		case BusReq:
			in.BusReq = pins.Active
		case Reset:
			in.Reset = pins.Active
		}
	}
	m.In = in
}

// pending reports whether any stimulus can still change the inputs.
func (m *Machine) pending() bool {
	for i := range m.stimuli {
		if !m.stimuli[i].done(m.edge) {
			return true
		}
	}
	return false
}

// Step clocks until the CPU reaches the next instruction boundary and
// returns the edges spent.
func (m *Machine) Step() (int, error) {
	for n := 1; n <= stepLimit; n++ {
		m.Tick()
		if m.emu.AtBoundary() {
			return n, nil
		}
	}
	return stepLimit, fmt.Errorf("after %d edges at PC 0x%04x: %w", stepLimit, m.Regs.PC, ErrNoBoundary)
}

// Run clocks until the CPU halts with nothing left to wake it, the
// configured T-state limit is reached, or ctx is done.
func (m *Machine) Run(ctx context.Context) (Result, error) {
	start, startInsn := m.emu.TStates(), m.emu.Instructions()
	result := func(stop StopReason) Result {
		return Result{
			Stop:         stop,
			TStates:      m.emu.TStates() - start,
			Instructions: m.emu.Instructions() - startInsn,
		}
	}

	for n := uint64(1); ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return result(Cancelled), err
			}
		}
		if m.cfg.MaxTStates > 0 && m.emu.TStates()-start >= m.cfg.MaxTStates {
			return result(Limited), nil
		}
		m.Tick()
		if m.emu.Status() == z80.Halted && m.emu.AtBoundary() && !m.pending() {
			res := result(Halted)
			m.log.Debug("halted", "pc", fmt.Sprintf("0x%04x", m.Regs.PC), "tstates", res.TStates)
			return res, nil
		}
	}
}

// Reset holds RESET long enough for the CPU to accept it and releases it.
// Scheduled stimuli are left untouched.
func (m *Machine) Reset() {
	for i := 0; i < 3; i++ {
		m.In = pins.InputPins{Reset: pins.Active}
		m.emu.OnClock(&m.In, &m.Out, &m.Bus, &m.Regs)
		m.edge++
	}
	m.In = pins.InputPins{}
	m.emu.OnClock(&m.In, &m.Out, &m.Bus, &m.Regs)
	m.edge++
}
