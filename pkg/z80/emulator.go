// Package z80 is a Zilog Z80 driven one clock edge at a time.
//
// The host owns the register file, the pin structures and the memory pages.
// Each call to OnClock advances the CPU by exactly one T-state: it samples
// the input pins, drives the output pins and data bus for that T-state, and
// updates the registers when an instruction step completes. Everything in
// between (the current machine cycle, its T-state, queued cycles of the
// running instruction, pending interrupts) lives inside the Emulator and
// persists across calls.
package z80

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oisee/fe2z80/pkg/cpu"
	"github.com/oisee/fe2z80/pkg/mmu"
	"github.com/oisee/fe2z80/pkg/pins"
)

// ErrMidCycle is returned by Attach and Detach when the machine cycle in
// flight is accessing the page being changed.
var ErrMidCycle = errors.New("z80: page is addressed by the cycle in flight")

// resetMinEdges is how long RESET must be held for the CPU to reset.
const resetMinEdges = 3

// Status is the coarse execution state of the CPU.
type Status uint8

const (
	Running Status = iota
	Halted
	InterruptAck
	NmiAck
	Resetting
	BusGranted
)

var statusNames = [...]string{"running", "halted", "intack", "nmiack", "resetting", "busgranted"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Emulator holds the internal state of one CPU. The zero value is not
// usable; call New.
type Emulator struct {
	pages mmu.PageTable
	log   *slog.Logger

	// Host structures for the edge being processed.
	r   *cpu.Registers
	out *pins.OutputPins
	io  *pins.DataPins

	cur    busCycle
	active bool
	queue  []busCycle
	head   int

	prefix uint8 // 0, 0xDD or 0xFD for the instruction being decoded

	status     Status
	halted     bool
	eiDelay    bool // EI just executed: INT is not accepted at the next boundary
	nmiPending bool
	nmiPrev    bool
	resetEdges int
	granted    bool
	inInsn     bool

	tstates uint64
	insns   uint64
}

// Option configures an Emulator.
type Option func(*Emulator)

// WithLogger sets the logger used for page map changes. Nothing is logged
// from OnClock.
func WithLogger(l *slog.Logger) Option {
	return func(e *Emulator) { e.log = l }
}

// New returns an emulator with every page unmapped. The host register
// file is not touched until the first clock edge; hosts normally start by
// holding RESET or by calling Reset on their registers.
func New(opts ...Option) *Emulator {
	e := &Emulator{
		log:   slog.New(slog.DiscardHandler),
		queue: make([]busCycle, 0, 16),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Attach maps a 256-byte host buffer at page index. mem is borrowed, not
// copied, and must stay valid until it is detached or replaced.
func (e *Emulator) Attach(index int, access mmu.Access, mem []byte) error {
	if e.touches(index) {
		return fmt.Errorf("attach page %d: %w", index, ErrMidCycle)
	}
	if err := e.pages.Attach(index, access, mem); err != nil {
		return err
	}
	e.log.Debug("page attached", "page", index, "access", access.String())
	return nil
}

// Detach unmaps page index. Reads from it return open bus afterwards.
func (e *Emulator) Detach(index int) error {
	if e.touches(index) {
		return fmt.Errorf("detach page %d: %w", index, ErrMidCycle)
	}
	if err := e.pages.Detach(index); err != nil {
		return err
	}
	e.log.Debug("page detached", "page", index)
	return nil
}

// Mapping reports the access tag at page index.
func (e *Emulator) Mapping(index int) mmu.Access { return e.pages.Mapping(index) }

// Status returns the current execution state.
func (e *Emulator) Status() Status {
	switch {
	case e.resetEdges >= resetMinEdges:
		return Resetting
	case e.granted:
		return BusGranted
	}
	return e.status
}

// AtBoundary reports whether the last edge completed an instruction (or an
// interrupt response, or a halted M1) and nothing is queued.
func (e *Emulator) AtBoundary() bool { return !e.active && e.queued() == 0 }

// TStates returns the number of clock edges consumed.
func (e *Emulator) TStates() uint64 { return e.tstates }

// Instructions returns the number of completed instructions, counting each
// interrupt response as one.
func (e *Emulator) Instructions() uint64 { return e.insns }

// OnClock advances the CPU by one T-state.
func (e *Emulator) OnClock(in *pins.InputPins, out *pins.OutputPins, bus *pins.DataPins, regs *cpu.Registers) {
	e.r, e.out, e.io = regs, out, bus
	e.tstates++

	nmi := in.NMI.IsActive()
	if nmi && !e.nmiPrev {
		e.nmiPending = true
	}
	e.nmiPrev = nmi

	if in.Reset.IsActive() {
		e.resetEdges++
		if e.resetEdges >= resetMinEdges {
			e.quiesce()
		}
		return
	}
	if e.resetEdges > 0 {
		armed := e.resetEdges >= resetMinEdges
		e.resetEdges = 0
		if armed {
			e.reset()
			return
		}
	}

	if !e.active {
		// A queued refresh is the second half of the M1 that just ended.
		if !e.refreshNext() {
			if in.BusReq.IsActive() {
				e.granted = true
				e.float()
				out.BusAck = pins.Active
				return
			}
			if e.granted {
				e.granted = false
				out.BusAck = pins.Inactive
			}
		}
		if e.queued() == 0 {
			e.boundary(in.Int.IsActive())
		}
		e.next()
	}
	e.tick(in.Wait.IsActive())

	if e.AtBoundary() && e.inInsn {
		e.insns++
		e.inInsn = false
	}
}

// quiesce drives the outputs to their reset state while RESET is held.
func (e *Emulator) quiesce() {
	o := e.out
	o.M1 = pins.Inactive
	o.MREQ = pins.TristateFloating
	o.IORQ = pins.TristateFloating
	o.RD = pins.TristateFloating
	o.WR = pins.Inactive
	o.RFSH = pins.Inactive
	o.Halt = pins.Inactive
	o.BusAck = pins.Inactive
}

// reset applies a completed RESET pulse: loads the reset register values
// and discards all in-flight state. No bus activity happens on this edge.
func (e *Emulator) reset() {
	e.r.Reset()
	e.cur = busCycle{}
	e.active = false
	clear(e.queue)
	e.queue = e.queue[:0]
	e.head = 0
	e.prefix = 0
	e.status = Running
	e.halted = false
	e.eiDelay = false
	e.nmiPending = false
	e.granted = false
	e.inInsn = false
	e.drive(e.out.AddressBus, 0)
}
