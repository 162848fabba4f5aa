package z80

import (
	"testing"

	"github.com/oisee/fe2z80/pkg/cpu"
	"github.com/oisee/fe2z80/pkg/mmu"
	"github.com/oisee/fe2z80/pkg/pins"
)

type portWrite struct {
	port uint16
	v    uint8
}

// rig is a minimal host: 64K of RAM, a port map for IN, a log of OUT, and
// a fixed interrupt vector answered during acknowledge.
type rig struct {
	t    *testing.T
	emu  *Emulator
	in   pins.InputPins
	out  pins.OutputPins
	bus  pins.DataPins
	regs cpu.Registers
	mem  []byte

	ports  map[uint16]uint8
	writes []portWrite
	vector uint8

	prevIOW bool
}

func newRig(t *testing.T, program ...byte) *rig {
	t.Helper()
	r := &rig{
		t:     t,
		emu:   New(),
		mem:   make([]byte, 0x10000),
		ports: map[uint16]uint8{},
	}
	for p := 0; p < mmu.PageCount; p++ {
		if err := r.emu.Attach(p, mmu.ReadWrite, r.mem[p*mmu.PageSize:(p+1)*mmu.PageSize]); err != nil {
			t.Fatal(err)
		}
	}
	copy(r.mem, program)
	r.regs.Reset()
	return r
}

// clock runs one edge and then plays the host's part for the next one.
func (r *rig) clock() {
	r.emu.OnClock(&r.in, &r.out, &r.bus, &r.regs)
	switch {
	case r.out.IntAck():
		r.bus.DataBus = r.vector
	case r.out.IORead():
		v, ok := r.ports[r.out.AddressBus]
		if !ok {
			v = 0xFF
		}
		r.bus.DataBus = v
	}
	iow := r.out.IOWrite()
	if iow && !r.prevIOW {
		r.writes = append(r.writes, portWrite{r.out.AddressBus, r.bus.DataBus})
	}
	r.prevIOW = iow
}

// step clocks until the next boundary and returns the edges consumed.
func (r *rig) step() int {
	r.t.Helper()
	n := 0
	for {
		r.clock()
		n++
		if r.emu.AtBoundary() {
			return n
		}
		if n > 1000 {
			r.t.Fatalf("no boundary after %d edges at PC=%04X", n, r.regs.PC)
		}
	}
}

// run steps count boundaries and returns the total edges.
func (r *rig) run(count int) int {
	total := 0
	for i := 0; i < count; i++ {
		total += r.step()
	}
	return total
}
