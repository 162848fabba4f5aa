// Package pins describes the electrical boundary of the CPU: input signals
// sampled each clock edge, output signals driven each clock edge, and the
// bidirectional data bus.
//
// Signals are expressed as active/inactive rather than high/low so callers
// never have to remember which Z80 lines are active-low.
package pins

// Bistate is a signal that is either asserted or not.
type Bistate uint8

const (
	Inactive Bistate = iota
	Active
)

// Bi converts a boolean into a Bistate.
func Bi(active bool) Bistate {
	if active {
		return Active
	}
	return Inactive
}

// IsActive reports whether the signal is asserted.
func (b Bistate) IsActive() bool { return b == Active }

func (b Bistate) String() string {
	if b == Active {
		return "active"
	}
	return "inactive"
}

// Tristate is a signal that may additionally be left floating (high impedance).
type Tristate uint8

const (
	TristateInactive Tristate = iota
	TristateActive
	TristateFloating
)

// Tri converts a boolean into a driven Tristate.
func Tri(active bool) Tristate {
	if active {
		return TristateActive
	}
	return TristateInactive
}

// IsActive reports whether the signal is actively asserted.
func (t Tristate) IsActive() bool { return t == TristateActive }

// IsFloating reports whether the signal is not being driven.
func (t Tristate) IsFloating() bool { return t == TristateFloating }

func (t Tristate) String() string {
	switch t {
	case TristateActive:
		return "active"
	case TristateFloating:
		return "floating"
	}
	return "inactive"
}

// InputPins is the state of the input signals for one clock edge. The
// clock itself is the call to the emulator's clock-step entry.
type InputPins struct {
	BusReq Bistate
	Int    Bistate
	NMI    Bistate
	Reset  Bistate
	Wait   Bistate
}

// OutputPins is the state of the output signals after a clock edge.
type OutputPins struct {
	AddressBus uint16
	BusAck     Bistate
	Halt       Bistate
	IORQ       Tristate
	M1         Bistate
	MREQ       Tristate
	RD         Tristate
	RFSH       Bistate
	WR         Bistate
}

// DataPins is the bidirectional data bus. The CPU drives it during memory
// reads (with the byte from its page table) and during writes; the host
// drives it for I/O reads and interrupt acknowledge.
type DataPins struct {
	DataBus uint8
}

// MemRead reports whether the outputs describe a memory read in progress.
func (o *OutputPins) MemRead() bool {
	return o.MREQ.IsActive() && o.RD.IsActive()
}

// MemWrite reports whether the outputs describe a memory write in progress.
func (o *OutputPins) MemWrite() bool {
	return o.MREQ.IsActive() && o.WR.IsActive()
}

// IORead reports whether the outputs describe an I/O read in progress.
func (o *OutputPins) IORead() bool {
	return o.IORQ.IsActive() && o.RD.IsActive()
}

// IOWrite reports whether the outputs describe an I/O write in progress.
func (o *OutputPins) IOWrite() bool {
	return o.IORQ.IsActive() && o.WR.IsActive()
}

// IntAck reports whether the outputs describe an interrupt acknowledge
// (M1 together with IORQ), during which the host places a byte on the bus.
func (o *OutputPins) IntAck() bool {
	return o.M1.IsActive() && o.IORQ.IsActive()
}
