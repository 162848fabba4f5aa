package z80

import "github.com/oisee/fe2z80/pkg/pins"

// cycleKind identifies the bus transaction a machine cycle performs.
type cycleKind uint8

const (
	cycleFetch    cycleKind = iota // M1 opcode read, T1-T2
	cycleRefresh                   // refresh half of every M1, T3-T4
	cycleRead                      // memory read
	cycleWrite                     // memory write
	cycleIORead                    // port read, includes the automatic wait state
	cycleIOWrite                   // port write, includes the automatic wait state
	cycleIntAck                    // maskable interrupt acknowledge, two automatic waits
	cycleNmiAck                    // NMI acknowledge M1: no memory request
	cycleInternal                  // CPU busy, no bus activity
)

var cycleNames = [...]string{
	cycleFetch:    "fetch",
	cycleRefresh:  "refresh",
	cycleRead:     "read",
	cycleWrite:    "write",
	cycleIORead:   "ioread",
	cycleIOWrite:  "iowrite",
	cycleIntAck:   "intack",
	cycleNmiAck:   "nmiack",
	cycleInternal: "internal",
}

func (k cycleKind) String() string { return cycleNames[k] }

// Base length and WAIT sample point (T-state index, 1-based, 0 = never
// sampled) per cycle kind. Internal cycles carry their own length.
var cycleTiming = [...]struct{ length, waitAt int }{
	cycleFetch:    {2, 2},
	cycleRefresh:  {2, 0},
	cycleRead:     {3, 2},
	cycleWrite:    {3, 2},
	cycleIORead:   {4, 3},
	cycleIOWrite:  {4, 3},
	cycleIntAck:   {4, 4},
	cycleNmiAck:   {2, 2},
	cycleInternal: {0, 0},
}

// Control line bits for drive.
const (
	sigM1 uint8 = 1 << iota
	sigMREQ
	sigIORQ
	sigRD
	sigWR
	sigRFSH
)

// busCycle is one machine cycle, queued by the executor and consumed one
// T-state per clock edge by the sequencer.
type busCycle struct {
	kind   cycleKind
	t      int // current T-state, 1-based
	length int
	waits  int // wait states inserted so far
	addr   uint16
	data   uint8
	noInc  bool // fetch without advancing PC (HALT)

	// done runs once the last T-state has completed. data holds the byte
	// read for read-type cycles.
	done func(data uint8)
}

// push appends a machine cycle to the instruction's queue.
func (e *Emulator) push(c busCycle) {
	c.t = 1
	if c.kind != cycleInternal {
		c.length = cycleTiming[c.kind].length
	}
	e.queue = append(e.queue, c)
}

// next moves the head of the queue into the in-flight slot.
func (e *Emulator) next() {
	e.cur = e.queue[e.head]
	e.queue[e.head] = busCycle{}
	e.head++
	if e.head == len(e.queue) {
		e.queue = e.queue[:0]
		e.head = 0
	}
	e.active = true

	// Addresses of PC-relative cycles are latched when the cycle starts,
	// so that earlier cycles of the same instruction may move PC.
	switch e.cur.kind {
	case cycleFetch, cycleIntAck, cycleNmiAck:
		e.cur.addr = e.r.PC
	case cycleRefresh:
		e.cur.addr = e.r.IR()
	}
}

func (e *Emulator) queued() int { return len(e.queue) - e.head }

// refreshNext reports whether the next queued cycle is the refresh half of
// an M1.
func (e *Emulator) refreshNext() bool {
	return e.queued() > 0 && e.queue[e.head].kind == cycleRefresh
}

// drive sets every bus control output for the current T-state.
func (e *Emulator) drive(addr uint16, sig uint8) {
	o := e.out
	o.AddressBus = addr
	o.M1 = pins.Bi(sig&sigM1 != 0)
	o.MREQ = pins.Tri(sig&sigMREQ != 0)
	o.IORQ = pins.Tri(sig&sigIORQ != 0)
	o.RD = pins.Tri(sig&sigRD != 0)
	o.WR = pins.Bi(sig&sigWR != 0)
	o.RFSH = pins.Bi(sig&sigRFSH != 0)
	o.Halt = pins.Bi(e.halted)
	o.BusAck = pins.Inactive
}

// idle releases the control lines without moving the address bus.
func (e *Emulator) idle() {
	e.drive(e.out.AddressBus, 0)
}

// float tristates the bus while another master owns it. The 16-bit address
// bus has no floating state in the pin contract, so it keeps its last value.
func (e *Emulator) float() {
	o := e.out
	o.M1 = pins.Inactive
	o.MREQ = pins.TristateFloating
	o.IORQ = pins.TristateFloating
	o.RD = pins.TristateFloating
	o.WR = pins.Inactive
	o.RFSH = pins.Inactive
	o.Halt = pins.Bi(e.halted)
}

// tick runs one T-state of the in-flight machine cycle.
func (e *Emulator) tick(wait bool) {
	c := &e.cur
	switch c.kind {
	case cycleFetch:
		e.drive(c.addr, sigM1|sigMREQ|sigRD)
	case cycleRefresh:
		if c.t == 1 {
			e.r.IncR()
			e.drive(c.addr, sigMREQ|sigRFSH)
		} else {
			e.drive(c.addr, sigRFSH)
		}
	case cycleRead:
		e.drive(c.addr, sigMREQ|sigRD)
	case cycleWrite:
		if c.t == 1 {
			e.drive(c.addr, sigMREQ)
		} else {
			e.drive(c.addr, sigMREQ|sigWR)
		}
		e.io.DataBus = c.data
	case cycleIORead:
		if c.t == 1 {
			e.drive(c.addr, 0)
		} else {
			e.drive(c.addr, sigIORQ|sigRD)
		}
	case cycleIOWrite:
		if c.t == 1 {
			e.drive(c.addr, 0)
		} else {
			e.drive(c.addr, sigIORQ|sigWR)
		}
		e.io.DataBus = c.data
	case cycleIntAck:
		if c.t <= 2 {
			e.drive(c.addr, sigM1)
		} else {
			e.drive(c.addr, sigM1|sigIORQ)
		}
	case cycleNmiAck:
		e.drive(c.addr, sigM1)
	case cycleInternal:
		e.idle()
	}

	if wait && c.t == cycleTiming[c.kind].waitAt {
		c.waits++
		return
	}
	if c.t < c.length {
		c.t++
		return
	}
	e.complete()
}

// complete performs the end-of-cycle data transfer and hands control back
// to the executor.
func (e *Emulator) complete() {
	c := e.cur
	e.active = false
	e.cur = busCycle{}

	var data uint8
	switch c.kind {
	case cycleFetch:
		data = e.pages.Read(c.addr)
		e.io.DataBus = data
		if !c.noInc {
			e.r.PC++
		}
		e.insertRefresh()
	case cycleRead:
		data = e.pages.Read(c.addr)
		e.io.DataBus = data
	case cycleWrite:
		e.pages.Write(c.addr, c.data)
	case cycleIORead, cycleIntAck:
		data = e.io.DataBus
		if c.kind == cycleIntAck {
			e.insertRefresh()
		}
	case cycleNmiAck:
		e.insertRefresh()
	}

	if c.done != nil {
		c.done(data)
	}
}

// insertRefresh puts the refresh half of an M1 cycle at the front of the
// queue, ahead of anything the executor schedules afterwards.
func (e *Emulator) insertRefresh() {
	r := busCycle{kind: cycleRefresh, t: 1, length: cycleTiming[cycleRefresh].length}
	if e.head > 0 {
		e.head--
		e.queue[e.head] = r
		return
	}
	e.queue = append(e.queue, busCycle{})
	copy(e.queue[1:], e.queue)
	e.queue[0] = r
}

// touches reports whether the in-flight cycle addresses memory in page index.
func (e *Emulator) touches(index int) bool {
	if !e.active {
		return false
	}
	switch e.cur.kind {
	case cycleFetch, cycleRead, cycleWrite:
		return int(e.cur.addr>>8) == index
	}
	return false
}
