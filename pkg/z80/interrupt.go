package z80

import "github.com/oisee/fe2z80/pkg/cpu"

const (
	nmiVector = 0x0066
	im1Vector = 0x0038
)

// boundary chooses what runs next once the previous instruction has drained
// the queue: a pending NMI, then an enabled INT, then a halted M1, and
// otherwise the next opcode fetch. BUSREQ is handled before this by OnClock.
func (e *Emulator) boundary(intr bool) {
	e.prefix = 0
	delayed := e.eiDelay
	e.eiDelay = false

	switch {
	case e.nmiPending:
		e.acceptNMI()
	case intr && e.r.IFF1 && !delayed:
		e.acceptINT()
	case e.halted:
		e.status = Halted
		e.push(busCycle{kind: cycleFetch, noInc: true})
	default:
		e.status = Running
		e.inInsn = true
		e.fetch(e.decode)
	}
}

// acceptNMI runs the 11 T-state non-maskable response: an M1 that reads
// nothing, refresh, one internal T-state, then PC is pushed and execution
// continues at 0x0066. IFF2 keeps the pre-NMI IFF1 for RETN.
func (e *Emulator) acceptNMI() {
	e.nmiPending = false
	e.halted = false
	e.status = NmiAck
	e.inInsn = true
	e.r.IFF1 = false
	e.push(busCycle{kind: cycleNmiAck, done: func(uint8) {
		e.internal(1, func() { e.restart(nmiVector) })
	}})
}

// acceptINT runs the maskable response for the current interrupt mode.
func (e *Emulator) acceptINT() {
	e.halted = false
	e.status = InterruptAck
	e.inInsn = true
	e.r.IFF1, e.r.IFF2 = false, false
	e.push(busCycle{kind: cycleIntAck, done: func(v uint8) {
		switch e.r.IM {
		case 0:
			// The acknowledged byte is the opcode; any operands are fetched
			// from memory at PC.
			e.decode(v)
		case 1:
			e.internal(1, func() { e.restart(im1Vector) })
		default:
			table := cpu.Join(e.r.I, v&0xFE)
			e.internal(1, func() {
				e.read(table, func(lo uint8) {
					e.read(table+1, func(hi uint8) { e.restart(cpu.Join(hi, lo)) })
				})
			})
		}
	}})
}
