package z80

import "github.com/oisee/fe2z80/pkg/cpu"

// Machine cycle builders. Each queues one cycle and arranges for then to
// run when it completes; then may queue the instruction's next step.

func (e *Emulator) fetch(then func(op uint8)) {
	e.push(busCycle{kind: cycleFetch, done: then})
}

func (e *Emulator) read(addr uint16, then func(v uint8)) {
	e.push(busCycle{kind: cycleRead, addr: addr, done: then})
}

// readPC reads the operand byte at PC and advances PC.
func (e *Emulator) readPC(then func(v uint8)) {
	e.read(e.r.PC, func(v uint8) {
		e.r.PC++
		if then != nil {
			then(v)
		}
	})
}

// readWord reads a little-endian operand at PC.
func (e *Emulator) readWord(then func(v uint16)) {
	e.readPC(func(lo uint8) {
		e.readPC(func(hi uint8) { then(cpu.Join(hi, lo)) })
	})
}

func (e *Emulator) write(addr uint16, v uint8, then func()) {
	e.push(busCycle{kind: cycleWrite, addr: addr, data: v, done: after(then)})
}

func (e *Emulator) ioRead(port uint16, then func(v uint8)) {
	e.push(busCycle{kind: cycleIORead, addr: port, done: then})
}

func (e *Emulator) ioWrite(port uint16, v uint8, then func()) {
	e.push(busCycle{kind: cycleIOWrite, addr: port, data: v, done: after(then)})
}

// internal queues n T-states with no bus activity.
func (e *Emulator) internal(n int, then func()) {
	e.push(busCycle{kind: cycleInternal, length: n, done: after(then)})
}

// pushWord stores v below SP, high byte first.
func (e *Emulator) pushWord(v uint16, then func()) {
	hi, lo := cpu.Split(v)
	e.write(e.r.SP-1, hi, func() {
		e.r.SP--
		e.write(e.r.SP-1, lo, func() {
			e.r.SP--
			if then != nil {
				then()
			}
		})
	})
}

// popWord loads a word from SP, low byte first.
func (e *Emulator) popWord(then func(v uint16)) {
	e.read(e.r.SP, func(lo uint8) {
		e.r.SP++
		e.read(e.r.SP, func(hi uint8) {
			e.r.SP++
			then(cpu.Join(hi, lo))
		})
	})
}

func after(then func()) func(uint8) {
	if then == nil {
		return nil
	}
	return func(uint8) { then() }
}
