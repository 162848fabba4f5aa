package z80

import "github.com/oisee/fe2z80/pkg/cpu"

// decode dispatches the byte returned by an M1 fetch. Prefix bytes consume
// their own M1 and fetch again; the last DD or FD before the opcode wins.
func (e *Emulator) decode(op uint8) {
	switch op {
	case 0xCB:
		if e.prefix != 0 {
			e.execIndexedCB()
			return
		}
		e.fetch(e.execCB)
	case 0xED:
		e.prefix = 0
		e.fetch(e.execED)
	case 0xDD, 0xFD:
		e.prefix = op
		e.fetch(e.decode)
	default:
		e.execBase(op)
	}
}

// execBase executes an unprefixed or DD/FD-prefixed opcode. The fetch and
// refresh of op have already been accounted for.
func (e *Emulator) execBase(op uint8) {
	r := e.r
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 1:
		if op == 0x76 {
			e.halted = true
			e.status = Halted
			return
		}
		e.load8(y, z)
		return
	case 2:
		if z == 6 {
			e.memOperand(func(addr uint16) {
				e.read(addr, func(v uint8) { e.r.ALU(y, v) })
			})
			return
		}
		r.ALU(y, e.get8(z, true))
		return
	case 3:
		e.execX3(op, y, z, p, q)
		return
	}

	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1:
			r.ExAF()
		case 2: // DJNZ
			e.internal(1, func() {
				e.readPC(func(d uint8) {
					e.r.B--
					if e.r.B != 0 {
						e.internal(5, func() { e.r.PC += uint16(int8(d)) })
					}
				})
			})
		case 3: // JR d
			e.readPC(func(d uint8) {
				e.internal(5, func() { e.r.PC += uint16(int8(d)) })
			})
		default: // JR cc,d
			e.readPC(func(d uint8) {
				if e.cond(y - 4) {
					e.internal(5, func() { e.r.PC += uint16(int8(d)) })
				}
			})
		}
	case 1:
		if q == 0 {
			e.readWord(func(v uint16) { e.setRP(p, v) })
			return
		}
		e.internal(7, func() { e.setHL(e.r.AddWord(e.hl(), e.rp(p))) })
	case 2:
		e.indirectA(p, q)
	case 3:
		e.internal(2, func() {
			if q == 0 {
				e.setRP(p, e.rp(p)+1)
			} else {
				e.setRP(p, e.rp(p)-1)
			}
		})
	case 4, 5:
		step := e.r.Inc
		if z == 5 {
			step = e.r.Dec
		}
		if y != 6 {
			e.set8(y, true, step(e.get8(y, true)))
			return
		}
		e.memOperand(func(addr uint16) {
			e.read(addr, func(v uint8) {
				e.internal(1, func() { e.write(addr, step(v), nil) })
			})
		})
	case 6:
		if y != 6 {
			e.readPC(func(n uint8) { e.set8(y, true, n) })
			return
		}
		if e.prefix == 0 {
			e.readPC(func(n uint8) { e.write(e.r.HL(), n, nil) })
			return
		}
		e.readPC(func(d uint8) {
			e.readPC(func(n uint8) {
				e.internal(2, func() { e.write(e.hl()+uint16(int8(d)), n, nil) })
			})
		})
	case 7:
		switch y {
		case 0:
			r.Rlca()
		case 1:
			r.Rrca()
		case 2:
			r.Rla()
		case 3:
			r.Rra()
		case 4:
			r.Daa()
		case 5:
			r.Cpl()
		case 6:
			r.Scf()
		case 7:
			r.Ccf()
		}
	}
}

// load8 is LD r,r' with its memory forms. Under a prefix the register side
// of LD r,(IX+d) and LD (IX+d),r is always the plain H or L.
func (e *Emulator) load8(y, z uint8) {
	switch {
	case y == 6:
		e.memOperand(func(addr uint16) { e.write(addr, e.get8(z, false), nil) })
	case z == 6:
		e.memOperand(func(addr uint16) {
			e.read(addr, func(v uint8) { e.set8(y, false, v) })
		})
	default:
		e.set8(y, true, e.get8(z, true))
	}
}

// indirectA covers the x=0 z=2 column: LD (BC)/(DE)/(nn) with A or HL.
func (e *Emulator) indirectA(p, q uint8) {
	r := e.r
	if q == 0 {
		switch p {
		case 0:
			e.write(r.BC(), r.A, nil)
		case 1:
			e.write(r.DE(), r.A, nil)
		case 2:
			e.readWord(func(nn uint16) {
				hi, lo := cpu.Split(e.hl())
				e.write(nn, lo, func() { e.write(nn+1, hi, nil) })
			})
		case 3:
			e.readWord(func(nn uint16) { e.write(nn, e.r.A, nil) })
		}
		return
	}
	switch p {
	case 0:
		e.read(r.BC(), func(v uint8) { e.r.A = v })
	case 1:
		e.read(r.DE(), func(v uint8) { e.r.A = v })
	case 2:
		e.readWord(func(nn uint16) {
			e.read(nn, func(lo uint8) {
				e.read(nn+1, func(hi uint8) { e.setHL(cpu.Join(hi, lo)) })
			})
		})
	case 3:
		e.readWord(func(nn uint16) {
			e.read(nn, func(v uint8) { e.r.A = v })
		})
	}
}

// execX3 covers opcodes 0xC0-0xFF other than the prefixes.
func (e *Emulator) execX3(op, y, z, p, q uint8) {
	r := e.r
	switch z {
	case 0: // RET cc
		e.internal(1, func() {
			if e.cond(y) {
				e.popWord(func(v uint16) { e.r.PC = v })
			}
		})
	case 1:
		if q == 0 {
			e.popWord(func(v uint16) { e.setRP2(p, v) })
			return
		}
		switch p {
		case 0:
			e.popWord(func(v uint16) { e.r.PC = v })
		case 1:
			r.Exx()
		case 2:
			r.PC = e.hl()
		case 3:
			e.internal(2, func() { e.r.SP = e.hl() })
		}
	case 2: // JP cc,nn
		e.readWord(func(nn uint16) {
			if e.cond(y) {
				e.r.PC = nn
			}
		})
	case 3:
		switch y {
		case 0:
			e.readWord(func(nn uint16) { e.r.PC = nn })
		case 2: // OUT (n),A
			e.readPC(func(n uint8) {
				e.ioWrite(cpu.Join(e.r.A, n), e.r.A, nil)
			})
		case 3: // IN A,(n)
			e.readPC(func(n uint8) {
				e.ioRead(cpu.Join(e.r.A, n), func(v uint8) { e.r.A = v })
			})
		case 4:
			e.exSP()
		case 5: // EX DE,HL ignores DD and FD
			d, h := r.DE(), r.HL()
			r.SetDE(h)
			r.SetHL(d)
		case 6:
			r.IFF1, r.IFF2 = false, false
		case 7:
			r.IFF1, r.IFF2 = true, true
			e.eiDelay = true
		}
	case 4: // CALL cc,nn
		e.readWord(func(nn uint16) {
			if e.cond(y) {
				e.call(nn)
			}
		})
	case 5:
		if q == 0 {
			v := e.rp2(p)
			e.internal(1, func() { e.pushWord(v, nil) })
			return
		}
		// p == 0; the prefixes never reach here.
		e.readWord(e.call)
	case 6:
		e.readPC(func(v uint8) { e.r.ALU(y, v) })
	case 7:
		e.internal(1, func() { e.restart(uint16(y) * 8) })
	}
}

// call pushes PC and jumps to nn after one internal T-state.
func (e *Emulator) call(nn uint16) {
	e.internal(1, func() {
		e.pushWord(e.r.PC, func() { e.r.PC = nn })
	})
}

// restart pushes PC and jumps to addr.
func (e *Emulator) restart(addr uint16) {
	e.pushWord(e.r.PC, func() { e.r.PC = addr })
}

// exSP is EX (SP),HL: 3+4 T-states of reads, 3+5 of writes.
func (e *Emulator) exSP() {
	sp := e.r.SP
	e.read(sp, func(lo uint8) {
		e.read(sp+1, func(hi uint8) {
			e.internal(1, func() {
				oh, ol := cpu.Split(e.hl())
				e.write(sp+1, oh, func() {
					e.write(sp, ol, func() {
						e.internal(2, func() { e.setHL(cpu.Join(hi, lo)) })
					})
				})
			})
		})
	})
}
