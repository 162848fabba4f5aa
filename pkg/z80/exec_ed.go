package z80

import "github.com/oisee/fe2z80/pkg/cpu"

// imModes maps bits 5..3 of ED 46-7E to the interrupt mode they select.
var imModes = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}

// execED executes the byte after ED. Opcodes without a defined meaning
// behave as an 8 T-state NOP.
func (e *Emulator) execED(op uint8) {
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1
	r := e.r

	if x == 2 && y >= 4 && z <= 3 {
		e.block(y, z)
		return
	}
	if x != 1 {
		return
	}

	switch z {
	case 0: // IN r,(C); y == 6 only sets flags
		e.ioRead(r.BC(), func(v uint8) {
			e.r.InFlags(v)
			if y != 6 {
				e.set8(y, false, v)
			}
		})
	case 1: // OUT (C),r; y == 6 outputs zero
		var v uint8
		if y != 6 {
			v = e.get8(y, false)
		}
		e.ioWrite(r.BC(), v, nil)
	case 2:
		e.internal(7, func() {
			if q == 0 {
				e.r.SbcHL(e.rp(p))
			} else {
				e.r.AdcHL(e.rp(p))
			}
		})
	case 3:
		e.readWord(func(nn uint16) {
			if q == 0 {
				hi, lo := cpu.Split(e.rp(p))
				e.write(nn, lo, func() { e.write(nn+1, hi, nil) })
				return
			}
			e.read(nn, func(lo uint8) {
				e.read(nn+1, func(hi uint8) { e.setRP(p, cpu.Join(hi, lo)) })
			})
		})
	case 4:
		r.Neg()
	case 5: // RETN, and RETI which behaves the same on the CPU side
		e.popWord(func(v uint16) {
			e.r.PC = v
			e.r.IFF1 = e.r.IFF2
		})
	case 6:
		r.IM = imModes[y]
	case 7:
		switch y {
		case 0:
			e.internal(1, func() { e.r.I = e.r.A })
		case 1:
			e.internal(1, func() { e.r.R = e.r.A })
		case 2:
			e.internal(1, func() { e.r.LoadIR(e.r.I) })
		case 3:
			e.internal(1, func() { e.r.LoadIR(e.r.R) })
		case 4, 5:
			addr := r.HL()
			e.read(addr, func(m uint8) {
				e.internal(4, func() {
					if y == 4 {
						e.write(addr, e.r.Rrd(m), nil)
					} else {
						e.write(addr, e.r.Rld(m), nil)
					}
				})
			})
		}
	}
}

// block executes the LD/CP/IN/OUT block group. y selects the direction
// (odd = decrement) and repetition (y >= 6); z selects the operation.
// A repeating form that has not finished spends 5 more T-states and
// rewinds PC onto its own opcode.
func (e *Emulator) block(y, z uint8) {
	step := uint16(1)
	if y&1 == 1 {
		step = 0xFFFF
	}
	repeat := y >= 6
	again := func(more bool) {
		if repeat && more {
			e.internal(5, func() { e.r.PC -= 2 })
		}
	}

	r := e.r
	switch z {
	case 0: // LDI
		e.read(r.HL(), func(v uint8) {
			e.write(e.r.DE(), v, func() {
				e.internal(2, func() {
					r := e.r
					r.SetHL(r.HL() + step)
					r.SetDE(r.DE() + step)
					r.SetBC(r.BC() - 1)
					r.LdiFlags(v)
					again(r.BC() != 0)
				})
			})
		})
	case 1: // CPI
		e.read(r.HL(), func(v uint8) {
			e.internal(5, func() {
				r := e.r
				r.SetHL(r.HL() + step)
				r.SetBC(r.BC() - 1)
				r.CpiFlags(v)
				again(r.BC() != 0 && !r.Flag(cpu.FlagZ))
			})
		})
	case 2: // INI
		e.internal(1, func() {
			e.ioRead(e.r.BC(), func(v uint8) {
				e.write(e.r.HL(), v, func() {
					r := e.r
					r.B--
					r.SetHL(r.HL() + step)
					r.BlockIOFlags()
					again(r.B != 0)
				})
			})
		})
	case 3: // OUTI
		e.internal(1, func() {
			e.read(e.r.HL(), func(v uint8) {
				e.r.B--
				e.ioWrite(e.r.BC(), v, func() {
					r := e.r
					r.SetHL(r.HL() + step)
					r.BlockIOFlags()
					again(r.B != 0)
				})
			})
		})
	}
}
