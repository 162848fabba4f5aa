package z80

import "github.com/oisee/fe2z80/pkg/cpu"

// Operand access shared by the decoders. Register codes follow the opcode
// encoding: B C D E H L (HL) A. When indexed is true and a DD or FD prefix
// is active, H and L select the halves of IX or IY.

func (e *Emulator) get8(code uint8, indexed bool) uint8 {
	r := e.r
	switch code & 7 {
	case 0:
		return r.B
	case 1:
		return r.C
	case 2:
		return r.D
	case 3:
		return r.E
	case 4:
		if indexed && e.prefix != 0 {
			return uint8(e.hl() >> 8)
		}
		return r.H
	case 5:
		if indexed && e.prefix != 0 {
			return uint8(e.hl())
		}
		return r.L
	case 7:
		return r.A
	}
	return 0
}

func (e *Emulator) set8(code uint8, indexed bool, v uint8) {
	r := e.r
	switch code & 7 {
	case 0:
		r.B = v
	case 1:
		r.C = v
	case 2:
		r.D = v
	case 3:
		r.E = v
	case 4:
		if indexed && e.prefix != 0 {
			e.setHL(e.hl()&0x00FF | uint16(v)<<8)
			return
		}
		r.H = v
	case 5:
		if indexed && e.prefix != 0 {
			e.setHL(e.hl()&0xFF00 | uint16(v))
			return
		}
		r.L = v
	case 7:
		r.A = v
	}
}

// hl returns HL, IX or IY according to the active prefix.
func (e *Emulator) hl() uint16 {
	switch e.prefix {
	case 0xDD:
		return e.r.IX
	case 0xFD:
		return e.r.IY
	}
	return e.r.HL()
}

func (e *Emulator) setHL(v uint16) {
	switch e.prefix {
	case 0xDD:
		e.r.IX = v
	case 0xFD:
		e.r.IY = v
	default:
		e.r.SetHL(v)
	}
}

// rp is the BC DE HL SP pair table.
func (e *Emulator) rp(p uint8) uint16 {
	switch p & 3 {
	case 0:
		return e.r.BC()
	case 1:
		return e.r.DE()
	case 2:
		return e.hl()
	}
	return e.r.SP
}

func (e *Emulator) setRP(p uint8, v uint16) {
	switch p & 3 {
	case 0:
		e.r.SetBC(v)
	case 1:
		e.r.SetDE(v)
	case 2:
		e.setHL(v)
	default:
		e.r.SP = v
	}
}

// rp2 is the BC DE HL AF pair table used by PUSH and POP.
func (e *Emulator) rp2(p uint8) uint16 {
	if p&3 == 3 {
		return e.r.AF()
	}
	return e.rp(p)
}

func (e *Emulator) setRP2(p uint8, v uint16) {
	if p&3 == 3 {
		e.r.SetAF(v)
		return
	}
	e.setRP(p, v)
}

// cond evaluates condition code y: NZ Z NC C PO PE P M.
func (e *Emulator) cond(y uint8) bool {
	f := e.r.F
	switch y & 7 {
	case 0:
		return f&cpu.FlagZ == 0
	case 1:
		return f&cpu.FlagZ != 0
	case 2:
		return f&cpu.FlagC == 0
	case 3:
		return f&cpu.FlagC != 0
	case 4:
		return f&cpu.FlagP == 0
	case 5:
		return f&cpu.FlagP != 0
	case 6:
		return f&cpu.FlagS == 0
	}
	return f&cpu.FlagS != 0
}

// memOperand resolves the address of a (HL) operand, or of (IX+d) and
// (IY+d) under a prefix, which costs a displacement read and 5 T-states
// of address arithmetic.
func (e *Emulator) memOperand(then func(addr uint16)) {
	if e.prefix == 0 {
		then(e.r.HL())
		return
	}
	e.readPC(func(d uint8) {
		e.internal(5, func() { then(e.hl() + uint16(int8(d))) })
	})
}
