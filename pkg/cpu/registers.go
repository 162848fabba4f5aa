package cpu

// Bank is one set of the exchangeable 8-bit registers. The Z80 carries two:
// the main bank and the shadow bank selected by EX AF,AF' and EXX.
type Bank struct {
	A, F, B, C, D, E, H, L uint8
}

// Registers is the complete CPU-visible register file.
//
// 16-bit pairs are never stored; AF, BC, DE and HL are composed from their
// 8-bit halves on every access so the two views cannot drift apart.
// IX, IY, SP and PC are plain 16-bit values with byte accessors.
type Registers struct {
	Bank
	Shadow Bank

	I, R uint8

	IX, IY uint16
	SP, PC uint16

	IFF1, IFF2 bool
	IM         uint8 // interrupt mode 0, 1 or 2
}

// Join composes a 16-bit value from its high and low bytes.
func Join(hi, lo uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Split decomposes a 16-bit value into its high and low bytes.
func Split(v uint16) (hi, lo uint8) {
	return uint8(v >> 8), uint8(v)
}

func (r *Registers) AF() uint16 { return Join(r.A, r.F) }
func (r *Registers) BC() uint16 { return Join(r.B, r.C) }
func (r *Registers) DE() uint16 { return Join(r.D, r.E) }
func (r *Registers) HL() uint16 { return Join(r.H, r.L) }

func (r *Registers) SetAF(v uint16) { r.A, r.F = Split(v) }
func (r *Registers) SetBC(v uint16) { r.B, r.C = Split(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = Split(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = Split(v) }

// Shadow pair accessors (AF', BC', DE', HL').
func (r *Registers) AF2() uint16 { return Join(r.Shadow.A, r.Shadow.F) }
func (r *Registers) BC2() uint16 { return Join(r.Shadow.B, r.Shadow.C) }
func (r *Registers) DE2() uint16 { return Join(r.Shadow.D, r.Shadow.E) }
func (r *Registers) HL2() uint16 { return Join(r.Shadow.H, r.Shadow.L) }

func (r *Registers) SetAF2(v uint16) { r.Shadow.A, r.Shadow.F = Split(v) }
func (r *Registers) SetBC2(v uint16) { r.Shadow.B, r.Shadow.C = Split(v) }
func (r *Registers) SetDE2(v uint16) { r.Shadow.D, r.Shadow.E = Split(v) }
func (r *Registers) SetHL2(v uint16) { r.Shadow.H, r.Shadow.L = Split(v) }

// IR returns the refresh address: I in the high byte, R in the low byte.
func (r *Registers) IR() uint16 { return Join(r.I, r.R) }

// ExAF swaps AF with AF'.
func (r *Registers) ExAF() {
	r.A, r.Shadow.A = r.Shadow.A, r.A
	r.F, r.Shadow.F = r.Shadow.F, r.F
}

// Exx swaps BC, DE and HL with their shadow counterparts.
func (r *Registers) Exx() {
	r.B, r.Shadow.B = r.Shadow.B, r.B
	r.C, r.Shadow.C = r.Shadow.C, r.C
	r.D, r.Shadow.D = r.Shadow.D, r.D
	r.E, r.Shadow.E = r.Shadow.E, r.E
	r.H, r.Shadow.H = r.Shadow.H, r.H
	r.L, r.Shadow.L = r.Shadow.L, r.L
}

// IncR advances the memory refresh counter. Only the low 7 bits count;
// bit 7 keeps whatever LD R,A last stored there.
func (r *Registers) IncR() {
	r.R = (r.R & 0x80) | ((r.R + 1) & 0x7F)
}

// Flag reports whether any bit of mask is set in F.
func (r *Registers) Flag(mask uint8) bool {
	return r.F&mask != 0
}

// Reset loads the values the CPU takes when its RESET input is released:
// PC, I, R, IFF1, IFF2 and IM are cleared, everything else reads 0xFFFF.
func (r *Registers) Reset() {
	*r = Registers{
		Bank:   Bank{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		Shadow: Bank{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		IX:     0xFFFF,
		IY:     0xFFFF,
		SP:     0xFFFF,
	}
}
