package cpu

// ALU operation codes, matching bits 5..3 of the 0x80-0xBF opcode block and
// of the ALU A,n immediates.
const (
	OpAdd uint8 = iota
	OpAdc
	OpSub
	OpSbc
	OpAnd
	OpXor
	OpOr
	OpCp
)

// Rotate/shift operation codes, matching bits 5..3 of CB 0x00-0x3F.
const (
	RotRlc uint8 = iota
	RotRrc
	RotRl
	RotRr
	RotSla
	RotSra
	RotSll
	RotSrl
)

// ALU applies one of the eight accumulator operations to A and value.
func (r *Registers) ALU(op, value uint8) {
	switch op & 7 {
	case OpAdd:
		r.Add(value)
	case OpAdc:
		r.Adc(value)
	case OpSub:
		r.Sub(value)
	case OpSbc:
		r.Sbc(value)
	case OpAnd:
		r.And(value)
	case OpXor:
		r.Xor(value)
	case OpOr:
		r.Or(value)
	case OpCp:
		r.Cp(value)
	}
}

func (r *Registers) Add(value uint8) {
	addtemp := uint16(r.A) + uint16(value)
	lookup := ((r.A & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((addtemp&0x88)>>1)
	r.A = uint8(addtemp)
	r.F = bsel(addtemp&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[r.A]
}

func (r *Registers) Adc(value uint8) {
	adctemp := uint16(r.A) + uint16(value) + uint16(r.F&FlagC)
	lookup := uint8(((uint16(r.A) & 0x88) >> 3) | ((uint16(value) & 0x88) >> 2) | ((adctemp & 0x88) >> 1))
	r.A = uint8(adctemp)
	r.F = bsel(adctemp&0x100 != 0, FlagC, 0) |
		HalfcarryAddTable[lookup&0x07] |
		OverflowAddTable[lookup>>4] |
		Sz53Table[r.A]
}

func (r *Registers) Sub(value uint8) {
	subtemp := uint16(r.A) - uint16(value)
	lookup := ((r.A & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((subtemp&0x88)>>1)
	r.A = uint8(subtemp)
	r.F = bsel(subtemp&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		Sz53Table[r.A]
}

func (r *Registers) Sbc(value uint8) {
	sbctemp := uint16(r.A) - uint16(value) - uint16(r.F&FlagC)
	lookup := ((r.A & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((sbctemp&0x88)>>1)
	r.A = uint8(sbctemp)
	r.F = bsel(sbctemp&0x100 != 0, FlagC, 0) | FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		Sz53Table[r.A]
}

func (r *Registers) And(value uint8) {
	r.A &= value
	r.F = FlagH | Sz53pTable[r.A]
}

func (r *Registers) Or(value uint8) {
	r.A |= value
	r.F = Sz53pTable[r.A]
}

func (r *Registers) Xor(value uint8) {
	r.A ^= value
	r.F = Sz53pTable[r.A]
}

// Cp compares value against A. Bits 5 and 3 come from the operand, not the result.
func (r *Registers) Cp(value uint8) {
	cptemp := uint16(r.A) - uint16(value)
	lookup := ((r.A & 0x88) >> 3) | ((value & 0x88) >> 2) | uint8((cptemp&0x88)>>1)
	r.F = bsel(cptemp&0x100 != 0, FlagC, bsel(cptemp&0xFF != 0, 0, FlagZ)) |
		FlagN |
		HalfcarrySubTable[lookup&0x07] |
		OverflowSubTable[lookup>>4] |
		(value & (Flag3 | Flag5)) |
		uint8(cptemp&uint16(FlagS))
}

// Inc returns value+1 and sets flags; carry is preserved.
func (r *Registers) Inc(value uint8) uint8 {
	value++
	r.F = (r.F & FlagC) |
		bsel(value == 0x80, FlagV, 0) |
		bsel(value&0x0F != 0, 0, FlagH) |
		Sz53Table[value]
	return value
}

// Dec returns value-1 and sets flags; carry is preserved.
func (r *Registers) Dec(value uint8) uint8 {
	r.F = (r.F & FlagC) | bsel(value&0x0F != 0, 0, FlagH) | FlagN
	value--
	r.F |= bsel(value == 0x7F, FlagV, 0) | Sz53Table[value]
	return value
}

func (r *Registers) Daa() {
	var add, carry uint8
	carry = r.F & FlagC
	if (r.F&FlagH) != 0 || (r.A&0x0F) > 9 {
		add = 6
	}
	if carry != 0 || r.A > 0x99 {
		add |= 0x60
	}
	if r.A > 0x99 {
		carry = FlagC
	}
	if (r.F & FlagN) != 0 {
		r.Sub(add)
	} else {
		r.Add(add)
	}
	r.F = (r.F &^ (FlagC | FlagP)) | carry | ParityTable[r.A]
}

func (r *Registers) Cpl() {
	r.A ^= 0xFF
	r.F = (r.F & (FlagC | FlagP | FlagZ | FlagS)) | (r.A & (Flag3 | Flag5)) | FlagN | FlagH
}

func (r *Registers) Scf() {
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & (Flag3 | Flag5)) | FlagC
}

func (r *Registers) Ccf() {
	oldC := r.F & FlagC
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & (Flag3 | Flag5))
	if oldC != 0 {
		r.F |= FlagH
	} else {
		r.F |= FlagC
	}
}

func (r *Registers) Neg() {
	old := r.A
	r.A = 0
	r.Sub(old)
}

// Accumulator rotates (RLCA, RRCA, RLA, RRA) leave S, Z and P/V alone.

func (r *Registers) Rlca() {
	r.A = (r.A << 1) | (r.A >> 7)
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & (FlagC | Flag3 | Flag5))
}

func (r *Registers) Rrca() {
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & FlagC)
	r.A = (r.A >> 1) | (r.A << 7)
	r.F |= r.A & (Flag3 | Flag5)
}

func (r *Registers) Rla() {
	old := r.A
	r.A = (r.A << 1) | (r.F & FlagC)
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & (Flag3 | Flag5)) | (old >> 7)
}

func (r *Registers) Rra() {
	old := r.A
	r.A = (r.A >> 1) | (r.F << 7)
	r.F = (r.F & (FlagP | FlagZ | FlagS)) | (r.A & (Flag3 | Flag5)) | (old & FlagC)
}

// Rotate applies a CB-group rotate or shift to v, sets flags and returns the result.
func (r *Registers) Rotate(op, v uint8) uint8 {
	var c uint8
	switch op & 7 {
	case RotRlc:
		v = (v << 1) | (v >> 7)
		c = v & FlagC
	case RotRrc:
		c = v & FlagC
		v = (v >> 1) | (v << 7)
	case RotRl:
		c = v >> 7
		v = (v << 1) | (r.F & FlagC)
	case RotRr:
		c = v & FlagC
		v = (v >> 1) | (r.F << 7)
	case RotSla:
		c = v >> 7
		v <<= 1
	case RotSra:
		c = v & FlagC
		v = (v & 0x80) | (v >> 1)
	case RotSll:
		c = v >> 7
		v = (v << 1) | 0x01
	case RotSrl:
		c = v & FlagC
		v >>= 1
	}
	r.F = c | Sz53pTable[v]
	return v
}

// Bit implements BIT n,v. xy supplies the undocumented bits 5 and 3: the
// operand itself for registers, the high byte of the effective address for
// memory forms.
func (r *Registers) Bit(n, v, xy uint8) {
	r.F = (r.F & FlagC) | FlagH | (xy & (Flag3 | Flag5))
	if v&(1<<(n&7)) == 0 {
		r.F |= FlagP | FlagZ
	}
	if n&7 == 7 && v&0x80 != 0 {
		r.F |= FlagS
	}
}

// AddWord implements ADD HL/IX/IY,rr: H from bit 11, C from bit 15,
// S, Z and P/V preserved.
func (r *Registers) AddWord(a, b uint16) uint16 {
	result := uint32(a) + uint32(b)
	hc := (a & 0x0FFF) + (b & 0x0FFF)
	r.F = (r.F & (FlagS | FlagZ | FlagP)) |
		bsel(hc&0x1000 != 0, FlagH, 0) |
		bsel(result&0x10000 != 0, FlagC, 0) |
		(uint8(result>>8) & (Flag3 | Flag5))
	return uint16(result)
}

// AdcHL implements ADC HL,rr with full flag computation.
func (r *Registers) AdcHL(value uint16) {
	hl := r.HL()
	carry := uint(r.F & FlagC)
	result := uint(hl) + uint(value) + carry
	lookup := byte(((uint(hl) & 0x8800) >> 11) | ((uint(value) & 0x8800) >> 10) | ((result & 0x8800) >> 9))
	r.SetHL(uint16(result))
	r.F = bsel(result&0x10000 != 0, FlagC, 0) |
		OverflowAddTable[lookup>>4] |
		(r.H & (Flag3 | Flag5 | FlagS)) |
		HalfcarryAddTable[lookup&0x07] |
		bsel(r.H|r.L != 0, 0, FlagZ)
}

// SbcHL implements SBC HL,rr with full flag computation.
func (r *Registers) SbcHL(value uint16) {
	hl := r.HL()
	carry := uint(r.F & FlagC)
	result := uint(hl) - uint(value) - carry
	lookup := byte(((uint(hl) & 0x8800) >> 11) | ((uint(value) & 0x8800) >> 10) | ((result & 0x8800) >> 9))
	r.SetHL(uint16(result))
	r.F = bsel(result&0x10000 != 0, FlagC, 0) |
		FlagN |
		OverflowSubTable[lookup>>4] |
		(r.H & (Flag3 | Flag5 | FlagS)) |
		HalfcarrySubTable[lookup&0x07] |
		bsel(r.H|r.L != 0, 0, FlagZ)
}

// Rld rotates the low nibble of A and the byte m left by one nibble
// (RLD) and returns the new memory value.
func (r *Registers) Rld(m uint8) uint8 {
	out := (m << 4) | (r.A & 0x0F)
	r.A = (r.A & 0xF0) | (m >> 4)
	r.F = (r.F & FlagC) | Sz53pTable[r.A]
	return out
}

// Rrd is the right-rotating counterpart of Rld.
func (r *Registers) Rrd(m uint8) uint8 {
	out := (r.A << 4) | (m >> 4)
	r.A = (r.A & 0xF0) | (m & 0x0F)
	r.F = (r.F & FlagC) | Sz53pTable[r.A]
	return out
}

// LoadIR implements LD A,I and LD A,R: P/V reflects IFF2.
func (r *Registers) LoadIR(v uint8) {
	r.A = v
	r.F = (r.F & FlagC) | Sz53Table[v] | bsel(r.IFF2, FlagV, 0)
}

// InFlags sets the flags of IN r,(C) for the byte read.
func (r *Registers) InFlags(v uint8) {
	r.F = (r.F & FlagC) | Sz53pTable[v]
}

// LdiFlags sets the flags of LDI/LDD after BC was decremented. value is the
// byte that was transferred.
func (r *Registers) LdiFlags(value uint8) {
	n := value + r.A
	r.F = (r.F & (FlagS | FlagZ | FlagC)) |
		bsel(r.BC() != 0, FlagV, 0) |
		(n & Flag3) | ((n & 0x02) << 4)
}

// CpiFlags sets the flags of CPI/CPD after BC was decremented. value is the
// byte compared against A; A is not modified.
func (r *Registers) CpiFlags(value uint8) {
	result := r.A - value
	lookup := ((r.A & 0x08) >> 3) | ((value & 0x08) >> 2) | ((result & 0x08) >> 1)
	h := HalfcarrySubTable[lookup]
	n := result
	if h != 0 {
		n--
	}
	r.F = (r.F & FlagC) | FlagN | h |
		bsel(r.BC() != 0, FlagV, 0) |
		(Sz53Table[result] & (FlagS | FlagZ)) |
		(n & Flag3) | ((n & 0x02) << 4)
}

// BlockIOFlags sets the flags of INI/IND/OUTI/OUTD after B was decremented.
// Only Z and N are modelled exactly.
func (r *Registers) BlockIOFlags() {
	r.F = (r.F & FlagC) | Sz53Table[r.B] | FlagN
}

// bsel returns a if cond is true, else b. Branchless flag selection.
func bsel(cond bool, a, b uint8) uint8 {
	if cond {
		return a
	}
	return b
}
