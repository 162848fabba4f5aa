package cpu

import "math/bits"

// Bits of the F register, high to low: S Z 5 H 3 P/V N C.
const (
	FlagS uint8 = 1 << (7 - iota)
	FlagZ
	Flag5 // undocumented copy of result bit 5
	FlagH
	Flag3 // undocumented copy of result bit 3
	FlagP
	FlagN
	FlagC

	FlagV = FlagP
)

// Documented is the set of flags whose behaviour Zilog specifies.
const Documented = FlagS | FlagZ | FlagH | FlagP | FlagN | FlagC

// Per-byte flag lookups, filled in by init.
var (
	Sz53Table   [256]uint8 // S, Z, 5 and 3 for a result byte
	Sz53pTable  [256]uint8 // Sz53Table plus even parity
	ParityTable [256]uint8 // FlagP when the byte has an even number of set bits
)

// Half-carry and overflow, indexed by a 3-bit key built from the sign (or
// bit 3 / bit 11) of the two operands and the result. The 16-bit ADC and
// SBC use the same tables keyed on bits 11 and 15.
var (
	HalfcarryAddTable = [8]uint8{0, FlagH, FlagH, FlagH, 0, 0, 0, FlagH}
	HalfcarrySubTable = [8]uint8{0, 0, FlagH, 0, FlagH, 0, FlagH, FlagH}
	OverflowAddTable  = [8]uint8{0, 0, 0, FlagV, FlagV, 0, 0, 0}
	OverflowSubTable  = [8]uint8{0, FlagV, 0, 0, 0, 0, FlagV, 0}
)

func init() {
	for i := range 256 {
		v := uint8(i)
		sz53 := v & (FlagS | Flag5 | Flag3)
		if v == 0 {
			sz53 |= FlagZ
		}
		if bits.OnesCount8(v)%2 == 0 {
			ParityTable[i] = FlagP
		}
		Sz53Table[i] = sz53
		Sz53pTable[i] = sz53 | ParityTable[i]
	}
}
