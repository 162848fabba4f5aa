package machine

import (
	"fmt"

	"github.com/oisee/fe2z80/pkg/inst"
)

// Mismatch is a catalog entry whose measured duration differs from the
// documented one.
type Mismatch struct {
	Group    inst.Group
	Opcode   uint8
	Mnemonic string
	Want     []int // documented durations that were accepted
	Got      int
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%-5s %02X  %-20s got %d, want %v", m.Group, m.Opcode, m.Mnemonic, m.Got, m.Want)
}

// Encode returns the bytes for info with zero operands, in wire order.
func Encode(info inst.Info) []byte {
	if info.Operand == inst.DispOp {
		b := info.Bytes
		return []byte{b[0], b[1], 0x00, b[2]}
	}
	code := make([]byte, 0, info.Size())
	code = append(code, info.Bytes...)
	for i := 0; i < info.Operand.Size(); i++ {
		code = append(code, 0x00)
	}
	return code
}

// CheckTiming runs every catalog entry once from 0x0000 on a fresh machine
// and compares the edges to its first instruction boundary with the
// catalog. Conditional instructions may match either duration. It returns
// the number of entries checked and every mismatch.
func CheckTiming() (int, []Mismatch, error) {
	checked := 0
	var bad []Mismatch
	for g := inst.Base; g <= inst.FDCB; g++ {
		for op := 0; op < 256; op++ {
			info := inst.Lookup(g, uint8(op))
			if !info.Valid() {
				continue
			}
			got, err := measure(info)
			if err != nil {
				return checked, bad, fmt.Errorf("%s %02X: %w", g, op, err)
			}
			checked++
			want := []int{info.TStates}
			if info.Taken != 0 {
				want = append(want, info.Taken)
			}
			if got != info.TStates && got != info.Taken {
				bad = append(bad, Mismatch{g, uint8(op), info.Mnemonic, want, got})
			}
		}
	}
	return checked, bad, nil
}

// measure places the encoding at 0x0000, followed by HALT, with pointers
// aimed at RAM well away from the code, and steps to the first boundary.
func measure(info inst.Info) (int, error) {
	cfg := DefaultConfig()
	cfg.Image = append(Encode(info), 0x76)
	m, err := New(cfg)
	if err != nil {
		return 0, err
	}
	r := &m.Regs
	r.SP = 0x8000
	r.SetHL(0x8000)
	r.SetBC(0x0001)
	r.SetDE(0x9000)
	r.IX, r.IY = 0x8000, 0x8000
	return m.Step()
}
