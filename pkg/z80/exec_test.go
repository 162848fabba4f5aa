package z80

import (
	"testing"

	"github.com/oisee/fe2z80/pkg/cpu"
)

func TestIndexedAddressing(t *testing.T) {
	r := newRig(t,
		0xDD, 0x21, 0x00, 0x80, // LD IX,8000h
		0xDD, 0x36, 0x05, 0xAA, // LD (IX+5),0AAh
		0xDD, 0xCB, 0x05, 0xC7, // SET 0,(IX+5),A
		0xFD, 0x21, 0x10, 0x80, // LD IY,8010h
		0xFD, 0x66, 0xF5, // LD H,(IY-11)
		0xDD, 0x26, 0x12, // LD IXH,12h
		0xDD, 0x7D, // LD A,IXL
	)
	r.run(5)
	if r.mem[0x8005] != 0xAB || r.regs.A != 0xAB {
		t.Errorf("SET 0,(IX+5),A: mem=%02X A=%02X", r.mem[0x8005], r.regs.A)
	}
	if r.regs.H != 0xAB {
		t.Errorf("LD H,(IY-11): H=%02X", r.regs.H)
	}
	r.run(2)
	if r.regs.IX != 0x1200 || r.regs.A != 0x00 {
		t.Errorf("IX=%04X A=%02X", r.regs.IX, r.regs.A)
	}
}

func TestIndexedBitUsesAddressForUndocumentedFlags(t *testing.T) {
	r := newRig(t, 0xDD, 0xCB, 0x00, 0x46) // BIT 0,(IX+0)
	r.regs.IX = 0x2800
	r.mem[0x2800] = 0x00
	r.step()
	f := r.regs.F
	if f&cpu.FlagZ == 0 || f&cpu.Flag5 == 0 || f&cpu.Flag3 == 0 {
		t.Errorf("F=%02X, want Z with bits 5 and 3 from 28h", f)
	}
}

func TestDDOnlyAffectsHL(t *testing.T) {
	r := newRig(t,
		0xDD, 0xEB, // EX DE,HL is not indexed
		0xDD, 0x78, // LD A,B is unaffected
	)
	r.regs.SetDE(0x1111)
	r.regs.SetHL(0x2222)
	r.regs.IX = 0x3333
	r.regs.B = 0x44
	r.run(2)
	if r.regs.DE() != 0x2222 || r.regs.HL() != 0x1111 || r.regs.IX != 0x3333 || r.regs.A != 0x44 {
		t.Errorf("DE=%04X HL=%04X IX=%04X A=%02X", r.regs.DE(), r.regs.HL(), r.regs.IX, r.regs.A)
	}
}

func TestBlockCopy(t *testing.T) {
	r := newRig(t, 0xED, 0xB0, 0x76) // LDIR; HALT
	copy(r.mem[0x8000:], []byte{1, 2, 3})
	r.regs.SetHL(0x8000)
	r.regs.SetDE(0x9000)
	r.regs.SetBC(3)

	if n := r.run(3); n != 21+21+16 {
		t.Errorf("LDIR of 3 bytes took %d T-states", n)
	}
	if r.regs.PC != 2 || r.regs.BC() != 0 || r.regs.HL() != 0x8003 || r.regs.DE() != 0x9003 {
		t.Errorf("PC=%04X BC=%04X HL=%04X DE=%04X", r.regs.PC, r.regs.BC(), r.regs.HL(), r.regs.DE())
	}
	for i, want := range []byte{1, 2, 3} {
		if r.mem[0x9000+i] != want {
			t.Errorf("dest[%d] = %d", i, r.mem[0x9000+i])
		}
	}
	if r.regs.Flag(cpu.FlagV) {
		t.Error("P/V set after BC reached zero")
	}
}

func TestBlockCompareStopsOnMatch(t *testing.T) {
	r := newRig(t, 0xED, 0xB1) // CPIR
	copy(r.mem[0x8000:], []byte{9, 8, 7, 6})
	r.regs.SetHL(0x8000)
	r.regs.SetBC(4)
	r.regs.A = 7
	r.run(3)
	if r.regs.PC != 2 || r.regs.HL() != 0x8003 || r.regs.BC() != 1 || !r.regs.Flag(cpu.FlagZ) {
		t.Errorf("PC=%04X HL=%04X BC=%04X F=%02X", r.regs.PC, r.regs.HL(), r.regs.BC(), r.regs.F)
	}
}

func TestBlockOutput(t *testing.T) {
	r := newRig(t, 0xED, 0xB3) // OTIR
	copy(r.mem[0x8000:], []byte{0xA1, 0xA2})
	r.regs.SetHL(0x8000)
	r.regs.SetBC(0x0240)
	r.run(2)
	want := []portWrite{{0x0140, 0xA1}, {0x0040, 0xA2}}
	if len(r.writes) != 2 || r.writes[0] != want[0] || r.writes[1] != want[1] {
		t.Errorf("writes = %v, want %v", r.writes, want)
	}
	if r.regs.B != 0 || !r.regs.Flag(cpu.FlagZ) {
		t.Errorf("B=%02X F=%02X", r.regs.B, r.regs.F)
	}
}

func TestCallAndReturn(t *testing.T) {
	r := newRig(t, 0xCD, 0x10, 0x00) // CALL 0010h
	r.mem[0x10] = 0xC9               // RET
	r.regs.SP = 0x8000
	r.step()
	if r.regs.PC != 0x0010 || r.regs.SP != 0x7FFE || r.mem[0x7FFE] != 0x03 || r.mem[0x7FFF] != 0x00 {
		t.Errorf("after CALL: PC=%04X SP=%04X", r.regs.PC, r.regs.SP)
	}
	r.step()
	if r.regs.PC != 0x0003 || r.regs.SP != 0x8000 {
		t.Errorf("after RET: PC=%04X SP=%04X", r.regs.PC, r.regs.SP)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	r := newRig(t, 0xC5, 0xF1) // PUSH BC; POP AF
	r.regs.SP = 0x8000
	r.regs.SetBC(0xBEEF)
	r.run(2)
	if r.regs.AF() != 0xBEEF || r.regs.SP != 0x8000 {
		t.Errorf("AF=%04X SP=%04X", r.regs.AF(), r.regs.SP)
	}
}

func TestExchangeStackTop(t *testing.T) {
	r := newRig(t, 0xE3) // EX (SP),HL
	r.regs.SP = 0x8000
	r.regs.SetHL(0x1234)
	r.mem[0x8000], r.mem[0x8001] = 0x78, 0x56
	r.step()
	if r.regs.HL() != 0x5678 || r.mem[0x8000] != 0x34 || r.mem[0x8001] != 0x12 {
		t.Errorf("HL=%04X stack=%02X%02X", r.regs.HL(), r.mem[0x8001], r.mem[0x8000])
	}
}

func TestRelativeJumps(t *testing.T) {
	r := newRig(t, 0x06, 0x03, 0x10, 0xFE) // LD B,3; DJNZ $
	n := r.run(4)
	if r.regs.B != 0 || r.regs.PC != 4 {
		t.Errorf("B=%d PC=%04X", r.regs.B, r.regs.PC)
	}
	if n != 7+13+13+8 {
		t.Errorf("loop took %d T-states", n)
	}
}

func TestRefreshCounter(t *testing.T) {
	r := newRig(t,
		0x3E, 0x80, // LD A,80h
		0xED, 0x4F, // LD R,A
		0xCB, 0x00, // RLC B
		0xED, 0x5F, // LD A,R
	)
	r.run(4)
	// LD R,A stores 80h after its own two M1s; RLC B and LD A,R add four.
	if r.regs.A != 0x84 {
		t.Errorf("LD A,R = %02X, want 84", r.regs.A)
	}
}

func TestLoadAIReflectsIFF2(t *testing.T) {
	r := newRig(t, 0xED, 0x57) // LD A,I
	r.regs.I = 0x00
	r.regs.IFF2 = true
	r.step()
	if !r.regs.Flag(cpu.FlagV) || !r.regs.Flag(cpu.FlagZ) {
		t.Errorf("F=%02X, want P/V from IFF2 and Z", r.regs.F)
	}
}

func TestRotateDigit(t *testing.T) {
	r := newRig(t, 0xED, 0x6F) // RLD
	r.regs.SetHL(0x8000)
	r.regs.A = 0x7A
	r.mem[0x8000] = 0x31
	r.step()
	if r.regs.A != 0x73 || r.mem[0x8000] != 0x1A {
		t.Errorf("A=%02X (HL)=%02X, want 73 1A", r.regs.A, r.mem[0x8000])
	}
}

func TestInterruptModeSelect(t *testing.T) {
	r := newRig(t, 0xED, 0x5E, 0xED, 0x46, 0xED, 0x56)
	r.step()
	if r.regs.IM != 2 {
		t.Errorf("IM 2: %d", r.regs.IM)
	}
	r.step()
	if r.regs.IM != 0 {
		t.Errorf("IM 0: %d", r.regs.IM)
	}
	r.step()
	if r.regs.IM != 1 {
		t.Errorf("IM 1: %d", r.regs.IM)
	}
}
