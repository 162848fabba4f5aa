package inst

import (
	"errors"
	"testing"
)

// TestCatalogCompleteness verifies every slot that is not a prefix has an entry.
func TestCatalogCompleteness(t *testing.T) {
	prefixes := map[uint8]bool{0xCB: true, 0xDD: true, 0xED: true, 0xFD: true}
	for g := Base; g < groupCount; g++ {
		for op := 0; op < 256; op++ {
			info := Lookup(g, uint8(op))
			skip := (g == Base || g == DD || g == FD) && prefixes[uint8(op)]
			if skip {
				if info.Valid() {
					t.Errorf("%s %02X: prefix byte has an entry %q", g, op, info.Mnemonic)
				}
				continue
			}
			if !info.Valid() {
				t.Errorf("%s %02X has no mnemonic", g, op)
				continue
			}
			if info.TStates == 0 {
				t.Errorf("%s %02X (%s) has 0 T-states", g, op, info.Mnemonic)
			}
			if info.Bytes[len(info.Bytes)-1] != uint8(op) {
				t.Errorf("%s %02X: encoding %X does not end in the opcode", g, op, info.Bytes)
			}
		}
	}
}

// TestTStates spot-checks timings against the Zilog manual.
func TestTStates(t *testing.T) {
	tests := []struct {
		g     Group
		op    uint8
		want  int
		taken int
	}{
		{Base, 0x00, 4, 0},   // NOP
		{Base, 0x06, 7, 0},   // LD B,n
		{Base, 0x36, 10, 0},  // LD (HL),n
		{Base, 0x10, 8, 13},  // DJNZ
		{Base, 0x18, 12, 0},  // JR
		{Base, 0x20, 7, 12},  // JR NZ
		{Base, 0x34, 11, 0},  // INC (HL)
		{Base, 0xC5, 11, 0},  // PUSH BC
		{Base, 0xC1, 10, 0},  // POP BC
		{Base, 0xCD, 17, 0},  // CALL
		{Base, 0xC4, 10, 17}, // CALL NZ
		{Base, 0xC0, 5, 11},  // RET NZ
		{Base, 0xE3, 19, 0},  // EX (SP),HL
		{Base, 0xFF, 11, 0},  // RST 38h
		{Base, 0xD3, 11, 0},  // OUT (n),A
		{CB, 0x00, 8, 0},     // RLC B
		{CB, 0x46, 12, 0},    // BIT 0,(HL)
		{CB, 0x06, 15, 0},    // RLC (HL)
		{ED, 0x44, 8, 0},     // NEG
		{ED, 0x40, 12, 0},    // IN B,(C)
		{ED, 0x4A, 15, 0},    // ADC HL,BC
		{ED, 0x43, 20, 0},    // LD (nn),BC
		{ED, 0x45, 14, 0},    // RETN
		{ED, 0x57, 9, 0},     // LD A,I
		{ED, 0x67, 18, 0},    // RRD
		{ED, 0xB0, 16, 21},   // LDIR
		{ED, 0x00, 8, 0},     // undefined
		{DD, 0x21, 14, 0},    // LD IX,nn
		{DD, 0x09, 15, 0},    // ADD IX,BC
		{DD, 0x46, 19, 0},    // LD B,(IX+d)
		{DD, 0x36, 19, 0},    // LD (IX+d),n
		{DD, 0x34, 23, 0},    // INC (IX+d)
		{DD, 0xE3, 23, 0},    // EX (SP),IX
		{DD, 0xE9, 8, 0},     // JP (IX)
		{DD, 0x26, 11, 0},    // LD IXH,n
		{DD, 0x00, 8, 0},     // NOP after a prefix
		{DDCB, 0x46, 20, 0},  // BIT 0,(IX+d)
		{DDCB, 0x06, 23, 0},  // RLC (IX+d)
		{FDCB, 0xC6, 23, 0},  // SET 0,(IY+d)
	}

	for _, tc := range tests {
		info := Lookup(tc.g, tc.op)
		if info.TStates != tc.want || info.Taken != tc.taken {
			t.Errorf("%s %02X (%s): got %d/%d T-states, want %d/%d",
				tc.g, tc.op, info.Mnemonic, info.TStates, info.Taken, tc.want, tc.taken)
		}
	}
}

// TestMnemonics verifies mnemonic generation for the index groups.
func TestMnemonics(t *testing.T) {
	tests := []struct {
		g    Group
		op   uint8
		want string
	}{
		{Base, 0x80, "ADD A, B"},
		{Base, 0x7E, "LD A, (HL)"},
		{Base, 0xEF, "RST 28h"},
		{DD, 0x66, "LD H, (IX+d)"},
		{DD, 0x64, "LD IXH, IXH"},
		{FD, 0x7D, "LD A, IYL"},
		{FD, 0x86, "ADD A, (IY+d)"},
		{DD, 0x3C, "INC A"},
		{DD, 0xEB, "EX DE, HL"},
		{DD, 0xE5, "PUSH IX"},
		{DDCB, 0x00, "RLC (IX+d), B"},
		{FDCB, 0x7E, "BIT 7, (IY+d)"},
		{ED, 0x70, "IN F, (C)"},
		{ED, 0x71, "OUT (C), 0"},
		{CB, 0x30, "SLL B"},
	}

	for _, tc := range tests {
		if got := Lookup(tc.g, tc.op).Mnemonic; got != tc.want {
			t.Errorf("%s %02X: got %q want %q", tc.g, tc.op, got, tc.want)
		}
	}
}

// TestDecode verifies prefix handling and sizes.
func TestDecode(t *testing.T) {
	tests := []struct {
		code []byte
		want string
		size int
	}{
		{[]byte{0x00}, "NOP", 1},
		{[]byte{0x3E, 0x42}, "LD A, n", 2},
		{[]byte{0xC3, 0x00, 0x80}, "JP nn", 3},
		{[]byte{0xCB, 0x11}, "RL C", 2},
		{[]byte{0xED, 0xB0}, "LDIR", 2},
		{[]byte{0xDD, 0x21, 0x34, 0x12}, "LD IX, nn", 4},
		{[]byte{0xDD, 0x36, 0x05, 0x99}, "LD (IX+d), n", 4},
		{[]byte{0xFD, 0xCB, 0x02, 0x46}, "BIT 0, (IY+d)", 4},
		{[]byte{0xDD, 0xFD, 0x21}, "DB 0DDh", 1},
	}

	for _, tc := range tests {
		info, err := Decode(tc.code)
		if err != nil {
			t.Errorf("Decode(% X): %v", tc.code, err)
			continue
		}
		if info.Mnemonic != tc.want || info.Size() != tc.size {
			t.Errorf("Decode(% X): got %q size %d, want %q size %d",
				tc.code, info.Mnemonic, info.Size(), tc.want, tc.size)
		}
	}

	if _, err := Decode([]byte{0xC3, 0x00}); !errors.Is(err, ErrShort) {
		t.Errorf("truncated JP: got %v, want ErrShort", err)
	}
	if _, err := Decode(nil); !errors.Is(err, ErrShort) {
		t.Errorf("empty: got %v, want ErrShort", err)
	}
}

// TestDisassemble verifies operand substitution.
func TestDisassemble(t *testing.T) {
	tests := []struct {
		code []byte
		pc   uint16
		want string
	}{
		{[]byte{0x3E, 0xFF}, 0, "LD A, 0FFh"},
		{[]byte{0x06, 0x00}, 0, "LD B, 00h"},
		{[]byte{0x21, 0x34, 0x12}, 0, "LD HL, 1234h"},
		{[]byte{0x32, 0x00, 0xC0}, 0, "LD (0C000h), A"},
		{[]byte{0x18, 0xFE}, 0x0100, "JR 0100h"},
		{[]byte{0x20, 0x10}, 0x0000, "JR NZ, 0012h"},
		{[]byte{0xDD, 0x7E, 0xFB}, 0, "LD A, (IX-5)"},
		{[]byte{0xFD, 0x36, 0x03, 0xA5}, 0, "LD (IY+3), 0A5h"},
		{[]byte{0xDD, 0xCB, 0x7F, 0xC6}, 0, "SET 0, (IX+127)"},
		{[]byte{0xD3, 0xFE}, 0, "OUT (0FEh), A"},
	}

	for _, tc := range tests {
		got, _, err := Disassemble(tc.code, tc.pc)
		if err != nil {
			t.Errorf("Disassemble(% X): %v", tc.code, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Disassemble(% X): got %q want %q", tc.code, got, tc.want)
		}
	}
}
