package machine

import (
	"context"
	"testing"
	"time"

	"github.com/koron-go/z80"

	"github.com/oisee/fe2z80/pkg/cpu"
)

// Differential tests against koron-go/z80, an instruction-level core. Only
// the documented flags and plain registers are compared.

type flatMemory []byte

func (m flatMemory) Get(addr uint16) uint8    { return m[addr] }
func (m flatMemory) Set(addr uint16, v uint8) { m[addr] = v }

type nullIO struct{}

func (nullIO) In(uint8) uint8    { return 0xFF }
func (nullIO) Out(uint8, uint8) {}

const oracleFlags = cpu.FlagS | cpu.FlagZ | cpu.FlagP | cpu.FlagN | cpu.FlagC

type snapshot struct {
	A, F, B, C, D, E, H, L uint8
	SP                     uint16
}

func runOracle(t *testing.T, code, data []byte) (snapshot, []byte) {
	t.Helper()
	mem := make(flatMemory, 0x10000)
	copy(mem, code)
	copy(mem[0x4000:], data)
	c := z80.CPU{
		States: z80.States{SPR: z80.SPR{SP: 0xF000}},
		Memory: mem,
		IO:     nullIO{},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("oracle: %v", err)
	}
	s := c.States
	return snapshot{
		A: s.AF.Hi, F: s.AF.Lo & oracleFlags,
		B: s.BC.Hi, C: s.BC.Lo,
		D: s.DE.Hi, E: s.DE.Lo,
		H: s.HL.Hi, L: s.HL.Lo,
		SP: s.SP,
	}, mem
}

func runMachine(t *testing.T, code, data []byte) (snapshot, []byte) {
	t.Helper()
	m := newMachine(t, program(code...))
	copy(m.Memory()[0x4000:], data)
	m.Regs = cpu.Registers{SP: 0xF000}
	if _, err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	r := m.Regs
	return snapshot{
		A: r.A, F: r.F & oracleFlags,
		B: r.B, C: r.C,
		D: r.D, E: r.E,
		H: r.H, L: r.L,
		SP: r.SP,
	}, m.Memory()
}

func TestAgainstInstructionLevelCore(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		data []byte
	}{
		{"8-bit arithmetic", []byte{
			0x3E, 0x3C, // LD A,3Ch
			0x06, 0x8F, // LD B,8Fh
			0x80,       // ADD A,B
			0x4F,       // LD C,A
			0xD6, 0x45, // SUB 45h
			0x99,       // SBC A,C
			0xE6, 0x5A, // AND 5Ah
			0xF6, 0x81, // OR 81h
			0xA8,       // XOR B
			0xFE, 0x12, // CP 12h
			0x27, // DAA
			0x76,
		}, nil},
		{"decimal adjust", []byte{
			0x3E, 0x19, // LD A,19h
			0xC6, 0x28, // ADD A,28h
			0x27,       // DAA
			0x57,       // LD D,A
			0xD6, 0x09, // SUB 09h
			0x27,       // DAA
			0x76,
		}, nil},
		{"16-bit arithmetic", []byte{
			0x21, 0xFF, 0x7F, // LD HL,7FFFh
			0x11, 0x01, 0x00, // LD DE,0001h
			0x01, 0x34, 0x12, // LD BC,1234h
			0x19,       // ADD HL,DE
			0xED, 0x5A, // ADC HL,DE
			0xED, 0x42, // SBC HL,BC
			0x23, // INC HL
			0x1B, // DEC DE
			0x0B, // DEC BC
			0x76,
		}, nil},
		{"rotates and shifts", []byte{
			0x3E, 0x81, // LD A,81h
			0x07,       // RLCA
			0x1F,       // RRA
			0x06, 0x55, // LD B,55h
			0xCB, 0x00, // RLC B
			0xCB, 0x38, // SRL B
			0xCB, 0x20, // SLA B
			0xCB, 0x28, // SRA B
			0xCB, 0x18, // RR B
			0x0E, 0xF0, // LD C,F0h
			0xCB, 0xC1, // SET 0,C
			0xCB, 0xB9, // RES 7,C
			0x76,
		}, nil},
		{"block copy", []byte{
			0x21, 0x00, 0x40, // LD HL,4000h
			0x11, 0x00, 0x50, // LD DE,5000h
			0x01, 0x10, 0x00, // LD BC,0010h
			0xED, 0xB0, // LDIR
			0x76,
		}, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
		{"block search", []byte{
			0x21, 0x00, 0x40, // LD HL,4000h
			0x01, 0x08, 0x00, // LD BC,0008h
			0x3E, 0x05, // LD A,5
			0xED, 0xB1, // CPIR
			0x76,
		}, []byte{9, 8, 7, 6, 5, 4, 3, 2}},
		{"stack and calls", []byte{
			0x01, 0xCD, 0xAB, // LD BC,0ABCDh
			0xCD, 0x10, 0x00, // CALL 0010h
			0x76,
			0, 0, 0, 0, 0, 0, 0, 0, 0,
			0xC5, // 0010: PUSH BC
			0xD1, // POP DE
			0xE5, // PUSH HL
			0xE1, // POP HL
			0xC9, // RET
		}, nil},
		{"counted loop", []byte{
			0x06, 0x0A, // LD B,10
			0xAF, // XOR A
			0x80, // loop: ADD A,B
			0x10, 0xFD, // DJNZ loop
			0x76,
		}, nil},
		{"indexed memory", []byte{
			0xDD, 0x21, 0x00, 0x40, // LD IX,4000h
			0xDD, 0x36, 0x03, 0x77, // LD (IX+3),77h
			0xDD, 0x7E, 0x03, // LD A,(IX+3)
			0xDD, 0x34, 0x03, // INC (IX+3)
			0xDD, 0x46, 0x03, // LD B,(IX+3)
			0xFD, 0x21, 0x08, 0x40, // LD IY,4008h
			0xFD, 0x70, 0xFE, // LD (IY-2),B
			0xFD, 0xCB, 0xFE, 0x06, // RLC (IY-2)
			0xFD, 0x4E, 0xFE, // LD C,(IY-2)
			0x76,
		}, nil},
		{"exchanges", []byte{
			0x3E, 0x11, // LD A,11h
			0x08,             // EX AF,AF'
			0x3E, 0x22, // LD A,22h
			0x21, 0x33, 0x33, // LD HL,3333h
			0xD9,             // EXX
			0x21, 0x44, 0x44, // LD HL,4444h
			0xEB, // EX DE,HL
			0xD9, // EXX
			0x08, // EX AF,AF'
			0x76,
		}, nil},
		{"accumulator ops", []byte{
			0x3E, 0x5A, // LD A,5Ah
			0xED, 0x44, // NEG
			0x2F, // CPL
			0x37, // SCF
			0x3F, // CCF
			0x47, // LD B,A
			0x3C, // INC A
			0x3D, // DEC A
			0x76,
		}, nil},
		{"digit rotate", []byte{
			0x21, 0x00, 0x40, // LD HL,4000h
			0x3E, 0x7A, // LD A,7Ah
			0xED, 0x6F, // RLD
			0xED, 0x67, // RRD
			0xED, 0x67, // RRD
			0x76,
		}, []byte{0x31}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			want, wantMem := runOracle(t, tc.code, tc.data)
			got, gotMem := runMachine(t, tc.code, tc.data)
			if got != want {
				t.Errorf("registers:\n got %+v\nwant %+v", got, want)
			}
			for a := 0x4000; a < 0x5100; a++ {
				if gotMem[a] != wantMem[a] {
					t.Errorf("mem[%04X] = %02X, want %02X", a, gotMem[a], wantMem[a])
					break
				}
			}
			if gotMem[0xEFFE] != wantMem[0xEFFE] || gotMem[0xEFFF] != wantMem[0xEFFF] {
				t.Errorf("stack top differs")
			}
		})
	}
}
