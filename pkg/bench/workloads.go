package bench

// Workloads returns the built-in tasks, each an endless loop stopped by
// the T-state budget.
func Workloads(tstates uint64) []Task {
	return []Task{
		{Name: "alu", TStates: tstates, Image: []byte{
			0x80,       // ADD A,B
			0x04,       // INC B
			0xA9,       // XOR C
			0x07,       // RLCA
			0x18, 0xFA, // JR 0000h
		}},
		{Name: "ldir", TStates: tstates, Image: []byte{
			0x21, 0x00, 0x40, // LD HL,4000h
			0x11, 0x00, 0x80, // LD DE,8000h
			0x01, 0x00, 0x10, // LD BC,1000h
			0xED, 0xB0, // LDIR
			0x18, 0xF3, // JR 0000h
		}},
		{Name: "calls", TStates: tstates, Image: []byte{
			0x31, 0x00, 0xF0, // LD SP,0F000h
			0xCD, 0x08, 0x00, // CALL 0008h
			0x18, 0xFB, // JR 0003h
			0xE5, // PUSH HL
			0xE1, // POP HL
			0xC9, // RET
		}},
		{Name: "indexed", TStates: tstates, Image: []byte{
			0xDD, 0x21, 0x00, 0x40, // LD IX,4000h
			0xDD, 0x34, 0x01, // INC (IX+1)
			0xDD, 0x7E, 0x01, // LD A,(IX+1)
			0xDD, 0xCB, 0x02, 0xDE, // SET 3,(IX+2)
			0x18, 0xF4, // JR 0004h
		}},
	}
}
