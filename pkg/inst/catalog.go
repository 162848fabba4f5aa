package inst

import "fmt"

// catalog holds one 256-entry table per opcode group. Entries that are not
// instructions in their group (the prefix bytes inside DD and FD) are zero.
var catalog [groupCount][256]Info

var (
	regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	rpNames  = [4]string{"BC", "DE", "HL", "SP"}
	rp2Names = [4]string{"BC", "DE", "HL", "AF"}
	ccNames  = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluNames = [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}
	rotNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
	imNames  = [8]string{"0", "0/1", "1", "2", "0", "0/1", "1", "2"}
)

func init() {
	for op := 0; op < 256; op++ {
		b := uint8(op)
		catalog[Base][op] = baseInfo(b)
		catalog[CB][op] = cbInfo(b)
		catalog[ED][op] = edInfo(b)
		catalog[DD][op] = indexedInfo(b, "IX", 0xDD)
		catalog[FD][op] = indexedInfo(b, "IY", 0xFD)
		catalog[DDCB][op] = indexedCBInfo(b, "IX", 0xDD)
		catalog[FDCB][op] = indexedCBInfo(b, "IY", 0xFD)
	}
}

func split(op uint8) (x, y, z, p, q uint8) {
	x, y, z = op>>6, (op>>3)&7, op&7
	return x, y, z, y >> 1, y & 1
}

func baseInfo(op uint8) Info {
	x, y, z, p, q := split(op)
	in := Info{Bytes: []uint8{op}, TStates: 4}
	set := func(m string, operand Operand, t, taken int) {
		in.Mnemonic, in.Operand, in.TStates, in.Taken = m, operand, t, taken
	}

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				set("NOP", None, 4, 0)
			case 1:
				set("EX AF, AF'", None, 4, 0)
			case 2:
				set("DJNZ e", Rel, 8, 13)
			case 3:
				set("JR e", Rel, 12, 0)
			default:
				set("JR "+ccNames[y-4]+", e", Rel, 7, 12)
			}
		case 1:
			if q == 0 {
				set("LD "+rpNames[p]+", nn", Imm16, 10, 0)
			} else {
				set("ADD HL, "+rpNames[p], None, 11, 0)
			}
		case 2:
			switch y {
			case 0:
				set("LD (BC), A", None, 7, 0)
			case 1:
				set("LD A, (BC)", None, 7, 0)
			case 2:
				set("LD (DE), A", None, 7, 0)
			case 3:
				set("LD A, (DE)", None, 7, 0)
			case 4:
				set("LD (nn), HL", Imm16, 16, 0)
			case 5:
				set("LD HL, (nn)", Imm16, 16, 0)
			case 6:
				set("LD (nn), A", Imm16, 13, 0)
			case 7:
				set("LD A, (nn)", Imm16, 13, 0)
			}
		case 3:
			if q == 0 {
				set("INC "+rpNames[p], None, 6, 0)
			} else {
				set("DEC "+rpNames[p], None, 6, 0)
			}
		case 4, 5:
			name := "INC "
			if z == 5 {
				name = "DEC "
			}
			set(name+regNames[y], None, memCost(y, 4, 11), 0)
		case 6:
			set("LD "+regNames[y]+", n", Imm8, memCost(y, 7, 10), 0)
		case 7:
			set([8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}[y], None, 4, 0)
		}
	case 1:
		if op == 0x76 {
			set("HALT", None, 4, 0)
			break
		}
		t := 4
		if y == 6 || z == 6 {
			t = 7
		}
		set("LD "+regNames[y]+", "+regNames[z], None, t, 0)
	case 2:
		set(aluNames[y]+regNames[z], None, memCost(z, 4, 7), 0)
	case 3:
		switch z {
		case 0:
			set("RET "+ccNames[y], None, 5, 11)
		case 1:
			if q == 0 {
				set("POP "+rp2Names[p], None, 10, 0)
				break
			}
			switch p {
			case 0:
				set("RET", None, 10, 0)
			case 1:
				set("EXX", None, 4, 0)
			case 2:
				set("JP (HL)", None, 4, 0)
			case 3:
				set("LD SP, HL", None, 6, 0)
			}
		case 2:
			set("JP "+ccNames[y]+", nn", Imm16, 10, 0)
		case 3:
			switch y {
			case 0:
				set("JP nn", Imm16, 10, 0)
			case 1:
				return Info{} // CB prefix
			case 2:
				set("OUT (n), A", Imm8, 11, 0)
			case 3:
				set("IN A, (n)", Imm8, 11, 0)
			case 4:
				set("EX (SP), HL", None, 19, 0)
			case 5:
				set("EX DE, HL", None, 4, 0)
			case 6:
				set("DI", None, 4, 0)
			case 7:
				set("EI", None, 4, 0)
			}
		case 4:
			set("CALL "+ccNames[y]+", nn", Imm16, 10, 17)
		case 5:
			if q == 0 {
				set("PUSH "+rp2Names[p], None, 11, 0)
				break
			}
			if p != 0 {
				return Info{} // DD, ED, FD prefixes
			}
			set("CALL nn", Imm16, 17, 0)
		case 6:
			set(aluNames[y]+"n", Imm8, 7, 0)
		case 7:
			set(fmt.Sprintf("RST %sh", hex8(y*8)), None, 11, 0)
		}
	}
	return in
}

// memCost picks the register or (HL) timing for register code r.
func memCost(r uint8, reg, mem int) int {
	if r == 6 {
		return mem
	}
	return reg
}

func cbInfo(op uint8) Info {
	x, y, z, _, _ := split(op)
	in := Info{Bytes: []uint8{0xCB, op}}
	switch x {
	case 0:
		in.Mnemonic = rotNames[y] + " " + regNames[z]
		in.Undocumented = y == 6
		in.TStates = memCost(z, 8, 15)
	case 1:
		in.Mnemonic = fmt.Sprintf("BIT %d, %s", y, regNames[z])
		in.TStates = memCost(z, 8, 12)
	case 2:
		in.Mnemonic = fmt.Sprintf("RES %d, %s", y, regNames[z])
		in.TStates = memCost(z, 8, 15)
	case 3:
		in.Mnemonic = fmt.Sprintf("SET %d, %s", y, regNames[z])
		in.TStates = memCost(z, 8, 15)
	}
	return in
}

func edInfo(op uint8) Info {
	x, y, z, p, q := split(op)
	in := Info{Bytes: []uint8{0xED, op}, TStates: 8}
	set := func(m string, operand Operand, t, taken int) {
		in.Mnemonic, in.Operand, in.TStates, in.Taken = m, operand, t, taken
	}

	if x == 2 && y >= 4 && z <= 3 {
		names := [4][4]string{
			{"LDI", "CPI", "INI", "OUTI"},
			{"LDD", "CPD", "IND", "OUTD"},
			{"LDIR", "CPIR", "INIR", "OTIR"},
			{"LDDR", "CPDR", "INDR", "OTDR"},
		}
		taken := 0
		if y >= 6 {
			taken = 21
		}
		set(names[y-4][z], None, 16, taken)
		return in
	}
	if x != 1 {
		set("NOP", None, 8, 0)
		in.Undocumented = true
		return in
	}

	switch z {
	case 0:
		if y == 6 {
			set("IN F, (C)", None, 12, 0)
			in.Undocumented = true
		} else {
			set("IN "+regNames[y]+", (C)", None, 12, 0)
		}
	case 1:
		if y == 6 {
			set("OUT (C), 0", None, 12, 0)
			in.Undocumented = true
		} else {
			set("OUT (C), "+regNames[y], None, 12, 0)
		}
	case 2:
		if q == 0 {
			set("SBC HL, "+rpNames[p], None, 15, 0)
		} else {
			set("ADC HL, "+rpNames[p], None, 15, 0)
		}
	case 3:
		if q == 0 {
			set("LD (nn), "+rpNames[p], Imm16, 20, 0)
		} else {
			set("LD "+rpNames[p]+", (nn)", Imm16, 20, 0)
		}
	case 4:
		set("NEG", None, 8, 0)
		in.Undocumented = y != 0
	case 5:
		if y == 1 {
			set("RETI", None, 14, 0)
		} else {
			set("RETN", None, 14, 0)
			in.Undocumented = y != 0
		}
	case 6:
		set("IM "+imNames[y], None, 8, 0)
		in.Undocumented = y != 0 && y != 2 && y != 3
	case 7:
		switch y {
		case 0:
			set("LD I, A", None, 9, 0)
		case 1:
			set("LD R, A", None, 9, 0)
		case 2:
			set("LD A, I", None, 9, 0)
		case 3:
			set("LD A, R", None, 9, 0)
		case 4:
			set("RRD", None, 18, 0)
		case 5:
			set("RLD", None, 18, 0)
		default:
			set("NOP", None, 8, 0)
			in.Undocumented = true
		}
	}
	return in
}

// indexedInfo derives the DD or FD entry from the base entry. Opcodes that
// touch HL, H, L or (HL) are rewritten for the index register; the rest
// execute unchanged after the 4 T-state prefix.
func indexedInfo(op uint8, xy string, prefix uint8) Info {
	switch op {
	case 0xCB, 0xDD, 0xED, 0xFD:
		return Info{}
	}
	base := baseInfo(op)
	if !base.Valid() {
		return Info{}
	}
	x, y, z, p, q := split(op)
	in := base
	in.Bytes = []uint8{prefix, op}
	in.TStates = base.TStates + 4
	if base.Taken != 0 {
		in.Taken = base.Taken + 4
	}
	in.Undocumented = true

	reg := func(r uint8) string {
		switch r {
		case 4:
			return xy + "H"
		case 5:
			return xy + "L"
		case 6:
			return "(" + xy + "+d)"
		}
		return regNames[r]
	}
	mem := "(" + xy + "+d)"
	touchesHL := false

	switch {
	case x == 1 && op != 0x76 && (y == 6 || z == 6):
		// LD r,(IX+d) / LD (IX+d),r use the plain H and L.
		if y == 6 {
			in.Mnemonic = "LD " + mem + ", " + regNames[z]
		} else {
			in.Mnemonic = "LD " + regNames[y] + ", " + mem
		}
		in.Operand, in.TStates, in.Undocumented = Disp, 19, false
		return in
	case x == 1 && op != 0x76 && (y == 4 || y == 5 || z == 4 || z == 5):
		in.Mnemonic = "LD " + reg(y) + ", " + reg(z)
		touchesHL = true
	case x == 2:
		in.Mnemonic = aluNames[y] + reg(z)
		if z == 6 {
			in.Operand, in.TStates, in.Undocumented = Disp, 19, false
			return in
		}
		touchesHL = z == 4 || z == 5
	case x == 0 && (z == 4 || z == 5):
		name := "INC "
		if z == 5 {
			name = "DEC "
		}
		in.Mnemonic = name + reg(y)
		if y == 6 {
			in.Operand, in.TStates, in.Undocumented = Disp, 23, false
			return in
		}
		touchesHL = y == 4 || y == 5
	case x == 0 && z == 6:
		in.Mnemonic = "LD " + reg(y) + ", n"
		if y == 6 {
			in.Operand, in.TStates, in.Undocumented = DispN, 19, false
			return in
		}
		touchesHL = y == 4 || y == 5
	case x == 0 && z == 1 && p == 2:
		if q == 0 {
			in.Mnemonic = "LD " + xy + ", nn"
		} else {
			in.Mnemonic = "ADD " + xy + ", " + xy
		}
		in.Undocumented = false
		touchesHL = true
	case x == 0 && z == 1 && q == 1:
		in.Mnemonic = "ADD " + xy + ", " + rpNames[p]
		in.Undocumented = false
		touchesHL = true
	case x == 0 && z == 2 && p == 2:
		if q == 0 {
			in.Mnemonic = "LD (nn), " + xy
		} else {
			in.Mnemonic = "LD " + xy + ", (nn)"
		}
		in.Undocumented = false
		touchesHL = true
	case x == 0 && z == 3 && p == 2:
		if q == 0 {
			in.Mnemonic = "INC " + xy
		} else {
			in.Mnemonic = "DEC " + xy
		}
		in.Undocumented = false
		touchesHL = true
	case op == 0xE1:
		in.Mnemonic, in.Undocumented, touchesHL = "POP "+xy, false, true
	case op == 0xE5:
		in.Mnemonic, in.Undocumented, touchesHL = "PUSH "+xy, false, true
	case op == 0xE3:
		in.Mnemonic, in.Undocumented, touchesHL = "EX (SP), "+xy, false, true
	case op == 0xE9:
		in.Mnemonic, in.Undocumented, touchesHL = "JP ("+xy+")", false, true
	case op == 0xF9:
		in.Mnemonic, in.Undocumented, touchesHL = "LD SP, "+xy, false, true
	}
	if !touchesHL {
		in.Mnemonic = base.Mnemonic
	}
	return in
}

// indexedCBInfo builds DD CB d op / FD CB d op. Register encodings other
// than 6 store the result in that register as well as in memory.
func indexedCBInfo(op uint8, xy string, prefix uint8) Info {
	x, y, z, _, _ := split(op)
	mem := "(" + xy + "+d)"
	in := Info{Bytes: []uint8{prefix, 0xCB, op}, Operand: DispOp, TStates: 23, Undocumented: z != 6}
	copyTo := ""
	if z != 6 {
		copyTo = ", " + regNames[z]
	}
	switch x {
	case 0:
		in.Mnemonic = rotNames[y] + " " + mem + copyTo
		if y == 6 {
			in.Undocumented = true
		}
	case 1:
		in.Mnemonic = fmt.Sprintf("BIT %d, %s", y, mem)
		in.TStates = 20
	case 2:
		in.Mnemonic = fmt.Sprintf("RES %d, %s%s", y, mem, copyTo)
	case 3:
		in.Mnemonic = fmt.Sprintf("SET %d, %s%s", y, mem, copyTo)
	}
	return in
}
