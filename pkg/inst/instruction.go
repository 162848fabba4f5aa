package inst

import (
	"errors"
	"fmt"
)

// Group identifies the opcode table an instruction is decoded from.
type Group uint8

const (
	Base Group = iota
	CB
	ED
	DD
	FD
	DDCB
	FDCB
	groupCount
)

var groupNames = [...]string{"base", "cb", "ed", "dd", "fd", "ddcb", "fdcb"}

func (g Group) String() string {
	if g < groupCount {
		return groupNames[g]
	}
	return fmt.Sprintf("Group(%d)", uint8(g))
}

// Prefix returns the encoding bytes that select the group.
func (g Group) Prefix() []uint8 {
	switch g {
	case CB:
		return []uint8{0xCB}
	case ED:
		return []uint8{0xED}
	case DD:
		return []uint8{0xDD}
	case FD:
		return []uint8{0xFD}
	case DDCB:
		return []uint8{0xDD, 0xCB}
	case FDCB:
		return []uint8{0xFD, 0xCB}
	}
	return nil
}

// Operand describes the bytes that follow an opcode.
type Operand uint8

const (
	None   Operand = iota
	Imm8           // n
	Imm16          // nn
	Disp           // d, a signed offset
	DispN          // d then n
	Rel            // e, a PC-relative jump offset
	DispOp         // DDCB/FDCB: d sits between the prefix and the opcode
)

// Size returns the number of operand bytes.
func (o Operand) Size() int {
	switch o {
	case Imm8, Disp, Rel, DispOp:
		return 1
	case Imm16, DispN:
		return 2
	}
	return 0
}

// Info holds static metadata for one opcode.
type Info struct {
	Mnemonic string  // e.g. "ADD A, B", "LD (IX+d), n"
	Bytes    []uint8 // prefix and opcode bytes, without operands
	Operand  Operand
	TStates  int // clock cycles; the not-taken path for conditionals
	Taken    int // clock cycles when a branch is taken or a block op repeats; 0 if fixed

	Undocumented bool
}

// Size returns the total encoded length in bytes.
func (i *Info) Size() int { return len(i.Bytes) + i.Operand.Size() }

// Valid reports whether the entry describes an instruction.
func (i *Info) Valid() bool { return i.Mnemonic != "" }

var (
	ErrShort   = errors.New("inst: instruction truncated")
	ErrUnknown = errors.New("inst: no catalog entry")
)

// Lookup returns the catalog entry for op in group g.
func Lookup(g Group, op uint8) Info {
	if g >= groupCount {
		return Info{}
	}
	return catalog[g][op]
}

// Decode identifies the instruction at the start of code. A DD or FD that is
// followed by another prefix or by ED decodes as a lone 4 T-state prefix,
// which is how the CPU treats it.
func Decode(code []byte) (Info, error) {
	if len(code) == 0 {
		return Info{}, ErrShort
	}
	g, op, need := Base, code[0], 1
	switch code[0] {
	case 0xCB:
		g, need = CB, 2
	case 0xED:
		g, need = ED, 2
	case 0xDD, 0xFD:
		if len(code) < 2 {
			return Info{}, ErrShort
		}
		g, need = DD, 2
		if code[0] == 0xFD {
			g = FD
		}
		switch code[1] {
		case 0xDD, 0xFD, 0xED:
			return lonePrefix(code[0]), nil
		case 0xCB:
			g, need = DDCB, 4
			if code[0] == 0xFD {
				g = FDCB
			}
		}
	}
	if len(code) < need {
		return Info{}, ErrShort
	}
	op = code[need-1]

	info := catalog[g][op]
	if !info.Valid() {
		return Info{}, fmt.Errorf("%s %02X: %w", g, op, ErrUnknown)
	}
	if len(code) < info.Size() {
		return Info{}, ErrShort
	}
	return info, nil
}

func lonePrefix(b uint8) Info {
	return Info{Mnemonic: fmt.Sprintf("DB %sh", hex8(b)), Bytes: []uint8{b}, TStates: 4, Undocumented: true}
}

// Disassemble renders the instruction at the start of code, substituting
// operand values for the n, nn, d and e placeholders. pc is the address of
// the first byte, used to resolve relative jumps.
func Disassemble(code []byte, pc uint16) (string, int, error) {
	info, err := Decode(code)
	if err != nil {
		return "", 0, err
	}
	ops := code[len(info.Bytes):]

	m := info.Mnemonic
	switch info.Operand {
	case Imm8:
		m = replace(m, "n", hex8(ops[0])+"h")
	case Imm16:
		m = replace(m, "nn", hex16(uint16(ops[1])<<8|uint16(ops[0]))+"h")
	case Disp:
		m = replace(m, "+d", disp(ops[0]))
	case DispN:
		m = replace(replace(m, "+d", disp(ops[0])), "n", hex8(ops[1])+"h")
	case DispOp:
		m = replace(m, "+d", disp(code[2]))
	case Rel:
		target := pc + uint16(info.Size()) + uint16(int8(ops[0]))
		m = replace(m, "e", hex16(target)+"h")
	}
	return m, info.Size(), nil
}

// replace substitutes the last occurrence of placeholder, which always
// trails register names that might contain the same letters.
func replace(s, placeholder, with string) string {
	for i := len(s) - len(placeholder); i >= 0; i-- {
		if s[i:i+len(placeholder)] == placeholder {
			return s[:i] + with + s[i+len(placeholder):]
		}
	}
	return s
}

func disp(d uint8) string {
	v := int8(d)
	if v < 0 {
		return fmt.Sprintf("-%d", -int(v))
	}
	return fmt.Sprintf("+%d", v)
}

const hexDigits = "0123456789ABCDEF"

// hex8 and hex16 format in assembler style: a leading 0 when the first
// digit is a letter.
func hex8(v uint8) string {
	buf := make([]byte, 0, 3)
	if v >= 0xA0 {
		buf = append(buf, '0')
	}
	buf = append(buf, hexDigits[v>>4], hexDigits[v&0x0F])
	return string(buf)
}

func hex16(v uint16) string {
	buf := make([]byte, 0, 5)
	if v>>12 >= 0xA {
		buf = append(buf, '0')
	}
	buf = append(buf, hexDigits[v>>12], hexDigits[(v>>8)&0x0F], hexDigits[(v>>4)&0x0F], hexDigits[v&0x0F])
	return string(buf)
}
