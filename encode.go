package sicasm

import (
	"fmt"

	"github.com/golang/glog"
)

// Flag bits of the 12-bit displacement form (format 3) and of the 20-bit
// address form (format 4), counted above the opcode byte.
const (
	xBit3 = 1 << 15
	bBit3 = 1 << 14
	pBit3 = 1 << 13

	xBit4 = 1 << 23
	eBit4 = 1 << 20
)

// n and i bits folded into the opcode byte.
var niBits = map[addressing]byte{
	simple:    3,
	immediate: 1,
	indirect:  2,
}

var twoOperand = map[string]bool{
	"ADDR":   true,
	"COMPR":  true,
	"DIVR":   true,
	"MULR":   true,
	"RMO":    true,
	"SHIFTL": true,
	"SHIFTR": true,
	"SUBR":   true,
}

// placement is what an addressing mode needs to try to encode a format 3
// target address.
type placement struct {
	Opcode byte // with n and i applied
	Plain  byte // without n and i
	Mode   addressing
	Flags  int // x bit
	Target int
	Loc    int
	Base   int // -1 when unset
}

type addressingMode struct {
	Name   string
	Encode func(p placement) (code string, mod *ModRecord, ok bool)
}

// addressingPolicy lists the format 3 addressing modes in order of
// preference. The first one able to represent the target wins, so an
// address reachable both PC-relative and base-relative is always encoded
// PC-relative.
var addressingPolicy = []addressingMode{
	{"pc-relative", pcRelative},
	{"base-relative", baseRelative},
	{"direct", direct},
	{"legacy", legacy},
}

func pcRelative(p placement) (string, *ModRecord, bool) {
	disp := p.Target - (p.Loc + format3)
	if disp < -2048 || disp > 2047 {
		return "", nil, false
	}
	return fmt.Sprintf("%02X%04X", p.Opcode, p.Flags|pBit3|disp&0xFFF), nil, true
}

func baseRelative(p placement) (string, *ModRecord, bool) {
	if p.Base < 0 {
		return "", nil, false
	}

	disp := p.Target - p.Base
	if disp < 0 || disp > 4095 {
		return "", nil, false
	}
	return fmt.Sprintf("%02X%04X", p.Opcode, p.Flags|bBit3|disp), nil, true
}

// direct places the address itself in the displacement field. The field
// then holds an absolute address and needs relocation.
func direct(p placement) (string, *ModRecord, bool) {
	if p.Target < 0 || p.Target > 4095 {
		return "", nil, false
	}
	mod := &ModRecord{Address: p.Loc + 1, Width: 3}
	return fmt.Sprintf("%02X%04X", p.Opcode, p.Flags|p.Target), mod, true
}

// legacy is the SIC encoding: no n, i, b, p or e bits and a 15-bit
// address. Only simple operands can use it.
func legacy(p placement) (string, *ModRecord, bool) {
	if p.Mode != simple || p.Target < 0 || p.Target > 1<<15-1 {
		return "", nil, false
	}
	return fmt.Sprintf("%02X%04X", p.Plain, p.Flags|p.Target), nil, true
}

// encodeInstruction returns the machine code of an instruction line
// located at loc, and a modification record when the encoded field holds
// an absolute address.
func encodeInstruction(ln *sourceLine, loc, base int, symbols SymbolTable) (code string, mod *ModRecord, err error) {
	opcode := opcodes[ln.Mnemonic]

	switch ln.format() {
	case format1:
		code = fmt.Sprintf("%02X", opcode)
	case format2:
		code, err = encodeFormat2(ln, opcode)
	case format3:
		code, mod, err = encodeFormat3(ln, opcode, loc, base, symbols)
	case format4:
		code, mod, err = encodeFormat4(ln, opcode, loc, symbols)
	default:
		err = errorf(ErrParse, "not a valid format")
	}
	return
}

func encodeFormat2(ln *sourceLine, opcode byte) (string, error) {
	args := ln.Args

	if twoOperand[ln.Mnemonic] {
		if len(args) != 2 {
			return "", errorf(ErrParse, "%s needs two operands", ln.Mnemonic)
		}

		r1, err := parseRegister(args[0])
		if err != nil {
			return "", err
		}

		var r2 byte
		if ln.Mnemonic == "SHIFTL" || ln.Mnemonic == "SHIFTR" {
			n, err := parseNumber(args[1])
			if err != nil {
				return "", err
			}
			if n < 1 || n >= 16 {
				return "", errorf(ErrRange, "shift value needs to be in interval [1, 15]")
			}
			r2 = byte(n)
		} else if r2, err = parseRegister(args[1]); err != nil {
			return "", err
		}

		return fmt.Sprintf("%02X%01X%01X", opcode, r1, r2), nil
	}

	if len(args) != 1 {
		return "", errorf(ErrParse, "%s takes one operand", ln.Mnemonic)
	}

	if ln.Mnemonic == "SVC" {
		n, err := parseNumber(args[0])
		if err != nil {
			return "", err
		}
		if n < 0 || n > 255 {
			return "", errorf(ErrRange, "SVC needs number in interval [0, 255]")
		}
		return fmt.Sprintf("%02X%02X", opcode, n), nil
	}

	// CLEAR, TIXR
	r, err := parseRegister(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02X%02X", opcode, r<<4), nil
}

// immediateLiteral reports whether op is a number rather than a symbol.
func immediateLiteral(op operand, symbols SymbolTable) bool {
	if op.Mode != immediate {
		return false
	}
	_, known := symbols[op.Value]
	return !known
}

func encodeFormat3(ln *sourceLine, opcode byte, loc, base int, symbols SymbolTable) (code string, mod *ModRecord, err error) {
	if ln.Mnemonic == "RSUB" {
		code = fmt.Sprintf("%02X0000", opcode|niBits[simple])
		return
	}

	op := ln.Target
	flags := 0
	if op.Indexed {
		flags |= xBit3
	}

	if immediateLiteral(op, symbols) {
		var n int64
		if n, err = parseNumber(op.Value); err != nil {
			return
		}
		if n < -2048 || n > 2047 {
			err = errorf(ErrRange, "immediate value must be on interval [-2048, 2047]")
			return
		}
		code = fmt.Sprintf("%02X%04X", opcode|niBits[immediate], flags|int(n)&0xFFF)
		return
	}

	target, ok := symbols[op.Value]
	if !ok {
		err = errorf(ErrSymbol, "symbol %s does not appear as a label", op.Value)
		return
	}

	p := placement{
		Opcode: opcode | niBits[op.Mode],
		Plain:  opcode,
		Mode:   op.Mode,
		Flags:  flags,
		Target: int(target),
		Loc:    loc,
		Base:   base,
	}

	for _, am := range addressingPolicy {
		if code, mod, ok = am.Encode(p); ok {
			glog.V(2).Infof("%05X %s %s: %s", loc, ln.Mnemonic, op.Value, am.Name)
			return
		}
	}

	err = errorf(ErrRange, "offset to %s (%X) is too great for any addressing mode", op.Value, target)
	return
}

// encodeFormat4 places a 20-bit value. Addresses are always absolute and
// always relocatable.
func encodeFormat4(ln *sourceLine, opcode byte, loc int, symbols SymbolTable) (code string, mod *ModRecord, err error) {
	if ln.Mnemonic == "RSUB" {
		code = fmt.Sprintf("%02X%06X", opcode|niBits[simple], eBit4)
		return
	}

	op := ln.Target
	flags := eBit4
	if op.Indexed {
		flags |= xBit4
	}

	if immediateLiteral(op, symbols) {
		var n int64
		if n, err = parseNumber(op.Value); err != nil {
			return
		}
		if n < -(1<<19) || n > 1<<19-1 {
			err = errorf(ErrRange, "immediate value must be on interval [-524288, 524287]")
			return
		}
		code = fmt.Sprintf("%02X%06X", opcode|niBits[immediate], flags|int(n)&0xFFFFF)
		return
	}

	target, ok := symbols[op.Value]
	if !ok {
		err = errorf(ErrSymbol, "symbol %s does not appear as a label", op.Value)
		return
	}

	if target < 0 || target > 1<<20-1 {
		err = errorf(ErrRange, "invalid extended address %X, must be in range [0, FFFFF]", target)
		return
	}

	code = fmt.Sprintf("%02X%06X", opcode|niBits[op.Mode], flags|int(target))
	mod = &ModRecord{Address: loc + 1, Width: 5}
	return
}
