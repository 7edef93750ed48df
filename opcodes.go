package sicasm

// Instruction formats. The value of a format is also the size in bytes of
// an instruction encoded with it.
const (
	format1 = 1
	format2 = 2
	format3 = 3
	format4 = 4
)

var opcodes = map[string]byte{
	"ADD":    0x18,
	"ADDF":   0x58,
	"ADDR":   0x90,
	"AND":    0x40,
	"CLEAR":  0xB4,
	"COMP":   0x28,
	"COMPF":  0x88,
	"COMPR":  0xA0,
	"DIV":    0x24,
	"DIVF":   0x64,
	"DIVR":   0x9C,
	"FIX":    0xC4,
	"FLOAT":  0xC0,
	"HIO":    0xF4,
	"J":      0x3C,
	"JEQ":    0x30,
	"JGT":    0x34,
	"JLT":    0x38,
	"JSUB":   0x48,
	"LDA":    0x00,
	"LDB":    0x68,
	"LDCH":   0x50,
	"LDF":    0x70,
	"LDL":    0x08,
	"LDS":    0x6C,
	"LDT":    0x74,
	"LDX":    0x04,
	"LPS":    0xD0,
	"MUL":    0x20,
	"MULF":   0x60,
	"MULR":   0x98,
	"NORM":   0xC8,
	"OR":     0x44,
	"RD":     0xD8,
	"RMO":    0xAC,
	"RSUB":   0x4C,
	"SHIFTL": 0xA4,
	"SHIFTR": 0xA8,
	"SIO":    0xF0,
	"SSK":    0xEC,
	"STA":    0x0C,
	"STB":    0x78,
	"STCH":   0x54,
	"STF":    0x80,
	"STI":    0xD4,
	"STL":    0x14,
	"STS":    0x7C,
	"STSW":   0xE8,
	"STT":    0x84,
	"STX":    0x10,
	"SUB":    0x1C,
	"SUBF":   0x5C,
	"SUBR":   0x94,
	"SVC":    0xB0,
	"TD":     0xE0,
	"TIO":    0xF8,
	"TIX":    0x2C,
	"TIXR":   0xB8,
	"WD":     0xDC,
}

var formats = map[string]int{
	"FIX":   format1,
	"FLOAT": format1,
	"HIO":   format1,
	"NORM":  format1,
	"SIO":   format1,
	"TIO":   format1,

	"ADDR":   format2,
	"CLEAR":  format2,
	"COMPR":  format2,
	"DIVR":   format2,
	"MULR":   format2,
	"RMO":    format2,
	"SHIFTL": format2,
	"SHIFTR": format2,
	"SUBR":   format2,
	"TIXR":   format2,
	"SVC":    format2,
}

// Directives.
const (
	dirStart  = "START"
	dirEnd    = "END"
	dirByte   = "BYTE"
	dirWord   = "WORD"
	dirResb   = "RESB"
	dirResw   = "RESW"
	dirBase   = "BASE"
	dirNoBase = "NOBASE"
	dirOrg    = "ORG"
	dirEqu    = "EQU"
)

var directives = map[string]bool{
	dirStart:  true,
	dirEnd:    true,
	dirByte:   true,
	dirWord:   true,
	dirResb:   true,
	dirResw:   true,
	dirBase:   true,
	dirNoBase: true,
	dirOrg:    true,
	dirEqu:    true,
}

// AXLBSTF
var registers = map[string]byte{
	"A": 0,
	"X": 1,
	"L": 2,
	"B": 3,
	"S": 4,
	"T": 5,
	"F": 6,
}

func isInstruction(word string) bool {
	if len(word) > 1 && word[0] == '+' {
		word = word[1:]
	}
	_, ok := opcodes[word]
	return ok
}

func isDirective(word string) bool {
	return directives[word]
}

// formatOf returns the format of a mnemonic without its extension marker.
func formatOf(mnemonic string) int {
	if f, ok := formats[mnemonic]; ok {
		return f
	}
	return format3
}
