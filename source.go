package sicasm

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"

	"github.com/japanoise/numparse"
)

const commentMarker = '.'

// currentLocation is the EQU operand that names the location counter.
const currentLocation = "*"

// CleanLines reads src and collapses every run of whitespace to a single
// space, trimming each line. Blank lines are kept so that line numbers in
// diagnostics match the file.
func CleanLines(src io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		lines = append(lines, strings.Join(strings.Fields(scanner.Text()), " "))
	}
	err = scanner.Err()
	return
}

type lineKind uint

const (
	blankLine       lineKind = iota
	commentLine              // . comment
	labelLine                // LABEL or LABEL . comment
	instructionLine          // [LABEL] [+]MNEMONIC operands
	directiveLine            // [LABEL] DIRECTIVE operands
)

type addressing uint

const (
	simple    addressing = iota // LABEL or LABEL,X
	immediate                   // #VALUE
	indirect                    // @LABEL
)

func (a addressing) String() string {
	switch a {
	case immediate:
		return "immediate"
	case indirect:
		return "indirect"
	default:
		return "simple"
	}
}

// operand describes the single operand of a format 3 or 4 instruction.
type operand struct {
	Mode    addressing
	Indexed bool
	Value   string
}

// sourceLine is one source line, classified once and carrying its
// operands in typed form.
type sourceLine struct {
	Number int
	Text   string
	Fields []string
	Kind   lineKind

	Label    string
	Mnemonic string
	Extended bool
	Operand  string
	Comment  string

	Args    []string   // format 2 registers or counts
	Target  operand    // format 3 and 4
	Data    []byte     // BYTE, WORD
	Reserve int        // RESB, RESW in bytes
	Expr    expression // EQU, ORG, BASE
	Here    bool       // EQU *
}

func (ln *sourceLine) format() int {
	if ln.Kind != instructionLine {
		return 0
	}
	if ln.Extended {
		return format4
	}
	return formatOf(ln.Mnemonic)
}

// size is the number of bytes the line occupies in the program.
func (ln *sourceLine) size() int {
	switch ln.Kind {
	case instructionLine:
		return ln.format()
	case directiveLine:
		switch ln.Mnemonic {
		case dirByte, dirWord:
			return len(ln.Data)
		case dirResb, dirResw:
			return ln.Reserve
		}
	}
	return 0
}

// parseLine classifies a cleaned line. Errors are not yet tied to the
// line number.
func parseLine(number int, text string) (ln sourceLine, err error) {
	ln.Number = number
	ln.Text = text

	if text == "" {
		ln.Kind = blankLine
		return
	}

	if text[0] == commentMarker {
		ln.Kind = commentLine
		ln.Comment = text
		return
	}

	ln.Fields = strings.Split(text, " ")
	words := ln.Fields

	if !isInstruction(words[0]) && !isDirective(words[0]) {
		ln.Label = words[0]
		if !isSymbolName(ln.Label) {
			err = errorf(ErrParse, "invalid label: %s", ln.Label)
			return
		}

		words = words[1:]
		if len(words) == 0 || words[0][0] == commentMarker {
			ln.Kind = labelLine
			ln.Comment = strings.Join(words, " ")
			return
		}
	}

	mnemonic := words[0]
	rest := words[1:]

	switch {
	case isInstruction(mnemonic):
		ln.Kind = instructionLine
		if mnemonic[0] == '+' {
			ln.Extended = true
			mnemonic = mnemonic[1:]
		}
	case isDirective(mnemonic):
		ln.Kind = directiveLine
	default:
		err = errorf(ErrParse, "unknown mnemonic: %s", mnemonic)
		return
	}
	ln.Mnemonic = mnemonic

	if ln.Kind == directiveLine {
		err = ln.parseDirective(rest)
		return
	}

	ln.Operand, ln.Comment = splitOperand(rest)
	err = ln.parseInstruction()
	return
}

// splitOperand returns the operand field and any trailing comment. An
// operand written as `BUFFER, X` is rejoined to `BUFFER,X`.
func splitOperand(words []string) (field, comment string) {
	if len(words) == 0 || words[0][0] == commentMarker {
		return "", strings.Join(words, " ")
	}

	field = words[0]
	i := 1
	for ; strings.HasSuffix(field, ",") && i < len(words); i++ {
		field += words[i]
	}

	comment = strings.Join(words[i:], " ")
	return
}

// splitExpression returns the words up to the first comment.
func splitExpression(words []string) (field, comment string) {
	i := 0
	for ; i < len(words); i++ {
		if words[i][0] == commentMarker {
			break
		}
	}
	return strings.Join(words[:i], " "), strings.Join(words[i:], " ")
}

func (ln *sourceLine) parseInstruction() (err error) {
	f := formatOf(ln.Mnemonic)

	if ln.Extended && f != format3 {
		return errorf(ErrParse, "%s can't use extended format", ln.Mnemonic)
	}

	switch f {
	case format1:
		return

	case format2:
		if ln.Operand == "" {
			return errorf(ErrParse, "%s needs an operand", ln.Mnemonic)
		}
		for _, arg := range strings.Split(ln.Operand, ",") {
			ln.Args = append(ln.Args, strings.TrimSpace(arg))
		}
		return
	}

	if ln.Mnemonic == "RSUB" {
		return
	}

	ln.Target, err = parseOperand(ln.Operand)
	return
}

func (ln *sourceLine) parseDirective(words []string) (err error) {
	switch ln.Mnemonic {
	case dirEqu, dirOrg, dirBase:
		ln.Operand, ln.Comment = splitExpression(words)
		if ln.Operand == "" {
			return errorf(ErrDirective, "%s needs an operand", ln.Mnemonic)
		}
		if ln.Mnemonic == dirEqu && ln.Operand == currentLocation {
			ln.Here = true
			return
		}
		ln.Expr, err = parseExpression(ln.Operand, true)
		return

	case dirByte, dirWord:
		joined := strings.Join(words, " ")
		if strings.HasPrefix(joined, "C'") || strings.HasPrefix(joined, "X'") {
			end := strings.IndexByte(joined[2:], '\'')
			if end < 0 {
				return errorf(ErrParse, "unterminated literal: %s", joined)
			}
			ln.Operand = joined[:end+3]
			ln.Comment = strings.TrimSpace(joined[end+3:])
		} else {
			ln.Operand, ln.Comment = splitOperand(words)
		}

		width := 1
		if ln.Mnemonic == dirWord {
			width = 3
		}
		ln.Data, err = parseData(ln.Operand, width)
		return

	case dirResb, dirResw:
		ln.Operand, ln.Comment = splitOperand(words)

		var count int64
		if count, err = parseNumber(ln.Operand); err != nil {
			return
		}
		if count < 1 {
			return errorf(ErrDirective, "reservations need to be greater than 0")
		}

		ln.Reserve = int(count)
		if ln.Mnemonic == dirResw {
			ln.Reserve *= 3
		}
		return

	default:
		ln.Operand, ln.Comment = splitOperand(words)
		return
	}
}

// parseOperand reads `#VALUE`, `@LABEL`, `LABEL` or `LABEL,X`.
func parseOperand(text string) (op operand, err error) {
	if text == "" {
		err = errorf(ErrParse, "missing operand")
		return
	}

	switch text[0] {
	case '#':
		op.Mode = immediate
		text = text[1:]
	case '@':
		op.Mode = indirect
		text = text[1:]
	}

	if i := strings.IndexByte(text, ','); i >= 0 {
		if text[i+1:] != "X" {
			err = errorf(ErrParse, "expected ,X; got %s", text[i:])
			return
		}
		if op.Mode != simple {
			err = errorf(ErrParse, "indexed addressing not allowed with %v operand", op.Mode)
			return
		}
		op.Indexed = true
		text = text[:i]
	}

	if text == "" {
		err = errorf(ErrParse, "missing operand")
		return
	}

	op.Value = text
	return
}

// parseNumber reads a decimal, 0x hex, 0o octal or 0b binary literal with
// an optional leading minus sign.
func parseNumber(text string) (int64, error) {
	digits := text
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	if len(digits) > 1 && digits[0] == '0' && strings.ContainsRune("xXoObB", rune(digits[1])) {
		digits = "0" + strings.ToLower(digits[1:2]) + digits[2:]
	} else {
		if !isDecimal(digits) {
			return 0, errorf(ErrParse, "failed parsing number %q", text)
		}
		digits = strings.TrimLeft(digits, "0")
		if digits == "" {
			digits = "0"
		}
	}

	num, err := numparse.UNumParse(digits)
	if err != nil {
		return 0, errorf(ErrParse, "failed parsing number %q", text)
	}

	value := int64(num)
	if value < 0 || value > 1<<31-1 {
		return 0, errorf(ErrParse, "number %s out of range", text)
	}

	if negative {
		value = -value
	}
	return value, nil
}

// parseData returns the bytes of a BYTE or WORD operand. width is the
// size of the type; character and hex literals may be longer and are
// padded with leading zero bytes when shorter.
func parseData(text string, width int) ([]byte, error) {
	if text == "" {
		return nil, errorf(ErrDirective, "missing initial value")
	}

	var data []byte

	switch {
	case strings.HasPrefix(text, "C'"):
		chars := strings.TrimSuffix(text[2:], "'")
		if chars == "" {
			return nil, errorf(ErrParse, "invalid char format. Use: C'<char val>'. Example: C'SIC'")
		}
		data = []byte(chars)

	case strings.HasPrefix(text, "X'"):
		digits := strings.TrimSuffix(text[2:], "'")
		if digits == "" {
			return nil, errorf(ErrParse, "invalid hex format. Use: X'<hex val>'. Example: X'42'")
		}
		if len(digits)%2 != 0 {
			digits = "0" + digits
		}

		var err error
		if data, err = hex.DecodeString(digits); err != nil {
			return nil, errorf(ErrParse, "can't parse hex literal %s", text)
		}

	default:
		num, err := parseNumber(text)
		if err != nil {
			return nil, err
		}

		min, max := int64(-1)<<(8*width-1), int64(1)<<(8*width)-1
		if num < min || num > max {
			return nil, errorf(ErrRange, "value %d does not fit in %d byte(s)", num, width)
		}

		data = make([]byte, width)
		for i := width - 1; i >= 0; i-- {
			data[i] = byte(num)
			num >>= 8
		}
		return data, nil
	}

	if len(data) < width {
		data = append(make([]byte, width-len(data)), data...)
	}
	return data, nil
}

func parseRegister(name string) (byte, error) {
	r, ok := registers[name]
	if !ok {
		return 0, errorf(ErrParse, "not a valid register: %s", name)
	}
	return r, nil
}
