package sicasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
)

// maxNameLen is the width of the program name field of the header record.
const maxNameLen = 6

// program is a parsed source file: the START line, the lines between it
// and END, and END itself.
type program struct {
	Name  string
	Start int

	Leading []sourceLine // blank and comment lines before START
	First   sourceLine   // START
	Lines   []sourceLine
	End     sourceLine
}

// Program is an assembled program.
type Program struct {
	Name    string
	Start   int
	Length  int
	Entry   int
	Symbols SymbolTable
	Object  Object
	Listing []ListingLine
}

// Assemble reads a SIC/XE source program from src and assembles it.
func Assemble(src io.Reader) (*Program, error) {
	lines, err := CleanLines(src)
	if err != nil {
		return nil, err
	}
	return AssembleLines(lines)
}

// AssembleLines assembles an already split source program. The first
// error aborts assembly; no partial program is returned.
func AssembleLines(lines []string) (*Program, error) {
	p, err := parseProgram(lines)
	if err != nil {
		return nil, err
	}

	length, symbols, err := resolveSymbols(p)
	if err != nil {
		return nil, err
	}

	return generate(p, symbols, length)
}

// WriteObject writes the object records of p to w.
func (p *Program) WriteObject(w io.Writer) error {
	_, err := p.Object.WriteTo(w)
	return err
}

// WriteListing writes the listing of p to w.
func (p *Program) WriteListing(w io.Writer) error {
	return WriteListing(w, p.Listing)
}

func parseProgram(lines []string) (p *program, err error) {
	p = new(program)

	i := 0
	for ; i < len(lines); i++ {
		text := strings.Join(strings.Fields(lines[i]), " ")
		if text != "" && text[0] != commentMarker {
			break
		}
		ln, _ := parseLine(i+1, text)
		p.Leading = append(p.Leading, ln)
	}

	if i == len(lines) {
		return nil, errorf(ErrStructure, "missing START line")
	}

	if p.First, err = parseLine(i+1, strings.Join(strings.Fields(lines[i]), " ")); err != nil {
		return nil, atLine(i+1, err)
	}
	if err = p.parseStart(); err != nil {
		return nil, atLine(i+1, err)
	}

	for i++; i < len(lines); i++ {
		var ln sourceLine
		if ln, err = parseLine(i+1, strings.Join(strings.Fields(lines[i]), " ")); err != nil {
			return nil, atLine(i+1, err)
		}

		if ln.Kind == directiveLine && ln.Mnemonic == dirEnd {
			p.End = ln
			return p, nil
		}
		p.Lines = append(p.Lines, ln)
	}

	return nil, errorf(ErrStructure, "missing END directive")
}

func (p *program) parseStart() error {
	ln := &p.First
	if ln.Kind != directiveLine || ln.Mnemonic != dirStart || ln.Label == "" {
		return errorf(ErrStructure, "program needs to start with <name of program> START <address>")
	}

	if len(ln.Label) > maxNameLen {
		return errorf(ErrStructure, "name must be at most %d characters wide, %s is %d", maxNameLen, ln.Label, len(ln.Label))
	}
	p.Name = ln.Label

	addr := ln.Operand
	if addr == "" {
		return errorf(ErrStructure, "START needs an address")
	}
	if !strings.HasPrefix(strings.ToLower(addr), "0x") {
		addr = "0x" + addr
	}

	start, err := parseNumber(addr)
	if err != nil {
		return err
	}
	if start < 0 || start > maxAddress {
		return errorf(ErrStructure, "start address %s out of range", ln.Operand)
	}

	p.Start = int(start)
	return nil
}

// generate is the second pass. It walks the same location-counter
// progression as the first pass, encodes every line and assembles the
// object records.
func generate(p *program, symbols SymbolTable, length int) (prog *Program, err error) {
	glog.V(1).Infof("Beginning pass %d", 2)

	prog = &Program{
		Name:    p.Name,
		Start:   p.Start,
		Length:  length,
		Entry:   p.Start,
		Symbols: symbols,
	}

	for i := range p.Leading {
		prog.Listing = append(prog.Listing, listingOf(&p.Leading[i], 0, ""))
	}
	prog.Listing = append(prog.Listing, listingOf(&p.First, p.Start, ""))

	c := newCounter(p.Start)
	text := textBuilder{cursor: p.Start}
	var mods []ModRecord

	for i := range p.Lines {
		ln := &p.Lines[i]
		loc := c.Loc

		var code string
		if code, c, err = step(ln, c, &text, &mods, symbols); err != nil {
			return nil, atLine(ln.Number, err)
		}

		if ln.Kind == instructionLine || ln.Kind == directiveLine {
			glog.V(2).Infof("%05X %-8s %s", loc, code, ln.Text)
		}
		prog.Listing = append(prog.Listing, listingOf(ln, loc, code))
	}

	if name := p.End.Operand; name != "" {
		if entry, ok := symbols[name]; ok {
			prog.Entry = int(entry)
		} else {
			glog.Warningf("Line %d - END names undefined symbol %s, entry is the start address", p.End.Number, name)
		}
	}
	prog.Listing = append(prog.Listing, listingOf(&p.End, c.Loc, ""))

	text.flush()
	prog.Object = Object{
		Header: Header{Name: p.Name, Start: p.Start, Length: length},
		Text:   text.records,
		Mods:   mods,
		End:    EndRecord{Entry: prog.Entry},
	}
	return
}

// step assembles one line at c.Loc and returns its machine code along
// with the updated counter.
func step(ln *sourceLine, c counter, text *textBuilder, mods *[]ModRecord, symbols SymbolTable) (code string, next counter, err error) {
	next = c

	switch ln.Kind {
	case blankLine, commentLine, labelLine:
		return

	case instructionLine:
		var mod *ModRecord
		if code, mod, err = encodeInstruction(ln, c.Loc, c.Base, symbols); err != nil {
			return
		}
		if mod != nil {
			*mods = append(*mods, *mod)
		}
		text.add(code)

	case directiveLine:
		switch ln.Mnemonic {
		case dirEqu:
			return
		case dirBase, dirNoBase:
			next, err = c.setBase(ln, symbols)
			return
		case dirByte, dirWord:
			code = fmt.Sprintf("%X", ln.Data)
			text.add(code)
		case dirResb, dirResw:
			text.skip(ln.Reserve)
		}
	}

	if next, err = c.advance(ln, symbols); err != nil {
		return
	}

	if ln.Kind == directiveLine && ln.Mnemonic == dirOrg {
		text.jump(next.Loc)
	}
	return
}
