package sicasm

import (
	"sort"

	"github.com/golang/glog"
)

// maxAddress is the highest address a 24-bit object record can hold.
const maxAddress = 1<<24 - 1

// SymbolTable maps label and constant names to their values.
type SymbolTable map[string]int32

// Lookup returns the value of name and whether it is defined.
func (t SymbolTable) Lookup(name string) (int32, bool) {
	v, ok := t[name]
	return v, ok
}

// Names returns the defined names in sorted order.
func (t SymbolTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// counter is the location state threaded through both passes. Each step
// returns an updated copy.
type counter struct {
	Loc  int
	High int // highest location reached
	Base int // -1 when no base register is in use
}

func newCounter(start int) counter {
	return counter{Loc: start, High: start, Base: -1}
}

// advance moves the location counter past ln. ORG sets it instead.
func (c counter) advance(ln *sourceLine, symbols SymbolTable) (counter, error) {
	if ln.Kind == directiveLine && ln.Mnemonic == dirOrg {
		v, err := ln.Expr.eval(symbols.Lookup)
		if err != nil {
			return c, err
		}
		if v < 0 {
			return c, errorf(ErrDirective, "ORG needs non-negative number, got %d", v)
		}
		c.Loc = int(v)
	} else {
		c.Loc += ln.size()
	}

	if c.Loc > maxAddress {
		return c, errorf(ErrRange, "location counter %X exceeds 24-bit memory", c.Loc)
	}
	if c.Loc > c.High {
		c.High = c.Loc
	}
	return c, nil
}

// setBase applies a BASE or NOBASE directive.
func (c counter) setBase(ln *sourceLine, symbols SymbolTable) (counter, error) {
	if ln.Mnemonic == dirNoBase {
		c.Base = -1
		return c, nil
	}

	v, err := ln.Expr.eval(symbols.Lookup)
	if err != nil {
		return c, err
	}
	if v < 0 || v > maxAddress {
		return c, errorf(ErrDirective, "BASE needs number in interval [0, %d]", maxAddress)
	}

	c.Base = int(v)
	return c, nil
}

// resolver is the first pass: it assigns every label its address and
// collects EQU constants, deferring those that depend on names not yet
// known.
type resolver struct {
	symbols SymbolTable
	pending pendingTable
	defined map[string]int // name -> defining line
	counter counter
}

func (r *resolver) define(ln *sourceLine, name string) error {
	if line, dup := r.defined[name]; dup {
		return errorf(ErrSymbol, "duplicate label: %s (first defined on line %d)", name, line)
	}
	r.defined[name] = ln.Number
	return nil
}

func (r *resolver) equ(ln *sourceLine) error {
	if ln.Label == "" {
		return errorf(ErrDirective, "can't use EQU without label")
	}
	if err := r.define(ln, ln.Label); err != nil {
		return err
	}

	if ln.Here {
		r.symbols[ln.Label] = int32(r.counter.Loc)
		return nil
	}

	for _, name := range ln.Expr.Names() {
		if _, ok := r.symbols[name]; !ok {
			r.pending.add(ln.Label, ln.Number, ln.Expr)
			return nil
		}
	}

	v, err := ln.Expr.eval(r.symbols.Lookup)
	if err != nil {
		return err
	}
	r.symbols[ln.Label] = v
	return nil
}

func (r *resolver) step(ln *sourceLine) (err error) {
	switch ln.Kind {
	case blankLine, commentLine:
		return

	case labelLine:
		if err = r.define(ln, ln.Label); err != nil {
			return
		}
		r.symbols[ln.Label] = int32(r.counter.Loc)
		return
	}

	if ln.Kind == directiveLine {
		switch ln.Mnemonic {
		case dirEqu:
			return r.equ(ln)
		case dirStart:
			return errorf(ErrStructure, "START can only appear on the first line")
		case dirBase, dirNoBase:
			return
		}
	}

	if ln.Label != "" {
		if err = r.define(ln, ln.Label); err != nil {
			return
		}
		r.symbols[ln.Label] = int32(r.counter.Loc)
	}

	r.counter, err = r.counter.advance(ln, r.symbols)
	return
}

// resolveSymbols runs the first pass over p and returns the program
// length together with the complete symbol table.
func resolveSymbols(p *program) (length int, symbols SymbolTable, err error) {
	glog.V(1).Infof("Beginning pass %d", 1)

	r := resolver{
		symbols: make(SymbolTable),
		defined: make(map[string]int),
		counter: newCounter(p.Start),
	}
	r.pending.byName = make(map[string]*pendingConstant)

	for i := range p.Lines {
		ln := &p.Lines[i]
		if err = atLine(ln.Number, r.step(ln)); err != nil {
			return
		}
	}

	glog.V(1).Infof("Resolving %d pending constants", len(r.pending.entries))
	if err = r.pending.resolve(r.symbols); err != nil {
		return
	}

	length = r.counter.High - p.Start
	symbols = r.symbols
	glog.V(1).Infof("Program %s is %d bytes, %d symbols", p.Name, length, len(symbols))
	return
}
