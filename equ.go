package sicasm

import (
	"strings"

	"github.com/golang/glog"
)

// pendingConstant is an EQU whose expression referenced names that were
// not yet defined when it was read.
type pendingConstant struct {
	Name  string
	Line  int
	Expr  expression
	Deps  int // distinct names still unresolved
	Value int32
	Final bool
}

// pendingTable keeps deferred constants in declaration order.
type pendingTable struct {
	entries []*pendingConstant
	byName  map[string]*pendingConstant
}

func (t *pendingTable) add(name string, line int, e expression) {
	pc := &pendingConstant{Name: name, Line: line, Expr: e}
	t.entries = append(t.entries, pc)
	t.byName[name] = pc
}

// resolve moves every pending constant into symbols. Names already in
// symbols count as substituted; the rest become edges of a dependency
// graph. Constants are then finalized from a FIFO ready queue seeded in
// declaration order, so whenever several constants become ready at once
// the one declared (or unblocked) first is resolved first.
func (t *pendingTable) resolve(symbols SymbolTable) error {
	dependents := make(map[string][]*pendingConstant)
	var ready []*pendingConstant

	for _, pc := range t.entries {
		pc.Deps = 0
		for _, name := range pc.Expr.Names() {
			if _, ok := symbols[name]; ok {
				continue
			}
			if _, ok := t.byName[name]; !ok {
				return atLine(pc.Line, errorf(ErrSymbol, "undefined symbol %s in EQU %s", name, pc.Name))
			}
			dependents[name] = append(dependents[name], pc)
			pc.Deps++
		}

		if pc.Deps == 0 {
			ready = append(ready, pc)
		}
	}

	remaining := len(t.entries)
	for round := 0; remaining > 0; round++ {
		if len(ready) == 0 || round >= len(t.entries) {
			return t.cycle()
		}

		pc := ready[0]
		ready = ready[1:]

		v, err := pc.Expr.eval(symbols.Lookup)
		if err != nil {
			return atLine(pc.Line, err)
		}

		pc.Value, pc.Final = v, true
		symbols[pc.Name] = v
		remaining--
		glog.V(2).Infof("EQU %s = %d", pc.Name, v)

		for _, dep := range dependents[pc.Name] {
			dep.Deps--
			if dep.Deps == 0 {
				ready = append(ready, dep)
			}
		}
	}

	t.entries = t.entries[:0]
	return nil
}

func (t *pendingTable) cycle() error {
	var names []string
	line := 0

	for _, pc := range t.entries {
		if pc.Final {
			continue
		}
		if line == 0 {
			line = pc.Line
		}
		names = append(names, pc.Name)
	}

	return atLine(line, errorf(ErrCycle, "endless cycle in resolving EQUs: %s", strings.Join(names, ", ")))
}
