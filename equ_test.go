package sicasm

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestEquChain(t *testing.T) {
	programs := []string{
		`P START 0
A EQU 5
B EQU A+1
C EQU B*2
  END`,
		`P START 0
C EQU B*2
B EQU A+1
A EQU 5
  END`,
		`P START 0
B EQU A+1
C EQU B*2
A EQU 5
  END`,
	}

	for _, src := range programs {
		_, symbols, err := resolve(src)
		if err != nil {
			t.Errorf("%v", err)
			continue
		}

		expected := SymbolTable{"A": 5, "B": 6, "C": 12}
		if !reflect.DeepEqual(expected, symbols) {
			t.Errorf("Expected %v; got %v", expected, symbols)
		}
	}
}

func TestEquForwardLabels(t *testing.T) {
	_, symbols, err := resolve(`
P      START 0
MAXLEN EQU   BUFEND-BUFFER
       LDA   #MAXLEN
BUFFER RESB  10
BUFEND EQU   *
HALF   EQU   MAXLEN/2
       END
`)
	if err != nil {
		t.Fatal(err)
	}

	if symbols["MAXLEN"] != 10 || symbols["BUFEND"] != 13 || symbols["HALF"] != 5 {
		t.Errorf("Unexpected symbols %v", symbols)
	}
}

func TestEquCycle(t *testing.T) {
	_, _, err := resolve(`P START 0
A EQU B+1
B EQU A+1
C EQU 3
  END`)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("Expected cyclic dependency error; got %v", err)
	}

	var le *LineError
	if !errors.As(err, &le) || le.Line != 2 {
		t.Errorf("Expected error on line 2; got %v", err)
	}

	if !strings.HasSuffix(err.Error(), "A, B") {
		t.Errorf("Expected A and B in declaration order; got %v", err)
	}
}

func TestEquSelfReference(t *testing.T) {
	_, _, err := resolve(`P START 0
A EQU A+1
  END`)
	if !errors.Is(err, ErrCycle) {
		t.Errorf("Expected cyclic dependency error; got %v", err)
	}
}

func TestEquUndefined(t *testing.T) {
	_, _, err := resolve(`P START 0
A EQU NOPE+1
  END`)
	if !errors.Is(err, ErrSymbol) {
		t.Errorf("Expected symbol error; got %v", err)
	}
}

func TestEquDeterministic(t *testing.T) {
	src := `P START 0
D EQU C+B
C EQU A*2
B EQU A+1
A EQU 7
X EQU Y
Y EQU X
  END`

	_, _, err1 := resolve(src)
	_, _, err2 := resolve(src)
	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("Expected identical errors; got %v and %v", err1, err2)
	}

	src = strings.Replace(src, "Y EQU X", "Y EQU 1", 1)
	_, s1, err := resolve(src)
	if err != nil {
		t.Fatal(err)
	}
	_, s2, _ := resolve(src)
	if !reflect.DeepEqual(s1, s2) {
		t.Errorf("Expected identical tables; got %v and %v", s1, s2)
	}
	if s1["D"] != 22 || s1["X"] != 1 {
		t.Errorf("Unexpected symbols %v", s1)
	}
}

func TestPendingResolveOrder(t *testing.T) {
	symbols := SymbolTable{"BASE": 100}

	var table pendingTable
	table.byName = make(map[string]*pendingConstant)

	for _, def := range [][2]string{{"C", "B+A"}, {"A", "BASE"}, {"B", "BASE+1"}} {
		e, err := parseExpression(def[1], true)
		if err != nil {
			t.Fatal(err)
		}
		table.add(def[0], 1, e)
	}
	entries := append([]*pendingConstant(nil), table.entries...)

	if err := table.resolve(symbols); err != nil {
		t.Fatal(err)
	}

	for _, pc := range entries {
		if !pc.Final || pc.Deps != 0 {
			t.Errorf("Expected %s final; got %+v", pc.Name, pc)
		}
	}
	if symbols["C"] != 201 {
		t.Errorf("Expected C = 201; got %d", symbols["C"])
	}
}
