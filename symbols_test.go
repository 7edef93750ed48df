package sicasm

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func resolve(src string) (int, SymbolTable, error) {
	p, err := parseProgram(strings.Split(src, "\n"))
	if err != nil {
		return 0, nil, err
	}
	return resolveSymbols(p)
}

func TestSymbolAddresses(t *testing.T) {
	length, symbols, err := resolve(`
COPY   START  1000
. locations follow instruction sizes
FIRST  STL    RETADR
CLOOP  +JSUB  RDREC
       LDA    LENGTH
       COMP   #0
       CLEAR  X
       FIX
RETADR RESW   1
LENGTH RESW   1
BUFFER RESB   4096
EOF    BYTE   C'EOF'
RDREC  RSUB
       END    FIRST
`)
	if err != nil {
		t.Fatal(err)
	}

	expected := SymbolTable{
		"FIRST":  0x1000,
		"CLOOP":  0x1003,
		"RETADR": 0x1010,
		"LENGTH": 0x1013,
		"BUFFER": 0x1016,
		"EOF":    0x2016,
		"RDREC":  0x2019,
	}
	if !reflect.DeepEqual(expected, symbols) {
		t.Errorf("Expected %v; got %v", expected, symbols)
	}

	if length != 0x101C {
		t.Errorf("Expected length %X; got %X", 0x101C, length)
	}
}

func TestLabelOnlyLine(t *testing.T) {
	_, symbols, err := resolve(`
P START 0
  LDA ZERO
LOOP
ZERO WORD 0
  END
`)
	if err != nil {
		t.Fatal(err)
	}

	if symbols["LOOP"] != 3 || symbols["ZERO"] != 3 {
		t.Errorf("Expected LOOP and ZERO at 3; got %v", symbols)
	}
}

func TestOrg(t *testing.T) {
	length, symbols, err := resolve(`
P START 0
A BYTE X'AA'
  ORG 16
B BYTE X'BB'
  ORG A+4
C WORD 1
  END
`)
	if err != nil {
		t.Fatal(err)
	}

	if symbols["A"] != 0 || symbols["B"] != 16 || symbols["C"] != 4 {
		t.Errorf("Unexpected symbols %v", symbols)
	}

	// The length covers the highest location reached.
	if length != 17 {
		t.Errorf("Expected length 17; got %d", length)
	}
}

func TestNegativeOrg(t *testing.T) {
	_, _, err := resolve(`
P START 0
N EQU 0-1
  ORG N
  END
`)
	if !errors.Is(err, ErrDirective) {
		t.Errorf("Expected directive error; got %v", err)
	}
}

func TestDuplicateLabel(t *testing.T) {
	_, _, err := resolve(`P START 0
FIRST LDA FIRST
FIRST RSUB
  END`)
	if !errors.Is(err, ErrSymbol) {
		t.Fatalf("Expected symbol error; got %v", err)
	}

	var le *LineError
	if !errors.As(err, &le) || le.Line != 3 {
		t.Errorf("Expected error on line 3; got %v", err)
	}
}

func TestDuplicateConstant(t *testing.T) {
	_, _, err := resolve(`P START 0
A RSUB
A EQU 5
  END`)
	if !errors.Is(err, ErrSymbol) {
		t.Errorf("Expected symbol error; got %v", err)
	}
}

func TestEquWithoutLabel(t *testing.T) {
	_, _, err := resolve(`P START 0
  EQU 5
  END`)
	if !errors.Is(err, ErrDirective) {
		t.Errorf("Expected directive error; got %v", err)
	}
}

func TestStartErrors(t *testing.T) {
	cases := []string{
		"START 1000\n END",
		"TOOLONG START 1000\n END",
		"P START ZZ\n END",
		"P LDA X\n END",
		"P START 0\n RSUB",
		". only a comment",
		"P START 0\n START 100\n END",
	}

	for _, src := range cases {
		if _, _, err := resolve(src); !errors.Is(err, ErrStructure) && !errors.Is(err, ErrParse) {
			t.Errorf("%q: Expected structure error; got %v", src, err)
		}
	}

	_, _, err := resolve("TOOLONG START 1000\n END")
	if !errors.Is(err, ErrStructure) {
		t.Errorf("Expected structure error for long name; got %v", err)
	}
}

func TestLinesAfterEnd(t *testing.T) {
	_, symbols, err := resolve(`P START 0
A RSUB
  END A
B this line is never read`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := symbols["B"]; ok {
		t.Errorf("Expected lines after END to be ignored")
	}
}

func TestEquOverflow(t *testing.T) {
	_, _, err := resolve(`P START 0
BIG EQU 2147483647*2
  END`)
	if !errors.Is(err, ErrParse) {
		t.Errorf("Expected parse error; got %v", err)
	}
}
