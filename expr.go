package sicasm

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// term is one operand of an expression: either a decimal literal or a
// symbol name that is looked up at evaluation time.
type term struct {
	Name  string
	Value int32
}

func (t term) isName() bool { return t.Name != "" }

// expression is a parsed `+ - * /` expression without parentheses.
// len(Ops) is always len(Terms)-1.
type expression struct {
	Text  string
	Terms []term
	Ops   []byte
}

func isOperator(ch byte) bool {
	return ch == '+' || ch == '-' || ch == '*' || ch == '/'
}

func precedence(op byte) int {
	if op == '*' || op == '/' {
		return 2
	}
	return 1
}

func isSymbolName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}

	return true
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}

	return true
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// parseExpression splits text into terms and operators. Whitespace is not
// significant. Symbol names are accepted only when names is true.
func parseExpression(text string, names bool) (e expression, err error) {
	e.Text = strings.Join(strings.Fields(text), "")
	if e.Text == "" {
		err = errorf(ErrParse, "empty expression")
		return
	}

	s := e.Text
	for {
		end := 0
		for end < len(s) && !isOperator(s[end]) {
			end++
		}

		operand := s[:end]
		switch {
		case operand == "":
			err = errorf(ErrParse, "malformed expression %q: missing operand", e.Text)
			return

		case isDecimal(operand):
			var num int64
			num, err = strconv.ParseInt(operand, 10, 32)
			if err != nil {
				err = errorf(ErrParse, "number %s out of range in %q", operand, e.Text)
				return
			}
			e.Terms = append(e.Terms, term{Value: int32(num)})

		case names && isSymbolName(operand):
			e.Terms = append(e.Terms, term{Name: operand})

		default:
			for i := 0; i < len(operand); i++ {
				if !isDigit(operand[i]) {
					err = errorf(ErrParse, "invalid character %q in expression %q", operand[i], e.Text)
					return
				}
			}
		}

		if end == len(s) {
			return
		}

		e.Ops = append(e.Ops, s[end])
		s = s[end+1:]
	}
}

// Names returns the distinct symbol names referenced by e in order of
// first appearance.
func (e expression) Names() []string {
	var names []string
	seen := make(map[string]bool)

	for _, t := range e.Terms {
		if t.isName() && !seen[t.Name] {
			seen[t.Name] = true
			names = append(names, t.Name)
		}
	}

	return names
}

// eval reduces e with an operand stack and an operator stack. An incoming
// operator first reduces every stacked operator of equal or higher
// precedence, which keeps `*` and `/` above `+` and `-` and makes equal
// precedence left-associative.
func (e expression) eval(lookup func(string) (int32, bool)) (int32, error) {
	vals := make([]int32, 0, len(e.Terms))
	ops := make([]byte, 0, len(e.Ops))

	reduce := func() error {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		rhs := vals[len(vals)-1]
		lhs := vals[len(vals)-2]
		vals = vals[:len(vals)-2]

		var res int64
		switch op {
		case '+':
			res = int64(lhs) + int64(rhs)
		case '-':
			res = int64(lhs) - int64(rhs)
		case '*':
			res = int64(lhs) * int64(rhs)
		case '/':
			if rhs == 0 {
				return errorf(ErrParse, "division by zero in %q", e.Text)
			}
			res = int64(lhs) / int64(rhs)
		}

		if res < math.MinInt32 || res > math.MaxInt32 {
			return errorf(ErrParse, "overflow in %q", e.Text)
		}
		vals = append(vals, int32(res))
		return nil
	}

	for i, t := range e.Terms {
		if i > 0 {
			op := e.Ops[i-1]
			for len(ops) > 0 && precedence(ops[len(ops)-1]) >= precedence(op) {
				if err := reduce(); err != nil {
					return 0, err
				}
			}
			ops = append(ops, op)
		}

		v := t.Value
		if t.isName() {
			var ok bool
			if lookup != nil {
				v, ok = lookup(t.Name)
			}
			if !ok {
				return 0, errorf(ErrSymbol, "undefined symbol %s", t.Name)
			}
		}
		vals = append(vals, v)
	}

	for len(ops) > 0 {
		if err := reduce(); err != nil {
			return 0, err
		}
	}

	return vals[0], nil
}

// Evaluate computes an integer expression made of unsigned decimal
// literals and the binary operators + - * /. Multiplication and division
// bind tighter than addition and subtraction, operators of equal
// precedence associate left, and division truncates toward zero.
func Evaluate(expr string) (int32, error) {
	e, err := parseExpression(expr, false)
	if err != nil {
		return 0, err
	}
	return e.eval(nil)
}

// EvaluateSymbols is Evaluate with symbol names allowed as operands; each
// name is resolved through symbols.
func EvaluateSymbols(expr string, symbols SymbolTable) (int32, error) {
	e, err := parseExpression(expr, true)
	if err != nil {
		return 0, err
	}
	return e.eval(symbols.Lookup)
}
