package sicasm

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers can classify failures with errors.Is.
var (
	ErrParse     = errors.New("parse error")
	ErrSymbol    = errors.New("symbol error")
	ErrDirective = errors.New("directive error")
	ErrRange     = errors.New("addressing range error")
	ErrStructure = errors.New("structure error")
	ErrCycle     = errors.New("cyclic dependency")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func errorf(kind error, format string, a ...interface{}) error {
	return &kindError{kind, fmt.Sprintf(format, a...)}
}

// LineError reports the source line an error originated on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("Line %d - %s", e.Line, e.Err.Error())
}

func (e *LineError) Unwrap() error { return e.Err }

// atLine attaches a line number to err unless it already carries one.
func atLine(line int, err error) error {
	if err == nil {
		return nil
	}

	var le *LineError
	if errors.As(err, &le) {
		return err
	}

	return &LineError{line, err}
}
