package sicasm

import (
	"fmt"
	"io"

	"github.com/golang/glog"
)

// maxTextCode is the most hex digits one text record can carry (30 bytes).
const maxTextCode = 60

// Header is the H record.
type Header struct {
	Name   string
	Start  int
	Length int
}

func (h Header) String() string {
	return fmt.Sprintf("H%-6s%06X%06X", h.Name, h.Start, h.Length)
}

// TextRecord is a T record holding machine code in hex digits.
type TextRecord struct {
	Start int
	Code  string
}

// Len is the number of bytes in the record.
func (t TextRecord) Len() int { return len(t.Code) / 2 }

func (t TextRecord) String() string {
	return fmt.Sprintf("T%06X%02X%s", t.Start, t.Len(), t.Code)
}

// ModRecord is an M record: Width hex digits at Address hold an absolute
// address a loader has to relocate.
type ModRecord struct {
	Address int
	Width   int
}

func (m ModRecord) String() string {
	return fmt.Sprintf("M%06X%02X", m.Address, m.Width)
}

// EndRecord is the E record naming the entry point.
type EndRecord struct {
	Entry int
}

func (e EndRecord) String() string {
	return fmt.Sprintf("E%06X", e.Entry)
}

// Object is an assembled program in record form.
type Object struct {
	Header Header
	Text   []TextRecord
	Mods   []ModRecord
	End    EndRecord
}

// Records returns every record in output order: header, text,
// modification, end.
func (o *Object) Records() []string {
	records := make([]string, 0, len(o.Text)+len(o.Mods)+2)
	records = append(records, o.Header.String())
	for _, t := range o.Text {
		records = append(records, t.String())
	}
	for _, m := range o.Mods {
		records = append(records, m.String())
	}
	return append(records, o.End.String())
}

// WriteTo writes the records one per line.
func (o *Object) WriteTo(w io.Writer) (written int64, err error) {
	for _, rec := range o.Records() {
		var n int
		n, err = fmt.Fprintln(w, rec)
		written += int64(n)
		if err != nil {
			return
		}
	}
	return
}

// textBuilder collects machine code into text records. Its cursor is the
// address of the first buffered byte, which lags behind the location
// counter until a gap (reservation or ORG) forces a flush.
type textBuilder struct {
	cursor  int
	code    string
	records []TextRecord
}

func (tb *textBuilder) emit(code string) {
	glog.V(2).Infof("T %06X %s", tb.cursor, code)
	tb.records = append(tb.records, TextRecord{tb.cursor, code})
	tb.cursor += len(code) / 2
}

func (tb *textBuilder) flush() {
	if tb.code == "" {
		return
	}
	tb.emit(tb.code)
	tb.code = ""
}

// add appends code, emitting full records whenever the buffer reaches the
// record limit.
func (tb *textBuilder) add(code string) {
	tb.code += code
	for len(tb.code) >= maxTextCode {
		tb.emit(tb.code[:maxTextCode])
		tb.code = tb.code[maxTextCode:]
	}
}

// skip leaves n bytes of reserved space.
func (tb *textBuilder) skip(n int) {
	tb.flush()
	tb.cursor += n
}

// jump moves the cursor to a new origin.
func (tb *textBuilder) jump(addr int) {
	tb.flush()
	tb.cursor = addr
}
