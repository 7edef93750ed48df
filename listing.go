package sicasm

import (
	"fmt"
	"io"
	"strings"
)

// ListingLine is one line of the assembly listing.
type ListingLine struct {
	Loc    int
	Code   string
	Fields []string // source tokens; unlabeled lines start with " "

	// Verbatim lines (comments, blank lines, labels standing alone) are
	// echoed without a location or code column.
	Verbatim bool
	Text     string
}

// elide shortens long machine code to its first and last byte.
func elide(code string) string {
	if len(code) > 6 {
		return code[:2] + ".." + code[len(code)-2:]
	}
	return code
}

// freeForm reports whether tok starts text that is no longer laid out in
// columns: comments, character and hex literals, operands split after a
// comma, and EQU expressions.
func freeForm(tok string) bool {
	return strings.HasPrefix(tok, ".") ||
		strings.HasPrefix(tok, "C'") ||
		strings.HasPrefix(tok, "X'") ||
		strings.HasSuffix(tok, ",") ||
		tok == dirEqu
}

func (l ListingLine) String() string {
	if l.Verbatim {
		return "                 " + l.Text
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%05X  %6s    ", l.Loc, elide(l.Code))

	columns := true
	for _, tok := range l.Fields {
		if freeForm(tok) {
			columns = false
		}
		if columns {
			fmt.Fprintf(&sb, "%-14s", tok)
		} else {
			sb.WriteString(tok)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func listingOf(ln *sourceLine, loc int, code string) ListingLine {
	switch ln.Kind {
	case blankLine, commentLine, labelLine:
		return ListingLine{Verbatim: true, Text: ln.Text}
	}

	fields := ln.Fields
	if ln.Label == "" {
		fields = append([]string{" "}, fields...)
	}
	return ListingLine{Loc: loc, Code: code, Fields: fields}
}

// WriteListing writes lines to w, one per line.
func WriteListing(w io.Writer, lines []ListingLine) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	return nil
}
