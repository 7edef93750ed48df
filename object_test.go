package sicasm

import (
	"bytes"
	"reflect"
	"testing"
)

func TestRecordStrings(t *testing.T) {
	cases := []struct {
		record   interface{ String() string }
		expected string
	}{
		{Header{"COPY", 0x1000, 0x107A}, "HCOPY  00100000107A"},
		{Header{"ABCDEF", 0, 3}, "HABCDEF000000000003"},
		{TextRecord{0x1000, "141033"}, "T00100003141033"},
		{ModRecord{0x1007, 5}, "M00100705"},
		{EndRecord{0x1000}, "E001000"},
	}

	for _, c := range cases {
		if actual := c.record.String(); actual != c.expected {
			t.Errorf("Expected %s; got %s", c.expected, actual)
		}
	}
}

func TestTextBuilder(t *testing.T) {
	tb := textBuilder{cursor: 0x1000}
	tb.add("141033")
	tb.add("482039")
	tb.skip(3)
	tb.add("C4")
	tb.jump(0x2000)
	tb.add("4F0000")
	tb.flush()

	expected := []TextRecord{
		{0x1000, "141033482039"},
		{0x1009, "C4"},
		{0x2000, "4F0000"},
	}
	if !reflect.DeepEqual(expected, tb.records) {
		t.Errorf("Expected %v; got %v", expected, tb.records)
	}
}

func TestTextBuilderEmptyFlush(t *testing.T) {
	tb := textBuilder{cursor: 0x10}
	tb.skip(5)
	tb.jump(0x40)
	tb.flush()

	if len(tb.records) != 0 {
		t.Errorf("Expected no records; got %v", tb.records)
	}
}

func TestTextRecordLimit(t *testing.T) {
	prog, err := AssembleLines([]string{
		"P START 1000",
		"MSG BYTE C'ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789'",
		" END",
	})
	if err != nil {
		t.Fatal(err)
	}

	text := prog.Object.Text
	if len(text) != 2 {
		t.Fatalf("Expected 2 text records; got %v", text)
	}
	if text[0].Start != 0x1000 || text[0].Len() != 30 {
		t.Errorf("Unexpected first record %s", text[0])
	}
	if text[1].Start != 0x101E || text[1].Len() != 6 {
		t.Errorf("Unexpected second record %s", text[1])
	}
	if text[1].String() != "T00101E06343536373839" {
		t.Errorf("Unexpected second record %s", text[1])
	}
}

func TestReservationGap(t *testing.T) {
	prog, err := AssembleLines([]string{
		"P START 0",
		"A BYTE X'01'",
		" RESW 3",
		"B BYTE X'02'",
		" END",
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		"HP     00000000000B",
		"T0000000101",
		"T00000A0102",
		"E000000",
	}
	if actual := prog.Object.Records(); !reflect.DeepEqual(expected, actual) {
		t.Errorf("Expected %v; got %v", expected, actual)
	}
}

func TestOrgGap(t *testing.T) {
	prog, err := AssembleLines([]string{
		"P START 0",
		"A BYTE X'AA'",
		" ORG 16",
		"B BYTE X'BB'",
		" END",
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := []TextRecord{{0, "AA"}, {0x10, "BB"}}
	if !reflect.DeepEqual(expected, prog.Object.Text) {
		t.Errorf("Expected %v; got %v", expected, prog.Object.Text)
	}
}

func TestObjectWriteTo(t *testing.T) {
	obj := Object{
		Header: Header{"P", 0, 3},
		Text:   []TextRecord{{0, "4F0000"}},
		End:    EndRecord{0},
	}

	var buf bytes.Buffer
	n, err := obj.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}

	expected := "HP     000000000003\nT000000034F0000\nE000000\n"
	if buf.String() != expected {
		t.Errorf("Expected %q; got %q", expected, buf.String())
	}
	if n != int64(len(expected)) {
		t.Errorf("Expected %d bytes written; got %d", len(expected), n)
	}
}
