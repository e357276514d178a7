package diag

import "testing"

func TestFormatGoldenDiagnostics(t *testing.T) {
	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     WarnUnreachableBlock,
			Message:  "block dead is unreachable",
			Primary:  AtBlock("main", "dead"),
		},
		{
			Severity: SevError,
			Code:     StrPhiArity,
			Message:  "first line\nsecond",
			Primary:  AtInstr("add", "entry", 0),
			Notes: []Note{
				{Pos: AtBlock("add", "loop"), Msg: "predecessor here"},
			},
		},
		{
			Severity: SevError,
			Code:     RefUnknownTableOwner,
			Message:  "no such structure",
			Primary:  AtObject("vtable Shape"),
		},
	}

	expected := "error STR2001 add/entry#0 first line second\n" +
		"note STR2001 add/loop predecessor here\n" +
		"warning WRN3001 main/dead block dead is unreachable\n" +
		"error REF1005 vtable:Shape no such structure"

	if got := FormatGoldenDiagnostics(diags, true); got != expected {
		t.Fatalf("unexpected golden diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatGoldenDiagnostics(nil, true); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos  Position
		want string
	}{
		{AtModule(), "module"},
		{AtObject("structure S"), "structure S"},
		{AtFunction("add"), "function add"},
		{AtBlock("add", "entry"), "function add, block entry"},
		{AtInstr("add", "entry", 1), "function add, block entry, instr 1"},
	}
	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatDiagnostic(t *testing.T) {
	d := NewError(RefUnknownBlock, AtInstr("f", "entry", 2), "goto target nowhere is not a block").
		WithNote(AtFunction("f"), "blocks: entry")
	want := "error[REF1001] function f, block entry, instr 2: goto target nowhere is not a block\n" +
		"  note: function f: blocks: entry"
	if got := FormatDiagnostic(d); got != want {
		t.Errorf("FormatDiagnostic =\n%s\nwant\n%s", got, want)
	}
}
