package tagtable

import (
	"bytes"
	"testing"
)

func disassemble(t *testing.T, tbl *Table) string {
	t.Helper()
	var buf bytes.Buffer
	if _, err := tbl.Disassemble(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestTable_Definition(t *testing.T) {
	inner := NewDefinition("inner", Entry{Cmd: CmdIs, Arg: "x"})
	defs := []struct {
		mode Mode
		def  *Definition
	}{
		{Narrow, NewDefinition("narrow",
			Entry{Tag: "w", Cmd: CmdWord, Arg: "\xe9t\xe9", OnFail: ToLabel("end")},
			Entry{Tag: "c", Cmd: CmdIs, Arg: "c", Flags: AppendMatchedText},
			Entry{Cmd: CmdAllNotIn, Arg: " \t", OnMatch: To(-1)},
			Entry{Cmd: CmdTable, Arg: inner, OnFail: To(MatchFail)},
			Entry{Cmd: CmdIsInSet, Arg: NewSet("ab", true)},
			Label("end"),
			Entry{Cmd: CmdSkip, Arg: 1},
		)},
		{Wide, NewDefinition("wide",
			Entry{Tag: "g", Cmd: CmdAllIn, Arg: "αβγ"},
			Entry{Cmd: CmdWordEnd, Arg: "ωω"},
			Entry{Cmd: CmdIs, Arg: "é"},
		)},
	}

	for _, tt := range defs {
		t.Run(tt.def.Name, func(t *testing.T) {
			tbl, err := Compile(tt.def, tt.mode, false)
			if err != nil {
				t.Fatal(err)
			}
			back, err := Compile(tbl.Definition(), tt.mode, false)
			if err != nil {
				t.Fatalf("recompiling Definition() error = %v", err)
			}

			want, got := disassemble(t, tbl), disassemble(t, back)
			if want != got {
				t.Errorf("round trip changed the table:\n%s", diff(want, got))
			}
			if idx, ok := back.LabelIndex("end"); tt.mode == Narrow && (!ok || idx != 6) {
				t.Errorf("LabelIndex(end) = (%d, %v), want (6, true)", idx, ok)
			}
		})
	}
}
