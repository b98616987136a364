package tagtable

import "testing"

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CmdAllIn, "AllIn"},
		{CmdSWordStart, "sWordStart"},
		{CmdJump, "Fail"},
		{Command(99), "Command(99)"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("Command(%d).String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	for c := range commandNames {
		got, ok := ParseCommand(c.String())
		if !ok || got != c {
			t.Errorf("ParseCommand(%q) = (%v, %v), want (%v, true)", c.String(), got, ok, c)
		}
	}

	if got, ok := ParseCommand("Jump"); !ok || got != CmdFail {
		t.Errorf("ParseCommand(Jump) = (%v, %v), want (Fail, true)", got, ok)
	}
	if _, ok := ParseCommand("Nope"); ok {
		t.Error("ParseCommand(Nope) succeeded")
	}
}

func TestCommand_Classes(t *testing.T) {
	if !CmdWordEnd.IsLowLevel() || CmdSkip.IsLowLevel() {
		t.Error("IsLowLevel() misclassifies WordEnd or Skip")
	}
	for _, c := range []Command{CmdTable, CmdSubTable, CmdTableInList, CmdSubTableInList} {
		if !c.IsTableCall() {
			t.Errorf("%v.IsTableCall() = false", c)
		}
	}
	if CmdCall.IsTableCall() {
		t.Error("Call.IsTableCall() = true")
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		flags Flags
		want  string
	}{
		{0, ""},
		{CallTag, "CallTag"},
		{AppendMatchedText | LookAhead, "AppendMatchedText+LookAhead"},
		{LookAhead | 1<<20, "LookAhead+0x100000"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("Flags(%#x).String() = %q, want %q", uint32(tt.flags), got, tt.want)
		}
	}

	f, ok := ParseFlag("AppendToTag")
	if !ok || f != AppendToTag {
		t.Errorf("ParseFlag(AppendToTag) = (%v, %v)", f, ok)
	}
	if !(CallTag | LookAhead).Has(LookAhead) || CallTag.Has(CallTag|LookAhead) {
		t.Error("Has() is wrong")
	}
}

func TestCode(t *testing.T) {
	code := Pack(CmdTable, CallTag|LookAhead)
	if got, want := int(code), 203+256+4096; got != want {
		t.Errorf("Pack() = %d, want %d", got, want)
	}

	cmd, flags := code.Split()
	if cmd != CmdTable || flags != CallTag|LookAhead {
		t.Errorf("Split() = (%v, %v), want (Table, CallTag+LookAhead)", cmd, flags)
	}
	if got, want := code.String(), "Table+CallTag+LookAhead"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	entry := Entry{Cmd: CmdIs, Flags: AppendTagValue}
	if entry.Code() != Pack(CmdIs, AppendTagValue) {
		t.Errorf("Entry.Code() = %v", entry.Code())
	}
}
