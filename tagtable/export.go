package tagtable

// Definition reconstructs a definition equivalent to t: compiling it for
// the same mode yields a table that tags identically. Jumps come back as
// numeric offsets and literal arguments as strings; sub-tables stay
// compiled.
func (t *Table) Definition() *Definition {
	entries := make([]Entry, len(t.ins))
	for i, in := range t.ins {
		if name, ok := in.Arg.(string); ok && in.Cmd == CmdJumpTarget && name != "" &&
			in.Tag == nil && in.Flags == 0 && in.OnFail == 0 && in.OnMatch == 1 {
			entries[i] = Label(name)
			continue
		}
		entries[i] = Entry{
			Tag:     in.Tag,
			Cmd:     in.Cmd,
			Flags:   in.Flags,
			Arg:     t.exportArg(in.Arg),
			OnFail:  To(in.OnFail),
			OnMatch: To(in.OnMatch),
		}
	}
	return &Definition{Name: t.name, Entries: entries}
}

func (t *Table) exportArg(arg any) any {
	switch a := arg.(type) {
	case rune:
		return t.text([]rune{a})
	case *Multiset:
		return t.text(a.chars)
	case []byte:
		return string(a)
	case []rune:
		return string(a)
	default:
		return arg
	}
}

// text renders characters as a literal argument for t's mode: one byte
// per character when narrow, UTF-8 when wide.
func (t *Table) text(chars []rune) string {
	if t.mode == Wide {
		return string(chars)
	}
	b := make([]byte, len(chars))
	for i, c := range chars {
		b[i] = byte(c)
	}
	return string(b)
}
