package tagtable

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

func repr(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case []byte:
		return strconv.Quote(string(x))
	case []rune:
		return strconv.Quote(string(x))
	case rune:
		return strconv.QuoteRune(x)
	case *Table:
		return "<table " + x.name + ">"
	case *Definition:
		return "<definition " + x.Name + ">"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// FormatInstruction returns a one-line rendering of an instruction: tag,
// command, argument and jumps in fixed-width columns.
func FormatInstruction(in Instruction) string {
	cmd := Pack(in.Cmd, in.Flags).String()
	arg := truncate(repr(in.Arg), 17)
	if _, ok := in.Arg.(*Table); ok {
		arg = "<table>"
	}
	return fmt.Sprintf("%-15.15s : %-30s : jne=%+d : je=%+d",
		repr(in.Tag), fmt.Sprintf("%-.15s : %s", cmd, arg), in.OnFail, in.OnMatch)
}

// FormatTable renders every instruction of t on its own line. The line of
// instruction current is marked with an arrow; pass -1 for none.
func FormatTable(t *Table, current int) string {
	var sb strings.Builder
	for i, in := range t.ins {
		if i == current {
			sb.WriteString("--> ")
		} else {
			sb.WriteString("    ")
		}
		sb.WriteString(FormatInstruction(in))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintTags writes a tree view of results over the tagged text to w, one
// result per line, children indented below their parent.
func PrintTags(w io.Writer, in *Input, results *Results) error {
	return printTags(w, in, results, 0)
}

func printTags(w io.Writer, in *Input, results *Results, indent int) error {
	if results == nil {
		return nil
	}
	prefix := " " + strings.Repeat(" |", indent)
	for _, res := range *results {
		var err error
		switch res.Kind {
		case SpanResult:
			target := ""
			if res.Left >= 0 && res.Left <= res.Right && res.Right <= in.Len() {
				target = in.Slice(res.Left, res.Right)
			}
			_, err = fmt.Fprintf(w, "%s %s :  %s (%d, %d)\n", prefix,
				truncate(repr(res.Tag), 20), truncate(strconv.Quote(target), 60), res.Left, res.Right)
			if err == nil && res.Children != nil {
				err = printTags(w, in, res.Children, indent+1)
			}
		case TextResult:
			_, err = fmt.Fprintf(w, "%s %s\n", prefix, truncate(strconv.Quote(res.Text), 60))
		default:
			_, err = fmt.Fprintf(w, "%s %s\n", prefix, truncate(repr(res.Tag), 20))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Disassemble writes an assembly-style listing of t to w. Jump targets get
// local labels; jumps past the end of the table are shown as END and jumps
// before its start as FAIL.
func (t *Table) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	fmt.Fprintf(&buf, "%%table %q %s\n", t.name, t.mode)
	if err := flush(); err != nil {
		return total, err
	}

	// First pass: identify instructions that need labels
	var targets []int
	for i, in := range t.ins {
		if in.OnFail != 0 {
			targets = append(targets, i+in.OnFail)
		}
		if in.OnMatch != 1 {
			targets = append(targets, i+in.OnMatch)
		}
	}
	slices.Sort(targets)
	targets = slices.Compact(targets)
	labels := make(map[int]string)
	for _, target := range targets {
		if target >= 0 && target < len(t.ins) {
			labels[target] = fmt.Sprintf(".L%d", len(labels))
		}
	}

	jump := func(i, offset int) string {
		target := i + offset
		switch {
		case target >= len(t.ins):
			return fmt.Sprintf("END <.%+d>", offset)
		case target < 0:
			return fmt.Sprintf("FAIL <.%+d>", offset)
		default:
			return fmt.Sprintf("%s <.%+d>", labels[target], offset)
		}
	}

	// Second pass: emit instructions
	for i, in := range t.ins {
		if label, ok := labels[i]; ok {
			buf.WriteString(label)
			buf.WriteString(":\n")
		}
		buf.WriteByte('\t')
		buf.WriteString(Pack(in.Cmd, in.Flags).String())
		if in.Arg != nil {
			buf.WriteByte(' ')
			buf.WriteString(repr(in.Arg))
		}
		if in.Tag != nil {
			buf.WriteString(" tag=")
			buf.WriteString(repr(in.Tag))
		}
		if in.OnFail != 0 {
			buf.WriteString(" fail=")
			buf.WriteString(jump(i, in.OnFail))
		}
		if in.OnMatch != 1 {
			buf.WriteString(" match=")
			buf.WriteString(jump(i, in.OnMatch))
		}
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}
