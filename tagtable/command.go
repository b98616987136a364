package tagtable

import (
	"strconv"
	"strings"
)

// Command identifies what a tag table instruction does.
//
// The numeric values match the classic packed command codes, so a Code read
// from an external definition decodes directly into a Command.
type Command uint8

// Low-level matching commands. They consume characters and succeed iff the
// scan head moved forward.
const (
	CmdAllIn     Command = 11
	CmdAllNotIn  Command = 12
	CmdIs        Command = 13
	CmdIsIn      Command = 14
	CmdIsNotIn   Command = 15
	CmdWord      Command = 21
	CmdWordStart Command = 22
	CmdWordEnd   Command = 23

	CmdAllInSet Command = 31
	CmdIsInSet  Command = 32

	CmdAllInCharSet Command = 41
	CmdIsInCharSet  Command = 42
)

// Special commands.
const (
	CmdFail       Command = 100
	CmdEOF        Command = 101
	CmdSkip       Command = 102
	CmdMove       Command = 103
	CmdJumpTarget Command = 104

	// CmdJump is CmdFail used purely for its fail jump.
	CmdJump = CmdFail
)

// High-level commands.
const (
	CmdCall           Command = 201
	CmdCallArg        Command = 202
	CmdTable          Command = 203
	CmdTableInList    Command = 204
	CmdLoop           Command = 205
	CmdLoopControl    Command = 206
	CmdSubTable       Command = 207
	CmdSubTableInList Command = 208

	CmdSWordStart Command = 211
	CmdSWordEnd   Command = 212
	CmdSFindWord  Command = 213
)

// Argument values with a special meaning.
const (
	// MatchOK and MatchFail are jump offsets large enough to leave any
	// table, ending it with success or failure respectively.
	MatchOK   = 1000000
	MatchFail = -1000000

	// ToEOF and ToBOF are Move targets: one past the slice end and the
	// slice start.
	ToEOF = -1
	ToBOF = 0

	// Break and Reset are LoopControl values.
	Break = 0
	Reset = -1
)

var commandNames = map[Command]string{
	CmdAllIn:          "AllIn",
	CmdAllNotIn:       "AllNotIn",
	CmdIs:             "Is",
	CmdIsIn:           "IsIn",
	CmdIsNotIn:        "IsNotIn",
	CmdWord:           "Word",
	CmdWordStart:      "WordStart",
	CmdWordEnd:        "WordEnd",
	CmdAllInSet:       "AllInSet",
	CmdIsInSet:        "IsInSet",
	CmdAllInCharSet:   "AllInCharSet",
	CmdIsInCharSet:    "IsInCharSet",
	CmdFail:           "Fail",
	CmdEOF:            "EOF",
	CmdSkip:           "Skip",
	CmdMove:           "Move",
	CmdJumpTarget:     "JumpTarget",
	CmdCall:           "Call",
	CmdCallArg:        "CallArg",
	CmdTable:          "Table",
	CmdTableInList:    "TableInList",
	CmdLoop:           "Loop",
	CmdLoopControl:    "LoopControl",
	CmdSubTable:       "SubTable",
	CmdSubTableInList: "SubTableInList",
	CmdSWordStart:     "sWordStart",
	CmdSWordEnd:       "sWordEnd",
	CmdSFindWord:      "sFindWord",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames)+1)
	for c, name := range commandNames {
		m[name] = c
	}
	m["Jump"] = CmdJump
	return m
}()

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "Command(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	_, ok := commandNames[c]
	return ok
}

// IsLowLevel reports whether c follows the low-level contract: succeed iff
// the scan head moved forward.
func (c Command) IsLowLevel() bool {
	return c < CmdFail
}

// IsTableCall reports whether c pushes a new frame.
func (c Command) IsTableCall() bool {
	switch c {
	case CmdTable, CmdSubTable, CmdTableInList, CmdSubTableInList:
		return true
	default:
		return false
	}
}

// ParseCommand looks up a command by name. "Jump" is accepted as an alias
// for "Fail".
func ParseCommand(name string) (Command, bool) {
	c, ok := commandsByName[name]
	return c, ok
}

// Flags modify how a successful match is recorded.
type Flags uint32

const (
	// CallTag calls the tag (a Tagger) instead of appending to the
	// result list.
	CallTag Flags = 1 << 8

	// AppendToTag appends the result to the tag (an Appender) instead of
	// the result list.
	AppendToTag Flags = 1 << 9

	// AppendTagValue records the tag value itself instead of a span.
	AppendTagValue Flags = 1 << 10

	// AppendMatchedText records the matched text instead of a span.
	AppendMatchedText Flags = 1 << 11

	// LookAhead rewinds the scan head after a successful match.
	LookAhead Flags = 1 << 12

	allFlags = CallTag | AppendToTag | AppendTagValue | AppendMatchedText | LookAhead
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{CallTag, "CallTag"},
	{AppendToTag, "AppendToTag"},
	{AppendTagValue, "AppendTagValue"},
	{AppendMatchedText, "AppendMatchedText"},
	{LookAhead, "LookAhead"},
}

// Has reports whether all bits of x are set in f.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// String returns the flag names joined with "+", or "" for no flags.
func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	if rest := f &^ allFlags; rest != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(parts, "+")
}

// ParseFlag looks up a single flag by name.
func ParseFlag(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.f, true
		}
	}
	return 0, false
}

// Code is the packed integer form of a command and its flags: the command
// occupies the low byte, flags the bits above it.
type Code int

// Pack combines a command and flags into a Code.
func Pack(cmd Command, flags Flags) Code {
	return Code(int(cmd) | int(flags))
}

// Split decodes c into its command and flags. Neither part is validated.
func (c Code) Split() (Command, Flags) {
	return Command(c & 0xFF), Flags(c &^ 0xFF)
}

// String implements fmt.Stringer.
func (c Code) String() string {
	cmd, flags := c.Split()
	if flags == 0 {
		return cmd.String()
	}
	return cmd.String() + "+" + flags.String()
}
