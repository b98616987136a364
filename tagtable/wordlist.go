package tagtable

import (
	"errors"
	"fmt"
)

// hintLimit is the largest number of distinct first characters for which
// WordInList emits an IsIn pre-check.
const hintLimit = 17

// WordInList builds a definition that matches any one of words at the
// current position. Words are grouped by first character and tried in the
// order given, so a word shadows later words it is a prefix of.
//
// Characters are bytes for Narrow and runes for Wide, matching the mode
// the definition is meant to be compiled for.
func WordInList(mode Mode, words ...string) (*Definition, error) {
	if len(words) == 0 {
		return nil, errors.New("tagtable: WordInList needs at least one word")
	}

	split := func(w string) ([]rune, error) {
		if w == "" {
			return nil, errors.New("tagtable: WordInList: empty word")
		}
		if mode == Wide {
			return []rune(w), nil
		}
		return latin1([]byte(w)), nil
	}
	render := func(chars []rune) string {
		t := Table{mode: mode}
		return t.text(chars)
	}

	var firsts []rune
	groups := make(map[rune][][]rune)
	for _, w := range words {
		chars, err := split(w)
		if err != nil {
			return nil, err
		}
		c := chars[0]
		if _, ok := groups[c]; !ok {
			firsts = append(firsts, c)
		}
		groups[c] = append(groups[c], chars[1:])
	}

	var entries []Entry
	if len(firsts) <= hintLimit {
		entries = append(entries,
			Entry{Cmd: CmdIsIn, Arg: render(firsts)},
			Entry{Cmd: CmdSkip, Arg: -1},
		)
	}
	for _, c := range firsts {
		group := groups[c]
		// Is c, then each remainder; a failed Is skips the whole group.
		entries = append(entries, Entry{Cmd: CmdIs, Arg: render([]rune{c}), OnFail: To(len(group) + 2)})
		for _, rest := range group {
			if len(rest) == 0 {
				entries = append(entries, Entry{Cmd: CmdSkip, Arg: 0, OnFail: To(1), OnMatch: To(MatchOK)})
				continue
			}
			entries = append(entries, Entry{Cmd: CmdWord, Arg: render(rest), OnFail: To(1), OnMatch: To(MatchOK)})
		}
		entries = append(entries, Entry{Cmd: CmdFail})
	}
	entries = append(entries, Entry{Cmd: CmdFail})

	return &Definition{Name: fmt.Sprintf("WordInList(%d)", len(words)), Entries: entries}, nil
}
