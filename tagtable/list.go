package tagtable

import (
	"fmt"
	"sync"
)

// TableList is a list of tables addressed by index from TableInList and
// SubTableInList instructions. Items may be definitions; they are compiled
// the first time an instruction selects them, once per mode, into the
// cache of the table holding that instruction.
//
// A TableList is safe for concurrent use. Appending items does not affect
// tables already compiled.
type TableList struct {
	mu       sync.Mutex
	items    []Source
	compiled [2]map[int]*Table
}

// NewTableList returns a list holding items.
func NewTableList(items ...Source) *TableList {
	return &TableList{items: items}
}

// Len returns the number of items.
func (l *TableList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Append adds items to the end of the list and returns the index of the
// first one.
func (l *TableList) Append(items ...Source) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := len(l.items)
	l.items = append(l.items, items...)
	return i
}

// Item returns item i as given.
func (l *TableList) Item(i int) (Source, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrListIndex, i, len(l.items))
	}
	return l.items[i], nil
}

// Table returns item i compiled for mode through the process-wide cache.
func (l *TableList) Table(i int, mode Mode) (*Table, error) {
	return l.TableWith(DefaultCache(), i, mode)
}

// TableWith returns item i compiled for mode through c; a nil c compiles
// without caching. The compiled item is kept in the list, so the first
// cache to compile an item for a mode is the only one that sees it.
func (l *TableList) TableWith(c *Cache, i int, mode Mode) (*Table, error) {
	if mode > Wide {
		return nil, fmt.Errorf("tagtable: unknown mode %d", mode)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrListIndex, i, len(l.items))
	}
	if t, ok := l.compiled[mode][i]; ok {
		return t, nil
	}

	var def *Definition
	switch src := l.items[i].(type) {
	case *Table:
		if src != nil && src.mode == mode {
			return l.store(mode, i, src), nil
		}
		if src != nil {
			def = src.def
		}
	case *Definition:
		def = src
	}
	if def == nil {
		return nil, fmt.Errorf("%w: table list item %d is %T, not a compilable table", ErrArgument, i, l.items[i])
	}

	t, err := c.Compile(def, mode, true)
	if err != nil {
		return nil, err
	}
	return l.store(mode, i, t), nil
}

func (l *TableList) store(mode Mode, i int, t *Table) *Table {
	if l.compiled[mode] == nil {
		l.compiled[mode] = make(map[int]*Table)
	}
	l.compiled[mode][i] = t
	return t
}
