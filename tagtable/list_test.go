package tagtable

import (
	"errors"
	"sync"
	"testing"
)

func TestTableList(t *testing.T) {
	digits := NewDefinition("digits", Entry{Cmd: CmdAllIn, Arg: "0123456789"})
	list := NewTableList(digits)

	if i := list.Append(ThisTable); i != 1 {
		t.Errorf("Append() = %d, want 1", i)
	}
	if list.Len() != 2 {
		t.Errorf("Len() = %d, want 2", list.Len())
	}

	narrow, err := list.Table(0, Narrow)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := list.Table(0, Narrow)
	if narrow != again {
		t.Error("Table() compiled the same item twice")
	}
	wide, err := list.Table(0, Wide)
	if err != nil {
		t.Fatal(err)
	}
	if wide.Mode() != Wide || wide == narrow {
		t.Errorf("Table(0, Wide) = %v", wide)
	}

	if _, err := list.Table(1, Narrow); !errors.Is(err, ErrArgument) {
		t.Errorf("Table(1) error = %v, want %v", err, ErrArgument)
	}
	if _, err := list.Table(2, Narrow); !errors.Is(err, ErrListIndex) {
		t.Errorf("Table(2) error = %v, want %v", err, ErrListIndex)
	}
	if _, err := list.Item(-1); !errors.Is(err, ErrListIndex) {
		t.Errorf("Item(-1) error = %v, want %v", err, ErrListIndex)
	}
	if item, err := list.Item(0); err != nil || item != Source(digits) {
		t.Errorf("Item(0) = (%v, %v), want (%v, nil)", item, err, digits)
	}
}

func TestTableList_TableWith(t *testing.T) {
	def := NewDefinition("item", Entry{Cmd: CmdIs, Arg: "i"})
	c := NewCache(10)
	list := NewTableList(def)

	got, err := list.TableWith(c, 0, Narrow)
	if err != nil {
		t.Fatal(err)
	}
	if cached, ok := c.Get(def, Narrow); !ok || cached != got {
		t.Errorf("cache holds (%v, %v), want the compiled item", cached, ok)
	}
	if _, ok := DefaultCache().Get(def, Narrow); ok {
		t.Error("TableWith() stored the item in the process-wide cache")
	}

	uncached := NewTableList(def)
	if _, err := uncached.TableWith(nil, 0, Wide); err != nil {
		t.Errorf("TableWith(nil) error = %v", err)
	}
	if _, ok := DefaultCache().Get(def, Wide); ok {
		t.Error("TableWith(nil) stored the item in the process-wide cache")
	}
}

func TestTableList_CompiledItems(t *testing.T) {
	def := NewDefinition("word", Entry{Cmd: CmdWord, Arg: "go"})
	narrow, err := Compile(def, Narrow, false)
	if err != nil {
		t.Fatal(err)
	}
	list := NewTableList(narrow)

	got, err := list.Table(0, Narrow)
	if err != nil || got != narrow {
		t.Errorf("Table(0, Narrow) = (%v, %v), want the item itself", got, err)
	}
	wide, err := list.Table(0, Wide)
	if err != nil {
		t.Fatal(err)
	}
	if wide.Mode() != Wide || wide.Source() != def {
		t.Errorf("Table(0, Wide) = %v, want a wide recompile of %v", wide, def)
	}
}

func TestTableList_Concurrent(t *testing.T) {
	list := NewTableList(NewDefinition("x", Entry{Cmd: CmdIs, Arg: "x"}))

	var wg sync.WaitGroup
	tables := make([]*Table, 8)
	for g := range tables {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tables[g], _ = list.Table(0, Narrow)
		}()
	}
	wg.Wait()
	for g, tbl := range tables {
		if tbl == nil || tbl != tables[0] {
			t.Errorf("goroutine %d got %v", g, tbl)
		}
	}
}
