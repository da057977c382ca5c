package hookpoint

import "testing"

// tagged builds a distinct action identity per tag. The shared literal is
// discriminated by the bound argument.
func tagged(tag string) Action {
	return FuncArgs(func(args ...any) any { return OK }, tag)
}

// tagOf recovers the discriminating tag from an entry built with tagged.
func tagOf(e Entry) string {
	return e.Action.bound[0].(string)
}

func TestInsertEntryPriorityOrder(t *testing.T) {
	var list []Entry
	for _, reg := range []struct {
		tag      string
		priority int
	}{
		{"c", 10},
		{"a", -5},
		{"b", 0},
	} {
		list = insertEntry(list, Entry{Action: tagged(reg.tag), Priority: reg.priority})
	}

	want := []string{"a", "b", "c"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(list))
	}
	for i, tag := range want {
		if got := tagOf(list[i]); got != tag {
			t.Errorf("Position %d: expected %q, got %q", i, tag, got)
		}
	}
	for i := 1; i < len(list); i++ {
		if list[i].Priority < list[i-1].Priority {
			t.Errorf("Priorities not non-decreasing at %d: %d < %d", i, list[i].Priority, list[i-1].Priority)
		}
	}
}

func TestInsertEntryStableTies(t *testing.T) {
	// A new entry with priority P lands after every existing entry with
	// priority <= P and before the first strictly greater one. A naive
	// "insert at first >= P" breaks this.
	var list []Entry
	list = insertEntry(list, Entry{Action: tagged("first"), Priority: 0})
	list = insertEntry(list, Entry{Action: tagged("high"), Priority: 5})
	list = insertEntry(list, Entry{Action: tagged("second"), Priority: 0})
	list = insertEntry(list, Entry{Action: tagged("third"), Priority: 0})

	want := []string{"first", "second", "third", "high"}
	for i, tag := range want {
		if got := tagOf(list[i]); got != tag {
			t.Errorf("Position %d: expected %q, got %q", i, tag, got)
		}
	}
}

func TestInsertEntryDoesNotMutateInput(t *testing.T) {
	list := insertEntry(nil, Entry{Action: tagged("a"), Priority: 0})
	list = insertEntry(list, Entry{Action: tagged("b"), Priority: 1})

	snapshot := make([]Entry, len(list))
	copy(snapshot, list)

	// Insert in the middle; the original slice must be untouched since
	// published lists are read concurrently.
	insertEntry(list, Entry{Action: tagged("mid"), Priority: 0})

	for i := range snapshot {
		if tagOf(list[i]) != tagOf(snapshot[i]) {
			t.Fatalf("Input list mutated at %d", i)
		}
	}
}

func TestRemoveEntry(t *testing.T) {
	a, b := tagged("a"), tagged("b")
	var list []Entry
	list = insertEntry(list, Entry{Action: a})
	list = insertEntry(list, Entry{Action: b})

	next, found := removeEntry(list, a)
	if !found {
		t.Fatal("Expected removal to find entry")
	}
	if len(next) != 1 || tagOf(next[0]) != "b" {
		t.Errorf("Expected only %q to remain, got %d entries", "b", len(next))
	}
	if len(list) != 2 {
		t.Error("Input list should not be mutated by removal")
	}

	// Removing an absent action is a no-op.
	same, found := removeEntry(next, a)
	if found {
		t.Error("Expected no match for absent action")
	}
	if len(same) != 1 {
		t.Errorf("Expected list unchanged, got %d entries", len(same))
	}
}

func TestContainsAction(t *testing.T) {
	a, b := tagged("a"), tagged("b")
	list := insertEntry(nil, Entry{Action: a})

	if !containsAction(list, a) {
		t.Error("Expected list to contain action")
	}
	if containsAction(list, b) {
		t.Error("Expected list not to contain unregistered action")
	}
	if containsAction(nil, a) {
		t.Error("Expected empty list to contain nothing")
	}
}
