package hookpoint

// Entry is one registered callback at a hook point: the action, an optional
// filter, and the priority controlling its position in the dispatch order.
// Entries are immutable once published.
type Entry struct {
	// ID uniquely identifies this registration for introspection and
	// logging. It plays no part in ordering or identity.
	ID string

	// Action is invoked when the hook point fires, unless the filter
	// suppresses it.
	Action Action

	// Filter, when set, is evaluated with the same arguments as the action.
	// A truthy result (anything other than nil or false) suppresses the
	// action for that dispatch; iteration continues with the next entry.
	Filter Action

	// Priority orders entries within a hook point. Lower values run
	// earlier. Entries with equal priority run in registration order.
	Priority int
}

// insertEntry returns a new list with e placed after every existing entry
// whose priority is less than or equal to e's. Ties therefore keep
// registration order, with the newest entry last among its peers. The input
// list is never mutated; published lists are immutable snapshots.
func insertEntry(list []Entry, e Entry) []Entry {
	at := len(list)
	for i, cur := range list {
		if cur.Priority > e.Priority {
			at = i
			break
		}
	}
	next := make([]Entry, 0, len(list)+1)
	next = append(next, list[:at]...)
	next = append(next, e)
	next = append(next, list[at:]...)
	return next
}

// removeEntry returns a new list without the entry matching the action
// identity, and whether a match was found. The input list is never mutated.
func removeEntry(list []Entry, a Action) ([]Entry, bool) {
	for i, cur := range list {
		if cur.Action.equal(a) {
			next := make([]Entry, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			return next, true
		}
	}
	return list, false
}

// containsAction reports whether any entry in the list matches the action
// identity.
func containsAction(list []Entry, a Action) bool {
	for _, cur := range list {
		if cur.Action.equal(a) {
			return true
		}
	}
	return false
}
