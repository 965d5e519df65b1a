// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

// EventKind identifies one structural or content change.
type EventKind uint8

// Change notification kinds.
const (
	// EventAdded means an entry was inserted into the tree.
	EventAdded EventKind = iota + 1
	// EventRemoved means an entry was detached from the tree.
	EventRemoved
	// EventRenamed means an entry name changed in place.
	EventRenamed
	// EventDataChanged means an entry payload was replaced.
	EventDataChanged
)

// String returns a short kind label.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventRenamed:
		return "renamed"
	case EventDataChanged:
		return "data_changed"
	default:
		return "unknown"
	}
}

// Event describes one mutation of an archive tree. Events are delivered
// synchronously after the tree reached its new state and before the mutating
// call returns, so observers never see a torn intermediate state.
type Event struct {
	// Entry is the affected entry.
	Entry *Entry
	// Path is the entry path after the mutation (before, for EventRemoved).
	Path string
	// OldName is the prior name for EventRenamed, empty otherwise.
	OldName string
	// Kind classifies the mutation.
	Kind EventKind
}

// Subscribe registers an observer for mutation events and returns an
// unsubscribe function. Observers run on the mutating goroutine.
func (a *Archive) Subscribe(fn func(Event)) func() {
	if a == nil || fn == nil {
		return func() {}
	}

	id := a.nextObserver
	a.nextObserver++
	if a.observers == nil {
		a.observers = make(map[int]func(Event), 2)
	}
	a.observers[id] = fn

	return func() {
		delete(a.observers, id)
	}
}

// emit delivers one event to all observers. Delivery order between
// observers is not guaranteed.
func (a *Archive) emit(ev Event) {
	for _, fn := range a.observers {
		fn(ev)
	}
}
