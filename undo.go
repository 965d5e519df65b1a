// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import "fmt"

// Command is one invertible tree mutation. Every mutating Archive method
// returns the inverse of what it just did: applying that command restores
// the exact prior tree shape (name, position, payload) and yields the redo
// command in turn. Stack depth and grouping policy belong to the external
// undo manager, not to this package.
type Command interface {
	// Apply performs the mutation on a and returns its inverse.
	Apply(a *Archive) (Command, error)
	// Kind returns the event kind this command produces when applied.
	Kind() EventKind
}

// insertCommand inserts a detached entry at a recorded position.
type insertCommand struct {
	entry    *Entry
	dir      *Dir
	position int
	policy   ConflictPolicy
}

// Apply inserts the captured entry and returns a removal inverse.
func (c *insertCommand) Apply(a *Archive) (Command, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	c.entry.state = c.entry.restoreState()
	if _, err := c.dir.insertEntry(c.entry, c.position, c.policy); err != nil {
		return nil, err
	}

	a.markDirty()
	a.emit(Event{Kind: EventAdded, Entry: c.entry, Path: c.entry.Path()})

	return &removeCommand{entry: c.entry}, nil
}

// Kind returns EventAdded.
func (c *insertCommand) Kind() EventKind { return EventAdded }

// removeCommand detaches an entry, tombstoning it for re-insertion.
type removeCommand struct {
	entry *Entry
}

// Apply removes the captured entry and returns an insertion inverse.
func (c *removeCommand) Apply(a *Archive) (Command, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	dir := c.entry.parent
	if dir == nil {
		return nil, fmt.Errorf("%w: %q is detached", ErrNotFound, c.entry.name)
	}

	path := c.entry.Path()
	position, err := dir.detachEntry(c.entry)
	if err != nil {
		return nil, err
	}

	c.entry.state = StateDeleted
	a.markDirty()
	a.emit(Event{Kind: EventRemoved, Entry: c.entry, Path: path})

	return &insertCommand{entry: c.entry, dir: dir, position: position}, nil
}

// Kind returns EventRemoved.
func (c *removeCommand) Kind() EventKind { return EventRemoved }

// renameCommand sets an entry name in place.
type renameCommand struct {
	entry *Entry
	name  string
}

// Apply renames the captured entry and returns the reverse rename.
func (c *renameCommand) Apply(a *Archive) (Command, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	dir := c.entry.parent
	if dir == nil {
		return nil, fmt.Errorf("%w: %q is detached", ErrNotFound, c.entry.name)
	}

	if !dir.dupNames && !dir.sameName(c.entry.name, c.name) && dir.hasChildNamed(c.name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNameConflict, c.name, dir.Path())
	}

	if err := checkNameLimit(a.kind, c.name); err != nil {
		return nil, err
	}

	oldName := c.entry.name
	c.entry.name = c.name
	a.markDirty()
	a.emit(Event{Kind: EventRenamed, Entry: c.entry, Path: c.entry.Path(), OldName: oldName})

	return &renameCommand{entry: c.entry, name: oldName}, nil
}

// Kind returns EventRenamed.
func (c *renameCommand) Kind() EventKind { return EventRenamed }

// moveCommand detaches an entry and re-inserts it in another directory.
type moveCommand struct {
	entry    *Entry
	dir      *Dir
	position int
}

// Apply moves the captured entry and returns the reverse move.
func (c *moveCommand) Apply(a *Archive) (Command, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	fromDir := c.entry.parent
	if fromDir == nil {
		return nil, fmt.Errorf("%w: %q is detached", ErrNotFound, c.entry.name)
	}

	if fromDir != c.dir && !c.dir.dupNames && c.dir.hasChildNamed(c.entry.name) {
		return nil, fmt.Errorf("%w: %q in %s", ErrNameConflict, c.entry.name, c.dir.Path())
	}

	oldPath := c.entry.Path()
	fromPosition, err := fromDir.detachEntry(c.entry)
	if err != nil {
		return nil, err
	}

	if _, err := c.dir.insertEntry(c.entry, c.position, ConflictReject); err != nil {
		// Re-attach at the prior slot; the tree must not lose the entry.
		_, _ = fromDir.insertEntry(c.entry, fromPosition, ConflictReject)
		return nil, err
	}

	a.markDirty()
	a.emit(Event{Kind: EventRemoved, Entry: c.entry, Path: oldPath})
	a.emit(Event{Kind: EventAdded, Entry: c.entry, Path: c.entry.Path()})

	return &moveCommand{entry: c.entry, dir: fromDir, position: fromPosition}, nil
}

// Kind returns EventAdded.
func (c *moveCommand) Kind() EventKind { return EventAdded }

// setDataCommand replaces an entry payload.
type setDataCommand struct {
	entry *Entry
	data  []byte
	state EntryState
}

// Apply swaps in the captured payload and returns the reverse swap.
func (c *setDataCommand) Apply(a *Archive) (Command, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	inverse := &setDataCommand{entry: c.entry, data: c.entry.data, state: c.entry.state}
	c.entry.setData(c.data, c.state)
	a.markDirty()
	a.emit(Event{Kind: EventDataChanged, Entry: c.entry, Path: c.entry.Path()})

	return inverse, nil
}

// Kind returns EventDataChanged.
func (c *setDataCommand) Kind() EventKind { return EventDataChanged }

// restoreState maps a tombstoned entry back to its live state on undo.
func (e *Entry) restoreState() EntryState {
	if e.state != StateDeleted {
		return e.state
	}

	if e.data == nil {
		return StateUnloaded
	}

	return StateLoaded
}
