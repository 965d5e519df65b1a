// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"fmt"
	"strings"
)

// ConflictPolicy controls how addEntry reacts to a sibling name collision.
type ConflictPolicy uint8

// Name collision policies.
const (
	// ConflictReject fails the operation with ErrNameConflict.
	ConflictReject ConflictPolicy = iota
	// ConflictAutoSuffix appends " (n)" before the extension until unique.
	ConflictAutoSuffix
)

// Dir is an ordered container of entries and nested directories. Directories
// own their children; children keep a non-owning parent reference purely for
// navigation, so the tree stays acyclic.
type Dir struct {
	name     string
	parent   *Dir
	subdirs  []*Dir
	entries  []*Entry
	caseFold bool
	// dupNames permits repeated sibling entry names. Lump-table formats
	// identify entries by physical order, not name, and legitimately repeat
	// names (one THINGS per map); path-addressed formats keep names unique.
	dupNames bool
}

// newRootDir creates an empty tree root with the format's name rules.
func newRootDir(caseFold, dupNames bool) *Dir {
	return &Dir{caseFold: caseFold, dupNames: dupNames}
}

// Name returns the directory name, empty for the root.
func (d *Dir) Name() string {
	return d.name
}

// Parent returns the parent directory, nil for the root.
func (d *Dir) Parent() *Dir {
	return d.parent
}

// IsRoot reports whether this directory is the tree root.
func (d *Dir) IsRoot() bool {
	return d.parent == nil
}

// Path returns the slash-separated path of this directory, "/" for the root.
func (d *Dir) Path() string {
	if d.parent == nil {
		return "/"
	}

	prefix := d.parent.Path()
	if prefix == "/" {
		return "/" + d.name
	}

	return prefix + "/" + d.name
}

// Entries returns the ordered child entries. The returned slice is shared;
// callers must not mutate it.
func (d *Dir) Entries() []*Entry {
	return d.entries
}

// Subdirs returns the ordered child directories. The returned slice is
// shared; callers must not mutate it.
func (d *Dir) Subdirs() []*Dir {
	return d.subdirs
}

// NumEntries returns the entry count, recursive when deep is true.
func (d *Dir) NumEntries(deep bool) int {
	n := len(d.entries)
	if deep {
		for _, sub := range d.subdirs {
			n += sub.NumEntries(true)
		}
	}

	return n
}

// EntryAt returns the entry at position index, nil when out of range.
func (d *Dir) EntryAt(index int) *Entry {
	if index < 0 || index >= len(d.entries) {
		return nil
	}

	return d.entries[index]
}

// Entry returns the direct child entry with the given name under the tree's
// case rule, nil when absent.
func (d *Dir) Entry(name string) *Entry {
	for _, e := range d.entries {
		if d.sameName(e.name, name) {
			return e
		}
	}

	return nil
}

// Subdir returns the direct child directory with the given name, nil when absent.
func (d *Dir) Subdir(name string) *Dir {
	for _, sub := range d.subdirs {
		if d.sameName(sub.name, name) {
			return sub
		}
	}

	return nil
}

// ResolveDir walks a slash-separated path to a descendant directory.
func (d *Dir) ResolveDir(p string) *Dir {
	cur := d
	for _, part := range splitTreePath(p) {
		cur = cur.Subdir(part)
		if cur == nil {
			return nil
		}
	}

	return cur
}

// ResolveEntry walks a slash-separated path to a descendant entry.
func (d *Dir) ResolveEntry(p string) *Entry {
	parts := splitTreePath(p)
	if len(parts) == 0 {
		return nil
	}

	cur := d
	for _, part := range parts[:len(parts)-1] {
		cur = cur.Subdir(part)
		if cur == nil {
			return nil
		}
	}

	return cur.Entry(parts[len(parts)-1])
}

// makeDir returns the descendant directory at path, creating missing levels.
func (d *Dir) makeDir(p string) *Dir {
	cur := d
	for _, part := range splitTreePath(p) {
		next := cur.Subdir(part)
		if next == nil {
			next = &Dir{name: part, parent: cur, caseFold: cur.caseFold, dupNames: cur.dupNames}
			cur.subdirs = append(cur.subdirs, next)
		}

		cur = next
	}

	return cur
}

// entryIndex returns the position of e in this directory, -1 when absent.
func (d *Dir) entryIndex(e *Entry) int {
	for i := range d.entries {
		if d.entries[i] == e {
			return i
		}
	}

	return -1
}

// sameName compares two names under the tree's case rule.
func (d *Dir) sameName(a, b string) bool {
	if d.caseFold {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// hasChildNamed reports whether any sibling (entry or subdir) uses name.
func (d *Dir) hasChildNamed(name string) bool {
	return d.Entry(name) != nil || d.Subdir(name) != nil
}

// insertEntry places e at position in d, resolving name collisions per
// policy. Position -1 or past the end appends. Returns the final position.
func (d *Dir) insertEntry(e *Entry, position int, policy ConflictPolicy) (int, error) {
	if e.name == "" {
		return 0, fmt.Errorf("%w: empty name", ErrInvalidEntryPath)
	}

	if !d.dupNames && d.hasChildNamed(e.name) {
		if policy == ConflictReject {
			return 0, fmt.Errorf("%w: %q in %s", ErrNameConflict, e.name, d.Path())
		}

		e.name = d.uniqueName(e.name)
	}

	if position < 0 || position > len(d.entries) {
		position = len(d.entries)
	}

	d.entries = append(d.entries, nil)
	copy(d.entries[position+1:], d.entries[position:])
	d.entries[position] = e
	e.parent = d

	return position, nil
}

// detachEntry removes e from d and returns its prior position.
func (d *Dir) detachEntry(e *Entry) (int, error) {
	idx := d.entryIndex(e)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %q in %s", ErrNotFound, e.name, d.Path())
	}

	d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	e.parent = nil

	return idx, nil
}

// detachSubdir removes sub from d and returns its prior position.
func (d *Dir) detachSubdir(sub *Dir) (int, error) {
	for i := range d.subdirs {
		if d.subdirs[i] == sub {
			d.subdirs = append(d.subdirs[:i], d.subdirs[i+1:]...)
			sub.parent = nil
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q in %s", ErrNotFound, sub.name, d.Path())
}

// insertSubdir places sub at position in d. Position -1 appends.
func (d *Dir) insertSubdir(sub *Dir, position int) (int, error) {
	if d.hasChildNamed(sub.name) {
		return 0, fmt.Errorf("%w: %q in %s", ErrNameConflict, sub.name, d.Path())
	}

	if position < 0 || position > len(d.subdirs) {
		position = len(d.subdirs)
	}

	d.subdirs = append(d.subdirs, nil)
	copy(d.subdirs[position+1:], d.subdirs[position:])
	d.subdirs[position] = sub
	sub.parent = d

	return position, nil
}

// uniqueName derives a non-conflicting variant of name by numeric suffix.
func (d *Dir) uniqueName(name string) string {
	base := name
	ext := ""
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		base = name[:idx]
		ext = name[idx:]
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !d.hasChildNamed(candidate) {
			return candidate
		}
	}
}

// walkEntries visits entries of d and, when deep, of all subdirectories in
// tree pre-order. The visit callback returns false to stop early.
func (d *Dir) walkEntries(deep bool, visit func(*Entry) bool) bool {
	for _, e := range d.entries {
		if !visit(e) {
			return false
		}
	}

	if deep {
		for _, sub := range d.subdirs {
			if !sub.walkEntries(true, visit) {
				return false
			}
		}
	}

	return true
}

// checkSiblingUniqueness validates invariant: no two siblings share a name
// under the tree's case rule. Trees that permit duplicate lump names pass
// trivially. Used by tests and encode-time validation.
func (d *Dir) checkSiblingUniqueness() error {
	if d.dupNames {
		return nil
	}

	seen := make(map[string]struct{}, len(d.entries)+len(d.subdirs))
	key := func(name string) string {
		if d.caseFold {
			return strings.ToLower(name)
		}
		return name
	}

	for _, e := range d.entries {
		k := key(e.name)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %q in %s", ErrNameConflict, e.name, d.Path())
		}
		seen[k] = struct{}{}
	}

	for _, sub := range d.subdirs {
		k := key(sub.name)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %q in %s", ErrNameConflict, sub.name, d.Path())
		}
		seen[k] = struct{}{}

		if err := sub.checkSiblingUniqueness(); err != nil {
			return err
		}
	}

	return nil
}

// splitTreePath splits a normalized slash path into segments.
func splitTreePath(p string) []string {
	p = strings.Trim(strings.ReplaceAll(strings.TrimSpace(p), `\`, "/"), "/")
	if p == "" || p == "." {
		return nil
	}

	raw := strings.Split(p, "/")
	parts := raw[:0]
	for _, part := range raw {
		if part == "" || part == "." {
			continue
		}

		parts = append(parts, part)
	}

	return parts
}
