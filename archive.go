// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/woozymasta/pathrules"
)

// OpenOptions configures archive opening.
type OpenOptions struct {
	// Library is the external metadata-persistence collaborator, consulted
	// on open and close. Nil disables the lookups.
	Library LibraryStore
	// Ignore are directory-format ignore rules applied while walking a
	// filesystem directory opened as an archive.
	Ignore []pathrules.Rule
	// IgnoreMatcherOptions control ignore rule matching.
	IgnoreMatcherOptions pathrules.MatcherOptions
	// Format forces a format instead of running detection.
	Format FormatKind
	// Conflict is the sibling name collision policy for AddEntry.
	Conflict ConflictPolicy
	// ReadOnly rejects all mutating operations.
	ReadOnly bool
}

// applyDefaults fills zero-valued open options with defaults.
func (opts *OpenOptions) applyDefaults() {
	if opts.IgnoreMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.IgnoreMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}
}

// Archive is the top-level aggregate: one format handler binding, one entry
// tree, and the dirty/read-only state. It is the only surface external
// collaborators mutate through. One Archive belongs to one logical edit
// session at a time; concurrent access must be serialized by the caller.
type Archive struct {
	handler FormatHandler
	kind    FormatKind
	root    *Dir
	src     io.ReaderAt
	file    *os.File
	size    int64
	path    string

	library      LibraryStore
	observers    map[int]func(Event)
	nextObserver int
	conflict     ConflictPolicy

	caseFold bool
	flat     bool
	readOnly bool
	dirty    bool

	// mu guards closed state only; the tree itself is single-writer by
	// contract.
	mu     sync.Mutex
	closed bool
}

// Open opens an archive file with default options.
func Open(path string) (*Archive, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions opens an archive file or directory, resolving the format
// via detection unless forced. On any parse failure no Archive is returned
// and the source is untouched.
func OpenWithOptions(path string, opts OpenOptions) (*Archive, error) {
	opts.applyDefaults()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	if info.IsDir() {
		return openDirArchive(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a, err := openReaderAt(f, info.Size(), path, opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	a.file = f
	a.noteOpened()

	return a, nil
}

// OpenBytes parses an in-memory archive. The filename is used only for
// extension-based detection fallback.
func OpenBytes(data []byte, filename string, opts OpenOptions) (*Archive, error) {
	opts.applyDefaults()

	a, err := openReaderAt(bytes.NewReader(data), int64(len(data)), filename, opts)
	if err != nil {
		return nil, err
	}

	a.noteOpened()

	return a, nil
}

// openReaderAt detects the format and delegates to the bound handler.
func openReaderAt(src io.ReaderAt, size int64, path string, opts OpenOptions) (*Archive, error) {
	kind := opts.Format
	if kind == "" {
		head := make([]byte, detectHeadLen)
		n, err := src.ReadAt(head, 0)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read signature: %w", err)
		}

		kind, err = Detect(head[:n], path)
		if err != nil {
			return nil, err
		}
	}

	spec, err := specOf(kind)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		handler:  spec.newHandler(),
		kind:     kind,
		root:     newRootDir(spec.caseFold, spec.flat),
		src:      src,
		size:     size,
		path:     path,
		library:  opts.Library,
		conflict: opts.Conflict,
		caseFold: spec.caseFold,
		flat:     spec.flat,
		readOnly: opts.ReadOnly,
	}

	if err := a.handler.Open(a, src, size); err != nil {
		return nil, err
	}

	return a, nil
}

// Kind returns the bound format.
func (a *Archive) Kind() FormatKind {
	return a.kind
}

// Path returns the backing path, empty for in-memory archives.
func (a *Archive) Path() string {
	return a.path
}

// Root returns the tree root.
func (a *Archive) Root() *Dir {
	return a.root
}

// Dirty reports whether the tree diverged from the last opened/written state.
func (a *Archive) Dirty() bool {
	return a.dirty
}

// ReadOnly reports whether mutations are rejected.
func (a *Archive) ReadOnly() bool {
	return a.readOnly
}

// EntryAt resolves an entry by slash-separated path, nil when absent.
func (a *Archive) EntryAt(path string) *Entry {
	return a.root.ResolveEntry(path)
}

// DirAt resolves a directory by slash-separated path, nil when absent.
func (a *Archive) DirAt(path string) *Dir {
	return a.root.ResolveDir(path)
}

// ReadEntry returns the entry payload, loading it from backing storage on
// first read. Loading has no structural side effects and may run off the
// main flow, but must not race a structural mutation of the same archive.
func (a *Archive) ReadEntry(e *Entry) ([]byte, error) {
	if a == nil || e == nil {
		return nil, ErrNilReader
	}

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	switch e.state {
	case StateDeleted:
		return nil, fmt.Errorf("%w: %q is deleted", ErrNotFound, e.name)
	case StateLoaded, StateModified:
		return e.data, nil
	}

	data, err := a.handler.LoadEntryData(a, e)
	if err != nil {
		return nil, err
	}

	e.setData(data, StateLoaded)

	return data, nil
}

// AddEntry inserts a detached entry into dir at position (-1 appends).
// The archive's conflict policy decides collisions. Returns the inverse
// command for the external undo manager.
func (a *Archive) AddEntry(dir *Dir, e *Entry, position int) (Command, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	if dir == nil {
		dir = a.root
	}

	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	if err := checkNameLimit(a.kind, e.name); err != nil {
		return nil, err
	}

	if a.flat && dir != a.root {
		return nil, fmt.Errorf("%w: %s holds no subdirectories", ErrUnsupportedVariant, a.kind)
	}

	cmd := &insertCommand{entry: e, dir: dir, position: position, policy: a.conflict}

	return cmd.Apply(a)
}

// RemoveEntry detaches an entry, tombstoning it until the next write.
// Returns the inverse command.
func (a *Archive) RemoveEntry(e *Entry) (Command, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	cmd := &removeCommand{entry: e}

	return cmd.Apply(a)
}

// RenameEntry renames an entry in place. Returns the inverse command.
func (a *Archive) RenameEntry(e *Entry, newName string) (Command, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	cmd := &renameCommand{entry: e, name: newName}

	return cmd.Apply(a)
}

// MoveEntry moves an entry to another directory at position (-1 appends).
// Observers see a move as two notifications: EventRemoved at the old path,
// then EventAdded at the new one. Returns the inverse command.
func (a *Archive) MoveEntry(e *Entry, newDir *Dir, position int) (Command, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	if newDir == nil {
		newDir = a.root
	}

	if a.flat && newDir != a.root {
		return nil, fmt.Errorf("%w: %s holds no subdirectories", ErrUnsupportedVariant, a.kind)
	}

	cmd := &moveCommand{entry: e, dir: newDir, position: position}

	return cmd.Apply(a)
}

// SetEntryData replaces an entry payload, marking it Modified. Returns the
// inverse command carrying the prior payload.
func (a *Archive) SetEntryData(e *Entry, data []byte) (Command, error) {
	if e == nil {
		return nil, ErrNilReader
	}

	if e.state == StateUnloaded {
		// Capture the prior payload so the inverse restores exact bytes.
		if _, err := a.ReadEntry(e); err != nil {
			return nil, err
		}
	}

	cmd := &setDataCommand{entry: e, data: data, state: StateModified}

	return cmd.Apply(a)
}

// MakeDir returns the directory at path, creating missing levels. Creating
// a level marks the archive dirty.
func (a *Archive) MakeDir(path string) (*Dir, error) {
	if err := a.ensureMutable(); err != nil {
		return nil, err
	}

	if a.flat && len(splitTreePath(path)) > 0 {
		return nil, fmt.Errorf("%w: %s holds no subdirectories", ErrUnsupportedVariant, a.kind)
	}

	existing := a.root.ResolveDir(path)
	if existing != nil {
		return existing, nil
	}

	a.markDirty()

	return a.root.makeDir(path), nil
}

// Write serializes the current tree to w in the format's canonical layout.
// The dirty flag is cleared only on success.
func (a *Archive) Write(w io.Writer) error {
	if w == nil {
		return ErrNilWriter
	}

	if err := a.validateForWrite(); err != nil {
		return err
	}

	if err := a.handler.Write(a, w); err != nil {
		return err
	}

	a.settleAfterWrite()

	return nil
}

// Save serializes back to the opened path.
func (a *Archive) Save() error {
	if a.path == "" {
		return fmt.Errorf("%w: archive has no backing path", ErrInvalidEntryPath)
	}

	return a.SaveAs(a.path)
}

// SaveAs serializes to path through a temporary file in the destination
// directory and an atomic rename, so a crash or write error mid-save never
// leaves a partial destination file.
func (a *Archive) SaveAs(path string) error {
	if err := a.validateForWrite(); err != nil {
		return err
	}

	if pw, ok := a.handler.(pathWriter); ok {
		if err := pw.WritePath(a, path); err != nil {
			return err
		}

		a.settleAfterWrite()

		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".arc-*")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	tmpPath := tmp.Name()

	if err := a.handler.Write(a, tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp archive: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp archive: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace archive: %w", err)
	}

	a.settleAfterWrite()

	return nil
}

// Close releases the backing file and notifies the library collaborator.
// The tree is unusable afterwards.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}

	a.closed = true
	a.noteClosed()
	a.root = newRootDir(a.caseFold, a.flat)

	if a.file != nil {
		return a.file.Close()
	}

	return nil
}

// ensureMutable rejects mutations on read-only or closed archives.
func (a *Archive) ensureMutable() error {
	if a == nil {
		return ErrNilReader
	}

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if a.readOnly {
		return ErrReadOnly
	}

	return nil
}

// markDirty flags divergence from the last opened/written state.
func (a *Archive) markDirty() {
	a.dirty = true
}

// settleAfterWrite clears dirty state and settles Modified payloads.
func (a *Archive) settleAfterWrite() {
	a.dirty = false
	a.root.walkEntries(true, func(e *Entry) bool {
		if e.state == StateModified {
			e.state = StateLoaded
		}

		return true
	})
}

// validateForWrite enforces encode-time invariants before any byte is
// produced: sibling uniqueness and per-format name limits.
func (a *Archive) validateForWrite() error {
	if err := a.root.checkSiblingUniqueness(); err != nil {
		return err
	}

	var firstErr error
	a.root.walkEntries(true, func(e *Entry) bool {
		if err := checkNameLimit(a.kind, e.name); err != nil {
			firstErr = err
			return false
		}

		return true
	})

	return firstErr
}

// noteOpened records the open with the library collaborator.
func (a *Archive) noteOpened() {
	if a.library == nil || a.path == "" {
		return
	}

	a.library.SetLastOpened(a.path, time.Now())
}

// noteClosed writes archive metadata back to the library collaborator.
func (a *Archive) noteClosed() {
	if a.library == nil || a.path == "" {
		return
	}

	a.library.SetLastOpened(a.path, time.Now())
}
