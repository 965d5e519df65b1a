// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/woozymasta/pathrules"
)

// defaultDirIgnoreRules skip VCS metadata and editor droppings when a plain
// directory is opened as an archive. Callers replace them wholesale through
// OpenOptions.Ignore.
var defaultDirIgnoreRules = []pathrules.Rule{
	{Action: pathrules.ActionExclude, Pattern: ".git"},
	{Action: pathrules.ActionExclude, Pattern: ".git/**"},
	{Action: pathrules.ActionExclude, Pattern: ".svn"},
	{Action: pathrules.ActionExclude, Pattern: ".svn/**"},
	{Action: pathrules.ActionExclude, Pattern: "*.bak"},
	{Action: pathrules.ActionExclude, Pattern: "Thumbs.db"},
	{Action: pathrules.ActionExclude, Pattern: ".DS_Store"},
}

// pathWriter is the optional handler extension for formats whose output is
// a filesystem tree rather than a byte stream.
type pathWriter interface {
	WritePath(a *Archive, path string) error
}

// dirHandler exposes a plain filesystem directory as an archive. Entries
// load lazily from their backing files; writing materializes the tree under
// a destination directory.
type dirHandler struct {
	root   string
	ignore *pathrules.Matcher
}

// Kind returns FormatDir.
func (h *dirHandler) Kind() FormatKind {
	return FormatDir
}

// openDirArchive opens a filesystem directory as an archive.
func openDirArchive(path string, opts OpenOptions) (*Archive, error) {
	spec, err := specOf(FormatDir)
	if err != nil {
		return nil, err
	}

	rules := opts.Ignore
	if rules == nil {
		rules = defaultDirIgnoreRules
	}

	matcher, err := pathrules.NewMatcher(rules, opts.IgnoreMatcherOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIgnorePattern, err)
	}

	handler := &dirHandler{root: path, ignore: matcher}
	a := &Archive{
		handler:  handler,
		kind:     FormatDir,
		root:     newRootDir(spec.caseFold, spec.flat),
		path:     path,
		library:  opts.Library,
		conflict: opts.Conflict,
		readOnly: opts.ReadOnly,
	}

	if err := handler.openPath(a); err != nil {
		return nil, err
	}

	a.noteOpened()

	return a, nil
}

// Open is the byte-stream contract; directory archives have no byte form.
func (h *dirHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	return formatErr(ErrUnsupportedVariant, -1, "directory archives open from a path")
}

// openPath walks the backing directory into the tree, skipping ignored
// paths. Walk order is lexical, so repeated opens build identical trees.
func (h *dirHandler) openPath(a *Archive) error {
	return filepath.WalkDir(h.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", p, err)
		}

		rel, err := filepath.Rel(h.root, p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		if rel == "." {
			return nil
		}

		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if !h.ignore.Included(rel, true) {
				return fs.SkipDir
			}

			a.root.makeDir(rel)
			return nil
		}

		if !h.ignore.Included(rel, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if info.Size() > int64(^uint32(0)) {
			return formatErr(ErrSizeOverflow, -1, "file %q exceeds 4 GiB", rel)
		}

		parts := splitTreePath(rel)
		dir := a.root
		if len(parts) > 1 {
			dir = a.root.makeDir(strings.Join(parts[:len(parts)-1], "/"))
		}

		e := &Entry{
			name:     parts[len(parts)-1],
			state:    StateUnloaded,
			fullSize: uint32(info.Size()),
		}
		e.typ = sniffStoredType(e.name, e.fullSize)
		dir.entries = append(dir.entries, e)
		e.parent = dir

		return nil
	})
}

// Write is the byte-stream contract; use SaveAs with a directory target.
func (h *dirHandler) Write(a *Archive, w io.Writer) error {
	return formatErr(ErrUnsupportedVariant, -1, "directory archives write to a path")
}

// WritePath materializes the tree under path, creating directories as
// needed. Entry files are written via temp-and-rename so a failure never
// leaves a partially written file in place.
func (h *dirHandler) WritePath(a *Archive, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	var entries []*Entry
	a.root.walkEntries(true, func(e *Entry) bool {
		entries = append(entries, e)
		return true
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Path() < entries[j].Path() })

	for _, e := range entries {
		rel, err := normalizeExtractEntryPath(strings.TrimPrefix(e.Path(), "/"))
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.name, err)
		}

		data, err := a.ReadEntry(e)
		if err != nil {
			return err
		}

		dst := filepath.Join(path, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
		}

		if err := writeFileAtomic(dst, data); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}

	return nil
}

// LoadEntryData reads one backing file.
func (h *dirHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	rel, err := normalizeExtractEntryPath(strings.TrimPrefix(e.Path(), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrDataUnavailable, e.name)
	}

	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDataUnavailable, e.name, err)
	}

	return data, nil
}

// writeFileAtomic writes data to path through a sibling temp file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".arc-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return nil
}
