// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"strings"
)

// EntryState tracks payload lifecycle of one entry.
type EntryState uint8

// Entry payload states.
const (
	// StateUnloaded means payload was never read from backing storage.
	StateUnloaded EntryState = iota
	// StateLoaded means payload matches backing storage.
	StateLoaded
	// StateModified means payload differs from backing storage.
	StateModified
	// StateDeleted means entry was removed and is kept only as an undo tombstone.
	StateDeleted
)

// String returns a short state label.
func (s EntryState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateModified:
		return "modified"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// EntryType is a coarse content classification derived from data sniffing
// or the name extension. It never affects serialization.
type EntryType string

// Recognized entry types.
const (
	TypeUnknown  EntryType = "unknown"
	TypeMarker   EntryType = "marker"
	TypeText     EntryType = "text"
	TypePNG      EntryType = "png"
	TypeMidi     EntryType = "midi"
	TypeWave     EntryType = "wave"
	TypePalette  EntryType = "palette"
	TypeMapLump  EntryType = "map_lump"
	TypeArchive  EntryType = "archive"
	TypeGraphics EntryType = "graphics"
)

// Entry is one file-like unit inside an archive: a name, a lazily loaded
// payload, and lifecycle metadata. Entries are created by format handlers
// during open or by Archive.AddEntry; payload reads go through
// Archive.ReadEntry so the load-on-first-read rule stays in one place.
type Entry struct {
	name   string
	typ    EntryType
	data   []byte
	parent *Dir
	state  EntryState

	// Backing-storage coordinates for lazy loads, interpreted by the owning
	// format handler. index is used by table-backed handlers (zip), offset
	// and sizes by lump-table handlers.
	offset     int64
	index      int
	storedSize uint32
	fullSize   uint32
	compressed bool
	// aux carries small per-format metadata that must survive a rewrite
	// (the Lfd resource type tag, for example).
	aux string
}

// NewEntry creates a detached entry with the given payload. A nil payload
// creates a zero-length Loaded entry, not an Unloaded one: only entries
// parsed from backing storage may be Unloaded.
func NewEntry(name string, data []byte) *Entry {
	if data == nil {
		data = []byte{}
	}

	e := &Entry{
		name:     name,
		data:     data,
		state:    StateLoaded,
		fullSize: uint32(len(data)),
	}
	e.typ = sniffEntryType(name, data)

	return e
}

// Name returns the entry name (without directory path).
func (e *Entry) Name() string {
	return e.name
}

// Type returns the sniffed content type.
func (e *Entry) Type() EntryType {
	return e.typ
}

// State returns the payload lifecycle state.
func (e *Entry) State() EntryState {
	return e.state
}

// Size returns the uncompressed payload size in bytes. For Unloaded entries
// this is the size recorded in the archive index.
func (e *Entry) Size() uint32 {
	if e.state == StateUnloaded {
		return e.fullSize
	}

	return uint32(len(e.data))
}

// Data returns the payload when loaded, nil for Unloaded entries.
// Use Archive.ReadEntry to trigger a lazy load.
func (e *Entry) Data() []byte {
	if e.state == StateUnloaded {
		return nil
	}

	return e.data
}

// Parent returns the owning directory, nil for detached entries.
func (e *Entry) Parent() *Dir {
	return e.parent
}

// Path returns the slash-separated path of this entry inside its tree.
func (e *Entry) Path() string {
	if e.parent == nil {
		return e.name
	}

	prefix := e.parent.Path()
	if prefix == "/" {
		return "/" + e.name
	}

	return prefix + "/" + e.name
}

// Index returns the entry's position within its parent directory, -1 when detached.
func (e *Entry) Index() int {
	if e.parent == nil {
		return -1
	}

	return e.parent.entryIndex(e)
}

// setData replaces payload in place. State bookkeeping is done by callers
// (Archive.SetEntryData for user edits, handlers for lazy loads).
func (e *Entry) setData(data []byte, state EntryState) {
	if data == nil {
		data = []byte{}
	}

	e.data = data
	e.state = state
	e.typ = sniffEntryType(e.name, data)
}

// sniffEntryType classifies entry content by magic bytes first and name
// extension second.
func sniffEntryType(name string, data []byte) EntryType {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return TypePNG
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("MThd")):
		return TypeMidi
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return TypeWave
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte("PK\x03\x04")) || bytes.Equal(data[:4], []byte("IWAD")) || bytes.Equal(data[:4], []byte("PWAD"))):
		return TypeArchive
	case data != nil && len(data) == 0 && name != "":
		// A known-empty payload is a marker. Nil means not loaded yet, so
		// classification falls through to the name rules.
		return TypeMarker
	}

	switch strings.ToLower(extensionOf(name)) {
	case "txt", "cfg", "ini", "deh", "acs":
		return TypeText
	case "pal":
		return TypePalette
	case "lmp":
		return TypeGraphics
	}

	if isMapContentLump(strings.ToUpper(name)) {
		return TypeMapLump
	}

	if data != nil && isMostlyText(data) {
		return TypeText
	}

	return TypeUnknown
}

// sniffStoredType classifies an unloaded entry from its index record alone:
// a zero recorded size sniffs as a known-empty payload, anything else by
// name only. Handlers re-sniff with real bytes on first load.
func sniffStoredType(name string, fullSize uint32) EntryType {
	if fullSize == 0 {
		return sniffEntryType(name, []byte{})
	}

	return sniffEntryType(name, nil)
}

// extensionOf returns the name extension without the dot, empty when absent.
func extensionOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}

	return name[idx+1:]
}

// isMostlyText reports whether data looks like plain text. Only the first
// 512 bytes are inspected.
func isMostlyText(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}

	printable := 0
	for _, b := range probe {
		if b == 0 {
			return false
		}
		if b == '\t' || b == '\n' || b == '\r' || (b >= 0x20 && b < 0x7f) {
			printable++
		}
	}

	return printable*10 >= len(probe)*9
}
