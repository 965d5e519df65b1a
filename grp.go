// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// GRP binary layout constants.
const (
	grpMagic    = "KenSilverman"
	grpMagicLen = 12
	grpNameLen  = 12
	grpDirEntry = 16
)

// grpHandler reads and writes Build engine group files: a 16-byte header
// record, a table of fixed-width name+size records, then raw payloads in
// table order.
type grpHandler struct {
	ra io.ReaderAt
}

// Kind returns FormatGrp.
func (h *grpHandler) Kind() FormatKind {
	return FormatGrp
}

// Open parses the record table. Payload offsets are derived sequentially;
// the format stores only sizes.
func (h *grpHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	var header [grpDirEntry]byte
	if _, err := src.ReadAt(header[:], 0); err != nil {
		return formatErr(ErrTruncated, 0, "short header")
	}

	if string(header[:grpMagicLen]) != grpMagic {
		return formatErr(ErrBadMagic, 0, "magic %q", string(header[:grpMagicLen]))
	}

	count := binary.LittleEndian.Uint32(header[grpMagicLen:])
	tableEnd := int64(grpDirEntry) * (int64(count) + 1)
	if tableEnd > size {
		return formatErr(ErrTruncated, grpDirEntry, "table of %d records past end of file", count)
	}

	table := make([]byte, int64(count)*grpDirEntry)
	if _, err := src.ReadAt(table, grpDirEntry); err != nil {
		return formatErr(ErrTruncated, grpDirEntry, "short record table")
	}

	offset := tableEnd
	for i := uint32(0); i < count; i++ {
		rec := table[i*grpDirEntry:]
		name := strings.TrimRight(string(rec[:grpNameLen]), "\x00")
		entrySize := binary.LittleEndian.Uint32(rec[grpNameLen:])
		if offset+int64(entrySize) > size {
			return formatErr(ErrTruncated, offset, "entry %q payload past end of file", name)
		}

		e := &Entry{
			name:       name,
			state:      StateUnloaded,
			offset:     offset,
			storedSize: entrySize,
			fullSize:   entrySize,
		}
		e.typ = sniffStoredType(name, entrySize)
		a.root.entries = append(a.root.entries, e)
		e.parent = a.root

		offset += int64(entrySize)
	}

	h.ra = src

	return nil
}

// Write serializes header, record table, then payloads in tree order. The
// layout has no padding, so an unmodified archive rewrites byte-identically.
func (h *grpHandler) Write(a *Archive, w io.Writer) error {
	entries := a.root.entries
	if len(a.root.subdirs) > 0 {
		return formatErr(ErrUnsupportedVariant, -1, "grp holds no subdirectories")
	}
	if err := checkEntryCount(len(entries)); err != nil {
		return err
	}

	var header [grpDirEntry]byte
	copy(header[:], grpMagic)
	binary.LittleEndian.PutUint32(header[grpMagicLen:], uint32(len(entries)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	payloads := make([][]byte, len(entries))
	var rec [grpDirEntry]byte
	for i, e := range entries {
		data, err := a.ReadEntry(e)
		if err != nil {
			return err
		}
		payloads[i] = data

		for j := range rec {
			rec[j] = 0
		}
		copy(rec[:grpNameLen], strings.ToUpper(e.name))
		binary.LittleEndian.PutUint32(rec[grpNameLen:], uint32(len(data)))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write record %q: %w", e.name, err)
		}
	}

	for i, payload := range payloads {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write entry %q: %w", entries[i].name, err)
		}
	}

	return nil
}

// LoadEntryData reads one payload from backing storage.
func (h *grpHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	return readStoredPayload(h.ra, e)
}

// readStoredPayload reads an entry's stored span from a lump-table backing.
func readStoredPayload(ra io.ReaderAt, e *Entry) ([]byte, error) {
	if ra == nil {
		return nil, fmt.Errorf("%w: %q", ErrDataUnavailable, e.name)
	}

	data := make([]byte, e.storedSize)
	if _, err := io.ReadFull(io.NewSectionReader(ra, e.offset, int64(e.storedSize)), data); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDataUnavailable, e.name, err)
	}

	return data, nil
}
