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

// LFD binary layout constants.
const (
	lfdChunkHeader = 16
	lfdTypeLen     = 4
	lfdNameLen     = 8
)

// lfdHandler reads and writes LucasArts LFD resource containers: an RMAP
// chunk listing {type, name, size} records, followed by one chunk per
// resource repeating that header before its payload. Entries are exposed as
// "NAME.typ" so the resource type survives renames through the extension.
type lfdHandler struct {
	ra io.ReaderAt
}

// Kind returns FormatLfd.
func (h *lfdHandler) Kind() FormatKind {
	return FormatLfd
}

// Open parses the RMAP table and derives chunk offsets sequentially.
func (h *lfdHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	var header [lfdChunkHeader]byte
	if _, err := src.ReadAt(header[:], 0); err != nil {
		return formatErr(ErrTruncated, 0, "short RMAP header")
	}

	if string(header[:4]) != "RMAP" {
		return formatErr(ErrBadMagic, 0, "chunk type %q", string(header[:4]))
	}

	mapLen := binary.LittleEndian.Uint32(header[12:16])
	if mapLen%lfdChunkHeader != 0 {
		return formatErr(ErrUnsupportedVariant, 12, "RMAP length %d not a record multiple", mapLen)
	}
	if int64(lfdChunkHeader)+int64(mapLen) > size {
		return formatErr(ErrTruncated, lfdChunkHeader, "RMAP table past end of file")
	}

	table := make([]byte, mapLen)
	if _, err := src.ReadAt(table, lfdChunkHeader); err != nil {
		return formatErr(ErrTruncated, lfdChunkHeader, "short RMAP table")
	}

	offset := int64(lfdChunkHeader) + int64(mapLen)
	for i := uint32(0); i < mapLen/lfdChunkHeader; i++ {
		rec := table[i*lfdChunkHeader:]
		typ := strings.TrimRight(string(rec[:lfdTypeLen]), "\x00")
		name := strings.TrimRight(string(rec[lfdTypeLen:lfdTypeLen+lfdNameLen]), "\x00")
		entrySize := binary.LittleEndian.Uint32(rec[12:16])

		// Each resource chunk repeats the 16-byte header before its data.
		payloadOffset := offset + lfdChunkHeader
		if payloadOffset+int64(entrySize) > size {
			return formatErr(ErrTruncated, offset, "resource %q.%s past end of file", name, typ)
		}

		e := &Entry{
			name:       lfdEntryName(name, typ),
			state:      StateUnloaded,
			offset:     payloadOffset,
			storedSize: entrySize,
			fullSize:   entrySize,
			aux:        typ,
		}
		e.typ = sniffStoredType(e.name, entrySize)
		a.root.entries = append(a.root.entries, e)
		e.parent = a.root

		offset = payloadOffset + int64(entrySize)
	}

	h.ra = src

	return nil
}

// lfdEntryName joins a resource name and type tag into "NAME.typ".
func lfdEntryName(name, typ string) string {
	if typ == "" {
		return name
	}

	return name + "." + strings.ToLower(typ)
}

// splitLfdName splits an entry name back into name and 4-byte type tag.
// Renamed entries derive the tag from their extension.
func splitLfdName(e *Entry) (string, string, error) {
	name := e.name
	typ := e.aux
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		ext := strings.ToUpper(name[idx+1:])
		name = name[:idx]
		if typ == "" || !strings.EqualFold(typ, ext) {
			typ = ext
		}
	}

	if len(name) > lfdNameLen {
		return "", "", fmt.Errorf("%w: %q exceeds %d bytes for lfd", ErrNameTooLong, name, lfdNameLen)
	}
	if len(typ) > lfdTypeLen {
		return "", "", fmt.Errorf("%w: type tag %q exceeds %d bytes for lfd", ErrNameTooLong, typ, lfdTypeLen)
	}

	return strings.ToUpper(name), typ, nil
}

// Write serializes RMAP, the record table, then one chunk per resource.
// Unmodified archives rewrite byte-identically: the layout has no padding
// and chunk order follows tree order.
func (h *lfdHandler) Write(a *Archive, w io.Writer) error {
	entries := a.root.entries
	if len(a.root.subdirs) > 0 {
		return formatErr(ErrUnsupportedVariant, -1, "lfd holds no subdirectories")
	}
	if err := checkEntryCount(len(entries)); err != nil {
		return err
	}

	names := make([]string, len(entries))
	types := make([]string, len(entries))
	payloads := make([][]byte, len(entries))
	for i, e := range entries {
		name, typ, err := splitLfdName(e)
		if err != nil {
			return err
		}

		data, err := a.ReadEntry(e)
		if err != nil {
			return err
		}

		names[i] = name
		types[i] = typ
		payloads[i] = data
	}

	writeChunkHeader := func(typ, name string, size uint32) error {
		var rec [lfdChunkHeader]byte
		copy(rec[:lfdTypeLen], typ)
		copy(rec[lfdTypeLen:lfdTypeLen+lfdNameLen], name)
		binary.LittleEndian.PutUint32(rec[12:16], size)
		_, err := w.Write(rec[:])
		return err
	}

	if err := writeChunkHeader("RMAP", "resource", uint32(len(entries)*lfdChunkHeader)); err != nil {
		return fmt.Errorf("write RMAP header: %w", err)
	}

	for i := range entries {
		if err := writeChunkHeader(types[i], names[i], uint32(len(payloads[i]))); err != nil {
			return fmt.Errorf("write RMAP record %q: %w", entries[i].name, err)
		}
	}

	for i, e := range entries {
		if err := writeChunkHeader(types[i], names[i], uint32(len(payloads[i]))); err != nil {
			return fmt.Errorf("write chunk header %q: %w", e.name, err)
		}

		if _, err := w.Write(payloads[i]); err != nil {
			return fmt.Errorf("write chunk %q: %w", e.name, err)
		}
	}

	return nil
}

// LoadEntryData reads one resource payload from backing storage.
func (h *lfdHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	return readStoredPayload(h.ra, e)
}
