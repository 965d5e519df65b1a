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

// PAK binary layout constants.
const (
	pakHeaderSize = 12
	pakDirEntry   = 64
	pakPathLen    = 55
)

// pakHandler reads and writes Quake PACK containers: a 12-byte header
// pointing at a trailing directory of 64-byte records. Record names carry
// slash-separated paths, so the tree nests.
type pakHandler struct {
	ra io.ReaderAt
}

// Kind returns FormatPak.
func (h *pakHandler) Kind() FormatKind {
	return FormatPak
}

// Open parses the trailing directory and builds the nested tree.
func (h *pakHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	var header [pakHeaderSize]byte
	if _, err := src.ReadAt(header[:], 0); err != nil {
		return formatErr(ErrTruncated, 0, "short header")
	}

	if string(header[:4]) != "PACK" {
		return formatErr(ErrBadMagic, 0, "magic %q", string(header[:4]))
	}

	dirOffset := int64(binary.LittleEndian.Uint32(header[4:8]))
	dirSize := int64(binary.LittleEndian.Uint32(header[8:12]))
	if dirSize%pakDirEntry != 0 {
		return formatErr(ErrUnsupportedVariant, dirOffset, "directory size %d not a record multiple", dirSize)
	}
	if dirOffset < pakHeaderSize || dirOffset+dirSize > size {
		return formatErr(ErrTruncated, dirOffset, "directory past end of file")
	}

	table := make([]byte, dirSize)
	if _, err := src.ReadAt(table, dirOffset); err != nil {
		return formatErr(ErrTruncated, dirOffset, "short directory")
	}

	for i := int64(0); i < dirSize/pakDirEntry; i++ {
		rec := table[i*pakDirEntry:]
		name := strings.TrimRight(string(rec[:56]), "\x00")
		offset := int64(binary.LittleEndian.Uint32(rec[56:60]))
		entrySize := binary.LittleEndian.Uint32(rec[60:64])
		if offset < pakHeaderSize || offset+int64(entrySize) > size {
			return formatErr(ErrTruncated, dirOffset+i*pakDirEntry, "entry %q payload out of bounds", name)
		}

		parts := splitTreePath(name)
		if len(parts) == 0 {
			return formatErr(ErrUnsupportedVariant, dirOffset+i*pakDirEntry, "empty entry path")
		}

		dir := a.root
		if len(parts) > 1 {
			dir = a.root.makeDir(strings.Join(parts[:len(parts)-1], "/"))
		}

		e := &Entry{
			name:       parts[len(parts)-1],
			state:      StateUnloaded,
			offset:     offset,
			storedSize: entrySize,
			fullSize:   entrySize,
		}
		e.typ = sniffStoredType(e.name, entrySize)
		dir.entries = append(dir.entries, e)
		e.parent = dir
	}

	h.ra = src

	return nil
}

// Write serializes header, payloads in tree pre-order, then the directory.
// An unmodified archive opened from that layout rewrites byte-identically.
func (h *pakHandler) Write(a *Archive, w io.Writer) error {
	type flatEntry struct {
		entry *Entry
		path  string
		data  []byte
	}

	var flat []flatEntry
	var collectErr error
	a.root.walkEntries(true, func(e *Entry) bool {
		data, err := a.ReadEntry(e)
		if err != nil {
			collectErr = err
			return false
		}

		path := strings.TrimPrefix(e.Path(), "/")
		if len(path) > pakPathLen {
			collectErr = fmt.Errorf("%w: %q exceeds %d bytes for pak", ErrNameTooLong, path, pakPathLen)
			return false
		}

		flat = append(flat, flatEntry{entry: e, path: path, data: data})
		return true
	})
	if collectErr != nil {
		return collectErr
	}
	if err := checkEntryCount(len(flat)); err != nil {
		return err
	}

	var dataSize int64
	for _, item := range flat {
		dataSize += int64(len(item.data))
	}
	if pakHeaderSize+dataSize+int64(len(flat))*pakDirEntry > int64(^uint32(0)) {
		return formatErr(ErrSizeOverflow, -1, "archive exceeds 4 GiB")
	}

	var header [pakHeaderSize]byte
	copy(header[:4], "PACK")
	binary.LittleEndian.PutUint32(header[4:8], uint32(pakHeaderSize+dataSize))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(flat)*pakDirEntry))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	offset := uint32(pakHeaderSize)
	offsets := make([]uint32, len(flat))
	for i, item := range flat {
		offsets[i] = offset
		if _, err := w.Write(item.data); err != nil {
			return fmt.Errorf("write entry %q: %w", item.path, err)
		}

		offset += uint32(len(item.data))
	}

	var rec [pakDirEntry]byte
	for i, item := range flat {
		for j := range rec {
			rec[j] = 0
		}
		copy(rec[:56], item.path)
		binary.LittleEndian.PutUint32(rec[56:60], offsets[i])
		binary.LittleEndian.PutUint32(rec[60:64], uint32(len(item.data)))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write directory record %q: %w", item.path, err)
		}
	}

	return nil
}

// LoadEntryData reads one payload from backing storage.
func (h *pakHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	return readStoredPayload(h.ra, e)
}
