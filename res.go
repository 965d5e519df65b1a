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

// RES binary layout constants.
const (
	resHeaderSize = 12
	resDirEntry   = 16
	resNameLen    = 8
)

// resHandler reads and writes Res! table containers: a 12-byte header
// pointing at a directory of {name, offset, size} records.
type resHandler struct {
	ra io.ReaderAt
}

// Kind returns FormatRes.
func (h *resHandler) Kind() FormatKind {
	return FormatRes
}

// Open parses the directory table referenced by the header.
func (h *resHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	var header [resHeaderSize]byte
	if _, err := src.ReadAt(header[:], 0); err != nil {
		return formatErr(ErrTruncated, 0, "short header")
	}

	if string(header[:4]) != "Res!" {
		return formatErr(ErrBadMagic, 0, "magic %q", string(header[:4]))
	}

	dirOffset := int64(binary.LittleEndian.Uint32(header[4:8]))
	dirSize := int64(binary.LittleEndian.Uint32(header[8:12]))
	if dirSize%resDirEntry != 0 {
		return formatErr(ErrUnsupportedVariant, dirOffset, "directory size %d not a record multiple", dirSize)
	}
	if dirOffset < resHeaderSize || dirOffset+dirSize > size {
		return formatErr(ErrTruncated, dirOffset, "directory past end of file")
	}

	table := make([]byte, dirSize)
	if _, err := src.ReadAt(table, dirOffset); err != nil {
		return formatErr(ErrTruncated, dirOffset, "short directory")
	}

	for i := int64(0); i < dirSize/resDirEntry; i++ {
		rec := table[i*resDirEntry:]
		name := strings.TrimRight(string(rec[:resNameLen]), "\x00")
		offset := int64(binary.LittleEndian.Uint32(rec[8:12]))
		entrySize := binary.LittleEndian.Uint32(rec[12:16])
		if offset < resHeaderSize || offset+int64(entrySize) > size {
			return formatErr(ErrTruncated, dirOffset+i*resDirEntry, "entry %q payload out of bounds", name)
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
	}

	h.ra = src

	return nil
}

// Write serializes header, payloads in tree order, then the directory.
// Unmodified archives opened from that layout rewrite byte-identically.
func (h *resHandler) Write(a *Archive, w io.Writer) error {
	entries := a.root.entries
	if len(a.root.subdirs) > 0 {
		return formatErr(ErrUnsupportedVariant, -1, "res holds no subdirectories")
	}
	if err := checkEntryCount(len(entries)); err != nil {
		return err
	}

	payloads := make([][]byte, len(entries))
	var dataSize int64
	for i, e := range entries {
		data, err := a.ReadEntry(e)
		if err != nil {
			return err
		}

		payloads[i] = data
		dataSize += int64(len(data))
	}

	if resHeaderSize+dataSize+int64(len(entries))*resDirEntry > int64(^uint32(0)) {
		return formatErr(ErrSizeOverflow, -1, "archive exceeds 4 GiB")
	}

	var header [resHeaderSize]byte
	copy(header[:4], "Res!")
	binary.LittleEndian.PutUint32(header[4:8], uint32(resHeaderSize+dataSize))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)*resDirEntry))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	offset := uint32(resHeaderSize)
	offsets := make([]uint32, len(entries))
	for i, payload := range payloads {
		offsets[i] = offset
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write entry %q: %w", entries[i].name, err)
		}

		offset += uint32(len(payload))
	}

	var rec [resDirEntry]byte
	for i, e := range entries {
		for j := range rec {
			rec[j] = 0
		}
		copy(rec[:resNameLen], strings.ToUpper(e.name))
		binary.LittleEndian.PutUint32(rec[8:12], offsets[i])
		binary.LittleEndian.PutUint32(rec[12:16], uint32(len(payloads[i])))
		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write directory record %q: %w", e.name, err)
		}
	}

	return nil
}

// LoadEntryData reads one payload from backing storage.
func (h *resHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	return readStoredPayload(h.ra, e)
}
