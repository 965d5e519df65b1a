// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/woozymasta/lzss"
)

// WAD binary layout constants.
const (
	wadHeaderSize = 12
	wadDirEntry   = 16
	wadNameLen    = 8
	// wadCompressFlag marks an LZSS-compressed lump in console WADs: the
	// high bit of the first name byte.
	wadCompressFlag = 0x80
)

// wadHandler reads and writes Doom IWAD/PWAD lump tables, including the
// console variant that stores individual lumps LZSS-compressed.
type wadHandler struct {
	ra   io.ReaderAt
	iwad bool
}

// Kind returns FormatWad.
func (h *wadHandler) Kind() FormatKind {
	return FormatWad
}

// Open parses the lump directory into the archive's root. Lump payloads
// stay unloaded; only the index is read eagerly.
func (h *wadHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	var header [wadHeaderSize]byte
	if _, err := src.ReadAt(header[:], 0); err != nil {
		return formatErr(ErrTruncated, 0, "short header")
	}

	magic := string(header[:4])
	if magic != "IWAD" && magic != "PWAD" {
		return formatErr(ErrBadMagic, 0, "magic %q", magic)
	}

	numLumps := binary.LittleEndian.Uint32(header[4:8])
	dirOffset := int64(binary.LittleEndian.Uint32(header[8:12]))
	dirEnd := dirOffset + int64(numLumps)*wadDirEntry
	if dirOffset < wadHeaderSize || dirEnd > size {
		return formatErr(ErrTruncated, dirOffset, "directory of %d lumps past end of file", numLumps)
	}

	dir := make([]byte, numLumps*wadDirEntry)
	if _, err := src.ReadAt(dir, dirOffset); err != nil {
		return formatErr(ErrTruncated, dirOffset, "short directory")
	}

	type rawLump struct {
		offset     int64
		fullSize   uint32
		name       string
		compressed bool
	}

	lumps := make([]rawLump, numLumps)
	for i := range lumps {
		rec := dir[i*wadDirEntry:]
		lump := rawLump{
			offset:   int64(binary.LittleEndian.Uint32(rec[0:4])),
			fullSize: binary.LittleEndian.Uint32(rec[4:8]),
		}

		nameBytes := make([]byte, wadNameLen)
		copy(nameBytes, rec[8:16])
		if nameBytes[0]&wadCompressFlag != 0 {
			lump.compressed = true
			nameBytes[0] &^= wadCompressFlag
		}
		lump.name = strings.TrimRight(string(nameBytes), "\x00")

		if lump.fullSize > 0 && (lump.offset < wadHeaderSize || lump.offset > size) {
			return formatErr(ErrTruncated, dirOffset+int64(i)*wadDirEntry, "lump %q offset out of bounds", lump.name)
		}

		lumps[i] = lump
	}

	for i, lump := range lumps {
		e := &Entry{
			name:     lump.name,
			state:    StateUnloaded,
			offset:   lump.offset,
			fullSize: lump.fullSize,
		}

		stored := int64(lump.fullSize)
		if lump.compressed {
			// Console WADs store the uncompressed size in the directory;
			// the stored span runs to the next lump (or the directory).
			e.compressed = true
			end := dirOffset
			if i+1 < len(lumps) && lumps[i+1].fullSize > 0 {
				end = lumps[i+1].offset
			}
			stored = end - lump.offset
		}

		if stored < 0 || lump.offset+stored > size {
			return formatErr(ErrTruncated, lump.offset, "lump %q payload out of bounds", lump.name)
		}
		e.storedSize = uint32(stored)
		e.typ = sniffStoredType(lump.name, lump.fullSize)

		a.root.entries = append(a.root.entries, e)
		e.parent = a.root
	}

	h.ra = src
	h.iwad = magic == "IWAD"

	return nil
}

// Write serializes the tree as [header][lump payloads][directory]. For an
// unmodified archive opened from that layout the output is byte-identical:
// compressed lumps are copied in stored form, names and order are preserved.
func (h *wadHandler) Write(a *Archive, w io.Writer) error {
	entries := a.root.entries
	if len(a.root.subdirs) > 0 {
		return formatErr(ErrUnsupportedVariant, -1, "wad holds no subdirectories")
	}
	if err := checkEntryCount(len(entries)); err != nil {
		return err
	}

	payloads := make([][]byte, len(entries))
	compressed := make([]bool, len(entries))
	fullSizes := make([]uint32, len(entries))
	var dataSize int64
	for i, e := range entries {
		raw, keepCompressed, err := h.lumpPayloadForWrite(a, e)
		if err != nil {
			return err
		}

		payloads[i] = raw
		compressed[i] = keepCompressed
		fullSizes[i] = e.fullSize
		if !keepCompressed {
			fullSizes[i] = uint32(len(raw))
		}
		dataSize += int64(len(raw))
	}

	if wadHeaderSize+dataSize > int64(^uint32(0)) {
		return formatErr(ErrSizeOverflow, -1, "payload exceeds 4 GiB directory offset")
	}

	magic := "PWAD"
	if h.iwad {
		magic = "IWAD"
	}

	var header [wadHeaderSize]byte
	copy(header[:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(entries)))
	binary.LittleEndian.PutUint32(header[8:12], uint32(wadHeaderSize+dataSize))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	offset := uint32(wadHeaderSize)
	offsets := make([]uint32, len(entries))
	for i, payload := range payloads {
		offsets[i] = offset
		if len(payload) == 0 {
			// Zero-length markers conventionally point at the running offset.
			continue
		}

		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write lump %q: %w", entries[i].name, err)
		}

		offset += uint32(len(payload))
	}

	var rec [wadDirEntry]byte
	for i, e := range entries {
		binary.LittleEndian.PutUint32(rec[0:4], offsets[i])
		binary.LittleEndian.PutUint32(rec[4:8], fullSizes[i])

		name := strings.ToUpper(e.name)
		for j := 0; j < wadNameLen; j++ {
			rec[8+j] = 0
			if j < len(name) {
				rec[8+j] = name[j]
			}
		}
		if compressed[i] {
			rec[8] |= wadCompressFlag
		}

		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("write directory: %w", err)
		}
	}

	return nil
}

// lumpPayloadForWrite returns the bytes to store for one lump. Untouched
// compressed lumps are copied in stored (still compressed) form; everything
// else is written uncompressed.
func (h *wadHandler) lumpPayloadForWrite(a *Archive, e *Entry) ([]byte, bool, error) {
	if e.state == StateUnloaded {
		raw, err := h.rawLump(e)
		if err != nil {
			return nil, false, err
		}

		return raw, e.compressed, nil
	}

	return e.data, false, nil
}

// LoadEntryData extracts one lump, decompressing the console variant.
func (h *wadHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	raw, err := h.rawLump(e)
	if err != nil {
		return nil, err
	}

	if !e.compressed {
		return raw, nil
	}

	var out bytes.Buffer
	out.Grow(int(e.fullSize))
	if _, err := lzss.DecompressToWriter(&out, bytes.NewReader(raw), int(e.fullSize), nil); err != nil {
		return nil, fmt.Errorf("decompress lump %q: %w", e.name, err)
	}

	return out.Bytes(), nil
}

// rawLump reads one lump's stored bytes from backing storage.
func (h *wadHandler) rawLump(e *Entry) ([]byte, error) {
	if h.ra == nil {
		return nil, fmt.Errorf("%w: %q", ErrDataUnavailable, e.name)
	}

	raw := make([]byte, e.storedSize)
	if _, err := io.ReadFull(io.NewSectionReader(h.ra, e.offset, int64(e.storedSize)), raw); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDataUnavailable, e.name, err)
	}

	return raw, nil
}
