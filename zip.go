// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding/charmap"
)

// zipHandler reads and writes zip containers through the central directory.
// Entry payloads are extracted lazily from the kept reader.
type zipHandler struct {
	zr *zip.Reader
}

// Kind returns FormatZip.
func (h *zipHandler) Kind() FormatKind {
	return FormatZip
}

// Open parses the central directory and builds the nested tree. A zip whose
// central directory is cut mid-record fails with ErrTruncated and leaves
// the archive tree empty.
func (h *zipHandler) Open(a *Archive, src io.ReaderAt, size int64) error {
	if src == nil {
		return ErrNilReader
	}

	zr, err := zip.NewReader(src, size)
	if err != nil {
		// The signature probe already matched, so a reader failure here
		// means the directory structures are damaged, not a foreign format.
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return formatErr(ErrTruncated, size, "central directory unreadable: %v", err)
		}

		return formatErr(ErrUnsupportedVariant, -1, "%v", err)
	}

	for i, f := range zr.File {
		name := zipEntryName(f)
		isDir := strings.HasSuffix(name, "/")
		parts := splitTreePath(name)
		if len(parts) == 0 {
			continue
		}

		if isDir {
			a.root.makeDir(name)
			continue
		}

		dir := a.root
		if len(parts) > 1 {
			dir = a.root.makeDir(strings.Join(parts[:len(parts)-1], "/"))
		}

		if f.UncompressedSize64 > uint64(^uint32(0)) {
			return formatErr(ErrSizeOverflow, -1, "entry %q exceeds 4 GiB", name)
		}

		e := &Entry{
			name:       parts[len(parts)-1],
			state:      StateUnloaded,
			index:      i,
			fullSize:   uint32(f.UncompressedSize64),
			compressed: f.Method == zip.Deflate,
		}
		e.typ = sniffStoredType(e.name, e.fullSize)

		dir.entries = append(dir.entries, e)
		e.parent = dir
	}

	h.zr = zr

	return nil
}

// zipEntryName returns the entry path, decoding legacy CP437 names when the
// UTF-8 flag is absent and the raw bytes are not plain ASCII.
func zipEntryName(f *zip.File) string {
	if !f.NonUTF8 || isASCIIName(f.Name) {
		return f.Name
	}

	decoded, err := charmap.CodePage437.NewDecoder().String(f.Name)
	if err != nil {
		return f.Name
	}

	return decoded
}

// isASCIIName reports whether the name contains only ASCII bytes.
func isASCIIName(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return false
		}
	}

	return true
}

// Write serializes the tree as a canonical zip: entries in tree order,
// deflate for payloads, store for zero-length entries, zeroed timestamps.
// Zip layout never round-trips foreign archives byte-exactly; the output is
// deterministic instead.
func (h *zipHandler) Write(a *Archive, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := h.writeDir(a, zw, a.root)
	if closeErr := zw.Close(); err == nil {
		err = closeErr
	}

	return err
}

// writeDir writes one directory's entries then recurses into subdirectories.
// Empty directories get an explicit "name/" record so they survive reopen.
func (h *zipHandler) writeDir(a *Archive, zw *zip.Writer, d *Dir) error {
	if !d.IsRoot() && len(d.entries) == 0 && len(d.subdirs) == 0 {
		header := &zip.FileHeader{Name: zipPathOf(d) + "/"}
		if _, err := zw.CreateHeader(header); err != nil {
			return fmt.Errorf("write directory record %q: %w", d.name, err)
		}
	}

	for _, e := range d.entries {
		data, err := a.ReadEntry(e)
		if err != nil {
			return err
		}

		name := strings.TrimPrefix(e.Path(), "/")
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if len(data) == 0 {
			header.Method = zip.Store
		}

		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("write entry header %q: %w", name, err)
		}

		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write entry %q: %w", name, err)
		}
	}

	for _, sub := range d.subdirs {
		if err := h.writeDir(a, zw, sub); err != nil {
			return err
		}
	}

	return nil
}

// zipPathOf returns the zip record path of a directory (no leading slash).
func zipPathOf(d *Dir) string {
	return strings.TrimPrefix(d.Path(), "/")
}

// LoadEntryData extracts one entry payload through the kept zip reader.
// Stored CRCs are verified by the reader; a mismatch surfaces as
// ErrChecksumMismatch.
func (h *zipHandler) LoadEntryData(a *Archive, e *Entry) ([]byte, error) {
	if h.zr == nil || e.index < 0 || e.index >= len(h.zr.File) {
		return nil, fmt.Errorf("%w: %q", ErrDataUnavailable, e.name)
	}

	rc, err := h.zr.File[e.index].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrDataUnavailable, e.name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		if errors.Is(err, zip.ErrChecksum) {
			return nil, formatErr(ErrChecksumMismatch, -1, "entry %q", e.name)
		}

		return nil, fmt.Errorf("%w: %q: %v", ErrDataUnavailable, e.name, err)
	}

	return data, nil
}
