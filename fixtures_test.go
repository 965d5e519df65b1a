// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// wadLump describes one lump for buildWad. data holds the stored bytes; for
// compressed lumps fullSize carries the uncompressed length.
type wadLump struct {
	name       string
	data       []byte
	fullSize   uint32
	compressed bool
}

// buildWad assembles a WAD image as [header][payloads][directory], the same
// layout the writer produces.
func buildWad(t *testing.T, magic string, lumps []wadLump) []byte {
	t.Helper()

	var payload bytes.Buffer
	offsets := make([]uint32, len(lumps))
	offset := uint32(wadHeaderSize)
	for i, l := range lumps {
		offsets[i] = offset
		payload.Write(l.data)
		offset += uint32(len(l.data))
	}

	var buf bytes.Buffer
	header := make([]byte, wadHeaderSize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(lumps)))
	binary.LittleEndian.PutUint32(header[8:12], wadHeaderSize+uint32(payload.Len()))
	buf.Write(header)
	buf.Write(payload.Bytes())

	for i, l := range lumps {
		rec := make([]byte, wadDirEntry)
		binary.LittleEndian.PutUint32(rec[0:4], offsets[i])
		full := l.fullSize
		if full == 0 && !l.compressed {
			full = uint32(len(l.data))
		}
		binary.LittleEndian.PutUint32(rec[4:8], full)
		copy(rec[8:16], strings.ToUpper(l.name))
		if l.compressed {
			rec[8] |= wadCompressFlag
		}
		buf.Write(rec)
	}

	return buf.Bytes()
}

// mustOpenBytes opens an in-memory archive or fails the test.
func mustOpenBytes(t *testing.T, data []byte, filename string) *Archive {
	t.Helper()

	a, err := OpenBytes(data, filename, OpenOptions{})
	if err != nil {
		t.Fatalf("OpenBytes(%s): %v", filename, err)
	}
	t.Cleanup(func() { _ = a.Close() })

	return a
}

// namedEntry describes one entry for the flat-table builders.
type namedEntry struct {
	name string
	data []byte
}

// buildGrp assembles a GRP image as [header][records][payloads].
func buildGrp(t *testing.T, entries []namedEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	header := make([]byte, grpDirEntry)
	copy(header, grpMagic)
	binary.LittleEndian.PutUint32(header[grpMagicLen:], uint32(len(entries)))
	buf.Write(header)

	for _, e := range entries {
		rec := make([]byte, grpDirEntry)
		copy(rec[:grpNameLen], strings.ToUpper(e.name))
		binary.LittleEndian.PutUint32(rec[grpNameLen:], uint32(len(e.data)))
		buf.Write(rec)
	}

	for _, e := range entries {
		buf.Write(e.data)
	}

	return buf.Bytes()
}

// buildPak assembles a PAK image as [header][payloads][directory]. Entry
// names may carry slash-separated paths.
func buildPak(t *testing.T, entries []namedEntry) []byte {
	t.Helper()

	var payload bytes.Buffer
	offsets := make([]uint32, len(entries))
	offset := uint32(pakHeaderSize)
	for i, e := range entries {
		offsets[i] = offset
		payload.Write(e.data)
		offset += uint32(len(e.data))
	}

	var buf bytes.Buffer
	header := make([]byte, pakHeaderSize)
	copy(header, "PACK")
	binary.LittleEndian.PutUint32(header[4:8], pakHeaderSize+uint32(payload.Len()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)*pakDirEntry))
	buf.Write(header)
	buf.Write(payload.Bytes())

	for i, e := range entries {
		rec := make([]byte, pakDirEntry)
		copy(rec[:56], e.name)
		binary.LittleEndian.PutUint32(rec[56:60], offsets[i])
		binary.LittleEndian.PutUint32(rec[60:64], uint32(len(e.data)))
		buf.Write(rec)
	}

	return buf.Bytes()
}

// buildRes assembles a Res! image as [header][payloads][directory].
func buildRes(t *testing.T, entries []namedEntry) []byte {
	t.Helper()

	var payload bytes.Buffer
	offsets := make([]uint32, len(entries))
	offset := uint32(resHeaderSize)
	for i, e := range entries {
		offsets[i] = offset
		payload.Write(e.data)
		offset += uint32(len(e.data))
	}

	var buf bytes.Buffer
	header := make([]byte, resHeaderSize)
	copy(header, "Res!")
	binary.LittleEndian.PutUint32(header[4:8], resHeaderSize+uint32(payload.Len()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)*resDirEntry))
	buf.Write(header)
	buf.Write(payload.Bytes())

	for i, e := range entries {
		rec := make([]byte, resDirEntry)
		copy(rec[:resNameLen], strings.ToUpper(e.name))
		binary.LittleEndian.PutUint32(rec[8:12], offsets[i])
		binary.LittleEndian.PutUint32(rec[12:16], uint32(len(e.data)))
		buf.Write(rec)
	}

	return buf.Bytes()
}

// lfdResource describes one resource for buildLfd.
type lfdResource struct {
	typ  string
	name string
	data []byte
}

// buildLfd assembles an LFD image: RMAP chunk, record table, then one chunk
// per resource repeating the 16-byte header.
func buildLfd(t *testing.T, resources []lfdResource) []byte {
	t.Helper()

	chunkHeader := func(typ, name string, size uint32) []byte {
		rec := make([]byte, lfdChunkHeader)
		copy(rec[:lfdTypeLen], typ)
		copy(rec[lfdTypeLen:lfdTypeLen+lfdNameLen], name)
		binary.LittleEndian.PutUint32(rec[12:16], size)
		return rec
	}

	var buf bytes.Buffer
	buf.Write(chunkHeader("RMAP", "resource", uint32(len(resources)*lfdChunkHeader)))
	for _, r := range resources {
		buf.Write(chunkHeader(r.typ, r.name, uint32(len(r.data))))
	}
	for _, r := range resources {
		buf.Write(chunkHeader(r.typ, r.name, uint32(len(r.data))))
		buf.Write(r.data)
	}

	return buf.Bytes()
}

// buildZip assembles a zip image with the given entries. Names ending in "/"
// become directory records.
func buildZip(t *testing.T, entries []namedEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		header := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if len(e.data) == 0 {
			header.Method = zip.Store
		}

		fw, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}

	return buf.Bytes()
}

// rewrite serializes an archive to memory or fails the test.
func rewrite(t *testing.T, a *Archive) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := a.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	return buf.Bytes()
}
