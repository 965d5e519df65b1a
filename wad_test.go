// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/woozymasta/lzss"
)

// TestWadOpen_Manual verifies parsing of a hand-built PWAD.
func TestWadOpen_Manual(t *testing.T) {
	t.Parallel()

	image := buildWad(t, "PWAD", []wadLump{
		{name: "DEMO1", data: []byte("demo one")},
		{name: "S_START"},
		{name: "TROOA1", data: []byte("sprite")},
		{name: "S_END"},
	})

	a := mustOpenBytes(t, image, "test.wad")
	if a.Kind() != FormatWad {
		t.Fatalf("kind: got %s, want wad", a.Kind())
	}

	entries := a.Root().Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 lumps, got %d", len(entries))
	}
	if entries[0].Name() != "DEMO1" || entries[0].Size() != 8 {
		t.Errorf("lump 0: name=%q size=%d", entries[0].Name(), entries[0].Size())
	}
	if entries[1].Type() != TypeMarker {
		t.Errorf("S_START type: got %s, want marker", entries[1].Type())
	}
	if entries[0].State() != StateUnloaded {
		t.Errorf("lump 0 state: got %s, want unloaded", entries[0].State())
	}

	data, err := a.ReadEntry(entries[0])
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "demo one" {
		t.Errorf("data: got %q", data)
	}
	if entries[0].State() != StateLoaded {
		t.Errorf("state after read: got %s, want loaded", entries[0].State())
	}
}

// TestWadRoundTrip_ByteIdentical verifies an unmodified WAD rewrites to the
// exact input bytes.
func TestWadRoundTrip_ByteIdentical(t *testing.T) {
	t.Parallel()

	image := buildWad(t, "IWAD", []wadLump{
		{name: "PLAYPAL", data: bytes.Repeat([]byte{1, 2, 3}, 256)},
		{name: "F_START"},
		{name: "FLOOR1", data: []byte("flat bytes")},
		{name: "F_END"},
		{name: "CREDITS", data: []byte("text lump")},
	})

	a := mustOpenBytes(t, image, "test.wad")
	out := rewrite(t, a)
	if !bytes.Equal(out, image) {
		t.Fatalf("rewrite differs: got %d bytes, want %d", len(out), len(image))
	}
	if a.Dirty() {
		t.Error("archive dirty after write")
	}
}

// TestWadJaguarLump verifies LZSS decode of console-variant lumps and that
// an untouched compressed lump is copied back in stored form.
func TestWadJaguarLump(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte("jaguar map data "), 32)
	compressed, err := lzss.Compress(original, lzss.DefaultCompressOptions())
	if err != nil {
		t.Fatalf("compress fixture: %v", err)
	}

	image := buildWad(t, "PWAD", []wadLump{
		{name: "THINGS", data: compressed, fullSize: uint32(len(original)), compressed: true},
		{name: "TAIL", data: []byte("plain")},
	})

	a := mustOpenBytes(t, image, "jaguar.wad")
	e := a.Root().EntryAt(0)
	if e.Size() != uint32(len(original)) {
		t.Fatalf("size: got %d, want %d", e.Size(), len(original))
	}

	data, err := a.ReadEntry(e)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if !bytes.Equal(data, original) {
		t.Fatalf("decompressed payload differs")
	}

	// Reopen so the lump is untouched again, then check stored-form copy.
	b := mustOpenBytes(t, image, "jaguar.wad")
	out := rewrite(t, b)
	if !bytes.Equal(out, image) {
		t.Fatal("compressed lump not copied byte-identically")
	}
}

// TestWadMultiMapRoundTrip verifies a WAD repeating lump names across maps
// rewrites byte-identically and accepts further duplicate-named lumps. Lump
// names repeat once per map in real WADs, so name uniqueness never applies.
func TestWadMultiMapRoundTrip(t *testing.T) {
	t.Parallel()

	mapLumps := func(header string) []wadLump {
		return []wadLump{
			{name: header, data: []byte{}, fullSize: 0},
			{name: "THINGS", data: []byte("t")},
			{name: "LINEDEFS", data: []byte("l")},
			{name: "SIDEDEFS", data: []byte("s")},
			{name: "VERTEXES", data: []byte("v")},
			{name: "SECTORS", data: []byte("c")},
		}
	}

	image := buildWad(t, "PWAD", append(mapLumps("MAP01"), mapLumps("MAP02")...))
	a := mustOpenBytes(t, image, "episode.wad")
	if got := len(a.DetectMaps()); got != 2 {
		t.Fatalf("maps detected: got %d, want 2", got)
	}

	out := rewrite(t, a)
	if !bytes.Equal(out, image) {
		t.Fatalf("multi-map rewrite differs: got %d bytes, want %d", len(out), len(image))
	}

	b := mustOpenBytes(t, out, "episode.wad")
	if got := len(b.DetectMaps()); got != 2 {
		t.Fatalf("maps after reopen: got %d, want 2", got)
	}

	// A third lump with an already-used name inserts without conflict.
	if _, err := b.AddEntry(nil, NewEntry("THINGS", []byte("t3")), -1); err != nil {
		t.Fatalf("AddEntry duplicate lump name: %v", err)
	}
	if err := b.Write(&bytes.Buffer{}); err != nil {
		t.Fatalf("Write with duplicate lump names: %v", err)
	}
}

// TestWadOpen_Truncated verifies a directory past EOF fails with ErrTruncated.
func TestWadOpen_Truncated(t *testing.T) {
	t.Parallel()

	image := buildWad(t, "PWAD", []wadLump{{name: "DEMO1", data: []byte("x")}})
	cut := image[:len(image)-8]

	_, err := OpenBytes(cut, "cut.wad", OpenOptions{})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("error: got %v, want ErrTruncated", err)
	}

	var ferr *FormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("error is not a *FormatError: %v", err)
	}
}

// TestWadOpen_BadMagic verifies a forced wrong format reports ErrBadMagic.
func TestWadOpen_BadMagic(t *testing.T) {
	t.Parallel()

	_, err := OpenBytes([]byte("JUNKJUNKJUNKJUNK"), "x.bin", OpenOptions{Format: FormatWad})
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("error: got %v, want ErrBadMagic", err)
	}
}

// TestWadWrite_Canonical verifies an edited WAD serializes deterministically
// with the new lump in place.
func TestWadWrite_Canonical(t *testing.T) {
	t.Parallel()

	image := buildWad(t, "PWAD", []wadLump{
		{name: "FIRST", data: []byte("one")},
		{name: "LAST", data: []byte("two")},
	})

	a := mustOpenBytes(t, image, "edit.wad")
	if _, err := a.AddEntry(nil, NewEntry("MIDDLE", []byte("three")), 1); err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if !a.Dirty() {
		t.Fatal("archive not dirty after AddEntry")
	}

	out1 := rewrite(t, a)
	reopened := mustOpenBytes(t, out1, "edit.wad")

	names := []string{"FIRST", "MIDDLE", "LAST"}
	for i, want := range names {
		if got := reopened.Root().EntryAt(i).Name(); got != want {
			t.Errorf("lump %d: got %q, want %q", i, got, want)
		}
	}

	out2 := rewrite(t, reopened)
	if !bytes.Equal(out1, out2) {
		t.Fatal("canonical output not stable across reopen")
	}
}
