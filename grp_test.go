// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"errors"
	"testing"
)

// TestGrpOpen_Manual verifies sequential offset derivation from the record
// table.
func TestGrpOpen_Manual(t *testing.T) {
	t.Parallel()

	image := buildGrp(t, []namedEntry{
		{name: "PALETTE.DAT", data: bytes.Repeat([]byte{9}, 768)},
		{name: "E1L1.MAP", data: []byte("map bytes")},
	})

	a := mustOpenBytes(t, image, "duke3d.grp")
	if a.Kind() != FormatGrp {
		t.Fatalf("kind: got %s, want grp", a.Kind())
	}

	entries := a.Root().Entries()
	if len(entries) != 2 {
		t.Fatalf("entry count: got %d, want 2", len(entries))
	}

	data, err := a.ReadEntry(entries[1])
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "map bytes" {
		t.Errorf("second payload: got %q", data)
	}
}

// TestGrpRoundTrip_ByteIdentical verifies an unmodified GRP rewrites to the
// exact input bytes.
func TestGrpRoundTrip_ByteIdentical(t *testing.T) {
	t.Parallel()

	image := buildGrp(t, []namedEntry{
		{name: "TILES000.ART", data: []byte("art data")},
		{name: "LOOKUP.DAT", data: []byte("lookup")},
	})

	a := mustOpenBytes(t, image, "duke3d.grp")
	out := rewrite(t, a)
	if !bytes.Equal(out, image) {
		t.Fatal("rewrite differs from input")
	}
}

// TestGrpOpen_TruncatedTable verifies a record table larger than the file
// fails with ErrTruncated.
func TestGrpOpen_TruncatedTable(t *testing.T) {
	t.Parallel()

	image := buildGrp(t, []namedEntry{{name: "A.DAT", data: []byte("abc")}})
	cut := image[:grpDirEntry+4]

	_, err := OpenBytes(cut, "cut.grp", OpenOptions{})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("error: got %v, want ErrTruncated", err)
	}
}

// TestGrpAddEntry_NameLimit verifies the 12-byte name limit is a mutation
// error, not silent truncation.
func TestGrpAddEntry_NameLimit(t *testing.T) {
	t.Parallel()

	image := buildGrp(t, []namedEntry{{name: "A.DAT", data: []byte("abc")}})
	a := mustOpenBytes(t, image, "duke3d.grp")

	_, err := a.AddEntry(nil, NewEntry("WAY_TOO_LONG_NAME.DAT", nil), -1)
	if !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("error: got %v, want ErrNameTooLong", err)
	}
}
