// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"errors"
	"testing"
)

// TestResOpen_Manual verifies directory parsing of a hand-built Res! image.
func TestResOpen_Manual(t *testing.T) {
	t.Parallel()

	image := buildRes(t, []namedEntry{
		{name: "SOUNDS", data: []byte("pcm data")},
		{name: "TILES", data: bytes.Repeat([]byte{2}, 128)},
	})

	a := mustOpenBytes(t, image, "game.res")
	if a.Kind() != FormatRes {
		t.Fatalf("kind: got %s, want res", a.Kind())
	}

	entries := a.Root().Entries()
	if len(entries) != 2 {
		t.Fatalf("entry count: got %d, want 2", len(entries))
	}

	data, err := a.ReadEntry(entries[0])
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "pcm data" {
		t.Errorf("payload: got %q", data)
	}
}

// TestResRoundTrip_ByteIdentical verifies an unmodified Res! archive
// rewrites to the exact input bytes.
func TestResRoundTrip_ByteIdentical(t *testing.T) {
	t.Parallel()

	image := buildRes(t, []namedEntry{
		{name: "MUSIC", data: []byte("notes")},
		{name: "SPRITES", data: []byte("cels")},
	})

	a := mustOpenBytes(t, image, "game.res")
	out := rewrite(t, a)
	if !bytes.Equal(out, image) {
		t.Fatal("rewrite differs from input")
	}
}

// TestResOpen_DirectoryOutOfBounds verifies a directory window past EOF
// fails with ErrTruncated.
func TestResOpen_DirectoryOutOfBounds(t *testing.T) {
	t.Parallel()

	image := buildRes(t, []namedEntry{{name: "MUSIC", data: []byte("notes")}})
	cut := image[:len(image)-4]

	_, err := OpenBytes(cut, "cut.res", OpenOptions{})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("error: got %v, want ErrTruncated", err)
	}
}
