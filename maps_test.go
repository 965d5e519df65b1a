// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doomMapFixture returns the full lump set of one complete Doom map.
func doomMapFixture(header string) []wadLump {
	lumps := []wadLump{{name: header, data: nil}}
	for _, name := range []string{
		"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
		"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
	} {
		lumps = append(lumps, wadLump{name: name, data: []byte{0}})
	}

	return lumps
}

// TestDetectMaps_TwoDoomMaps covers range boundaries between back-to-back
// maps.
func TestDetectMaps_TwoDoomMaps(t *testing.T) {
	t.Parallel()

	lumps := append(doomMapFixture("MAP01"), doomMapFixture("MAP02")...)
	lumps = append(lumps, wadLump{name: "CREDITS", data: []byte("text")})

	a := mustOpenBytes(t, buildWad(t, "PWAD", lumps), "maps.wad")
	maps := a.DetectMaps()
	require.Len(t, maps, 2)

	assert.Equal(t, "MAP01", maps[0].Name)
	assert.Equal(t, MapFormatDoom, maps[0].Format)
	assert.False(t, maps[0].Incomplete)
	assert.Equal(t, 0, maps[0].HeadIndex)
	assert.Equal(t, 10, maps[0].EndIndex)

	assert.Equal(t, "MAP02", maps[1].Name)
	assert.Equal(t, 11, maps[1].HeadIndex)
	assert.Equal(t, 21, maps[1].EndIndex)
}

// TestDetectMaps_Hexen covers BEHAVIOR-based format upgrade.
func TestDetectMaps_Hexen(t *testing.T) {
	t.Parallel()

	lumps := append(doomMapFixture("MAP01"),
		wadLump{name: "BEHAVIOR", data: []byte{0}},
		wadLump{name: "SCRIPTS", data: []byte("#include")},
	)

	a := mustOpenBytes(t, buildWad(t, "PWAD", lumps), "hexen.wad")
	maps := a.DetectMaps()
	require.Len(t, maps, 1)
	assert.Equal(t, MapFormatHexen, maps[0].Format)
	assert.False(t, maps[0].Incomplete)
}

// TestDetectMaps_UDMF covers TEXTMAP..ENDMAP block detection and the
// missing-ENDMAP incomplete flag.
func TestDetectMaps_UDMF(t *testing.T) {
	t.Parallel()

	closed := []wadLump{
		{name: "MAP01"},
		{name: "TEXTMAP", data: []byte("namespace=zdoom;")},
		{name: "ZNODES", data: []byte{0}},
		{name: "ENDMAP"},
		{name: "CREDITS", data: []byte("text")},
	}

	a := mustOpenBytes(t, buildWad(t, "PWAD", closed), "udmf.wad")
	maps := a.DetectMaps()
	require.Len(t, maps, 1)
	assert.Equal(t, MapFormatUDMF, maps[0].Format)
	assert.False(t, maps[0].Incomplete)
	assert.Equal(t, 3, maps[0].EndIndex)

	open := []wadLump{
		{name: "MAP01"},
		{name: "TEXTMAP", data: []byte("namespace=zdoom;")},
		{name: "ZNODES", data: []byte{0}},
	}

	b := mustOpenBytes(t, buildWad(t, "PWAD", open), "udmf.wad")
	maps = b.DetectMaps()
	require.Len(t, maps, 1)
	assert.True(t, maps[0].Incomplete)
}

// TestDetectMaps_Partial covers the incomplete flag for maps missing
// required lumps.
func TestDetectMaps_Partial(t *testing.T) {
	t.Parallel()

	lumps := []wadLump{
		{name: "E1M1"},
		{name: "THINGS", data: []byte{0}},
		{name: "LINEDEFS", data: []byte{0}},
		{name: "CREDITS", data: []byte("text")},
	}

	a := mustOpenBytes(t, buildWad(t, "PWAD", lumps), "partial.wad")
	maps := a.DetectMaps()
	require.Len(t, maps, 1)
	assert.True(t, maps[0].Incomplete)
	assert.Equal(t, 2, maps[0].EndIndex)
}

// TestDetectMaps_FalsePositiveGuard covers reserved names outside a header
// context.
func TestDetectMaps_FalsePositiveGuard(t *testing.T) {
	t.Parallel()

	// A stray SECTORS lump with no header and no THINGS/LINEDEFS following
	// anything must not open a map.
	lumps := []wadLump{
		{name: "CREDITS", data: []byte("text")},
		{name: "SECTORS", data: []byte{0}},
		{name: "MUSIC", data: []byte("notes")},
	}

	a := mustOpenBytes(t, buildWad(t, "PWAD", lumps), "stray.wad")
	assert.Empty(t, a.DetectMaps())
}

// TestDetectMaps_Idempotent covers repeated scans of an unchanged snapshot.
func TestDetectMaps_Idempotent(t *testing.T) {
	t.Parallel()

	a := mustOpenBytes(t, buildWad(t, "PWAD", doomMapFixture("MAP01")), "maps.wad")
	first := a.DetectMaps()
	second := a.DetectMaps()
	assert.Equal(t, first, second)
}

// TestDetectMaps_TreeFormatsYieldNone covers the flat-format gate.
func TestDetectMaps_TreeFormatsYieldNone(t *testing.T) {
	t.Parallel()

	image := buildZip(t, []namedEntry{{name: "MAP01", data: nil}, {name: "THINGS", data: []byte{0}}})
	a := mustOpenBytes(t, image, "maps.zip")
	assert.Nil(t, a.DetectMaps())
}
