// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchFixtureWad builds a WAD with sprite and flat marker ranges.
func searchFixtureWad(t *testing.T) *Archive {
	t.Helper()

	image := buildWad(t, "PWAD", []wadLump{
		{name: "CREDITS", data: []byte("text")},
		{name: "S_START"},
		{name: "TROOA1", data: []byte("sprite a")},
		{name: "TROOA2", data: []byte("sprite b")},
		{name: "S_END"},
		{name: "F_START"},
		{name: "FLOOR1", data: []byte("flat")},
		{name: "F_END"},
	})

	return mustOpenBytes(t, image, "search.wad")
}

// TestSearchGlobAndExact covers glob default and MatchExact opt-out.
func TestSearchGlobAndExact(t *testing.T) {
	t.Parallel()

	a := searchFixtureWad(t)

	hits := a.FindAll(SearchOptions{Pattern: "TROO*"})
	assert.Len(t, hits, 2)

	// The glob star is a literal under MatchExact.
	hits = a.FindAll(SearchOptions{Pattern: "TROO*", MatchExact: true})
	assert.Empty(t, hits)

	hits = a.FindAll(SearchOptions{Pattern: "FLOOR1", MatchExact: true})
	require.Len(t, hits, 1)
	assert.Equal(t, "FLOOR1", hits[0].Name())
}

// TestSearchEmptyPatternMatchesAll covers the match-everything default.
func TestSearchEmptyPatternMatchesAll(t *testing.T) {
	t.Parallel()

	a := searchFixtureWad(t)
	assert.Len(t, a.FindAll(SearchOptions{}), 8)
}

// TestSearchFirstLastOrder covers traversal-order semantics.
func TestSearchFirstLastOrder(t *testing.T) {
	t.Parallel()

	a := searchFixtureWad(t)

	first := a.FindFirst(SearchOptions{Pattern: "TROO*"})
	require.NotNil(t, first)
	assert.Equal(t, "TROOA1", first.Name())

	last := a.FindLast(SearchOptions{Pattern: "TROO*"})
	require.NotNil(t, last)
	assert.Equal(t, "TROOA2", last.Name())

	assert.Nil(t, a.FindFirst(SearchOptions{Pattern: "NOSUCH"}))
}

// TestSearchNamespaceFilter covers marker-range namespace derivation in
// lump archives.
func TestSearchNamespaceFilter(t *testing.T) {
	t.Parallel()

	a := searchFixtureWad(t)

	sprites := a.FindAll(SearchOptions{Namespace: "sprites"})
	require.Len(t, sprites, 2)
	assert.Equal(t, "TROOA1", sprites[0].Name())

	flats := a.FindAll(SearchOptions{Namespace: "flats"})
	require.Len(t, flats, 1)
	assert.Equal(t, "FLOOR1", flats[0].Name())

	// Lumps outside any range, markers included, are global.
	global := a.FindAll(SearchOptions{Namespace: NamespaceGlobal})
	assert.Len(t, global, 5)
	assert.Equal(t, NamespaceGlobal, a.Namespace(a.Root().EntryAt(0)))
}

// TestSearchTreeNamespace covers top-level-directory namespaces in tree
// archives.
func TestSearchTreeNamespace(t *testing.T) {
	t.Parallel()

	image := buildZip(t, []namedEntry{
		{name: "sprites/imp.png", data: []byte("\x89PNG\r\n\x1a\nxxxx")},
		{name: "sprites/demon.png", data: []byte("\x89PNG\r\n\x1a\nyyyy")},
		{name: "readme.txt", data: []byte("top")},
	})

	a := mustOpenBytes(t, image, "mod.pk3")

	hits := a.FindAll(SearchOptions{Namespace: "sprites"})
	assert.Len(t, hits, 2)

	assert.Equal(t, NamespaceGlobal, a.Namespace(a.EntryAt("readme.txt")))
}

// TestSearchScoped covers InDir and SubDirs scoping.
func TestSearchScoped(t *testing.T) {
	t.Parallel()

	image := buildZip(t, []namedEntry{
		{name: "top.txt", data: []byte("t")},
		{name: "sub/inner.txt", data: []byte("i")},
		{name: "sub/deep/leaf.txt", data: []byte("l")},
	})

	a := mustOpenBytes(t, image, "scoped.zip")
	sub := a.DirAt("sub")
	require.NotNil(t, sub)

	assert.Len(t, a.FindAll(SearchOptions{Pattern: "*.txt", InDir: sub}), 1)
	assert.Len(t, a.FindAll(SearchOptions{Pattern: "*.txt", InDir: sub, SubDirs: true}), 2)
	assert.Len(t, a.FindAll(SearchOptions{Pattern: "*.txt"}), 3)
}

// TestSearchTypeAndCase covers type filtering and IgnoreCase matching.
func TestSearchTypeAndCase(t *testing.T) {
	t.Parallel()

	image := buildZip(t, []namedEntry{
		{name: "notes.TXT", data: []byte("case test")},
		{name: "logo.png", data: []byte("\x89PNG\r\n\x1a\nzzzz")},
	})

	a := mustOpenBytes(t, image, "typed.zip")

	// Zip names are case-sensitive, so only IgnoreCase finds the upper name.
	assert.Nil(t, a.FindFirst(SearchOptions{Pattern: "notes.txt", MatchExact: true}))
	hit := a.FindFirst(SearchOptions{Pattern: "notes.txt", MatchExact: true, IgnoreCase: true})
	require.NotNil(t, hit)
	assert.Equal(t, "notes.TXT", hit.Name())

	pngs := a.FindAll(SearchOptions{Type: TypePNG})
	require.Len(t, pngs, 1)
	assert.Equal(t, "logo.png", pngs[0].Name())
}
