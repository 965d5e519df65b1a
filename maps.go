// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import "strings"

// MapFormat identifies the layout of one embedded map package.
type MapFormat string

// Embedded map layouts.
const (
	// MapFormatDoom is the classic fixed lump set after a header lump.
	MapFormatDoom MapFormat = "doom"
	// MapFormatHexen is the Doom layout extended with BEHAVIOR/SCRIPTS.
	MapFormatHexen MapFormat = "hexen"
	// MapFormatUDMF is the textual TEXTMAP..ENDMAP block layout.
	MapFormatUDMF MapFormat = "udmf"
)

// MapDesc describes one contiguous embedded map package: the header entry
// and the last lump belonging to the map, inclusive.
type MapDesc struct {
	// Name is the header lump name.
	Name string
	// Head is the header entry.
	Head *Entry
	// End is the last entry of the map range.
	End *Entry
	// HeadIndex and EndIndex are order indices within the scanned directory.
	HeadIndex int
	EndIndex  int
	// Format is the detected map layout.
	Format MapFormat
	// Incomplete is set when required lumps are missing from the range.
	Incomplete bool
}

// doomMapLumps are the recognized map content lump names in their expected
// relative order. A reserved name appearing outside a valid header context
// never starts or extends a map.
var doomMapLumps = []string{
	"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS",
	"SSECTORS", "NODES", "SECTORS", "REJECT", "BLOCKMAP",
	"BEHAVIOR", "SCRIPTS",
}

// doomRequiredLumps must all be present for a map to count as complete.
var doomRequiredLumps = []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS"}

// isMapContentLump reports whether an uppercased name is a reserved map lump.
func isMapContentLump(upper string) bool {
	for _, lump := range doomMapLumps {
		if upper == lump {
			return true
		}
	}

	return false
}

// mapScanState is the detector state between lumps.
type mapScanState uint8

const (
	// scanIdle means no map range is open.
	scanIdle mapScanState = iota
	// scanInMap means lumps are being consumed into the current range.
	scanInMap
	// scanInUDMF means lumps are consumed until ENDMAP.
	scanInUDMF
)

// mapScanner accumulates one map range at a time. Each recognized header
// restarts the scan state, so multiple independent maps per archive fall
// out of the transitions rather than lookahead.
type mapScanner struct {
	state     mapScanState
	headIndex int
	endIndex  int
	lumpRank  int
	seen      map[string]bool
	hexen     bool
	maps      []MapDesc
	entries   []*Entry
}

// DetectMaps scans the root lump sequence for embedded map ranges. The scan
// is a pure function of the current tree snapshot: without a mutation in
// between, repeated calls return identical results. Tree formats without a
// meaningful lump order yield no maps.
func (a *Archive) DetectMaps() []MapDesc {
	if a == nil || a.root == nil || !a.flat {
		return nil
	}

	s := &mapScanner{entries: a.root.entries, headIndex: -1}
	for i, e := range a.root.entries {
		s.step(i, strings.ToUpper(e.name))
	}
	s.flush(len(a.root.entries) - 1)

	return s.maps
}

// step feeds one lump into the state machine.
func (s *mapScanner) step(index int, upper string) {
	switch s.state {
	case scanIdle:
		s.tryOpen(index, upper)
	case scanInUDMF:
		s.endIndex = index
		if upper == "ENDMAP" {
			s.closeUDMF(true)
		}
	case scanInMap:
		rank := lumpRankOf(upper)
		if rank < 0 || rank < s.lumpRank {
			// Next header or unrelated lump ends the current range. The
			// rank check rejects reserved names out of expected relative
			// order instead of absorbing them.
			s.flush(s.endIndex)
			s.tryOpen(index, upper)
			return
		}

		s.lumpRank = rank
		s.endIndex = index
		s.seen[upper] = true
		if upper == "BEHAVIOR" || upper == "SCRIPTS" {
			s.hexen = true
		}
	}
}

// tryOpen opens a map range when the lump at index is a valid header: a
// non-reserved name immediately followed by THINGS, LINEDEFS, or TEXTMAP.
func (s *mapScanner) tryOpen(index int, upper string) {
	if isMapContentLump(upper) || index+1 >= len(s.entries) {
		return
	}

	next := strings.ToUpper(s.entries[index+1].name)
	switch {
	case next == "TEXTMAP":
		s.state = scanInUDMF
		s.headIndex = index
		s.endIndex = index
	case next == "THINGS" || next == "LINEDEFS":
		s.state = scanInMap
		s.headIndex = index
		s.endIndex = index
		s.lumpRank = -1
		s.hexen = false
		s.seen = make(map[string]bool, len(doomMapLumps))
	}
}

// flush closes an open Doom/Hexen range ending at endIndex.
func (s *mapScanner) flush(endIndex int) {
	if s.state != scanInMap {
		if s.state == scanInUDMF {
			// End of sequence before ENDMAP.
			s.closeUDMF(false)
		}
		return
	}

	incomplete := false
	for _, required := range doomRequiredLumps {
		if !s.seen[required] {
			incomplete = true
			break
		}
	}

	format := MapFormatDoom
	if s.hexen {
		format = MapFormatHexen
	}

	if endIndex > s.endIndex {
		endIndex = s.endIndex
	}

	s.maps = append(s.maps, MapDesc{
		Name:       s.entries[s.headIndex].name,
		Head:       s.entries[s.headIndex],
		End:        s.entries[endIndex],
		HeadIndex:  s.headIndex,
		EndIndex:   endIndex,
		Format:     format,
		Incomplete: incomplete,
	})
	s.state = scanIdle
}

// closeUDMF closes an open UDMF range; sawEnd marks a proper ENDMAP.
func (s *mapScanner) closeUDMF(sawEnd bool) {
	s.maps = append(s.maps, MapDesc{
		Name:       s.entries[s.headIndex].name,
		Head:       s.entries[s.headIndex],
		End:        s.entries[s.endIndex],
		HeadIndex:  s.headIndex,
		EndIndex:   s.endIndex,
		Format:     MapFormatUDMF,
		Incomplete: !sawEnd,
	})
	s.state = scanIdle
}

// lumpRankOf returns the expected relative position of a reserved lump,
// -1 for non-reserved names.
func lumpRankOf(upper string) int {
	for i, lump := range doomMapLumps {
		if upper == lump {
			return i
		}
	}

	return -1
}
