// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import "strings"

// NamespaceGlobal is the namespace of entries outside any marker range or
// top-level directory.
const NamespaceGlobal = "global"

// namespaceMarkers maps marker lump prefixes to namespace names. A lump
// named <prefix>_START opens the namespace, <prefix>_END closes it. Doubled
// prefixes (SS_, FF_, PP_) are aliases used by community tools.
var namespaceMarkers = map[string]string{
	"S":  "sprites",
	"SS": "sprites",
	"F":  "flats",
	"FF": "flats",
	"P":  "patches",
	"PP": "patches",
	"TX": "textures",
	"C":  "colormaps",
	"A":  "acs",
	"V":  "voices",
	"HI": "hires",
}

// Namespace returns the derived namespace of an entry.
func (a *Archive) Namespace(e *Entry) string {
	if e == nil {
		return NamespaceGlobal
	}

	return a.entryNamespace(e)
}

// entryNamespace derives the namespace of one entry. Lump-table formats use
// marker ranges over physical lump order; tree formats use the top-level
// directory name. Namespaces are a pure query-time overlay and are never
// stored.
func (a *Archive) entryNamespace(e *Entry) string {
	if a.flat {
		return a.lumpNamespaceOf(e)
	}

	return treeNamespaceOf(e)
}

// treeNamespaceOf returns the lowercased first path segment, or the global
// namespace for root-level entries.
func treeNamespaceOf(e *Entry) string {
	top := e.parent
	if top == nil || top.IsRoot() {
		return NamespaceGlobal
	}

	for !top.parent.IsRoot() {
		top = top.parent
	}

	return strings.ToLower(top.name)
}

// lumpNamespaceOf scans root lump order up to e, tracking marker ranges.
// Marker lumps themselves are global; they delimit ranges, not belong to them.
func (a *Archive) lumpNamespaceOf(e *Entry) string {
	if _, _, ok := parseNamespaceMarker(e.name); ok {
		return NamespaceGlobal
	}

	current := NamespaceGlobal
	found := NamespaceGlobal
	a.root.walkEntries(false, func(candidate *Entry) bool {
		if candidate == e {
			found = current
			return false
		}

		if ns, open, ok := parseNamespaceMarker(candidate.name); ok {
			if open {
				current = ns
			} else if current == ns {
				current = NamespaceGlobal
			}
		}

		return true
	})

	return found
}

// parseNamespaceMarker recognizes <prefix>_START / <prefix>_END lump names.
func parseNamespaceMarker(name string) (namespace string, open bool, ok bool) {
	upper := strings.ToUpper(name)

	switch {
	case strings.HasSuffix(upper, "_START"):
		open = true
		upper = strings.TrimSuffix(upper, "_START")
	case strings.HasSuffix(upper, "_END"):
		upper = strings.TrimSuffix(upper, "_END")
	default:
		return "", false, false
	}

	ns, known := namespaceMarkers[upper]
	if !known {
		return "", false, false
	}

	return ns, open, true
}
