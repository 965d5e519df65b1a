// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"path"
	"strings"
)

// SearchOptions configures entry search. All supplied fields must match
// (conjunction); zero values do not constrain. An empty Pattern matches
// every entry.
type SearchOptions struct {
	// Pattern is a name pattern, glob by default (path.Match syntax).
	Pattern string
	// MatchExact disables glob interpretation of Pattern.
	MatchExact bool
	// Type filters by sniffed entry type when non-empty.
	Type EntryType
	// Namespace filters by derived namespace when non-empty.
	Namespace string
	// InDir restricts search to one directory; nil means the tree root.
	InDir *Dir
	// SubDirs extends the search into nested directories.
	SubDirs bool
	// IgnoreCase matches Pattern case-insensitively regardless of the
	// format's case rule.
	IgnoreCase bool
}

// FindFirst returns the first entry matching options in traversal order,
// nil when nothing matches. Traversal is tree pre-order; for lump-table
// formats this is physical lump order.
func (a *Archive) FindFirst(options SearchOptions) *Entry {
	var found *Entry
	a.searchWalk(&options, func(e *Entry) bool {
		found = e
		return false
	})

	return found
}

// FindLast returns the last matching entry in traversal order, nil when
// nothing matches.
func (a *Archive) FindLast(options SearchOptions) *Entry {
	var found *Entry
	a.searchWalk(&options, func(e *Entry) bool {
		found = e
		return true
	})

	return found
}

// FindAll returns every matching entry in traversal order.
func (a *Archive) FindAll(options SearchOptions) []*Entry {
	var found []*Entry
	a.searchWalk(&options, func(e *Entry) bool {
		found = append(found, e)
		return true
	})

	return found
}

// searchWalk traverses the scoped tree and calls visit for each match.
// The visit callback returns false to stop early.
func (a *Archive) searchWalk(options *SearchOptions, visit func(*Entry) bool) {
	if a == nil || a.root == nil {
		return
	}

	start := options.InDir
	deep := options.SubDirs
	if start == nil {
		start = a.root
		deep = true
	}

	start.walkEntries(deep, func(e *Entry) bool {
		if !a.entryMatches(options, e) {
			return true
		}

		return visit(e)
	})
}

// entryMatches applies the conjunction of all supplied option fields.
func (a *Archive) entryMatches(options *SearchOptions, e *Entry) bool {
	if options.Type != "" && e.typ != options.Type {
		return false
	}

	if options.Namespace != "" && a.entryNamespace(e) != options.Namespace {
		return false
	}

	if options.Pattern == "" {
		return true
	}

	name := e.name
	pattern := options.Pattern
	if options.IgnoreCase || a.caseFold {
		name = strings.ToLower(name)
		pattern = strings.ToLower(pattern)
	}

	if options.MatchExact {
		return name == pattern
	}

	matched, err := path.Match(pattern, name)
	if err != nil {
		// Malformed glob falls back to exact comparison.
		return name == pattern
	}

	return matched
}
