// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"sync"
	"time"
)

// LibraryStore is the external archive-metadata collaborator. The archive
// reports opens and closes; the store decides what to persist and where.
// Implementations must be safe for concurrent use.
type LibraryStore interface {
	// LastOpened returns the recorded open time for an archive path.
	LastOpened(path string) (time.Time, bool)
	// SetLastOpened records an open or close of an archive path.
	SetLastOpened(path string, at time.Time)
}

// MemoryLibrary is an in-process LibraryStore. It keeps last-opened times
// for the lifetime of the program; persistence belongs to the caller.
type MemoryLibrary struct {
	mu     sync.Mutex
	opened map[string]time.Time
}

// NewMemoryLibrary creates an empty in-process library.
func NewMemoryLibrary() *MemoryLibrary {
	return &MemoryLibrary{opened: make(map[string]time.Time)}
}

// LastOpened returns the recorded open time for an archive path.
func (l *MemoryLibrary) LastOpened(path string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	at, ok := l.opened[path]

	return at, ok
}

// SetLastOpened records an open or close of an archive path.
func (l *MemoryLibrary) SetLastOpened(path string, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.opened[path] = at
}

// Recent returns recorded paths ordered most recent first.
func (l *MemoryLibrary) Recent() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	paths := make([]string, 0, len(l.opened))
	for p := range l.opened {
		paths = append(paths, p)
	}

	for i := 1; i < len(paths); i++ {
		for j := i; j > 0 && l.opened[paths[j]].After(l.opened[paths[j-1]]); j-- {
			paths[j], paths[j-1] = paths[j-1], paths[j]
		}
	}

	return paths
}
