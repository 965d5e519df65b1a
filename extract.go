// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ExtractOptions configure bulk extraction.
type ExtractOptions struct {
	// Dir selects a subtree to extract; nil extracts the whole archive.
	// Output paths are relative to the selected directory.
	Dir *Dir
	// MaxWorkers caps extraction parallelism; <=0 uses GOMAXPROCS.
	MaxWorkers int
	// OnEntryDone is called after each successfully written entry. It runs
	// on worker goroutines and may be invoked concurrently; callbacks must
	// synchronize any shared state.
	OnEntryDone func(e *Entry, written int64, outputPath string)
}

// extractItem stores one selected entry with its prepared output paths.
type extractItem struct {
	entry   *Entry
	relPath string
	relDir  string
}

// Extract writes entries to dstDir, one file per entry, mirroring the tree.
// Extraction is parallelized by MaxWorkers; on failure it returns the first
// encountered error and cancels remaining work.
func (a *Archive) Extract(ctx context.Context, dstDir string, opts ExtractOptions) error {
	if a == nil {
		return ErrNilReader
	}

	a.mu.Lock()
	closed := a.closed
	a.mu.Unlock()
	if closed {
		return ErrClosed
	}

	from := opts.Dir
	if from == nil {
		from = a.root
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}

	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	items, err := prepareExtractItems(from)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		return nil
	}

	if err := prepareExtractDirs(dstRootAbs, items); err != nil {
		return err
	}

	// Unloaded payloads are read up front on the calling goroutine; entry
	// state transitions stay single-writer while file writes parallelize.
	payloads := make([][]byte, len(items))
	for i, item := range items {
		data, err := a.ReadEntry(item.entry)
		if err != nil {
			return fmt.Errorf("load %s: %w", item.entry.Path(), err)
		}

		payloads[i] = data
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, item := range items {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			outPath := filepath.Join(dstRootAbs, item.relPath)
			if err := writeFileAtomic(outPath, payloads[i]); err != nil {
				return fmt.Errorf("write %s: %w", item.relPath, err)
			}

			if opts.OnEntryDone != nil {
				opts.OnEntryDone(item.entry, int64(len(payloads[i])), outPath)
			}

			return nil
		})
	}

	return g.Wait()
}

// prepareExtractItems collects the subtree's entries with validated output
// paths relative to the selected directory.
func prepareExtractItems(from *Dir) ([]extractItem, error) {
	prefix := from.Path()
	if prefix != "/" {
		prefix += "/"
	}

	var items []extractItem
	var firstErr error
	from.walkEntries(true, func(e *Entry) bool {
		rel := strings.TrimPrefix(e.Path(), prefix)
		normalized, err := normalizeExtractEntryPath(rel)
		if err != nil {
			firstErr = fmt.Errorf("entry %s: %w", e.Path(), err)
			return false
		}

		relPath := filepath.FromSlash(normalized)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		items = append(items, extractItem{entry: e, relPath: relPath, relDir: relDir})
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	return items, nil
}

// prepareExtractDirs creates all unique parent directories needed by items.
func prepareExtractDirs(dstRootAbs string, items []extractItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, item.relDir)
		key := strings.ToLower(dirPath)
		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// normalizeExtractEntryPath normalizes an entry path for filesystem output
// and rejects absolute and traversal inputs.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" {
		return "", ErrInvalidExtractPath
	}
	if strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasWindowsAbsDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with a drive-root
// prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether b is an ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
