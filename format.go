// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// FormatKind identifies one supported container format.
type FormatKind string

// Supported container formats.
const (
	// FormatWad is the Doom IWAD/PWAD lump table, including the console
	// variant with LZSS-compressed lumps.
	FormatWad FormatKind = "wad"
	// FormatZip is the zip container (deflate or stored entries).
	FormatZip FormatKind = "zip"
	// FormatGrp is the Build engine group file.
	FormatGrp FormatKind = "grp"
	// FormatPak is the Quake PACK container.
	FormatPak FormatKind = "pak"
	// FormatLfd is the LucasArts resource map container.
	FormatLfd FormatKind = "lfd"
	// FormatRes is the Res! table container.
	FormatRes FormatKind = "res"
	// FormatDir is a plain filesystem directory opened as an archive.
	FormatDir FormatKind = "dir"
)

// FormatHandler is the per-format codec contract. One handler instance is
// bound to one Archive: Open parses the container index into the archive
// tree and keeps the backing reader for LoadEntryData; Write serializes the
// current tree. All remaining components rely only on these three
// operations.
type FormatHandler interface {
	// Kind returns the handled format.
	Kind() FormatKind
	// Open parses the container index and populates a's tree. On failure
	// the archive tree is left empty and the source is untouched.
	Open(a *Archive, src io.ReaderAt, size int64) error
	// Write serializes a's current tree. Output is byte-identical to the
	// original input for an unmodified archive wherever the format permits,
	// and one deterministic canonical layout otherwise.
	Write(a *Archive, w io.Writer) error
	// LoadEntryData extracts one entry payload on demand from the backing
	// storage kept since Open. Fails with ErrDataUnavailable when that
	// storage is gone.
	LoadEntryData(a *Archive, e *Entry) ([]byte, error)
}

// formatSpec describes one registered format for detection and dispatch.
type formatSpec struct {
	kind FormatKind
	// matches is the strict binary signature probe, nil when the format has
	// no usable magic.
	matches func(head []byte) bool
	// extensions are the filename fallbacks, lowercased without dot.
	extensions []string
	newHandler func() FormatHandler
	// caseFold marks case-insensitive sibling names.
	caseFold bool
	// flat marks lump-table formats whose order carries meaning and which
	// hold no subdirectories.
	flat bool
	// maxNameLen bounds entry names at encode time, 0 means unbounded.
	maxNameLen int
}

// formatRegistry lists formats in detection priority order: all signature
// probes run before any extension fallback, and among signature matches the
// most specific magic is registered first. This tie-break is deliberate and
// fixed: a stream carrying a known magic is never reinterpreted by
// extension.
var formatRegistry = []formatSpec{
	{
		kind:       FormatZip,
		matches:    matchZipMagic,
		extensions: []string{"zip", "pk3", "pke", "jar"},
		newHandler: func() FormatHandler { return &zipHandler{} },
	},
	{
		kind:       FormatWad,
		matches:    matchWadMagic,
		extensions: []string{"wad"},
		newHandler: func() FormatHandler { return &wadHandler{} },
		caseFold:   true,
		flat:       true,
		maxNameLen: wadNameLen,
	},
	{
		kind:       FormatGrp,
		matches:    matchGrpMagic,
		extensions: []string{"grp"},
		newHandler: func() FormatHandler { return &grpHandler{} },
		caseFold:   true,
		flat:       true,
		maxNameLen: grpNameLen,
	},
	{
		kind:       FormatPak,
		matches:    matchPakMagic,
		extensions: []string{"pak"},
		newHandler: func() FormatHandler { return &pakHandler{} },
		caseFold:   true,
		maxNameLen: pakPathLen,
	},
	{
		kind:       FormatLfd,
		matches:    matchLfdMagic,
		extensions: []string{"lfd"},
		newHandler: func() FormatHandler { return &lfdHandler{} },
		caseFold:   true,
		flat:       true,
		maxNameLen: lfdNameLen + 1 + lfdTypeLen,
	},
	{
		// Res has no reliable magic beyond its short tag, so it sits after
		// the richer signatures.
		kind:       FormatRes,
		matches:    matchResMagic,
		extensions: []string{"res"},
		newHandler: func() FormatHandler { return &resHandler{} },
		caseFold:   true,
		flat:       true,
		maxNameLen: resNameLen,
	},
	{
		// Directory archives are only reachable by opening a path that is
		// an actual directory; they never match byte streams.
		kind:       FormatDir,
		newHandler: func() FormatHandler { return &dirHandler{} },
	},
}

// detectHeadLen is how many leading bytes detection needs at most.
const detectHeadLen = 16

// Detect resolves the format of a byte stream. Signature probes run first
// in registry order; when none is confident, the filename extension decides;
// when that fails too, detection reports ErrNoFormatMatch instead of
// guessing.
func Detect(head []byte, filename string) (FormatKind, error) {
	for _, spec := range formatRegistry {
		if spec.matches != nil && spec.matches(head) {
			return spec.kind, nil
		}
	}

	ext := strings.ToLower(extensionOf(filename))
	if ext != "" {
		for _, spec := range formatRegistry {
			for _, candidate := range spec.extensions {
				if candidate == ext {
					return spec.kind, nil
				}
			}
		}
	}

	return "", fmt.Errorf("%w: %q", ErrNoFormatMatch, filename)
}

// specOf returns the registry record for a kind.
func specOf(kind FormatKind) (formatSpec, error) {
	for _, spec := range formatRegistry {
		if spec.kind == kind {
			return spec, nil
		}
	}

	return formatSpec{}, fmt.Errorf("%w: %q", ErrNoFormatMatch, kind)
}

// checkNameLimit validates one entry name against the format's hard limits.
// Violations are encode/mutation-time errors, never silent truncation.
func checkNameLimit(kind FormatKind, name string) error {
	spec, err := specOf(kind)
	if err != nil {
		return err
	}

	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidEntryPath)
	}

	if spec.maxNameLen > 0 && len(name) > spec.maxNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes for %s", ErrNameTooLong, name, spec.maxNameLen, kind)
	}

	return nil
}

// formatMaxEntries is the largest entry count a 32-bit table index can hold.
const formatMaxEntries = int64(^uint32(0))

// checkEntryCount validates an entry count against the table index range.
func checkEntryCount(n int) error {
	if int64(n) > formatMaxEntries {
		return fmt.Errorf("%w: %d entries", ErrEntryLimit, n)
	}

	return nil
}

// Signature probes.

func matchZipMagic(head []byte) bool {
	return len(head) >= 4 && head[0] == 'P' && head[1] == 'K' &&
		((head[2] == 3 && head[3] == 4) || (head[2] == 5 && head[3] == 6))
}

func matchWadMagic(head []byte) bool {
	return len(head) >= 4 && (bytes.Equal(head[:4], []byte("IWAD")) || bytes.Equal(head[:4], []byte("PWAD")))
}

func matchGrpMagic(head []byte) bool {
	return len(head) >= grpMagicLen && bytes.Equal(head[:grpMagicLen], []byte(grpMagic))
}

func matchPakMagic(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte("PACK"))
}

func matchLfdMagic(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte("RMAP"))
}

func matchResMagic(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte("Res!"))
}
