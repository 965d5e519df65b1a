// SPDX-License-Identifier: MIT
// Copyright (c) 2026 GeorgePieVG
// Source: github.com/GeorgePieVG/arc

package arc

import (
	"errors"
	"fmt"
)

// Sentinel errors for archive operations. Use errors.Is in callers.
var (
	// ErrTruncated means the source ends before a structure it promises.
	ErrTruncated = errors.New("truncated archive data")
	// ErrBadMagic means the source does not start with the format signature.
	ErrBadMagic = errors.New("bad format signature")
	// ErrUnsupportedVariant means the format version or feature is not supported.
	ErrUnsupportedVariant = errors.New("unsupported format variant")
	// ErrChecksumMismatch means stored and computed checksums differ.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrDataUnavailable means backing storage for a lazy entry read is gone.
	ErrDataUnavailable = errors.New("entry data unavailable")
	// ErrNoFormatMatch means no registered format recognized the input.
	ErrNoFormatMatch = errors.New("no matching archive format")
	// ErrNameConflict means a sibling with the same name already exists.
	ErrNameConflict = errors.New("entry name conflict")
	// ErrNotFound means the entry or directory is not in the tree.
	ErrNotFound = errors.New("entry not found")
	// ErrReadOnly means the archive was opened read-only.
	ErrReadOnly = errors.New("archive is read-only")
	// ErrNameTooLong means an entry name exceeds the format's name field.
	ErrNameTooLong = errors.New("entry name exceeds format limit")
	// ErrEntryLimit means the entry count exceeds what the format can index.
	ErrEntryLimit = errors.New("entry count exceeds format limit")
	// ErrSizeOverflow means a size exceeds the format's addressable range.
	ErrSizeOverflow = errors.New("size exceeds format limit")
	// ErrClosed means the archive was already closed.
	ErrClosed = errors.New("archive already closed")
	// ErrNilReader means the reader is nil.
	ErrNilReader = errors.New("reader is nil")
	// ErrNilWriter means the writer is nil.
	ErrNilWriter = errors.New("writer is nil")
	// ErrInvalidEntryPath means an entry path is empty or invalid after normalization.
	ErrInvalidEntryPath = errors.New("invalid entry path")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrInvalidIgnorePattern means one or more directory ignore rules are invalid.
	ErrInvalidIgnorePattern = errors.New("invalid ignore rules")
)

// FormatError is a located open/encode failure. Kind is one of the
// open-time sentinels (ErrTruncated, ErrBadMagic, ErrUnsupportedVariant,
// ErrChecksumMismatch) so errors.Is keeps working through the wrapper.
type FormatError struct {
	// Kind is the sentinel classifying this failure.
	Kind error
	// Reason describes the failing structure.
	Reason string
	// Offset is the byte offset of the failing structure, -1 when unknown.
	Offset int64
}

// Error formats the failure with its byte offset when known.
func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}

	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Reason)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *FormatError) Unwrap() error {
	return e.Kind
}

// formatErr builds a located FormatError.
func formatErr(kind error, offset int64, format string, args ...any) error {
	return &FormatError{
		Kind:   kind,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
	}
}
