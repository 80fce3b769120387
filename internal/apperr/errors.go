// Package apperr holds the sentinel errors shared across Folio packages.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a lookup has no match.
	ErrNotFound = errors.New("not found")
	// ErrMalformedFrontMatter marks a single content file whose header could not be decoded.
	ErrMalformedFrontMatter = errors.New("malformed front-matter")
	// ErrContentUnavailable marks a content directory that cannot be listed.
	ErrContentUnavailable = errors.New("content directory unavailable")
)
