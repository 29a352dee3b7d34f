package common

import (
	"errors"
	"fmt"
)

// Kind classifies the recoverable failures of the photo core
type Kind int

const (
	KindUnknown Kind = iota
	KindNotAnImage
	KindNoMetadata
	KindInvalidGPS
	KindIOFailure
	KindCacheWriteFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotAnImage:
		return "not an image"
	case KindNoMetadata:
		return "no metadata"
	case KindInvalidGPS:
		return "invalid GPS"
	case KindIOFailure:
		return "I/O failure"
	case KindCacheWriteFailure:
		return "cache write failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching by kind
var (
	ErrNotAnImage        = &Error{Kind: KindNotAnImage}
	ErrNoMetadata        = &Error{Kind: KindNoMetadata}
	ErrInvalidGPS        = &Error{Kind: KindInvalidGPS}
	ErrIOFailure         = &Error{Kind: KindIOFailure}
	ErrCacheWriteFailure = &Error{Kind: KindCacheWriteFailure}
)

// Error is a classified failure tied to a file path
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewNotAnImageError reports a path that is not a decodable image of a supported type
func NewNotAnImageError(path string, err error) error {
	return &Error{Kind: KindNotAnImage, Path: path, Err: err}
}

// NewNoMetadataError reports an image without an EXIF segment
func NewNoMetadataError(path string, err error) error {
	return &Error{Kind: KindNoMetadata, Path: path, Err: err}
}

// NewInvalidGPSError reports GPS tags that are malformed, out of range or degenerate
func NewInvalidGPSError(path string, err error) error {
	return &Error{Kind: KindInvalidGPS, Path: path, Err: err}
}

// NewIOError reports a missing or unreadable file
func NewIOError(path string, err error) error {
	return &Error{Kind: KindIOFailure, Path: path, Err: err}
}

// NewCacheWriteError reports a thumbnail that could not be persisted
func NewCacheWriteError(path string, err error) error {
	return &Error{Kind: KindCacheWriteFailure, Path: path, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
