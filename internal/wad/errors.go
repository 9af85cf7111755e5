package wad

import (
	"errors"
	"fmt"
)

// ErrUnknownName is returned by the by-name decoders when no table row has
// the requested name.
var ErrUnknownName = errors.New("wad: unknown name")

// ErrUnsupportedVersion is wrapped by the *FormatError Load returns for a
// header version other than SupportedVersion. Options.AnyVersion skips the
// check.
var ErrUnsupportedVersion = errors.New("wad: unsupported version")

// FormatError reports a length, offset or index read from the container that
// does not fit the data it refers to.
type FormatError struct {
	Section string // table or record being read
	Offset  int    // byte offset of the failing read (stream or packed data)
	Need    int    // bytes or entries required
	Have    int    // bytes or entries available
	Detail  string
	Err     error // underlying cause, if any
}

func (e *FormatError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("wad: %s at offset %d: %s", e.Section, e.Offset, e.Detail)
	}
	return fmt.Sprintf("wad: %s at offset %d: need %d bytes, have %d", e.Section, e.Offset, e.Need, e.Have)
}

func (e *FormatError) Unwrap() error { return e.Err }

func truncated(section string, off, need, have int) error {
	return &FormatError{Section: section, Offset: off, Need: need, Have: have}
}

func invalid(section string, off int, format string, args ...any) error {
	return &FormatError{Section: section, Offset: off, Detail: fmt.Sprintf(format, args...)}
}
