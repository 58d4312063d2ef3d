package nbt

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds reported for malformed input. Test them with errors.Is.
var (
	ErrUnexpectedEnd  = errors.New("unexpected end of input")
	ErrInvalidTagID   = errors.New("invalid tag id")
	ErrInvalidRoot    = errors.New("root tag is not a compound")
	ErrNegativeLength = errors.New("negative length prefix")
	ErrDuplicateName  = errors.New("duplicate name in compound")
	ErrDepthLimit     = errors.New("nesting depth limit reached")
)

// SyntaxError describes malformed NBT input.
type SyntaxError struct {
	Err    error  // one of the kinds above
	Offset int    // byte offset of the failed read or check
	Path   string // path of the offending tag, e.g. "Level.Sections[2].Y"
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("nbt: %v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("nbt: %v at offset %d (in %s)", e.Err, e.Offset, e.Path)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// annotate grows the error's tag path as decoding unwinds. elem is either
// a child name or a "[i]" list index.
func annotate(err error, elem string) error {
	var se *SyntaxError
	if elem == "" || !errors.As(err, &se) {
		return err
	}
	switch {
	case se.Path == "":
		se.Path = elem
	case strings.HasPrefix(se.Path, "["):
		se.Path = elem + se.Path
	default:
		se.Path = elem + "." + se.Path
	}
	return err
}
