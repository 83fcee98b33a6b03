package format

import "fmt"

// ParseError reports malformed input at a known location. Text formats set
// Line (1-based); the binary format sets Offset.
type ParseError struct {
	Line   int
	Offset int
	Reason string
	Err    error
}

func (e ParseError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return fmt.Sprintf("offset %d: %s", e.Offset, msg)
}

func (e ParseError) Unwrap() error { return e.Err }

// UnsupportedVersionError means the binary header carried a version this
// build cannot decode. An unknown version is a hard error, never a
// best-effort parse.
type UnsupportedVersionError struct {
	Version byte
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported binary format version %d (supported: %d)", e.Version, BinaryVersion)
}
