package subtitles

import (
	"fmt"

	"golang.org/x/text/language"
)

// Cue is a single timed subtitle entry. Times are milliseconds from the
// start of the video. Invariant: Start <= End. Cues are immutable once
// parsed; clipping operations copy rather than mutate.
type Cue struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Text  string `json:"text"`
}

// Track is an ordered sequence of cues sharing one style slot.
type Track struct {
	Cues     []Cue        `json:"cues"`
	Format   string       `json:"format"`
	Language language.Tag `json:"-"`
}

// ParseError reports a malformed subtitle file with source position context.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// Error formats parse failures for logs and UI.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
