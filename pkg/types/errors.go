package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the pipeline. Failures propagate unchanged to
// the CLI, which prints a single-line diagnostic and exits non-zero.
var (
	ErrInvalidArgs          = errors.New("invalid arguments")
	ErrFileTooBig           = errors.New("file too big")
	ErrFailedToOpenFile     = errors.New("failed to open file")
	ErrFailedToReadFile     = errors.New("failed to read file")
	ErrFailedToWriteFile    = errors.New("failed to write file")
	ErrParse                = errors.New("registry parse error")
	ErrDependencyUnresolved = errors.New("unresolved dependency")
)

// ParseError reports malformed or unexpected registry XML. Path identifies
// the failing element (the DOM provider does not retain line numbers).
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("registry parse error at %s: %s", e.Path, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError constructs a ParseError for the given element path.
func NewParseError(path, format string, args ...interface{}) *ParseError {
	return &ParseError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// DependencyError records a required name with no declaring entity.
type DependencyError struct {
	Name     string
	Referrer string
}

func (e *DependencyError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unresolved dependency %q", e.Name)
	}
	return fmt.Sprintf("unresolved dependency %q (required by %s)", e.Name, e.Referrer)
}

func (e *DependencyError) Unwrap() error { return ErrDependencyUnresolved }
