package compile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrCompile      = errors.New("compile failed")
	ErrInconsistent = errors.New("compiled module cache is inconsistent with the module store")
	ErrNoCompiler   = errors.New("no compiler configured")
	ErrBadOption    = errors.New("invalid pipeline option")
)

// Location points into the source that failed to compile. Line and Column
// are 1-based; zero means unknown.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	switch {
	case l.Line == 0:
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
}

// Error is a compiler diagnostic for one module. It matches ErrCompile.
type Error struct {
	Module   string
	Message  string
	Location Location
}

func (e *Error) Error() string {
	if e.Location.File == "" {
		return fmt.Sprintf("compile %s: %s", e.Module, e.Message)
	}
	return fmt.Sprintf("compile %s: %s: %s", e.Module, e.Location, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrCompile
}

// diagnostic matches "file:line:col: message", where col may be "?".
var diagnostic = regexp.MustCompile(`(?s)^(.+?):(\d+):(\d+|\?):?\s+(.*)$`)

// ParseError builds an Error from a compiler message, pulling out the
// location prefix when there is one.
func ParseError(module, msg string) *Error {
	m := diagnostic.FindStringSubmatch(msg)
	if m == nil {
		return &Error{Module: module, Message: msg}
	}
	line, _ := strconv.Atoi(m[2])
	col, _ := strconv.Atoi(m[3])
	return &Error{
		Module:   module,
		Message:  m[4],
		Location: Location{File: m[1], Line: line, Column: col},
	}
}
