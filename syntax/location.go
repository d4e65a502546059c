package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// Location is a point in a source file. Column is optional; a negative
// value means "no column". Locations are values: every diagnostic carries
// its own copy and none is ever mutated.
type Location struct {
	File   string
	Line   int
	Column int
}

// NewLocation returns a Location without column information.
func NewLocation(file string, line int) Location {
	return Location{File: file, Line: line, Column: -1}
}

// NewLocationCol returns a Location with column information.
func NewLocationCol(file string, line, column int) Location {
	return Location{File: file, Line: line, Column: column}
}

// IsZero reports whether the location carries no position at all.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

func (l Location) String() string {
	if l.Column >= 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// ParseLocation is the inverse of String. It accepts "file:line" and
// "file:line:column" forms.
func ParseLocation(s string) (Location, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return Location{}, fmt.Errorf("parse location %q: missing line", s)
	}
	last, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", s, err)
	}
	rest := s[:i]
	j := strings.LastIndexByte(rest, ':')
	if j >= 0 {
		if line, err := strconv.Atoi(rest[j+1:]); err == nil {
			return NewLocationCol(rest[:j], line, last), nil
		}
	}
	return NewLocation(rest, last), nil
}
