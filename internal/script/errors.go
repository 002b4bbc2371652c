package script

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLex marks a SyntaxError raised while tokenizing.
	ErrLex = errors.New("lex error")
	// ErrParse marks a SyntaxError raised while building the document.
	ErrParse = errors.New("parse error")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation error")
	// ErrEmptyGroup is reported for a group block with no member files.
	ErrEmptyGroup = errors.New("cannot create empty group")
)

// SyntaxError is a lexing or parsing failure tied to a source line.
type SyntaxError struct {
	Kind error
	Line int
	Msg  string
}

func syntaxErrorf(kind error, line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// ValidationError lists every unknown tag and unreadable file found in a
// document. At least one of the lists is non-empty.
type ValidationError struct {
	UnknownTags     []string
	UnreadableFiles []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Lines(), "\n")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Lines renders the error as operator-facing report lines.
func (e *ValidationError) Lines() []string {
	var lines []string
	if len(e.UnknownTags) > 0 {
		lines = append(lines, "Unknown tags:", "\t"+strings.Join(e.UnknownTags, ", "))
	}
	if len(e.UnreadableFiles) > 0 {
		quoted := make([]string, len(e.UnreadableFiles))
		for i, f := range e.UnreadableFiles {
			quoted[i] = "'" + f + "'"
		}
		lines = append(lines, "Could not read files:", "\t"+strings.Join(quoted, ", "))
	}
	return lines
}

// GroupError reports a group that could not be created. Members lists the
// source paths of the group's files.
type GroupError struct {
	Index   int
	Members []string
	Err     error
}

func (e *GroupError) Error() string {
	if len(e.Members) == 0 {
		return fmt.Sprintf("group %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("group %d (%s): %v", e.Index+1, strings.Join(e.Members, ", "), e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}
