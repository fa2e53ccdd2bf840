package compiler

import (
	"errors"
	"fmt"
)

// Error is a positioned diagnostic. Text is the literal source text the error refers to.
type Error struct {
	File   string
	Line   int
	Column int
	Text   string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s near %q", e.File, e.Line, e.Column, e.Msg, e.Text)
}

// AsError extracts the positioned diagnostic from err, if it carries one.
func AsError(err error) (*Error, bool) {
	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr, true
	}
	return nil, false
}
