package normalize

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField     = errors.New("required value is missing")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrMalformedAddress = errors.New("malformed delivery address, expected 'street, City-X, State-Y'")
)

// ParseError locates a bad cell in the input.
type ParseError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d, column %s: %v", e.Source, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
