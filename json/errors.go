package json

import (
	"errors"
	"fmt"
)

var (
	ErrBufferExhausted = errors.New("json: buffer exhausted before value complete")
	ErrDuplicateKey    = errors.New("json: duplicate object key")
	ErrInvalidEscape   = errors.New("json: invalid escape sequence")
	ErrInvalidSurrogate = errors.New("json: invalid surrogate pair")
	ErrSyntax          = errors.New("json: syntax error")
	ErrIO              = errors.New("json: I/O error")
)

// SyntaxError reports a malformed token with its line/column/offset in the
// source. Line and column are 1-based.
type SyntaxError struct {
	Msg    string
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("json: syntax error at %d:%d (offset %d): %s", e.Line, e.Column, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}

	return ErrSyntax
}

// IOError wraps a failure from the underlying source/sink adapter.
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("json: %s", e.Err) }

func (e *IOError) Unwrap() error { return errors.Join(ErrIO, e.Err) }
