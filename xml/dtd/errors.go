package dtd

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownElement           = errors.New("dtd: element not declared")
	ErrNonDeterministicContentModel = errors.New("dtd: ambiguous (non-deterministic) content model")
	ErrSyntax                   = errors.New("dtd: syntax error")
)

// SyntaxError reports a malformed DTD declaration with its byte offset in
// the internal/external subset source.
type SyntaxError struct {
	Msg    string
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("dtd: syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}

	return ErrSyntax
}
