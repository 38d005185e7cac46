// Package json implements a parser and format-preserving stringifier for
// JSON (RFC 8259), independent of the standard library's encoding/json.
//
// A [Node] is a tagged union over the six JSON types. Objects preserve
// insertion order and reject duplicate keys; Numbers retain their original
// lexeme so re-[Stringify] reproduces the exact text, with the numeric
// value parsed lazily on demand via [Node.Float64]. [Parse] and [Stringify]
// are the top-level entry points; [ToEscaped]/[FromEscaped] expose the
// string translator directly for callers that only need escape handling.
package json
