// Package xlog provides the shared diagnostic logging used by the bencode,
// json, and xml codec packages. It wraps [log/slog] with a small [Format]
// enum so callers can construct a handler from two plain strings instead of
// building handler options by hand.
//
// Logging here is purely diagnostic: none of the codecs require a logger to
// operate correctly, and the zero value of every codec [Option] set leaves
// logging directed at [slog.Default]. Each codec emits Debug-level records
// at its own key decision points (dictionary key reordering, DTD
// declaration registration, entity-expansion push/pop) through whatever
// logger its [WithLogger]-equivalent option supplies.
package xlog
