// Package bencode implements a decoder and encoder for the Bencode wire
// format used by the BitTorrent protocol.
//
// A [Node] is a tagged union over the four Bencode types: signed integers,
// opaque byte strings, ordered lists, and dictionaries keyed by byte string
// with byte-lexicographic key ordering. [Decode] reads a single top-level
// value from an [ISource]; [Encode] writes the inverse. Dictionary keys are
// always re-sorted into byte-lexicographic order on encode, regardless of
// the order a [Node] tree was built in, so re-encoding is always canonical.
//
// # Design Principles
//
//  1. Canonical encode, always: [Encode] never trusts key order already
//     present on a [Dictionary] — it sorts before emitting. Decode is
//     lenient by default (out-of-order or duplicate-free input is
//     accepted); [WithStrictOrder] makes decode reject out-of-order keys
//     instead of silently accepting them.
//  2. Opaque strings: Bencode byte strings are not decoded as UTF-8 text.
//     [Node] stores them as raw bytes; callers decide how to interpret them.
//  3. Single top-level value: a Bencode stream holds exactly one value.
//     Trailing bytes are tolerated unless [WithStrictTrailing] is set.
package bencode
