package bencode

import "sort"

// Kind identifies which variant a [Node] holds.
type Kind int

const (
	// KindNone is the sentinel zero value: an empty/absent node.
	KindNone Kind = iota
	KindInteger
	KindString
	KindList
	KindDictionary
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDictionary:
		return "dictionary"
	default:
		return "none"
	}
}

// DictEntry is one key/value pair of a [Dictionary] node. Keys are raw
// bytes, not Unicode text, matching Bencode's opaque string type.
type DictEntry struct {
	Key   []byte
	Value *Node
}

// Node is a tagged union over the four Bencode value types plus the None
// sentinel. Exactly one of the accessor fields is meaningful, selected by
// Kind.
type Node struct {
	Kind Kind

	integer int64
	str     []byte
	list    []*Node
	dict    []DictEntry
}

// NewInteger returns an Integer node.
func NewInteger(v int64) *Node { return &Node{Kind: KindInteger, integer: v} }

// NewString returns a String node wrapping b. b is not copied.
func NewString(b []byte) *Node { return &Node{Kind: KindString, str: b} }

// NewList returns a List node over items. items is not copied.
func NewList(items ...*Node) *Node { return &Node{Kind: KindList, list: items} }

// NewDictionary returns a Dictionary node. Entries are sorted into
// byte-lexicographic key order immediately; duplicate keys panic, since
// construction is a programming error, not a decode-time failure.
func NewDictionary(entries ...DictEntry) *Node {
	d := &Node{Kind: KindDictionary, dict: append([]DictEntry(nil), entries...)}
	sort.Slice(d.dict, func(i, j int) bool {
		return string(d.dict[i].Key) < string(d.dict[j].Key)
	})

	for i := 1; i < len(d.dict); i++ {
		if string(d.dict[i-1].Key) == string(d.dict[i].Key) {
			panic("bencode: NewDictionary: duplicate key " + string(d.dict[i].Key))
		}
	}

	return d
}

// Int64 returns the integer payload and true if Kind is KindInteger.
func (n *Node) Int64() (int64, bool) {
	if n == nil || n.Kind != KindInteger {
		return 0, false
	}

	return n.integer, true
}

// Bytes returns the string payload and true if Kind is KindString.
func (n *Node) Bytes() ([]byte, bool) {
	if n == nil || n.Kind != KindString {
		return nil, false
	}

	return n.str, true
}

// String returns the string payload decoded as-is, or "" if Kind is not
// KindString. Bencode strings are opaque bytes; this is a convenience for
// callers who know the payload is text.
func (n *Node) String() string {
	b, ok := n.Bytes()
	if !ok {
		return ""
	}

	return string(b)
}

// List returns the element slice and true if Kind is KindList.
func (n *Node) List() ([]*Node, bool) {
	if n == nil || n.Kind != KindList {
		return nil, false
	}

	return n.list, true
}

// Entries returns the dictionary entries, already in byte-lexicographic
// key order, and true if Kind is KindDictionary.
func (n *Node) Entries() ([]DictEntry, bool) {
	if n == nil || n.Kind != KindDictionary {
		return nil, false
	}

	return n.dict, true
}

// Get looks up key in a Dictionary node via linear scan (dictionaries in
// Bencode documents are typically small). Returns nil, false if n is not a
// Dictionary or key is absent.
func (n *Node) Get(key string) (*Node, bool) {
	entries, ok := n.Entries()
	if !ok {
		return nil, false
	}

	for _, e := range entries {
		if string(e.Key) == key {
			return e.Value, true
		}
	}

	return nil, false
}

// Visitor receives callbacks for each [Node] kind during [Node.Walk].
type Visitor interface {
	VisitInteger(v int64)
	VisitString(b []byte)
	VisitList(items []*Node)
	VisitDictionary(entries []DictEntry)
	VisitNone()
}

// Walk dispatches n to the matching Visitor method. It does not recurse
// into List/Dictionary children; callers that want a full traversal call
// Walk again on each child from within their Visitor implementation.
func (n *Node) Walk(v Visitor) {
	if n == nil {
		v.VisitNone()

		return
	}

	switch n.Kind {
	case KindInteger:
		v.VisitInteger(n.integer)
	case KindString:
		v.VisitString(n.str)
	case KindList:
		v.VisitList(n.list)
	case KindDictionary:
		v.VisitDictionary(n.dict)
	default:
		v.VisitNone()
	}
}

// Equal reports whether n and other represent the same value, recursively.
// Dictionary comparison is order-independent on input but both sides are
// always key-sorted internally, so a simple positional comparison suffices.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}

	if n.Kind != other.Kind {
		return false
	}

	switch n.Kind {
	case KindInteger:
		return n.integer == other.integer
	case KindString:
		return string(n.str) == string(other.str)
	case KindList:
		if len(n.list) != len(other.list) {
			return false
		}

		for i := range n.list {
			if !n.list[i].Equal(other.list[i]) {
				return false
			}
		}

		return true
	case KindDictionary:
		if len(n.dict) != len(other.dict) {
			return false
		}

		for i := range n.dict {
			if string(n.dict[i].Key) != string(other.dict[i].Key) {
				return false
			}

			if !n.dict[i].Value.Equal(other.dict[i].Value) {
				return false
			}
		}

		return true
	default:
		return true
	}
}
