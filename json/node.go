package json

import "strconv"

// Kind identifies which variant a [Node] holds.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Member is one key/value pair of an [Object] node, in insertion order.
type Member struct {
	Key   string
	Value *Node
}

// Node is a tagged union over the six JSON value types.
type Node struct {
	Kind Kind

	boolean bool
	lexeme  string // original numeric lexeme, Kind == KindNumber
	numeric *float64
	str     string
	array   []*Node
	object  []Member
}

// NewNull returns a Null node.
func NewNull() *Node { return &Node{Kind: KindNull} }

// NewBoolean returns a Boolean node.
func NewBoolean(v bool) *Node { return &Node{Kind: KindBoolean, boolean: v} }

// NewString returns a String node holding the already-unescaped Unicode
// text s.
func NewString(s string) *Node { return &Node{Kind: KindString, str: s} }

// NewNumber returns a Number node from the Go value v, formatted with
// [strconv.FormatFloat] in the shortest round-tripping representation.
func NewNumber(v float64) *Node {
	lexeme := strconv.FormatFloat(v, 'g', -1, 64)

	return &Node{Kind: KindNumber, lexeme: lexeme, numeric: &v}
}

// NewNumberFromLexeme returns a Number node that preserves lexeme exactly
// as given (e.g. "1.0e2"), for round-trip-faithful construction.
func NewNumberFromLexeme(lexeme string) *Node {
	return &Node{Kind: KindNumber, lexeme: lexeme}
}

// NewArray returns an Array node over items. items is not copied.
func NewArray(items ...*Node) *Node { return &Node{Kind: KindArray, array: items} }

// NewObject returns an Object node over members, preserving their order.
// Panics if members contains a duplicate key, since construction is a
// programming error rather than a decode-time failure.
func NewObject(members ...Member) *Node {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.Key] {
			panic("json: NewObject: duplicate key " + m.Key)
		}

		seen[m.Key] = true
	}

	return &Node{Kind: KindObject, object: append([]Member(nil), members...)}
}

// Bool returns the boolean payload and true if Kind is KindBoolean.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.Kind != KindBoolean {
		return false, false
	}

	return n.boolean, true
}

// Str returns the string payload and true if Kind is KindString.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}

	return n.str, true
}

// Lexeme returns the original numeric text and true if Kind is KindNumber.
func (n *Node) Lexeme() (string, bool) {
	if n == nil || n.Kind != KindNumber {
		return "", false
	}

	return n.lexeme, true
}

// Float64 lazily parses and memoizes the numeric value of a Number node.
func (n *Node) Float64() (float64, error) {
	if n == nil || n.Kind != KindNumber {
		return 0, ErrSyntax
	}

	if n.numeric != nil {
		return *n.numeric, nil
	}

	v, err := strconv.ParseFloat(n.lexeme, 64)
	if err != nil {
		return 0, err
	}

	n.numeric = &v

	return v, nil
}

// Array returns the element slice and true if Kind is KindArray.
func (n *Node) Array() ([]*Node, bool) {
	if n == nil || n.Kind != KindArray {
		return nil, false
	}

	return n.array, true
}

// Members returns the object members in insertion order and true if Kind
// is KindObject.
func (n *Node) Members() ([]Member, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}

	return n.object, true
}

// Get looks up key in an Object node via linear scan. Returns nil, false
// if n is not an Object or key is absent.
func (n *Node) Get(key string) (*Node, bool) {
	members, ok := n.Members()
	if !ok {
		return nil, false
	}

	for _, m := range members {
		if m.Key == key {
			return m.Value, true
		}
	}

	return nil, false
}

// IsNull reports whether n is nil or holds the JSON null value.
func (n *Node) IsNull() bool {
	return n == nil || n.Kind == KindNull
}
