package bencode

import (
	"fmt"
	"sort"

	"go.h4codec.dev/h4/xlog"
)

// Decode reads a single top-level Bencode value from src.
//
// Trailing bytes after the value are tolerated unless [WithStrictTrailing]
// is set. Dictionary keys are expected in byte-lexicographic order unless
// [WithStrictOrder] is false (the default), in which case out-of-order
// input is accepted and [Node]s are always stored sorted (so re-[Encode]
// is canonical regardless of input order).
func Decode(src ISource, opts ...Option) (*Node, error) {
	c := newConfig(opts...)
	p := &parser{src: src, cfg: c}

	node, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if c.strictTrailing && src.More() {
		return nil, newSyntaxError(src.Position(), "trailing bytes after top-level value", nil)
	}

	return node, nil
}

type parser struct {
	src ISource
	cfg *config
}

func (p *parser) fail(msg string) error {
	return newSyntaxError(p.src.Position(), msg, nil)
}

func (p *parser) parseValue() (*Node, error) {
	b, ok := p.src.Current()
	if !ok {
		return nil, newSyntaxError(p.src.Position(), "unexpected end of input", ErrBufferExhausted)
	}

	switch {
	case b == 'i':
		return p.parseInteger()
	case b == 'l':
		return p.parseList()
	case b == 'd':
		return p.parseDictionary()
	case b >= '0' && b <= '9':
		return p.parseString()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q", b))
	}
}

// parseInteger parses `i<digits>e`. Leading zeros are rejected except the
// literal "0"; "-0" is rejected.
func (p *parser) parseInteger() (*Node, error) {
	start := p.src.Position()

	if err := p.src.Next(); err != nil { // consume 'i'
		return nil, err
	}

	digitsStart := p.src.Position()
	neg := false

	if b, ok := p.src.Current(); ok && b == '-' {
		neg = true

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	numStart := p.src.Position()

	var value int64

	digits := 0

	for {
		b, ok := p.src.Current()
		if !ok {
			return nil, newSyntaxError(p.src.Position(), "unterminated integer", ErrBufferExhausted)
		}

		if b == 'e' {
			break
		}

		if b < '0' || b > '9' {
			return nil, newSyntaxError(p.src.Position(), fmt.Sprintf("invalid digit %q in integer", b), nil)
		}

		value = value*10 + int64(b-'0')
		digits++

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	if digits == 0 {
		return nil, newSyntaxError(p.src.Position(), "empty integer", nil)
	}

	raw, err := p.src.GetRange(numStart, p.src.Position())
	if err != nil {
		return nil, err
	}

	if len(raw) > 1 && raw[0] == '0' {
		return nil, newSyntaxError(digitsStart, "integer has leading zero", nil)
	}

	if neg && value == 0 {
		return nil, newSyntaxError(start, "negative zero is invalid", nil)
	}

	if err := p.src.Next(); err != nil { // consume 'e'
		return nil, err
	}

	if neg {
		value = -value
	}

	return NewInteger(value), nil
}

// parseString parses `<len>:<bytes>`. len has no leading zero except the
// literal "0" alone.
func (p *parser) parseString() (*Node, error) {
	lenStart := p.src.Position()

	var length int64

	digits := 0

	for {
		b, ok := p.src.Current()
		if !ok {
			return nil, newSyntaxError(p.src.Position(), "unterminated string length", ErrBufferExhausted)
		}

		if b == ':' {
			break
		}

		if b < '0' || b > '9' {
			return nil, newSyntaxError(p.src.Position(), fmt.Sprintf("invalid digit %q in string length", b), nil)
		}

		length = length*10 + int64(b-'0')
		digits++

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	raw, err := p.src.GetRange(lenStart, p.src.Position())
	if err != nil {
		return nil, err
	}

	if len(raw) > 1 && raw[0] == '0' {
		return nil, newSyntaxError(lenStart, "string length has leading zero", nil)
	}

	if err := p.src.Next(); err != nil { // consume ':'
		return nil, err
	}

	start := p.src.Position()

	for i := int64(0); i < length; i++ {
		if !p.src.More() {
			return nil, newSyntaxError(p.src.Position(), "string shorter than declared length", ErrBufferExhausted)
		}

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	raw, err = p.src.GetRange(start, p.src.Position())
	if err != nil {
		return nil, err
	}

	return NewString(raw), nil
}

func (p *parser) parseList() (*Node, error) {
	if err := p.src.Next(); err != nil { // consume 'l'
		return nil, err
	}

	var items []*Node

	for {
		b, ok := p.src.Current()
		if !ok {
			return nil, newSyntaxError(p.src.Position(), "unterminated list", ErrBufferExhausted)
		}

		if b == 'e' {
			break
		}

		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := p.src.Next(); err != nil { // consume 'e'
		return nil, err
	}

	return &Node{Kind: KindList, list: items}, nil
}

func (p *parser) parseDictionary() (*Node, error) {
	if err := p.src.Next(); err != nil { // consume 'd'
		return nil, err
	}

	var entries []DictEntry

	seen := make(map[string]bool)

	for {
		b, ok := p.src.Current()
		if !ok {
			return nil, newSyntaxError(p.src.Position(), "unterminated dictionary", ErrBufferExhausted)
		}

		if b == 'e' {
			break
		}

		if b < '0' || b > '9' {
			return nil, p.fail("dictionary key must be a bencode string")
		}

		keyNode, err := p.parseString()
		if err != nil {
			return nil, err
		}

		key, _ := keyNode.Bytes()
		keyStr := string(key)

		if seen[keyStr] {
			return nil, newSyntaxError(p.src.Position(), fmt.Sprintf("duplicate key %q", keyStr), ErrDuplicateKey)
		}

		if p.cfg.strictOrder && len(entries) > 0 && keyStr < string(entries[len(entries)-1].Key) {
			return nil, newSyntaxError(p.src.Position(), fmt.Sprintf("key %q out of order", keyStr), ErrUnorderedKey)
		}

		seen[keyStr] = true

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		entries = append(entries, DictEntry{Key: key, Value: value})
	}

	if err := p.src.Next(); err != nil { // consume 'e'
		return nil, err
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return string(entries[i].Key) < string(entries[j].Key) }) {
		xlog.OrDefault(p.cfg.logger).Debug("reordering dictionary keys", "count", len(entries))
	}

	sortEntries(entries)

	return &Node{Kind: KindDictionary, dict: entries}, nil
}

func sortEntries(entries []DictEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return string(entries[i].Key) < string(entries[j].Key)
	})
}
