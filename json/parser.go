package json

import (
	"fmt"

	"go.h4codec.dev/h4/xlog"
)

// Parse reads a single top-level JSON value from src, per RFC 8259.
// Whitespace is permitted between tokens. Duplicate object keys and
// trailing commas are rejected.
func Parse(src ISource, opts ...Option) (*Node, error) {
	c := newConfig(opts...)
	p := &parser{src: src, cfg: c}

	p.skipWS()

	node, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if node.Kind != KindObject && node.Kind != KindArray {
		xlog.OrDefault(c.logger).Debug("accepted bare top-level scalar document", "kind", node.Kind)
	}

	p.skipWS()

	if src.More() {
		return nil, p.fail("unexpected trailing content after top-level value")
	}

	return node, nil
}

type parser struct {
	src ISource
	cfg *config
}

func (p *parser) fail(msg string) error {
	return &SyntaxError{Msg: msg, Line: p.src.Line(), Column: p.src.Column(), Offset: p.src.Position()}
}

func (p *parser) failWrap(msg string, wrapped error) error {
	return &SyntaxError{Msg: msg, Line: p.src.Line(), Column: p.src.Column(), Offset: p.src.Position(), Err: wrapped}
}

func isWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (p *parser) skipWS() {
	for p.src.More() {
		b, _ := p.src.Current()
		if !isWS(b) {
			break
		}

		_ = p.src.Next()
	}
}

func (p *parser) parseValue() (*Node, error) {
	b, ok := p.src.Current()
	if !ok {
		return nil, p.failWrap("unexpected end of input", ErrBufferExhausted)
	}

	switch {
	case b == '{':
		return p.parseObject()
	case b == '[':
		return p.parseArray()
	case b == '"':
		return p.parseStringNode()
	case b == 't' || b == 'f':
		return p.parseBool()
	case b == 'n':
		return p.parseNull()
	case b == '-' || (b >= '0' && b <= '9'):
		return p.parseNumber()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q", b))
	}
}

func (p *parser) expect(b byte) error {
	cur, ok := p.src.Current()
	if !ok || cur != b {
		return p.fail(fmt.Sprintf("expected %q", b))
	}

	return p.src.Next()
}

func (p *parser) parseObject() (*Node, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}

	var members []Member

	seen := make(map[string]bool)

	p.skipWS()

	if b, ok := p.src.Current(); ok && b == '}' {
		_ = p.src.Next()

		return &Node{Kind: KindObject}, nil
	}

	for {
		p.skipWS()

		b, ok := p.src.Current()
		if !ok || b != '"' {
			return nil, p.fail("expected string key")
		}

		keyNode, err := p.parseStringNode()
		if err != nil {
			return nil, err
		}

		key, _ := keyNode.Str()

		p.skipWS()

		if err := p.expect(':'); err != nil {
			return nil, err
		}

		p.skipWS()

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		if seen[key] {
			return nil, p.failWrap(fmt.Sprintf("duplicate key %q", key), ErrDuplicateKey)
		}

		seen[key] = true

		members = append(members, Member{Key: key, Value: value})

		p.skipWS()

		b, ok = p.src.Current()
		if !ok {
			return nil, p.failWrap("unterminated object", ErrBufferExhausted)
		}

		if b == ',' {
			_ = p.src.Next()
			p.skipWS()

			if b2, ok := p.src.Current(); ok && b2 == '}' {
				return nil, p.fail("trailing comma not allowed in object")
			}

			continue
		}

		if b == '}' {
			_ = p.src.Next()

			break
		}

		return nil, p.fail(fmt.Sprintf("expected ',' or '}', got %q", b))
	}

	return &Node{Kind: KindObject, object: members}, nil
}

func (p *parser) parseArray() (*Node, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}

	var items []*Node

	p.skipWS()

	if b, ok := p.src.Current(); ok && b == ']' {
		_ = p.src.Next()

		return &Node{Kind: KindArray}, nil
	}

	for {
		p.skipWS()

		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		p.skipWS()

		b, ok := p.src.Current()
		if !ok {
			return nil, p.failWrap("unterminated array", ErrBufferExhausted)
		}

		if b == ',' {
			_ = p.src.Next()
			p.skipWS()

			if b2, ok := p.src.Current(); ok && b2 == ']' {
				return nil, p.fail("trailing comma not allowed in array")
			}

			continue
		}

		if b == ']' {
			_ = p.src.Next()

			break
		}

		return nil, p.fail(fmt.Sprintf("expected ',' or ']', got %q", b))
	}

	return &Node{Kind: KindArray, array: items}, nil
}

func (p *parser) parseStringNode() (*Node, error) {
	raw, err := p.scanStringLiteral()
	if err != nil {
		return nil, err
	}

	s, err := FromEscaped(raw)
	if err != nil {
		return nil, p.failWrap(err.Error(), err)
	}

	return &Node{Kind: KindString, str: s}, nil
}

// scanStringLiteral returns the raw (still-escaped) contents between the
// surrounding quotes of the string literal at the current position.
func (p *parser) scanStringLiteral() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}

	start := p.src.Position()

	for {
		b, ok := p.src.Current()
		if !ok {
			return "", p.failWrap("unterminated string", ErrBufferExhausted)
		}

		if b == '"' {
			raw, err := p.src.GetRange(start, p.src.Position())
			if err != nil {
				return "", err
			}

			_ = p.src.Next()

			return string(raw), nil
		}

		if b == '\\' {
			if err := p.src.Next(); err != nil {
				return "", err
			}

			if _, ok := p.src.Current(); !ok {
				return "", p.failWrap("unterminated escape", ErrBufferExhausted)
			}
		}

		if err := p.src.Next(); err != nil {
			return "", err
		}
	}
}

func (p *parser) parseBool() (*Node, error) {
	if Match(p.src, []byte("true")) {
		return NewBoolean(true), nil
	}

	if Match(p.src, []byte("false")) {
		return NewBoolean(false), nil
	}

	return nil, p.fail("invalid literal, expected true or false")
}

func (p *parser) parseNull() (*Node, error) {
	if Match(p.src, []byte("null")) {
		return NewNull(), nil
	}

	return nil, p.fail("invalid literal, expected null")
}

// parseNumber scans a JSON number per RFC 8259's grammar and preserves the
// original lexeme verbatim.
func (p *parser) parseNumber() (*Node, error) {
	start := p.src.Position()

	if b, ok := p.src.Current(); ok && b == '-' {
		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	intStart := p.src.Position()

	if err := p.scanDigits(); err != nil {
		return nil, err
	}

	intRaw, err := p.src.GetRange(intStart, p.src.Position())
	if err != nil {
		return nil, err
	}

	if len(intRaw) == 0 {
		return nil, p.fail("missing digits in number")
	}

	if len(intRaw) > 1 && intRaw[0] == '0' {
		return nil, p.fail("number has leading zero")
	}

	if b, ok := p.src.Current(); ok && b == '.' {
		if err := p.src.Next(); err != nil {
			return nil, err
		}

		fracStart := p.src.Position()

		if err := p.scanDigits(); err != nil {
			return nil, err
		}

		fracRaw, err := p.src.GetRange(fracStart, p.src.Position())
		if err != nil {
			return nil, err
		}

		if len(fracRaw) == 0 {
			return nil, p.fail("missing digits after decimal point")
		}
	}

	if b, ok := p.src.Current(); ok && (b == 'e' || b == 'E') {
		if err := p.src.Next(); err != nil {
			return nil, err
		}

		if b, ok := p.src.Current(); ok && (b == '+' || b == '-') {
			if err := p.src.Next(); err != nil {
				return nil, err
			}
		}

		expStart := p.src.Position()

		if err := p.scanDigits(); err != nil {
			return nil, err
		}

		expRaw, err := p.src.GetRange(expStart, p.src.Position())
		if err != nil {
			return nil, err
		}

		if len(expRaw) == 0 {
			return nil, p.fail("missing digits in exponent")
		}
	}

	raw, err := p.src.GetRange(start, p.src.Position())
	if err != nil {
		return nil, err
	}

	return NewNumberFromLexeme(string(raw)), nil
}

func (p *parser) scanDigits() error {
	for {
		b, ok := p.src.Current()
		if !ok || b < '0' || b > '9' {
			return nil
		}

		if err := p.src.Next(); err != nil {
			return err
		}
	}
}
