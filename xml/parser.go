package xml

import (
	"errors"
	"fmt"
	"strings"

	"go.h4codec.dev/h4/xlog"
	"go.h4codec.dev/h4/xml/dtd"
)

// parser drives a recursive-descent pass over an [ISource] of decoded,
// normalized Unicode scalars, building an [Node] tree. It mirrors the
// Bencode/JSON parsers' shape (a struct wrapping the source plus any
// parse-wide state) generalized for XML's richer grammar: a tag-balance
// stack for well-formedness, an attribute-scope stack for xml:space/
// xml:lang inheritance, and an entity-expansion stack for cycle
// detection.
type parser struct {
	src ISource
	cfg *config

	tags     []string // open element names, for end-tag balance checking
	scopes   []scope
	entities *entityStack
	dtd      *dtd.DTD
}

type scope struct {
	space string
	lang  string
}

// Parse reads one XML document from src: an optional declaration, an
// optional DOCTYPE, the root element, and any prolog/epilog PIs and
// comments. If [WithValidation] is set and the document declares a
// DOCTYPE, the tree is validated once parsing completes; the document is
// still returned alongside a non-nil error built from the accumulated
// [ValidationError]s via errors.Join, so callers that only care about
// well-formedness can ignore the distinction and callers that care about
// validity can errors.As into individual violations.
func Parse(src ISource, opts ...Option) (*Node, error) {
	p := &parser{
		src:      src,
		cfg:      newConfig(opts),
		entities: newEntityStack(),
		scopes:   []scope{{space: "default"}},
	}

	doc := NewDocument()

	if err := p.parseDeclaration(doc); err != nil {
		return nil, err
	}

	if err := p.parseMisc(&doc.Prolog); err != nil {
		return nil, err
	}

	if err := p.parseDoctype(doc); err != nil {
		return nil, err
	}

	if err := p.parseMisc(&doc.Prolog); err != nil {
		return nil, err
	}

	root, err := p.parseElement()
	if err != nil {
		return nil, err
	}

	doc.Root = root

	if err := p.parseMisc(&doc.Epilog); err != nil {
		return nil, err
	}

	if len(p.tags) != 0 {
		return nil, fmt.Errorf("xml: document ends with %d unclosed element(s): %w", len(p.tags), ErrUnbalancedTag)
	}

	if p.cfg.validate && doc.DTD != nil {
		if violations := Validate(doc, p.cfg.failFast); len(violations) > 0 {
			return doc, errors.Join(violations...)
		}
	}

	return doc, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Line: p.src.Line(), Column: p.src.Column(), Offset: p.src.Position(), Err: ErrSyntax}
}

func (p *parser) skipSpace() error {
	for p.src.More() {
		r, _ := p.src.Current()
		if !isXMLSpace(r) {
			return nil
		}

		if err := p.src.Next(); err != nil {
			return err
		}
	}

	return nil
}

func isXMLSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// parseDeclaration parses an optional `<?xml version="1.0" ...?>` prolog.
func (p *parser) parseDeclaration(doc *Node) error {
	if !Match(p.src, []rune("<?xml")) {
		return nil
	}

	decl := &Declaration{}

	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		if Match(p.src, []rune("?>")) {
			break
		}

		name, err := p.readName()
		if err != nil {
			return err
		}

		if err := p.skipSpace(); err != nil {
			return err
		}

		if err := p.expectRune('='); err != nil {
			return err
		}

		if err := p.skipSpace(); err != nil {
			return err
		}

		val, err := p.readQuoted()
		if err != nil {
			return err
		}

		switch name {
		case "version":
			decl.Version = val
		case "encoding":
			decl.Encoding = val
		case "standalone":
			decl.Standalone = val
		}
	}

	doc.Declaration = decl

	return nil
}

// parseMisc consumes a run of comments and processing instructions
// (Misc*), appending each as a Node to dst, stopping at the first
// non-Misc, non-whitespace content.
func (p *parser) parseMisc(dst *[]*Node) error {
	for {
		if err := p.skipSpace(); err != nil {
			return err
		}

		switch {
		case Match(p.src, []rune("<!--")):
			n, err := p.finishComment()
			if err != nil {
				return err
			}

			*dst = append(*dst, n)
		case Match(p.src, []rune("<?")):
			n, err := p.finishPI()
			if err != nil {
				return err
			}

			*dst = append(*dst, n)
		default:
			return nil
		}
	}
}

// parseDoctype parses an optional `<!DOCTYPE root [internal-subset]>` (or
// with an external SYSTEM/PUBLIC identifier), invoking package dtd to
// build the structured [dtd.DTD].
func (p *parser) parseDoctype(doc *Node) error {
	if err := p.skipSpace(); err != nil {
		return err
	}

	if !Match(p.src, []rune("<!DOCTYPE")) {
		return nil
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	rootName, err := p.readName()
	if err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	var publicID, systemID string

	hasExternal := false

	switch {
	case Match(p.src, []rune("PUBLIC")):
		hasExternal = true

		if err := p.skipSpace(); err != nil {
			return err
		}

		if publicID, err = p.readQuoted(); err != nil {
			return err
		}

		if err := p.skipSpace(); err != nil {
			return err
		}

		if systemID, err = p.readQuoted(); err != nil {
			return err
		}
	case Match(p.src, []rune("SYSTEM")):
		hasExternal = true

		if err := p.skipSpace(); err != nil {
			return err
		}

		if systemID, err = p.readQuoted(); err != nil {
			return err
		}
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	var subset string

	if r, ok := p.src.Current(); ok && r == '[' {
		if err := p.src.Next(); err != nil {
			return err
		}

		start := p.src.Position()

		depth := 1
		for depth > 0 {
			r, ok := p.src.Current()
			if !ok {
				return p.errorf("unterminated internal DTD subset")
			}

			if r == '[' {
				depth++
			}

			if r == ']' {
				depth--

				if depth == 0 {
					break
				}
			}

			if err := p.src.Next(); err != nil {
				return err
			}
		}

		end := p.src.Position()

		subset, err = p.src.GetRange(start, end)
		if err != nil {
			return err
		}

		if err := p.src.Next(); err != nil { // consume ']'
			return err
		}
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	if err := p.expectRune('>'); err != nil {
		return err
	}

	parsed, err := dtd.Parse(rootName, subset, p.cfg.logger)
	if err != nil {
		return err
	}

	parsed.PublicID = publicID
	parsed.SystemID = systemID
	parsed.HasExternalSubset = hasExternal

	if hasExternal && p.cfg.resolver != nil {
		if err := p.mergeExternalSubset(parsed, publicID, systemID); err != nil {
			return err
		}
	} else if hasExternal {
		return fmt.Errorf("xml: document declares an external DTD subset: %w", ErrNoExternalResolver)
	}

	doc.DTD = parsed
	p.dtd = parsed

	return nil
}

// mergeExternalSubset fetches the external subset via the configured
// resolver and merges its declarations into parsed, with the internal
// subset's declarations taking precedence on conflict (W3C REC-xml
// §2.8's internal-subset-wins rule for duplicate declarations).
func (p *parser) mergeExternalSubset(parsed *dtd.DTD, publicID, systemID string) error {
	extSrc, err := p.cfg.resolver(publicID, systemID)
	if err != nil {
		return fmt.Errorf("xml: resolving external subset: %w", err)
	}

	var b strings.Builder

	for extSrc.More() {
		r, _ := extSrc.Current()
		b.WriteRune(r)

		if err := extSrc.Next(); err != nil {
			return err
		}
	}

	ext, err := dtd.Parse(parsed.RootName, b.String(), p.cfg.logger)
	if err != nil {
		return fmt.Errorf("xml: parsing external subset: %w", err)
	}

	for name, decl := range ext.Elements {
		if _, exists := parsed.Elements[name]; !exists {
			parsed.Elements[name] = decl
		}
	}

	for name, decl := range ext.Entities {
		if _, exists := parsed.Entities[name]; !exists {
			parsed.Entities[name] = decl
		}
	}

	for name, decl := range ext.Parameters {
		if _, exists := parsed.Parameters[name]; !exists {
			parsed.Parameters[name] = decl
		}
	}

	for name, n := range ext.Notations {
		if _, exists := parsed.Notations[name]; !exists {
			parsed.Notations[name] = n
		}
	}

	for elem, attrs := range ext.Attributes {
		if _, exists := parsed.Attributes[elem]; !exists {
			parsed.Attributes[elem] = attrs
		}
	}

	return nil
}

func (p *parser) expectRune(r rune) error {
	cur, ok := p.src.Current()
	if !ok || cur != r {
		return p.errorf("expected %q", r)
	}

	return p.src.Next()
}

func (p *parser) readName() (string, error) {
	var b strings.Builder

	r, ok := p.src.Current()
	if !ok || !isNameStartRune(r) {
		return "", p.errorf("expected name")
	}

	for {
		r, ok := p.src.Current()
		if !ok || !isNameRune(r) {
			break
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

func isNameStartRune(r rune) bool {
	return r == '_' || r == ':' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 0x7F
}

func isNameRune(r rune) bool {
	return isNameStartRune(r) || r == '-' || r == '.' || (r >= '0' && r <= '9')
}

func (p *parser) readQuoted() (string, error) {
	r, ok := p.src.Current()
	if !ok || (r != '"' && r != '\'') {
		return "", p.errorf("expected quoted literal")
	}

	quote := r

	if err := p.src.Next(); err != nil {
		return "", err
	}

	var b strings.Builder

	for {
		r, ok := p.src.Current()
		if !ok {
			return "", p.errorf("unterminated quoted literal")
		}

		if r == quote {
			return b.String(), p.src.Next()
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return "", err
		}
	}
}

// parseElement parses one Element node starting at '<', including its
// attributes, and either a self-closing "/>" or its children through the
// matching end tag.
func (p *parser) parseElement() (*Node, error) {
	if err := p.expectRune('<'); err != nil {
		return nil, err
	}

	name, err := p.readName()
	if err != nil {
		return nil, err
	}

	el := NewElement(name)
	cur := p.currentScope()
	el.Space = cur.space
	el.Lang = cur.lang

	seenAttrs := make(map[string]bool)

	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		r, ok := p.src.Current()
		if !ok {
			return nil, p.errorf("unterminated start tag for %q", name)
		}

		if r == '/' || r == '>' {
			break
		}

		attr, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}

		qname := attr.Name
		if attr.Prefix != "" {
			qname = attr.Prefix + ":" + attr.Name
		}

		if seenAttrs[qname] {
			return nil, p.errorf("duplicate attribute %q on element %q", qname, name)
		}

		seenAttrs[qname] = true

		el.Attributes = append(el.Attributes, attr)

		if attr.Prefix == "xml" && attr.Name == "space" {
			cur.space = attr.Value
		}

		if attr.Prefix == "xml" && attr.Name == "lang" {
			cur.lang = attr.Value
		}
	}

	el.Space = cur.space
	el.Lang = cur.lang

	if Match(p.src, []rune("/>")) {
		el.SelfClose = true

		return el, nil
	}

	if err := p.expectRune('>'); err != nil {
		return nil, err
	}

	p.tags = append(p.tags, el.QualifiedName())
	p.scopes = append(p.scopes, cur)

	if err := p.parseContent(el); err != nil {
		return nil, err
	}

	p.scopes = p.scopes[:len(p.scopes)-1]

	return el, nil
}

func (p *parser) currentScope() scope {
	return p.scopes[len(p.scopes)-1]
}

func (p *parser) parseAttribute() (Attribute, error) {
	name, err := p.readName()
	if err != nil {
		return Attribute{}, err
	}

	prefix, local := splitPrefix(name)

	if err := p.skipSpace(); err != nil {
		return Attribute{}, err
	}

	if err := p.expectRune('='); err != nil {
		return Attribute{}, err
	}

	if err := p.skipSpace(); err != nil {
		return Attribute{}, err
	}

	rawVal, err := p.readQuoted()
	if err != nil {
		return Attribute{}, err
	}

	val, err := p.expandAttributeValue(rawVal)
	if err != nil {
		return Attribute{}, err
	}

	return Attribute{Name: local, Prefix: prefix, Value: val}, nil
}

// expandAttributeValue resolves entity and character references within
// an attribute value literal (which is read whole, outside the main
// content scanner).
func (p *parser) expandAttributeValue(raw string) (string, error) {
	var b strings.Builder

	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '&' {
			b.WriteRune(runes[i])

			continue
		}

		end := indexRune(runes[i:], ';')
		if end < 0 {
			return "", p.errorf("unterminated entity reference in attribute value")
		}

		ref := string(runes[i+1 : i+end])
		i += end

		expanded, err := p.expandReference(ref)
		if err != nil {
			return "", err
		}

		b.WriteString(expanded)
	}

	return b.String(), nil
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}

	return -1
}

// expandReference resolves one "&ref;" body (without the delimiters):
// a character reference ("#n" / "#xH") or a general entity name.
func (p *parser) expandReference(ref string) (string, error) {
	if strings.HasPrefix(ref, "#x") || strings.HasPrefix(ref, "#X") {
		r, err := decodeCharRef(ref[2:], true)
		if err != nil {
			return "", err
		}

		return string(r), nil
	}

	if strings.HasPrefix(ref, "#") {
		r, err := decodeCharRef(ref[1:], false)
		if err != nil {
			return "", err
		}

		return string(r), nil
	}

	if text, ok := predefinedEntities[ref]; ok {
		return text, nil
	}

	if err := p.entities.push(ref); err != nil {
		return "", err
	}
	xlog.OrDefault(p.cfg.logger).Debug("entity expansion push", "name", ref, "depth", len(p.entities.order))
	defer func() {
		p.entities.pop()
		xlog.OrDefault(p.cfg.logger).Debug("entity expansion pop", "name", ref)
	}()

	text, err := resolveEntity(p.dtd, ref)
	if err != nil {
		return "", err
	}

	return p.expandAttributeValue(text)
}

// parseContent parses el's children until its matching end tag, handling
// text, CDATA sections, nested elements, comments, PIs, and entity
// references.
func (p *parser) parseContent(el *Node) error {
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			el.Children = append(el.Children, &Node{Kind: KindContent, Text: text.String()})
			text.Reset()
		}
	}

	for {
		r, ok := p.src.Current()
		if !ok {
			return p.errorf("unterminated element %q", el.QualifiedName())
		}

		switch {
		case r == '<' && Match(p.src, []rune("</")):
			flush()

			return p.parseEndTag(el)
		case r == '<' && Match(p.src, []rune("<![CDATA[")):
			flush()

			n, err := p.finishCDATA()
			if err != nil {
				return err
			}

			el.Children = append(el.Children, n)
		case r == '<' && Match(p.src, []rune("<!--")):
			flush()

			n, err := p.finishComment()
			if err != nil {
				return err
			}

			el.Children = append(el.Children, n)
		case r == '<' && Match(p.src, []rune("<?")):
			flush()

			n, err := p.finishPI()
			if err != nil {
				return err
			}

			el.Children = append(el.Children, n)
		case r == '<':
			flush()

			child, err := p.parseElement()
			if err != nil {
				return err
			}

			el.Children = append(el.Children, child)
		case r == '&':
			flush()

			n, err := p.parseEntityReferenceNode()
			if err != nil {
				return err
			}

			el.Children = append(el.Children, n)
		default:
			text.WriteRune(r)

			if err := p.src.Next(); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseEndTag(el *Node) error {
	name, err := p.readName()
	if err != nil {
		return err
	}

	if err := p.skipSpace(); err != nil {
		return err
	}

	if err := p.expectRune('>'); err != nil {
		return err
	}

	if len(p.tags) == 0 || p.tags[len(p.tags)-1] != name {
		return fmt.Errorf("xml: end tag %q does not match open element: %w", name, ErrUnbalancedTag)
	}

	p.tags = p.tags[:len(p.tags)-1]

	return nil
}

// parseEntityReferenceNode parses a "&ref;" occurring directly in
// element content, preserving it as a [KindEntityReference] node (so
// stringification can round-trip the reference literally) while also
// resolving its expansion for callers that want the resolved text.
func (p *parser) parseEntityReferenceNode() (*Node, error) {
	if err := p.expectRune('&'); err != nil {
		return nil, err
	}

	var b strings.Builder

	for {
		r, ok := p.src.Current()
		if !ok {
			return nil, p.errorf("unterminated entity reference")
		}

		if r == ';' {
			if err := p.src.Next(); err != nil {
				return nil, err
			}

			break
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}

	ref := b.String()

	expansion, err := p.expandReference(ref)
	if err != nil {
		return nil, err
	}

	return &Node{Kind: KindEntityReference, EntityName: ref, Expansion: expansion}, nil
}

func (p *parser) finishCDATA() (*Node, error) {
	var b strings.Builder

	for {
		if Match(p.src, []rune("]]>")) {
			return &Node{Kind: KindCDATA, Text: b.String()}, nil
		}

		r, ok := p.src.Current()
		if !ok {
			return nil, p.errorf("unterminated CDATA section")
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) finishComment() (*Node, error) {
	var b strings.Builder

	for {
		if Match(p.src, []rune("-->")) {
			return &Node{Kind: KindComment, Text: b.String()}, nil
		}

		r, ok := p.src.Current()
		if !ok {
			return nil, p.errorf("unterminated comment")
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}
}

func (p *parser) finishPI() (*Node, error) {
	target, err := p.readName()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	var b strings.Builder

	for {
		if Match(p.src, []rune("?>")) {
			return &Node{Kind: KindProcessingInstruction, Target: target, Data: b.String()}, nil
		}

		r, ok := p.src.Current()
		if !ok {
			return nil, p.errorf("unterminated processing instruction")
		}

		b.WriteRune(r)

		if err := p.src.Next(); err != nil {
			return nil, err
		}
	}
}
