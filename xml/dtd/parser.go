package dtd

import (
	"fmt"
	"log/slog"
	"strings"

	"go.h4codec.dev/h4/xlog"
)

// parser scans a DTD internal/external subset held entirely in memory. The
// subset is small relative to document content, so unlike the document
// parser it works over a plain string rather than pulling through an
// ISource.
type parser struct {
	src    string
	pos    int
	dtd    *DTD
	logger *slog.Logger
}

// Parse reads the markup declarations of a DTD subset and returns the
// resulting [DTD] with RootName set to rootName. subset is the bracketed
// internal subset content with the enclosing '[' ']' removed (or the text
// of an external subset), or "" if the document declared no internal
// subset.
//
// logger is an optional diagnostic sink (nil-safe, defaulting to
// [slog.Default]); callers outside package xml typically omit it.
func Parse(rootName, subset string, logger ...*slog.Logger) (*DTD, error) {
	var l *slog.Logger
	if len(logger) > 0 {
		l = logger[0]
	}

	p := &parser{src: subset, dtd: New(rootName), logger: xlog.OrDefault(l)}

	if err := p.parseSubset(); err != nil {
		return nil, err
	}

	return p.dtd, nil
}

func (p *parser) parseSubset() error {
	for {
		p.skipSpace()

		if p.pos >= len(p.src) {
			return nil
		}

		if !strings.HasPrefix(p.src[p.pos:], "<!") {
			return p.errorf("expected markup declaration")
		}

		switch {
		case strings.HasPrefix(p.src[p.pos:], "<!ELEMENT"):
			if err := p.parseElement(); err != nil {
				return err
			}
		case strings.HasPrefix(p.src[p.pos:], "<!ATTLIST"):
			if err := p.parseAttlist(); err != nil {
				return err
			}
		case strings.HasPrefix(p.src[p.pos:], "<!ENTITY"):
			if err := p.parseEntity(); err != nil {
				return err
			}
		case strings.HasPrefix(p.src[p.pos:], "<!NOTATION"):
			if err := p.parseNotation(); err != nil {
				return err
			}
		case strings.HasPrefix(p.src[p.pos:], "<!--"):
			if err := p.skipComment(); err != nil {
				return err
			}
		default:
			return p.errorf("unrecognized markup declaration")
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Offset: int64(p.pos), Err: ErrSyntax}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func (p *parser) skipComment() error {
	end := strings.Index(p.src[p.pos:], "-->")
	if end < 0 {
		return p.errorf("unterminated comment")
	}

	p.pos += end + len("-->")

	return nil
}

func (p *parser) expect(tok string) error {
	if !strings.HasPrefix(p.src[p.pos:], tok) {
		return p.errorf("expected %q", tok)
	}

	p.pos += len(tok)

	return nil
}

// readName reads an XML Name token (NameStartChar NameChar*, simplified to
// ASCII letters, digits and "-_.:"; unlike the document parser's tag
// names, non-ASCII characters are not accepted).
func (p *parser) readName() (string, error) {
	start := p.pos

	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}

	if p.pos == start {
		return "", p.errorf("expected name")
	}

	return p.src[start:p.pos], nil
}

func isNameChar(b byte) bool {
	return b == '-' || b == '_' || b == '.' || b == ':' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// readUntil reads up to (excluding) the next occurrence of any byte in
// stop, used for bracketed content-model text and default attribute
// values.
func (p *parser) readUntil(stop string) string {
	start := p.pos

	for p.pos < len(p.src) && !strings.ContainsRune(stop, rune(p.src[p.pos])) {
		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *parser) readQuoted() (string, error) {
	if p.pos >= len(p.src) || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
		return "", p.errorf("expected quoted literal")
	}

	quote := p.src[p.pos]
	p.pos++
	start := p.pos

	for p.pos < len(p.src) && p.src[p.pos] != quote {
		p.pos++
	}

	if p.pos >= len(p.src) {
		return "", p.errorf("unterminated quoted literal")
	}

	val := p.src[start:p.pos]
	p.pos++

	return val, nil
}

// parseElement parses `<!ELEMENT name content-spec>`.
func (p *parser) parseElement() error {
	if err := p.expect("<!ELEMENT"); err != nil {
		return err
	}

	p.skipSpace()

	name, err := p.readName()
	if err != nil {
		return err
	}

	p.skipSpace()

	cm, err := p.parseContentSpec()
	if err != nil {
		return err
	}

	p.skipSpace()

	if err := p.expect(">"); err != nil {
		return err
	}

	p.dtd.Elements[name] = &ElementDecl{Name: name, Content: *cm}
	p.logger.Debug("registered element declaration", "name", name)

	return nil
}

func (p *parser) parseContentSpec() (*ContentModel, error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "EMPTY"):
		p.pos += len("EMPTY")

		return &ContentModel{Kind: ContentEmpty}, nil
	case strings.HasPrefix(p.src[p.pos:], "ANY"):
		p.pos += len("ANY")

		return &ContentModel{Kind: ContentAny}, nil
	case p.pos < len(p.src) && p.src[p.pos] == '(':
		return p.parseParenthesizedSpec()
	default:
		return nil, p.errorf("expected content spec")
	}
}

// parseParenthesizedSpec handles both Mixed ("(#PCDATA|a|b)*") and
// children ("(a,(b|c)+,d?)") content models.
func (p *parser) parseParenthesizedSpec() (*ContentModel, error) {
	if strings.HasPrefix(p.src[p.pos:], "(#PCDATA") {
		return p.parseMixed()
	}

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &ContentModel{Kind: ContentChildren, Root: root}, nil
}

func (p *parser) parseMixed() (*ContentModel, error) {
	if err := p.expect("(#PCDATA"); err != nil {
		return nil, err
	}

	var names []string

	for {
		p.skipSpace()

		if p.pos < len(p.src) && p.src[p.pos] == ')' {
			p.pos++

			break
		}

		if err := p.expect("|"); err != nil {
			return nil, err
		}

		p.skipSpace()

		name, err := p.readName()
		if err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	if p.pos < len(p.src) && p.src[p.pos] == '*' {
		p.pos++
	}

	return &ContentModel{Kind: ContentMixed, Mixed: names}, nil
}

// parseExpr parses one parenthesized group: a comma-separated sequence or
// a pipe-separated choice of names/nested groups, each with an optional
// trailing ?, *, + occurrence indicator.
func (p *parser) parseExpr() (*Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	var children []*Expr

	kind := ExprSeq
	sawSep := false

	for {
		p.skipSpace()

		child, err := p.parseParticle()
		if err != nil {
			return nil, err
		}

		children = append(children, child)
		p.skipSpace()

		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated content model group")
		}

		switch p.src[p.pos] {
		case ',':
			if sawSep && kind != ExprSeq {
				return nil, p.errorf("mixed , and | in content model group")
			}

			kind = ExprSeq
			sawSep = true
			p.pos++
		case '|':
			if sawSep && kind != ExprChoice {
				return nil, p.errorf("mixed , and | in content model group")
			}

			kind = ExprChoice
			sawSep = true
			p.pos++
		case ')':
			p.pos++

			return &Expr{Kind: kind, Children: children, Occur: p.parseOccurrence()}, nil
		default:
			return nil, p.errorf("expected , | or ) in content model group")
		}
	}
}

// parseParticle parses one content-model atom: either a nested
// parenthesized group, or a bare name with an optional occurrence suffix.
func (p *parser) parseParticle() (*Expr, error) {
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		return p.parseExpr()
	}

	name, err := p.readName()
	if err != nil {
		return nil, err
	}

	return &Expr{Kind: ExprName, Name: name, Occur: p.parseOccurrence()}, nil
}

func (p *parser) parseOccurrence() Occurrence {
	if p.pos >= len(p.src) {
		return OccurOnce
	}

	switch p.src[p.pos] {
	case '?':
		p.pos++

		return OccurOptional
	case '*':
		p.pos++

		return OccurZeroOrMore
	case '+':
		p.pos++

		return OccurOneOrMore
	default:
		return OccurOnce
	}
}

// parseAttlist parses `<!ATTLIST element-name (attr-name type default)+>`.
func (p *parser) parseAttlist() error {
	if err := p.expect("<!ATTLIST"); err != nil {
		return err
	}

	p.skipSpace()

	element, err := p.readName()
	if err != nil {
		return err
	}

	for {
		p.skipSpace()

		if p.pos < len(p.src) && p.src[p.pos] == '>' {
			p.pos++

			break
		}

		decl, err := p.parseAttDef(element)
		if err != nil {
			return err
		}

		p.dtd.Attributes[element] = append(p.dtd.Attributes[element], decl)
		p.logger.Debug("registered attribute declaration", "element", element, "attr", decl.Name)
	}

	return nil
}

func (p *parser) parseAttDef(element string) (*AttributeDecl, error) {
	name, err := p.readName()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	attrType, enum, err := p.parseAttType()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	def, defVal, err := p.parseAttDefault()
	if err != nil {
		return nil, err
	}

	return &AttributeDecl{
		Element: element, Name: name, Type: attrType, Enumeration: enum,
		Default: def, DefaultValue: defVal,
	}, nil
}

func (p *parser) parseAttType() (AttrType, []string, error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "CDATA"):
		p.pos += len("CDATA")

		return AttrCDATA, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "IDREFS"):
		p.pos += len("IDREFS")

		return AttrIDREFS, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "IDREF"):
		p.pos += len("IDREF")

		return AttrIDREF, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "ID"):
		p.pos += len("ID")

		return AttrID, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "ENTITIES"):
		p.pos += len("ENTITIES")

		return AttrENTITIES, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "ENTITY"):
		p.pos += len("ENTITY")

		return AttrENTITY, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "NMTOKENS"):
		p.pos += len("NMTOKENS")

		return AttrNMTOKENS, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "NMTOKEN"):
		p.pos += len("NMTOKEN")

		return AttrNMTOKEN, nil, nil
	case strings.HasPrefix(p.src[p.pos:], "NOTATION"):
		p.pos += len("NOTATION")
		p.skipSpace()

		enum, err := p.parseEnumeration()

		return AttrNOTATION, enum, err
	case p.pos < len(p.src) && p.src[p.pos] == '(':
		enum, err := p.parseEnumeration()

		return AttrEnumeration, enum, err
	default:
		return 0, nil, p.errorf("expected attribute type")
	}
}

func (p *parser) parseEnumeration() ([]string, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	var values []string

	for {
		p.skipSpace()

		name, err := p.readName()
		if err != nil {
			return nil, err
		}

		values = append(values, name)
		p.skipSpace()

		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated enumeration")
		}

		if p.src[p.pos] == '|' {
			p.pos++

			continue
		}

		if err := p.expect(")"); err != nil {
			return nil, err
		}

		return values, nil
	}
}

func (p *parser) parseAttDefault() (AttrDefaultKind, string, error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "#REQUIRED"):
		p.pos += len("#REQUIRED")

		return DefaultRequired, "", nil
	case strings.HasPrefix(p.src[p.pos:], "#IMPLIED"):
		p.pos += len("#IMPLIED")

		return DefaultImplied, "", nil
	case strings.HasPrefix(p.src[p.pos:], "#FIXED"):
		p.pos += len("#FIXED")
		p.skipSpace()

		val, err := p.readQuoted()

		return DefaultFixed, val, err
	default:
		val, err := p.readQuoted()

		return DefaultNone, val, err
	}
}

// parseEntity parses `<!ENTITY [%] name ...>`.
func (p *parser) parseEntity() error {
	if err := p.expect("<!ENTITY"); err != nil {
		return err
	}

	p.skipSpace()

	isParam := false
	if p.pos < len(p.src) && p.src[p.pos] == '%' {
		isParam = true
		p.pos++
		p.skipSpace()
	}

	name, err := p.readName()
	if err != nil {
		return err
	}

	p.skipSpace()

	decl := &EntityDecl{Name: name}

	switch {
	case strings.HasPrefix(p.src[p.pos:], "SYSTEM") || strings.HasPrefix(p.src[p.pos:], "PUBLIC"):
		public, system, err := p.parseExternalID()
		if err != nil {
			return err
		}

		decl.PublicID, decl.SystemID = public, system
		decl.Kind = EntityExternalGeneral

		p.skipSpace()

		if strings.HasPrefix(p.src[p.pos:], "NDATA") {
			p.pos += len("NDATA")
			p.skipSpace()

			notation, err := p.readName()
			if err != nil {
				return err
			}

			decl.Notation = notation
			decl.Kind = EntityUnparsedGeneral
		}
	default:
		val, err := p.readQuoted()
		if err != nil {
			return err
		}

		decl.Value = val
		decl.Kind = EntityInternalGeneral
	}

	if isParam {
		decl.Kind = EntityParameter
		p.dtd.Parameters[name] = decl
	} else {
		p.dtd.Entities[name] = decl
	}

	p.logger.Debug("registered entity declaration", "name", name, "parameter", isParam)

	p.skipSpace()

	return p.expect(">")
}

// parseExternalID parses `SYSTEM "sysid"` or `PUBLIC "pubid" "sysid"`.
func (p *parser) parseExternalID() (public, system string, err error) {
	switch {
	case strings.HasPrefix(p.src[p.pos:], "PUBLIC"):
		p.pos += len("PUBLIC")
		p.skipSpace()

		public, err = p.readQuoted()
		if err != nil {
			return "", "", err
		}

		p.skipSpace()
		system, err = p.readQuoted()

		return public, system, err
	case strings.HasPrefix(p.src[p.pos:], "SYSTEM"):
		p.pos += len("SYSTEM")
		p.skipSpace()

		system, err = p.readQuoted()

		return "", system, err
	default:
		return "", "", p.errorf("expected SYSTEM or PUBLIC")
	}
}

// parseNotation parses `<!NOTATION name SYSTEM|PUBLIC ...>`.
func (p *parser) parseNotation() error {
	if err := p.expect("<!NOTATION"); err != nil {
		return err
	}

	p.skipSpace()

	name, err := p.readName()
	if err != nil {
		return err
	}

	p.skipSpace()

	public, system, err := p.parseExternalID()
	if err != nil {
		return err
	}

	p.skipSpace()

	if err := p.expect(">"); err != nil {
		return err
	}

	p.dtd.Notations[name] = &Notation{Name: name, PublicID: public, SystemID: system}
	p.logger.Debug("registered notation declaration", "name", name)

	return nil
}
