package xml

import (
	"fmt"
	"strings"

	"go.h4codec.dev/h4/xml/dtd"
)

// Stringify serializes doc to dst: the XML declaration (if present), any
// prolog Misc nodes, the DTD (if present, re-derived from its structured
// form rather than the original subset text), the root element tree, and
// any epilog Misc nodes.
func Stringify(doc *Node, dst IDestination) error {
	s := &stringifier{dst: dst}

	if doc.Declaration != nil {
		if err := s.writeDeclaration(doc.Declaration); err != nil {
			return err
		}
	}

	for _, n := range doc.Prolog {
		if err := s.writeMisc(n); err != nil {
			return err
		}
	}

	if doc.DTD != nil {
		if err := s.writeDoctype(doc.DTD); err != nil {
			return err
		}
	}

	if doc.Root != nil {
		if err := s.writeElement(doc.Root); err != nil {
			return err
		}
	}

	for _, n := range doc.Epilog {
		if err := s.writeMisc(n); err != nil {
			return err
		}
	}

	return nil
}

type stringifier struct {
	dst IDestination
}

func (s *stringifier) write(text string) error { return s.dst.Add([]byte(text)) }

func (s *stringifier) writeDeclaration(d *Declaration) error {
	var b strings.Builder

	b.WriteString("<?xml version=\"")
	b.WriteString(orDefault(d.Version, "1.0"))
	b.WriteString("\"")

	if d.Encoding != "" {
		fmt.Fprintf(&b, " encoding=\"%s\"", d.Encoding)
	}

	if d.Standalone != "" {
		fmt.Fprintf(&b, " standalone=\"%s\"", d.Standalone)
	}

	b.WriteString("?>\n")

	return s.write(b.String())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

func (s *stringifier) writeMisc(n *Node) error {
	switch n.Kind {
	case KindComment:
		return s.writeComment(n.Text)
	case KindProcessingInstruction:
		return s.writePI(n.Target, n.Data)
	default:
		return nil
	}
}

func (s *stringifier) writeComment(text string) error {
	return s.write("<!--" + text + "-->\n")
}

func (s *stringifier) writePI(target, data string) error {
	if data == "" {
		return s.write(fmt.Sprintf("<?%s?>\n", target))
	}

	return s.write(fmt.Sprintf("<?%s %s?>\n", target, data))
}

// writeDoctype re-emits a `<!DOCTYPE root [...]>` declaration reflecting
// the structured [dtd.DTD], rather than replaying the original subset
// text verbatim (which is not retained after parsing).
func (s *stringifier) writeDoctype(d *dtd.DTD) error {
	var b strings.Builder

	b.WriteString("<!DOCTYPE ")
	b.WriteString(d.RootName)

	switch {
	case d.PublicID != "":
		fmt.Fprintf(&b, " PUBLIC \"%s\" \"%s\"", d.PublicID, d.SystemID)
	case d.SystemID != "":
		fmt.Fprintf(&b, " SYSTEM \"%s\"", d.SystemID)
	}

	hasInternal := len(d.Elements) > 0 || len(d.Attributes) > 0 || len(d.Entities) > 0 || len(d.Notations) > 0

	if hasInternal {
		b.WriteString(" [\n")
		writeElementDecls(&b, d)
		writeAttlistDecls(&b, d)
		writeEntityDecls(&b, d)
		writeNotationDecls(&b, d)
		b.WriteString("]")
	}

	b.WriteString(">\n")

	return s.write(b.String())
}

func writeElementDecls(b *strings.Builder, d *dtd.DTD) {
	for name, decl := range d.Elements {
		fmt.Fprintf(b, "<!ELEMENT %s %s>\n", name, contentSpecString(decl.Content))
	}
}

func contentSpecString(cm dtd.ContentModel) string {
	switch cm.Kind {
	case dtd.ContentEmpty:
		return "EMPTY"
	case dtd.ContentAny:
		return "ANY"
	case dtd.ContentMixed:
		if len(cm.Mixed) == 0 {
			return "(#PCDATA)"
		}

		return "(#PCDATA|" + strings.Join(cm.Mixed, "|") + ")*"
	default:
		return exprString(cm.Root)
	}
}

func exprString(e *dtd.Expr) string {
	if e == nil {
		return "()"
	}

	var core string

	switch e.Kind {
	case dtd.ExprName:
		core = e.Name
	default:
		sep := ","
		if e.Kind == dtd.ExprChoice {
			sep = "|"
		}

		parts := make([]string, len(e.Children))
		for i, c := range e.Children {
			parts[i] = exprString(c)
		}

		core = "(" + strings.Join(parts, sep) + ")"
	}

	switch e.Occur {
	case dtd.OccurOptional:
		return core + "?"
	case dtd.OccurZeroOrMore:
		return core + "*"
	case dtd.OccurOneOrMore:
		return core + "+"
	default:
		return core
	}
}

func writeAttlistDecls(b *strings.Builder, d *dtd.DTD) {
	for elem, attrs := range d.Attributes {
		for _, a := range attrs {
			fmt.Fprintf(b, "<!ATTLIST %s %s %s %s>\n", elem, a.Name, attrTypeString(a), attrDefaultString(a))
		}
	}
}

func attrTypeString(a *dtd.AttributeDecl) string {
	switch a.Type {
	case dtd.AttrID:
		return "ID"
	case dtd.AttrIDREF:
		return "IDREF"
	case dtd.AttrIDREFS:
		return "IDREFS"
	case dtd.AttrENTITY:
		return "ENTITY"
	case dtd.AttrENTITIES:
		return "ENTITIES"
	case dtd.AttrNMTOKEN:
		return "NMTOKEN"
	case dtd.AttrNMTOKENS:
		return "NMTOKENS"
	case dtd.AttrNOTATION:
		return "NOTATION (" + strings.Join(a.Enumeration, "|") + ")"
	case dtd.AttrEnumeration:
		return "(" + strings.Join(a.Enumeration, "|") + ")"
	default:
		return "CDATA"
	}
}

func attrDefaultString(a *dtd.AttributeDecl) string {
	switch a.Default {
	case dtd.DefaultRequired:
		return "#REQUIRED"
	case dtd.DefaultImplied:
		return "#IMPLIED"
	case dtd.DefaultFixed:
		return fmt.Sprintf("#FIXED %q", a.DefaultValue)
	default:
		return fmt.Sprintf("%q", a.DefaultValue)
	}
}

func writeEntityDecls(b *strings.Builder, d *dtd.DTD) {
	for name, e := range d.Entities {
		writeEntityDecl(b, "", name, e)
	}

	for name, e := range d.Parameters {
		writeEntityDecl(b, "% ", name, e)
	}
}

func writeEntityDecl(b *strings.Builder, prefix, name string, e *dtd.EntityDecl) {
	externalID := fmt.Sprintf("SYSTEM %q", e.SystemID)
	if e.PublicID != "" {
		externalID = fmt.Sprintf("PUBLIC %q %q", e.PublicID, e.SystemID)
	}

	switch e.Kind {
	case dtd.EntityExternalGeneral:
		fmt.Fprintf(b, "<!ENTITY %s%s %s>\n", prefix, name, externalID)
	case dtd.EntityUnparsedGeneral:
		fmt.Fprintf(b, "<!ENTITY %s%s %s NDATA %s>\n", prefix, name, externalID, e.Notation)
	default:
		fmt.Fprintf(b, "<!ENTITY %s%s %q>\n", prefix, name, e.Value)
	}
}

func writeNotationDecls(b *strings.Builder, d *dtd.DTD) {
	for name, n := range d.Notations {
		if n.PublicID != "" {
			fmt.Fprintf(b, "<!NOTATION %s PUBLIC %q %q>\n", name, n.PublicID, n.SystemID)
		} else {
			fmt.Fprintf(b, "<!NOTATION %s SYSTEM %q>\n", name, n.SystemID)
		}
	}
}

func (s *stringifier) writeElement(n *Node) error {
	var open strings.Builder

	open.WriteString("<" + n.QualifiedName())

	for _, a := range n.Attributes {
		name := a.Name
		if a.Prefix != "" {
			name = a.Prefix + ":" + a.Name
		}

		fmt.Fprintf(&open, " %s=\"%s\"", name, escapeAttr(a.Value))
	}

	if n.SelfClose && len(n.Children) == 0 {
		open.WriteString("/>")

		return s.write(open.String())
	}

	open.WriteString(">")

	if err := s.write(open.String()); err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := s.writeChild(c); err != nil {
			return err
		}
	}

	return s.write("</" + n.QualifiedName() + ">")
}

func (s *stringifier) writeChild(n *Node) error {
	switch n.Kind {
	case KindElement:
		return s.writeElement(n)
	case KindContent:
		return s.write(escapeText(n.Text))
	case KindCDATA:
		return s.write("<![CDATA[" + n.Text + "]]>")
	case KindEntityReference:
		return s.write("&" + n.EntityName + ";")
	case KindComment:
		return s.writeComment(n.Text)
	case KindProcessingInstruction:
		return s.writePI(n.Target, n.Data)
	default:
		return nil
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")

	return r.Replace(s)
}
