package xml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/stringtest"
	"go.h4codec.dev/h4/xml"
	"go.h4codec.dev/h4/xml/dtd"
)

func parseString(t *testing.T, s string, opts ...xml.Option) (*xml.Node, error) {
	t.Helper()

	src, err := xml.NewBufferSource([]byte(s))
	require.NoError(t, err)

	return xml.Parse(src, opts...)
}

func stringify(t *testing.T, doc *xml.Node) string {
	t.Helper()

	dst := xml.NewBufferDestination()
	require.NoError(t, xml.Stringify(doc, dst))

	return string(dst.Bytes())
}

func TestParseSimpleElement(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<greeting>hello</greeting>`)
	require.NoError(t, err)
	require.NotNil(t, doc.Root)
	assert.Equal(t, "greeting", doc.Root.Name)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, xml.KindContent, doc.Root.Children[0].Kind)
	assert.Equal(t, "hello", doc.Root.Children[0].Text)
}

func TestParseAttributesAndSelfClosing(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r a="1" b="two"><child/></r>`)
	require.NoError(t, err)

	val, ok := doc.Root.Attr("a")
	require.True(t, ok)
	assert.Equal(t, "1", val)

	require.Len(t, doc.Root.Children, 1)
	assert.True(t, doc.Root.Children[0].SelfClose)
}

func TestParseDeclaration(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<?xml version="1.0" encoding="UTF-8"?><r/>`)
	require.NoError(t, err)
	require.NotNil(t, doc.Declaration)
	assert.Equal(t, "1.0", doc.Declaration.Version)
	assert.Equal(t, "UTF-8", doc.Declaration.Encoding)
}

func TestUnbalancedTagIsRejected(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `<r><a></r>`)
	require.Error(t, err)
	assert.ErrorIs(t, err, xml.ErrUnbalancedTag)
}

func TestDuplicateAttributeIsRejected(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `<r a="1" a="2"/>`)
	require.Error(t, err)

	var serr *xml.SyntaxError
	require.ErrorAs(t, err, &serr)
}

func TestCRLFNormalizedToLF(t *testing.T) {
	t.Parallel()

	body := stringtest.JoinCRLF("A", "B")
	doc, err := parseString(t, "<r>"+body+"</r>")
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, stringtest.JoinLF("A", "B"), doc.Root.Children[0].Text)
}

func TestCDATASection(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r><![CDATA[<not a tag>]]></r>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 1)
	assert.Equal(t, xml.KindCDATA, doc.Root.Children[0].Kind)
	assert.Equal(t, "<not a tag>", doc.Root.Children[0].Text)
}

func TestCommentAndProcessingInstructionRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<?xml version="1.0"?><!-- note --><r><?target data?></r>`)
	require.NoError(t, err)
	require.Len(t, doc.Prolog, 1)
	assert.Equal(t, " note ", doc.Prolog[0].Text)

	out := stringify(t, doc)
	assert.Contains(t, out, "<!-- note -->")
	assert.Contains(t, out, "<?target data?>")
}

func TestPredefinedEntityExpansion(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r>a &amp; b</r>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 3)
	assert.Equal(t, xml.KindEntityReference, doc.Root.Children[1].Kind)
	assert.Equal(t, "&", doc.Root.Children[1].Expansion)
}

func TestRecursiveEntityIsRejected(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `<!DOCTYPE r [
<!ENTITY a "&b;">
<!ENTITY b "&a;">
]><r>&a;</r>`)
	require.Error(t, err)
	assert.ErrorIs(t, err, xml.ErrRecursiveEntity)
}

func TestCharacterReference(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r>&#65;&#x42;</r>`)
	require.NoError(t, err)
	require.Len(t, doc.Root.Children, 2)
	assert.Equal(t, "A", doc.Root.Children[0].Expansion)
	assert.Equal(t, "B", doc.Root.Children[1].Expansion)
}

func TestXMLSpaceAndLangInheritance(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r xml:lang="en"><a xml:space="preserve"><b/></a><c/></r>`)
	require.NoError(t, err)

	a := doc.Root.Children[0]
	b := a.Children[0]
	c := doc.Root.Children[1]

	assert.Equal(t, "en", doc.Root.Lang)
	assert.Equal(t, "en", a.Lang)
	assert.Equal(t, "preserve", a.Space)
	assert.Equal(t, "preserve", b.Space)
	assert.Equal(t, "en", b.Lang)
	assert.Equal(t, "default", c.Space)
}

func TestValidationFailureAccumulates(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `<!DOCTYPE book [
<!ELEMENT book (title,author+)>
<!ELEMENT title (#PCDATA)>
<!ELEMENT author (#PCDATA)>
<!ATTLIST book id ID #REQUIRED>
]><book><title>Go</title></book>`, xml.WithValidation(true))

	require.Error(t, err)

	var verr *dtd.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestValidationPassesForCompliantDocument(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<!DOCTYPE book [
<!ELEMENT book (title,author+)>
<!ELEMENT title (#PCDATA)>
<!ELEMENT author (#PCDATA)>
<!ATTLIST book id ID #REQUIRED>
]><book id="b1"><title>Go</title><author>A</author></book>`, xml.WithValidation(true))

	require.NoError(t, err)
	assert.Equal(t, "book", doc.Root.Name)
}

func TestRoundTripElementTree(t *testing.T) {
	t.Parallel()

	doc, err := parseString(t, `<r a="1"><child>text &amp; more</child></r>`)
	require.NoError(t, err)

	out := stringify(t, doc)

	reparsed, err := parseString(t, out)
	require.NoError(t, err)
	assert.Equal(t, doc.Root.Name, reparsed.Root.Name)
	assert.Equal(t, len(doc.Root.Children), len(reparsed.Root.Children))
}

func TestExternalSubsetWithoutResolverFails(t *testing.T) {
	t.Parallel()

	_, err := parseString(t, `<!DOCTYPE r SYSTEM "r.dtd"><r/>`)
	require.Error(t, err)
	assert.ErrorIs(t, err, xml.ErrNoExternalResolver)
}
