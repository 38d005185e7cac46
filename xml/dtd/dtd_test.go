package dtd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/xml/dtd"
)

func TestParseElementDecls(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		subset string
		kind   dtd.ContentModelKind
	}{
		"empty":    {subset: `<!ELEMENT br EMPTY>`, kind: dtd.ContentEmpty},
		"any":      {subset: `<!ELEMENT div ANY>`, kind: dtd.ContentAny},
		"mixed":    {subset: `<!ELEMENT p (#PCDATA|b|i)*>`, kind: dtd.ContentMixed},
		"children": {subset: `<!ELEMENT book (title,author+,chapter*)>`, kind: dtd.ContentChildren},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			d, err := dtd.Parse("root", tc.subset)
			require.NoError(t, err)

			var decl *dtd.ElementDecl
			for _, e := range d.Elements {
				decl = e
			}

			require.NotNil(t, decl)
			assert.Equal(t, tc.kind, decl.Content.Kind)
		})
	}
}

func TestParseAttlist(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("book", `
<!ELEMENT book (title)>
<!ATTLIST book
  id ID #REQUIRED
  lang CDATA "en"
  status (draft|final) #IMPLIED
>`)
	require.NoError(t, err)

	attrs := d.Attributes["book"]
	require.Len(t, attrs, 3)

	idDecl, ok := d.AttributeDeclFor("book", "id")
	require.True(t, ok)
	assert.Equal(t, dtd.AttrID, idDecl.Type)
	assert.Equal(t, dtd.DefaultRequired, idDecl.Default)

	langDecl, ok := d.AttributeDeclFor("book", "lang")
	require.True(t, ok)
	assert.Equal(t, "en", langDecl.DefaultValue)

	statusDecl, ok := d.AttributeDeclFor("book", "status")
	require.True(t, ok)
	assert.Equal(t, []string{"draft", "final"}, statusDecl.Enumeration)
}

func TestParseEntities(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("root", `
<!ENTITY copy "2026">
<!ENTITY ext SYSTEM "ext.xml">
<!ENTITY img SYSTEM "logo.png" NDATA png>
<!ENTITY % common "CDATA">
<!NOTATION png SYSTEM "image/png">`)
	require.NoError(t, err)

	assert.Equal(t, "2026", d.Entities["copy"].Value)
	assert.Equal(t, dtd.EntityExternalGeneral, d.Entities["ext"].Kind)
	assert.Equal(t, dtd.EntityUnparsedGeneral, d.Entities["img"].Kind)
	assert.Equal(t, "png", d.Entities["img"].Notation)
	assert.Contains(t, d.Parameters, "common")
	assert.Contains(t, d.Notations, "png")
}

func TestMatchContentModel(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("book", `<!ELEMENT book (title,author+,chapter*)>`)
	require.NoError(t, err)

	cm := d.Elements["book"].Content

	assert.True(t, dtd.Match(&cm, []string{"title", "author"}))
	assert.True(t, dtd.Match(&cm, []string{"title", "author", "author", "chapter", "chapter"}))
	assert.False(t, dtd.Match(&cm, []string{"author", "title"}))
	assert.False(t, dtd.Match(&cm, []string{"title"})) // author+ requires at least one
}

func TestMatchChoiceAndOptional(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("para", `<!ELEMENT para ((bold|italic)?,text)>`)
	require.NoError(t, err)

	cm := d.Elements["para"].Content

	assert.True(t, dtd.Match(&cm, []string{"text"}))
	assert.True(t, dtd.Match(&cm, []string{"bold", "text"}))
	assert.True(t, dtd.Match(&cm, []string{"italic", "text"}))
	assert.False(t, dtd.Match(&cm, []string{"bold", "italic", "text"}))
}

func TestMatchMixedContent(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("p", `<!ELEMENT p (#PCDATA|b|i)*>`)
	require.NoError(t, err)

	cm := d.Elements["p"].Content

	assert.True(t, dtd.Match(&cm, nil))
	assert.True(t, dtd.Match(&cm, []string{"b", "i", "b"}))
	assert.False(t, dtd.Match(&cm, []string{"span"}))
}

func TestIsDeterministic(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("book", `<!ELEMENT book ((a,b)|(a,c))>`)
	require.NoError(t, err)

	cm := d.Elements["book"].Content

	assert.False(t, dtd.IsDeterministic(&cm))
}

func TestParseSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := dtd.Parse("root", `<!ELEMENT root (a,b`)
	require.Error(t, err)
}
