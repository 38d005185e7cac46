package dtd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.h4codec.dev/h4/xml/dtd"
)

// fakeElement is a minimal [dtd.ElementView] used to exercise [dtd.Validator]
// without needing package xml's Node type (which itself imports dtd).
type fakeElement struct {
	name     string
	children []*fakeElement
	attrs    map[string]string
	mixed    bool
}

func (f *fakeElement) TagName() string { return f.name }

func (f *fakeElement) ChildElements() []dtd.ElementView {
	out := make([]dtd.ElementView, len(f.children))
	for i, c := range f.children {
		out[i] = c
	}

	return out
}

func (f *fakeElement) HasMixedContent() bool { return f.mixed }

func (f *fakeElement) AttributeValue(attr string) (string, bool) {
	v, ok := f.attrs[attr]

	return v, ok
}

func TestValidatorAcceptsWellFormedDocument(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("book", `
<!ELEMENT book (title,author+)>
<!ELEMENT title (#PCDATA)>
<!ELEMENT author (#PCDATA)>
<!ATTLIST book id ID #REQUIRED>`)
	require.NoError(t, err)

	root := &fakeElement{
		name:  "book",
		attrs: map[string]string{"id": "b1"},
		children: []*fakeElement{
			{name: "title", mixed: true},
			{name: "author", mixed: true},
		},
	}

	v := dtd.NewValidator(d, false)
	errs := v.Validate(root)
	assert.Empty(t, errs)
}

func TestValidatorReportsMissingRequiredAttribute(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("book", `
<!ELEMENT book (title)>
<!ELEMENT title (#PCDATA)>
<!ATTLIST book id ID #REQUIRED>`)
	require.NoError(t, err)

	root := &fakeElement{name: "book", children: []*fakeElement{{name: "title", mixed: true}}}

	errs := dtd.NewValidator(d, false).Validate(root)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "required attribute")
}

func TestValidatorReportsDuplicateID(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("root", `
<!ELEMENT root (item,item)>
<!ELEMENT item EMPTY>
<!ATTLIST item id ID #REQUIRED>`)
	require.NoError(t, err)

	root := &fakeElement{
		name: "root",
		children: []*fakeElement{
			{name: "item", attrs: map[string]string{"id": "x"}},
			{name: "item", attrs: map[string]string{"id": "x"}},
		},
	}

	errs := dtd.NewValidator(d, false).Validate(root)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1].Error(), "duplicate ID")
}

func TestValidatorResolvesIDREF(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("root", `
<!ELEMENT root (item,ref)>
<!ELEMENT item EMPTY>
<!ELEMENT ref EMPTY>
<!ATTLIST item id ID #REQUIRED>
<!ATTLIST ref target IDREF #REQUIRED>`)
	require.NoError(t, err)

	root := &fakeElement{
		name: "root",
		children: []*fakeElement{
			{name: "item", attrs: map[string]string{"id": "a1"}},
			{name: "ref", attrs: map[string]string{"target": "missing"}},
		},
	}

	errs := dtd.NewValidator(d, false).Validate(root)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1].Error(), "IDREF")
}

func TestValidatorRejectsUndeclaredElement(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("root", `<!ELEMENT root ANY>`)
	require.NoError(t, err)

	root := &fakeElement{name: "root", children: []*fakeElement{{name: "unknown"}}}

	errs := dtd.NewValidator(d, false).Validate(root)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "not declared")
}

func TestValidatorFailFastStopsAtFirstError(t *testing.T) {
	t.Parallel()

	d, err := dtd.Parse("root", `<!ELEMENT root (item,item)>`)
	require.NoError(t, err)

	root := &fakeElement{
		name:     "root",
		children: []*fakeElement{{name: "unknown1"}, {name: "unknown2"}},
	}

	errs := dtd.NewValidator(d, true).Validate(root)
	assert.Len(t, errs, 1)
}
