package xml

import "go.h4codec.dev/h4/xml/dtd"

// elementView adapts a [Node] to [dtd.ElementView], letting package dtd
// validate a document tree without importing package xml (which already
// imports dtd for [DTD] itself).
type elementView struct {
	node *Node
}

func (v elementView) TagName() string { return v.node.Name }

func (v elementView) ChildElements() []dtd.ElementView {
	var out []dtd.ElementView

	for _, c := range v.node.Children {
		if c.Kind == KindElement {
			out = append(out, elementView{node: c})
		}
	}

	return out
}

func (v elementView) HasMixedContent() bool {
	for _, c := range v.node.Children {
		if c.Kind == KindContent || c.Kind == KindCDATA {
			return true
		}
	}

	return false
}

func (v elementView) AttributeValue(attr string) (string, bool) {
	return v.node.Attr(attr)
}

// Validate validates doc.Root against doc.DTD and returns every
// accumulated constraint violation, or nil if the document is valid.
// Calling this directly (rather than via [WithValidation]) is useful for
// re-validating a tree built or edited without going through [Parse].
func Validate(doc *Node, failFast bool) []error {
	if doc.DTD == nil || doc.Root == nil {
		return nil
	}

	v := dtd.NewValidator(doc.DTD, failFast)

	return v.Validate(elementView{node: doc.Root})
}
