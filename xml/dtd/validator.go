package dtd

import "fmt"

// ValidationError reports one constraint violation found while validating
// a document tree against a [DTD].
type ValidationError struct {
	Element string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dtd: %s: %s", e.Element, e.Reason)
}

// ElementView is the minimal shape [Validate] needs from a document
// element node, kept independent of package xml's Node type to avoid an
// import cycle (xml already imports dtd for [DTD] itself).
type ElementView interface {
	// TagName returns the element's local name.
	TagName() string
	// ChildElements returns the element's child-element views, in
	// document order.
	ChildElements() []ElementView
	// HasMixedContent reports whether the element has any non-element
	// child content (character data).
	HasMixedContent() bool
	// AttributeValue returns the value of attr and whether it is set.
	AttributeValue(attr string) (string, bool)
}

// Validator accumulates constraint violations while walking a document
// against a [DTD]. It tracks ID uniqueness and pending IDREFs across the
// whole walk, per spec.md's "global uniqueness" invariant for IDs.
type Validator struct {
	dtd      *DTD
	failFast bool

	seenIDs  map[string]bool
	idrefs   []string
	errs     []error
}

// NewValidator returns a [Validator] bound to d. If failFast is true,
// [Validator.Validate] stops and returns after the first violation.
func NewValidator(d *DTD, failFast bool) *Validator {
	return &Validator{dtd: d, failFast: failFast, seenIDs: make(map[string]bool)}
}

// Validate walks root (the document's root element) against the bound
// DTD and returns every accumulated violation, or nil if none. It must be
// called once per document: IDREF resolution is checked only after the
// full tree has been walked and every ID collected.
func (v *Validator) Validate(root ElementView) []error {
	v.walk(root)

	if !v.stopped() {
		v.checkIDREFs()
	}

	return v.errs
}

func (v *Validator) stopped() bool {
	return v.failFast && len(v.errs) > 0
}

func (v *Validator) fail(element, reason string) {
	v.errs = append(v.errs, &ValidationError{Element: element, Reason: reason})
}

func (v *Validator) walk(el ElementView) {
	if v.stopped() {
		return
	}

	name := el.TagName()

	decl, ok := v.dtd.Elements[name]
	if !ok {
		v.fail(name, "element not declared in DTD")

		if v.stopped() {
			return
		}
	} else {
		v.checkContentModel(el, decl)
	}

	v.checkAttributes(el, name)

	for _, child := range el.ChildElements() {
		if v.stopped() {
			return
		}

		v.walk(child)
	}
}

func (v *Validator) checkContentModel(el ElementView, decl *ElementDecl) {
	switch decl.Content.Kind {
	case ContentEmpty:
		if len(el.ChildElements()) > 0 || el.HasMixedContent() {
			v.fail(decl.Name, "element declared EMPTY has content")
		}
	case ContentAny:
		// no constraint
	case ContentMixed, ContentChildren:
		var names []string
		for _, c := range el.ChildElements() {
			names = append(names, c.TagName())
		}

		if decl.Content.Kind == ContentChildren && el.HasMixedContent() {
			v.fail(decl.Name, "element-only content model has character data")

			return
		}

		if !Match(&decl.Content, names) {
			v.fail(decl.Name, "children do not match declared content model")
		}
	}
}

func (v *Validator) checkAttributes(el ElementView, name string) {
	declared := make(map[string]bool)

	for _, a := range v.dtd.Attributes[name] {
		declared[a.Name] = true

		val, present := el.AttributeValue(a.Name)

		switch {
		case !present && a.Default == DefaultRequired:
			v.fail(name, fmt.Sprintf("missing required attribute %q", a.Name))

			continue
		case !present:
			continue
		case a.Default == DefaultFixed && val != a.DefaultValue:
			v.fail(name, fmt.Sprintf("attribute %q does not match #FIXED value", a.Name))
		}

		v.checkAttributeValue(name, a, val)
	}
}

func (v *Validator) checkAttributeValue(element string, a *AttributeDecl, val string) {
	switch a.Type {
	case AttrID:
		if v.seenIDs[val] {
			v.fail(element, fmt.Sprintf("duplicate ID value %q", val))

			return
		}

		v.seenIDs[val] = true
	case AttrIDREF:
		v.idrefs = append(v.idrefs, val)
	case AttrIDREFS:
		v.idrefs = append(v.idrefs, splitTokens(val)...)
	case AttrEnumeration, AttrNOTATION:
		if !contains(a.Enumeration, val) {
			v.fail(element, fmt.Sprintf("value %q not in enumeration for attribute %q", val, a.Name))
		}
	}
}

func (v *Validator) checkIDREFs() {
	for _, ref := range v.idrefs {
		if !v.seenIDs[ref] {
			v.fail(v.dtd.RootName, fmt.Sprintf("IDREF %q does not match any ID", ref))

			if v.stopped() {
				return
			}
		}
	}
}

func splitTokens(s string) []string {
	var out []string

	start := -1

	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != ' ' {
			if start < 0 {
				start = i
			}

			continue
		}

		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}

	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
