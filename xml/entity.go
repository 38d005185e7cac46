package xml

import (
	"fmt"
	"strconv"

	"go.h4codec.dev/h4/xml/dtd"
)

// predefinedEntities are the five built-in XML general entities, always
// available regardless of any DOCTYPE.
var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

// entityStack tracks the chain of entity references currently being
// expanded, so a reference back to an entity already on the stack is
// caught as [ErrRecursiveEntity] instead of recursing forever.
type entityStack struct {
	active map[string]bool
	order  []string
}

func newEntityStack() *entityStack {
	return &entityStack{active: make(map[string]bool)}
}

func (s *entityStack) push(name string) error {
	if s.active[name] {
		return fmt.Errorf("xml: entity %q: %w", name, ErrRecursiveEntity)
	}

	s.active[name] = true
	s.order = append(s.order, name)

	return nil
}

func (s *entityStack) pop() {
	if len(s.order) == 0 {
		return
	}

	last := s.order[len(s.order)-1]
	s.order = s.order[:len(s.order)-1]
	delete(s.active, last)
}

// resolveEntity returns the literal replacement text for a general entity
// reference, consulting predefined entities first and then the parsed
// DTD's general entity table. Only internal entities resolve; external
// and unparsed ones return an error. It does not expand
// nested references within the replacement text; callers re-enter the
// parser over the expansion with the entity pushed onto the stack.
func resolveEntity(d *dtd.DTD, name string) (string, error) {
	if text, ok := predefinedEntities[name]; ok {
		return text, nil
	}

	if d == nil {
		return "", fmt.Errorf("xml: entity %q: %w", name, ErrUndefinedEntity)
	}

	decl, ok := d.Entities[name]
	if !ok {
		return "", fmt.Errorf("xml: entity %q: %w", name, ErrUndefinedEntity)
	}

	switch decl.Kind {
	case dtd.EntityInternalGeneral:
		return decl.Value, nil
	case dtd.EntityUnparsedGeneral:
		return "", fmt.Errorf("xml: entity %q is unparsed (NDATA), cannot appear in content: %w", name, ErrUndefinedEntity)
	default:
		return "", fmt.Errorf("xml: external entity %q requires a resolver: %w", name, ErrNoExternalResolver)
	}
}

// decodeCharRef parses the digits of a character reference ("&#n;" or
// "&#xH;", digits already isolated from the surrounding "&#"/";" by the
// caller) and returns the referenced scalar value.
func decodeCharRef(digits string, hex bool) (rune, error) {
	base := 10
	if hex {
		base = 16
	}

	v, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, &SyntaxError{Msg: "malformed character reference", Err: ErrSyntax}
	}

	return rune(v), nil
}
