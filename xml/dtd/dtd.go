package dtd

// ContentModelKind identifies which shape an [ElementDecl]'s content model
// takes.
type ContentModelKind int

const (
	// ContentEmpty: the element may have no content (EMPTY).
	ContentEmpty ContentModelKind = iota
	// ContentAny: any content is permitted (ANY).
	ContentAny
	// ContentMixed: `(#PCDATA|name|...)*` — character data optionally
	// interspersed with any of the named child elements, in any order,
	// any number of times.
	ContentMixed
	// ContentChildren: an element-only content model described by an
	// [Expr] tree (sequences/choices with ?, *, + occurrence operators).
	ContentChildren
)

// ExprKind identifies one node of a children content-model expression
// tree.
type ExprKind int

const (
	// ExprName: a leaf matching one child element name.
	ExprName ExprKind = iota
	// ExprSeq: an ordered sequence of sub-expressions (",").
	ExprSeq
	// ExprChoice: exactly one of several sub-expressions ("|").
	ExprChoice
)

// Occurrence is the `?`/`*`/`+` suffix on an [Expr] node, or none.
type Occurrence int

const (
	OccurOnce Occurrence = iota
	OccurOptional         // ?
	OccurZeroOrMore       // *
	OccurOneOrMore        // +
)

// Expr is one node of a children content-model expression tree.
type Expr struct {
	Kind     ExprKind
	Name     string     // ExprName
	Children []*Expr    // ExprSeq / ExprChoice
	Occur    Occurrence
}

// ContentModel describes the permitted content of an element, per §4.6 of
// spec.md / W3C REC-xml §3.2.
type ContentModel struct {
	Kind    ContentModelKind
	Mixed   []string // ContentMixed: allowed child names (PCDATA is implicit)
	Root    *Expr     // ContentChildren: the compiled expression tree
	nfa     *nfa      // compiled lazily by CompileContentModel
}

// ElementDecl is a parsed `<!ELEMENT name content-spec>`.
type ElementDecl struct {
	Name    string
	Content ContentModel
}

// AttrType enumerates the DTD attribute value types.
type AttrType int

const (
	AttrCDATA AttrType = iota
	AttrID
	AttrIDREF
	AttrIDREFS
	AttrENTITY
	AttrENTITIES
	AttrNMTOKEN
	AttrNMTOKENS
	AttrNOTATION
	AttrEnumeration
)

// AttrDefaultKind enumerates the DTD attribute default-value forms.
type AttrDefaultKind int

const (
	DefaultNone     AttrDefaultKind = iota // a plain default value, no keyword
	DefaultRequired                        // #REQUIRED
	DefaultImplied                         // #IMPLIED
	DefaultFixed                           // #FIXED value
)

// AttributeDecl is one `<!ATTLIST element-name attr-name type default>`
// entry.
type AttributeDecl struct {
	Element      string
	Name         string
	Type         AttrType
	Enumeration  []string // AttrNOTATION / AttrEnumeration value lists
	Default      AttrDefaultKind
	DefaultValue string // meaningful for DefaultNone and DefaultFixed
}

// EntityKind enumerates the XML entity categories.
type EntityKind int

const (
	EntityInternalGeneral EntityKind = iota
	EntityExternalGeneral
	EntityUnparsedGeneral // has an NDATA notation
	EntityParameter
)

// EntityDecl is one `<!ENTITY ...>` declaration.
type EntityDecl struct {
	Name       string
	Kind       EntityKind
	Value      string // internal literal value
	PublicID   string
	SystemID   string
	Notation   string // NDATA notation name, EntityUnparsedGeneral only
}

// Notation is one `<!NOTATION name SYSTEM|PUBLIC ...>` declaration.
type Notation struct {
	Name     string
	PublicID string
	SystemID string
}

// DTD is the fully parsed Document Type Definition of one XML document:
// element and attribute declarations, entity and parameter-entity tables,
// notations, the declared root element name, and the external subset
// identifier if any.
type DTD struct {
	RootName          string
	PublicID          string
	SystemID          string
	HasExternalSubset bool

	Elements   map[string]*ElementDecl
	Attributes map[string][]*AttributeDecl // keyed by element name
	Entities   map[string]*EntityDecl
	Parameters map[string]*EntityDecl
	Notations  map[string]*Notation
}

// New returns an empty [DTD] with initialized maps.
func New(rootName string) *DTD {
	return &DTD{
		RootName:   rootName,
		Elements:   make(map[string]*ElementDecl),
		Attributes: make(map[string][]*AttributeDecl),
		Entities:   make(map[string]*EntityDecl),
		Parameters: make(map[string]*EntityDecl),
		Notations:  make(map[string]*Notation),
	}
}

// AttlistFor returns the attribute declarations for element, or nil.
func (d *DTD) AttlistFor(element string) []*AttributeDecl {
	return d.Attributes[element]
}

// AttributeDeclFor returns the declaration for attr on element, if any.
func (d *DTD) AttributeDeclFor(element, attr string) (*AttributeDecl, bool) {
	for _, a := range d.Attributes[element] {
		if a.Name == attr {
			return a, true
		}
	}

	return nil, false
}
