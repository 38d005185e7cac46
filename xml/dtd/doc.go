// Package dtd models, parses, and validates against the XML Document Type
// Definition subset described in W3C REC-xml §2.8–§4.
//
// [DTD] is the structured sub-model: element content models (compiled to
// an NFA via [CompileContentModel]), attribute declarations, entity
// tables, and notations. [Parse] reads the markup declarations of one
// subset given as text (package xml passes the internal subset, and the
// external subset when its resolver supplies one); [Validator.Validate]
// walks a document tree against a parsed [DTD] and returns the
// accumulated constraint violations.
package dtd
