// Package xml implements a pull-style parser, DTD-aware validator, and
// stringifier for XML 1.0 (W3C REC-xml), independent of the standard
// library's encoding/xml.
//
// An [Node] tree (package-exported as XNode conceptually, represented here
// by [Node]) holds a Prolog, Root element, and epilog. [Parse] builds the
// tree from an [ISource] after UTF-8/UTF-16 transcoding and CRLF/CR
// newline normalization; [Stringify] re-emits it. When the document
// carries a `<!DOCTYPE ...>`, the DTD sub-model in the xml/dtd package
// describes its grammar and [Validate] checks the tree against it.
//
// # Design Principles
//
//  1. Materialize, don't stream: the whole tree is built in memory before
//     the caller sees it. No SAX-style callback API is exposed.
//  2. Fatal syntax errors, accumulated validation errors: a malformed
//     document aborts the parse with one error; a well-formed-but-invalid
//     document returns a full list of violations, joined into one error.
//  3. Entity expansion never loops: every active expansion is tracked on a
//     stack; re-entering an entity already on the stack is a hard error.
package xml
