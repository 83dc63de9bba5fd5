// Package xmlcodec parses and serializes the XML documents handled by the
// synchronizer with a fixed output profile: no re-indentation, UTF-8, and an
// explicit declaration policy. It wraps beevik/etree behind the small surface
// the materializer and publish paths need.
package xmlcodec

import (
	"strings"

	"github.com/beevik/etree"

	cerrors "github.com/c360/confsync/errors"
)

// Declaration is the literal declaration line prepended to markup targets.
// Writers append "\n" after it.
const Declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Parse parses markup text into a document tree. Parsing is strict: malformed
// input fails. External entity and DTD resolution never happens; the decoder
// resolves only the predefined XML entities. A document without a root
// element is rejected, so callers can treat an error as "no usable
// configuration" rather than an empty one.
func Parse(text string) (*etree.Document, error) {
	doc := etree.NewDocument()

	if err := doc.ReadFromString(text); err != nil {
		return nil, cerrors.WrapInvalid(err, "xmlcodec", "parse", "read document")
	}
	if doc.Root() == nil {
		return nil, cerrors.WrapInvalid(cerrors.ErrParsingFailed, "xmlcodec", "parse", "locate root element")
	}
	return doc, nil
}

// Serialize writes the document back to text without a declaration line and
// without reformatting: existing whitespace is preserved verbatim and none is
// added. Any declaration carried by the document itself is stripped.
func Serialize(doc *etree.Document) (string, error) {
	return serialize(doc, false)
}

// SerializeWithDeclaration is Serialize with exactly one leading declaration
// line. The declaration is prepended literally rather than delegated to the
// underlying writer, so the output profile cannot drift with library
// versions.
func SerializeWithDeclaration(doc *etree.Document) (string, error) {
	return serialize(doc, true)
}

func serialize(doc *etree.Document, withDeclaration bool) (string, error) {
	out := doc.Copy()
	stripDeclaration(out)

	text, err := out.WriteToString()
	if err != nil {
		return "", cerrors.WrapInvalid(err, "xmlcodec", "serialize", "write document")
	}
	if withDeclaration {
		return Declaration + "\n" + text, nil
	}
	return text, nil
}

// SerializeElement writes a single element subtree to text. Used by the
// flat-target merge, which emits selected elements rather than whole
// documents.
func SerializeElement(el *etree.Element) (string, error) {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())

	text, err := doc.WriteToString()
	if err != nil {
		return "", cerrors.WrapInvalid(err, "xmlcodec", "serializeElement", "write element")
	}
	return text, nil
}

// stripDeclaration removes document-level xml processing instructions plus
// the whitespace-only text that trailed them. Leaving that whitespace behind
// would make repeated parse/serialize cycles grow the output by one blank
// line each pass.
func stripDeclaration(doc *etree.Document) {
	children := make([]etree.Token, len(doc.Child))
	copy(children, doc.Child)

	for _, tok := range children {
		pi, ok := tok.(*etree.ProcInst)
		if !ok || pi.Target != "xml" {
			continue
		}
		doc.RemoveChild(pi)
	}

	for len(doc.Child) > 0 {
		cd, ok := doc.Child[0].(*etree.CharData)
		if !ok || strings.TrimSpace(cd.Data) != "" {
			break
		}
		doc.RemoveChild(cd)
	}
}
