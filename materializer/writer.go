// Package materializer turns a composite configuration document into the
// individual files under <InstallationRoot>/conf that the server actually
// reads.
//
// A pass persists the composite itself first, then walks its fragments and
// applies one write policy per fragment: nameless fragments are rejected,
// fragments addressed to the flat target are merged into a single flattened
// file, and everything else is written to its own file with the XML
// declaration ensured. Per-fragment failures never abort the rest of the
// pass.
package materializer

import (
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	cerrors "github.com/c360/confsync/errors"
	"github.com/c360/confsync/fragment"
	"github.com/c360/confsync/xmlcodec"
)

const (
	// ConfDir is the directory under the installation root that receives
	// every materialized file.
	ConfDir = "conf"

	// FlatTarget is the reserved destination name whose fragments are merged
	// into one flattened file instead of written individually. Exact,
	// case-sensitive match.
	FlatTarget = "apusic.conf"

	// DefaultCompositeName is the on-disk name for the composite document
	// when the deployment does not override it.
	DefaultCompositeName = "configs.xml"

	// propertiesSuffix marks destinations whose content is written verbatim,
	// without a declaration line.
	propertiesSuffix = "properties"
)

// Writer materializes composite documents into files. A Writer is safe for
// use from a single goroutine; callers that run passes concurrently must
// provide their own serialization.
type Writer struct {
	resolver      *Resolver
	compositeName string
	logger        *slog.Logger
}

// NewWriter creates a Writer that persists composites under compositeName.
// An empty compositeName falls back to DefaultCompositeName, a nil logger to
// slog.Default().
func NewWriter(resolver *Resolver, compositeName string, logger *slog.Logger) *Writer {
	if compositeName == "" {
		compositeName = DefaultCompositeName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		resolver:      resolver,
		compositeName: compositeName,
		logger:        logger,
	}
}

// Result reports one materialize pass: which files were written and which
// fragments failed. A pass with failures still counts as run; partial
// success is the expected failure mode.
type Result struct {
	CompositePath string
	Written       []string
	Failures      []Failure
}

// Failure records a single fragment that could not be materialized. Name is
// the destination name, empty when the fragment carried none.
type Failure struct {
	Name string
	Err  error
}

// OK reports whether every fragment materialized.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

func (r *Result) fail(name string, err error) {
	r.Failures = append(r.Failures, Failure{Name: name, Err: err})
}

// Materialize runs one full pass over composite. The composite is persisted
// to conf/<compositeName> first, then each fragment is written under its own
// policy. Fragment failures are collected in the Result; only an unusable
// installation root or an empty document aborts the pass, and then no file
// is touched.
func (w *Writer) Materialize(composite string) (*Result, error) {
	if strings.TrimSpace(composite) == "" {
		return nil, cerrors.ErrEmptyDocument
	}

	compositePath, err := w.resolver.Resolve(ConfDir, w.compositeName)
	if err != nil {
		return nil, err
	}

	res := &Result{CompositePath: compositePath}

	// The local copy is the source of truth for the publish flow, so it is
	// written before any fragment.
	if err := safeWriteFile(compositePath, []byte(composite)); err != nil {
		res.fail(w.compositeName, cerrors.WrapTransient(err, "materializer", "materialize", "persist composite"))
		w.logger.Warn("composite persist failed", "path", compositePath, "error", err)
	} else {
		w.logger.Info("composite persisted", "path", compositePath)
	}

	var flat []string
	for _, frag := range fragment.Extract(composite) {
		switch {
		case frag.Name == "":
			res.fail("", cerrors.ErrFragmentUnnamed)
			w.logger.Warn("fragment rejected", "reason", "missing name attribute")
		case frag.Name == FlatTarget:
			items, err := flatItems(frag.Raw)
			if err != nil {
				res.fail(frag.Name, err)
				w.logger.Warn("flat fragment skipped", "target", FlatTarget, "error", err)
				continue
			}
			flat = append(flat, items...)
		default:
			w.writeFragment(frag, res)
		}
	}

	if len(flat) > 0 {
		w.writeFlat(flat, res)
	}

	return res, nil
}

// LoadComposite reads back the persisted composite and returns it in the
// canonical publish form: strict-parsed, declaration ensured. A missing or
// malformed file is an error for the caller to degrade.
func (w *Writer) LoadComposite() (string, error) {
	path, err := w.resolver.Resolve(ConfDir, w.compositeName)
	if err != nil {
		return "", err
	}

	data, err := safeReadFile(path)
	if err != nil {
		return "", cerrors.Wrap(err, "materializer", "loadComposite", "read composite")
	}

	doc, err := xmlcodec.Parse(string(data))
	if err != nil {
		return "", err
	}
	return xmlcodec.SerializeWithDeclaration(doc)
}

// writeFragment handles the standard policy: one write per fragment, inner
// content only, declaration prepended unless the destination is a
// properties-style file.
func (w *Writer) writeFragment(frag fragment.Fragment, res *Result) {
	path, err := w.resolver.Resolve(ConfDir, frag.Name)
	if err != nil {
		res.fail(frag.Name, err)
		return
	}

	content := frag.Inner
	if !strings.HasSuffix(frag.Name, propertiesSuffix) {
		content = xmlcodec.Declaration + "\n" + content
	}

	if err := safeWriteFile(path, []byte(content)); err != nil {
		res.fail(frag.Name, cerrors.WrapTransient(err, "materializer", "writeFragment", "write target file"))
		w.logger.Warn("fragment write failed", "name", frag.Name, "path", path, "error", err)
		return
	}

	res.Written = append(res.Written, path)
	w.logger.Info("config file saved", "name", frag.Name, "path", path)
}

// writeFlat writes the accumulated flat items in source order: exactly one
// file, one declaration line, however many flat fragments the composite
// carried.
func (w *Writer) writeFlat(items []string, res *Result) {
	path, err := w.resolver.Resolve(ConfDir, FlatTarget)
	if err != nil {
		res.fail(FlatTarget, err)
		return
	}

	content := xmlcodec.Declaration + "\n" + strings.Join(items, "")
	if err := safeWriteFile(path, []byte(content)); err != nil {
		res.fail(FlatTarget, cerrors.WrapTransient(err, "materializer", "writeFlat", "write flattened file"))
		w.logger.Warn("flattened write failed", "path", path, "error", err)
		return
	}

	res.Written = append(res.Written, path)
	w.logger.Info("flattened config saved", "path", path, "items", len(items))
}

// flatItems parses one flat fragment and returns the serialized form of each
// merge item with name attributes removed. The fragment's raw text is
// balanced first: the extractor's non-greedy match stops at the first close
// tag, so a wrapper with nested config children arrives truncated.
func flatItems(raw string) ([]string, error) {
	doc, err := xmlcodec.Parse(fragment.Balance(raw))
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	stripNameAttrs(root)

	elements := configChildren(root)
	if len(elements) == 0 {
		elements = []*etree.Element{root}
	}

	items := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := xmlcodec.SerializeElement(el)
		if err != nil {
			return nil, err
		}
		items = append(items, text)
	}
	return items, nil
}

// stripNameAttrs removes the name attribute from every config element in the
// subtree, the wrapper included. Merged items must not carry routing
// metadata into the flattened file.
func stripNameAttrs(el *etree.Element) {
	if el.Tag == fragment.ElementName {
		el.RemoveAttr("name")
	}
	for _, child := range el.ChildElements() {
		stripNameAttrs(child)
	}
}

// configChildren returns the direct config children of root, the merge items
// of a well-formed flat fragment.
func configChildren(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range root.ChildElements() {
		if child.Tag == fragment.ElementName {
			out = append(out, child)
		}
	}
	return out
}
