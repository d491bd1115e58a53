package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/restyle/tree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document.
type Document struct {
	html    *html.Node                           // document node of the parse tree
	top     tree.Node[*Element]                  // scope root of the document tree, without payload
	shadows map[*tree.Node[*Element]]*ShadowRoot // scope roots of shadow trees
	byNode  map[*html.Node]*Element
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		html:    &html.Node{Type: html.DocumentNode},
		shadows: make(map[*tree.Node[*Element]]*ShadowRoot),
		byNode:  make(map[*html.Node]*Element),
	}
}

// Parse parses an HTML document. Declarative shadow roots are attached to
// their hosts and slots are assigned.
func Parse(r io.Reader) (*Document, error) {
	h, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse HTML document: %w", err)
	}
	doc := NewDocument()
	doc.html = h
	doc.build(&doc.top, nil, h)
	doc.assignSlots()
	tracer().Debugf("parsed document with %d elements and %d shadow roots", len(doc.byNode), len(doc.shadows))
	return doc, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// build creates elements for the element children of h and links them to
// scope node n. host is the element of n, if any.
func (doc *Document) build(n *tree.Node[*Element], host *Element, h *html.Node) {
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if mode, ok := shadowRootMode(c); ok && host != nil && host.shadow == nil {
			sr := doc.newShadowRoot(host, c, mode)
			doc.build(&sr.frag, nil, c)
			continue
		}
		e := doc.newElement(c)
		n.AddChild(&e.node)
		if c.DataAtom == atom.Template {
			continue // template content is inert
		}
		doc.build(&e.node, e, c)
	}
}

// shadowRootMode checks if h is a declarative shadow root.
func shadowRootMode(h *html.Node) (string, bool) {
	if h.DataAtom != atom.Template {
		return "", false
	}
	for _, a := range h.Attr {
		if a.Key == "shadowrootmode" || a.Key == "shadowroot" {
			if a.Val == "closed" {
				return "closed", true
			}
			return "open", true
		}
	}
	return "", false
}

// HTMLNode returns the document node of the parse tree.
func (doc *Document) HTMLNode() *html.Node {
	return doc.html
}

// Root returns the document element, usually <html>.
func (doc *Document) Root() *Element {
	ch, _ := doc.top.Child(0)
	return payload(ch)
}

// SetRoot makes e the document element. This is intended for documents
// created with NewDocument.
func (doc *Document) SetRoot(e *Element) {
	if r := doc.Root(); r != nil {
		r.detach()
	}
	e.detach()
	doc.top.AddChild(&e.node)
	doc.html.AppendChild(e.html)
	doc.assignSlots()
}

// CreateElement creates a detached element.
func (doc *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	h := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return doc.newElement(h)
}

// Elements returns all elements of the document tree in document order,
// excluding shadow trees.
func (doc *Document) Elements() []*Element {
	return descendants(&doc.top)
}

// ShadowRoots returns all shadow roots connected to the document.
func (doc *Document) ShadowRoots() []*ShadowRoot {
	var roots []*ShadowRoot
	var collect func(elems []*Element)
	collect = func(elems []*Element) {
		for _, e := range elems {
			if e.shadow != nil {
				roots = append(roots, e.shadow)
				collect(e.shadow.AllElements())
			}
		}
	}
	collect(doc.Elements())
	return roots
}

// ElementByID returns the first element of the document tree with a given
// id.
func (doc *Document) ElementByID(id string) (*Element, error) {
	for _, e := range doc.Elements() {
		if e.ID() == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("id %q: %w", id, ErrNoSuchElement)
}

// QueryAll returns the elements of the document tree matching a CSS
// selector, in document order. Elements in shadow trees are not included.
func (doc *Document) QueryAll(sel string) ([]*Element, error) {
	return doc.queryScope(&doc.top, sel)
}

// Query returns the first element of the document tree matching a CSS
// selector.
func (doc *Document) Query(sel string) (*Element, error) {
	elems, err := doc.QueryAll(sel)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%q: %w", sel, ErrNoSuchElement)
	}
	return elems[0], nil
}

// QueryAll returns the elements of the shadow tree matching a CSS selector.
func (sr *ShadowRoot) QueryAll(sel string) ([]*Element, error) {
	return sr.host.doc.queryScope(&sr.frag, sel)
}

func (doc *Document) queryScope(scope *tree.Node[*Element], sel string) ([]*Element, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("cannot compile selector %q: %w", sel, err)
	}
	var elems []*Element
	for _, e := range descendants(scope) {
		if s.Match(e.html) {
			elems = append(elems, e)
		}
	}
	return elems, nil
}

// Walk visits the elements of the flattened tree in pre-order, starting at
// the document element. If f returns false, the children of an element are
// skipped.
func (doc *Document) Walk(f func(e *Element, depth int) bool) {
	var walk func(e *Element, depth int)
	walk = func(e *Element, depth int) {
		if !f(e, depth) {
			return
		}
		for _, ch := range e.FlatChildren() {
			walk(ch, depth+1)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root, 0)
	}
}

// FlatChildren returns the children of e in the flattened tree: the top level
// elements of an attached shadow tree, the elements assigned to a slot (or
// the slot's fallback content), or else the element children, followed by
// pseudo-elements.
func (e *Element) FlatChildren() []*Element {
	var children []*Element
	switch {
	case e.shadow != nil:
		children = e.shadow.Elements()
	case e.IsSlot() && len(e.slotted) > 0:
		children = append(children, e.slotted...)
	default:
		children = e.Children()
	}
	return append(children, e.nac...)
}

// --- Style sheets ----------------------------------------------------------

// StyleSheets holds the content of <style> elements.
type StyleSheets struct {
	Document []string              // style sheets of the document tree
	Shadow   map[*Element][]string // style sheets of shadow trees, by host
}

// StyleSheets extracts the content of all <style> elements of the document
// and of its shadow trees.
func (doc *Document) StyleSheets() StyleSheets {
	sheets := StyleSheets{
		Document: extractStyles(doc.Elements()),
		Shadow:   make(map[*Element][]string),
	}
	for _, sr := range doc.ShadowRoots() {
		if css := extractStyles(sr.AllElements()); len(css) > 0 {
			sheets.Shadow[sr.host] = css
		}
	}
	return sheets
}

func extractStyles(elems []*Element) []string {
	var css []string
	for _, e := range elems {
		if e.html.DataAtom != atom.Style {
			continue
		}
		var b strings.Builder
		for ch := e.html.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.TextNode {
				b.WriteString(ch.Data)
			}
		}
		css = append(css, b.String())
	}
	return css
}

// Render writes the parse tree of the document as HTML.
func (doc *Document) Render(w io.Writer) error {
	return html.Render(w, doc.html)
}
