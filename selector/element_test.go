package selector

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// testDoc is a minimal light-DOM implementation of Element, backed by a
// parsed HTML fragment.
type testDoc struct {
	elems map[*html.Node]*testElem
	root  *html.Node
}

type testElem struct {
	n     *html.Node
	doc   *testDoc
	state ElementState
}

func parseTestDoc(t *testing.T, src string) *testDoc {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("cannot parse test document: %v", err)
	}
	return &testDoc{elems: make(map[*html.Node]*testElem), root: root}
}

func (d *testDoc) wrap(n *html.Node) Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	e, ok := d.elems[n]
	if !ok {
		e = &testElem{n: n, doc: d}
		d.elems[n] = e
	}
	return e
}

// byID finds an element by its id attribute.
func (d *testDoc) byID(id string) *testElem {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				found = n
			}
		}
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	if found == nil {
		return nil
	}
	return d.wrap(found).(*testElem)
}

func (e *testElem) LocalName() string { return e.n.Data }

func (e *testElem) ID() string {
	v, _ := e.Attr("id")
	return v
}

func (e *testElem) HasClass(name string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *testElem) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (e *testElem) State() ElementState  { return e.state }
func (e *testElem) HTMLNode() *html.Node { return e.n }

func (e *testElem) ParentElement() Element {
	if e.n.Parent == nil || e.n.Parent.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(e.n.Parent)
}

func (e *testElem) PrevSiblingElement() Element {
	for s := e.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

func (e *testElem) NextSiblingElement() Element {
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

func (e *testElem) FirstChildElement() Element {
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

func (e *testElem) ContainingShadowHost() Element           { return nil }
func (e *testElem) IsShadowHost() bool                      { return false }
func (e *testElem) AssignedSlot() Element                   { return nil }
func (e *testElem) PartNames() []string                     { return nil }
func (e *testElem) ExportedPartNames(inner string) []string { return nil }
func (e *testElem) PseudoElementName() string               { return "" }
func (e *testElem) PseudoElementOriginator() Element        { return nil }
func (e *testElem) Opaque() any                             { return e.n }
