package dom

import (
	"fmt"
	"strings"

	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/tree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ShadowRoot is the root of a shadow tree attached to a host element.
type ShadowRoot struct {
	frag     tree.Node[*Element] // scope root, without payload
	host     *Element
	mode     string     // "open" or "closed"
	template *html.Node // <template> holding the shadow tree in the parse tree
}

// AttachShadow attaches a shadow root to e. mode is "open" or "closed".
// The shadow tree is mirrored in the parse tree as a declarative shadow root,
// i.e. a <template shadowrootmode> as the first child of e.
func (e *Element) AttachShadow(mode string) (*ShadowRoot, error) {
	if e.pseudo != "" || e.html == nil {
		return nil, fmt.Errorf("%v: %w", e, ErrNotAHost)
	}
	if e.shadow != nil {
		return nil, fmt.Errorf("%v: %w", e, ErrShadowAttached)
	}
	t := &html.Node{
		Type:     html.ElementNode,
		Data:     "template",
		DataAtom: atom.Template,
		Attr:     []html.Attribute{{Key: "shadowrootmode", Val: mode}},
	}
	e.html.InsertBefore(t, e.html.FirstChild)
	sr := e.doc.newShadowRoot(e, t, mode)
	e.doc.assignSlots()
	return sr, nil
}

func (doc *Document) newShadowRoot(host *Element, t *html.Node, mode string) *ShadowRoot {
	sr := &ShadowRoot{host: host, mode: mode, template: t}
	host.shadow = sr
	doc.shadows[&sr.frag] = sr
	tracer().Debugf("attached %s shadow root to %v", mode, host)
	return sr
}

// HostElement returns the host of the shadow tree.
func (sr *ShadowRoot) HostElement() *Element {
	return sr.host
}

// Mode returns the mode of the shadow root, "open" or "closed".
func (sr *ShadowRoot) Mode() string {
	return sr.mode
}

// Elements returns the top level elements of the shadow tree.
func (sr *ShadowRoot) Elements() []*Element {
	return elementsOf(&sr.frag)
}

// AllElements returns all elements of the shadow tree in document order,
// excluding nested shadow trees.
func (sr *ShadowRoot) AllElements() []*Element {
	return descendants(&sr.frag)
}

func descendants(scope *tree.Node[*Element]) []*Element {
	var elems []*Element
	scope.Walk(func(n *tree.Node[*Element]) bool {
		if n != scope {
			elems = append(elems, n.Payload)
		}
		return true
	})
	return elems
}

// AppendChild appends a top level element to the shadow tree.
func (sr *ShadowRoot) AppendChild(child *Element) {
	if child == nil || child.pseudo != "" {
		return
	}
	child.detach()
	sr.frag.AddChild(&child.node)
	sr.template.AppendChild(child.html)
	sr.host.doc.assignSlots()
}

// Host is part of interface invalidation.ShadowRoot.
func (sr *ShadowRoot) Host() invalidation.Element {
	return sr.host
}

// Children is part of interface invalidation.ShadowRoot.
func (sr *ShadowRoot) Children() []invalidation.Element {
	return asInvalidation(sr.Elements())
}

// Descendants is part of interface invalidation.ShadowRoot.
func (sr *ShadowRoot) Descendants() []invalidation.Element {
	return asInvalidation(sr.AllElements())
}

var _ invalidation.ShadowRoot = &ShadowRoot{}

// --- Slots -----------------------------------------------------------------

// assignSlots recomputes the slot assignment of all shadow trees. An element
// child of a host is assigned to the first slot in tree order whose name
// equals the element's slot attribute. Both default to "".
func (doc *Document) assignSlots() {
	for _, sr := range doc.shadows {
		for _, e := range sr.AllElements() {
			if e.IsSlot() {
				e.slotted = nil
			}
		}
		for _, ch := range sr.host.Children() {
			ch.slot = nil
		}
	}
	for _, sr := range doc.shadows {
		slots := make(map[string]*Element)
		for _, e := range sr.AllElements() {
			if !e.IsSlot() {
				continue
			}
			name, _ := e.Attr("name")
			if _, ok := slots[name]; !ok {
				slots[name] = e
			}
		}
		for _, ch := range sr.host.Children() {
			name, _ := ch.Attr("slot")
			if slot := slots[name]; slot != nil {
				ch.slot = slot
				slot.slotted = append(slot.slotted, ch)
			}
		}
	}
}

// --- Parts -----------------------------------------------------------------

func parseExportParts(e *Element) map[string][]string {
	attr, ok := e.Attr("exportparts")
	if !ok {
		return nil
	}
	return ParseExportParts(attr)
}

// ParseExportParts parses the value of an exportparts attribute, a comma
// separated list of "inner" or "inner: outer" mappings. It returns the outer
// names for every inner part name.
func ParseExportParts(attr string) map[string][]string {
	var exports map[string][]string
	for _, mapping := range strings.Split(attr, ",") {
		inner, outer, found := strings.Cut(mapping, ":")
		inner = strings.TrimSpace(inner)
		outer = strings.TrimSpace(outer)
		if !found {
			outer = inner
		}
		if inner == "" || outer == "" {
			continue
		}
		if exports == nil {
			exports = make(map[string][]string)
		}
		exports[inner] = append(exports[inner], outer)
	}
	return exports
}
