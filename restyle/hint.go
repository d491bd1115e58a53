package restyle

import (
	"strings"

	"github.com/npillmayer/restyle/dom"
)

// Hint tells what has to be done for an element in the next style pass.
type Hint uint8

// Restyle hints.
const (
	RestyleSelf        Hint = 1 << iota // recompute the element's style
	RestyleDescendants                  // recompute the style of the whole subtree
	DirtyDescendants                    // some descendant has a hint
)

func (h Hint) String() string {
	if h == 0 {
		return "∅"
	}
	var names []string
	if h&RestyleSelf != 0 {
		names = append(names, "self")
	}
	if h&RestyleDescendants != 0 {
		names = append(names, "descendants")
	}
	if h&DirtyDescendants != 0 {
		names = append(names, "dirty")
	}
	return strings.Join(names, "|")
}

// Tracker collects restyle hints.
type Tracker struct {
	hints map[*dom.Element]Hint
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{hints: make(map[*dom.Element]Hint)}
}

// Add adds hints for an element.
func (t *Tracker) Add(e *dom.Element, h Hint) {
	if e == nil || h == 0 {
		return
	}
	t.hints[e] |= h
}

// Hint returns the hints of an element.
func (t *Tracker) Hint(e *dom.Element) Hint {
	return t.hints[e]
}

// Len returns the number of elements with hints.
func (t *Tracker) Len() int {
	return len(t.hints)
}

// Clear drops all hints.
func (t *Tracker) Clear() {
	t.hints = make(map[*dom.Element]Hint)
}

// markAncestors sets DirtyDescendants on e and its ancestors in the
// flattened tree, up to the first one already marked.
func (t *Tracker) markAncestors(e *dom.Element) {
	for e != nil {
		if t.hints[e]&DirtyDescendants != 0 {
			return
		}
		t.hints[e] |= DirtyDescendants
		e = flatParent(e)
	}
}

// flatParent returns the parent of e in the flattened tree.
func flatParent(e *dom.Element) *dom.Element {
	if slot := e.Slot(); slot != nil {
		return slot
	}
	if p := e.Parent(); p != nil {
		return p
	}
	if sr := e.ContainingShadow(); sr != nil {
		return sr.HostElement()
	}
	if o, ok := e.PseudoElementOriginator().(*dom.Element); ok {
		return o
	}
	return nil
}

// Marked returns the elements of a document which carry any of the hints in
// h, in tree order. Shadow trees are visited before the light children of
// their hosts, pseudo-elements after the children of their originators.
func (t *Tracker) Marked(doc *dom.Document, h Hint) []*dom.Element {
	var marked []*dom.Element
	var visit func(e *dom.Element)
	visit = func(e *dom.Element) {
		if t.hints[e]&h != 0 {
			marked = append(marked, e)
		}
		if sr := e.Shadow(); sr != nil {
			for _, ch := range sr.Elements() {
				visit(ch)
			}
		}
		for _, ch := range e.Children() {
			visit(ch)
		}
		for _, pe := range e.PseudoElements() {
			visit(pe)
		}
	}
	if root := doc.Root(); root != nil {
		visit(root)
	}
	return marked
}

// Restyled returns the elements of a document which have to be restyled, in
// tree order.
func (t *Tracker) Restyled(doc *dom.Document) []*dom.Element {
	return t.Marked(doc, RestyleSelf|RestyleDescendants)
}
