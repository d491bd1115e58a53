package invalidation

import "github.com/npillmayer/restyle/selector"

// SiblingTraversalMap overrides the sibling links of at most one element.
//
// When an element has been removed from the tree, its sibling links are
// gone by the time invalidation runs. Relative selectors may nevertheless
// have to walk past the position it used to have. The map keeps the old
// links for that single element; every other element uses its live links.
//
// A nil map delegates to the live DOM for all elements.
type SiblingTraversalMap struct {
	affected Element
	prev     Element
	next     Element
}

// NewSiblingTraversalMap creates a map which overrides the sibling links of
// affected. prev and next may be nil.
func NewSiblingTraversalMap(affected, prev, next Element) *SiblingTraversalMap {
	return &SiblingTraversalMap{affected: affected, prev: prev, next: next}
}

// NextSiblingFor returns the next sibling element of e.
func (m *SiblingTraversalMap) NextSiblingFor(e Element) Element {
	if m != nil && m.affected != nil && selector.SameElement(e, m.affected) {
		return m.next
	}
	return asElement(e.NextSiblingElement())
}

// PrevSiblingFor returns the previous sibling element of e.
func (m *SiblingTraversalMap) PrevSiblingFor(e Element) Element {
	if m != nil && m.affected != nil && selector.SameElement(e, m.affected) {
		return m.prev
	}
	return asElement(e.PrevSiblingElement())
}

// asElement converts a navigation result back to an Element. Implementations
// of Element are required to return Elements from all navigation methods.
func asElement(e selector.Element) Element {
	if e == nil {
		return nil
	}
	return e.(Element)
}
