package invalidation

import (
	"fmt"

	"github.com/npillmayer/restyle/selector"
)

// NormalKind tells where a normal dependency will invalidate, relative to the
// element on which the dependency has been detected.
type NormalKind uint8

// Kinds of normal dependencies.
const (
	KindElement               NormalKind = iota // the element itself
	KindElementAndDescendants                   // the element and its pseudo-elements
	KindDescendants                             // descendants of the element
	KindSiblings                                // later siblings of the element
	KindSlottedElements                         // elements assigned to the element (a slot)
	KindParts                                   // ::part() targets in the element's shadow tree
)

func (k NormalKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindElementAndDescendants:
		return "element+descendants"
	case KindDescendants:
		return "descendants"
	case KindSiblings:
		return "siblings"
	case KindSlottedElements:
		return "slotted"
	case KindParts:
		return "parts"
	}
	return "?"
}

// RelativeKind tells where the anchor of a :has() selector may be found,
// relative to an element which matched the relative selector.
type RelativeKind uint8

// Kinds of relative dependencies.
const (
	RelAncestors             RelativeKind = iota // :has(.x)
	RelParent                                    // :has(> .x)
	RelPrevSibling                               // :has(+ .x)
	RelAncestorPrevSibling                       // :has(+ .x .y)
	RelEarlierSibling                            // :has(~ .x)
	RelAncestorEarlierSibling                    // :has(~ .x .y)
)

func (k RelativeKind) String() string {
	switch k {
	case RelAncestors:
		return "ancestors"
	case RelParent:
		return "parent"
	case RelPrevSibling:
		return "prev-sibling"
	case RelAncestorPrevSibling:
		return "ancestor-prev-sibling"
	case RelEarlierSibling:
		return "earlier-sibling"
	case RelAncestorEarlierSibling:
		return "ancestor-earlier-sibling"
	}
	return "?"
}

// Dependency is a compiled selector together with the position of a
// compound selector within it. Offset is given in match order and points to
// the first (rightmost) component of the compound whose change has to be
// watched; 0 stands for the subject compound.
//
// Next links to an outer dependency: a dependency for a selector nested in
// :is() or :not() links to the dependency for the enclosing compound. A
// dependency nested in :has() links to a relative dependency.
//
// Dependencies are immutable after construction and may be shared between
// traversals.
type Dependency struct {
	Selector *selector.Selector
	Offset   int
	Next     *Dependency
	relative bool
	relKind  RelativeKind
}

// NewDependency creates a normal dependency.
func NewDependency(sel *selector.Selector, offset int, next *Dependency) *Dependency {
	if offset < 0 || offset > sel.Len() {
		panic(fmt.Sprintf("dependency offset %d out of range for %q", offset, sel))
	}
	return &Dependency{Selector: sel, Offset: offset, Next: next}
}

// NewRelativeDependency creates a dependency for the anchor compound of a
// selector containing :has().
func NewRelativeDependency(sel *selector.Selector, offset int, next *Dependency, kind RelativeKind) *Dependency {
	d := NewDependency(sel, offset, next)
	d.relative = true
	d.relKind = kind
	return d
}

// IsRelative is true for dependencies created by NewRelativeDependency.
func (d *Dependency) IsRelative() bool {
	return d.relative
}

// RelativeKind returns the kind of a relative dependency.
func (d *Dependency) RelativeKind() RelativeKind {
	if !d.relative {
		panic("RelativeKind called for a normal dependency")
	}
	return d.relKind
}

// NormalKind derives the kind of a normal dependency from the combinator
// next to its compound.
func (d *Dependency) NormalKind() NormalKind {
	if d.relative {
		panic("NormalKind called for a relative dependency")
	}
	if d.Offset == 0 {
		return KindElement
	}
	switch d.Selector.CombinatorAtMatchOrder(d.Offset - 1) {
	case selector.Child, selector.Descendant:
		return KindDescendants
	case selector.NextSibling, selector.LaterSibling:
		return KindSiblings
	case selector.PseudoElement:
		return KindElementAndDescendants
	case selector.SlotAssignment:
		return KindSlottedElements
	}
	return KindParts
}

func (d *Dependency) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.relative {
		return fmt.Sprintf("dep(%s @%d, %s)", d.Selector, d.Offset, d.relKind)
	}
	return fmt.Sprintf("dep(%s @%d)", d.Selector, d.Offset)
}
