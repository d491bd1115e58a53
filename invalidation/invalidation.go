package invalidation

import (
	"fmt"
	"strings"

	"github.com/npillmayer/restyle/selector"
)

// Kind classifies an invalidation by the part of the tree it applies to.
type Kind uint8

// Kinds of invalidations.
const (
	DescendantDOM     Kind = iota // DOM children (and shadow root children, anonymous content)
	DescendantSlotted             // elements assigned to a slot
	DescendantPart                // ::part() targets of a shadow tree
	Sibling                       // later siblings
)

func (k Kind) String() string {
	switch k {
	case DescendantDOM:
		return "dom"
	case DescendantSlotted:
		return "slotted"
	case DescendantPart:
		return "part"
	}
	return "sibling"
}

// Invalidation is a pending match of a compound selector. Offset is a parse
// order index into the dependency's selector, pointing to the compound which
// has to be matched next.
type Invalidation struct {
	dependency           *Dependency
	scope                any // opaque identity of the shadow host a rule belongs to
	offset               int
	matchedByAnyPrevious bool
}

// NewInvalidation creates an invalidation for the compound to the right of a
// dependency's compound. scope is the opaque identity of the shadow host the
// dependency's style sheet is attached to, or nil for document style sheets.
func NewInvalidation(dep *Dependency, scope any) Invalidation {
	if dep.Offset == 0 {
		panic(fmt.Sprintf("%v matches the element itself, cannot create invalidation", dep))
	}
	return Invalidation{
		dependency: dep,
		scope:      scope,
		offset:     dep.Selector.Len() + 1 - dep.Offset,
	}
}

// Dependency returns the dependency the invalidation has been created for.
func (inv Invalidation) Dependency() *Dependency { return inv.dependency }

// Scope returns the opaque identity of the shadow host the invalidation is
// scoped to, or nil.
func (inv Invalidation) Scope() any { return inv.scope }

// Offset returns the parse order offset of the next compound to match.
func (inv Invalidation) Offset() int { return inv.offset }

// MatchedByAnyPrevious is true if an ancestor or previous sibling has
// already matched this invalidation.
func (inv Invalidation) MatchedByAnyPrevious() bool { return inv.matchedByAnyPrevious }

// EffectiveForNext is true if the invalidation still applies further down or
// further to the right after it has been tried on an element.
func (inv Invalidation) EffectiveForNext() bool {
	if inv.offset == 0 {
		return true
	}
	switch inv.dependency.Selector.CombinatorAtParseOrder(inv.offset - 1) {
	case selector.Descendant, selector.LaterSibling, selector.PseudoElement:
		return true
	}
	return false
}

// Kind tells where the invalidation has to be matched.
func (inv Invalidation) Kind() Kind {
	if inv.offset == 0 {
		return DescendantDOM
	}
	switch inv.dependency.Selector.CombinatorAtParseOrder(inv.offset - 1) {
	case selector.Child, selector.Descendant, selector.PseudoElement:
		return DescendantDOM
	case selector.Part:
		return DescendantPart
	case selector.SlotAssignment:
		return DescendantSlotted
	}
	return Sibling
}

func (inv Invalidation) String() string {
	return fmt.Sprintf("Invalidation(%s)", inv.dependency.Selector.CompoundFrom(inv.offset))
}

// Vector is an ordered list of invalidations.
type Vector []Invalidation

// newVector creates an empty vector with room for a handful of entries.
func newVector() Vector {
	return make(Vector, 0, 10)
}

// Push appends an invalidation.
func (v *Vector) Push(inv Invalidation) {
	*v = append(*v, inv)
}

// IsEmpty is true if v has no entries.
func (v Vector) IsEmpty() bool {
	return len(v) == 0
}

func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, inv := range v {
		parts[i] = inv.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DescendantLists partitions descendant invalidations by the way they are
// propagated.
type DescendantLists struct {
	DOM     Vector
	Slotted Vector
	Parts   Vector
}

// IsEmpty is true if all lists are empty.
func (l *DescendantLists) IsEmpty() bool {
	return l.DOM.IsEmpty() && l.Slotted.IsEmpty() && l.Parts.IsEmpty()
}

func (l *DescendantLists) String() string {
	return fmt.Sprintf("{dom: %v, slotted: %v, parts: %v}", l.DOM, l.Slotted, l.Parts)
}

// Push sorts an invalidation for a normal dependency into the appropriate
// list. It returns true if the dependency invalidates the element itself,
// which is the case for KindElement and KindElementAndDescendants.
func Push(dep *Dependency, scope any, descendants *DescendantLists, siblings *Vector) bool {
	kind := dep.NormalKind()
	if kind == KindElement {
		return true
	}
	inv := NewInvalidation(dep, scope)
	switch kind {
	case KindElementAndDescendants:
		descendants.DOM.Push(inv)
		return true
	case KindDescendants:
		descendants.DOM.Push(inv)
	case KindSiblings:
		siblings.Push(inv)
	case KindSlottedElements:
		descendants.Slotted.Push(inv)
	case KindParts:
		descendants.Parts.Push(inv)
	}
	return false
}

// Result summarizes what a traversal has invalidated.
type Result struct {
	self        bool
	descendants bool
	siblings    bool
}

// EmptyResult is a result with nothing invalidated.
func EmptyResult() Result {
	return Result{}
}

// HasInvalidatedSelf is true if the root element of the traversal has been
// invalidated.
func (r Result) HasInvalidatedSelf() bool { return r.self }

// HasInvalidatedDescendants is true if any descendant has been invalidated.
func (r Result) HasInvalidatedDescendants() bool { return r.descendants }

// HasInvalidatedSiblings is true if any later sibling (or one of its
// descendants) has been invalidated.
func (r Result) HasInvalidatedSiblings() bool { return r.siblings }

func (r Result) String() string {
	return fmt.Sprintf("Result{self=%v, descendants=%v, siblings=%v}", r.self, r.descendants, r.siblings)
}
