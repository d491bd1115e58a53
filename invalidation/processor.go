package invalidation

import (
	"fmt"

	"github.com/npillmayer/restyle/selector"
)

// Element is what the invalidator needs to know about an element, on top of
// what selector matching needs. All Elements returned from navigation
// methods, including those of selector.Element, must implement Element.
type Element interface {
	selector.Element
	DOMChildren() []Element      // element children in the light tree
	ShadowRoot() ShadowRoot      // attached shadow root, or nil
	IsSlot() bool                // is this a <slot>?
	SlottedNodes() []Element     // elements assigned to a slot, in order
	AnonymousContent() []Element // anonymous content children (pseudo-elements)
	HasPartAttr() bool           // does the element carry a part attribute?
	ExportsAnyPart() bool        // does the element carry a non-empty exportparts attribute?
}

// ShadowRoot is a shadow tree attached to a host element.
type ShadowRoot interface {
	Host() Element
	Children() []Element    // top level elements of the shadow tree
	Descendants() []Element // all elements of the shadow tree in document order, excluding nested shadow trees
}

// Processor drives an invalidation traversal. It supplies the initial
// invalidations and is notified about everything which gets invalidated.
//
// Implementations may embed Defaults for the optional capabilities.
type Processor interface {
	// InvalidatesOnPseudoElement tells whether an element has to be
	// invalidated whenever one of its pseudo-elements is.
	InvalidatesOnPseudoElement() bool
	// LightTreeOnly restricts descendant traversal to DOM children.
	LightTreeOnly() bool
	// CheckOuterDependency decides whether an outer dependency applies,
	// after an inner selector (e.g., of :is()) has fully matched at e.
	CheckOuterDependency(dep *Dependency, e Element) bool
	// MatchingContext returns the context used for compound matching.
	// The invalidator sets its CurrentHost before each match.
	MatchingContext() *selector.MatchingContext
	// SiblingTraversalMap returns the sibling overrides in effect. May be nil.
	SiblingTraversalMap() *SiblingTraversalMap
	// CollectInvalidations fills the initial invalidation lists for e and
	// returns true if e itself is invalidated regardless of matching.
	CollectInvalidations(e Element, self *Vector, descendants *DescendantLists, siblings *Vector) bool
	// ShouldProcessDescendants tells whether descendants of e need to be
	// visited at all.
	ShouldProcessDescendants(e Element) bool
	RecursionLimitExceeded(e Element)
	InvalidatedSelf(e Element)
	InvalidatedSibling(sibling, of Element)
	InvalidatedDescendants(e, child Element)
	// FoundRelativeSelectorInvalidation hands an invalidation of a :has()
	// anchor over to the processor.
	FoundRelativeSelectorInvalidation(e Element, kind RelativeKind, dep *Dependency)
}

// Defaults provides default answers for optional Processor capabilities.
type Defaults struct {
	PseudoElements bool                 // answer for InvalidatesOnPseudoElement
	LightTree      bool                 // answer for LightTreeOnly
	Traversal      *SiblingTraversalMap // answer for SiblingTraversalMap
}

// InvalidatesOnPseudoElement is part of interface Processor.
func (d Defaults) InvalidatesOnPseudoElement() bool { return d.PseudoElements }

// LightTreeOnly is part of interface Processor.
func (d Defaults) LightTreeOnly() bool { return d.LightTree }

// SiblingTraversalMap is part of interface Processor.
func (d Defaults) SiblingTraversalMap() *SiblingTraversalMap { return d.Traversal }

// FoundRelativeSelectorInvalidation is part of interface Processor. Processors
// which collect relative dependencies have to override it.
func (d Defaults) FoundRelativeSelectorInvalidation(e Element, kind RelativeKind, dep *Dependency) {
	panic(fmt.Sprintf("reached relative selector dependency %v (%s) without a handler", dep, kind))
}
