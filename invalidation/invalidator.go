package invalidation

import (
	"fmt"

	"github.com/npillmayer/restyle/selector"
)

// Invalidator walks a subtree, starting at an element, and propagates the
// invalidations a Processor collects for it.
//
// An Invalidator is single-use and not safe for concurrent use. Independent
// subtrees may be handled concurrently, provided each traversal has its own
// Processor.
type Invalidator struct {
	element Element
	depth   int
	checker StackLimitChecker
	proc    Processor
}

// NewInvalidator creates an invalidator for element e. checker may be nil.
func NewInvalidator(e Element, checker StackLimitChecker, p Processor) *Invalidator {
	return &Invalidator{element: e, checker: checker, proc: p}
}

func (inv *Invalidator) child(e Element) *Invalidator {
	return &Invalidator{element: e, depth: inv.depth + 1, checker: inv.checker, proc: inv.proc}
}

func (inv *Invalidator) sibling(e Element) *Invalidator {
	return &Invalidator{element: e, depth: inv.depth, checker: inv.checker, proc: inv.proc}
}

// singleResult is the outcome of processing one invalidation at one element.
type singleResult struct {
	invalidatedSelf bool
	matched         bool
}

// Invalidate collects the invalidations for the element and propagates
// them to the element itself, its descendants and its later siblings.
func (inv *Invalidator) Invalidate() Result {
	tracer().Debugf("invalidate(%s)", describe(inv.element))
	selfInvs := newVector()
	siblingInvs := newVector()
	var descendantInvs DescendantLists
	invalidatedSelf := inv.proc.CollectInvalidations(inv.element, &selfInvs, &descendantInvs, &siblingInvs)
	tracer().Debugf("collected invalidations (self: %v)", invalidatedSelf)
	tracer().Debugf(" > self: %d, %v", len(selfInvs), selfInvs)
	tracer().Debugf(" > descendants: %v", &descendantInvs)
	tracer().Debugf(" > siblings: %d, %v", len(siblingInvs), siblingInvs)
	fromCollection := invalidatedSelf
	if inv.processDescendantInvalidations(selfInvs, &descendantInvs, &siblingInvs, DescendantDOM) {
		invalidatedSelf = true
	}
	if invalidatedSelf && !fromCollection {
		inv.proc.InvalidatedSelf(inv.element)
	}
	descendants := inv.invalidateDescendants(&descendantInvs)
	siblings := inv.invalidateSiblings(&siblingInvs)
	return Result{self: invalidatedSelf, descendants: descendants, siblings: siblings}
}

// invalidateSiblings walks the later siblings of the element as long as
// there are sibling invalidations left.
func (inv *Invalidator) invalidateSiblings(siblingInvs *Vector) bool {
	if siblingInvs.IsEmpty() {
		return false
	}
	traversal := inv.proc.SiblingTraversalMap()
	current := traversal.NextSiblingFor(inv.element)
	anyInvalidated := false
	for current != nil {
		sib := inv.sibling(current)
		var forDescendants DescendantLists
		invalidatedSibling := sib.processSiblingInvalidations(&forDescendants, siblingInvs)
		if invalidatedSibling {
			inv.proc.InvalidatedSibling(current, inv.element)
		}
		anyInvalidated = anyInvalidated || invalidatedSibling
		if sib.invalidateDescendants(&forDescendants) {
			anyInvalidated = true
		}
		if siblingInvs.IsEmpty() {
			break
		}
		current = traversal.NextSiblingFor(current)
	}
	return anyInvalidated
}

// invalidateChild processes a single child, or rather a single element in
// the flattened tree below the element: the element may be deeper down in
// the DOM.
func (inv *Invalidator) invalidateChild(child Element, invs Vector, siblingInvs *Vector, kind Kind) bool {
	var forDescendants DescendantLists
	ch := inv.child(child)
	invalidatedChild := ch.processSiblingInvalidations(&forDescendants, siblingInvs)
	if ch.processDescendantInvalidations(invs, &forDescendants, siblingInvs, kind) {
		invalidatedChild = true
	}
	if invalidatedChild {
		inv.proc.InvalidatedSelf(child)
	}
	invalidatedDescendants := ch.invalidateDescendants(&forDescendants)
	if invalidatedChild || invalidatedDescendants {
		inv.proc.InvalidatedDescendants(inv.element, child)
	}
	return invalidatedChild || invalidatedDescendants
}

// invalidateNAC visits anonymous content children. They have no siblings
// which could be affected.
func (inv *Invalidator) invalidateNAC(invs Vector) bool {
	touched := false
	for _, nac := range inv.element.AnonymousContent() {
		siblingInvs := newVector()
		if inv.invalidateChild(nac, invs, &siblingInvs, DescendantDOM) {
			touched = true
		}
	}
	return touched
}

// invalidateDOMChildren visits the element children of a node: either the
// element itself or its shadow root. Children share one sibling list.
func (inv *Invalidator) invalidateDOMChildren(children []Element, invs Vector) bool {
	touched := false
	siblingInvs := newVector()
	for _, child := range children {
		if inv.invalidateChild(child, invs, &siblingInvs, DescendantDOM) {
			touched = true
		}
	}
	return touched
}

func (inv *Invalidator) invalidatePartsInShadowTree(shadow ShadowRoot, invs Vector) bool {
	if invs.IsEmpty() {
		panic("no invalidations for ::part() traversal")
	}
	touched := false
	siblingInvs := newVector()
	for _, e := range shadow.Descendants() {
		if e.HasPartAttr() {
			if inv.invalidateChild(e, invs, &siblingInvs, DescendantPart) {
				touched = true
			}
			if !siblingInvs.IsEmpty() {
				panic(fmt.Sprintf("::part() followed by a sibling combinator: %v", siblingInvs))
			}
		}
		if nested := e.ShadowRoot(); nested != nil && e.ExportsAnyPart() {
			if inv.invalidatePartsInShadowTree(nested, invs) {
				touched = true
			}
		}
	}
	return touched
}

func (inv *Invalidator) invalidateParts(invs Vector) bool {
	if invs.IsEmpty() {
		return false
	}
	shadow := inv.element.ShadowRoot()
	if shadow == nil {
		return false
	}
	return inv.invalidatePartsInShadowTree(shadow, invs)
}

func (inv *Invalidator) invalidateSlottedElements(invs Vector) bool {
	if invs.IsEmpty() {
		return false
	}
	return inv.invalidateSlottedElementsInSlot(inv.element, invs)
}

func (inv *Invalidator) invalidateSlottedElementsInSlot(slot Element, invs Vector) bool {
	touched := false
	siblingInvs := newVector()
	for _, e := range slot.SlottedNodes() {
		if e.IsSlot() {
			if inv.invalidateSlottedElementsInSlot(e, invs) {
				touched = true
			}
		} else if inv.invalidateChild(e, invs, &siblingInvs, DescendantSlotted) {
			touched = true
		}
		if !siblingInvs.IsEmpty() {
			panic(fmt.Sprintf("::slotted() followed by a sibling combinator: %v", siblingInvs))
		}
	}
	return touched
}

func (inv *Invalidator) invalidateNonSlottedDescendants(invs Vector) bool {
	if invs.IsEmpty() {
		return false
	}
	if inv.proc.LightTreeOnly() {
		return inv.invalidateDOMChildren(inv.element.DOMChildren(), invs)
	}
	touched := false
	if root := inv.element.ShadowRoot(); root != nil {
		if inv.invalidateDOMChildren(root.Children(), invs) {
			touched = true
		}
	}
	if inv.invalidateDOMChildren(inv.element.DOMChildren(), invs) {
		touched = true
	}
	if inv.invalidateNAC(invs) {
		touched = true
	}
	return touched
}

// invalidateDescendants dispatches descendant invalidations to the three
// kinds of descendants.
func (inv *Invalidator) invalidateDescendants(invs *DescendantLists) bool {
	if invs.IsEmpty() {
		return false
	}
	tracer().Debugf("invalidate descendants of %s: %v", describe(inv.element), invs)
	if !inv.proc.ShouldProcessDescendants(inv.element) {
		return false
	}
	if inv.checker != nil && inv.checker.LimitExceeded(inv.depth) {
		tracer().Infof("recursion limit exceeded at %s (depth %d)", describe(inv.element), inv.depth)
		inv.proc.RecursionLimitExceeded(inv.element)
		return true
	}
	touched := false
	if inv.invalidateNonSlottedDescendants(invs.DOM) {
		touched = true
	}
	if inv.invalidateSlottedElements(invs.Slotted) {
		touched = true
	}
	if inv.invalidateParts(invs.Parts) {
		touched = true
	}
	return touched
}

// processSiblingInvalidations matches the pending sibling invalidations
// against the element. Invalidations which are not effective for later
// siblings are dropped, new sibling invalidations are appended.
func (inv *Invalidator) processSiblingInvalidations(descendantInvs *DescendantLists, siblingInvs *Vector) bool {
	newSiblingInvs := newVector()
	invalidatedSelf := false
	list := *siblingInvs
	i := 0
	for i < len(list) {
		r := inv.processInvalidation(list[i], descendantInvs, &newSiblingInvs, Sibling)
		invalidatedSelf = invalidatedSelf || r.invalidatedSelf
		list[i].matchedByAnyPrevious = list[i].matchedByAnyPrevious || r.matched
		if list[i].EffectiveForNext() {
			i++
		} else {
			list = append(list[:i], list[i+1:]...)
		}
	}
	*siblingInvs = append(list, newSiblingInvs...)
	return invalidatedSelf
}

// processDescendantInvalidations matches invalidations coming from an
// ancestor against the element. Effective invalidations are passed on to
// the element's children.
func (inv *Invalidator) processDescendantInvalidations(invs Vector, descendantInvs *DescendantLists,
	siblingInvs *Vector, kind Kind) bool {
	//
	invalidated := false
	for _, i := range invs {
		r := inv.processInvalidation(i, descendantInvs, siblingInvs, kind)
		invalidated = invalidated || r.invalidatedSelf
		if i.EffectiveForNext() {
			if kind != DescendantDOM {
				panic(fmt.Sprintf("%s invalidation %v must not propagate", kind, i))
			}
			i.matchedByAnyPrevious = i.matchedByAnyPrevious || r.matched
			descendantInvs.DOM.Push(i)
		}
	}
	return invalidated
}

// processInvalidation matches a single invalidation against the element.
// If the compound matches, the invalidation either invalidates the element
// or is replaced by an invalidation for the next compound to the right.
func (inv *Invalidator) processInvalidation(i Invalidation, descendantInvs *DescendantLists,
	siblingInvs *Vector, kind Kind) singleResult {
	//
	tracer().Debugf("process %v at %s (%s)", i, describe(inv.element), kind)
	ctx := inv.proc.MatchingContext()
	ctx.CurrentHost = i.scope
	m := selector.MatchCompoundFrom(i.dependency.Selector, i.offset, ctx, inv.element)
	var next Invalidation
	switch m.Kind {
	case selector.NotMatched:
		return singleResult{}
	case selector.FullyMatched:
		tracer().Debugf(" > invalidation matched completely")
		dep := i.dependency
		for {
			dep = dep.Next
			if dep == nil {
				return singleResult{invalidatedSelf: true, matched: true}
			}
			if dep.IsRelative() {
				inv.proc.FoundRelativeSelectorInvalidation(inv.element, dep.RelativeKind(), dep)
				return singleResult{matched: true}
			}
			tracer().Debugf(" > checking outer dependency %v", dep)
			if !inv.proc.CheckOuterDependency(dep, inv.element) {
				return singleResult{}
			}
			if dep.NormalKind() == KindElement {
				continue
			}
			next = NewInvalidation(dep, i.scope)
			break
		}
	case selector.Matched:
		next = Invalidation{
			dependency: i.dependency,
			scope:      i.scope,
			offset:     m.NextCombinatorOffset + 1,
		}
	}
	if next.offset == 0 {
		panic(fmt.Sprintf("rightmost compound of %v generated an invalidation", next.dependency))
	}
	invalidatedSelf := false
	comb := next.dependency.Selector.CombinatorAtParseOrder(next.offset - 1)
	if comb == selector.PseudoElement && inv.proc.InvalidatesOnPseudoElement() {
		invalidatedSelf = true
	}
	nextKind := next.Kind()
	tracer().Debugf(" > invalidation matched, next: %v (%s)", next, comb)
	if nextKind == kind && i.matchedByAnyPrevious && next.EffectiveForNext() {
		tracer().Debugf(" > can avoid push, invalidation has already been matched before")
		return singleResult{invalidatedSelf: invalidatedSelf, matched: true}
	}
	switch nextKind {
	case DescendantDOM:
		descendantInvs.DOM.Push(next)
	case DescendantPart:
		descendantInvs.Parts.Push(next)
	case DescendantSlotted:
		descendantInvs.Slotted.Push(next)
	case Sibling:
		siblingInvs.Push(next)
	}
	return singleResult{invalidatedSelf: invalidatedSelf, matched: true}
}

func describe(e Element) string {
	if e == nil {
		return "<nil>"
	}
	if pe := e.PseudoElementName(); pe != "" {
		return "::" + pe
	}
	if id := e.ID(); id != "" {
		return e.LocalName() + "#" + id
	}
	return e.LocalName()
}
