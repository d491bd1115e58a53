package restyle

import (
	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/invalidation"
)

// Restyler runs invalidation traversals for changed elements and collects
// restyle hints.
type Restyler struct {
	stylist   *Stylist
	options   Options
	snapshots *SnapshotMap
	tracker   *Tracker
}

// NewRestyler creates a restyler for the style sheets of a stylist.
func NewRestyler(stylist *Stylist, opts Options) *Restyler {
	return &Restyler{
		stylist:   stylist,
		options:   opts,
		snapshots: NewSnapshotMap(),
		tracker:   NewTracker(),
	}
}

// Snapshots returns the snapshots of elements changed since the last flush.
func (r *Restyler) Snapshots() *SnapshotMap {
	return r.snapshots
}

// Tracker returns the restyle hints collected so far.
func (r *Restyler) Tracker() *Tracker {
	return r.tracker
}

func (r *Restyler) processor() *StateAndAttrProcessor {
	return NewStateAndAttrProcessor(r.stylist, r.snapshots, r.tracker, r.options)
}

// ElementChanged invalidates what depends on the changes of e since snap
// was taken. If snap is nil, a snapshot already in the snapshot map is
// used. Changes which affect :has() anchors are returned for
// InvalidateRelative.
func (r *Restyler) ElementChanged(e *dom.Element, snap *Snapshot) (invalidation.Result, []RelativeInvalidation) {
	if snap != nil {
		r.snapshots.Put(e, snap)
	}
	proc := r.processor()
	result := invalidation.NewInvalidator(e, r.options.checker(), proc).Invalidate()
	tracer().Debugf("%v changed: %v", e, result)
	return result, proc.RelativeInvalidations()
}

// Flush invalidates for all elements in the snapshot map, resolves :has()
// hand-offs and clears the snapshots. It returns the number of elements
// which got a restyle hint.
func (r *Restyler) Flush() int {
	var relative []RelativeInvalidation
	for _, e := range r.snapshots.Elements() {
		_, rel := r.ElementChanged(e, nil)
		relative = append(relative, rel...)
	}
	for _, ri := range relative {
		r.InvalidateRelative(ri)
	}
	r.snapshots.Clear()
	return r.tracker.Len()
}

// Apply snapshots e, calls mutate and invalidates the changes, including
// changes to :has() anchors.
func (r *Restyler) Apply(e *dom.Element, mutate func(*dom.Element)) invalidation.Result {
	r.snapshots.Take(e)
	mutate(e)
	result, relative := r.ElementChanged(e, nil)
	for _, ri := range relative {
		r.InvalidateRelative(ri)
	}
	r.snapshots.Remove(e)
	return result
}

// InvalidateRelative resolves a :has() hand-off. Every element which may be
// an anchor of the :has() selector, given the kind of the relative
// dependency, is treated as if the compound containing the :has() had
// changed. This may restyle more than necessary, never less.
// InvalidateRelative returns true if anything has been invalidated.
func (r *Restyler) InvalidateRelative(ri RelativeInvalidation) bool {
	touched := false
	pos := positionOf(ri.Element)
	if ri.former != nil {
		pos = *ri.former
	}
	for _, anchor := range anchorCandidates(pos, ri.Kind) {
		proc := &anchorProcessor{
			StateAndAttrProcessor: r.processor(),
			anchor:                anchor,
			dep:                   ri.Dependency,
			scope:                 ri.Scope,
		}
		result := invalidation.NewInvalidator(anchor, r.options.checker(), proc).Invalidate()
		if result.HasInvalidatedSelf() || result.HasInvalidatedDescendants() || result.HasInvalidatedSiblings() {
			touched = true
		}
		for _, nested := range proc.RelativeInvalidations() {
			if r.InvalidateRelative(nested) {
				touched = true
			}
		}
	}
	return touched
}

// position is the place of an element in its tree: below parent, right
// after prev. Either may be nil.
type position struct {
	parent *dom.Element
	prev   *dom.Element
}

func positionOf(e *dom.Element) position {
	return position{parent: e.Parent(), prev: prevElement(e)}
}

func prevElement(e *dom.Element) *dom.Element {
	if s, ok := e.PrevSiblingElement().(*dom.Element); ok {
		return s
	}
	return nil
}

// anchorCandidates returns the elements which may be anchors of a relative
// selector matching at an element at position pos.
func anchorCandidates(pos position, kind invalidation.RelativeKind) []*dom.Element {
	var ancestors []*dom.Element
	for p := pos.parent; p != nil; p = p.Parent() {
		ancestors = append(ancestors, p)
	}
	prevOf := func(x *dom.Element) []*dom.Element {
		if s := prevElement(x); s != nil {
			return []*dom.Element{s}
		}
		return nil
	}
	earlierFrom := func(s *dom.Element) []*dom.Element {
		var sibs []*dom.Element
		for ; s != nil; s = prevElement(s) {
			sibs = append(sibs, s)
		}
		return sibs
	}
	var own []*dom.Element
	if pos.prev != nil {
		own = []*dom.Element{pos.prev}
	}
	var candidates []*dom.Element
	switch kind {
	case invalidation.RelParent:
		if pos.parent != nil {
			candidates = append(candidates, pos.parent)
		}
	case invalidation.RelAncestors:
		candidates = ancestors
	case invalidation.RelPrevSibling:
		candidates = own
	case invalidation.RelEarlierSibling:
		candidates = earlierFrom(pos.prev)
	case invalidation.RelAncestorPrevSibling:
		candidates = own
		for _, a := range ancestors {
			candidates = append(candidates, prevOf(a)...)
		}
	case invalidation.RelAncestorEarlierSibling:
		candidates = earlierFrom(pos.prev)
		for _, a := range ancestors {
			candidates = append(candidates, earlierFrom(prevElement(a))...)
		}
	}
	return candidates
}

// anchorProcessor starts a traversal at a :has() anchor with the
// dependency of the compound containing the :has().
type anchorProcessor struct {
	*StateAndAttrProcessor
	anchor *dom.Element
	dep    *invalidation.Dependency
	scope  any
}

// CollectInvalidations is part of interface invalidation.Processor.
func (a *anchorProcessor) CollectInvalidations(e invalidation.Element, self *invalidation.Vector,
	descendants *invalidation.DescendantLists, siblings *invalidation.Vector) bool {
	//
	if asDOM(e) != a.anchor {
		return false
	}
	a.ctx.CurrentHost = a.scope
	next := a.dep.Next
	for next != nil && !next.IsRelative() && next.NormalKind() == invalidation.KindElement {
		if next.Next == nil {
			a.hint(a.anchor, RestyleSelf)
			return true
		}
		next = next.Next
	}
	switch {
	case next == nil:
		a.hint(a.anchor, RestyleSelf)
		return true
	case next.IsRelative():
		a.FoundRelativeSelectorInvalidation(e, next.RelativeKind(), next)
		return false
	}
	if invalidation.Push(next, a.scope, descendants, siblings) {
		a.hint(a.anchor, RestyleSelf)
		return true
	}
	return false
}
