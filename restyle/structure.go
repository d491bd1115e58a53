package restyle

import (
	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/selector"
)

// RemoveElement removes e from the tree and invalidates for the removal.
func (r *Restyler) RemoveElement(e *dom.Element) invalidation.Result {
	pos := positionOf(e)
	next, _ := e.NextSiblingElement().(*dom.Element)
	e.Remove()
	return r.ElementRemoved(e, pos.parent, pos.prev, next)
}

// AppendElement appends child to parent and invalidates for the insertion.
func (r *Restyler) AppendElement(parent, child *dom.Element) invalidation.Result {
	parent.AppendChild(child)
	return r.ElementInserted(child)
}

// InsertElement inserts child into parent right before ref and invalidates
// for the insertion. A nil ref appends child.
func (r *Restyler) InsertElement(parent, child, ref *dom.Element) invalidation.Result {
	parent.InsertBefore(child, ref)
	return r.ElementInserted(child)
}

// ElementRemoved invalidates for the removal of e, which has been a child of
// parent between prev and next. Any of them may be nil. It has to be called
// after e has left the tree.
//
// Later siblings are invalidated for sibling selectors keyed on e or on
// prev, and :has() anchors around the former position of e are resolved for
// e and its descendants.
func (r *Restyler) ElementRemoved(e, parent, prev, next *dom.Element) invalidation.Result {
	tracer().Debugf("%v removed from %v between %v and %v", e, parent, prev, next)
	proc := r.structureProcessor(e, position{parent: parent, prev: prev}, next, true)
	result := invalidation.NewInvalidator(e, r.options.checker(), proc).Invalidate()
	r.resolve(proc.RelativeInvalidations())
	return result
}

// ElementInserted invalidates for the insertion of e, which has to be in the
// tree already. e and its subtree are restyled completely.
func (r *Restyler) ElementInserted(e *dom.Element) invalidation.Result {
	tracer().Debugf("%v inserted", e)
	pos := positionOf(e)
	next, _ := e.NextSiblingElement().(*dom.Element)
	proc := r.structureProcessor(e, pos, next, false)
	result := invalidation.NewInvalidator(e, r.options.checker(), proc).Invalidate()
	r.resolve(proc.RelativeInvalidations())
	return result
}

func (r *Restyler) resolve(relative []RelativeInvalidation) {
	for _, ri := range relative {
		r.InvalidateRelative(ri)
	}
}

func (r *Restyler) structureProcessor(e *dom.Element, pos position, next *dom.Element,
	removed bool) *structureProcessor {
	//
	p := r.processor()
	p.Defaults.Traversal = invalidation.NewSiblingTraversalMap(e, wrapNil(pos.prev), wrapNil(next))
	return &structureProcessor{
		StateAndAttrProcessor: p,
		element:               e,
		pos:                   pos,
		next:                  next,
		removed:               removed,
	}
}

// wrapNil keeps a nil element from turning into a non-nil interface.
func wrapNil(e *dom.Element) invalidation.Element {
	if e == nil {
		return nil
	}
	return e
}

// structureProcessor collects the invalidations caused by inserting or
// removing an element. The dependencies are not compared against a
// snapshot: whatever e or its previous sibling match may have changed
// position, so it is taken as changed.
type structureProcessor struct {
	*StateAndAttrProcessor
	element *dom.Element
	pos     position
	next    *dom.Element
	removed bool
}

// CheckOuterDependency is part of interface invalidation.Processor.
// The matching of outer compounds cannot be compared with an earlier state,
// so every outer dependency is taken to apply.
func (p *structureProcessor) CheckOuterDependency(dep *invalidation.Dependency, e invalidation.Element) bool {
	return true
}

// CollectInvalidations is part of interface invalidation.Processor.
func (p *structureProcessor) CollectInvalidations(e invalidation.Element, self *invalidation.Vector,
	descendants *invalidation.DescendantLists, siblings *invalidation.Vector) bool {
	//
	if asDOM(e) != p.element {
		return false
	}
	if !p.removed {
		p.hint(p.element, RestyleSelf|RestyleDescendants)
	}
	c := structureCollector{p: p, descendants: descendants, siblings: siblings}
	for _, sc := range p.scopes() {
		p.ctx.CurrentHost = sc.currentHost()
		c.scope = p.ctx.CurrentHost
		if p.pos.prev != nil && p.next != nil {
			c.collect(sc, p.pos.prev, true, false, false)
		}
		c.collect(sc, p.element, p.next != nil, true, false)
		for _, d := range descendantsOf(p.element) {
			c.collect(sc, d, false, true, true)
		}
	}
	return !p.removed
}

// scopes returns the style scopes of the position of the element. A removed
// element is detached, so the scopes are found by its former neighbours.
func (p *structureProcessor) scopes() []scope {
	for _, e := range []*dom.Element{p.pos.parent, p.pos.prev, p.next} {
		if e != nil {
			return p.stylist.scopesFor(e)
		}
	}
	if !p.removed {
		return p.stylist.scopesFor(p.element)
	}
	return []scope{{deps: p.stylist.document}}
}

func descendantsOf(e *dom.Element) []*dom.Element {
	var all []*dom.Element
	for _, ch := range e.Children() {
		all = append(all, ch)
		all = append(all, descendantsOf(ch)...)
	}
	return all
}

type structureCollector struct {
	p           *structureProcessor
	scope       any
	descendants *invalidation.DescendantLists
	siblings    *invalidation.Vector
}

// collect scans the dependencies keyed on anything src carries. Sibling
// dependencies are pushed if withSiblings is set, :has() dependencies are
// handed off if withRelative is set. Descendants of the inserted or removed
// element only hand off :has() dependencies which look at ancestors.
func (c *structureCollector) collect(sc scope, src *dom.Element, withSiblings, withRelative, inner bool) {
	keys := (&Snapshot{}).changesOf(src)
	scan := func(deps []*invalidation.Dependency) {
		for _, dep := range deps {
			c.scan(dep, src, withSiblings, withRelative, inner)
		}
	}
	for _, id := range keys.ids {
		scan(sc.deps.IDs(id))
	}
	for _, class := range keys.classes {
		scan(sc.deps.Classes(class))
	}
	for _, attr := range keys.attributes {
		scan(sc.deps.Attributes(attr))
	}
	if keys.state != 0 {
		scan(sc.deps.States(keys.state))
	}
}

// matches checks the compound of dep at src. The removed subtree is detached,
// so only the compound itself can be checked there.
func (c *structureCollector) matches(dep *invalidation.Dependency, src *dom.Element) bool {
	if c.p.removed && src != c.p.pos.prev {
		return selector.MatchesCompoundAt(dep.Selector, dep.Offset, c.p.ctx, src)
	}
	return selector.MatchesFrom(dep.Selector, dep.Offset, c.p.ctx, src)
}

func (c *structureCollector) scan(dep *invalidation.Dependency, src *dom.Element,
	withSiblings, withRelative, inner bool) {
	//
	if !c.matches(dep, src) {
		return
	}
	switch dep.NormalKind() {
	case invalidation.KindElement:
		switch {
		case dep.Next == nil: // concerns src only
		case dep.Next.IsRelative():
			if withRelative && (!inner || looksAtAncestors(dep.Next.RelativeKind())) {
				c.handOff(src, dep.Next)
			}
		default:
			c.scan(dep.Next, src, withSiblings, withRelative, inner)
		}
	case invalidation.KindSiblings:
		if withSiblings {
			tracer().Debugf("sibling dependency %v of %v", dep, src)
			invalidation.Push(dep, c.scope, c.descendants, c.siblings)
		}
	}
}

func (c *structureCollector) handOff(src *dom.Element, dep *invalidation.Dependency) {
	pos := c.p.pos
	ri := RelativeInvalidation{
		Element:    src,
		Kind:       dep.RelativeKind(),
		Dependency: dep,
		Scope:      c.p.ctx.CurrentHost,
		former:     &pos,
	}
	tracer().Debugf("hand-off %v", ri)
	c.p.relative = append(c.p.relative, ri)
}

func looksAtAncestors(kind invalidation.RelativeKind) bool {
	switch kind {
	case invalidation.RelAncestors, invalidation.RelAncestorPrevSibling, invalidation.RelAncestorEarlierSibling:
		return true
	}
	return false
}

var _ invalidation.Processor = &structureProcessor{}
