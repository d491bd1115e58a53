package restyle

import (
	"fmt"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/invalidation/depmap"
	"github.com/npillmayer/restyle/selector"
)

// RelativeInvalidation records a change which may affect the anchors of a
// :has() selector.
type RelativeInvalidation struct {
	Element    *dom.Element              // element the argument of :has() matched at
	Kind       invalidation.RelativeKind // where to look for anchors
	Dependency *invalidation.Dependency  // relative dependency; Next is the compound containing :has()
	Scope      any                       // current host the dependency was found for
	former     *position                 // position of a removed element
}

func (ri RelativeInvalidation) String() string {
	return fmt.Sprintf("relative(%v, %s, %v)", ri.Element, ri.Kind, ri.Dependency)
}

// StateAndAttrProcessor is the invalidation processor for changes of ids,
// classes, attributes and element state, recorded as snapshots.
type StateAndAttrProcessor struct {
	invalidation.Defaults
	stylist   *Stylist
	snapshots *SnapshotMap
	tracker   *Tracker
	ctx       *selector.MatchingContext
	relative  []RelativeInvalidation
}

// NewStateAndAttrProcessor creates a processor. Hints are recorded in
// tracker.
func NewStateAndAttrProcessor(stylist *Stylist, snapshots *SnapshotMap, tracker *Tracker,
	opts Options) *StateAndAttrProcessor {
	//
	return &StateAndAttrProcessor{
		Defaults: invalidation.Defaults{
			PseudoElements: opts.PseudoElements,
			LightTree:      opts.LightTreeOnly,
		},
		stylist:   stylist,
		snapshots: snapshots,
		tracker:   tracker,
		ctx:       selector.NewMatchingContext(),
	}
}

// RelativeInvalidations returns the :has() hand-offs recorded so far.
func (p *StateAndAttrProcessor) RelativeInvalidations() []RelativeInvalidation {
	return p.relative
}

func asDOM(e invalidation.Element) *dom.Element {
	d, ok := e.(*dom.Element)
	if !ok {
		panic(fmt.Sprintf("restyle: element %v is not a DOM element", e))
	}
	return d
}

// MatchingContext is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) MatchingContext() *selector.MatchingContext {
	return p.ctx
}

// CheckOuterDependency is part of interface invalidation.Processor.
// An outer dependency applies if its outcome at e differs between now and
// the time of the snapshots.
func (p *StateAndAttrProcessor) CheckOuterDependency(dep *invalidation.Dependency, e invalidation.Element) bool {
	return p.dependencyChanged(dep, asDOM(e))
}

func (p *StateAndAttrProcessor) dependencyChanged(dep *invalidation.Dependency, e *dom.Element) bool {
	now := selector.MatchesFrom(dep.Selector, dep.Offset, p.ctx, e)
	then := selector.MatchesFrom(dep.Selector, dep.Offset, p.ctx, wrapElement(e, p.snapshots))
	return now != then
}

// CollectInvalidations is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) CollectInvalidations(e invalidation.Element, self *invalidation.Vector,
	descendants *invalidation.DescendantLists, siblings *invalidation.Vector) bool {
	//
	el := asDOM(e)
	snap := p.snapshots.Get(el)
	if snap == nil {
		tracer().Debugf("no snapshot for %v", el)
		return false
	}
	ch := snap.changesOf(el)
	if ch.empty() {
		tracer().Debugf("%v did not change", el)
		return false
	}
	tracer().Debugf("%v changed: ids=%v classes=%v attributes=%v state=%v", el, ch.ids, ch.classes,
		ch.attributes, ch.state)
	c := collector{
		p:           p,
		element:     el,
		changes:     ch,
		descendants: descendants,
		siblings:    siblings,
		self:        ch.style,
	}
	for _, sc := range p.stylist.scopesFor(el) {
		p.ctx.CurrentHost = sc.currentHost()
		c.scope = p.ctx.CurrentHost
		c.collect(sc.deps)
	}
	if c.self {
		p.hint(el, RestyleSelf)
	}
	return c.self
}

// hint records a restyle hint for e and marks its ancestors.
func (p *StateAndAttrProcessor) hint(e *dom.Element, h Hint) {
	p.tracker.Add(e, h)
	p.tracker.markAncestors(flatParent(e))
}

// ShouldProcessDescendants is part of interface invalidation.Processor.
// Subtrees which are restyled completely anyway are skipped.
func (p *StateAndAttrProcessor) ShouldProcessDescendants(e invalidation.Element) bool {
	return p.tracker.Hint(asDOM(e))&RestyleDescendants == 0
}

// RecursionLimitExceeded is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) RecursionLimitExceeded(e invalidation.Element) {
	p.hint(asDOM(e), RestyleDescendants)
}

// InvalidatedSelf is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) InvalidatedSelf(e invalidation.Element) {
	p.hint(asDOM(e), RestyleSelf)
}

// InvalidatedSibling is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) InvalidatedSibling(sibling, of invalidation.Element) {
	p.hint(asDOM(sibling), RestyleSelf)
}

// InvalidatedDescendants is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) InvalidatedDescendants(e, child invalidation.Element) {
	p.tracker.markAncestors(asDOM(e))
}

// FoundRelativeSelectorInvalidation is part of interface invalidation.Processor.
func (p *StateAndAttrProcessor) FoundRelativeSelectorInvalidation(e invalidation.Element,
	kind invalidation.RelativeKind, dep *invalidation.Dependency) {
	//
	ri := RelativeInvalidation{Element: asDOM(e), Kind: kind, Dependency: dep, Scope: p.ctx.CurrentHost}
	tracer().Debugf("hand-off %v", ri)
	p.relative = append(p.relative, ri)
}

var _ invalidation.Processor = &StateAndAttrProcessor{}

// --- Collecting dependencies -----------------------------------------------

type collector struct {
	p           *StateAndAttrProcessor
	element     *dom.Element
	changes     changes
	scope       any
	descendants *invalidation.DescendantLists
	siblings    *invalidation.Vector
	self        bool
}

func (c *collector) collect(m *depmap.Map) {
	for _, id := range c.changes.ids {
		c.scanAll(m.IDs(id))
	}
	for _, class := range c.changes.classes {
		c.scanAll(m.Classes(class))
	}
	for _, attr := range c.changes.attributes {
		c.scanAll(m.Attributes(attr))
	}
	if c.changes.state != 0 {
		c.scanAll(m.States(c.changes.state))
	}
}

func (c *collector) scanAll(deps []*invalidation.Dependency) {
	for _, dep := range deps {
		c.scan(dep)
	}
}

func (c *collector) scan(dep *invalidation.Dependency) {
	if !c.mayBeRelevant(dep) {
		return
	}
	if !c.p.dependencyChanged(dep, c.element) {
		return
	}
	c.note(dep)
}

// mayBeRelevant filters dependencies which cannot have any effect, given
// the shape of the tree around the element.
func (c *collector) mayBeRelevant(dep *invalidation.Dependency) bool {
	e := c.element
	switch dep.NormalKind() {
	case invalidation.KindDescendants:
		return len(e.Children()) > 0 || e.IsShadowHost() || len(e.PseudoElements()) > 0
	case invalidation.KindSiblings:
		return e.NextSiblingElement() != nil
	case invalidation.KindSlottedElements:
		return e.IsSlot()
	case invalidation.KindParts:
		return e.IsShadowHost()
	}
	return true
}

func (c *collector) note(dep *invalidation.Dependency) {
	tracer().Debugf("dependency %v changed at %v", dep, c.element)
	if dep.NormalKind() == invalidation.KindElement {
		switch {
		case dep.Next == nil:
			c.self = true
		case dep.Next.IsRelative():
			c.p.FoundRelativeSelectorInvalidation(c.element, dep.Next.RelativeKind(), dep.Next)
		default:
			c.scan(dep.Next) // inner selector changed, go outwards
		}
		return
	}
	if invalidation.Push(dep, c.scope, c.descendants, c.siblings) {
		c.self = true
	}
}
