package depmap

import (
	"fmt"

	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/selector"
)

// Map holds the dependencies of a set of selectors, filed under the keys
// which may trigger them.
type Map struct {
	classes    map[string][]*invalidation.Dependency
	ids        map[string][]*invalidation.Dependency
	attributes map[string][]*invalidation.Dependency
	states     []StateDependency
	selectors  []*selector.Selector
	count      int
}

// StateDependency is a dependency on a set of element states.
type StateDependency struct {
	State      selector.ElementState
	Dependency *invalidation.Dependency
}

// New creates an empty dependency map.
func New() *Map {
	return &Map{
		classes:    make(map[string][]*invalidation.Dependency),
		ids:        make(map[string][]*invalidation.Dependency),
		attributes: make(map[string][]*invalidation.Dependency),
	}
}

// Classes returns the dependencies on class name.
func (m *Map) Classes(name string) []*invalidation.Dependency {
	return m.classes[name]
}

// IDs returns the dependencies on id.
func (m *Map) IDs(id string) []*invalidation.Dependency {
	return m.ids[id]
}

// Attributes returns the dependencies on an attribute (by local name).
func (m *Map) Attributes(name string) []*invalidation.Dependency {
	return m.attributes[name]
}

// States returns the dependencies on any of the states in changed.
func (m *Map) States(changed selector.ElementState) []*invalidation.Dependency {
	var deps []*invalidation.Dependency
	for _, sd := range m.states {
		if sd.State.Intersects(changed) {
			deps = append(deps, sd.Dependency)
		}
	}
	return deps
}

// Selectors returns the top level selectors which have been added.
func (m *Map) Selectors() []*selector.Selector {
	return m.selectors
}

// Len returns the number of dependencies in m.
func (m *Map) Len() int {
	return m.count
}

func (m *Map) String() string {
	return fmt.Sprintf("depmap{%d selectors, %d dependencies, %d classes, %d ids, %d attributes, %d states}",
		len(m.selectors), m.count, len(m.classes), len(m.ids), len(m.attributes), len(m.states))
}

// AddSelector collects the dependencies of a top level selector.
func (m *Map) AddSelector(sel *selector.Selector) {
	m.selectors = append(m.selectors, sel)
	m.collect(sel, nil)
}

// collect walks the compounds of sel in match order and files a dependency
// for every compound. next is the dependency of the enclosing compound, if
// sel is nested.
func (m *Map) collect(sel *selector.Selector, next *invalidation.Dependency) {
	n := sel.Len()
	offset := 0 // match order offset of the current compound
	for offset < n {
		start := sel.ParseOrder(offset)
		end := start // parse order: first component of the compound
		for end > 0 && !sel.At(end-1).IsCombinator() {
			end--
		}
		c := &compound{m: m, sel: sel, offset: offset, next: next}
		for i := end; i <= start; i++ {
			comp := sel.At(i)
			c.visit(&comp)
		}
		offset += start - end + 2 // skip compound and combinator
	}
}

// compound collects the keys of one compound selector. The dependency is
// created lazily, as many compounds (e.g. type selectors) never change.
type compound struct {
	m      *Map
	sel    *selector.Selector
	offset int
	next   *invalidation.Dependency
	dep    *invalidation.Dependency
}

func (c *compound) dependency() *invalidation.Dependency {
	if c.dep == nil {
		c.dep = invalidation.NewDependency(c.sel, c.offset, c.next)
		c.m.count++
	}
	return c.dep
}

func (c *compound) visit(comp *selector.Component) {
	switch comp.Kind {
	case selector.KindClass:
		c.m.classes[comp.Name] = appendOnce(c.m.classes[comp.Name], c.dependency())
	case selector.KindID:
		c.m.ids[comp.Name] = appendOnce(c.m.ids[comp.Name], c.dependency())
	case selector.KindAttribute:
		c.m.attributes[comp.Name] = appendOnce(c.m.attributes[comp.Name], c.dependency())
	case selector.KindState:
		c.addState(comp.State)
	case selector.KindPart:
		c.m.attributes["part"] = appendOnce(c.m.attributes["part"], c.dependency())
		c.m.attributes["exportparts"] = appendOnce(c.m.attributes["exportparts"], c.dependency())
	case selector.KindHost, selector.KindSlotted:
		if comp.Inner != nil {
			comp.Inner.Components(0, func(_ int, inner selector.Component) bool {
				c.visit(&inner)
				return true
			})
		}
	case selector.KindIs, selector.KindNegation:
		for _, nested := range comp.List {
			c.m.collect(nested, c.dependency())
		}
	case selector.KindHas:
		for _, rel := range comp.List {
			anchor := invalidation.NewRelativeDependency(c.sel, c.offset, c.dependency(), relativeKind(rel))
			c.m.collectRelative(rel, anchor)
		}
	}
}

func (c *compound) addState(st selector.ElementState) {
	dep := c.dependency()
	for i := range c.m.states {
		if c.m.states[i].Dependency == dep {
			c.m.states[i].State |= st
			return
		}
	}
	c.m.states = append(c.m.states, StateDependency{State: st, Dependency: dep})
}

// collectRelative collects the compounds of a relative selector, except the
// anchor compound, which is matched by the enclosing compound.
func (m *Map) collectRelative(rel *selector.Selector, anchor *invalidation.Dependency) {
	n := rel.Len()
	offset := 0
	for offset < n-1 {
		start := rel.ParseOrder(offset)
		end := start
		for end > 0 && !rel.At(end-1).IsCombinator() {
			end--
		}
		if end == 0 {
			break // anchor compound
		}
		c := &compound{m: m, sel: rel, offset: offset, next: anchor}
		for i := end; i <= start; i++ {
			comp := rel.At(i)
			c.visit(&comp)
		}
		offset += start - end + 2
	}
}

// relativeKind tells where anchors are found for a relative selector
// [anchor, combinator, …].
func relativeKind(rel *selector.Selector) invalidation.RelativeKind {
	lead := rel.CombinatorAtParseOrder(1)
	descends := false
	siblings := false
	rel.Components(2, func(_ int, c selector.Component) bool {
		if c.IsCombinator() {
			if c.Combinator.IsSibling() {
				siblings = true
			} else {
				descends = true
			}
		}
		return true
	})
	switch lead {
	case selector.Child:
		if descends || siblings {
			return invalidation.RelAncestors
		}
		return invalidation.RelParent
	case selector.NextSibling:
		if descends {
			return invalidation.RelAncestorPrevSibling
		}
		if siblings {
			return invalidation.RelEarlierSibling
		}
		return invalidation.RelPrevSibling
	case selector.LaterSibling:
		if descends {
			return invalidation.RelAncestorEarlierSibling
		}
		return invalidation.RelEarlierSibling
	}
	return invalidation.RelAncestors
}

func appendOnce(deps []*invalidation.Dependency, dep *invalidation.Dependency) []*invalidation.Dependency {
	if len(deps) > 0 && deps[len(deps)-1] == dep {
		return deps
	}
	return append(deps, dep)
}
