package selector

import (
	"fmt"
	"strings"
)

// MatchKind is the outcome of matching a single compound selector.
type MatchKind uint8

// Outcomes of MatchCompoundFrom.
const (
	NotMatched   MatchKind = iota // the compound does not match
	Matched                       // the compound matches, more compounds follow
	FullyMatched                  // the compound matches and is the rightmost one
)

func (k MatchKind) String() string {
	switch k {
	case NotMatched:
		return "not-matched"
	case Matched:
		return "matched"
	}
	return "fully-matched"
}

// CompoundMatch is the result of MatchCompoundFrom. For Kind == Matched,
// NextCombinatorOffset is the parse order index of the combinator to the
// right of the matched compound.
type CompoundMatch struct {
	Kind                 MatchKind
	NextCombinatorOffset int
}

// MatchCompoundFrom matches the compound selector starting at parse order
// index from against e. If from is not 0, the component at from-1 must be a
// combinator.
func MatchCompoundFrom(sel *Selector, from int, ctx *MatchingContext, e Element) CompoundMatch {
	if from != 0 {
		sel.CombinatorAtParseOrder(from - 1) // asserts
	}
	end := from
	for end < len(sel.components) && sel.components[end].Kind != KindCombinator {
		end++
	}
	if end == from {
		panic(fmt.Sprintf("selector %q: empty compound at %d", sel.text, from))
	}
	if !matchCompound(sel, from, end, ctx, e) {
		return CompoundMatch{Kind: NotMatched}
	}
	if end == len(sel.components) {
		return CompoundMatch{Kind: FullyMatched}
	}
	return CompoundMatch{Kind: Matched, NextCombinatorOffset: end}
}

// Matches is true if sel matches e.
func Matches(sel *Selector, ctx *MatchingContext, e Element) bool {
	return MatchesFrom(sel, 0, ctx, e)
}

// MatchesFrom matches sel against e, starting at match order index offset.
// The compound containing offset is matched against e, then matching proceeds
// to the left in the usual way.
func MatchesFrom(sel *Selector, offset int, ctx *MatchingContext, e Element) bool {
	if ctx == nil {
		ctx = NewMatchingContext()
	}
	p := sel.ParseOrder(offset)
	if p < 0 || p >= len(sel.components) {
		panic(fmt.Sprintf("selector %q: match offset %d out of range", sel.text, offset))
	}
	if sel.components[p].Kind == KindCombinator {
		p--
	}
	return matchComplex(sel, p, ctx, e)
}

// MatchesCompoundAt matches only the compound containing match order index
// offset against e. Combinators and compounds to its left are ignored, which
// makes it usable for elements detached from the tree.
func MatchesCompoundAt(sel *Selector, offset int, ctx *MatchingContext, e Element) bool {
	if ctx == nil {
		ctx = NewMatchingContext()
	}
	p := sel.ParseOrder(offset)
	if p < 0 || p >= len(sel.components) {
		panic(fmt.Sprintf("selector %q: match offset %d out of range", sel.text, offset))
	}
	if sel.components[p].Kind == KindCombinator {
		p--
	}
	start := sel.compoundStart(p)
	end := start
	for end < len(sel.components) && sel.components[end].Kind != KindCombinator {
		end++
	}
	return matchCompound(sel, start, end, ctx, e)
}

// matchComplex matches the compound containing parse order index at, and
// everything to the left of it.
func matchComplex(sel *Selector, at int, ctx *MatchingContext, e Element) bool {
	start := sel.compoundStart(at)
	end := start
	for end < len(sel.components) && sel.components[end].Kind != KindCombinator {
		end++
	}
	if !matchCompound(sel, start, end, ctx, e) {
		return false
	}
	if start == 0 {
		return true
	}
	next := start - 2
	switch sel.components[start-1].Combinator {
	case Child:
		p := parentFor(sel, next, e)
		return p != nil && matchComplex(sel, next, ctx, p)
	case Descendant:
		for p := parentFor(sel, next, e); p != nil; p = parentFor(sel, next, p) {
			if matchComplex(sel, next, ctx, p) {
				return true
			}
		}
	case NextSibling:
		s := e.PrevSiblingElement()
		return s != nil && matchComplex(sel, next, ctx, s)
	case LaterSibling:
		for s := e.PrevSiblingElement(); s != nil; s = s.PrevSiblingElement() {
			if matchComplex(sel, next, ctx, s) {
				return true
			}
		}
	case PseudoElement:
		o := e.PseudoElementOriginator()
		return o != nil && matchComplex(sel, next, ctx, o)
	case SlotAssignment:
		for slot := e.AssignedSlot(); slot != nil; slot = slot.AssignedSlot() {
			if matchComplex(sel, next, ctx, slot) {
				return true
			}
		}
	case Part:
		h := partHost(e, ctx)
		return h != nil && matchComplex(sel, next, ctx, h)
	}
	return false
}

// parentFor steps to the parent of e. Shadow root children have no parent
// element, but a compound with :host may continue at the shadow host.
func parentFor(sel *Selector, at int, e Element) Element {
	if p := e.ParentElement(); p != nil {
		return p
	}
	if compoundHasHost(sel, at) {
		return e.ContainingShadowHost()
	}
	return nil
}

func compoundHasHost(sel *Selector, at int) bool {
	for i := sel.compoundStart(at); i < len(sel.components); i++ {
		switch sel.components[i].Kind {
		case KindCombinator:
			return false
		case KindHost:
			return true
		}
	}
	return false
}

func matchCompound(sel *Selector, start, end int, ctx *MatchingContext, e Element) bool {
	if e.PseudoElementName() != "" {
		hasPseudo := false
		for i := start; i < end; i++ {
			if sel.components[i].Kind == KindPseudoElement {
				hasPseudo = true
			}
		}
		if !hasPseudo {
			return false
		}
	}
	for i := start; i < end; i++ {
		if !matchesSimple(&sel.components[i], ctx, e) {
			return false
		}
	}
	return true
}

func matchesSimple(c *Component, ctx *MatchingContext, e Element) bool {
	switch c.Kind {
	case KindUniversal:
		return true
	case KindType:
		return e.LocalName() == c.Name
	case KindID:
		return c.Name != "" && e.ID() == c.Name
	case KindClass:
		return e.HasClass(c.Name)
	case KindAttribute:
		v, ok := e.Attr(c.Name)
		return ok && matchAttrValue(c, v)
	case KindState:
		return e.State().Intersects(c.State)
	case KindStructural:
		n := e.HTMLNode()
		return n != nil && c.structural.Match(n)
	case KindHost:
		if ctx.CurrentHost == nil || !e.IsShadowHost() || ctx.CurrentHost != e.Opaque() {
			return false
		}
		return c.Inner == nil || matchAll(c.Inner, ctx, e)
	case KindIs:
		for _, s := range c.List {
			if matchComplex(s, s.Len()-1, ctx, e) {
				return true
			}
		}
		return false
	case KindNegation:
		for _, s := range c.List {
			if matchComplex(s, s.Len()-1, ctx, e) {
				return false
			}
		}
		return true
	case KindHas:
		return matchHas(c, ctx, e)
	case KindRelativeAnchor:
		return ctx.RelativeAnchor == nil || ctx.RelativeAnchor == e.Opaque()
	case KindPseudoElement:
		return e.PseudoElementName() == c.Name
	case KindPart:
		exposed := exposedPartNames(e, ctx)
		for _, name := range c.Names {
			if !contains(exposed, name) {
				return false
			}
		}
		return true
	case KindSlotted:
		return e.AssignedSlot() != nil && matchAll(c.Inner, ctx, e)
	}
	panic(fmt.Sprintf("cannot match component of kind %d", c.Kind))
}

// matchAll matches every simple selector of a compound-only selector.
func matchAll(sel *Selector, ctx *MatchingContext, e Element) bool {
	for i := range sel.components {
		if !matchesSimple(&sel.components[i], ctx, e) {
			return false
		}
	}
	return true
}

func matchAttrValue(c *Component, v string) bool {
	want := c.Value
	if c.IgnoreCase {
		v, want = strings.ToLower(v), strings.ToLower(want)
	}
	switch c.Op {
	case AttrExists:
		return true
	case AttrEquals:
		return v == want
	case AttrIncludes:
		for _, f := range strings.Fields(v) {
			if f == want {
				return true
			}
		}
		return false
	case AttrDashMatch:
		return v == want || strings.HasPrefix(v, want+"-")
	case AttrPrefix:
		return want != "" && strings.HasPrefix(v, want)
	case AttrSuffix:
		return want != "" && strings.HasSuffix(v, want)
	case AttrSubstring:
		return want != "" && strings.Contains(v, want)
	}
	return false
}

// matchHas checks the relative selectors of :has() with e as the anchor.
// Candidates are all descendants of e and, for sibling relations, all later
// siblings of e together with their descendants.
func matchHas(c *Component, ctx *MatchingContext, e Element) bool {
	saved := ctx.RelativeAnchor
	ctx.RelativeAnchor = e.Opaque()
	defer func() { ctx.RelativeAnchor = saved }()
	for _, rel := range c.List {
		last := rel.Len() - 1
		match := func(cand Element) bool {
			return matchComplex(rel, last, ctx, cand)
		}
		if rel.CombinatorAtParseOrder(1).IsSibling() {
			for s := e.NextSiblingElement(); s != nil; s = s.NextSiblingElement() {
				if match(s) || anyDescendant(s, match) {
					return true
				}
			}
		} else if anyDescendant(e, match) {
			return true
		}
	}
	return false
}

func anyDescendant(e Element, f func(Element) bool) bool {
	for ch := e.FirstChildElement(); ch != nil; ch = ch.NextSiblingElement() {
		if f(ch) || anyDescendant(ch, f) {
			return true
		}
	}
	return false
}

// partHost returns the shadow host at which the parts of e are matched:
// the outermost host in the chain which lives in the tree of
// ctx.CurrentHost (the document, if CurrentHost is nil).
func partHost(e Element, ctx *MatchingContext) Element {
	for h := e.ContainingShadowHost(); h != nil; h = h.ContainingShadowHost() {
		outer := h.ContainingShadowHost()
		if outer == nil && ctx.CurrentHost == nil || outer != nil && outer.Opaque() == ctx.CurrentHost {
			return h
		}
	}
	return nil
}

// exposedPartNames returns the names the parts of e are known by at the
// host returned by partHost, following exportparts mappings outwards.
func exposedPartNames(e Element, ctx *MatchingContext) []string {
	names := e.PartNames()
	for h := e.ContainingShadowHost(); h != nil && len(names) > 0; h = h.ContainingShadowHost() {
		outer := h.ContainingShadowHost()
		if outer == nil && ctx.CurrentHost == nil || outer != nil && outer.Opaque() == ctx.CurrentHost {
			return names
		}
		var mapped []string
		for _, n := range names {
			mapped = append(mapped, h.ExportedPartNames(n)...)
		}
		names = mapped
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
