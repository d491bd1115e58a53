package invalidation

import (
	"strings"

	"github.com/npillmayer/restyle/selector"
	"golang.org/x/net/html"
)

// fake is a minimal flattened-tree element for testing the invalidator.
type fake struct {
	name       string
	id         string
	classes    []string
	attrs      map[string]string
	parent     *fake
	children   []*fake
	shadow     *fakeShadow
	inShadow   *fakeShadow // shadow tree the element lives in
	slot       *fake
	slotted    []*fake
	parts      []string
	exports    map[string][]string
	pseudo     string
	originator *fake
	nac        []*fake
}

type fakeShadow struct {
	host     *fake
	children []*fake
}

// el creates an element from a tag name and selectors like "#id", ".class",
// "[part=foo]".
func el(name string, specs ...string) *fake {
	f := &fake{name: name, attrs: make(map[string]string)}
	for _, s := range specs {
		switch s[0] {
		case '#':
			f.id = s[1:]
		case '.':
			f.classes = append(f.classes, s[1:])
		case '[':
			kv := strings.SplitN(strings.Trim(s, "[]"), "=", 2)
			f.attrs[kv[0]] = kv[1]
			if kv[0] == "part" {
				f.parts = strings.Fields(kv[1])
			}
			if kv[0] == "exportparts" {
				f.exports = make(map[string][]string)
				for _, p := range strings.Split(kv[1], ",") {
					p = strings.TrimSpace(p)
					inner, outer := p, p
					if i := strings.IndexByte(p, ':'); i >= 0 {
						inner, outer = p[:i], p[i+1:]
					}
					f.exports[inner] = append(f.exports[inner], outer)
				}
			}
		}
	}
	return f
}

func (f *fake) add(children ...*fake) *fake {
	for _, ch := range children {
		ch.parent = f
		f.children = append(f.children, ch)
	}
	return f
}

func (f *fake) attachShadow(children ...*fake) *fake {
	f.shadow = &fakeShadow{host: f, children: children}
	var mark func(*fake)
	mark = func(e *fake) {
		e.inShadow = f.shadow
		for _, ch := range e.children {
			mark(ch)
		}
	}
	for _, ch := range children {
		mark(ch)
	}
	return f
}

func (f *fake) assign(elems ...*fake) *fake {
	for _, e := range elems {
		e.slot = f
		f.slotted = append(f.slotted, e)
	}
	return f
}

func (f *fake) addPseudo(name string) *fake {
	p := &fake{pseudo: name, originator: f, attrs: make(map[string]string), inShadow: f.inShadow}
	f.nac = append(f.nac, p)
	return p
}

func (f *fake) siblings() []*fake {
	if f.parent != nil {
		return f.parent.children
	}
	if f.inShadow != nil {
		return f.inShadow.children
	}
	return nil
}

func wrapSel(f *fake) selector.Element {
	if f == nil {
		return nil
	}
	return f
}

func wrapList(list []*fake) []Element {
	elems := make([]Element, len(list))
	for i, f := range list {
		elems[i] = f
	}
	return elems
}

func (f *fake) LocalName() string { return f.name }
func (f *fake) ID() string        { return f.id }

func (f *fake) HasClass(name string) bool {
	for _, c := range f.classes {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fake) Attr(name string) (string, bool) {
	v, ok := f.attrs[name]
	return v, ok
}

func (f *fake) State() selector.ElementState { return 0 }
func (f *fake) HTMLNode() *html.Node         { return nil }

func (f *fake) ParentElement() selector.Element {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

func (f *fake) PrevSiblingElement() selector.Element {
	sibs := f.siblings()
	for i, s := range sibs {
		if s == f && i > 0 {
			return sibs[i-1]
		}
	}
	return nil
}

func (f *fake) NextSiblingElement() selector.Element {
	sibs := f.siblings()
	for i, s := range sibs {
		if s == f && i+1 < len(sibs) {
			return sibs[i+1]
		}
	}
	return nil
}

func (f *fake) FirstChildElement() selector.Element {
	if len(f.children) == 0 {
		return nil
	}
	return f.children[0]
}

func (f *fake) ContainingShadowHost() selector.Element {
	if f.inShadow == nil {
		return nil
	}
	return f.inShadow.host
}

func (f *fake) IsShadowHost() bool                  { return f.shadow != nil }
func (f *fake) AssignedSlot() selector.Element      { return wrapSel(f.slot) }
func (f *fake) PartNames() []string                 { return f.parts }
func (f *fake) ExportedPartNames(n string) []string { return f.exports[n] }
func (f *fake) PseudoElementName() string           { return f.pseudo }
func (f *fake) PseudoElementOriginator() selector.Element {
	return wrapSel(f.originator)
}
func (f *fake) Opaque() any { return f }

func (f *fake) DOMChildren() []Element { return wrapList(f.children) }

func (f *fake) ShadowRoot() ShadowRoot {
	if f.shadow == nil {
		return nil
	}
	return f.shadow
}

func (f *fake) IsSlot() bool                { return f.name == "slot" }
func (f *fake) SlottedNodes() []Element     { return wrapList(f.slotted) }
func (f *fake) AnonymousContent() []Element { return wrapList(f.nac) }
func (f *fake) HasPartAttr() bool           { return len(f.parts) > 0 }
func (f *fake) ExportsAnyPart() bool        { return len(f.exports) > 0 }

func (s *fakeShadow) Host() Element       { return s.host }
func (s *fakeShadow) Children() []Element { return wrapList(s.children) }

func (s *fakeShadow) Descendants() []Element {
	var all []Element
	var walk func(*fake)
	walk = func(e *fake) {
		all = append(all, e)
		for _, ch := range e.children {
			walk(ch)
		}
	}
	for _, ch := range s.children {
		walk(ch)
	}
	return all
}

// ---------------------------------------------------------------------------

// recorder is a Processor which seeds invalidations for a single element and
// records all callbacks by element label.
type recorder struct {
	Defaults
	ctx         *selector.MatchingContext
	seed        func(e *fake, self *Vector, desc *DescendantLists, sib *Vector) bool
	selfs       []string
	siblings    []string
	descendants []string
	limits      []string
	relatives   []string
	ctxCalls    int
}

func newRecorder(seed func(e *fake, self *Vector, desc *DescendantLists, sib *Vector) bool) *recorder {
	return &recorder{ctx: selector.NewMatchingContext(), seed: seed}
}

func label(e Element) string {
	f := e.(*fake)
	if f.pseudo != "" {
		return label(f.originator) + "::" + f.pseudo
	}
	if f.id != "" {
		return f.id
	}
	return f.name
}

func (r *recorder) CheckOuterDependency(dep *Dependency, e Element) bool {
	return selector.MatchesFrom(dep.Selector, dep.Offset, r.ctx, e)
}

func (r *recorder) MatchingContext() *selector.MatchingContext {
	r.ctxCalls++
	return r.ctx
}

func (r *recorder) CollectInvalidations(e Element, self *Vector, desc *DescendantLists, sib *Vector) bool {
	return r.seed(e.(*fake), self, desc, sib)
}

func (r *recorder) ShouldProcessDescendants(e Element) bool { return true }
func (r *recorder) RecursionLimitExceeded(e Element)        { r.limits = append(r.limits, label(e)) }
func (r *recorder) InvalidatedSelf(e Element)               { r.selfs = append(r.selfs, label(e)) }

func (r *recorder) InvalidatedSibling(sibling, of Element) {
	r.siblings = append(r.siblings, label(sibling)+"<"+label(of))
}

func (r *recorder) InvalidatedDescendants(e, child Element) {
	r.descendants = append(r.descendants, label(e)+">"+label(child))
}

func (r *recorder) FoundRelativeSelectorInvalidation(e Element, kind RelativeKind, dep *Dependency) {
	r.relatives = append(r.relatives, label(e)+":"+kind.String())
}

// dep creates a dependency for sel at match order offset.
func dep(sel string, offset int, next *Dependency) *Dependency {
	return NewDependency(selector.MustParse(sel), offset, next)
}

// pushAt seeds a dependency at the element with the given label.
func pushAt(target string, deps ...*Dependency) func(*fake, *Vector, *DescendantLists, *Vector) bool {
	return func(e *fake, self *Vector, desc *DescendantLists, sib *Vector) bool {
		if label(e) != target {
			return false
		}
		invalidated := false
		for _, d := range deps {
			if Push(d, nil, desc, sib) {
				invalidated = true
			}
		}
		return invalidated
	}
}
