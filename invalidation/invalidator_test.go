package invalidation

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	cases := []struct {
		sel    string
		offset int
		kind   NormalKind
	}{
		{".a .b", 0, KindElement},
		{".a .b", 2, KindDescendants},
		{".a > .b", 2, KindDescendants},
		{".a + .b", 2, KindSiblings},
		{".a ~ .b", 2, KindSiblings},
		{".a::before", 2, KindElementAndDescendants},
		{"slot::slotted(.b)", 2, KindSlottedElements},
		{"x-host::part(label)", 2, KindParts},
	}
	for _, c := range cases {
		d := dep(c.sel, c.offset, nil)
		if d.NormalKind() != c.kind {
			t.Errorf("expected %v to be of kind %s, is %s", d, c.kind, d.NormalKind())
		}
	}
	rel := NewRelativeDependency(selector.MustParse(".p:has(> .c)"), 0, nil, RelParent)
	assert.True(t, rel.IsRelative())
	assert.Equal(t, RelParent, rel.RelativeKind())
	assert.Panics(t, func() { rel.NormalKind() })
}

func TestInvalidationKindAndEffectiveness(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	cases := []struct {
		sel       string
		kind      Kind
		effective bool
	}{
		{".a .b", DescendantDOM, true},
		{".a > .b", DescendantDOM, false},
		{".a + .b", Sibling, false},
		{".a ~ .b", Sibling, true},
		{".a::before", DescendantDOM, true},
		{"slot::slotted(.b)", DescendantSlotted, false},
		{"x-host::part(label)", DescendantPart, false},
	}
	for _, c := range cases {
		inv := NewInvalidation(dep(c.sel, 2, nil), nil)
		if inv.Offset() != 2 {
			t.Errorf("expected invalidation for %q to start at offset 2, is %d", c.sel, inv.Offset())
		}
		if inv.Kind() != c.kind {
			t.Errorf("expected invalidation for %q to be of kind %s, is %s", c.sel, c.kind, inv.Kind())
		}
		if inv.EffectiveForNext() != c.effective {
			t.Errorf("expected effective-for-next of %q to be %v, isn't", c.sel, c.effective)
		}
	}
	assert.Panics(t, func() { NewInvalidation(dep(".a", 0, nil), nil) })
}

func TestPushSortsIntoLists(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	var desc DescendantLists
	sib := newVector()
	assert.True(t, Push(dep(".a", 0, nil), nil, &desc, &sib))
	assert.True(t, Push(dep(".a::after", 2, nil), nil, &desc, &sib))
	assert.False(t, Push(dep(".a .b", 2, nil), nil, &desc, &sib))
	assert.False(t, Push(dep(".a ~ .b", 2, nil), nil, &desc, &sib))
	assert.False(t, Push(dep("slot::slotted(.b)", 2, nil), nil, &desc, &sib))
	assert.False(t, Push(dep("x::part(p)", 2, nil), nil, &desc, &sib))
	assert.Len(t, desc.DOM, 2)
	assert.Len(t, desc.Slotted, 1)
	assert.Len(t, desc.Parts, 1)
	assert.Len(t, sib, 1)
}

func TestSiblingTraversalMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	a, b, c := el("a", "#a"), el("b", "#b"), el("c", "#c")
	el("div").add(a, c) // b has been removed from between a and c
	var live *SiblingTraversalMap
	assert.Nil(t, live.NextSiblingFor(b))
	assert.Equal(t, Element(c), live.NextSiblingFor(a))
	m := NewSiblingTraversalMap(b, a, c)
	assert.Equal(t, Element(c), m.NextSiblingFor(b))
	assert.Equal(t, Element(a), m.PrevSiblingFor(b))
	assert.Equal(t, Element(c), m.NextSiblingFor(a))
	assert.Nil(t, m.NextSiblingFor(c))
}

// Scenario: `.a + .b`, x has been removed from between w and y. Only the
// traversal map leads from the detached x to y.
func TestSiblingInvalidationFollowsTraversalMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	w, x, y := el("p", "#w"), el("p", "#x", ".a"), el("p", "#y", ".b")
	el("div").add(w, y, el("p", "#z", ".b"))
	r := newRecorder(pushAt("x", dep(".a + .b", 2, nil)))
	result := NewInvalidator(x, nil, r).Invalidate()
	assert.False(t, result.HasInvalidatedSiblings(), "detached element has no siblings")
	assert.Empty(t, r.siblings)
	//
	r = newRecorder(pushAt("x", dep(".a + .b", 2, nil)))
	r.Defaults.Traversal = NewSiblingTraversalMap(x, w, y)
	result = NewInvalidator(x, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedSiblings())
	assert.Equal(t, []string{"y<x"}, r.siblings)
}

// ---------------------------------------------------------------------------

// Scenario: `.a .b`, toggling .a on the parent invalidates the child.
func TestDescendantInvalidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	root := el("div", "#root", ".a").add(el("div", "#child", ".b"))
	r := newRecorder(pushAt("root", dep(".a .b", 2, nil)))
	result := NewInvalidator(root, nil, r).Invalidate()
	assert.False(t, result.HasInvalidatedSelf())
	assert.True(t, result.HasInvalidatedDescendants())
	assert.False(t, result.HasInvalidatedSiblings())
	assert.Equal(t, []string{"child"}, r.selfs)
	assert.Equal(t, []string{"root>child"}, r.descendants)
}

// Scenario: `.a + .b` is consumed by the next sibling only.
func TestNextSiblingInvalidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	x, y, z := el("p", "#x", ".a"), el("p", "#y", ".b"), el("p", "#z", ".b")
	el("div").add(x, y, z)
	r := newRecorder(pushAt("x", dep(".a + .b", 2, nil)))
	result := NewInvalidator(x, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedSiblings())
	assert.Equal(t, []string{"y<x"}, r.siblings)
	assert.Empty(t, r.selfs)
}

func TestLaterSiblingInvalidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	x, y, z := el("p", "#x", ".a"), el("p", "#y"), el("p", "#z", ".b")
	z.add(el("i", "#zi", ".c"))
	el("div").add(x, y, z)
	r := newRecorder(pushAt("x", dep(".a ~ .b", 2, nil), dep(".a ~ p > .c", 4, nil)))
	result := NewInvalidator(x, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedSiblings())
	assert.Equal(t, []string{"z<x"}, r.siblings)
	assert.Equal(t, []string{"zi"}, r.selfs)
}

func TestChildCombinatorDoesNotReachGrandchildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	root := el("div", "#root", ".a").add(
		el("div", "#mid").add(el("div", "#grand", ".b")),
	)
	r := newRecorder(pushAt("root", dep(".a > .b", 2, nil)))
	result := NewInvalidator(root, nil, r).Invalidate()
	assert.False(t, result.HasInvalidatedDescendants())
	assert.Empty(t, r.selfs)
}

// Scenario: ::part(foo) reaches exported parts of nested shadow trees, but
// never light DOM elements.
func TestPartInvalidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	inner := el("x-inner", "#inner", "[exportparts=foo]").attachShadow(
		el("b", "#nested", "[part=foo]"),
		el("b", "#hidden", "[part=bar]"),
	)
	host := el("x-host", "#host").attachShadow(
		el("span", "#direct", "[part=foo]"),
		el("div", "#wrap").add(inner),
		el("span", "#other", "[part=bar]"),
	)
	host.add(el("i", "#light", "[part=foo]"))
	el("body").add(host, el("p", "#sibling", "[part=foo]"))
	r := newRecorder(pushAt("host", dep("x-host::part(foo)", 2, nil)))
	result := NewInvalidator(host, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedDescendants())
	if diff := cmp.Diff([]string{"direct", "nested"}, r.selfs); diff != "" {
		t.Errorf("unexpected invalidated elements (-want +got):\n%s", diff)
	}
}

func TestSlottedInvalidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	s, u := el("span", "#s", ".s"), el("span", "#u")
	slot := el("slot", "#slot")
	host := el("x-host", "#host", ".a").add(s, u).attachShadow(slot)
	slot.assign(s, u)
	r := newRecorder(pushAt("host", dep(".a ::slotted(.s)", 4, nil)))
	result := NewInvalidator(host, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedDescendants())
	assert.Equal(t, []string{"s"}, r.selfs)
	assert.Contains(t, r.descendants, "slot>s")
}

func TestNestedSlotsAreFollowed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	s := el("span", "#s", ".s")
	outerSlot := el("slot", "#outer")
	innerSlot := el("slot", "#inner")
	innerSlot.assign(outerSlot)
	outerSlot.assign(s)
	r := newRecorder(func(*fake, *Vector, *DescendantLists, *Vector) bool { return false })
	inv := NewInvalidator(innerSlot, nil, r)
	invs := Vector{NewInvalidation(dep("slot::slotted(.s)", 2, nil), nil)}
	assert.True(t, inv.invalidateSlottedElements(invs))
	assert.Equal(t, []string{"s"}, r.selfs)
}

// Scenario: the recursion limit stops descent and reports conservatively.
func TestRecursionLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	root := el("div", "#d0", ".a")
	cur := root
	for i := 1; i < 10; i++ {
		ch := el("div", fmt.Sprintf("#d%d", i))
		cur.add(ch)
		cur = ch
	}
	r := newRecorder(pushAt("d0", dep(".a div", 2, nil)))
	result := NewInvalidator(root, DepthLimit(3), r).Invalidate()
	assert.True(t, result.HasInvalidatedDescendants())
	assert.Equal(t, []string{"d3"}, r.limits)
	assert.Equal(t, []string{"d1", "d2", "d3"}, r.selfs)
}

func TestPseudoElementSensitivity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	build := func() *fake {
		b := el("div", "#b", ".b")
		b.addPseudo("before")
		return el("div", "#root", ".a").add(b)
	}
	d := dep(".a .b::before", 4, nil)
	r := newRecorder(pushAt("root", d))
	NewInvalidator(build(), nil, r).Invalidate()
	assert.Equal(t, []string{"b::before"}, r.selfs)
	//
	r = newRecorder(pushAt("root", d))
	r.PseudoElements = true
	NewInvalidator(build(), nil, r).Invalidate()
	assert.Equal(t, []string{"b", "b::before"}, r.selfs)
}

func TestShadowRootChildrenAndLightTreeOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	host := el("x-host", "#host", ".a").
		add(el("p", "#light", ".b")).
		attachShadow(el("p", "#shadowed", ".b"))
	d := dep(".a .b", 2, nil)
	r := newRecorder(pushAt("host", d))
	NewInvalidator(host, nil, r).Invalidate()
	assert.Equal(t, []string{"shadowed", "light"}, r.selfs)
	//
	r = newRecorder(pushAt("host", d))
	r.LightTree = true
	NewInvalidator(host, nil, r).Invalidate()
	assert.Equal(t, []string{"light"}, r.selfs)
}

func TestOuterDependency(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	root := el("div", "#root", ".x").add(
		el("div", "#y", ".y").add(el("span", "#z", ".z"), el("span", "#w")),
	)
	outer := dep(":is(.x .y) > .z", 2, nil)
	inner := NewDependency(outer.Selector.At(0).List[0], 2, outer)
	r := newRecorder(pushAt("root", inner))
	result := NewInvalidator(root, nil, r).Invalidate()
	assert.True(t, result.HasInvalidatedDescendants())
	assert.Equal(t, []string{"z"}, r.selfs)
}

func TestRelativeHandOff(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	anchor := dep(".p:has(> .c .d)", 0, nil)
	relSel := anchor.Selector.At(1).List[0]
	rel := NewRelativeDependency(anchor.Selector, 0, nil, RelAncestors)
	inner := NewDependency(relSel, 2, rel)
	root := el("div", "#c", ".c").add(el("div", "#d", ".d"))
	r := newRecorder(pushAt("c", inner))
	result := NewInvalidator(root, nil, r).Invalidate()
	assert.Equal(t, []string{"d:ancestors"}, r.relatives)
	assert.Empty(t, r.selfs)
	assert.False(t, result.HasInvalidatedDescendants())
	//
	p := &defaultsOnly{recorder: newRecorder(pushAt("c", inner))}
	assert.Panics(t, func() { NewInvalidator(root, nil, p).Invalidate() })
}

// defaultsOnly does not handle relative invalidations.
type defaultsOnly struct {
	*recorder
}

func (d *defaultsOnly) FoundRelativeSelectorInvalidation(e Element, kind RelativeKind, dep *Dependency) {
	d.Defaults.FoundRelativeSelectorInvalidation(e, kind, dep)
}

// ---------------------------------------------------------------------------

// Without push elision, `div div div div` down a chain of divs would double
// the descendant list at every level.
func TestNoDuplicateExplosion(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	const n = 8
	sel := "div"
	for i := 1; i < n; i++ {
		sel += " div"
	}
	d := dep(sel, 2*(n-1), nil) // leftmost compound
	r := newRecorder(nil)
	invs := Vector{NewInvalidation(d, nil)}
	longest := 0
	for depth := 1; depth <= 3*n; depth++ {
		inv := &Invalidator{element: el("div"), depth: depth, proc: r}
		var next DescendantLists
		sib := newVector()
		inv.processDescendantInvalidations(invs, &next, &sib, DescendantDOM)
		invs = next.DOM
		if len(invs) > longest {
			longest = len(invs)
		}
	}
	if longest > n {
		t.Errorf("expected descendant list to stay below %d entries, grew to %d", n, longest)
	}
}

func TestProcessInvalidationIsIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	e := el("div", "#e", ".b")
	el("div", ".a").add(e)
	i := NewInvalidation(dep(".a .b > p", 4, nil), nil)
	r := newRecorder(nil)
	inv := NewInvalidator(e, nil, r)
	run := func() (singleResult, []string) {
		var desc DescendantLists
		sib := newVector()
		res := inv.processInvalidation(i, &desc, &sib, DescendantDOM)
		var pushed []string
		for _, x := range desc.DOM {
			pushed = append(pushed, fmt.Sprintf("%v@%d", x, x.Offset()))
		}
		return res, pushed
	}
	r1, p1 := run()
	r2, p2 := run()
	assert.Equal(t, r1, r2)
	require.Equal(t, []string{"Invalidation(p)@4"}, p1)
	if diff := cmp.Diff(p1, p2); diff != "" {
		t.Errorf("expected identical pushes (-first +second):\n%s", diff)
	}
}

func TestEmptySiblingListTerminates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	x := el("p", "#x")
	el("div").add(x, el("p", "#y"), el("p", "#z"))
	r := newRecorder(nil)
	empty := newVector()
	assert.False(t, NewInvalidator(x, nil, r).invalidateSiblings(&empty))
	assert.Zero(t, r.ctxCalls)
	assert.Empty(t, r.siblings)
}

func TestEmptyDescendantListsAreNotProcessed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.invalidation")
	defer teardown()
	//
	root := el("div", "#root").add(el("div"))
	r := newRecorder(pushAt("nobody"))
	result := NewInvalidator(root, DepthLimit(0), r).Invalidate()
	assert.Equal(t, EmptyResult(), result)
	assert.Empty(t, r.limits)
}
