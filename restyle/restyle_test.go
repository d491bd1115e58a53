package restyle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><style>
.on .item { color: red }
.on > .direct { color: blue }
#a + .next { color: green }
[data-x="1"] ~ li { color: gray }
.card:has(> .img) .title { font-weight: bold }
p:hover { color: orange }
</style></head>
<body>
<div id="box"><span class="item" id="i1"></span><span class="direct" id="d1"><em class="item" id="i2"></em></span></div>
<ul><li id="a"></li><li class="next" id="n"></li><li id="l3"></li></ul>
<div class="card" id="card"><p class="title" id="t">T</p><div id="slot"></div></div>
<p id="hov">x</p>
<x-panel id="panel">
  <template shadowrootmode="open">
    <style>
      :host(.dark) .label { color: white }
      ::slotted(.hl) { color: yellow }
    </style>
    <span class="label" id="lbl">L</span>
    <slot></slot>
  </template>
  <b id="light">B</b>
</x-panel>
</body></html>`

type fixture struct {
	doc *dom.Document
	r   *Restyler
}

func setup(t *testing.T, opts Options) fixture {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	stylist, err := StylistForDocument(doc)
	require.NoError(t, err)
	return fixture{doc: doc, r: NewRestyler(stylist, opts)}
}

func (f fixture) el(t *testing.T, id string) *dom.Element {
	e, err := f.doc.ElementByID(id)
	if err == nil {
		return e
	}
	for _, sr := range f.doc.ShadowRoots() {
		if found, _ := sr.QueryAll("#" + id); len(found) > 0 {
			return found[0]
		}
	}
	t.Fatalf("no element with id %q", id)
	return nil
}

func (f fixture) restyled() []string {
	var ids []string
	for _, e := range f.r.Tracker().Restyled(f.doc) {
		ids = append(ids, e.ID())
	}
	return ids
}

func checkRestyled(t *testing.T, f fixture, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, f.restyled()); diff != "" {
		t.Errorf("restyled elements mismatch (-want +got):\n%s", diff)
	}
}

func TestClassChangeInvalidatesDescendants(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle", "restyle.invalidation")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	box := f.el(t, "box")
	result := f.r.Apply(box, func(e *dom.Element) { e.AddClass("on") })
	assert.False(t, result.HasInvalidatedSelf())
	assert.True(t, result.HasInvalidatedDescendants())
	checkRestyled(t, f, "i1", "d1", "i2")
	assert.Equal(t, DirtyDescendants, f.r.Tracker().Hint(box))
	assert.Equal(t, 0, f.r.Snapshots().Len())
}

func TestUnrelatedChangeInvalidatesNothing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	result := f.r.Apply(f.el(t, "box"), func(e *dom.Element) { e.AddClass("nothing-selects-me") })
	assert.Equal(t, invalidation.EmptyResult(), result)
	assert.Equal(t, 0, f.r.Tracker().Len())
}

func TestIDChangeInvalidatesNextSibling(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	result := f.r.Apply(f.el(t, "a"), func(e *dom.Element) { e.SetAttribute("id", "z") })
	assert.True(t, result.HasInvalidatedSiblings())
	checkRestyled(t, f, "n")
}

func TestAttributeChangeInvalidatesLaterSiblings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	f.r.Apply(f.el(t, "a"), func(e *dom.Element) { e.SetAttribute("data-x", "1") })
	checkRestyled(t, f, "n", "l3")
}

func TestStateAndStyleAttribute(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	result := f.r.Apply(f.el(t, "hov"), func(e *dom.Element) { e.SetState(selector.StateHover) })
	assert.True(t, result.HasInvalidatedSelf())
	f.r.Apply(f.el(t, "box"), func(e *dom.Element) { e.SetAttribute("style", "color: red") })
	checkRestyled(t, f, "box", "hov")
}

func TestHasHandOff(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle", "restyle.invalidation")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	slot := f.el(t, "slot")
	snap := TakeSnapshot(slot)
	slot.AddClass("img")
	_, relative := f.r.ElementChanged(slot, snap)
	require.Len(t, relative, 1)
	assert.Same(t, slot, relative[0].Element)
	assert.Equal(t, invalidation.RelParent, relative[0].Kind)
	assert.Empty(t, f.restyled(), "relative changes are not resolved by the traversal")
	//
	assert.True(t, f.r.InvalidateRelative(relative[0]))
	checkRestyled(t, f, "t")
}

func TestShadowHostRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle", "restyle.invalidation")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	panel := f.el(t, "panel")
	require.NotNil(t, f.r.stylist.ShadowMap(panel))
	f.r.Apply(panel, func(e *dom.Element) { e.AddClass("dark") })
	checkRestyled(t, f, "lbl")
	//
	f.r.Tracker().Clear()
	f.r.Apply(f.el(t, "light"), func(e *dom.Element) { e.AddClass("hl") })
	checkRestyled(t, f, "light")
}

func TestLightTreeOnlySkipsShadowTrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	opts := DefaultOptions()
	opts.LightTreeOnly = true
	f := setup(t, opts)
	f.r.Apply(f.el(t, "panel"), func(e *dom.Element) { e.AddClass("dark") })
	assert.Empty(t, f.restyled())
}

func TestRecursionLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, Options{MaxDepth: 1})
	f.r.Apply(f.el(t, "box"), func(e *dom.Element) { e.AddClass("on") })
	checkRestyled(t, f, "i1", "d1")
	assert.Equal(t, RestyleSelf|RestyleDescendants, f.r.Tracker().Hint(f.el(t, "d1")))
	assert.Equal(t, Hint(0), f.r.Tracker().Hint(f.el(t, "i2")))
}

func TestFlushProcessesAllSnapshots(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	f := setup(t, DefaultOptions())
	box, hov := f.el(t, "box"), f.el(t, "hov")
	f.r.Snapshots().Take(box)
	box.AddClass("on")
	f.r.Snapshots().Take(hov)
	hov.SetState(selector.StateHover)
	f.r.Snapshots().Take(box) // keeps the first snapshot
	box.SetAttribute("title", "x")
	assert.Equal(t, 2, f.r.Snapshots().Len())
	assert.Equal(t, 7, f.r.Flush(), "html, body, box, i1, d1, i2, hov")
	checkRestyled(t, f, "i1", "d1", "i2", "hov")
	assert.Equal(t, 0, f.r.Snapshots().Len())
}

func TestSnapshotChanges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	doc, err := dom.ParseString(`<div id="x" class="a b" title="t"></div>`)
	require.NoError(t, err)
	e, _ := doc.ElementByID("x")
	snap := TakeSnapshot(e)
	e.RemoveClass("a")
	e.AddClass("c")
	e.SetAttribute("id", "y")
	e.RemoveAttribute("title")
	e.SetState(selector.StateFocus)
	ch := snap.changesOf(e)
	assert.Equal(t, []string{"x", "y"}, ch.ids)
	assert.ElementsMatch(t, []string{"a", "c"}, ch.classes)
	assert.Equal(t, []string{"class", "id", "title"}, ch.attributes)
	assert.Equal(t, selector.StateFocus, ch.state)
	assert.False(t, ch.style)
	//
	w := wrapElement(e, &SnapshotMap{snapshots: map[*dom.Element]*Snapshot{e: snap}})
	assert.Equal(t, "x", w.ID())
	assert.True(t, w.HasClass("a"))
	assert.False(t, w.HasClass("c"))
	assert.Equal(t, e.Opaque(), w.Opaque())
}

func TestOptionsFromConfiguration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	conf := testconfig.Conf{
		KeyPseudoElements: true,
		KeyMaxDepth:       16,
	}
	opts := OptionsFrom(conf)
	assert.True(t, opts.PseudoElements)
	assert.False(t, opts.LightTreeOnly)
	assert.Equal(t, 16, opts.MaxDepth)
	assert.Equal(t, DefaultOptions(), OptionsFrom(testconfig.Conf{}))
}

func TestHintString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "restyle.restyle")
	defer teardown()
	//
	assert.Equal(t, "self|dirty", (RestyleSelf | DirtyDescendants).String())
	assert.Equal(t, "∅", Hint(0).String())
}
