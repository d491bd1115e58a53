package restyle

import (
	"sort"
	"strings"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/selector"
	"golang.org/x/net/html"
)

// Snapshot records what an element looked like before a change.
type Snapshot struct {
	attrs map[string]string
	state selector.ElementState
}

// TakeSnapshot records the attributes and the state of e.
func TakeSnapshot(e *dom.Element) *Snapshot {
	snap := &Snapshot{
		attrs: make(map[string]string),
		state: e.State(),
	}
	if h := e.HTMLNode(); h != nil {
		for _, a := range h.Attr {
			if a.Namespace == "" {
				snap.attrs[a.Key] = a.Val
			}
		}
	}
	return snap
}

// ID returns the id an element had.
func (snap *Snapshot) ID() string {
	return snap.attrs["id"]
}

// Classes returns the class list an element had.
func (snap *Snapshot) Classes() []string {
	return strings.Fields(snap.attrs["class"])
}

// Attr returns the value an attribute had.
func (snap *Snapshot) Attr(name string) (string, bool) {
	v, ok := snap.attrs[name]
	return v, ok
}

// State returns the state an element had.
func (snap *Snapshot) State() selector.ElementState {
	return snap.state
}

// changes lists what differs between a snapshot and the current state of
// an element.
type changes struct {
	ids        []string
	classes    []string
	attributes []string
	state      selector.ElementState
	style      bool // the style attribute changed
}

func (ch changes) empty() bool {
	return len(ch.ids) == 0 && len(ch.classes) == 0 && len(ch.attributes) == 0 && ch.state == 0
}

func (snap *Snapshot) changesOf(e *dom.Element) changes {
	var ch changes
	ch.state = snap.state ^ e.State()
	if old, now := snap.ID(), e.ID(); old != now {
		for _, id := range []string{old, now} {
			if id != "" {
				ch.ids = append(ch.ids, id)
			}
		}
	}
	ch.classes = symmetricDifference(snap.Classes(), e.Classes())
	now := make(map[string]string)
	if h := e.HTMLNode(); h != nil {
		for _, a := range h.Attr {
			if a.Namespace == "" {
				now[a.Key] = a.Val
			}
		}
	}
	for k, v := range now {
		if old, ok := snap.attrs[k]; !ok || old != v {
			ch.attributes = append(ch.attributes, k)
		}
	}
	for k := range snap.attrs {
		if _, ok := now[k]; !ok {
			ch.attributes = append(ch.attributes, k)
		}
	}
	sort.Strings(ch.attributes)
	for _, a := range ch.attributes {
		if a == "style" {
			ch.style = true
		}
	}
	return ch
}

func symmetricDifference(a, b []string) []string {
	in := func(list []string, s string) bool {
		for _, x := range list {
			if x == s {
				return true
			}
		}
		return false
	}
	var diff []string
	for _, s := range a {
		if !in(b, s) && !in(diff, s) {
			diff = append(diff, s)
		}
	}
	for _, s := range b {
		if !in(a, s) && !in(diff, s) {
			diff = append(diff, s)
		}
	}
	return diff
}

// --- Snapshot map ----------------------------------------------------------

// SnapshotMap holds the snapshots of all elements changed since the last
// restyle.
type SnapshotMap struct {
	snapshots map[*dom.Element]*Snapshot
	order     []*dom.Element
}

// NewSnapshotMap creates an empty snapshot map.
func NewSnapshotMap() *SnapshotMap {
	return &SnapshotMap{snapshots: make(map[*dom.Element]*Snapshot)}
}

// Take snapshots e, unless there already is a snapshot for e. The first
// snapshot wins, as it reflects the state at the last restyle.
func (sm *SnapshotMap) Take(e *dom.Element) *Snapshot {
	if snap, ok := sm.snapshots[e]; ok {
		return snap
	}
	snap := TakeSnapshot(e)
	sm.Put(e, snap)
	return snap
}

// Put sets the snapshot for e.
func (sm *SnapshotMap) Put(e *dom.Element, snap *Snapshot) {
	if _, ok := sm.snapshots[e]; !ok {
		sm.order = append(sm.order, e)
	}
	sm.snapshots[e] = snap
}

// Get returns the snapshot for e, or nil.
func (sm *SnapshotMap) Get(e *dom.Element) *Snapshot {
	if sm == nil {
		return nil
	}
	return sm.snapshots[e]
}

// Remove drops the snapshot for e.
func (sm *SnapshotMap) Remove(e *dom.Element) {
	if _, ok := sm.snapshots[e]; !ok {
		return
	}
	delete(sm.snapshots, e)
	for i, x := range sm.order {
		if x == e {
			sm.order = append(sm.order[:i], sm.order[i+1:]...)
			break
		}
	}
}

// Elements returns the elements with snapshots, in the order they were
// taken.
func (sm *SnapshotMap) Elements() []*dom.Element {
	elems := make([]*dom.Element, len(sm.order))
	copy(elems, sm.order)
	return elems
}

// Len returns the number of snapshots.
func (sm *SnapshotMap) Len() int {
	return len(sm.order)
}

// Clear drops all snapshots.
func (sm *SnapshotMap) Clear() {
	sm.snapshots = make(map[*dom.Element]*Snapshot)
	sm.order = nil
}

// --- Element wrapper -------------------------------------------------------

// elementWrapper presents an element as it was before the changes recorded
// in a snapshot map. Navigation returns wrapped elements, so that matching a
// complex selector sees the old state of every element with a snapshot.
type elementWrapper struct {
	e         *dom.Element
	snap      *Snapshot // may be nil
	snapshots *SnapshotMap
}

func wrapElement(e *dom.Element, snapshots *SnapshotMap) selector.Element {
	if e == nil {
		return nil
	}
	return elementWrapper{e: e, snap: snapshots.Get(e), snapshots: snapshots}
}

func (w elementWrapper) wrap(other selector.Element) selector.Element {
	if other == nil {
		return nil
	}
	d, ok := other.(*dom.Element)
	if !ok {
		return other
	}
	return wrapElement(d, w.snapshots)
}

func (w elementWrapper) LocalName() string    { return w.e.LocalName() }
func (w elementWrapper) HTMLNode() *html.Node { return w.e.HTMLNode() }
func (w elementWrapper) IsShadowHost() bool   { return w.e.IsShadowHost() }
func (w elementWrapper) Opaque() any          { return w.e.Opaque() }

func (w elementWrapper) ID() string {
	if w.snap == nil {
		return w.e.ID()
	}
	return w.snap.ID()
}

func (w elementWrapper) HasClass(name string) bool {
	if w.snap == nil {
		return w.e.HasClass(name)
	}
	for _, c := range w.snap.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

func (w elementWrapper) Attr(name string) (string, bool) {
	if w.snap == nil {
		return w.e.Attr(name)
	}
	return w.snap.Attr(name)
}

func (w elementWrapper) State() selector.ElementState {
	if w.snap == nil {
		return w.e.State()
	}
	return w.snap.State()
}

func (w elementWrapper) PartNames() []string {
	if w.snap == nil {
		return w.e.PartNames()
	}
	p, _ := w.snap.Attr("part")
	return strings.Fields(p)
}

func (w elementWrapper) ExportedPartNames(inner string) []string {
	if w.snap == nil {
		return w.e.ExportedPartNames(inner)
	}
	ex, _ := w.snap.Attr("exportparts")
	return dom.ParseExportParts(ex)[inner]
}

func (w elementWrapper) PseudoElementName() string { return w.e.PseudoElementName() }

func (w elementWrapper) ParentElement() selector.Element {
	return w.wrap(w.e.ParentElement())
}

func (w elementWrapper) PrevSiblingElement() selector.Element {
	return w.wrap(w.e.PrevSiblingElement())
}

func (w elementWrapper) NextSiblingElement() selector.Element {
	return w.wrap(w.e.NextSiblingElement())
}

func (w elementWrapper) FirstChildElement() selector.Element {
	return w.wrap(w.e.FirstChildElement())
}

func (w elementWrapper) ContainingShadowHost() selector.Element {
	return w.wrap(w.e.ContainingShadowHost())
}

func (w elementWrapper) AssignedSlot() selector.Element {
	return w.wrap(w.e.AssignedSlot())
}

func (w elementWrapper) PseudoElementOriginator() selector.Element {
	return w.wrap(w.e.PseudoElementOriginator())
}

var _ selector.Element = elementWrapper{}
