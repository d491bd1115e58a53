package dom

import (
	"strings"

	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/restyle/selector"
	"github.com/npillmayer/restyle/tree"
	"golang.org/x/net/html"
)

// Element is an element of a document, of a shadow tree, or a
// pseudo-element.
type Element struct {
	node       tree.Node[*Element] // we build on top of general purpose tree
	html       *html.Node          // nil for pseudo-elements
	doc        *Document
	state      selector.ElementState
	shadow     *ShadowRoot // attached shadow root
	slot       *Element    // slot the element is assigned to
	slotted    []*Element  // for slots: assigned elements
	pseudo     string      // pseudo-element name
	originator *Element    // for pseudo-elements
	nac        []*Element  // pseudo-elements of this element
}

func (doc *Document) newElement(h *html.Node) *Element {
	e := &Element{html: h, doc: doc}
	e.node.Payload = e // Payload will always reference the element itself
	if h != nil {
		doc.byNode[h] = e
	}
	return e
}

// wrap returns e as a selector.Element, avoiding a typed nil.
func wrap(e *Element) selector.Element {
	if e == nil {
		return nil
	}
	return e
}

func payload(n *tree.Node[*Element]) *Element {
	if n == nil {
		return nil
	}
	return n.Payload
}

// Document returns the document e belongs to.
func (e *Element) Document() *Document {
	return e.doc
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.pseudo != "" {
		return e.originator.String() + "::" + e.pseudo
	}
	var b strings.Builder
	b.WriteString(e.LocalName())
	if id := e.ID(); id != "" {
		b.WriteString("#" + id)
	}
	for _, c := range e.Classes() {
		b.WriteString("." + c)
	}
	return b.String()
}

// --- Attributes ------------------------------------------------------------

// LocalName is part of interface selector.Element.
func (e *Element) LocalName() string {
	if e.html == nil {
		return ""
	}
	return e.html.Data
}

// ID is part of interface selector.Element.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Classes returns the class list of e.
func (e *Element) Classes() []string {
	cl, _ := e.Attr("class")
	return strings.Fields(cl)
}

// HasClass is part of interface selector.Element.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// Attr is part of interface selector.Element.
func (e *Element) Attr(name string) (string, bool) {
	if e.html == nil {
		return "", false
	}
	for _, a := range e.html.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// State is part of interface selector.Element.
func (e *Element) State() selector.ElementState {
	return e.state
}

// HTMLNode is part of interface selector.Element.
func (e *Element) HTMLNode() *html.Node {
	return e.html
}

// SetAttribute sets an attribute to a value, adding it if necessary.
func (e *Element) SetAttribute(name, value string) {
	if e.html == nil {
		return
	}
	for i, a := range e.html.Attr {
		if a.Namespace == "" && a.Key == name {
			e.html.Attr[i].Val = value
			e.attributeChanged(name)
			return
		}
	}
	e.html.Attr = append(e.html.Attr, html.Attribute{Key: name, Val: value})
	e.attributeChanged(name)
}

// RemoveAttribute removes an attribute. It returns false if e has no such
// attribute.
func (e *Element) RemoveAttribute(name string) bool {
	if e.html == nil {
		return false
	}
	for i, a := range e.html.Attr {
		if a.Namespace == "" && a.Key == name {
			e.html.Attr = append(e.html.Attr[:i], e.html.Attr[i+1:]...)
			e.attributeChanged(name)
			return true
		}
	}
	return false
}

func (e *Element) attributeChanged(name string) {
	tracer().Debugf("attribute %q of %v changed", name, e)
	if name == "slot" || (name == "name" && e.IsSlot()) {
		e.doc.assignSlots()
	}
}

// AddClass adds a class to the class list of e.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	e.SetAttribute("class", strings.Join(append(e.Classes(), name), " "))
}

// RemoveClass removes a class from the class list of e.
func (e *Element) RemoveClass(name string) {
	classes := e.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) < len(e.Classes()) {
		e.SetAttribute("class", strings.Join(kept, " "))
	}
}

// ToggleClass adds or removes a class and returns true if the class is
// present afterwards.
func (e *Element) ToggleClass(name string) bool {
	if e.HasClass(name) {
		e.RemoveClass(name)
		return false
	}
	e.AddClass(name)
	return true
}

// SetState adds states to e.
func (e *Element) SetState(st selector.ElementState) {
	e.state |= st
}

// ClearState removes states from e.
func (e *Element) ClearState(st selector.ElementState) {
	e.state &^= st
}

// --- Navigation ------------------------------------------------------------

// Parent returns the parent element, or nil for top level elements of a
// document or shadow tree, and for pseudo-elements.
func (e *Element) Parent() *Element {
	return payload(e.node.Parent())
}

// Children returns the element children of e.
func (e *Element) Children() []*Element {
	return elementsOf(&e.node)
}

func elementsOf(n *tree.Node[*Element]) []*Element {
	children := n.Children()
	elems := make([]*Element, len(children))
	for i, ch := range children {
		elems[i] = ch.Payload
	}
	return elems
}

// ParentElement is part of interface selector.Element.
func (e *Element) ParentElement() selector.Element {
	return wrap(e.Parent())
}

// PrevSiblingElement is part of interface selector.Element.
func (e *Element) PrevSiblingElement() selector.Element {
	return wrap(payload(e.node.PrevSibling()))
}

// NextSiblingElement is part of interface selector.Element.
func (e *Element) NextSiblingElement() selector.Element {
	return wrap(payload(e.node.NextSibling()))
}

// FirstChildElement is part of interface selector.Element.
func (e *Element) FirstChildElement() selector.Element {
	ch, _ := e.node.Child(0)
	return wrap(payload(ch))
}

// scope returns the root node of the tree scope e lives in.
func (e *Element) scope() *tree.Node[*Element] {
	if e.originator != nil {
		return e.originator.scope()
	}
	n := &e.node
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}

// ContainingShadow returns the shadow root of the shadow tree e lives in, or
// nil.
func (e *Element) ContainingShadow() *ShadowRoot {
	return e.doc.shadows[e.scope()]
}

// InDocument is true if e is connected to the document tree, either
// directly or through shadow hosts.
func (e *Element) InDocument() bool {
	scope := e.scope()
	for {
		if scope == &e.doc.top {
			return true
		}
		sr := e.doc.shadows[scope]
		if sr == nil {
			return false
		}
		scope = sr.host.scope()
	}
}

// ContainingShadowHost is part of interface selector.Element.
func (e *Element) ContainingShadowHost() selector.Element {
	if sr := e.ContainingShadow(); sr != nil {
		return sr.host
	}
	return nil
}

// IsShadowHost is part of interface selector.Element.
func (e *Element) IsShadowHost() bool {
	return e.shadow != nil
}

// Shadow returns the attached shadow root, or nil.
func (e *Element) Shadow() *ShadowRoot {
	return e.shadow
}

// Slot returns the slot e is assigned to, or nil.
func (e *Element) Slot() *Element {
	return e.slot
}

// AssignedSlot is part of interface selector.Element.
func (e *Element) AssignedSlot() selector.Element {
	return wrap(e.slot)
}

// PartNames is part of interface selector.Element.
func (e *Element) PartNames() []string {
	p, _ := e.Attr("part")
	return strings.Fields(p)
}

// ExportedPartNames is part of interface selector.Element.
func (e *Element) ExportedPartNames(inner string) []string {
	return parseExportParts(e)[inner]
}

// PseudoElementName is part of interface selector.Element.
func (e *Element) PseudoElementName() string {
	return e.pseudo
}

// PseudoElementOriginator is part of interface selector.Element.
func (e *Element) PseudoElementOriginator() selector.Element {
	return wrap(e.originator)
}

// Opaque is part of interface selector.Element.
func (e *Element) Opaque() any {
	return e
}

// --- Interface invalidation.Element -----------------------------------------

// DOMChildren is part of interface invalidation.Element.
func (e *Element) DOMChildren() []invalidation.Element {
	return asInvalidation(e.Children())
}

func asInvalidation(elems []*Element) []invalidation.Element {
	list := make([]invalidation.Element, len(elems))
	for i, el := range elems {
		list[i] = el
	}
	return list
}

// ShadowRoot is part of interface invalidation.Element.
func (e *Element) ShadowRoot() invalidation.ShadowRoot {
	if e.shadow == nil {
		return nil
	}
	return e.shadow
}

// IsSlot is part of interface invalidation.Element.
func (e *Element) IsSlot() bool {
	return e.LocalName() == "slot"
}

// SlottedNodes is part of interface invalidation.Element.
func (e *Element) SlottedNodes() []invalidation.Element {
	return asInvalidation(e.slotted)
}

// AssignedElements returns the elements assigned to slot e.
func (e *Element) AssignedElements() []*Element {
	return e.slotted
}

// AnonymousContent is part of interface invalidation.Element.
func (e *Element) AnonymousContent() []invalidation.Element {
	return asInvalidation(e.nac)
}

// PseudoElements returns the pseudo-elements of e.
func (e *Element) PseudoElements() []*Element {
	return e.nac
}

// HasPartAttr is part of interface invalidation.Element.
func (e *Element) HasPartAttr() bool {
	_, ok := e.Attr("part")
	return ok
}

// ExportsAnyPart is part of interface invalidation.Element.
func (e *Element) ExportsAnyPart() bool {
	return len(parseExportParts(e)) > 0
}

var _ invalidation.Element = &Element{}

// --- Structural mutations --------------------------------------------------

// AppendChild appends child to the children of e, removing it from its
// current position first.
func (e *Element) AppendChild(child *Element) {
	if child == nil || child.pseudo != "" || e.pseudo != "" {
		return
	}
	child.detach()
	e.node.AddChild(&child.node)
	e.html.AppendChild(child.html)
	tracer().Debugf("appended %v to %v", child, e)
	e.doc.assignSlots()
}

// InsertBefore inserts child into the children of e, right before ref. If
// ref is nil or not a child of e, child is appended.
func (e *Element) InsertBefore(child, ref *Element) {
	if child == nil || child.pseudo != "" || e.pseudo != "" {
		return
	}
	if ref == nil || ref.Parent() != e || ref == child {
		e.AppendChild(child)
		return
	}
	child.detach()
	e.node.InsertChildAt(e.node.IndexOfChild(&ref.node), &child.node)
	e.html.InsertBefore(child.html, ref.html)
	tracer().Debugf("inserted %v into %v before %v", child, e, ref)
	e.doc.assignSlots()
}

// Remove removes e from its parent. Pseudo-elements are removed from their
// originating element.
func (e *Element) Remove() {
	if e.originator != nil {
		nac := e.originator.nac
		for i, p := range nac {
			if p == e {
				e.originator.nac = append(nac[:i], nac[i+1:]...)
				break
			}
		}
		return
	}
	e.detach()
	e.doc.assignSlots()
}

func (e *Element) detach() {
	e.node.Isolate()
	if e.html != nil && e.html.Parent != nil {
		e.html.Parent.RemoveChild(e.html)
	}
}

// AddPseudoElement creates a pseudo-element, like "before", for e.
func (e *Element) AddPseudoElement(name string) *Element {
	p := &Element{doc: e.doc, pseudo: name, originator: e}
	p.node.Payload = p
	e.nac = append(e.nac, p)
	return p
}

// PseudoElement returns the pseudo-element of e with a given name, or nil.
func (e *Element) PseudoElement(name string) *Element {
	for _, p := range e.nac {
		if p.pseudo == name {
			return p
		}
	}
	return nil
}
