package restyle

import (
	"fmt"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/invalidation/depmap"
)

// Stylist holds the dependency maps of a document's style sheets: one for
// the document and one per shadow tree with style sheets.
type Stylist struct {
	document *depmap.Map
	shadows  map[*dom.Element]*depmap.Map // keyed by host
}

// NewStylist creates a stylist without style sheets.
func NewStylist() *Stylist {
	return &Stylist{
		document: depmap.New(),
		shadows:  make(map[*dom.Element]*depmap.Map),
	}
}

// StylistForDocument creates a stylist from the <style> elements of a
// document and of its shadow trees. Rules with invalid selectors are
// skipped; the first error is returned together with a usable stylist.
func StylistForDocument(doc *dom.Document) (*Stylist, error) {
	s := NewStylist()
	sheets := doc.StyleSheets()
	var firstErr error
	note := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, css := range sheets.Document {
		note(s.AddDocumentStyleSheet(css))
	}
	for host, list := range sheets.Shadow {
		for _, css := range list {
			note(s.AddShadowStyleSheet(host, css))
		}
	}
	return s, firstErr
}

// AddDocumentStyleSheet adds a style sheet of the document.
func (s *Stylist) AddDocumentStyleSheet(css string) error {
	return s.document.AddStyleSheet(css)
}

// AddShadowStyleSheet adds a style sheet of the shadow tree of host.
func (s *Stylist) AddShadowStyleSheet(host *dom.Element, css string) error {
	if host == nil || !host.IsShadowHost() {
		return fmt.Errorf("cannot add shadow style sheet to %v: %w", host, dom.ErrNotAHost)
	}
	m, ok := s.shadows[host]
	if !ok {
		m = depmap.New()
		s.shadows[host] = m
	}
	return m.AddStyleSheet(css)
}

// DocumentMap returns the dependency map of the document's style sheets.
func (s *Stylist) DocumentMap() *depmap.Map {
	return s.document
}

// ShadowMap returns the dependency map of the shadow tree of host, or nil.
func (s *Stylist) ShadowMap(host *dom.Element) *depmap.Map {
	return s.shadows[host]
}

// scope is a dependency map together with the host its rules are matched
// for (nil for the document).
type scope struct {
	deps *depmap.Map
	host *dom.Element
}

func (sc scope) currentHost() any {
	if sc.host == nil {
		return nil
	}
	return sc.host.Opaque()
}

// scopesFor returns the style scopes whose rules may match e:
// the document, the shadow tree e lives in, the shadow tree e hosts (for
// :host), the shadow trees of the slots e is assigned to (for ::slotted()),
// and the scopes outside of the hosts e is exposed to as a part.
func (s *Stylist) scopesFor(e *dom.Element) []scope {
	scopes := []scope{{deps: s.document}}
	add := func(host *dom.Element) {
		m := s.shadows[host]
		if m == nil {
			return
		}
		for _, sc := range scopes {
			if sc.host == host {
				return
			}
		}
		scopes = append(scopes, scope{deps: m, host: host})
	}
	if sr := e.ContainingShadow(); sr != nil {
		add(sr.HostElement())
	}
	if e.IsShadowHost() {
		add(e)
	}
	for slot := e.Slot(); slot != nil; slot = slot.Slot() {
		if sr := slot.ContainingShadow(); sr != nil {
			add(sr.HostElement())
		}
	}
	if e.HasPartAttr() {
		for sr := e.ContainingShadow(); sr != nil; {
			outer := sr.HostElement().ContainingShadow()
			if outer == nil {
				break
			}
			add(outer.HostElement())
			sr = outer
		}
	}
	return scopes
}
