package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/restyle"
	"github.com/npillmayer/restyle/selector"
	"gopkg.in/yaml.v3"
)

// Script is a list of mutations to apply to a document.
type Script struct {
	Options map[string]interface{} `yaml:"options"` // restyle.* configuration keys
	Batch   bool                   `yaml:"batch"`   // invalidate all steps together
	Steps   []Step                 `yaml:"steps"`
}

// Step mutates the element found by a selector.
type Step struct {
	Select      string            `yaml:"select"`
	AddClass    []string          `yaml:"add-class"`
	RemoveClass []string          `yaml:"remove-class"`
	ToggleClass []string          `yaml:"toggle-class"`
	SetAttr     map[string]string `yaml:"set-attr"`
	RemoveAttr  []string          `yaml:"remove-attr"`
	SetState    []string          `yaml:"set-state"`
	ClearState  []string          `yaml:"clear-state"`
}

var errScript = errors.New("invalid script")

// ReadScript decodes and checks a script.
func ReadScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", errScript, err)
	}
	for i, step := range s.Steps {
		if step.Select == "" {
			return nil, fmt.Errorf("%w: step %d has no selector", errScript, i+1)
		}
		if _, err := step.mutation(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", errScript, i+1, err)
		}
	}
	return &s, nil
}

// RestyleOptions returns the options of the script, on top of the defaults.
func (s *Script) RestyleOptions() restyle.Options {
	return restyle.OptionsFrom(scriptConfig(s.Options))
}

func (st Step) String() string {
	return fmt.Sprintf("step(%s)", st.Select)
}

// mutation compiles a step into a function which mutates an element.
func (st Step) mutation() (func(*dom.Element), error) {
	set, err := states(st.SetState)
	if err != nil {
		return nil, err
	}
	cleared, err := states(st.ClearState)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(st.SetAttr))
	for name := range st.SetAttr {
		names = append(names, name)
	}
	sort.Strings(names)
	return func(e *dom.Element) {
		for _, c := range st.AddClass {
			e.AddClass(c)
		}
		for _, c := range st.RemoveClass {
			e.RemoveClass(c)
		}
		for _, c := range st.ToggleClass {
			e.ToggleClass(c)
		}
		for _, name := range names {
			e.SetAttribute(name, st.SetAttr[name])
		}
		for _, name := range st.RemoveAttr {
			e.RemoveAttribute(name)
		}
		if set != 0 {
			e.SetState(set)
		}
		if cleared != 0 {
			e.ClearState(cleared)
		}
	}, nil
}

func states(names []string) (selector.ElementState, error) {
	var st selector.ElementState
	for _, name := range names {
		s, ok := selector.StateFromName(name)
		if !ok {
			return 0, fmt.Errorf("unknown element state %q", name)
		}
		st |= s
	}
	return st, nil
}

// find returns the first element matching sel, looking into shadow trees if
// the document tree has no match.
func find(doc *dom.Document, sel string) (*dom.Element, error) {
	e, err := doc.Query(sel)
	if err == nil || !errors.Is(err, dom.ErrNoSuchElement) {
		return e, err
	}
	for _, sr := range doc.ShadowRoots() {
		if found, _ := sr.QueryAll(sel); len(found) > 0 {
			return found[0], nil
		}
	}
	return nil, err
}

// Run applies the steps of a script to doc and returns the restyler holding
// the resulting hints. after is called after every invalidation.
func (s *Script) Run(doc *dom.Document, after func(label string, r *restyle.Restyler)) (*restyle.Restyler, error) {
	stylist, err := restyle.StylistForDocument(doc)
	if err != nil {
		tracer().Errorf("style sheets: %v", err)
	}
	r := restyle.NewRestyler(stylist, s.RestyleOptions())
	for _, step := range s.Steps {
		e, err := find(doc, step.Select)
		if err != nil {
			return r, err
		}
		mutate, err := step.mutation()
		if err != nil {
			return r, err
		}
		tracer().Debugf("%v at %v", step, e)
		if s.Batch {
			r.Snapshots().Take(e)
			mutate(e)
			continue
		}
		r.Apply(e, mutate)
		if after != nil {
			after(step.String(), r)
		}
	}
	if s.Batch {
		n := r.Flush()
		tracer().Infof("%d elements with hints", n)
		if after != nil {
			after("batch", r)
		}
	}
	return r, nil
}
