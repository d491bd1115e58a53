package depmap

import (
	"fmt"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/restyle/selector"
)

// StyleSheet wraps a douceur style sheet.
type StyleSheet struct {
	css *css.Stylesheet
}

// ParseStyleSheet parses CSS text.
func ParseStyleSheet(text string) (*StyleSheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("cannot parse style sheet: %w", err)
	}
	return &StyleSheet{css: sheet}, nil
}

// Empty checks if this style sheet contains any rules.
func (sheet *StyleSheet) Empty() bool {
	return len(sheet.css.Rules) == 0
}

// Preludes returns the selector preludes of all qualified rules, including
// rules nested in at-rules.
func (sheet *StyleSheet) Preludes() []string {
	var preludes []string
	var walk func([]*css.Rule)
	walk = func(rules []*css.Rule) {
		for _, r := range rules {
			switch {
			case r.Kind == css.QualifiedRule:
				preludes = append(preludes, r.Prelude)
			case r.EmbedsRules():
				walk(r.Rules)
			}
		}
	}
	walk(sheet.css.Rules)
	return preludes
}

// AddStyleSheet parses CSS text and adds the selectors of all its rules.
// Rules with invalid selectors are skipped, as a browser would do; they are
// reported in the returned error, which wraps selector.ErrSyntax. The map
// is usable in any case.
func (m *Map) AddStyleSheet(text string) error {
	sheet, err := ParseStyleSheet(text)
	if err != nil {
		return err
	}
	return m.AddRules(sheet)
}

// AddRules adds the selectors of all qualified rules of a style sheet.
func (m *Map) AddRules(sheet *StyleSheet) error {
	var firstErr error
	skipped := 0
	for _, prelude := range sheet.Preludes() {
		list, err := selector.ParseList(prelude)
		if err != nil {
			tracer().Errorf("skipping rule %q: %v", prelude, err)
			if firstErr == nil {
				firstErr = err
			}
			skipped++
			continue
		}
		for _, sel := range list {
			m.AddSelector(sel)
		}
	}
	tracer().Debugf("style sheet compiled into %v", m)
	if firstErr != nil {
		return fmt.Errorf("%d rule(s) skipped, first: %w", skipped, firstErr)
	}
	return nil
}

// FromStyleSheets creates a dependency map from CSS texts.
func FromStyleSheets(texts ...string) (*Map, error) {
	m := New()
	var firstErr error
	for _, text := range texts {
		if err := m.AddStyleSheet(text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return m, firstErr
}
