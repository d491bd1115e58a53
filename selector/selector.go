package selector

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Combinator is the relation between two compound selectors.
type Combinator uint8

// Combinators. PseudoElement, SlotAssignment and Part are implicit: they are
// inserted by the parser in front of pseudo-elements, ::slotted() and ::part().
const (
	Child          Combinator = iota // >
	Descendant                       // whitespace
	NextSibling                      // +
	LaterSibling                     // ~
	PseudoElement                    // between an element and one of its pseudo-elements
	SlotAssignment                   // between a slot and ::slotted()
	Part                             // between a shadow host and ::part()
)

func (c Combinator) String() string {
	switch c {
	case Child:
		return ">"
	case Descendant:
		return " "
	case NextSibling:
		return "+"
	case LaterSibling:
		return "~"
	case PseudoElement:
		return "<pseudo>"
	case SlotAssignment:
		return "<slot>"
	case Part:
		return "<part>"
	}
	return "<?>"
}

// IsSibling is true for '+' and '~'.
func (c Combinator) IsSibling() bool {
	return c == NextSibling || c == LaterSibling
}

// Kind classifies a component.
type Kind uint8

// Component kinds.
const (
	KindCombinator    Kind = iota
	KindUniversal          // *
	KindType               // div
	KindID                 // #id
	KindClass              // .class
	KindAttribute          // [name], [name=value], …
	KindState              // :hover, :focus, …
	KindStructural         // :first-child, :nth-child(…), … (cascadia)
	KindHost               // :host, :host(compound)
	KindIs                 // :is(list), :where(list)
	KindNegation           // :not(list)
	KindHas                // :has(relative list)
	KindRelativeAnchor     // implicit leftmost compound of a relative selector
	KindPseudoElement      // ::before, ::after, …
	KindPart               // ::part(name …)
	KindSlotted            // ::slotted(compound)
)

// AttrOperator is the operator of an attribute selector.
type AttrOperator uint8

// Attribute selector operators.
const (
	AttrExists    AttrOperator = iota // [a]
	AttrEquals                        // [a=v]
	AttrIncludes                      // [a~=v]
	AttrDashMatch                     // [a|=v]
	AttrPrefix                        // [a^=v]
	AttrSuffix                        // [a$=v]
	AttrSubstring                     // [a*=v]
)

// Component is a single item of a selector: either a combinator or a simple
// selector. Which fields are in use depends on Kind.
type Component struct {
	Kind       Kind
	Combinator Combinator   // KindCombinator
	Name       string       // type, id, class, attribute, state, pseudo-element name
	Value      string       // attribute value
	Op         AttrOperator // attribute operator
	IgnoreCase bool         // attribute 'i' flag
	State      ElementState // KindState
	Names      []string     // KindPart
	Inner      *Selector    // KindHost (optional), KindSlotted
	List       []*Selector  // KindIs, KindNegation, KindHas
	text       string       // source text
	structural cascadia.Sel // KindStructural
}

// IsCombinator is true for combinator components.
func (c Component) IsCombinator() bool {
	return c.Kind == KindCombinator
}

func (c Component) String() string {
	if c.Kind == KindCombinator {
		switch c.Combinator {
		case Child, NextSibling, LaterSibling:
			return " " + c.Combinator.String() + " "
		case Descendant:
			return " "
		}
		return "" // implicit combinators are not written
	}
	return c.text
}

// Selector is a complex selector, stored in parse order.
type Selector struct {
	components []Component
	text       string
}

// Len returns the number of components, including combinators.
func (s *Selector) Len() int {
	return len(s.components)
}

// At returns the component at parse order index i.
func (s *Selector) At(i int) Component {
	return s.components[i]
}

// CombinatorAtParseOrder returns the combinator at parse order index i.
// It panics if there is no combinator at i.
func (s *Selector) CombinatorAtParseOrder(i int) Combinator {
	c := s.components[i]
	if c.Kind != KindCombinator {
		panic(fmt.Sprintf("selector %q: no combinator at parse order index %d", s.text, i))
	}
	return c.Combinator
}

// CombinatorAtMatchOrder returns the combinator at match order index i.
// Match order is the reversal of parse order.
func (s *Selector) CombinatorAtMatchOrder(i int) Combinator {
	return s.CombinatorAtParseOrder(len(s.components) - 1 - i)
}

// ParseOrder converts a match order index into a parse order index (and
// vice versa, the mapping is symmetric).
func (s *Selector) ParseOrder(i int) int {
	return len(s.components) - 1 - i
}

// CompoundFrom returns the source text of the compound selector starting at
// parse order index from.
func (s *Selector) CompoundFrom(from int) string {
	var b strings.Builder
	for i := from; i < len(s.components); i++ {
		if s.components[i].Kind == KindCombinator {
			break
		}
		b.WriteString(s.components[i].text)
	}
	return b.String()
}

// compoundStart returns the parse order index of the first component of the
// compound which contains index i.
func (s *Selector) compoundStart(i int) int {
	for i > 0 && s.components[i-1].Kind != KindCombinator {
		i--
	}
	return i
}

// PseudoElement returns the name of the pseudo-element the selector targets,
// or the empty string.
func (s *Selector) PseudoElement() string {
	for i := len(s.components) - 1; i >= 0; i-- {
		c := s.components[i]
		if c.Kind == KindCombinator {
			break
		}
		if c.Kind == KindPseudoElement {
			return c.Name
		}
	}
	return ""
}

func (s *Selector) String() string {
	if s == nil {
		return "<nil>"
	}
	return s.text
}

// Components iterates over the components in parse order, starting at from.
// Iteration stops when f returns false.
func (s *Selector) Components(from int, f func(i int, c Component) bool) {
	for i := from; i < len(s.components); i++ {
		if !f(i, s.components[i]) {
			return
		}
	}
}
