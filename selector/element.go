package selector

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ElementState is a set of dynamic element states, as queried by state
// pseudo-classes like :hover.
type ElementState uint32

// Element states.
const (
	StateHover ElementState = 1 << iota
	StateActive
	StateFocus
	StateFocusVisible
	StateFocusWithin
	StateChecked
	StateDisabled
	StateEnabled
	StateTarget
	StateVisited
	StateIndeterminate
)

var stateNames = map[string]ElementState{
	"hover":         StateHover,
	"active":        StateActive,
	"focus":         StateFocus,
	"focus-visible": StateFocusVisible,
	"focus-within":  StateFocusWithin,
	"checked":       StateChecked,
	"disabled":      StateDisabled,
	"enabled":       StateEnabled,
	"target":        StateTarget,
	"visited":       StateVisited,
	"indeterminate": StateIndeterminate,
}

// StateFromName returns the element state for a pseudo-class name (without
// the colon), and false if the name does not denote an element state.
func StateFromName(name string) (ElementState, bool) {
	st, ok := stateNames[strings.ToLower(name)]
	return st, ok
}

// Intersects is true if s and other share at least one state.
func (s ElementState) Intersects(other ElementState) bool {
	return s&other != 0
}

func (s ElementState) String() string {
	if s == 0 {
		return "∅"
	}
	var names []string
	for name, st := range stateNames {
		if s&st != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// Element is what selector matching needs to know about an element.
//
// Navigation methods return nil (an untyped nil interface) if there is no
// such element. Implementations must guarantee that Opaque returns a
// comparable identity which is stable for the lifetime of the element.
type Element interface {
	LocalName() string                       // lower-case tag name; empty for pseudo-elements
	ID() string                              // value of the id attribute
	HasClass(name string) bool               // class list membership
	Attr(name string) (string, bool)         // attribute lookup
	State() ElementState                     // dynamic state
	HTMLNode() *html.Node                    // parse tree node, may be nil
	ParentElement() Element                  // DOM parent; nil for roots and shadow root children
	PrevSiblingElement() Element             // previous element sibling
	NextSiblingElement() Element             // next element sibling
	FirstChildElement() Element              // first element child
	ContainingShadowHost() Element           // host of the shadow tree the element lives in
	IsShadowHost() bool                      // does the element have a shadow root attached?
	AssignedSlot() Element                   // slot the element is assigned to
	PartNames() []string                     // names from the part attribute
	ExportedPartNames(inner string) []string // names an inner part is re-exported as (exportparts)
	PseudoElementName() string               // non-empty for pseudo-elements
	PseudoElementOriginator() Element        // originating element of a pseudo-element
	Opaque() any                             // comparable identity
}

// SameElement compares two elements by identity.
func SameElement(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Opaque() == b.Opaque()
}

// MatchingContext carries state for selector matching which is not part of
// the selector or the element.
type MatchingContext struct {
	// CurrentHost is the opaque identity of the shadow host whose style rules
	// are being matched, or nil for document rules. :host only matches this
	// element.
	CurrentHost any
	// RelativeAnchor is set while matching the argument of :has().
	RelativeAnchor any
}

// NewMatchingContext creates a matching context for document rules.
func NewMatchingContext() *MatchingContext {
	return &MatchingContext{}
}
