/*
Package selector provides compiled CSS selectors as used by the style invalidation engine.

Overview

A selector is kept as a flat sequence of components in parse order, i.e. the
order in which it has been written by the author. Combinators are components
as well, separating compound selectors. Parse order index 0 is the leftmost
simple selector. Some parts of the engine think in "match order", which is
the reversal of parse order: matching always starts at the rightmost compound
(the subject of the selector) and proceeds to the left.

Pseudo-elements, ::part() and ::slotted() are modelled the way browser engines
do it: they are separated from their originating compound by an implicit
combinator (PseudoElement, Part and SlotAssignment, respectively). Thus

    x-card::part(label):hover

is stored as

    x-card  ⟨Part⟩  ::part(label):hover

Matching

Compound selectors are matched one at a time with MatchCompoundFrom, which is
what the invalidation engine needs to propagate invalidations down and across
the tree. Full selector matching (MatchesFrom, Matches) is available for
processors, which have to compare the matching result of a selector before and
after a DOM mutation.

Simple selectors for type, id, class, attributes and element state are
matched natively on the Element interface. Structural pseudo-classes
(:first-child, :nth-child(…), :empty, …) are delegated to cascadia
(https://godoc.org/github.com/andybalholm/cascadia), operating on the
HTML parse tree node behind an element.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package selector

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.selector'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.selector")
}
