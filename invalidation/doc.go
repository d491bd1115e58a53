/*
Package invalidation implements style invalidation for DOM subtrees.

Overview

When an element changes (a class is toggled, an attribute is set, a
pseudo-class state flips), the style of other elements may change as well:
with a rule `.a .b { … }`, toggling class `a` on an element affects every
descendant with class `b`. Restyling the whole document for every change is
expensive, restyling too little makes for visible bugs.

Package invalidation computes the set of elements whose style has to be
recomputed. A Processor supplies the initial invalidations for an element,
in terms of selector dependencies which have been compiled from style
sheets beforehand (see package depmap). The Invalidator then walks the
flattened tree (light DOM, shadow roots, slotted content, anonymous
content and ::part() targets), matching and propagating invalidations one
compound selector at a time.

Invalidations

An invalidation is a selector together with an offset in parse order. The
offset denotes the compound selector which has to be matched next, and the
combinator to the left of it determines where matching will happen:

	Child, Descendant, PseudoElement   →  DOM descendants
	SlotAssignment                     →  elements assigned to a slot
	Part                               →  elements of a shadow tree with a part attribute
	NextSibling, LaterSibling          →  siblings

Whenever the rightmost compound of a selector matches, the element is
invalidated. Invalidations for the descendant combinator and the
later-sibling combinator stay in effect further down (or to the right),
whereas invalidations for adjacency combinators fire only once.

Recursion Limit

The traversal is recursive. Clients may cap recursion depth with a
StackLimitChecker. If the limit is hit, the Processor is notified and the
subtree is conservatively reported as invalidated, without descending
further.

Errors

There are no errors from a traversal: invalidations which do not apply
simply have no effect. Violations of the contract between dependencies and
the invalidator (e.g., sibling invalidations after ::part()) are
programming errors and result in a panic.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package invalidation

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.invalidation'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.invalidation")
}
