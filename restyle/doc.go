/*
Package restyle computes which elements need a restyle after DOM changes.

Overview

Clients take a snapshot of an element before they change it: its id, class
list, attributes and element state. After the change, the restyler starts an
invalidation traversal at the element. A StateAndAttrProcessor compares the
snapshot to the current state of the element and looks up the dependencies
of the changed keys in the style sheets' dependency maps. Every dependency is
checked by matching its selector against the element twice, once as it is
now and once as it was when the snapshot was taken. Only dependencies whose
outcome differs start an invalidation.

The outcome of a traversal is a set of restyle hints, kept by a Tracker:

    RestyleSelf          the element's style has to be recomputed
    RestyleDescendants   the whole subtree has to be recomputed
    DirtyDescendants     some element below has a hint

Style Scopes

Style sheets of the document and of shadow trees are compiled into separate
dependency maps (see Stylist). Rules of a shadow tree are matched with the
tree's host as the current host, which makes :host and ::slotted() work.

Relative Selectors

Changes which affect a :has() argument are not resolved by the traversal
itself. They are reported as RelativeInvalidations, and
Restyler.InvalidateRelative conservatively restyles all candidate anchors.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package restyle

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.restyle'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.restyle")
}
