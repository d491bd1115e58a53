/*
Package dom provides a mutable DOM for style invalidation.

Overview

Documents are parsed from HTML with golang.org/x/net/html. Every element of
the parse tree is wrapped into an Element, which keeps the *html.Node in sync
with every mutation. Structural pseudo-classes (:first-child, :nth-of-type,
and the like) are thus matched by cascadia against the very same parse tree.

Shadow DOM

A <template> element carrying a shadowrootmode attribute (or the legacy
shadowroot attribute) is turned into a shadow root of its parent element, as
with declarative shadow DOM in browsers. Shadow roots may also be attached by
client code. Elements of the light DOM of a shadow host are assigned to <slot>
elements of the shadow tree by name, and re-assigned after every mutation
which may change the assignment.

Elements may expose themselves to outer style sheets with a part attribute,
and shadow hosts may re-export inner parts with exportparts, as in

    <x-card exportparts="label, icon: card-icon">

Tree Implementation

Elements are built on top of a general purpose tree type (package tree).
Top level elements of a document or of a shadow tree are children of a tree
node without payload, which marks the root of the tree scope. Pseudo-elements
are not part of the tree; they hang off their originating element as
anonymous content.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.dom'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.dom")
}

// Errors returned by DOM operations.
var (
	ErrShadowAttached = errors.New("element already hosts a shadow root")
	ErrNotAHost       = errors.New("element cannot host a shadow root")
	ErrNoSuchElement  = errors.New("no such element")
)
