/*
Package depmap compiles style sheets into invalidation dependencies.

Overview

Every selector of a style sheet is split into its compound selectors. For
each compound which contains something that may change on an element
(a class, an id, an attribute or an element state), a dependency is
created and filed under each of these keys. When an element changes, a
processor looks up the dependencies for the changed keys and starts an
invalidation traversal with them.

Selectors nested in :is(), :where() and :not() get dependencies of their
own, linked to the dependency of the enclosing compound. Selectors nested
in :has() are linked to a relative dependency, which tells where the
anchor of the :has() may be found.

Style sheets are parsed with douceur (https://github.com/aymerick/douceur).
Rules nested in at-rules like @media are included unconditionally, as
media queries do not affect invalidation.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package depmap

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'restyle.invalidation'.
func tracer() tracing.Trace {
	return tracing.Select("restyle.invalidation")
}
