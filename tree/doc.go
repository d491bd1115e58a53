/*
Package tree implements a generic mutable tree, the base of the DOM.

Nodes carry a payload of a type parameter. A node keeps an ordered slice of
children, protected by a mutex, so that readers may navigate a tree while
another goroutine inserts or removes children. Positions are not cached:
sibling navigation looks up a node's position in its parent every time,
which is cheap for the moderate fan-out of HTML documents.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package tree
