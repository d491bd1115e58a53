/*
Package restyledbg implements helpers to debug restyle hints.

Dump prints the flattened tree of a document together with the restyle hints
of a tracker, ToGraphViz writes the same information as a GraphViz (DOT)
digraph. Elements which have to be restyled are filled red, elements with
dirty descendants are outlined.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>


*/
package restyledbg
