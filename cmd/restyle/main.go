/*
Command restyle loads an HTML document, applies the mutations of a YAML
script to it and prints which elements have to be restyled.

Usage:

    restyle invalidate page.html script.yaml [--dot out.dot] [-v]

A script looks like this:

    options:
      restyle.light-tree-only: false
      restyle.max-depth: 64
    batch: false
    steps:
      - select: "#box"
        add-class: [on]
      - select: "li#a"
        set-attr: { data-x: "1" }
        set-state: [hover]

Style sheets are taken from the <style> elements of the document and of its
declarative shadow trees. With batch set, all steps are snapshotted first
and invalidated together, otherwise every step is invalidated on its own.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>


*/
package main

import "os"

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
