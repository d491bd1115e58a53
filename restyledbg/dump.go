package restyledbg

import (
	"fmt"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/restyle"
	"github.com/xlab/treeprint"
)

// Dump returns the flattened tree of doc as a printable tree. Elements
// carrying a hint in t are annotated with it; t may be nil.
func Dump(doc *dom.Document, t *restyle.Tracker) string {
	root := doc.Root()
	if root == nil {
		return "(empty document)\n"
	}
	p := treeprint.NewWithRoot(label(root, t))
	for _, ch := range root.FlatChildren() {
		dump(p, ch, t)
	}
	return p.String()
}

func dump(p treeprint.Tree, e *dom.Element, t *restyle.Tracker) {
	children := e.FlatChildren()
	if len(children) == 0 {
		p.AddNode(label(e, t))
		return
	}
	branch := p.AddBranch(label(e, t))
	for _, ch := range children {
		dump(branch, ch, t)
	}
}

func label(e *dom.Element, t *restyle.Tracker) string {
	s := e.String()
	if e.IsShadowHost() {
		s += fmt.Sprintf(" [shadow %s]", e.Shadow().Mode())
	}
	if slot := e.Slot(); slot != nil {
		s += fmt.Sprintf(" → %v", slot)
	}
	if h := hintOf(e, t); h != 0 {
		s += " (" + h.String() + ")"
	}
	return s
}

func hintOf(e *dom.Element, t *restyle.Tracker) restyle.Hint {
	if t == nil {
		return 0
	}
	return t.Hint(e)
}
