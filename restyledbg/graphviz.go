package restyledbg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/restyle"
)

// Parameters for GraphViz drawing.
type graphParamsType struct {
	Fontname string
	NodeTmpl *template.Template
	EdgeTmpl *template.Template
}

// ToGraphViz outputs a diagram of the flattened tree of a document. The
// diagram is in GraphViz (DOT) format. Elements are colored by the hints
// recorded in t, which may be nil. Edges into shadow trees and from slots
// to assigned elements are drawn dashed.
func ToGraphViz(doc *dom.Document, t *restyle.Tracker, w io.Writer) error {
	tmpl, err := template.New("dom").Parse(graphHeadTmpl)
	if err != nil {
		return err
	}
	gparams := graphParamsType{Fontname: "Helvetica"}
	gparams.NodeTmpl = template.Must(template.New("domnode").Funcs(
		template.FuncMap{
			"quote": quote,
		}).Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	if err = tmpl.Execute(w, gparams); err != nil {
		return err
	}
	g := graph{w: w, t: t, params: &gparams, dict: make(map[*dom.Element]string, 256)}
	if root := doc.Root(); root != nil {
		g.nodes(root)
	}
	if g.err == nil {
		_, g.err = io.WriteString(w, "}\n")
	}
	return g.err
}

// Dotty is a helper for testing. Given a document and a testing.T, it will
// create a GraphViz image of the flattened tree of doc and write it to a
// file in the current folder, choosing a unique file name.
// The image is in SVG format.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
func Dotty(doc *dom.Document, tracker *restyle.Tracker, t *testing.T) {
	tmpfile, err := os.CreateTemp(".", "restyle.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name()) // clean up
	}()
	t.Logf("writing digraph to %s\n", tmpfile.Name())
	if err := ToGraphViz(doc, tracker, tmpfile); err != nil {
		t.Error(err)
		return
	}
	outOption := fmt.Sprintf("-o%s.svg", tmpfile.Name())
	cmd := exec.Command("dot", "-Tsvg", outOption, tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	t.Logf("writing tree image to %s.svg\n", tmpfile.Name())
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

type graph struct {
	w      io.Writer
	t      *restyle.Tracker
	params *graphParamsType
	dict   map[*dom.Element]string
	err    error
}

type node struct {
	Name  string
	Label string
	Fill  string
	Pen   int
}

type edge struct {
	From, To string
	Style    string
}

func (g *graph) nodes(e *dom.Element) {
	g.node(e)
	for _, ch := range e.FlatChildren() {
		g.nodes(ch)
		g.edge(e, ch)
	}
}

func (g *graph) name(e *dom.Element) string {
	name := g.dict[e]
	if name == "" {
		name = fmt.Sprintf("node%05d", len(g.dict)+1)
		g.dict[e] = name
	}
	return name
}

func (g *graph) node(e *dom.Element) {
	if g.err != nil {
		return
	}
	n := node{Name: g.name(e), Label: e.String(), Fill: "lightblue3", Pen: 1}
	h := hintOf(e, g.t)
	switch {
	case h&restyle.RestyleDescendants != 0:
		n.Fill = "firebrick3"
	case h&restyle.RestyleSelf != 0:
		n.Fill = "salmon"
	case e.PseudoElementName() != "":
		n.Fill = "grey90"
	}
	if h&restyle.DirtyDescendants != 0 {
		n.Pen = 3
	}
	g.err = g.params.NodeTmpl.Execute(g.w, n)
}

func (g *graph) edge(parent, child *dom.Element) {
	if g.err != nil {
		return
	}
	style := "solid"
	if parent.IsShadowHost() || parent.IsSlot() || child.PseudoElementName() != "" {
		style = "dashed"
	}
	e := edge{From: g.name(parent), To: g.name(child), Style: style}
	g.err = g.params.EdgeTmpl.Execute(g.w, e)
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  graph [fontname = "{{ .Fontname }}" fontsize=14] ;
   node [fontname = "{{ .Fontname }}" fontsize=14] ;
   edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ .Name }}	[ label={{ quote .Label }} shape=ellipse style=filled fillcolor={{ .Fill }} penwidth={{ .Pen }} ] ;
`

const domEdgeTmpl = `{{ .From }} -> {{ .To }} [weight=1 style={{ .Style }}] ;
`
