package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/npillmayer/restyle/dom"
	"github.com/npillmayer/restyle/restyle"
	"github.com/npillmayer/restyle/restyledbg"
	"github.com/spf13/cobra"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	restyledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	subtreeStyle  = restyledStyle.Bold(true)
	quietStyle    = lipgloss.NewStyle().Faint(true)
)

type invalidateOpts struct {
	dot           string
	lightTreeOnly bool
	maxDepth      int
	tree          bool
}

func newInvalidateCmd() *cobra.Command {
	var opts invalidateOpts
	cmd := &cobra.Command{
		Use:   "invalidate <page.html> <script.yaml>",
		Short: "Apply a mutation script to a page and print invalidated elements",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvalidate(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVar(&opts.dot, "dot", "", "write the tree with the hints of the last step as GraphViz DOT to this file")
	cmd.Flags().BoolVar(&opts.lightTreeOnly, "light-tree-only", false, "do not descend into shadow trees")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", restyle.DefaultMaxDepth, "recursion limit of a traversal")
	cmd.Flags().BoolVar(&opts.tree, "tree", false, "print the flattened tree after every step")
	return cmd
}

func runInvalidate(cmd *cobra.Command, pagePath, scriptPath string, opts invalidateOpts) error {
	doc, err := loadPage(pagePath)
	if err != nil {
		return err
	}
	f, err := os.Open(scriptPath)
	if err != nil {
		return err
	}
	defer f.Close()
	script, err := ReadScript(f)
	if err != nil {
		return err
	}
	if script.Options == nil {
		script.Options = make(map[string]interface{})
	}
	if cmd.Flags().Changed("light-tree-only") {
		script.Options[restyle.KeyLightTreeOnly] = opts.lightTreeOnly
	}
	if cmd.Flags().Changed("max-depth") {
		script.Options[restyle.KeyMaxDepth] = opts.maxDepth
	}
	out := cmd.OutOrStdout()
	r, err := script.Run(doc, func(label string, r *restyle.Restyler) {
		report(out, label, doc, r.Tracker(), opts.tree)
		r.Tracker().Clear()
	})
	if err != nil {
		return err
	}
	if opts.dot != "" {
		return writeDot(opts.dot, doc, r.Tracker())
	}
	return nil
}

func loadPage(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dom.Parse(f)
}

// report prints the elements with restyle hints after a step.
func report(w io.Writer, label string, doc *dom.Document, t *restyle.Tracker, tree bool) {
	fmt.Fprintln(w, headerStyle.Render(label))
	if tree {
		fmt.Fprint(w, restyledbg.Dump(doc, t))
	}
	restyled := t.Restyled(doc)
	if len(restyled) == 0 {
		fmt.Fprintln(w, quietStyle.Render("  nothing to restyle"))
		return
	}
	var b strings.Builder
	for _, e := range restyled {
		style := restyledStyle
		if t.Hint(e)&restyle.RestyleDescendants != 0 {
			style = subtreeStyle
		}
		b.WriteString("  " + style.Render(e.String()) + " " + quietStyle.Render(t.Hint(e).String()) + "\n")
	}
	fmt.Fprint(w, b.String())
}

func writeDot(path string, doc *dom.Document, t *restyle.Tracker) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := restyledbg.ToGraphViz(doc, t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
