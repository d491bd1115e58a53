package main

import (
	"context"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

func tracer() tracing.Trace {
	return tracing.Select("restyle.cli")
}

// execute runs the restyle CLI.
//
// Tracing of all packages goes to stderr through a charmbracelet logger.
// The default level is error, --verbose switches to debug.
func execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "restyle",
		Short:        "restyle computes which elements of an HTML page need a restyle",
		Long:         `restyle applies DOM mutations to an HTML page and reports the elements whose style has been invalidated by them.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := tracing.LevelError
			if verbose {
				level = tracing.LevelDebug
			}
			installTracing(level)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose tracing")

	root.AddCommand(newInvalidateCmd())

	return root.ExecuteContext(context.Background())
}

func installTracing(level tracing.TraceLevel) {
	t := newCharmTracer(os.Stderr, level)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace {
		return t
	}))
}
