package restyle

import (
	"github.com/npillmayer/restyle/invalidation"
	"github.com/npillmayer/schuko"
)

// Configuration keys.
const (
	KeyPseudoElements = "restyle.pseudo-elements"
	KeyLightTreeOnly  = "restyle.light-tree-only"
	KeyMaxDepth       = "restyle.max-depth"
)

// DefaultMaxDepth is the default recursion limit of a traversal.
const DefaultMaxDepth = 512

// Options control an invalidation traversal.
type Options struct {
	PseudoElements bool // invalidate originating elements together with their pseudo-elements
	LightTreeOnly  bool // do not descend into shadow trees
	MaxDepth       int  // recursion limit; 0 means no limit
}

// DefaultOptions returns the options used if nothing is configured.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

// OptionsFrom reads options from a configuration. Keys which are not set
// keep their defaults.
func OptionsFrom(conf schuko.Configuration) Options {
	opts := DefaultOptions()
	if conf == nil {
		return opts
	}
	if conf.IsSet(KeyPseudoElements) {
		opts.PseudoElements = conf.GetBool(KeyPseudoElements)
	}
	if conf.IsSet(KeyLightTreeOnly) {
		opts.LightTreeOnly = conf.GetBool(KeyLightTreeOnly)
	}
	if conf.IsSet(KeyMaxDepth) {
		if d := conf.GetInt(KeyMaxDepth); d >= 0 {
			opts.MaxDepth = d
		} else {
			tracer().Errorf("ignoring negative %s = %d", KeyMaxDepth, d)
		}
	}
	tracer().Debugf("restyle options: %+v", opts)
	return opts
}

func (opts Options) checker() invalidation.StackLimitChecker {
	if opts.MaxDepth <= 0 {
		return nil
	}
	return invalidation.DepthLimit(opts.MaxDepth)
}
