package invalidation

// StackLimitChecker caps the recursion depth of a traversal. Depth 0 is the
// root element of the traversal; every step into descendants adds one.
type StackLimitChecker interface {
	LimitExceeded(depth int) bool
}

// DepthLimit is a StackLimitChecker which trips at a fixed depth.
type DepthLimit int

// LimitExceeded is part of interface StackLimitChecker.
func (l DepthLimit) LimitExceeded(depth int) bool {
	return depth >= int(l)
}
