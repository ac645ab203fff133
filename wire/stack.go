package wire

// StackTracker bounds recursion through composite rules so that an
// adversarial input such as a deeply nested SEARCH key cannot exhaust the
// real call stack. It is per-invocation state: a caller creates one
// alongside a ParseBuffer and passes both to the grammar.
type StackTracker struct {
	depth int
	limit int
}

// DefaultMaxDepth is the suggested recursion bound when a caller has no
// stronger opinion.
const DefaultMaxDepth = 100

// NewStackTracker returns a tracker that fails once depth exceeds limit.
// A limit <= 0 means DefaultMaxDepth.
func NewStackTracker(limit int) *StackTracker {
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	return &StackTracker{limit: limit}
}

// enter is called on entry to every composite rule. It returns
// DepthExceeded instead of incrementing past the configured limit.
func (s *StackTracker) enter() error {
	if s.depth >= s.limit {
		return &DepthExceeded{Limit: s.limit}
	}
	s.depth++
	return nil
}

// exit is called on every exit (success or failure) from a composite rule
// that successfully entered.
func (s *StackTracker) exit() {
	s.depth--
}

// Depth reports the current recursion depth, mostly useful for tests.
func (s *StackTracker) Depth() int {
	return s.depth
}
