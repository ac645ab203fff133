package wire

// ParserOptions is the immutable configuration threaded alongside a
// ParseBuffer. There is no mutable package-level state; every limit a
// caller might want to tune lives here instead (§9 "Global mutable
// state: None required").
type ParserOptions struct {
	// MessageBodySizeLimit bounds any literal's declared byte count.
	// Zero means unbounded. Exceeding it is a ParseError, not an
	// allocation of the declared size.
	MessageBodySizeLimit uint64

	// MaxDepth bounds composite-rule recursion; zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// DefaultParserOptions returns reasonable defaults: a 64MiB literal cap
// and DefaultMaxDepth recursion.
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		MessageBodySizeLimit: 64 << 20,
		MaxDepth:             DefaultMaxDepth,
	}
}

func (o ParserOptions) newStackTracker() *StackTracker {
	return NewStackTracker(o.MaxDepth)
}
