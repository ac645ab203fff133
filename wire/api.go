package wire

// This file collects the package's external interface (§6): the
// top-level entry points a client decoder or server decoder calls into.
// Everything below them (command.go, response.go, the lexical and
// primitive layers) is implementation detail.

// ParseTaggedCommand reads one full client command: tag SP verb suffix
// CRLF. APPEND is excluded — its suffix is an unbounded upload state
// machine rather than a single parse, so a server reads it through
// ParseCommandStreamPart instead.
func ParseTaggedCommand(b *ParseBuffer, opts ParserOptions) (TaggedCommand, error) {
	return parseTaggedCommand(b, opts)
}

// ParseCommandStreamPart is the server-side entry point for reading
// whatever comes next out of a client's byte stream, given the current
// CommandStreamState. See CommandStreamState and CommandStreamMode for
// the state machine a caller drives across calls.
func ParseCommandStreamPart(b *ParseBuffer, opts ParserOptions, state *CommandStreamState) (CommandStreamPart, error) {
	return parseCommandStreamPart(b, opts, state)
}

// ParseAppendOrCatenateMessage reads the branch point that follows
// AppendOptions inside an in-progress APPEND: either a literal frame
// (AppendBeginMessage) or "CATENATE (" (AppendBeginCatenate). Call this
// directly after ParseCommandStreamPart yields an AppendCommand in state
// AppendStart, and again after every AppendStart
// produced by ParseCommandStreamPart in StreamAwaitAppendContinuation
// mode.
func ParseAppendOrCatenateMessage(b *ParseBuffer, opts ParserOptions) (AppendCommand, error) {
	return parseAppendOrCatenateMessage(b, opts)
}

// ParseCatenatePart reads one CATENATE part (URL reference, inline TEXT
// literal, or the closing paren) after AppendBeginCatenate. Call
// repeatedly until it returns AppendEndCatenate.
func ParseCatenatePart(b *ParseBuffer, opts ParserOptions) (AppendCommand, error) {
	return parseCatenatePart(b, opts)
}

// ParseResponseData reads one untagged server response line.
func ParseResponseData(b *ParseBuffer, opts ParserOptions) (ResponsePayload, error) {
	return parseResponseData(b, opts.newStackTracker())
}

// ParseTaggedResponse reads a server's final status line for a tagged
// command: tag SP ("OK"/"NO"/"BAD") SP resp-text CRLF.
func ParseTaggedResponse(b *ParseBuffer, opts ParserOptions) (TaggedResponse, error) {
	return parseTaggedResponse(b, opts.newStackTracker())
}

// NewFetchResponseState returns a fresh cursor for ParseFetchResponse.
func NewFetchResponseState() *FetchResponseState {
	return &FetchResponseState{}
}

// ParseFetchResponse emits one FetchResponseEvent per call (§4.8). On a
// LiteralStreamBegin event the caller must read exactly ByteCount bytes
// from the transport before calling again; a QuotedStreamBegin event
// already carries its bytes in QuotedData.
func ParseFetchResponse(b *ParseBuffer, st *FetchResponseState) (FetchResponseEvent, error) {
	return parseFetchResponse(b, st)
}
