package wire

// CommandStreamMode discriminates what a server-side reader loop should
// expect to parse next out of the byte stream: a fresh tagged command,
// the continuation of an in-progress APPEND once its caller has driven
// the literal/CATENATE sub-grammar to a message boundary, a bare IDLE
// "DONE" line, or a bare SASL continuation-response line.
type CommandStreamMode int

const (
	StreamAwaitCommand CommandStreamMode = iota
	StreamAwaitAppendBody
	StreamAwaitAppendContinuation
	StreamAwaitIdleDone
	StreamAwaitContinuationResponse
)

// CommandStreamState is the caller-owned cursor through a server's
// command stream (§6, §9): which CommandStreamMode the reader loop is
// in, and (while inside an in-progress APPEND) the tag and mailbox the
// upload belongs to. There is no hidden parser-side state machine; the
// caller drives Mode transitions directly after calling
// parseAppendOrCatenateMessage/parseCatenatePart, mirroring how
// FetchResponseState drives parseFetchResponse.
type CommandStreamState struct {
	Mode    CommandStreamMode
	Tag     string
	Mailbox Mailbox
}

// parseCommandStreamPart reads whichever CommandStreamPart state.Mode
// says should come next. On any failure, including ErrIncomplete, the
// cursor is restored to where the call started and state.Mode is left
// unchanged, so the caller can feed more bytes and repeat the call.
//
// StreamAwaitCommand reads a full tag SP verb suffix CRLF, except that
// APPEND is special-cased: on recognizing the verb it parses through
// AppendOptions and returns AppendStart without consuming a literal,
// setting state.Mode to StreamAwaitAppendBody so the caller can drive
// parseAppendOrCatenateMessage/parseCatenatePart directly (those are
// exported separately; see §6). Once the caller has driven a message to
// its end (a literal's bytes consumed, or EndCatenate), it sets Mode to
// StreamAwaitAppendContinuation and calls back in to learn whether the
// command is finished or another MULTIAPPEND message follows.
func parseCommandStreamPart(b *ParseBuffer, opts ParserOptions, state *CommandStreamState) (CommandStreamPart, error) {
	mark := b.Checkpoint()
	part, err := parseCommandStreamPartStep(b, opts, state)
	if err != nil {
		b.Restore(mark)
		return CommandStreamPart{}, err
	}
	return part, nil
}

func parseCommandStreamPartStep(b *ParseBuffer, opts ParserOptions, state *CommandStreamState) (CommandStreamPart, error) {
	switch state.Mode {
	case StreamAwaitIdleDone:
		if err := parseIdleDoneLine(b); err != nil {
			return CommandStreamPart{}, err
		}
		state.Mode = StreamAwaitCommand
		return CommandStreamPart{Kind: PartIdleDone}, nil

	case StreamAwaitContinuationResponse:
		line, err := parseContinuationResponseLine(b)
		if err != nil {
			return CommandStreamPart{}, err
		}
		state.Mode = StreamAwaitCommand
		return CommandStreamPart{Kind: PartContinuationResponse, ContinuationResponse: line}, nil

	case StreamAwaitAppendContinuation:
		cmd, err := parseAppendNext(b, state.Tag, state.Mailbox)
		if err != nil {
			return CommandStreamPart{}, err
		}
		if cmd.Kind == AppendFinish {
			state.Mode = StreamAwaitCommand
		} else {
			state.Mode = StreamAwaitAppendBody
		}
		return CommandStreamPart{Kind: PartAppend, Append: cmd}, nil

	case StreamAwaitAppendBody:
		return CommandStreamPart{}, parseErrorf(b.Position(),
			"parseCommandStreamPart: caller must drive parseAppendOrCatenateMessage/parseCatenatePart directly in StreamAwaitAppendBody")

	default:
		return parseCommandOrAppendStart(b, opts, state)
	}
}

func parseCommandOrAppendStart(b *ParseBuffer, opts ParserOptions, state *CommandStreamState) (CommandStreamPart, error) {
	st := opts.newStackTracker()
	mark := b.Checkpoint()
	tag, err := parseTag(b)
	if err != nil {
		return CommandStreamPart{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return CommandStreamPart{}, err
	}

	appendMark := b.Checkpoint()
	if err := fixedString(b, "APPEND", false); err == nil {
		cmd, err := parseAppendCommand(b, string(tag))
		if err != nil {
			if IsIncomplete(err) {
				return CommandStreamPart{}, err
			}
			b.Restore(mark)
			return CommandStreamPart{}, &BadCommand{Tag: string(tag), Inner: err}
		}
		state.Mode = StreamAwaitAppendBody
		state.Tag = cmd.Tag
		state.Mailbox = cmd.Mailbox
		return CommandStreamPart{Kind: PartAppend, Append: cmd}, nil
	} else if IsIncomplete(err) {
		return CommandStreamPart{}, err
	}
	b.Restore(appendMark)

	_, fn, err := parseFromLookupTable(b, commandTable)
	if err != nil {
		if IsIncomplete(err) {
			return CommandStreamPart{}, err
		}
		b.Restore(mark)
		return CommandStreamPart{}, &BadCommand{Tag: string(tag), Inner: err}
	}
	cmd, err := fn(b, st)
	if err != nil {
		if IsIncomplete(err) {
			return CommandStreamPart{}, err
		}
		b.Restore(mark)
		return CommandStreamPart{}, &BadCommand{Tag: string(tag), Inner: err}
	}
	if err := parseNewline(b); err != nil {
		if IsIncomplete(err) {
			return CommandStreamPart{}, err
		}
		b.Restore(mark)
		return CommandStreamPart{}, &BadCommand{Tag: string(tag), Inner: err}
	}
	return CommandStreamPart{Kind: PartTaggedCommand, TaggedCommand: TaggedCommand{Tag: string(tag), Command: cmd}}, nil
}

// parseIdleDoneLine reads the bare "DONE" CRLF a client sends to end an
// IDLE command (RFC 2177).
func parseIdleDoneLine(b *ParseBuffer) error {
	if err := fixedString(b, "DONE", false); err != nil {
		return err
	}
	return parseNewline(b)
}

// parseContinuationResponseLine reads a free-form line sent in response
// to a "+ " continuation prompt, e.g. a SASL step in AUTHENTICATE or the
// literal cancellation "*".
func parseContinuationResponseLine(b *ParseBuffer) ([]byte, error) {
	text, err := parseTextToNewline(b)
	if err != nil {
		return nil, err
	}
	if err := parseNewline(b); err != nil {
		return nil, err
	}
	return []byte(text), nil
}
