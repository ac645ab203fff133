package wire

import "testing"

// Scenario 3: t3 APPEND INBOX (\Seen) {11+}\r\nHello World\r\n, driven
// through the full CommandStreamState machine a server reader loop uses.
func TestAppendCommandStreamMachine(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t3 APPEND INBOX (\\Seen) {11+}\r\nHello World\r\n"))
	opts := DefaultParserOptions()
	state := &CommandStreamState{Mode: StreamAwaitCommand}

	part, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("ParseCommandStreamPart (start): %v", err)
	}
	if part.Kind != PartAppend || part.Append.Kind != AppendStart {
		t.Fatalf("part = %+v", part)
	}
	if part.Append.Tag != "t3" || string(part.Append.Mailbox) != "INBOX" {
		t.Fatalf("tag/mailbox = %q/%q", part.Append.Tag, part.Append.Mailbox)
	}
	if len(part.Append.Options.Flags) != 1 || part.Append.Options.Flags[0] != FlagSeen {
		t.Fatalf("flags = %v", part.Append.Options.Flags)
	}
	if state.Mode != StreamAwaitAppendBody {
		t.Fatalf("mode = %v, want StreamAwaitAppendBody", state.Mode)
	}

	msg, err := ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("ParseAppendOrCatenateMessage: %v", err)
	}
	if msg.Kind != AppendBeginMessage {
		t.Fatalf("msg.Kind = %v, want AppendBeginMessage", msg.Kind)
	}
	if msg.Data.ByteCount != 11 {
		t.Fatalf("ByteCount = %d, want 11", msg.Data.ByteCount)
	}
	if msg.Data.WithoutContentTransferEncoding {
		t.Fatalf("expected a regular LITERAL+, not a ~{N} literal")
	}

	// Stand in for reading ByteCount bytes off the transport.
	b.Consume(int(msg.Data.ByteCount))
	state.Mode = StreamAwaitAppendContinuation

	final, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("ParseCommandStreamPart (finish): %v", err)
	}
	if final.Kind != PartAppend || final.Append.Kind != AppendFinish {
		t.Fatalf("final = %+v", final)
	}
	if final.Append.Tag != "t3" {
		t.Fatalf("final tag = %q", final.Append.Tag)
	}
	if state.Mode != StreamAwaitCommand {
		t.Fatalf("mode = %v, want StreamAwaitCommand", state.Mode)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d, want 0", b.Readable())
	}
}

func TestAppendBareLiteralIsSync(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t1 APPEND Drafts {5}\r\n"))
	opts := DefaultParserOptions()
	state := &CommandStreamState{Mode: StreamAwaitCommand}

	part, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("ParseCommandStreamPart: %v", err)
	}
	if part.Append.Kind != AppendStart {
		t.Fatalf("kind = %v", part.Append.Kind)
	}

	msg, err := ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("ParseAppendOrCatenateMessage: %v", err)
	}
	if msg.Data.ByteCount != 5 {
		t.Fatalf("ByteCount = %d, want 5", msg.Data.ByteCount)
	}
}

// RFC 3502 MULTIAPPEND: a second append-message (with its own flag
// list) follows the first message's bytes, sharing the tag and mailbox.
func TestAppendMultipleMessages(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t7 APPEND Saved {3+}\r\nabc (\\Flagged) {4+}\r\ndefg\r\n"))
	opts := DefaultParserOptions()
	state := &CommandStreamState{Mode: StreamAwaitCommand}

	part, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if part.Append.Kind != AppendStart || len(part.Append.Options.Flags) != 0 {
		t.Fatalf("first start = %+v", part.Append)
	}

	msg, err := ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("first message: %v", err)
	}
	if msg.Data.ByteCount != 3 {
		t.Fatalf("first ByteCount = %d", msg.Data.ByteCount)
	}
	b.Consume(3)
	state.Mode = StreamAwaitAppendContinuation

	part, err = ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("continuation: %v", err)
	}
	if part.Append.Kind != AppendStart {
		t.Fatalf("second start = %+v", part.Append)
	}
	if part.Append.Tag != "t7" || string(part.Append.Mailbox) != "Saved" {
		t.Fatalf("second start tag/mailbox = %q/%q", part.Append.Tag, part.Append.Mailbox)
	}
	if len(part.Append.Options.Flags) != 1 || part.Append.Options.Flags[0] != FlagFlagged {
		t.Fatalf("second start flags = %v", part.Append.Options.Flags)
	}
	if state.Mode != StreamAwaitAppendBody {
		t.Fatalf("mode = %v", state.Mode)
	}

	msg, err = ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("second message: %v", err)
	}
	if msg.Data.ByteCount != 4 {
		t.Fatalf("second ByteCount = %d", msg.Data.ByteCount)
	}
	b.Consume(4)
	state.Mode = StreamAwaitAppendContinuation

	part, err = ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if part.Append.Kind != AppendFinish {
		t.Fatalf("final = %+v", part.Append)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d", b.Readable())
	}
}

// CATENATE (RFC 4469): a message assembled from a URL part and an
// inline TEXT literal.
func TestAppendCatenateParts(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t8 APPEND Drafts CATENATE (URL \"/INBOX/;uid=20/;section=1.MIME\" TEXT {3}\r\nabc)\r\n"))
	opts := DefaultParserOptions()
	state := &CommandStreamState{Mode: StreamAwaitCommand}

	part, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if part.Append.Kind != AppendStart {
		t.Fatalf("start = %+v", part.Append)
	}

	msg, err := ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("branch: %v", err)
	}
	if msg.Kind != AppendBeginCatenate {
		t.Fatalf("branch = %+v", msg)
	}

	cat, err := ParseCatenatePart(b, opts)
	if err != nil {
		t.Fatalf("url part: %v", err)
	}
	if cat.Kind != AppendCatenateURL || cat.CatenateURL != "/INBOX/;uid=20/;section=1.MIME" {
		t.Fatalf("url part = %+v", cat)
	}

	cat, err = ParseCatenatePart(b, opts)
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	if cat.Kind != AppendCatenateData || cat.Data.ByteCount != 3 {
		t.Fatalf("text part = %+v", cat)
	}
	b.Consume(3)

	cat, err = ParseCatenatePart(b, opts)
	if err != nil {
		t.Fatalf("end part: %v", err)
	}
	if cat.Kind != AppendEndCatenate {
		t.Fatalf("end part = %+v", cat)
	}
	state.Mode = StreamAwaitAppendContinuation

	part, err = ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if part.Append.Kind != AppendFinish {
		t.Fatalf("final = %+v", part.Append)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d", b.Readable())
	}
}

func TestAppendLiteral8SetsEncodingFlag(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t9 APPEND INBOX ~{4}\r\n"))
	opts := DefaultParserOptions()
	state := &CommandStreamState{Mode: StreamAwaitCommand}

	if _, err := ParseCommandStreamPart(b, opts, state); err != nil {
		t.Fatalf("start: %v", err)
	}
	msg, err := ParseAppendOrCatenateMessage(b, opts)
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if !msg.Data.WithoutContentTransferEncoding {
		t.Fatalf("expected LITERAL8 flag on ~{N}")
	}
}
