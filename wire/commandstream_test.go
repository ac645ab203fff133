package wire

import "testing"

func TestIdleDoneLine(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("DONE\r\n"))
	state := &CommandStreamState{Mode: StreamAwaitIdleDone}
	part, err := ParseCommandStreamPart(b, DefaultParserOptions(), state)
	if err != nil {
		t.Fatalf("ParseCommandStreamPart: %v", err)
	}
	if part.Kind != PartIdleDone {
		t.Fatalf("part = %+v", part)
	}
	if state.Mode != StreamAwaitCommand {
		t.Fatalf("mode = %v", state.Mode)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d", b.Readable())
	}
}

// A SASL continuation line is free-form text up to and including its
// CRLF; nothing of the line may be left behind for the next command.
func TestContinuationResponseConsumesNewline(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("dXNlcg==\r\na2 NOOP\r\n"))
	state := &CommandStreamState{Mode: StreamAwaitContinuationResponse}
	opts := DefaultParserOptions()

	part, err := ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("continuation: %v", err)
	}
	if part.Kind != PartContinuationResponse || string(part.ContinuationResponse) != "dXNlcg==" {
		t.Fatalf("part = %+v", part)
	}

	part, err = ParseCommandStreamPart(b, opts, state)
	if err != nil {
		t.Fatalf("follow-up command: %v", err)
	}
	if part.Kind != PartTaggedCommand || part.TaggedCommand.Command.Kind != CmdNoop {
		t.Fatalf("part = %+v", part)
	}
}

func TestCommandStreamIncompleteLeavesCursor(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("a1 SELE"))
	state := &CommandStreamState{Mode: StreamAwaitCommand}
	_, err := ParseCommandStreamPart(b, DefaultParserOptions(), state)
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
	if b.Position() != 0 {
		t.Fatalf("cursor moved: %d", b.Position())
	}
	b.Feed([]byte("CT INBOX\r\n"))
	part, err := ParseCommandStreamPart(b, DefaultParserOptions(), state)
	if err != nil {
		t.Fatalf("after re-feed: %v", err)
	}
	if part.TaggedCommand.Command.Kind != CmdSelect {
		t.Fatalf("part = %+v", part)
	}
}
