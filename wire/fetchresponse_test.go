package wire

import "testing"

// Scenario 4: a FETCH response streaming a literal body. The caller
// reads ByteCount bytes directly off the transport on
// LiteralStreamBegin; here those bytes are already in
// the buffer, so the test advances the cursor itself to stand in for
// that out-of-band read.
func TestFetchResponseStreamsLiteralBody(t *testing.T) {
	body := make([]byte, 1024)
	for i := range body {
		body[i] = byte('A' + i%26)
	}
	b := NewParseBuffer()
	b.Feed([]byte("* 7 FETCH (UID 42 BODY[TEXT] {1024}\r\n"))
	b.Feed(body)
	b.Feed([]byte(")\r\n"))

	st := NewFetchResponseState()

	start, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("start event: %v", err)
	}
	if start.Kind != FetchEventStart || start.SeqNum.Value() != 7 {
		t.Fatalf("start = %+v", start)
	}

	uidEv, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("uid event: %v", err)
	}
	if uidEv.Kind != FetchEventSimpleAttribute || uidEv.Attribute.Kind != AttrUID || uidEv.Attribute.UID.Value() != 42 {
		t.Fatalf("uid event = %+v", uidEv)
	}

	streamEv, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("stream event: %v", err)
	}
	if streamEv.Kind != FetchEventLiteralStreamBegin || streamEv.StreamKind != StreamBody {
		t.Fatalf("stream event = %+v", streamEv)
	}
	if streamEv.ByteCount != 1024 {
		t.Fatalf("ByteCount = %d, want 1024", streamEv.ByteCount)
	}
	if streamEv.StreamSection.Specifier != SectionText {
		t.Fatalf("section = %+v", streamEv.StreamSection)
	}

	// Stand in for reading ByteCount bytes off the transport.
	b.Consume(int(streamEv.ByteCount))

	finish, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("finish event: %v", err)
	}
	if finish.Kind != FetchEventFinish {
		t.Fatalf("finish = %+v", finish)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d, want 0", b.Readable())
	}
}

func TestFetchResponseSimpleFlagsOnly(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("* 3 FETCH (FLAGS (\\Seen \\Answered))\r\n"))
	st := NewFetchResponseState()

	start, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.SeqNum.Value() != 3 {
		t.Fatalf("seq = %d", start.SeqNum.Value())
	}

	flagsEv, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("flags event: %v", err)
	}
	if flagsEv.Attribute.Kind != AttrFlags || len(flagsEv.Attribute.Flags) != 2 {
		t.Fatalf("flags event = %+v", flagsEv)
	}

	finish, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finish.Kind != FetchEventFinish {
		t.Fatalf("finish = %+v", finish)
	}
}

// A quoted body is embedded in the line itself: the event carries the
// unescaped bytes inline instead of asking the caller to stream.
func TestFetchResponseQuotedBodyCarriedInline(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("* 4 FETCH (RFC822.TEXT \"short body\")\r\n"))
	st := NewFetchResponseState()

	if _, err := ParseFetchResponse(b, st); err != nil {
		t.Fatalf("start: %v", err)
	}
	ev, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("quoted event: %v", err)
	}
	if ev.Kind != FetchEventQuotedStreamBegin || ev.StreamKind != StreamRfc822Text {
		t.Fatalf("event = %+v", ev)
	}
	if string(ev.QuotedData) != "short body" || ev.ByteCount != 10 {
		t.Fatalf("data = %q count = %d", ev.QuotedData, ev.ByteCount)
	}
	finish, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finish.Kind != FetchEventFinish {
		t.Fatalf("finish = %+v", finish)
	}
}

// A NIL body is a SimpleAttribute, not a stream begin.
func TestFetchResponseNilBody(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("* 9 FETCH (RFC822.TEXT NIL)\r\n"))
	st := NewFetchResponseState()

	if _, err := ParseFetchResponse(b, st); err != nil {
		t.Fatalf("start: %v", err)
	}
	ev, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("nil body event: %v", err)
	}
	if ev.Kind != FetchEventSimpleAttribute || ev.Attribute.Kind != AttrNilBody {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Attribute.NilBodyKind != StreamRfc822Text {
		t.Fatalf("nil body kind = %v", ev.Attribute.NilBodyKind)
	}
	if _, err := ParseFetchResponse(b, st); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

// Truncating a FETCH response mid-event yields ErrIncomplete with the
// cursor back where the call started, so the caller can re-feed and
// repeat.
func TestFetchResponseIncompleteRestoresCursor(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("* 7 FETCH (UID "))
	st := NewFetchResponseState()

	if _, err := ParseFetchResponse(b, st); err != nil {
		t.Fatalf("start: %v", err)
	}
	pos := b.Position()
	_, err := ParseFetchResponse(b, st)
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
	if b.Position() != pos {
		t.Fatalf("cursor moved: %d != %d", b.Position(), pos)
	}
	b.Feed([]byte("42)\r\n"))
	ev, err := ParseFetchResponse(b, st)
	if err != nil {
		t.Fatalf("after re-feed: %v", err)
	}
	if ev.Attribute.Kind != AttrUID || ev.Attribute.UID.Value() != 42 {
		t.Fatalf("event = %+v", ev)
	}
}
