package wire

import "testing"

func TestParseBufferPeekIncomplete(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("ab"))
	if _, err := b.Peek(3); !IsIncomplete(err) {
		t.Fatalf("Peek(3) on 2 bytes = %v, want ErrIncomplete", err)
	}
	got, err := b.Peek(2)
	if err != nil {
		t.Fatalf("Peek(2): %v", err)
	}
	if string(got) != "ab" {
		t.Fatalf("Peek(2) = %q", got)
	}
}

func TestParseBufferCheckpointRestore(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("hello"))
	mark := b.Checkpoint()
	b.Consume(3)
	if b.Position() != 3 {
		t.Fatalf("Position = %d, want 3", b.Position())
	}
	b.Restore(mark)
	if b.Position() != 0 {
		t.Fatalf("Position after Restore = %d, want 0", b.Position())
	}
	if b.Readable() != 5 {
		t.Fatalf("Readable = %d, want 5", b.Readable())
	}
}

func TestParseBufferNestedCheckpoints(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("abcdef"))
	outer := b.Checkpoint()
	b.Consume(2)
	inner := b.Checkpoint()
	b.Consume(2)
	b.Restore(inner)
	if b.Position() != 2 {
		t.Fatalf("Position after inner restore = %d, want 2", b.Position())
	}
	b.Restore(outer)
	if b.Position() != 0 {
		t.Fatalf("Position after outer restore = %d, want 0", b.Position())
	}
}

func TestParseBufferCompact(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("abcdef"))
	b.Consume(4)
	b.Compact()
	if b.Position() != 0 {
		t.Fatalf("Position after Compact = %d, want 0", b.Position())
	}
	got, err := b.Peek(2)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if string(got) != "ef" {
		t.Fatalf("Peek after Compact = %q, want ef", got)
	}
}

func TestParseBufferConsumePastEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Consume past end did not panic")
		}
	}()
	b := NewParseBuffer()
	b.Feed([]byte("ab"))
	b.Consume(3)
}
