package wire

// ParseBuffer is a growable byte window with a read cursor. Bytes are
// appended at the tail by Feed and consumed from the head by the grammar.
// Backtracking never copies the backing array: Checkpoint captures the
// cursor only, and Restore rewinds it.
//
// Invariant: 0 <= cursor <= len(data).
type ParseBuffer struct {
	data   []byte
	cursor int
}

// NewParseBuffer returns an empty buffer ready to receive bytes via Feed.
func NewParseBuffer() *ParseBuffer {
	return &ParseBuffer{}
}

// Mark is a saved cursor position. Marks are only valid for the
// ParseBuffer that produced them and must not outlive a top-level parse
// call; Compact invalidates any outstanding marks.
type Mark int

// Feed appends bytes to the tail of the buffer. The I/O layer owns this
// call; the grammar never writes to the buffer directly.
func (b *ParseBuffer) Feed(p []byte) {
	b.data = append(b.data, p...)
}

// Readable reports how many unconsumed bytes remain.
func (b *ParseBuffer) Readable() int {
	return len(b.data) - b.cursor
}

// Peek returns the next n unconsumed bytes without advancing the cursor.
// If fewer than n bytes are available it returns ErrIncomplete.
func (b *ParseBuffer) Peek(n int) ([]byte, error) {
	if b.cursor+n > len(b.data) {
		return nil, ErrIncomplete
	}
	return b.data[b.cursor : b.cursor+n], nil
}

// PeekByte returns the next unconsumed byte without advancing the cursor.
func (b *ParseBuffer) PeekByte() (byte, error) {
	if b.cursor >= len(b.data) {
		return 0, ErrIncomplete
	}
	return b.data[b.cursor], nil
}

// PeekAt returns the byte at offset n past the cursor (0 is the same as
// PeekByte) without advancing, or ErrIncomplete if it is not yet buffered.
func (b *ParseBuffer) PeekAt(n int) (byte, error) {
	if b.cursor+n >= len(b.data) {
		return 0, ErrIncomplete
	}
	return b.data[b.cursor+n], nil
}

// Consume advances the cursor by n bytes. It panics if n would push the
// cursor past the write end; rules must Peek before they Consume.
func (b *ParseBuffer) Consume(n int) {
	if b.cursor+n > len(b.data) {
		panic("imapwire: Consume past end of buffer")
	}
	b.cursor += n
}

// Checkpoint saves the current cursor. Checkpoints nest strictly: calling
// Restore on an outer mark abandons any checkpoints taken after it.
func (b *ParseBuffer) Checkpoint() Mark {
	return Mark(b.cursor)
}

// Restore rewinds the cursor to a previously saved Mark.
func (b *ParseBuffer) Restore(m Mark) {
	b.cursor = int(m)
}

// Position returns the current cursor, for error reporting.
func (b *ParseBuffer) Position() int {
	return b.cursor
}

// Compact drops consumed bytes from the front of the backing array. It
// must only be called between top-level parse invocations, when no marks
// are outstanding; any mark taken before a Compact is invalid afterward.
func (b *ParseBuffer) Compact() {
	if b.cursor == 0 {
		return
	}
	n := copy(b.data, b.data[b.cursor:])
	b.data = b.data[:n]
	b.cursor = 0
}
