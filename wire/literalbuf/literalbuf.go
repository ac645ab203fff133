// Package literalbuf helps a caller hold a streamed IMAP literal body
// (a FETCH response's BODY[...] bytes, or an APPEND/CATENATE message)
// without committing to an in-memory buffer for every literal, however
// large. The wire parser itself never buffers literal bytes (see
// wire.FetchResponseEvent, wire.AppendCommand): it hands the caller a
// byte count and expects the caller to read that many bytes off the
// transport directly. This package is that "somewhere to put them"
// for callers who don't already have their own spill-to-disk story.
package literalbuf

import (
	"io"

	"crawshaw.io/iox"
)

// Store hands out buffers for literal bodies, spilling to a temp file
// once a single literal exceeds maxInMemory bytes.
type Store struct {
	filer *iox.Filer
}

// NewStore creates a Store. maxInMemory bounds how large a single
// literal can grow before it spills to disk; 0 means iox's default.
func NewStore(maxInMemory int64) *Store {
	return &Store{filer: iox.NewFiler(int(maxInMemory))}
}

// Literal is a single buffered literal body: written once while the
// caller drains ByteCount bytes from the transport, then read back (and
// Seek(0, io.SeekStart)) as many times as needed before Close.
type Literal struct {
	buf *iox.BufferFile
}

// New returns a Literal sized as a hint for sizeHint bytes (0 lets iox
// pick its own default).
func (s *Store) New(sizeHint int) *Literal {
	return &Literal{buf: s.filer.BufferFile(sizeHint)}
}

func (l *Literal) Write(p []byte) (int, error) { return l.buf.Write(p) }

// Rewind seeks back to the start so a previously written Literal can be
// read again, e.g. once by a parser re-driving content-transfer-encoding
// decoding and once by a caller persisting the raw bytes.
func (l *Literal) Rewind() error {
	_, err := l.buf.Seek(0, io.SeekStart)
	return err
}

func (l *Literal) Read(p []byte) (int, error) { return l.buf.Read(p) }

func (l *Literal) Close() error { return l.buf.Close() }

// ReadFull drains exactly n bytes from r into a fresh Literal, the usual
// response to a wire.FetchResponseEvent/wire.AppendCommand that carries
// a ByteCount: the caller's read loop does this, then resumes parsing.
func (s *Store) ReadFull(r io.Reader, n uint64) (*Literal, error) {
	lit := s.New(int(n))
	if _, err := io.CopyN(lit, r, int64(n)); err != nil {
		lit.Close()
		return nil, err
	}
	if err := lit.Rewind(); err != nil {
		lit.Close()
		return nil, err
	}
	return lit, nil
}
