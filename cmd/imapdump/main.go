// Command imapdump parses a captured IMAP byte stream and logs the
// commands or responses it recognizes. It is meant for eyeballing a
// session capture, not as a production component.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/inletmail/imapwire/wire"
	"github.com/inletmail/imapwire/wire/literalbuf"
	"github.com/inletmail/imapwire/wire/mutf7"
)

// mailboxName renders a wire mailbox for logging, decoding the modified
// UTF-7 name when it is well-formed and falling back to the raw bytes
// when it is not.
func mailboxName(m wire.Mailbox) string {
	dec, err := mutf7.Decode([]byte(m))
	if err != nil {
		return string(m)
	}
	return string(dec)
}

func main() {
	flagServer := flag.Bool("server", false, "parse as a server's response stream instead of a client's command stream")
	flagIn := flag.String("in", "", "capture file to read (default stdin)")
	flagConfig := flag.String("config", "", "optional YAML config file (parser limits, log mode)")
	flag.Parse()

	cfg, err := LoadConfig(*flagConfig)
	if err != nil {
		panic(err)
	}

	logCfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		logCfg = zap.NewDevelopmentConfig()
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	opts := wire.DefaultParserOptions()
	opts.MessageBodySizeLimit = cfg.Parser.MessageBodySizeLimit
	opts.MaxDepth = cfg.Parser.MaxDepth

	in := os.Stdin
	if *flagIn != "" {
		f, err := os.Open(*flagIn)
		if err != nil {
			logger.Fatal("open capture file", zap.Error(err))
		}
		defer f.Close()
		in = f
	}

	store := literalbuf.NewStore(cfg.Parser.LiteralMaxInMemory)

	if *flagServer {
		if err := dumpResponses(in, store, opts, logger); err != nil {
			logger.Fatal("dump responses", zap.Error(err))
		}
		return
	}
	if err := dumpCommands(in, store, opts, logger); err != nil {
		logger.Fatal("dump commands", zap.Error(err))
	}
}

func dumpCommands(r io.Reader, store *literalbuf.Store, opts wire.ParserOptions, logger *zap.Logger) error {
	buf := wire.NewParseBuffer()
	state := &wire.CommandStreamState{}

	feeder := newFeeder(r, buf)
	for {
		part, err := wire.ParseCommandStreamPart(buf, opts, state)
		if wire.IsIncomplete(err) {
			if err := feeder.more(); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			logger.Warn("parse error", zap.Error(err))
			if !skipLine(buf) {
				if err := feeder.more(); err != nil {
					return err
				}
			}
			continue
		}
		switch part.Kind {
		case wire.PartTaggedCommand:
			fields := []zap.Field{
				zap.String("tag", part.TaggedCommand.Tag),
				zap.Int("kind", int(part.TaggedCommand.Command.Kind)),
			}
			if len(part.TaggedCommand.Command.Mailbox) > 0 {
				fields = append(fields, zap.String("mailbox", mailboxName(part.TaggedCommand.Command.Mailbox)))
			}
			logger.Info("command", fields...)
		case wire.PartAppend:
			logAppend(part.Append, state, feeder, store, opts, logger)
		case wire.PartIdleDone:
			logger.Info("idle done")
		case wire.PartContinuationResponse:
			logger.Info("continuation response", zap.ByteString("data", part.ContinuationResponse))
		}
	}
}

func logAppend(cmd wire.AppendCommand, state *wire.CommandStreamState, feeder *feeder, store *literalbuf.Store, opts wire.ParserOptions, logger *zap.Logger) {
	for {
		switch cmd.Kind {
		case wire.AppendStart:
			logger.Info("append", zap.String("tag", cmd.Tag), zap.String("mailbox", mailboxName(cmd.Mailbox)))
			next, err := retryIncomplete(feeder, func() (wire.AppendCommand, error) {
				return wire.ParseAppendOrCatenateMessage(feeder.buf, opts)
			})
			if err != nil {
				logger.Warn("append error", zap.Error(err))
				return
			}
			cmd = next
		case wire.AppendBeginMessage:
			lit, err := store.ReadFull(feeder.literal(cmd.Data.ByteCount), cmd.Data.ByteCount)
			if err != nil {
				logger.Warn("append literal read", zap.Error(err))
				return
			}
			logger.Info("append literal", zap.Uint64("bytes", cmd.Data.ByteCount))
			lit.Close()
			state.Mode = wire.StreamAwaitAppendContinuation
			part, err := retryIncomplete(feeder, func() (wire.CommandStreamPart, error) {
				return wire.ParseCommandStreamPart(feeder.buf, opts, state)
			})
			if err != nil {
				logger.Warn("append continuation", zap.Error(err))
				return
			}
			cmd = part.Append
		case wire.AppendBeginCatenate:
			next, err := retryIncomplete(feeder, func() (wire.AppendCommand, error) {
				return wire.ParseCatenatePart(feeder.buf, opts)
			})
			if err != nil {
				logger.Warn("catenate part", zap.Error(err))
				return
			}
			cmd = next
		case wire.AppendCatenateURL:
			logger.Info("catenate url", zap.String("url", cmd.CatenateURL))
			next, err := retryIncomplete(feeder, func() (wire.AppendCommand, error) {
				return wire.ParseCatenatePart(feeder.buf, opts)
			})
			if err != nil {
				logger.Warn("catenate part", zap.Error(err))
				return
			}
			cmd = next
		case wire.AppendCatenateData:
			lit, err := store.ReadFull(feeder.literal(cmd.Data.ByteCount), cmd.Data.ByteCount)
			if err != nil {
				logger.Warn("catenate literal read", zap.Error(err))
				return
			}
			lit.Close()
			next, err := retryIncomplete(feeder, func() (wire.AppendCommand, error) {
				return wire.ParseCatenatePart(feeder.buf, opts)
			})
			if err != nil {
				logger.Warn("catenate part", zap.Error(err))
				return
			}
			cmd = next
		case wire.AppendEndCatenate:
			state.Mode = wire.StreamAwaitAppendContinuation
			part, err := retryIncomplete(feeder, func() (wire.CommandStreamPart, error) {
				return wire.ParseCommandStreamPart(feeder.buf, opts, state)
			})
			if err != nil {
				logger.Warn("append continuation", zap.Error(err))
				return
			}
			cmd = part.Append
		case wire.AppendFinish:
			logger.Info("append finished", zap.String("tag", cmd.Tag))
			return
		default:
			return
		}
	}
}

func dumpResponses(r io.Reader, store *literalbuf.Store, opts wire.ParserOptions, logger *zap.Logger) error {
	buf := wire.NewParseBuffer()
	feeder := newFeeder(r, buf)
	for {
		payload, err := wire.ParseResponseData(buf, opts)
		if err == nil {
			logger.Info("response", zap.Int("kind", int(payload.Kind)))
			continue
		}
		if wire.IsIncomplete(err) {
			if ferr := feeder.more(); ferr != nil {
				return ferr
			}
			continue
		}
		// Not a line-shaped response. A FETCH carrying a streamed body
		// is the usual cause; try the event-per-call parser before
		// giving up on the line.
		if dumpFetchResponse(feeder, store, logger) {
			continue
		}
		logger.Warn("parse error", zap.Error(err))
		if !skipLine(buf) {
			if ferr := feeder.more(); ferr != nil {
				return ferr
			}
		}
	}
}

// skipLine drops buffered bytes through the next LF so the dump can
// resynchronize after a malformed line, reporting whether a full line
// was dropped. Resynchronization is deliberately the caller's job, not
// the parser's.
func skipLine(buf *wire.ParseBuffer) bool {
	mark := buf.Checkpoint()
	for {
		c, err := buf.PeekByte()
		if err != nil {
			buf.Restore(mark)
			return false
		}
		buf.Consume(1)
		if c == '\n' {
			return true
		}
	}
}

// dumpFetchResponse drives wire.ParseFetchResponse through one full
// "* N FETCH (...)" response, draining streamed bodies into store. It
// reports false if the input is not a FETCH response at all, leaving
// the buffer cursor where it found it.
func dumpFetchResponse(f *feeder, store *literalbuf.Store, logger *zap.Logger) bool {
	st := wire.NewFetchResponseState()
	started := false
	for {
		ev, err := retryIncomplete(f, func() (wire.FetchResponseEvent, error) {
			return wire.ParseFetchResponse(f.buf, st)
		})
		if err != nil {
			if !started {
				return false
			}
			logger.Warn("fetch response", zap.Error(err))
			return true
		}
		started = true
		switch ev.Kind {
		case wire.FetchEventStart:
			logger.Info("fetch", zap.Uint32("seq", ev.SeqNum.Value()))
		case wire.FetchEventSimpleAttribute:
			logger.Info("fetch attribute", zap.Int("kind", int(ev.Attribute.Kind)))
		case wire.FetchEventLiteralStreamBegin:
			lit, lerr := store.ReadFull(f.literal(uint64(ev.ByteCount)), uint64(ev.ByteCount))
			if lerr != nil {
				logger.Warn("fetch literal read", zap.Error(lerr))
				return true
			}
			logger.Info("fetch literal", zap.Uint32("bytes", ev.ByteCount))
			lit.Close()
		case wire.FetchEventQuotedStreamBegin:
			logger.Info("fetch quoted body", zap.Uint32("bytes", ev.ByteCount))
		case wire.FetchEventFinish:
			return true
		}
	}
}

type feeder struct {
	r   io.Reader
	buf *wire.ParseBuffer
	tmp [4096]byte
}

func newFeeder(r io.Reader, buf *wire.ParseBuffer) *feeder {
	return &feeder{r: r, buf: buf}
}

func (f *feeder) more() error {
	n, err := f.r.Read(f.tmp[:])
	if n > 0 {
		f.buf.Feed(f.tmp[:n])
	}
	if err != nil {
		if n > 0 && err == io.EOF {
			return nil
		}
		return err
	}
	return nil
}

// literal returns an io.Reader yielding exactly n literal-body bytes.
// The feeder reads the transport in fixed-size chunks, so the start of
// a body is usually sitting in the parse buffer already; those bytes
// are consumed first, before touching the transport.
func (f *feeder) literal(n uint64) io.Reader {
	return &literalReader{f: f, remaining: n}
}

type literalReader struct {
	f         *feeder
	remaining uint64
}

func (lr *literalReader) Read(p []byte) (int, error) {
	if lr.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > lr.remaining {
		p = p[:lr.remaining]
	}
	if buffered := lr.f.buf.Readable(); buffered > 0 {
		if buffered > len(p) {
			buffered = len(p)
		}
		data, err := lr.f.buf.Peek(buffered)
		if err != nil {
			return 0, err
		}
		n := copy(p, data)
		lr.f.buf.Consume(n)
		lr.remaining -= uint64(n)
		return n, nil
	}
	n, err := lr.f.r.Read(p)
	lr.remaining -= uint64(n)
	return n, err
}

func retryIncomplete[T any](f *feeder, fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if !wire.IsIncomplete(err) {
			return v, err
		}
		if ferr := f.more(); ferr != nil {
			var zero T
			return zero, fmt.Errorf("feed: %w", ferr)
		}
	}
}
