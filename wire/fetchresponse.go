package wire

// FetchResponseState is the caller-owned cursor through a streaming
// FETCH response parse: whether the "* N FETCH (" opener has been read,
// and whether the closing ")" CRLF has been reached. There is no hidden
// per-parser state machine (§9): the only state besides ParseBuffer
// itself is this small struct, which the caller stores between calls to
// parseFetchResponse.
type FetchResponseState struct {
	started bool
	done    bool
}

// parseFetchResponse emits one FetchResponseEvent per call (§4.8, §6).
// On a LiteralStreamBegin event the caller must read exactly ByteCount
// bytes from the transport before calling again; the parser does not
// buffer streamed bodies. A QuotedStreamBegin event instead carries the
// (already unescaped) bytes inline in QuotedData, since a quoted body
// is embedded in the response line itself. On any failure, including
// ErrIncomplete, the cursor is restored to where this call started, so
// the caller can feed more bytes and repeat the call.
func parseFetchResponse(b *ParseBuffer, st *FetchResponseState) (FetchResponseEvent, error) {
	mark := b.Checkpoint()
	ev, err := parseFetchResponseStep(b, st)
	if err != nil {
		b.Restore(mark)
		return FetchResponseEvent{}, err
	}
	return ev, nil
}

func parseFetchResponseStep(b *ParseBuffer, st *FetchResponseState) (FetchResponseEvent, error) {
	if !st.started {
		if err := fixedString(b, "*", true); err != nil {
			return FetchResponseEvent{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return FetchResponseEvent{}, err
		}
		n, err := parseNumber(b)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		if err := parseSpacesThen(b, "FETCH"); err != nil {
			return FetchResponseEvent{}, err
		}
		if err := parseSpacesThen(b, "("); err != nil {
			return FetchResponseEvent{}, err
		}
		seq, err := NewMessageIdentifier[SeqBrand](n)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		st.started = true
		return FetchResponseEvent{Kind: FetchEventStart, SeqNum: seq}, nil
	}
	if st.done {
		return FetchResponseEvent{}, parseErrorf(b.Position(), "parseFetchResponse called after Finish")
	}
	// A separator space precedes every attribute after the first and
	// follows a streamed body; callers re-enter right at that boundary.
	c, err := b.PeekByte()
	if err != nil {
		return FetchResponseEvent{}, err
	}
	if c == ' ' {
		if _, err := parseSpaces(b); err != nil {
			return FetchResponseEvent{}, err
		}
		if c, err = b.PeekByte(); err != nil {
			return FetchResponseEvent{}, err
		}
	}
	if c == ')' {
		b.Consume(1)
		if err := parseNewline(b); err != nil {
			return FetchResponseEvent{}, err
		}
		st.done = true
		return FetchResponseEvent{Kind: FetchEventFinish}, nil
	}
	return parseFetchAttributeEvent(b)
}

var fetchResponseAttributeTable = map[string]func(*ParseBuffer) (FetchResponseEvent, error){
	"ENVELOPE":      parseEnvelopeEvent,
	"FLAGS":         parseFlagsEvent,
	"INTERNALDATE":  parseInternalDateEvent,
	"UID":           parseUIDEvent,
	"MODSEQ":        parseModSeqEvent,
	"X-GM-MSGID":    parseGmailIDEvent(AttrGmailMsgID),
	"X-GM-THRID":    parseGmailIDEvent(AttrGmailThrID),
	"X-GM-LABELS":   parseGmailLabelsEvent,
	"RFC822.SIZE":   parseRfc822SizeEvent,
	"RFC822.TEXT":   parseStreamOrNilEvent(StreamRfc822Text),
	"RFC822.HEADER": parseStreamOrNilEvent(StreamRfc822Header),
	"RFC822":        parseStreamOrNilEvent(StreamRfc822),
	"BODYSTRUCTURE": parseBodyStructureEvent(true),
	"BODY":          parseBodyEvent,
	"BINARY":        parseBinaryEvent,
	"BINARY.SIZE":   parseBinarySizeEvent,
	"PREVIEW":       parsePreviewEvent,
}

func parseFetchAttributeEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	_, fn, err := parseFromLookupTable(b, fetchResponseAttributeTable)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return fn(b)
}

func simpleAttrEvent(attr MessageAttribute) FetchResponseEvent {
	return FetchResponseEvent{Kind: FetchEventSimpleAttribute, Attribute: attr}
}

func parseEnvelopeEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	env, err := parseEnvelope(b, NewStackTracker(0))
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrEnvelope, Envelope: env}), nil
}

func parseFlagsEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return FetchResponseEvent{}, err
	}
	flags, err := parseFlagListBody(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrFlags, Flags: flags}), nil
}

func parseInternalDateEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	d, err := parseInternalDate(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrInternalDate, InternalDate: d}), nil
}

func parseUIDEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	n, err := parseNZNumber(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	uid, err := NewMessageIdentifier[UIDBrand](n)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrUID, UID: uid}), nil
}

func parseModSeqEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return FetchResponseEvent{}, err
	}
	n, _, err := parseUnsignedInt64(b, false)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrModSeq, ModSeq: n}), nil
}

func parseGmailIDEvent(kind MessageAttributeKind) func(*ParseBuffer) (FetchResponseEvent, error) {
	return func(b *ParseBuffer) (FetchResponseEvent, error) {
		if _, err := parseSpaces(b); err != nil {
			return FetchResponseEvent{}, err
		}
		n, _, err := parseUnsignedInt64(b, false)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		return simpleAttrEvent(MessageAttribute{Kind: kind, GmailID: n}), nil
	}
}

func parseGmailLabelsEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return FetchResponseEvent{}, err
	}
	var labels []string
	if c, err := b.PeekByte(); err != nil {
		return FetchResponseEvent{}, err
	} else if c != ')' {
		ls, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (string, error) {
			v, err := parseAstring(b, 1<<16)
			return string(v), err
		})
		if err != nil {
			return FetchResponseEvent{}, err
		}
		labels = ls
	}
	if err := fixedString(b, ")", true); err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrGmailLabels, GmailLabels: labels}), nil
}

func parseRfc822SizeEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	n, err := parseNumber(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrRfc822Size, Rfc822Size: n}), nil
}

// parseStreamOrNilEvent handles RFC822/RFC822.HEADER/RFC822.TEXT, which
// are either NIL (reported as a SimpleAttribute per §4.8) or a literal
// or quoted stream begin.
func parseStreamOrNilEvent(kind StreamKind) func(*ParseBuffer) (FetchResponseEvent, error) {
	return func(b *ParseBuffer) (FetchResponseEvent, error) {
		if _, err := parseSpaces(b); err != nil {
			return FetchResponseEvent{}, err
		}
		return parseStreamBeginOrNil(b, kind, Section{})
	}
}

func parseStreamBeginOrNil(b *ParseBuffer, kind StreamKind, section Section) (FetchResponseEvent, error) {
	c, err := b.PeekByte()
	if err != nil {
		return FetchResponseEvent{}, err
	}
	if c == 'N' || c == 'n' {
		if err := parseNIL(b); err != nil {
			return FetchResponseEvent{}, err
		}
		return simpleAttrEvent(MessageAttribute{Kind: AttrNilBody, NilBodyKind: kind}), nil
	}
	if c == '"' {
		q, err := parseQuoted(b)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		return FetchResponseEvent{
			Kind: FetchEventQuotedStreamBegin, StreamKind: kind,
			StreamSection: section, ByteCount: uint32(len(q)), QuotedData: q,
		}, nil
	}
	n, _, err := parseLiteralSize(b, 0)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return FetchResponseEvent{
		Kind: FetchEventLiteralStreamBegin, StreamKind: kind,
		StreamSection: section, ByteCount: uint32(n),
	}, nil
}

func parseBodyStructureEvent(extended bool) func(*ParseBuffer) (FetchResponseEvent, error) {
	return func(b *ParseBuffer) (FetchResponseEvent, error) {
		if _, err := parseSpaces(b); err != nil {
			return FetchResponseEvent{}, err
		}
		raw, err := parseParenthesizedRaw(b)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		return simpleAttrEvent(MessageAttribute{Kind: AttrBodyStructure, BodyStructure: BodyStructure{Raw: raw, Extended: extended}}), nil
	}
}

// parseParenthesizedRaw consumes a balanced "(...)" group and returns
// its raw bytes including the outer parentheses, without interpreting
// it: BODYSTRUCTURE's MIME tree grammar is out of scope here (see
// BodyStructure's doc comment in ast.go).
func parseParenthesizedRaw(b *ParseBuffer) ([]byte, error) {
	if err := fixedString(b, "(", true); err != nil {
		return nil, err
	}
	depth := 1
	n := 0
	inQuotes := false
	for depth > 0 {
		c, err := b.PeekAt(n)
		if err != nil {
			return nil, err
		}
		if inQuotes && c == '\\' {
			n++
			if _, err := b.PeekAt(n); err != nil {
				return nil, err
			}
		} else if c == '"' {
			inQuotes = !inQuotes
		} else if !inQuotes && c == '(' {
			depth++
		} else if !inQuotes && c == ')' {
			depth--
		}
		n++
	}
	rest, err := b.Peek(n)
	if err != nil {
		return nil, err
	}
	full := append([]byte{'('}, rest...)
	b.Consume(n)
	return full, nil
}

// parseBodyEvent handles the streaming "BODY[section]<partial>" form;
// bare "BODY" (no brackets, the BODYSTRUCTURE-without-extensions
// attribute) is handled by the same dispatch slot.
func parseBodyEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if c, err := b.PeekByte(); err != nil {
		return FetchResponseEvent{}, err
	} else if c != '[' {
		return parseBodyStructureEvent(false)(b)
	}
	section, err := parseSection(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	var offset uint32
	hasOffset := false
	if c, err := b.PeekByte(); err != nil {
		return FetchResponseEvent{}, err
	} else if c == '<' {
		b.Consume(1)
		n, err := parseNumber(b)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		if err := fixedString(b, ">", true); err != nil {
			return FetchResponseEvent{}, err
		}
		offset, hasOffset = n, true
	}
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	ev, err := parseStreamBeginOrNil(b, StreamBody, section)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	ev.HasOffset = hasOffset
	ev.StreamOffset = offset
	return ev, nil
}

func parseBinaryEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	path, err := parseBinarySectionPath(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	var offset uint32
	hasOffset := false
	if c, err := b.PeekByte(); err != nil {
		return FetchResponseEvent{}, err
	} else if c == '<' {
		b.Consume(1)
		n, err := parseNumber(b)
		if err != nil {
			return FetchResponseEvent{}, err
		}
		if err := fixedString(b, ">", true); err != nil {
			return FetchResponseEvent{}, err
		}
		offset, hasOffset = n, true
	}
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	section := Section{Path: path}
	ev, err := parseStreamBeginOrNil(b, StreamBinary, section)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	ev.HasOffset = hasOffset
	ev.StreamOffset = offset
	return ev, nil
}

func parseBinarySizeEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	_, err := parseBinarySectionPath(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	n, err := parseNumber(b)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrBinarySize, BinarySize: n}), nil
}

func parsePreviewEvent(b *ParseBuffer) (FetchResponseEvent, error) {
	if _, err := parseSpaces(b); err != nil {
		return FetchResponseEvent{}, err
	}
	v, isNil, err := parseNstring(b, 1<<16)
	if err != nil {
		return FetchResponseEvent{}, err
	}
	return simpleAttrEvent(MessageAttribute{Kind: AttrPreview, PreviewText: string(v), PreviewIsNil: isNil}), nil
}
