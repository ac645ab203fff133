package wire

// parseAppendCommand reads the portion of APPEND that precedes the
// first literal: mailbox [SP flag-list] [SP date-time] *(SP tag-param)
// SP ("{" / "~{"), returning an AppendStart plus the options gathered so
// far. The literal/CATENATE body itself is driven by
// parseAppendOrCatenateMessage and parseCatenatePart (§4.6); this
// function stops right before the opening brace so the caller can
// inspect AppendOptions before committing to read the body.
func parseAppendCommand(b *ParseBuffer, tag string) (AppendCommand, error) {
	if _, err := parseSpaces(b); err != nil {
		return AppendCommand{}, err
	}
	mailbox, err := parseMailbox(b)
	if err != nil {
		return AppendCommand{}, err
	}
	opts, err := parseAppendOptions(b)
	if err != nil {
		return AppendCommand{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return AppendCommand{}, err
	}
	return AppendCommand{Kind: AppendStart, Tag: tag, Mailbox: mailbox, Options: opts}, nil
}

// parseAppendOptions reads [SP "(" [flag *(SP flag)] ")"] [SP
// date-time] *(SP tag-param).
func parseAppendOptions(b *ParseBuffer) (AppendOptions, error) {
	var opts AppendOptions
	if flags, ok, err := optional(b, func(b *ParseBuffer) ([]Flag, error) {
		if err := parseSpacesThen(b, "("); err != nil {
			return nil, err
		}
		return parseFlagListBody(b)
	}); err != nil {
		return AppendOptions{}, err
	} else if ok {
		opts.Flags = flags
	}
	if d, ok, err := optional(b, func(b *ParseBuffer) (ServerMessageDate, error) {
		if _, err := parseSpaces(b); err != nil {
			return ServerMessageDate{}, err
		}
		return parseInternalDate(b)
	}); err != nil {
		return AppendOptions{}, err
	} else if ok {
		opts.HasDate = true
		opts.InternalDate = d
	}
	for {
		kv, ok, err := optional(b, parseAppendExtensionParam)
		if err != nil {
			return AppendOptions{}, err
		}
		if !ok {
			break
		}
		opts.Extensions.Keys = append(opts.Extensions.Keys, kv[0])
		opts.Extensions.Values = append(opts.Extensions.Values, kv[1])
	}
	return opts, nil
}

func parseAppendExtensionParam(b *ParseBuffer) ([2]string, error) {
	if _, err := parseSpaces(b); err != nil {
		return [2]string{}, err
	}
	key, err := parseAtom(b)
	if err != nil {
		return [2]string{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return [2]string{}, err
	}
	val, err := parseAstring(b, 1<<20)
	if err != nil {
		return [2]string{}, err
	}
	return [2]string{string(key), string(val)}, nil
}

// parseAppendOrCatenateMessage reads the literal-or-CATENATE branch
// point that follows AppendOptions: either a plain "{N}"/"{N+}" literal
// frame (→ AppendBeginMessage carrying the byte count to stream) or
// "CATENATE (" (→ AppendBeginCatenate, after which the caller repeatedly
// invokes parseCatenatePart).
func parseAppendOrCatenateMessage(b *ParseBuffer, opts ParserOptions) (AppendCommand, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, "CATENATE", false); err == nil {
		if err := parseSpacesThen(b, "("); err != nil {
			b.Restore(mark)
			return AppendCommand{}, err
		}
		return AppendCommand{Kind: AppendBeginCatenate}, nil
	} else if IsIncomplete(err) {
		return AppendCommand{}, err
	}
	b.Restore(mark)
	n, mode, err := parseLiteralSize(b, opts.MessageBodySizeLimit)
	if err != nil {
		b.Restore(mark)
		return AppendCommand{}, err
	}
	return AppendCommand{
		Kind: AppendBeginMessage,
		Data: AppendData{ByteCount: n, WithoutContentTransferEncoding: mode == LiteralNoTransferEncoding},
	}, nil
}

// parseCatenatePart reads one CATENATE part: "URL" SP url-literal, or
// "TEXT" SP literal-size, or the closing ")". The URL form returns its
// bytes inline (URLs are bounded in practice); the TEXT form returns
// only the byte count, mirroring AppendBeginMessage, since the caller
// must stream the data directly from the transport.
func parseCatenatePart(b *ParseBuffer, opts ParserOptions) (AppendCommand, error) {
	mark := b.Checkpoint()
	cmd, err := parseCatenatePartStep(b, opts)
	if err != nil {
		b.Restore(mark)
		return AppendCommand{}, err
	}
	return cmd, nil
}

func parseCatenatePartStep(b *ParseBuffer, opts ParserOptions) (AppendCommand, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, ")", true); err == nil {
		return AppendCommand{Kind: AppendEndCatenate}, nil
	} else if IsIncomplete(err) {
		return AppendCommand{}, err
	}
	b.Restore(mark)
	if err := fixedString(b, "URL", false); err == nil {
		if _, err := parseSpaces(b); err != nil {
			return AppendCommand{}, err
		}
		url, err := parseAstring(b, opts.MessageBodySizeLimit)
		if err != nil {
			return AppendCommand{}, err
		}
		consumeCatenateSeparator(b)
		return AppendCommand{Kind: AppendCatenateURL, CatenateURL: string(url)}, nil
	} else if IsIncomplete(err) {
		return AppendCommand{}, err
	}
	b.Restore(mark)
	if err := fixedString(b, "TEXT", false); err != nil {
		return AppendCommand{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return AppendCommand{}, err
	}
	n, mode, err := parseLiteralSize(b, opts.MessageBodySizeLimit)
	if err != nil {
		return AppendCommand{}, err
	}
	return AppendCommand{
		Kind: AppendCatenateData,
		Data: AppendData{ByteCount: n, WithoutContentTransferEncoding: mode == LiteralNoTransferEncoding},
	}, nil
}

// consumeCatenateSeparator swallows the SP between two cat-part entries,
// if present; it is absent before a closing ")".
func consumeCatenateSeparator(b *ParseBuffer) {
	optional(b, func(b *ParseBuffer) (struct{}, error) {
		_, err := parseSpaces(b)
		return struct{}{}, err
	})
}

// parseAppendNext reads what follows a completed message body (either a
// literal's MessageBytes or a CATENATE's EndCatenate): either the CRLF
// that ends the command, or (RFC 3502 MULTIAPPEND) a SP introducing
// another append-message sharing the same tag and mailbox.
func parseAppendNext(b *ParseBuffer, tag string, mailbox Mailbox) (AppendCommand, error) {
	mark := b.Checkpoint()
	if err := parseNewline(b); err == nil {
		return AppendCommand{Kind: AppendFinish, Tag: tag}, nil
	} else if IsIncomplete(err) {
		return AppendCommand{}, err
	}
	b.Restore(mark)
	// Each option inside parseAppendOptions consumes its own leading SP,
	// exactly as in the first append-message; the final parseSpaces is
	// the separator before the next literal or CATENATE frame.
	opts, err := parseAppendOptions(b)
	if err != nil {
		return AppendCommand{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return AppendCommand{}, err
	}
	return AppendCommand{Kind: AppendStart, Tag: tag, Mailbox: mailbox, Options: opts}, nil
}
