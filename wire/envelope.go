package wire

// parseEnvelope reads the ENVELOPE FETCH attribute's ten-tuple:
//
//	envelope = "(" env-date SP env-subject SP env-from SP env-sender SP
//	           env-reply-to SP env-to SP env-cc SP env-bcc SP
//	           env-in-reply-to SP env-message-id ")"
func parseEnvelope(b *ParseBuffer, st *StackTracker) (Envelope, error) {
	return composite(b, st, func(b *ParseBuffer) (Envelope, error) {
		if err := fixedString(b, "(", true); err != nil {
			return Envelope{}, err
		}
		date, err := parseNstringField(b)
		if err != nil {
			return Envelope{}, err
		}
		if err := parseSpaces1(b); err != nil {
			return Envelope{}, err
		}
		subject, err := parseNstringField(b)
		if err != nil {
			return Envelope{}, err
		}
		from, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		sender, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		replyTo, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		to, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		cc, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		bcc, err := parseSpacedAddressList(b)
		if err != nil {
			return Envelope{}, err
		}
		inReplyTo, err := parseSpacedNstringField(b)
		if err != nil {
			return Envelope{}, err
		}
		msgID, err := parseSpacedNstringField(b)
		if err != nil {
			return Envelope{}, err
		}
		if err := fixedString(b, ")", true); err != nil {
			return Envelope{}, err
		}
		return Envelope{
			Date: date, Subject: subject,
			From: from, Sender: sender, ReplyTo: replyTo,
			To: to, CC: cc, BCC: bcc,
			InReplyTo: inReplyTo, MessageID: msgID,
		}, nil
	})
}

func parseNstringField(b *ParseBuffer) (NullableString, error) {
	v, isNil, err := parseNstring(b, 1<<16)
	if err != nil {
		return NullableString{}, err
	}
	return NullableString{Value: string(v), IsNil: isNil}, nil
}

func parseSpacedNstringField(b *ParseBuffer) (NullableString, error) {
	if err := parseSpaces1(b); err != nil {
		return NullableString{}, err
	}
	return parseNstringField(b)
}

func parseSpacedAddressList(b *ParseBuffer) ([]AddressOrGroup, error) {
	if err := parseSpaces1(b); err != nil {
		return nil, err
	}
	return parseAddressList(b)
}

// addressMarkerKind classifies one wire-level address 4-tuple: a plain
// address, a group-start marker (host NIL, mailbox non-NIL), or a
// group-end marker (host NIL, mailbox NIL), per RFC 3501 section 7.4.2.
type addressMarkerKind int

const (
	markerPlain addressMarkerKind = iota
	markerGroupStart
	markerGroupEnd
)

// parseAddressList reads "(" 1*address ")" / nil and rebuilds the RFC
// 2822 group nesting from the flat marker encoding. Nested groups are
// handled with an explicit stack. A group still open when the list's
// closing ")" arrives is closed implicitly; a stray end marker with no
// open group is dropped. Both cases are undefined by the RFC, and this
// mirrors how tolerant servers behave in practice.
func parseAddressList(b *ParseBuffer) ([]AddressOrGroup, error) {
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != '(' {
		if err := parseNIL(b); err != nil {
			return nil, err
		}
		return nil, nil
	}
	b.Consume(1)

	type openGroup struct {
		name    string
		members []AddressOrGroup
	}
	var out []AddressOrGroup
	var stack []openGroup
	emit := func(e AddressOrGroup) {
		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			top.members = append(top.members, e)
			return
		}
		out = append(out, e)
	}
	for {
		kind, addr, err := parseAddress(b)
		if err != nil {
			return nil, err
		}
		switch kind {
		case markerGroupStart:
			stack = append(stack, openGroup{name: addr.Mailbox.Value})
		case markerGroupEnd:
			if len(stack) > 0 {
				g := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				emit(AddressOrGroup{Kind: AddressGroup, GroupName: g.name, Members: g.members})
			}
		default:
			emit(AddressOrGroup{Kind: AddressPlain, Address: addr})
		}
		c, err := b.PeekByte()
		if err != nil {
			return nil, err
		}
		if c == ')' {
			b.Consume(1)
			for len(stack) > 0 {
				g := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				emit(AddressOrGroup{Kind: AddressGroup, GroupName: g.name, Members: g.members})
			}
			return out, nil
		}
	}
}

// parseAddress reads one address = "(" addr-name SP addr-adl SP
// addr-mailbox SP addr-host ")" and classifies it by its NIL pattern.
func parseAddress(b *ParseBuffer) (addressMarkerKind, Address, error) {
	if err := fixedString(b, "(", true); err != nil {
		return 0, Address{}, err
	}
	name, err := parseNstringField(b)
	if err != nil {
		return 0, Address{}, err
	}
	if err := parseSpaces1(b); err != nil {
		return 0, Address{}, err
	}
	adl, err := parseNstringField(b)
	if err != nil {
		return 0, Address{}, err
	}
	if err := parseSpaces1(b); err != nil {
		return 0, Address{}, err
	}
	mailbox, err := parseNstringField(b)
	if err != nil {
		return 0, Address{}, err
	}
	if err := parseSpaces1(b); err != nil {
		return 0, Address{}, err
	}
	host, err := parseNstringField(b)
	if err != nil {
		return 0, Address{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return 0, Address{}, err
	}
	addr := Address{Name: name, SourceRoot: adl, Mailbox: mailbox, Host: host}
	switch {
	case host.IsNil && !mailbox.IsNil:
		return markerGroupStart, addr, nil
	case host.IsNil && mailbox.IsNil:
		return markerGroupEnd, addr, nil
	default:
		return markerPlain, addr, nil
	}
}
