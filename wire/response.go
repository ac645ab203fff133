package wire

// parseResponseText reads resp-text = ["[" resp-text-code "]" SP] text,
// tolerating a missing space before text and an entirely empty text, per
// §4.9 ("iCloud leniency") and end-to-end scenario 5.
func parseResponseText(b *ParseBuffer) (ResponseText, error) {
	var rt ResponseText
	if c, err := b.PeekByte(); err != nil {
		return ResponseText{}, err
	} else if c == '[' {
		code, err := parseResponseTextCode(b)
		if err != nil {
			return ResponseText{}, err
		}
		rt.HasCode = true
		rt.Code = code
		// Tolerate a missing space before the free-form text.
		optional(b, func(b *ParseBuffer) (struct{}, error) {
			_, err := parseSpaces(b)
			return struct{}{}, err
		})
	}
	text, err := parseTextToNewline(b)
	if err != nil {
		return ResponseText{}, err
	}
	rt.Text = text
	return rt, nil
}

// parseTextToNewline reads 1*TEXT-CHAR, but unlike the strict RFC 3501
// "text" production (which requires at least one character) this
// tolerates zero characters: an entirely empty trailing text is valid
// leniency per §4.9 scenario 5 ("* OK [READ-WRITE]\r\n").
func parseTextToNewline(b *ParseBuffer) (string, error) {
	n := 0
	for {
		c, err := b.PeekAt(n)
		if err != nil {
			return "", err
		}
		if c == '\r' || c == '\n' {
			break
		}
		n++
	}
	data, _ := b.Peek(n)
	out := string(data)
	b.Consume(n)
	return out, nil
}

var statusKeywordTable = map[string]UntaggedStatusKind{
	"OK": StatusOK, "NO": StatusNo, "BAD": StatusBad,
	"PREAUTH": StatusPreauth, "BYE": StatusBye,
}

// parseUntaggedStatus reads resp-cond-state / resp-cond-bye:
// ("OK"/"NO"/"BAD"/"PREAUTH"/"BYE") SP resp-text.
func parseUntaggedStatus(b *ParseBuffer) (UntaggedStatus, error) {
	_, kind, err := parseFromLookupTable(b, statusKeywordTable)
	if err != nil {
		return UntaggedStatus{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return UntaggedStatus{}, err
	}
	text, err := parseResponseText(b)
	if err != nil {
		return UntaggedStatus{}, err
	}
	return UntaggedStatus{Kind: kind, Text: text}, nil
}

// parseResponseData reads response-data = "*" SP response-payload CRLF,
// the top-level entry point for untagged responses.
func parseResponseData(b *ParseBuffer, st *StackTracker) (ResponsePayload, error) {
	return composite(b, st, func(b *ParseBuffer) (ResponsePayload, error) {
		if err := fixedString(b, "*", true); err != nil {
			return ResponsePayload{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		payload, err := parseResponsePayload(b)
		if err != nil {
			return ResponsePayload{}, err
		}
		if err := parseNewline(b); err != nil {
			return ResponsePayload{}, err
		}
		return payload, nil
	})
}

// parseResponsePayload dispatches the body of an untagged response: a
// leading number (mailbox-data EXISTS/RECENT or message-data EXPUNGE),
// a condition keyword, or an atom keyword dispatched through a lookup
// table.
func parseResponsePayload(b *ParseBuffer) (ResponsePayload, error) {
	mark := b.Checkpoint()
	if n, err := parseNumber(b); err == nil {
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		return parseNumberedResponse(b, n)
	} else if IsIncomplete(err) {
		return ResponsePayload{}, err
	}
	b.Restore(mark)

	if err := tryStatus(b); err == nil {
		status, err := parseUntaggedStatus(b)
		if err != nil {
			return ResponsePayload{}, err
		}
		return ResponsePayload{Kind: PayloadConditionalState, ConditionalState: status}, nil
	} else if IsIncomplete(err) {
		return ResponsePayload{}, err
	}
	b.Restore(mark)

	name, fn, err := parseFromLookupTable(b, responseKeywordTable)
	if err != nil {
		return ResponsePayload{}, err
	}
	_ = name
	return fn(b)
}

func tryStatus(b *ParseBuffer) error {
	mark := b.Checkpoint()
	_, _, err := parseFromLookupTable(b, statusKeywordTable)
	b.Restore(mark)
	return err
}

// parseNumberedResponse dispatches EXISTS/RECENT/EXPUNGE, the
// "number SP keyword" untagged responses other than FETCH, which
// ParseFetchResponse reads instead.
func parseNumberedResponse(b *ParseBuffer, n uint32) (ResponsePayload, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, "EXISTS", false); err == nil {
		return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{Kind: MailboxDataExists, ExistsCount: n}}, nil
	}
	b.Restore(mark)
	if err := fixedString(b, "RECENT", false); err == nil {
		return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{Kind: MailboxDataRecent, ExistsCount: n}}, nil
	}
	b.Restore(mark)
	if err := fixedString(b, "EXPUNGE", false); err == nil {
		seq, numErr := NewMessageIdentifier[SeqBrand](n)
		if numErr != nil {
			return ResponsePayload{}, numErr
		}
		return ResponsePayload{Kind: PayloadMessageData, MessageData: MessageData{Kind: MessageDataExpunge, ExpungedSeq: seq}}, nil
	}
	return ResponsePayload{}, parseErrorf(b.Position(), "expected EXISTS/RECENT/EXPUNGE after number")
}

// responseKeywordTable dispatches the remaining untagged response
// alternatives, whose leading token is an atom rather than a number.
var responseKeywordTable = map[string]func(*ParseBuffer) (ResponsePayload, error){
	"FLAGS":       parseFlagsResponse,
	"LIST":        parseListResponse,
	"LSUB":        parseLSubResponse,
	"SEARCH":      parseSearchResponse,
	"ESEARCH":     parseESearchResponse,
	"STATUS":      parseStatusResponse,
	"NAMESPACE":   parseNamespaceResponse,
	"CAPABILITY":  parseCapabilityResponse,
	"ID":          parseIDResponse,
	"ENABLED":     parseEnabledResponse,
	"QUOTA":       parseQuotaResponse,
	"QUOTAROOT":   parseQuotaRootResponse,
	"METADATA":    parseMetadataResponse,
	"VANISHED":    parseVanishedResponse,
	"GENURLAUTH":  parseGenURLAuthResponse,
	"URLFETCH":    parseURLFetchResponse,
}

func parseFlagsResponse(b *ParseBuffer) (ResponsePayload, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return ResponsePayload{}, err
	}
	flags, err := parseFlagListBody(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{Kind: MailboxDataFlags, Flags: flags}}, nil
}

func parseListResponse(b *ParseBuffer) (ResponsePayload, error) {
	md, err := parseListOrLSubBody(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	md.Kind = MailboxDataList
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: md}, nil
}

func parseLSubResponse(b *ParseBuffer) (ResponsePayload, error) {
	md, err := parseListOrLSubBody(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	md.Kind = MailboxDataLSub
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: md}, nil
}

// parseListOrLSubBody reads "(" [attr *(SP attr)] ")" SP
// (DQUOTE QUOTED-CHAR DQUOTE / NIL) SP mailbox, the body shared by LIST
// and LSUB.
func parseListOrLSubBody(b *ParseBuffer) (MailboxData, error) {
	if _, err := parseSpaces(b); err != nil {
		return MailboxData{}, err
	}
	if err := fixedString(b, "(", true); err != nil {
		return MailboxData{}, err
	}
	var attrs []string
	if c, err := b.PeekByte(); err != nil {
		return MailboxData{}, err
	} else if c != ')' {
		atoms, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (string, error) {
			if c, err := b.PeekByte(); err == nil && c == '\\' {
				b.Consume(1)
			}
			a, err := parseAtom(b)
			return string(a), err
		})
		if err != nil {
			return MailboxData{}, err
		}
		attrs = atoms
	}
	if err := fixedString(b, ")", true); err != nil {
		return MailboxData{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return MailboxData{}, err
	}
	var hierarchy byte
	if c, err := b.PeekByte(); err != nil {
		return MailboxData{}, err
	} else if c == '"' {
		q, err := parseQuoted(b)
		if err != nil {
			return MailboxData{}, err
		}
		if len(q) == 1 {
			hierarchy = q[0]
		}
	} else {
		if err := parseNIL(b); err != nil {
			return MailboxData{}, err
		}
	}
	if _, err := parseSpaces(b); err != nil {
		return MailboxData{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return MailboxData{}, err
	}
	return MailboxData{ListMailbox: mbox, ListAttributes: attrs, ListHierarchy: hierarchy}, nil
}

func oneOrMoreSepBySpace[T any](b *ParseBuffer, rule func(*ParseBuffer) (T, error)) ([]T, error) {
	first, err := rule(b)
	if err != nil {
		return nil, err
	}
	out := []T{first}
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return nil, err
			}
			b.Restore(mark)
			return out, nil
		}
		v, err := rule(b)
		if err != nil {
			if IsIncomplete(err) {
				return nil, err
			}
			b.Restore(mark)
			return out, nil
		}
		out = append(out, v)
	}
}

func parseSearchResponse(b *ParseBuffer) (ResponsePayload, error) {
	var nums []uint32
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		if c, err := b.PeekByte(); err == nil && c == '(' {
			b.Restore(mark)
			break
		}
		n, err := parseNumber(b)
		if err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		nums = append(nums, n)
	}
	md := MailboxData{Kind: MailboxDataSearch, SearchResults: nums}
	if modseq, ok, err := optional(b, parseSearchModSeqSuffix); err != nil {
		return ResponsePayload{}, err
	} else if ok {
		md.HasSearchModSeq = true
		md.SearchModSeq = modseq
	}
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: md}, nil
}

func parseSearchModSeqSuffix(b *ParseBuffer) (uint64, error) {
	if _, err := parseSpaces(b); err != nil {
		return 0, err
	}
	if err := fixedString(b, "(MODSEQ ", false); err != nil {
		return 0, err
	}
	n, _, err := parseUnsignedInt64(b, false)
	if err != nil {
		return 0, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return 0, err
	}
	return n, nil
}

func parseCapabilityResponse(b *ParseBuffer) (ResponsePayload, error) {
	caps, err := parseCapabilityList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadCapabilityData, Capabilities: caps}, nil
}

func parseEnabledResponse(b *ParseBuffer) (ResponsePayload, error) {
	var caps []string
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		a, err := parseAtom(b)
		if err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		caps = append(caps, string(a))
	}
	return ResponsePayload{Kind: PayloadEnableData, EnabledCaps: caps}, nil
}

func parseIDResponse(b *ParseBuffer) (ResponsePayload, error) {
	params, err := parseIDParamList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadID, IDParams: params}, nil
}

// parseIDParamList reads SP ("(" #(string SP nstring) ")" / nil), the
// RFC 2971 ID parameter list, shared by the ID command and response.
func parseIDParamList(b *ParseBuffer) (OrderedStringMap, error) {
	var out OrderedStringMap
	if _, err := parseSpaces(b); err != nil {
		return out, err
	}
	if c, err := b.PeekByte(); err != nil {
		return out, err
	} else if c != '(' {
		if err := parseNIL(b); err != nil {
			return out, err
		}
		return out, nil
	}
	b.Consume(1)
	if c, err := b.PeekByte(); err != nil {
		return out, err
	} else if c == ')' {
		b.Consume(1)
		return out, nil
	}
	for {
		key, err := parseQuoted(b)
		if err != nil {
			return out, err
		}
		if _, err := parseSpaces(b); err != nil {
			return out, err
		}
		v, isNil, err := parseNstring(b, 1<<20)
		if err != nil {
			return out, err
		}
		out.Set(string(key), NullableString{Value: string(v), IsNil: isNil})
		c, err := b.PeekByte()
		if err != nil {
			return out, err
		}
		if c == ')' {
			b.Consume(1)
			return out, nil
		}
		if err := parseSpaces1(b); err != nil {
			return out, err
		}
	}
}

func parseQuotaResponse(b *ParseBuffer) (ResponsePayload, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	root, err := parseAstringBare(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	if err := fixedString(b, "(", true); err != nil {
		return ResponsePayload{}, err
	}
	var resources []QuotaResourceUsage
	for {
		if c, err := b.PeekByte(); err != nil {
			return ResponsePayload{}, err
		} else if c == ')' {
			b.Consume(1)
			break
		}
		name, err := parseAtom(b)
		if err != nil {
			return ResponsePayload{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		usage, _, err := parseUnsignedInt64(b, false)
		if err != nil {
			return ResponsePayload{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		limit, _, err := parseUnsignedInt64(b, false)
		if err != nil {
			return ResponsePayload{}, err
		}
		resources = append(resources, QuotaResourceUsage{Resource: string(name), Usage: usage, Limit: limit})
		if c, err := b.PeekByte(); err == nil && c == ' ' {
			b.Consume(1)
		}
	}
	return ResponsePayload{Kind: PayloadQuota, Quota: QuotaData{Root: string(root), Resources: resources}}, nil
}

func parseQuotaRootResponse(b *ParseBuffer) (ResponsePayload, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	var roots []string
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		r, err := parseAstringBare(b)
		if err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		roots = append(roots, string(r))
	}
	return ResponsePayload{Kind: PayloadQuotaRoot, QuotaRoot: QuotaRootData{Mailbox: mbox, Roots: roots}}, nil
}

func parseMetadataResponse(b *ParseBuffer) (ResponsePayload, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	entries, err := parseMetadataEntryList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadMetadata, Metadata: MetadataResponse{Mailbox: mbox, Entries: entries}}, nil
}

func parseMetadataEntryList(b *ParseBuffer) ([]MetadataEntry, error) {
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != '(' {
		path, err := parseAstringBare(b)
		if err != nil {
			return nil, err
		}
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		v, isNil, err := parseNstring(b, 1<<20)
		if err != nil {
			return nil, err
		}
		return []MetadataEntry{{Path: string(path), Value: NullableString{Value: string(v), IsNil: isNil}}}, nil
	}
	b.Consume(1)
	var entries []MetadataEntry
	for {
		path, err := parseAstringBare(b)
		if err != nil {
			return nil, err
		}
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		v, isNil, err := parseNstring(b, 1<<20)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MetadataEntry{Path: string(path), Value: NullableString{Value: string(v), IsNil: isNil}})
		c, err := b.PeekByte()
		if err != nil {
			return nil, err
		}
		if c == ')' {
			b.Consume(1)
			return entries, nil
		}
		if err := parseSpaces1(b); err != nil {
			return nil, err
		}
	}
}

func parseVanishedResponse(b *ParseBuffer) (ResponsePayload, error) {
	earlier := false
	if _, ok, err := optional(b, func(b *ParseBuffer) (struct{}, error) {
		return struct{}{}, parseSpacesThen(b, "(EARLIER)")
	}); err != nil {
		return ResponsePayload{}, err
	} else if ok {
		earlier = true
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	set, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return ResponsePayload{}, err
	}
	kind := MessageDataVanished
	if earlier {
		kind = MessageDataVanishedEarlier
	}
	return ResponsePayload{Kind: PayloadMessageData, MessageData: MessageData{Kind: kind, VanishedSet: set}}, nil
}

func parseGenURLAuthResponse(b *ParseBuffer) (ResponsePayload, error) {
	urls, err := oneOrMore(b, func(b *ParseBuffer) (string, error) {
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		u, err := parseAstringBare(b)
		return string(u), err
	})
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadMessageData, MessageData: MessageData{Kind: MessageDataGenURLAuth, URLAuthURLs: urls}}, nil
}

func parseURLFetchResponse(b *ParseBuffer) (ResponsePayload, error) {
	var fetches []URLFetchData
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		url, err := parseAstringBare(b)
		if err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		if c, err := b.PeekByte(); err != nil {
			return ResponsePayload{}, err
		} else if c == 'N' || c == 'n' {
			if err := parseNIL(b); err != nil {
				return ResponsePayload{}, err
			}
			fetches = append(fetches, URLFetchData{URL: string(url), IsNil: true})
			continue
		}
		data, _, err := parseLiteral(b, 0)
		if err != nil {
			return ResponsePayload{}, err
		}
		fetches = append(fetches, URLFetchData{URL: string(url), Data: data})
	}
	return ResponsePayload{Kind: PayloadMessageData, MessageData: MessageData{Kind: MessageDataURLFetch, URLFetches: fetches}}, nil
}

func parseStatusResponse(b *ParseBuffer) (ResponsePayload, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	if err := parseSpacesThen(b, "("); err != nil {
		return ResponsePayload{}, err
	}
	var items []StatusResponseItem
	for {
		if c, err := b.PeekByte(); err != nil {
			return ResponsePayload{}, err
		} else if c == ')' {
			b.Consume(1)
			break
		}
		_, attr, err := parseFromLookupTable(b, statusAttributeTable)
		if err != nil {
			return ResponsePayload{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return ResponsePayload{}, err
		}
		v, _, err := parseUnsignedInt64(b, false)
		if err != nil {
			return ResponsePayload{}, err
		}
		items = append(items, StatusResponseItem{Attribute: attr, Value: v})
		if c, err := b.PeekByte(); err == nil && c == ' ' {
			b.Consume(1)
		}
	}
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{Kind: MailboxDataStatus, StatusMailbox: mbox, StatusItems: items}}, nil
}

var statusAttributeTable = map[string]StatusAttribute{
	"MESSAGES": StatusMessages, "RECENT": StatusRecent, "UIDNEXT": StatusUIDNext,
	"UIDVALIDITY": StatusUIDValidity, "UNSEEN": StatusUnseen,
	"HIGHESTMODSEQ": StatusHighestModSeq, "SIZE": StatusSize,
	"APPENDLIMIT": StatusAppendLimit, "DELETED": StatusDeleted,
	"MAILBOXID": StatusMailboxID,
}

func parseNamespaceResponse(b *ParseBuffer) (ResponsePayload, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	personal, err := parseNamespaceDescList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	other, err := parseNamespaceDescList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponsePayload{}, err
	}
	shared, err := parseNamespaceDescList(b)
	if err != nil {
		return ResponsePayload{}, err
	}
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{
		Kind: MailboxDataNamespace,
		Namespace: NamespaceResponse{Personal: personal, OtherUsers: other, Shared: shared},
	}}, nil
}

func parseNamespaceDescList(b *ParseBuffer) ([]NamespaceDescriptor, error) {
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != '(' {
		if err := parseNIL(b); err != nil {
			return nil, err
		}
		return nil, nil
	}
	b.Consume(1)
	var descs []NamespaceDescriptor
	for {
		if err := fixedString(b, "(", true); err != nil {
			return nil, err
		}
		prefix, err := parseQuoted(b)
		if err != nil {
			return nil, err
		}
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		var delim byte
		hasDelim := false
		if c, err := b.PeekByte(); err != nil {
			return nil, err
		} else if c == '"' {
			q, err := parseQuoted(b)
			if err != nil {
				return nil, err
			}
			if len(q) == 1 {
				delim, hasDelim = q[0], true
			}
		} else {
			if err := parseNIL(b); err != nil {
				return nil, err
			}
		}
		descs = append(descs, NamespaceDescriptor{Prefix: string(prefix), Delimiter: delim, HasDelim: hasDelim})
		if err := fixedString(b, ")", true); err != nil {
			return nil, err
		}
		c, err := b.PeekByte()
		if err != nil {
			return nil, err
		}
		if c == ')' {
			b.Consume(1)
			return descs, nil
		}
	}
}

// parseESearchResponse reads "ESEARCH" [SP "(TAG" SP string ")"]
// [SP "UID"] *(SP search-return-data).
func parseESearchResponse(b *ParseBuffer) (ResponsePayload, error) {
	var resp ESearchResponse
	if tag, ok, err := optional(b, parseESearchTagPrefix); err != nil {
		return ResponsePayload{}, err
	} else if ok {
		resp.HasTag = true
		resp.Tag = tag
	}
	if _, ok, err := optional(b, func(b *ParseBuffer) (struct{}, error) {
		return struct{}{}, parseSpacesThen(b, "UID")
	}); err != nil {
		return ResponsePayload{}, err
	} else if ok {
		resp.UID = true
	}
	for {
		mark := b.Checkpoint()
		if _, err := parseSpaces(b); err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		rd, err := parseESearchReturnDatum(b)
		if err != nil {
			if IsIncomplete(err) {
				return ResponsePayload{}, err
			}
			b.Restore(mark)
			break
		}
		resp.Returns = append(resp.Returns, rd)
	}
	return ResponsePayload{Kind: PayloadMailboxData, MailboxData: MailboxData{Kind: MailboxDataESearch, ESearch: resp}}, nil
}

func parseESearchTagPrefix(b *ParseBuffer) (string, error) {
	if err := parseSpacesThen(b, "(TAG"); err != nil {
		return "", err
	}
	if _, err := parseSpaces(b); err != nil {
		return "", err
	}
	tag, err := parseQuoted(b)
	if err != nil {
		return "", err
	}
	if err := fixedString(b, ")", true); err != nil {
		return "", err
	}
	return string(tag), nil
}

func parseESearchReturnDatum(b *ParseBuffer) (ESearchReturnData, error) {
	name, err := parseAtom(b)
	if err != nil {
		return ESearchReturnData{}, err
	}
	upper := append([]byte(nil), name...)
	asciiUpper(upper)
	switch string(upper) {
	case "MIN":
		if _, err := parseSpaces(b); err != nil {
			return ESearchReturnData{}, err
		}
		n, err := parseNumber(b)
		return ESearchReturnData{Option: ReturnMin, Min: n}, err
	case "MAX":
		if _, err := parseSpaces(b); err != nil {
			return ESearchReturnData{}, err
		}
		n, err := parseNumber(b)
		return ESearchReturnData{Option: ReturnMax, Max: n}, err
	case "COUNT":
		if _, err := parseSpaces(b); err != nil {
			return ESearchReturnData{}, err
		}
		n, err := parseNumber(b)
		return ESearchReturnData{Option: ReturnCount, Count: n}, err
	case "MODSEQ":
		if _, err := parseSpaces(b); err != nil {
			return ESearchReturnData{}, err
		}
		n, _, err := parseUnsignedInt64(b, false)
		return ESearchReturnData{Option: ReturnModSeq, ModSeq: n}, err
	case "ALL":
		if _, err := parseSpaces(b); err != nil {
			return ESearchReturnData{}, err
		}
		set, err := parseIdentifierSet[UIDBrand](b)
		return ESearchReturnData{Option: ReturnAll, All: set}, err
	default:
		return ESearchReturnData{}, parseErrorf(b.Position(), "unknown ESEARCH return datum %q", name)
	}
}

// parseTaggedResponse reads response-tagged = tag SP resp-cond-state
// CRLF, the server's final per-command status line.
func parseTaggedResponse(b *ParseBuffer, st *StackTracker) (TaggedResponse, error) {
	return composite(b, st, func(b *ParseBuffer) (TaggedResponse, error) {
		tag, err := parseTag(b)
		if err != nil {
			return TaggedResponse{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return TaggedResponse{}, err
		}
		status, err := parseUntaggedStatus(b)
		if err != nil {
			return TaggedResponse{}, err
		}
		if err := parseNewline(b); err != nil {
			return TaggedResponse{}, err
		}
		return TaggedResponse{Tag: string(tag), Status: status.Kind, Text: status.Text}, nil
	})
}
