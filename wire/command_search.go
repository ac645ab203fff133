package wire

// searchKeyTable dispatches the uppercased leading atom of a search-key
// to its suffix parser. Keys with no further argument map to a parser
// that consumes nothing else.
//
// Populated in init() rather than via a var initializer: parseNotKey
// (a table entry) calls parseSearchKeyComposite, which looks up
// searchKeyTable, so a direct var initializer would create an
// initialization cycle.
var searchKeyTable map[string]func(*ParseBuffer, *StackTracker) (*SearchKey, error)

func init() {
	searchKeyTable = map[string]func(*ParseBuffer, *StackTracker) (*SearchKey, error){
		"ALL":               noArgKey(SKAll),
		"ANSWERED":          noArgKey(SKAnswered),
		"BCC":               stringArgKey(SKBcc),
		"BEFORE":            dateArgKey(SKBefore),
		"BODY":              stringArgKey(SKBody),
		"CC":                stringArgKey(SKCc),
		"DELETED":           noArgKey(SKDeleted),
		"DRAFT":             noArgKey(SKDraft),
		"FLAGGED":           noArgKey(SKFlagged),
		"FROM":              stringArgKey(SKFrom),
		"HEADER":            parseHeaderKey,
		"KEYWORD":           atomArgKey(SKKeyword),
		"LARGER":            numberArgKey(SKLarger),
		"NEW":               noArgKey(SKNew),
		"NOT":               parseNotKey,
		"OLD":               noArgKey(SKOld),
		"ON":                dateArgKey(SKOn),
		"OR":                parseOrKey,
		"RECENT":            noArgKey(SKRecent),
		"SEEN":              noArgKey(SKSeen),
		"SENTBEFORE":        dateArgKey(SKSentBefore),
		"SENTON":            dateArgKey(SKSentOn),
		"SENTSINCE":         dateArgKey(SKSentSince),
		"SINCE":             dateArgKey(SKSince),
		"SMALLER":           numberArgKey(SKSmaller),
		"SUBJECT":           stringArgKey(SKSubject),
		"TEXT":              stringArgKey(SKText),
		"TO":                stringArgKey(SKTo),
		"UNANSWERED":        noArgKey(SKUnanswered),
		"UNDELETED":         noArgKey(SKUndeleted),
		"UNDRAFT":           noArgKey(SKUndraft),
		"UNFLAGGED":         noArgKey(SKUnflagged),
		"UNKEYWORD":         atomArgKey(SKUnkeyword),
		"UNSEEN":            noArgKey(SKUnseen),
		"UID":               parseUidKey,
		"MODSEQ":            parseModseqKey,
		"FILTER":            stringArgKey(SKFilter),
		"EMAILID":           stringArgKey(SKEmailID),
		"THREADID":          stringArgKey(SKThreadID),
		"OLDER":             numberArgKey(SKOlder),
		"YOUNGER":           numberArgKey(SKYounger),
		"SAVEDATESUPPORTED": noArgKey(SKSaveDateSupported),
		"SAVEDATE":          dateArgKey(SKSaveDate),
	}
}

func noArgKey(kind SearchKeyKind) func(*ParseBuffer, *StackTracker) (*SearchKey, error) {
	return func(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
		return &SearchKey{Kind: kind}, nil
	}
}

func stringArgKey(kind SearchKeyKind) func(*ParseBuffer, *StackTracker) (*SearchKey, error) {
	return func(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		v, err := parseAstring(b, 1<<20)
		if err != nil {
			return nil, err
		}
		return &SearchKey{Kind: kind, Text: string(v)}, nil
	}
}

func atomArgKey(kind SearchKeyKind) func(*ParseBuffer, *StackTracker) (*SearchKey, error) {
	return func(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		v, err := parseAtom(b)
		if err != nil {
			return nil, err
		}
		return &SearchKey{Kind: kind, Text: string(v)}, nil
	}
}

func numberArgKey(kind SearchKeyKind) func(*ParseBuffer, *StackTracker) (*SearchKey, error) {
	return func(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		n, err := parseNumber(b)
		if err != nil {
			return nil, err
		}
		return &SearchKey{Kind: kind, Number: n}, nil
	}
}

func dateArgKey(kind SearchKeyKind) func(*ParseBuffer, *StackTracker) (*SearchKey, error) {
	return func(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		d, err := parseDate(b)
		if err != nil {
			return nil, err
		}
		return &SearchKey{Kind: kind, Date: d}, nil
	}
}

func parseHeaderKey(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	field, err := parseAstringBare(b)
	if err != nil {
		return nil, err
	}
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	v, err := parseAstring(b, 1<<20)
	if err != nil {
		return nil, err
	}
	return &SearchKey{Kind: SKHeader, HeaderField: string(field), Text: string(v)}, nil
}

func parseNotKey(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	inner, err := parseSearchKeyComposite(b, st)
	if err != nil {
		return nil, err
	}
	return &SearchKey{Kind: SKNot, Not: inner}, nil
}

func parseOrKey(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	left, err := parseSearchKeyComposite(b, st)
	if err != nil {
		return nil, err
	}
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	right, err := parseSearchKeyComposite(b, st)
	if err != nil {
		return nil, err
	}
	return &SearchKey{Kind: SKOr, Or: [2]*SearchKey{left, right}}, nil
}

func parseUidKey(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	set, err := parseLastCommandSet[UIDBrand](b)
	if err != nil {
		return nil, err
	}
	return &SearchKey{Kind: SKUid, UidSet: set}, nil
}

func parseModseqKey(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if _, err := parseSpaces(b); err != nil {
		return nil, err
	}
	var entry string
	var entryType MetadataPermission
	hasEntry := false
	if _, ok, err := optional(b, func(b *ParseBuffer) (struct{}, error) {
		return struct{}{}, parseModseqEntryPrefix(b, &entry, &entryType)
	}); err != nil {
		return nil, err
	} else if ok {
		hasEntry = true
	}
	n, _, err := parseUnsignedInt64(b, false)
	if err != nil {
		return nil, err
	}
	return &SearchKey{Kind: SKModseq, Modseq: SearchModificationSequence{
		HasEntry: hasEntry, EntryName: entry, EntryType: entryType, Value: n,
	}}, nil
}

func parseModseqEntryPrefix(b *ParseBuffer, entry *string, entryType *MetadataPermission) error {
	name, err := parseQuoted(b)
	if err != nil {
		return err
	}
	if _, err := parseSpaces(b); err != nil {
		return err
	}
	kind, err := parseAtom(b)
	if err != nil {
		return err
	}
	upper := append([]byte(nil), kind...)
	asciiUpper(upper)
	switch string(upper) {
	case "ALL":
		*entryType = MetadataAll
	case "PRIV":
		*entryType = MetadataPriv
	case "SHARED":
		*entryType = MetadataShared
	default:
		return parseErrorf(b.Position(), "invalid MODSEQ entry type %q", kind)
	}
	if _, err := parseSpaces(b); err != nil {
		return err
	}
	*entry = string(name)
	return nil
}

// parseSearchKeyComposite wraps a single search-key alternative
// (atom-dispatch, a parenthesized AND-group, or a bare sequence-set)
// under the StackTracker, so that adversarial nesting depth is bounded
// regardless of which alternative recurses.
func parseSearchKeyComposite(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	return composite(b, st, func(b *ParseBuffer) (*SearchKey, error) {
		c, err := b.PeekByte()
		if err != nil {
			return nil, err
		}
		if c == '(' {
			return parseSearchKeyGroup(b, st)
		}
		if c == '*' || c == '$' || (c >= '0' && c <= '9') {
			set, err := parseLastCommandSet[SeqBrand](b)
			if err != nil {
				return nil, err
			}
			return &SearchKey{Kind: SKSequenceNumbers, SequenceNumbers: set}, nil
		}
		_, fn, err := parseFromLookupTable(b, searchKeyTable)
		if err != nil {
			return nil, err
		}
		return fn(b, st)
	})
}

// parseSearchKeyGroup reads "(" search-key *(SP search-key) ")", folding
// two-or-more keys into an And(...) node (a single key's parentheses are
// transparent).
func parseSearchKeyGroup(b *ParseBuffer, st *StackTracker) (*SearchKey, error) {
	if err := fixedString(b, "(", true); err != nil {
		return nil, err
	}
	keys, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (*SearchKey, error) {
		return parseSearchKeyComposite(b, st)
	})
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	if len(keys) == 1 {
		return keys[0], nil
	}
	return &SearchKey{Kind: SKAnd, And: keys}, nil
}

var searchReturnOptionTable = map[string]SearchReturnOption{
	"MIN": ReturnMin, "MAX": ReturnMax, "ALL": ReturnAll, "COUNT": ReturnCount,
	"SAVE": ReturnSave, "CONTEXT": ReturnContext, "UPDATE": ReturnUpdate,
	"PARTIAL": ReturnPartial,
}

// parseSearchReturnOptions reads "(" [search-return-opt *(SP
// search-return-opt)] ")", the ESEARCH RETURN clause. Per §4.5 and the
// RFC 4731 section 3.1 fix noted in §9, a present-but-empty "()" list is
// distinct from the clause being altogether absent, and defaults to
// [ALL] rather than an empty option set.
func parseSearchReturnOptions(b *ParseBuffer) ([]SearchReturnOption, error) {
	if err := fixedString(b, "(", true); err != nil {
		return nil, err
	}
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c == ')' {
		b.Consume(1)
		return []SearchReturnOption{ReturnAll}, nil
	}
	opts, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (SearchReturnOption, error) {
		_, opt, err := parseFromLookupTable(b, searchReturnOptionTable)
		if err != nil {
			return 0, err
		}
		if opt == ReturnPartial {
			if err := parsePartialRangeSuffix(b); err != nil {
				return 0, err
			}
		}
		return opt, nil
	})
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	return opts, nil
}

// parsePartialRangeSuffix consumes PARTIAL's mandatory "SP number ":"
// number" range argument (RFC 9394), discarding the values: callers
// needing them should re-derive from the raw ESEARCH response, since
// the request-side RETURN option only selects the window, it does not
// itself appear in the parsed return-data shape used here.
func parsePartialRangeSuffix(b *ParseBuffer) error {
	if _, err := parseSpaces(b); err != nil {
		return err
	}
	if _, err := parseNZNumber(b); err != nil {
		return err
	}
	if err := fixedString(b, ":", true); err != nil {
		return err
	}
	if _, err := parseNZNumber(b); err != nil {
		return err
	}
	return nil
}

// parseSearchCommand reads the body of SEARCH/UID SEARCH/ESEARCH after
// the verb atom: [SP "RETURN" SP return-opts] [SP "CHARSET" SP charset]
// SP search-key *(SP search-key), folding multiple top-level keys into
// an And(...) per §4.5.
func parseSearchCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	cmd := Command{Kind: CmdSearch}
	if returnOpts, ok, err := optional(b, func(b *ParseBuffer) ([]SearchReturnOption, error) {
		if err := parseSpacesThen(b, "RETURN"); err != nil {
			return nil, err
		}
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		return parseSearchReturnOptions(b)
	}); err != nil {
		return Command{}, err
	} else if ok {
		cmd.HasSearchReturn = true
		cmd.SearchReturnOpts = returnOpts
	}
	if charset, ok, err := optional(b, func(b *ParseBuffer) (string, error) {
		if err := parseSpacesThen(b, "CHARSET"); err != nil {
			return "", err
		}
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		return parseCharset(b)
	}); err != nil {
		return Command{}, err
	} else if ok {
		cmd.HasSearchCharset = true
		cmd.SearchCharset = charset
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	keys, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (*SearchKey, error) {
		return parseSearchKeyComposite(b, st)
	})
	if err != nil {
		return Command{}, err
	}
	if len(keys) == 1 {
		cmd.SearchKeyRoot = keys[0]
	} else {
		cmd.SearchKeyRoot = &SearchKey{Kind: SKAnd, And: keys}
	}
	return cmd, nil
}

// parseESearchCommand reads the ESEARCH verb's body, which shares the
// SEARCH suffix grammar but is its own command kind.
func parseESearchCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	cmd, err := parseSearchCommand(b, st)
	if err != nil {
		return Command{}, err
	}
	cmd.Kind = CmdESearch
	return cmd, nil
}
