package wire

// ResponseTextCodeKind discriminates the bracketed "[...]" annotation
// that may follow an untagged/tagged status response's condition.
type ResponseTextCodeKind int

const (
	CodeAlert ResponseTextCodeKind = iota
	CodeBadCharset
	CodeCapability
	CodeParse
	CodePermanentFlags
	CodeReadOnly
	CodeReadWrite
	CodeTryCreate
	CodeUIDNext
	CodeUIDValidity
	CodeUnseen
	CodeNamespace
	CodeNoModSeq
	CodeHighestModSeq
	CodeModified
	CodeAppendUID
	CodeCopyUID
	CodeUIDNotSticky
	CodeClosed
	CodeNotSaved
	CodeReferral
	CodeMetadataLongEntries
	CodeMetadataMaxSize
	CodeMetadataTooMany
	CodeMetadataNoPrivate
	CodeURLMechInternal
	CodeAlreadyExists
	CodeAuthenticationFailed
	CodeAuthorizationFailed
	CodeCannot
	CodeClientBug
	CodeCompressionActive
	CodeContactAdmin
	CodeCorruption
	CodeExpired
	CodeExpungeIssued
	CodeInUse
	CodeLimit
	CodeNonExistent
	CodeNoPerm
	CodeOverQuota
	CodePrivacyRequired
	CodeServerBug
	CodeUnavailable
	CodeUseAttr
	CodeOther
)

// ResponseTextCode is the parsed content of a "[CODE ...]" annotation.
type ResponseTextCode struct {
	Kind ResponseTextCodeKind

	BadCharsetCharsets []string
	Capabilities       []string
	PermanentFlags     []Flag
	UIDNext            UID
	UIDValidity        UIDValidity
	Unseen             SequenceNumber
	HighestModSeq      uint64
	ModifiedSet        UIDSet
	AppendUIDValidity  UIDValidity
	AppendUIDs         UIDSet
	CopyUIDValidity    UIDValidity
	CopySourceUIDs     UIDSet
	CopyDestUIDs       UIDSet
	ReferralURL        string
	MetadataMaxSize    uint32
	URLMechInternal    bool
	OtherAtom          string
	OtherText          string
	HasOtherText       bool
}

// responseTextCodeTable dispatches the uppercased leading atom of a
// response-text-code to its suffix parser, per §4.9 and the dispatch
// table design note in §9. Codes with no argument suffix map to a
// parser that consumes nothing further.
var responseTextCodeTable = map[string]func(*ParseBuffer) (ResponseTextCode, error){
	"ALERT":                  noArgCode(CodeAlert),
	"BADCHARSET":             parseBadCharsetCode,
	"CAPABILITY":             parseCapabilityCode,
	"PARSE":                  noArgCode(CodeParse),
	"PERMANENTFLAGS":         parsePermanentFlagsCode,
	"READ-ONLY":              noArgCode(CodeReadOnly),
	"READ-WRITE":             noArgCode(CodeReadWrite),
	"TRYCREATE":              noArgCode(CodeTryCreate),
	"UIDNEXT":                parseUIDNextCode,
	"UIDVALIDITY":            parseUIDValidityCode,
	"UNSEEN":                 parseUnseenCode,
	"NAMESPACE":              noArgCode(CodeNamespace),
	"NOMODSEQ":               noArgCode(CodeNoModSeq),
	"HIGHESTMODSEQ":          parseHighestModSeqCode,
	"MODIFIED":               parseModifiedCode,
	"APPENDUID":              parseAppendUIDCode,
	"COPYUID":                parseCopyUIDCode,
	"UIDNOTSTICKY":           noArgCode(CodeUIDNotSticky),
	"CLOSED":                 noArgCode(CodeClosed),
	"NOTSAVED":                noArgCode(CodeNotSaved),
	"REFERRAL":               parseReferralCode,
	"LONGENTRIES":            noArgCode(CodeMetadataLongEntries),
	"MAXSIZE":                parseMetadataMaxSizeCode,
	"TOOMANY":                noArgCode(CodeMetadataTooMany),
	"NOPRIVATE":              noArgCode(CodeMetadataNoPrivate),
	"ALREADYEXISTS":          noArgCode(CodeAlreadyExists),
	"AUTHENTICATIONFAILED":   noArgCode(CodeAuthenticationFailed),
	"AUTHORIZATIONFAILED":    noArgCode(CodeAuthorizationFailed),
	"CANNOT":                 noArgCode(CodeCannot),
	"CLIENTBUG":              noArgCode(CodeClientBug),
	"COMPRESSIONACTIVE":      noArgCode(CodeCompressionActive),
	"CONTACTADMIN":           noArgCode(CodeContactAdmin),
	"CORRUPTION":             noArgCode(CodeCorruption),
	"EXPIRED":                noArgCode(CodeExpired),
	"EXPUNGEISSUED":          noArgCode(CodeExpungeIssued),
	"INUSE":                  noArgCode(CodeInUse),
	"LIMIT":                  noArgCode(CodeLimit),
	"NONEXISTENT":            noArgCode(CodeNonExistent),
	"NOPERM":                 noArgCode(CodeNoPerm),
	"OVERQUOTA":              noArgCode(CodeOverQuota),
	"PRIVACYREQUIRED":        noArgCode(CodePrivacyRequired),
	"SERVERBUG":              noArgCode(CodeServerBug),
	"UNAVAILABLE":            noArgCode(CodeUnavailable),
	"USEATTR":                noArgCode(CodeUseAttr),
	"URLMECH":                parseURLMechCode,
}

func noArgCode(kind ResponseTextCodeKind) func(*ParseBuffer) (ResponseTextCode, error) {
	return func(b *ParseBuffer) (ResponseTextCode, error) {
		return ResponseTextCode{Kind: kind}, nil
	}
}

func parseBadCharsetCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		if IsIncomplete(err) {
			return ResponseTextCode{}, err
		}
		// Argumentless BADCHARSET: the charset list is optional.
		return ResponseTextCode{Kind: CodeBadCharset}, nil
	}
	if err := fixedString(b, "(", true); err != nil {
		return ResponseTextCode{}, err
	}
	sets, err := oneOrMore(b, func(b *ParseBuffer) (string, error) {
		cs, err := parseAstring(b, 1<<16)
		if err != nil {
			return "", err
		}
		optional(b, func(b *ParseBuffer) (struct{}, error) {
			_, err := parseSpaces(b)
			return struct{}{}, err
		})
		return string(cs), nil
	})
	if err != nil {
		return ResponseTextCode{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeBadCharset, BadCharsetCharsets: sets}, nil
}

func parseCapabilityCode(b *ParseBuffer) (ResponseTextCode, error) {
	caps, err := parseCapabilityList(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeCapability, Capabilities: caps}, nil
}

func parsePermanentFlagsCode(b *ParseBuffer) (ResponseTextCode, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return ResponseTextCode{}, err
	}
	flags, err := parseFlagListBody(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodePermanentFlags, PermanentFlags: flags}, nil
}

func parseUIDNextCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	n, err := parseNZNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	uid, err := NewMessageIdentifier[UIDBrand](n)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeUIDNext, UIDNext: uid}, nil
}

func parseUIDValidityCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	n, err := parseNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeUIDValidity, UIDValidity: UIDValidity(n)}, nil
}

func parseUnseenCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	n, err := parseNZNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	seq, err := NewMessageIdentifier[SeqBrand](n)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeUnseen, Unseen: seq}, nil
}

func parseHighestModSeqCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	n, _, err := parseUnsignedInt64(b, false)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeHighestModSeq, HighestModSeq: n}, nil
}

func parseModifiedCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	set, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeModified, ModifiedSet: set}, nil
}

func parseAppendUIDCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	validity, err := parseNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	uids, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeAppendUID, AppendUIDValidity: UIDValidity(validity), AppendUIDs: uids}, nil
}

func parseCopyUIDCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	validity, err := parseNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	src, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	dst, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{
		Kind: CodeCopyUID, CopyUIDValidity: UIDValidity(validity),
		CopySourceUIDs: src, CopyDestUIDs: dst,
	}, nil
}

func parseReferralCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	url, err := parseAstringBare(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeReferral, ReferralURL: string(url)}, nil
}

func parseMetadataMaxSizeCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	n, err := parseNumber(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeMetadataMaxSize, MetadataMaxSize: n}, nil
}

func parseURLMechCode(b *ParseBuffer) (ResponseTextCode, error) {
	if _, err := parseSpaces(b); err != nil {
		return ResponseTextCode{}, err
	}
	if err := fixedString(b, "INTERNAL", false); err != nil {
		return ResponseTextCode{}, err
	}
	return ResponseTextCode{Kind: CodeURLMechInternal, URLMechInternal: true}, nil
}

// parseSpacesThen consumes SP then the fixed string s, both mandatory.
// Matching is case-insensitive: s is always a grammar keyword or
// punctuation, never payload text.
func parseSpacesThen(b *ParseBuffer, s string) error {
	if _, err := parseSpaces(b); err != nil {
		return err
	}
	return fixedString(b, s, false)
}

// parseResponseTextCode reads "[" code-name suffix "]". Unknown codes
// degrade to Other(atom, text) rather than failing, per §4.9.
func parseResponseTextCode(b *ParseBuffer) (ResponseTextCode, error) {
	if err := fixedString(b, "[", true); err != nil {
		return ResponseTextCode{}, err
	}
	name, fn, err := parseFromLookupTable(b, responseTextCodeTable)
	var code ResponseTextCode
	if err != nil {
		if IsIncomplete(err) {
			return ResponseTextCode{}, err
		}
		atom, atomErr := parseAtom(b)
		if atomErr != nil {
			return ResponseTextCode{}, err
		}
		hasText := false
		if _, ok, serr := optional(b, func(b *ParseBuffer) (int, error) {
			return parseSpaces(b)
		}); serr != nil {
			return ResponseTextCode{}, serr
		} else if ok {
			hasText = true
		}
		rest, rerr := parseUntilCloseBracket(b)
		if rerr != nil {
			return ResponseTextCode{}, rerr
		}
		asciiUpper(atom)
		return ResponseTextCode{Kind: CodeOther, OtherAtom: string(atom), OtherText: rest, HasOtherText: hasText || rest != ""}, finishBracket(b)
	}
	code, err = fn(b)
	if err != nil {
		return ResponseTextCode{}, err
	}
	_ = name
	return code, finishBracket(b)
}

func finishBracket(b *ParseBuffer) error {
	return fixedString(b, "]", true)
}

// parseUntilCloseBracket reads raw text up to (not including) the
// closing "]", used for an unrecognized response-text-code's trailing
// argument text.
func parseUntilCloseBracket(b *ParseBuffer) (string, error) {
	start := b.Position()
	n := 0
	for {
		c, err := b.PeekAt(n)
		if err != nil {
			return "", err
		}
		if c == ']' {
			break
		}
		n++
	}
	data, _ := b.Peek(n)
	b.Consume(n)
	_ = start
	return string(data), nil
}

// parseCapabilityList reads 1*(SP capability).
func parseCapabilityList(b *ParseBuffer) ([]string, error) {
	return oneOrMore(b, func(b *ParseBuffer) (string, error) {
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		atom, err := parseAtom(b)
		if err != nil {
			return "", err
		}
		return string(atom), nil
	})
}

// parseFlagListBody reads the space-separated flag list inside an
// already-opened "(" ... ")".
func parseFlagListBody(b *ParseBuffer) ([]Flag, error) {
	var flags []Flag
	if c, err := b.PeekByte(); err == nil && c == ')' {
		b.Consume(1)
		return flags, nil
	}
	first, err := parseFlag(b)
	if err != nil {
		return nil, err
	}
	flags = append(flags, first)
	for {
		c, err := b.PeekByte()
		if err != nil {
			return nil, err
		}
		if c == ')' {
			b.Consume(1)
			return flags, nil
		}
		if err := parseSpaces1(b); err != nil {
			return nil, err
		}
		f, err := parseFlag(b)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
}

func parseSpaces1(b *ParseBuffer) error {
	_, err := parseSpaces(b)
	return err
}
