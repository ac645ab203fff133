package wire

// commandTable dispatches the uppercased command verb atom to its
// suffix parser, per the canonical dispatch-table shape described in
// §9: one keyword-to-parser map rather than a chain of alternatives.
var commandTable = map[string]func(*ParseBuffer, *StackTracker) (Command, error){
	"CAPABILITY":    noArgCommand(CmdCapability),
	"LOGOUT":        noArgCommand(CmdLogout),
	"NOOP":          noArgCommand(CmdNoop),
	"STARTTLS":      noArgCommand(CmdStartTLS),
	"CHECK":         noArgCommand(CmdCheck),
	"CLOSE":         noArgCommand(CmdClose),
	"UNSELECT":      noArgCommand(CmdUnselect),
	"EXPUNGE":       noArgCommand(CmdExpunge),
	"IDLE":          noArgCommand(CmdIdle),
	"NAMESPACE":     noArgCommand(CmdNamespace),
	"AUTHENTICATE":  parseAuthenticateCommand,
	"LOGIN":         parseLoginCommand,
	"CREATE":        parseMailboxOperandCommand(CmdCreate),
	"DELETE":        parseMailboxOperandCommand(CmdDelete),
	"SUBSCRIBE":     parseMailboxOperandCommand(CmdSubscribe),
	"UNSUBSCRIBE":   parseMailboxOperandCommand(CmdUnsubscribe),
	"RENAME":        parseRenameCommand,
	"SELECT":        parseSelectCommand(CmdSelect),
	"EXAMINE":       parseSelectCommand(CmdExamine),
	"STATUS":        parseStatusCommand,
	"LIST":          parseListCommand(CmdList),
	"LSUB":          parseListCommand(CmdLSub),
	"SEARCH":        parseSearchCommand,
	"ESEARCH":       parseESearchCommand,
	"FETCH":         parseFetchCommand,
	"STORE":         parseStoreCommand,
	"COPY":          parseCopyMoveCommand(CmdCopy),
	"MOVE":          parseCopyMoveCommand(CmdMove),
	"UID":           parseUIDCommand,
	"ENABLE":        parseEnableCommand,
	"ID":            parseIDCommand,
	"GETMETADATA":   parseGetMetadataCommand,
	"SETMETADATA":   parseSetMetadataCommand,
	"GETQUOTA":      parseGetQuotaCommand,
	"SETQUOTA":      parseSetQuotaCommand,
	"GETQUOTAROOT":  parseGetQuotaRootCommand,
	"RESETKEY":      parseResetKeyCommand,
	"GENURLAUTH":    parseGenURLAuthCommand,
	"URLFETCH":      parseURLFetchCommand,
	"COMPRESS":      parseCompressCommand,
	"UIDBATCHES":    parseUIDBatchesCommand,
	"GETJMAPACCESS": noArgCommand(CmdGetJMAPAccess),
}

func noArgCommand(kind CommandKind) func(*ParseBuffer, *StackTracker) (Command, error) {
	return func(b *ParseBuffer, st *StackTracker) (Command, error) {
		return Command{Kind: kind}, nil
	}
}

// parseTaggedCommand reads tag SP command-verb suffix CRLF, the
// top-level entry point for client commands (§6).
func parseTaggedCommand(b *ParseBuffer, opts ParserOptions) (TaggedCommand, error) {
	st := opts.newStackTracker()
	return composite(b, st, func(b *ParseBuffer) (TaggedCommand, error) {
		tag, err := parseTag(b)
		if err != nil {
			return TaggedCommand{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return TaggedCommand{}, err
		}
		_, fn, err := parseFromLookupTable(b, commandTable)
		if err != nil {
			if IsIncomplete(err) {
				return TaggedCommand{}, err
			}
			return TaggedCommand{}, &BadCommand{Tag: string(tag), Inner: err}
		}
		cmd, err := fn(b, st)
		if err != nil {
			if IsIncomplete(err) {
				return TaggedCommand{}, err
			}
			return TaggedCommand{}, &BadCommand{Tag: string(tag), Inner: err}
		}
		if err := parseNewline(b); err != nil {
			if IsIncomplete(err) {
				return TaggedCommand{}, err
			}
			return TaggedCommand{}, &BadCommand{Tag: string(tag), Inner: err}
		}
		return TaggedCommand{Tag: string(tag), Command: cmd}, nil
	})
}

func parseAuthenticateCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mech, err := parseAtom(b)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: CmdAuthenticate, MechanismName: string(mech)}
	if resp, ok, err := optional(b, func(b *ParseBuffer) ([]byte, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		return parseAstringBare(b)
	}); err != nil {
		return Command{}, err
	} else if ok {
		cmd.HasInitial = true
		cmd.InitialResponse = resp
	}
	return cmd, nil
}

func parseLoginCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	user, err := parseAstring(b, 1<<16)
	if err != nil {
		return Command{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	pass, err := parseAstring(b, 1<<16)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdLogin, Username: user, Password: pass}, nil
}

func parseMailboxOperandCommand(kind CommandKind) func(*ParseBuffer, *StackTracker) (Command, error) {
	return func(b *ParseBuffer, st *StackTracker) (Command, error) {
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		mbox, err := parseMailbox(b)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, Mailbox: mbox}, nil
	}
}

func parseRenameCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	from, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	to, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdRename, Mailbox: from, NewMailbox: to}, nil
}

func parseSelectCommand(kind CommandKind) func(*ParseBuffer, *StackTracker) (Command, error) {
	return func(b *ParseBuffer, st *StackTracker) (Command, error) {
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		mbox, err := parseMailbox(b)
		if err != nil {
			return Command{}, err
		}
		cmd := Command{Kind: kind, Mailbox: mbox}
		if quals, ok, err := optional(b, parseSelectQualifiers); err != nil {
			return Command{}, err
		} else if ok {
			cmd.SelectQualifiers = quals
		}
		return cmd, nil
	}
}

func parseSelectQualifiers(b *ParseBuffer) ([]SelectQualifier, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return nil, err
	}
	quals, err := oneOrMoreSepBySpace(b, parseSelectQualifier)
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	return quals, nil
}

func parseSelectQualifier(b *ParseBuffer) (SelectQualifier, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, "CONDSTORE", false); err == nil {
		return SelectQualifier{Condstore: true}, nil
	} else if IsIncomplete(err) {
		return SelectQualifier{}, err
	}
	b.Restore(mark)
	if err := fixedString(b, "QRESYNC", false); err != nil {
		return SelectQualifier{}, err
	}
	if err := parseSpacesThen(b, "("); err != nil {
		return SelectQualifier{}, err
	}
	validity, err := parseNumber(b)
	if err != nil {
		return SelectQualifier{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return SelectQualifier{}, err
	}
	modseq, _, err := parseUnsignedInt64(b, false)
	if err != nil {
		return SelectQualifier{}, err
	}
	params := &QResyncParameters{UIDValidity: UIDValidity(validity), ModSeq: ModificationSequenceValue(modseq)}
	if knownUIDs, ok, err := optional(b, func(b *ParseBuffer) (MessageIdentifierSet[UIDBrand], error) {
		if _, err := parseSpaces(b); err != nil {
			return MessageIdentifierSet[UIDBrand]{}, err
		}
		return parseIdentifierSet[UIDBrand](b)
	}); err != nil {
		return SelectQualifier{}, err
	} else if ok {
		params.KnownUIDs = &knownUIDs
	}
	if match, ok, err := optional(b, parseSequenceMatchData); err != nil {
		return SelectQualifier{}, err
	} else if ok {
		params.SeqMatch = &match
	}
	if err := fixedString(b, ")", true); err != nil {
		return SelectQualifier{}, err
	}
	return SelectQualifier{QResync: params}, nil
}

func parseSequenceMatchData(b *ParseBuffer) (SequenceMatchData, error) {
	if err := parseSpacesThen(b, "("); err != nil {
		return SequenceMatchData{}, err
	}
	known, err := parseIdentifierSet[SeqBrand](b)
	if err != nil {
		return SequenceMatchData{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return SequenceMatchData{}, err
	}
	knownUID, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return SequenceMatchData{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return SequenceMatchData{}, err
	}
	return SequenceMatchData{KnownSequenceSet: known, KnownUIDSet: knownUID}, nil
}

func parseStatusCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	if err := parseSpacesThen(b, "("); err != nil {
		return Command{}, err
	}
	attrs, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (StatusAttribute, error) {
		_, attr, err := parseFromLookupTable(b, statusAttributeTable)
		return attr, err
	})
	if err != nil {
		return Command{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdStatus, Mailbox: mbox, StatusAttributes: attrs}, nil
}

func parseListCommand(kind CommandKind) func(*ParseBuffer, *StackTracker) (Command, error) {
	return func(b *ParseBuffer, st *StackTracker) (Command, error) {
		cmd := Command{Kind: kind}
		if opts, ok, err := optional(b, parseListSelectOptions); err != nil {
			return Command{}, err
		} else if ok {
			cmd.ListSelectOpts = opts
		}
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		ref, err := parseMailbox(b)
		if err != nil {
			return Command{}, err
		}
		cmd.ListReference = ref
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		patterns, err := parseMboxPatterns(b)
		if err != nil {
			return Command{}, err
		}
		cmd.ListPatterns = patterns
		if opts, ok, err := optional(b, parseListReturnOptions); err != nil {
			return Command{}, err
		} else if ok {
			cmd.ListReturnOpts = opts
		}
		return cmd, nil
	}
}

var listSelectOptionTable = map[string]ListSelectOption{
	"SUBSCRIBED": ListSelectSubscribed, "REMOTE": ListSelectRemote,
	"RECURSIVEMATCH": ListSelectRecursiveMatch, "SPECIAL-USE": ListSelectSpecialUse,
}

func parseListSelectOptions(b *ParseBuffer) ([]ListSelectOption, error) {
	if err := fixedString(b, "(", true); err != nil {
		return nil, err
	}
	if c, err := b.PeekByte(); err == nil && c == ')' {
		b.Consume(1)
		return nil, nil
	}
	opts, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (ListSelectOption, error) {
		_, opt, err := parseFromLookupTable(b, listSelectOptionTable)
		return opt, err
	})
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	return opts, nil
}

var listReturnOptionTable = map[string]ListReturnOption{
	"SUBSCRIBED": ListReturnSubscribed, "CHILDREN": ListReturnChildren,
	"SPECIAL-USE": ListReturnSpecialUse, "STATUS": ListReturnStatus,
}

func parseListReturnOptions(b *ParseBuffer) ([]ListReturnOption, error) {
	if err := parseSpacesThen(b, "RETURN"); err != nil {
		return nil, err
	}
	if err := parseSpacesThen(b, "("); err != nil {
		return nil, err
	}
	if c, err := b.PeekByte(); err == nil && c == ')' {
		b.Consume(1)
		return nil, nil
	}
	opts, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (ListReturnOption, error) {
		_, opt, err := parseFromLookupTable(b, listReturnOptionTable)
		if err != nil {
			return 0, err
		}
		if opt == ListReturnStatus {
			if err := parseSpacesThen(b, "("); err != nil {
				return 0, err
			}
			if _, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (StatusAttribute, error) {
				_, a, err := parseFromLookupTable(b, statusAttributeTable)
				return a, err
			}); err != nil {
				return 0, err
			}
			if err := fixedString(b, ")", true); err != nil {
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

func parseMboxPatterns(b *ParseBuffer) ([]Mailbox, error) {
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != '(' {
		v, err := parseListMailbox(b)
		if err != nil {
			return nil, err
		}
		return []Mailbox{Mailbox(v)}, nil
	}
	b.Consume(1)
	if c, err := b.PeekByte(); err == nil && c == ')' {
		b.Consume(1)
		return nil, nil
	}
	pats, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (Mailbox, error) {
		v, err := parseListMailbox(b)
		return Mailbox(v), err
	})
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	return pats, nil
}

func parseFetchCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	set, err := parseLastCommandSet[SeqBrand](b)
	if err != nil {
		return Command{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	attrs, err := parseFetchAttributeList(b, st)
	if err != nil {
		return Command{}, err
	}
	mods, err := parseFetchModifiers(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdFetch, FetchSet: set, FetchAttrs: attrs, FetchModifiers: mods}, nil
}

var storeModeTable = map[string]struct {
	mode   StoreMode
	silent bool
}{
	"FLAGS":       {StoreReplace, false},
	"FLAGS.SILENT": {StoreReplace, true},
	"+FLAGS":      {StoreAdd, false},
	"+FLAGS.SILENT": {StoreAdd, true},
	"-FLAGS":      {StoreRemove, false},
	"-FLAGS.SILENT": {StoreRemove, true},
}

func parseStoreCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	set, err := parseLastCommandSet[SeqBrand](b)
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: CmdStore, StoreSet: set}
	if since, ok, err := optional(b, parseStoreUnchangedSince); err != nil {
		return Command{}, err
	} else if ok {
		cmd.HasUnchangedSince = true
		cmd.StoreUnchangedSince = since
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mode, err := parseStoreMode(b)
	if err != nil {
		return Command{}, err
	}
	cmd.StoreMode, cmd.StoreSilent = mode.mode, mode.silent
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	flags, err := parseStoreFlagList(b)
	if err != nil {
		return Command{}, err
	}
	cmd.StoreFlags = flags
	return cmd, nil
}

func parseStoreUnchangedSince(b *ParseBuffer) (uint64, error) {
	if err := parseSpacesThen(b, "(UNCHANGEDSINCE"); err != nil {
		return 0, err
	}
	if _, err := parseSpaces(b); err != nil {
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

func parseStoreMode(b *ParseBuffer) (struct {
	mode   StoreMode
	silent bool
}, error) {
	_, mode, err := parseFromLookupTable(b, storeModeTable)
	return mode, err
}

func parseStoreFlagList(b *ParseBuffer) ([]Flag, error) {
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != '(' {
		f, err := parseFlag(b)
		if err != nil {
			return nil, err
		}
		return []Flag{f}, nil
	}
	b.Consume(1)
	return parseFlagListBody(b)
}

func parseCopyMoveCommand(kind CommandKind) func(*ParseBuffer, *StackTracker) (Command, error) {
	return func(b *ParseBuffer, st *StackTracker) (Command, error) {
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		set, err := parseLastCommandSet[SeqBrand](b)
		if err != nil {
			return Command{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		mbox, err := parseMailbox(b)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: kind, CopySet: set, Mailbox: mbox}, nil
	}
}

// parseUIDCommand handles the UID wrapper, dispatching its six
// sub-verbs against a UID-set argument instead of a sequence-set
// (§4.5).
func parseUIDCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	sub, err := parseAtom(b)
	if err != nil {
		return Command{}, err
	}
	upper := append([]byte(nil), sub...)
	asciiUpper(upper)
	switch string(upper) {
	case "FETCH":
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		set, err := parseLastCommandSet[UIDBrand](b)
		if err != nil {
			return Command{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		attrs, err := parseFetchAttributeList(b, st)
		if err != nil {
			return Command{}, err
		}
		mods, err := parseFetchModifiers(b)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdUIDFetch, UIDFetchSet: set, FetchAttrs: attrs, FetchModifiers: mods}, nil
	case "SEARCH":
		cmd, err := parseSearchCommand(b, st)
		if err != nil {
			return Command{}, err
		}
		cmd.Kind = CmdUIDSearch
		return cmd, nil
	case "STORE":
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		set, err := parseLastCommandSet[UIDBrand](b)
		if err != nil {
			return Command{}, err
		}
		cmd := Command{Kind: CmdUIDStore, UIDStoreSet: set}
		if since, ok, err := optional(b, parseStoreUnchangedSince); err != nil {
			return Command{}, err
		} else if ok {
			cmd.HasUnchangedSince = true
			cmd.StoreUnchangedSince = since
		}
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		mode, err := parseStoreMode(b)
		if err != nil {
			return Command{}, err
		}
		cmd.StoreMode, cmd.StoreSilent = mode.mode, mode.silent
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		flags, err := parseStoreFlagList(b)
		if err != nil {
			return Command{}, err
		}
		cmd.StoreFlags = flags
		return cmd, nil
	case "COPY", "MOVE":
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		set, err := parseLastCommandSet[UIDBrand](b)
		if err != nil {
			return Command{}, err
		}
		if _, err := parseSpaces(b); err != nil {
			return Command{}, err
		}
		mbox, err := parseMailbox(b)
		if err != nil {
			return Command{}, err
		}
		kind := CmdUIDCopy
		if string(upper) == "MOVE" {
			kind = CmdUIDMove
		}
		return Command{Kind: kind, UIDCopySet: set, Mailbox: mbox}, nil
	case "EXPUNGE":
		cmd := Command{Kind: CmdUIDExpunge}
		if set, ok, err := optional(b, func(b *ParseBuffer) (MessageIdentifierSet[UIDBrand], error) {
			if _, err := parseSpaces(b); err != nil {
				return MessageIdentifierSet[UIDBrand]{}, err
			}
			return parseIdentifierSet[UIDBrand](b)
		}); err != nil {
			return Command{}, err
		} else if ok {
			cmd.HasUIDExpungeSet = true
			cmd.UIDExpungeSet = set
		}
		return cmd, nil
	default:
		return Command{}, parseErrorf(b.Position(), "unknown UID sub-verb %q", sub)
	}
}

func parseEnableCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	caps, err := oneOrMore(b, func(b *ParseBuffer) (string, error) {
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		a, err := parseAtom(b)
		return string(a), err
	})
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdEnable, Capabilities: caps}, nil
}

func parseIDCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	params, err := parseIDParamList(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdID, IDParams: params}, nil
}

func parseGetMetadataCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: CmdGetMetadata}
	if opts, ok, err := optional(b, parseMetadataOptions); err != nil {
		return Command{}, err
	} else if ok {
		cmd.MetadataOptions = opts
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	cmd.Mailbox = mbox
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	entries, err := parseMetadataEntryList(b)
	if err != nil {
		return Command{}, err
	}
	cmd.MetadataEntries = entries
	return cmd, nil
}

func parseMetadataOptions(b *ParseBuffer) (MetadataOptions, error) {
	if err := fixedString(b, "(", true); err != nil {
		return MetadataOptions{}, err
	}
	opts, err := oneOrMoreSepBySpace(b, parseOneMetadataOption)
	if err != nil {
		return MetadataOptions{}, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return MetadataOptions{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return MetadataOptions{}, err
	}
	var out MetadataOptions
	for _, o := range opts {
		out.Depth = o.Depth
		if o.HasMaxSize {
			out.HasMaxSize, out.MaxSize = true, o.MaxSize
		}
	}
	return out, nil
}

func parseOneMetadataOption(b *ParseBuffer) (MetadataOptions, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, "DEPTH", false); err == nil {
		if _, err := parseSpaces(b); err != nil {
			return MetadataOptions{}, err
		}
		mark2 := b.Checkpoint()
		if err := fixedString(b, "infinity", false); err == nil {
			return MetadataOptions{Depth: MetadataDepthInfinity}, nil
		} else if IsIncomplete(err) {
			return MetadataOptions{}, err
		}
		b.Restore(mark2)
		n, err := parseNumber(b)
		if err != nil {
			return MetadataOptions{}, err
		}
		if n == 1 {
			return MetadataOptions{Depth: MetadataDepthOne}, nil
		}
		return MetadataOptions{Depth: MetadataDepthZero}, nil
	} else if IsIncomplete(err) {
		return MetadataOptions{}, err
	}
	b.Restore(mark)
	if err := fixedString(b, "MAXSIZE", false); err != nil {
		return MetadataOptions{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return MetadataOptions{}, err
	}
	n, err := parseNumber(b)
	if err != nil {
		return MetadataOptions{}, err
	}
	return MetadataOptions{HasMaxSize: true, MaxSize: n}, nil
}

func parseSetMetadataCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	entries, err := parseMetadataEntryList(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdSetMetadata, Mailbox: mbox, MetadataEntries: entries}, nil
}

func parseGetQuotaCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	root, err := parseAstringBare(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdGetQuota, QuotaRoot: string(root)}, nil
}

func parseSetQuotaCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	root, err := parseAstringBare(b)
	if err != nil {
		return Command{}, err
	}
	if err := parseSpacesThen(b, "("); err != nil {
		return Command{}, err
	}
	var limits []QuotaResourceLimit
	if c, err := b.PeekByte(); err != nil {
		return Command{}, err
	} else if c != ')' {
		ls, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (QuotaResourceLimit, error) {
			name, err := parseAtom(b)
			if err != nil {
				return QuotaResourceLimit{}, err
			}
			if _, err := parseSpaces(b); err != nil {
				return QuotaResourceLimit{}, err
			}
			n, _, err := parseUnsignedInt64(b, false)
			if err != nil {
				return QuotaResourceLimit{}, err
			}
			return QuotaResourceLimit{Resource: string(name), Limit: n}, nil
		})
		if err != nil {
			return Command{}, err
		}
		limits = ls
	} else {
		b.Consume(1)
		return Command{Kind: CmdSetQuota, QuotaRoot: string(root)}, nil
	}
	if err := fixedString(b, ")", true); err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdSetQuota, QuotaRoot: string(root), QuotaLimits: limits}, nil
}

func parseGetQuotaRootCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mbox, err := parseMailbox(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdGetQuotaRoot, Mailbox: mbox}, nil
}

func parseResetKeyCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	cmd := Command{Kind: CmdResetKey}
	if mbox, ok, err := optional(b, func(b *ParseBuffer) (Mailbox, error) {
		if _, err := parseSpaces(b); err != nil {
			return nil, err
		}
		return parseMailbox(b)
	}); err != nil {
		return Command{}, err
	} else if ok {
		cmd.Mailbox = mbox
	}
	if mechs, ok, err := optional(b, func(b *ParseBuffer) ([]string, error) {
		return oneOrMore(b, func(b *ParseBuffer) (string, error) {
			if _, err := parseSpaces(b); err != nil {
				return "", err
			}
			a, err := parseAtom(b)
			return string(a), err
		})
	}); err != nil {
		return Command{}, err
	} else if ok {
		cmd.URLMechanisms = mechs
	}
	return cmd, nil
}

func parseGenURLAuthCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	urls, err := oneOrMore(b, func(b *ParseBuffer) (string, error) {
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		u, err := parseAstringBare(b)
		if err != nil {
			return "", err
		}
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		if err := fixedString(b, "INTERNAL", false); err != nil {
			return "", err
		}
		return string(u), nil
	})
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdGenURLAuth, URLs: urls}, nil
}

func parseURLFetchCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	urls, err := oneOrMore(b, func(b *ParseBuffer) (string, error) {
		if _, err := parseSpaces(b); err != nil {
			return "", err
		}
		u, err := parseAstringBare(b)
		return string(u), err
	})
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdURLFetch, URLs: urls}, nil
}

func parseCompressCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	mech, err := parseAtom(b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdCompress, CompressionMechanism: string(mech)}, nil
}

func parseUIDBatchesCommand(b *ParseBuffer, st *StackTracker) (Command, error) {
	if _, err := parseSpaces(b); err != nil {
		return Command{}, err
	}
	set, err := parseIdentifierSet[UIDBrand](b)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdUIDBatches, UIDBatchesSet: set}, nil
}
