package wire

// fetchAttributeTable dispatches the uppercased leading atom of a FETCH
// attribute to its suffix parser. Attributes with no further argument
// map to a parser that consumes nothing else.
var fetchAttributeTable = map[string]func(*ParseBuffer) (FetchAttribute, error){
	"ENVELOPE":      noArgAttr(FAEnvelope),
	"FLAGS":         noArgAttr(FAFlags),
	"INTERNALDATE":  noArgAttr(FAInternalDate),
	"UID":           noArgAttr(FAUID),
	"MODSEQ":        noArgAttr(FAModSeq),
	"X-GM-MSGID":    noArgAttr(FAGmailMessageID),
	"X-GM-THRID":    noArgAttr(FAGmailThreadID),
	"X-GM-LABELS":   noArgAttr(FAGmailLabels),
	"RFC822":        noArgAttr(FARfc822),
	"RFC822.HEADER": noArgAttr(FARfc822Header),
	"RFC822.TEXT":   noArgAttr(FARfc822Text),
	"RFC822.SIZE":   noArgAttr(FARfc822Size),
	"BODYSTRUCTURE": parseBodyStructureAttr,
	"BODY":          parseBodyAttr,
	"BODY.PEEK":     parseBodyPeekAttr,
	"BINARY":        parseBinaryAttr(false),
	"BINARY.PEEK":   parseBinaryAttr(true),
	"BINARY.SIZE":   parseBinarySizeAttr,
	"PREVIEW":       parsePreviewAttr,
}

func noArgAttr(kind FetchAttributeKind) func(*ParseBuffer) (FetchAttribute, error) {
	return func(b *ParseBuffer) (FetchAttribute, error) {
		return FetchAttribute{Kind: kind}, nil
	}
}

func parseBodyStructureAttr(b *ParseBuffer) (FetchAttribute, error) {
	return FetchAttribute{Kind: FABodyStructure, BodyStructureExtensions: true}, nil
}

// parseBodyAttr handles bare "BODY", which is either the fixed-size
// BODYSTRUCTURE-without-extensions attribute (no "[...]" follows) or a
// BODY[section]<partial> streaming attribute.
func parseBodyAttr(b *ParseBuffer) (FetchAttribute, error) {
	if c, err := b.PeekByte(); err != nil || c != '[' {
		if err != nil && IsIncomplete(err) {
			return FetchAttribute{}, err
		}
		return FetchAttribute{Kind: FABodyStructure}, nil
	}
	return parseBodySectionAttr(b, false)
}

func parseBodyPeekAttr(b *ParseBuffer) (FetchAttribute, error) {
	return parseBodySectionAttr(b, true)
}

func parseBodySectionAttr(b *ParseBuffer, peek bool) (FetchAttribute, error) {
	section, err := parseSection(b)
	if err != nil {
		return FetchAttribute{}, err
	}
	partial, hasPartial, err := parsePartialSuffix(b)
	if err != nil {
		return FetchAttribute{}, err
	}
	attr := FetchAttribute{Kind: FABodySection, Peek: peek, Section: section}
	if hasPartial {
		attr.HasPartial = true
		attr.PartialStart, attr.PartialCount = partial[0], partial[1]
	}
	return attr, nil
}

func parseBinaryAttr(peek bool) func(*ParseBuffer) (FetchAttribute, error) {
	return func(b *ParseBuffer) (FetchAttribute, error) {
		path, err := parseBinarySectionPath(b)
		if err != nil {
			return FetchAttribute{}, err
		}
		partial, hasPartial, err := parsePartialSuffix(b)
		if err != nil {
			return FetchAttribute{}, err
		}
		attr := FetchAttribute{Kind: FABinary, Peek: peek, BinarySection: path}
		if hasPartial {
			attr.HasPartial = true
			attr.PartialStart, attr.PartialCount = partial[0], partial[1]
		}
		return attr, nil
	}
}

func parseBinarySizeAttr(b *ParseBuffer) (FetchAttribute, error) {
	path, err := parseBinarySectionPath(b)
	if err != nil {
		return FetchAttribute{}, err
	}
	return FetchAttribute{Kind: FABinarySize, BinarySection: path}, nil
}

func parseBinarySectionPath(b *ParseBuffer) ([]uint32, error) {
	if err := fixedString(b, "[", true); err != nil {
		return nil, err
	}
	var path []uint32
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c != ']' {
		nums, err := zeroOrMoreDotted(b)
		if err != nil {
			return nil, err
		}
		path = nums
	}
	if err := fixedString(b, "]", true); err != nil {
		return nil, err
	}
	return path, nil
}

func zeroOrMoreDotted(b *ParseBuffer) ([]uint32, error) {
	first, err := parseNZNumber(b)
	if err != nil {
		return nil, err
	}
	out := []uint32{first}
	for {
		mark := b.Checkpoint()
		if err := fixedString(b, ".", true); err != nil {
			if IsIncomplete(err) {
				return nil, err
			}
			b.Restore(mark)
			return out, nil
		}
		n, err := parseNZNumber(b)
		if err != nil {
			if IsIncomplete(err) {
				return nil, err
			}
			b.Restore(mark)
			return out, nil
		}
		out = append(out, n)
	}
}

func parsePreviewAttr(b *ParseBuffer) (FetchAttribute, error) {
	lazy := false
	if _, ok, err := optional(b, func(b *ParseBuffer) (struct{}, error) {
		return struct{}{}, fixedString(b, " (LAZY)", false)
	}); err != nil {
		return FetchAttribute{}, err
	} else if ok {
		lazy = true
	}
	return FetchAttribute{Kind: FAPreview, PreviewLazy: lazy}, nil
}

// parsePartialSuffix reads the optional "<number.number>" byte-range
// suffix on BODY[...]/BINARY[...].
func parsePartialSuffix(b *ParseBuffer) ([2]uint32, bool, error) {
	c, err := b.PeekByte()
	if err != nil {
		return [2]uint32{}, false, err
	}
	if c != '<' {
		return [2]uint32{}, false, nil
	}
	b.Consume(1)
	start, err := parseNumber(b)
	if err != nil {
		return [2]uint32{}, false, err
	}
	if err := fixedString(b, ".", true); err != nil {
		return [2]uint32{}, false, err
	}
	count, err := parseNZNumber(b)
	if err != nil {
		return [2]uint32{}, false, err
	}
	if err := fixedString(b, ">", true); err != nil {
		return [2]uint32{}, false, err
	}
	return [2]uint32{start, count}, true, nil
}

var sectionSpecifierTable = map[string]SectionSpecifierKind{
	"HEADER": SectionHeader, "TEXT": SectionText, "MIME": SectionMIME,
	"HEADER.FIELDS": SectionHeaderFields, "HEADER.FIELDS.NOT": SectionHeaderFieldsNot,
}

// parseSection reads "[" section-spec "]" where section-spec is a
// dotted integer path optionally followed by a specifier keyword (and,
// for HEADER.FIELDS[.NOT], a parenthesized header-name list).
func parseSection(b *ParseBuffer) (Section, error) {
	if err := fixedString(b, "[", true); err != nil {
		return Section{}, err
	}
	var sec Section
	if c, err := b.PeekByte(); err != nil {
		return Section{}, err
	} else if c != ']' {
		needsSpecifier := true
		if c >= '0' && c <= '9' {
			path, err := zeroOrMoreDotted(b)
			if err != nil {
				return Section{}, err
			}
			sec.Path = path
			c2, err := b.PeekByte()
			if err != nil {
				return Section{}, err
			}
			if c2 == '.' {
				b.Consume(1)
			} else {
				needsSpecifier = false
			}
		}
		if needsSpecifier {
			_, spec, err := parseFromLookupTable(b, sectionSpecifierTable)
			if err != nil {
				return Section{}, err
			}
			sec.Specifier = spec
			if spec == SectionHeaderFields || spec == SectionHeaderFieldsNot {
				if _, err := parseSpaces(b); err != nil {
					return Section{}, err
				}
				names, err := parseHeaderFieldNameList(b)
				if err != nil {
					return Section{}, err
				}
				sec.FieldNames = names
			}
		}
	}
	if err := fixedString(b, "]", true); err != nil {
		return Section{}, err
	}
	return sec, nil
}

func parseHeaderFieldNameList(b *ParseBuffer) ([]string, error) {
	if err := fixedString(b, "(", true); err != nil {
		return nil, err
	}
	names, err := oneOrMoreSepBySpace(b, func(b *ParseBuffer) (string, error) {
		v, err := parseAstring(b, 1<<16)
		return string(v), err
	})
	if err != nil {
		return nil, err
	}
	if err := fixedString(b, ")", true); err != nil {
		return nil, err
	}
	return names, nil
}

// fetchMacroTable expands the ALL/FAST/FULL macros into their fixed
// attribute lists, per §4.5.
var fetchMacroTable = map[string][]FetchAttributeKind{
	"ALL":  {FAFlags, FAInternalDate, FARfc822Size, FAEnvelope},
	"FAST": {FAFlags, FAInternalDate, FARfc822Size},
	"FULL": {FAFlags, FAInternalDate, FARfc822Size, FAEnvelope, FABodyStructure},
}

// parseFetchAttributeList reads fetch-att list: a macro name, a single
// attribute, or a parenthesized attribute list.
func parseFetchAttributeList(b *ParseBuffer, st *StackTracker) ([]FetchAttribute, error) {
	if kinds, ok, err := optional(b, func(b *ParseBuffer) ([]FetchAttributeKind, error) {
		_, kinds, err := parseFromLookupTable(b, fetchMacroTable)
		return kinds, err
	}); err != nil {
		return nil, err
	} else if ok {
		attrs := make([]FetchAttribute, len(kinds))
		for i, k := range kinds {
			attrs[i] = FetchAttribute{Kind: k}
		}
		return attrs, nil
	}
	if c, err := b.PeekByte(); err != nil {
		return nil, err
	} else if c == '(' {
		return composite(b, st, func(b *ParseBuffer) ([]FetchAttribute, error) {
			b.Consume(1)
			attrs, err := oneOrMoreSepBySpace(b, parseFetchAttribute)
			if err != nil {
				return nil, err
			}
			if err := fixedString(b, ")", true); err != nil {
				return nil, err
			}
			return attrs, nil
		})
	}
	attr, err := parseFetchAttribute(b)
	if err != nil {
		return nil, err
	}
	return []FetchAttribute{attr}, nil
}

func parseFetchAttribute(b *ParseBuffer) (FetchAttribute, error) {
	_, fn, err := parseFromLookupTable(b, fetchAttributeTable)
	if err != nil {
		return FetchAttribute{}, err
	}
	return fn(b)
}

// parseFetchModifiers reads the optional "(" modifier (SP modifier)* ")"
// suffix of FETCH/UID FETCH, e.g. CHANGEDSINCE / VANISHED (RFC 7162).
func parseFetchModifiers(b *ParseBuffer) ([]FetchModifier, error) {
	if c, err := b.PeekByte(); err != nil || c != ' ' {
		if err != nil && IsIncomplete(err) {
			return nil, err
		}
		return nil, nil
	}
	mods, ok, err := optional(b, func(b *ParseBuffer) ([]FetchModifier, error) {
		if err := parseSpacesThen(b, "("); err != nil {
			return nil, err
		}
		out, err := oneOrMoreSepBySpace(b, parseFetchModifier)
		if err != nil {
			return nil, err
		}
		if err := fixedString(b, ")", true); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return mods, nil
}

func parseFetchModifier(b *ParseBuffer) (FetchModifier, error) {
	mark := b.Checkpoint()
	if err := fixedString(b, "CHANGEDSINCE", false); err == nil {
		if _, err := parseSpaces(b); err != nil {
			return FetchModifier{}, err
		}
		n, _, err := parseUnsignedInt64(b, false)
		if err != nil {
			return FetchModifier{}, err
		}
		return FetchModifier{ChangedSince: n}, nil
	} else if IsIncomplete(err) {
		return FetchModifier{}, err
	}
	b.Restore(mark)
	if err := fixedString(b, "VANISHED", false); err != nil {
		return FetchModifier{}, err
	}
	return FetchModifier{Vanished: true}, nil
}
