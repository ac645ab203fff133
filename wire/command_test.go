package wire

import "testing"

func parseFullCommand(t *testing.T, input string) TaggedCommand {
	t.Helper()
	b := NewParseBuffer()
	b.Feed([]byte(input))
	cmd, err := ParseTaggedCommand(b, DefaultParserOptions())
	if err != nil {
		t.Fatalf("ParseTaggedCommand(%q): %v", input, err)
	}
	if b.Readable() != 0 {
		t.Fatalf("ParseTaggedCommand(%q): %d bytes unconsumed", input, b.Readable())
	}
	return cmd
}

// Scenario 1 of the test plan: a UID FETCH with a BODY.PEEK[HEADER.FIELDS]
// section.
func TestUIDFetchHeaderFields(t *testing.T) {
	cmd := parseFullCommand(t, "A001 UID FETCH 1:* (UID FLAGS BODY.PEEK[HEADER.FIELDS (SUBJECT FROM)])\r\n")
	if cmd.Tag != "A001" {
		t.Fatalf("tag = %q", cmd.Tag)
	}
	if cmd.Command.Kind != CmdUIDFetch {
		t.Fatalf("kind = %v, want CmdUIDFetch", cmd.Command.Kind)
	}
	set := cmd.Command.UIDFetchSet
	if set.IsLastCommand() {
		t.Fatalf("expected explicit set")
	}
	if set.Set().Ranges[0].Lower.Value() != 1 || !set.Set().Ranges[0].Upper.IsStar() {
		t.Fatalf("set = %+v, want 1:*", set.Set())
	}
	attrs := cmd.Command.FetchAttrs
	if len(attrs) != 3 {
		t.Fatalf("got %d attrs, want 3: %+v", len(attrs), attrs)
	}
	if attrs[0].Kind != FAUID || attrs[1].Kind != FAFlags {
		t.Fatalf("attrs[0:2] = %+v", attrs[:2])
	}
	bs := attrs[2]
	if bs.Kind != FABodySection || !bs.Peek {
		t.Fatalf("BODY.PEEK attr = %+v", bs)
	}
	if bs.Section.Specifier != SectionHeaderFields {
		t.Fatalf("section specifier = %v", bs.Section.Specifier)
	}
	if len(bs.Section.FieldNames) != 2 || bs.Section.FieldNames[0] != "SUBJECT" || bs.Section.FieldNames[1] != "FROM" {
		t.Fatalf("field names = %v", bs.Section.FieldNames)
	}
}

// Scenario 2: UID SEARCH RETURN (ALL) MODSEQ.
func TestUIDSearchModseq(t *testing.T) {
	cmd := parseFullCommand(t, "t2 UID SEARCH RETURN (ALL) MODSEQ 12345\r\n")
	if cmd.Command.Kind != CmdUIDSearch {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	if !cmd.Command.HasSearchReturn || len(cmd.Command.SearchReturnOpts) != 1 || cmd.Command.SearchReturnOpts[0] != ReturnAll {
		t.Fatalf("return opts = %+v", cmd.Command.SearchReturnOpts)
	}
	if cmd.Command.HasSearchCharset {
		t.Fatalf("unexpected charset")
	}
	key := cmd.Command.SearchKeyRoot
	if key == nil || key.Kind != SKModseq {
		t.Fatalf("key = %+v", key)
	}
	if key.Modseq.HasEntry {
		t.Fatalf("unexpected entry on bare MODSEQ")
	}
	if key.Modseq.Value != 12345 {
		t.Fatalf("modseq value = %d", key.Modseq.Value)
	}
}

// Scenario 6: a range with lower > upper is a BadCommand wrapping a
// ParseError, leaving a hint naming both endpoints.
func TestUIDFetchInvalidRangeIsBadCommand(t *testing.T) {
	b := NewParseBuffer()
	b.Feed([]byte("t6 UID FETCH 10:5 (UID)\r\n"))
	_, err := ParseTaggedCommand(b, DefaultParserOptions())
	if err == nil {
		t.Fatalf("expected error")
	}
	bc, ok := err.(*BadCommand)
	if !ok {
		t.Fatalf("got %T, want *BadCommand", err)
	}
	if bc.Tag != "t6" {
		t.Fatalf("tag = %q", bc.Tag)
	}
	pe, ok := bc.Inner.(*ParseError)
	if !ok {
		t.Fatalf("inner = %T, want *ParseError", bc.Inner)
	}
	if pe.Hint != "Invalid range 10:5" {
		t.Fatalf("hint = %q", pe.Hint)
	}
}

func TestNoopAndCapability(t *testing.T) {
	cmd := parseFullCommand(t, "a1 NOOP\r\n")
	if cmd.Command.Kind != CmdNoop {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	cmd = parseFullCommand(t, "a2 CAPABILITY\r\n")
	if cmd.Command.Kind != CmdCapability {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
}

func TestLoginCommand(t *testing.T) {
	cmd := parseFullCommand(t, `a3 LOGIN fred "secret pass"` + "\r\n")
	if cmd.Command.Kind != CmdLogin {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	if string(cmd.Command.Username) != "fred" || string(cmd.Command.Password) != "secret pass" {
		t.Fatalf("got user=%q pass=%q", cmd.Command.Username, cmd.Command.Password)
	}
}

// Case-insensitivity of keywords (§8 universal invariant): every casing
// of a verb parses identically.
func TestCommandVerbCaseInsensitive(t *testing.T) {
	variants := []string{
		"a1 NOOP\r\n",
		"a1 noop\r\n",
		"a1 NoOp\r\n",
	}
	var first TaggedCommand
	for i, in := range variants {
		cmd := parseFullCommand(t, in)
		if i == 0 {
			first = cmd
		} else if cmd.Command.Kind != first.Command.Kind {
			t.Fatalf("variant %q produced different kind %v", in, cmd.Command.Kind)
		}
	}
}

func TestStoreCommand(t *testing.T) {
	cmd := parseFullCommand(t, "a4 STORE 1:5 +FLAGS.SILENT (\\Seen \\Deleted)\r\n")
	if cmd.Command.Kind != CmdStore {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	if cmd.Command.StoreMode != StoreAdd || !cmd.Command.StoreSilent {
		t.Fatalf("mode=%v silent=%v", cmd.Command.StoreMode, cmd.Command.StoreSilent)
	}
	if len(cmd.Command.StoreFlags) != 2 || cmd.Command.StoreFlags[0] != FlagSeen {
		t.Fatalf("flags = %v", cmd.Command.StoreFlags)
	}
}

func TestListCommand(t *testing.T) {
	cmd := parseFullCommand(t, `a5 LIST "" "*"`+"\r\n")
	if cmd.Command.Kind != CmdList {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	if len(cmd.Command.ListPatterns) != 1 || string(cmd.Command.ListPatterns[0]) != "*" {
		t.Fatalf("patterns = %v", cmd.Command.ListPatterns)
	}
}

// Range validity (§8 universal invariant): every parsed a:b with concrete
// endpoints satisfies a <= b.
func TestRangeValidityInvariant(t *testing.T) {
	b := feedAll("3:7 ")
	r, err := parseIdentifierRange[SeqBrand](b)
	if err != nil {
		t.Fatalf("parseIdentifierRange: %v", err)
	}
	if r.Lower.Value() > r.Upper.Value() {
		t.Fatalf("invariant violated: %+v", r)
	}
}

// Incomplete-message transparency (§8): feeding a true prefix of a valid
// command must yield ErrIncomplete at some point, never a ParseError.
func TestIncompleteMessageTransparency(t *testing.T) {
	full := "a1 LOGIN fred secret\r\n"
	for k := 1; k < len(full); k++ {
		b := NewParseBuffer()
		b.Feed([]byte(full[:k]))
		_, err := ParseTaggedCommand(b, DefaultParserOptions())
		if err == nil {
			t.Fatalf("prefix %q: parsed as a complete command, want ErrIncomplete", full[:k])
		}
		if !IsIncomplete(err) {
			t.Fatalf("prefix %q: got %v, want ErrIncomplete", full[:k], err)
		}
	}
	b := NewParseBuffer()
	b.Feed([]byte(full))
	if _, err := ParseTaggedCommand(b, DefaultParserOptions()); err != nil {
		t.Fatalf("full input failed: %v", err)
	}
}

func TestDepthExceededOnNestedSearch(t *testing.T) {
	opts := DefaultParserOptions()
	opts.MaxDepth = 4
	nest := ""
	for i := 0; i < 20; i++ {
		nest += "(NOT "
	}
	nest += "SEEN"
	for i := 0; i < 20; i++ {
		nest += ")"
	}
	b := NewParseBuffer()
	b.Feed([]byte("a1 SEARCH " + nest + "\r\n"))
	_, err := ParseTaggedCommand(b, opts)
	if err == nil {
		t.Fatalf("expected DepthExceeded-derived BadCommand")
	}
	bc, ok := err.(*BadCommand)
	if !ok {
		t.Fatalf("got %T, want *BadCommand", err)
	}
	if _, ok := bc.Inner.(*DepthExceeded); !ok {
		t.Fatalf("inner = %T, want *DepthExceeded", bc.Inner)
	}
}

func TestEnableMultipleCapabilities(t *testing.T) {
	cmd := parseFullCommand(t, "a6 ENABLE QRESYNC CONDSTORE\r\n")
	if cmd.Command.Kind != CmdEnable {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	caps := cmd.Command.Capabilities
	if len(caps) != 2 || caps[0] != "QRESYNC" || caps[1] != "CONDSTORE" {
		t.Fatalf("capabilities = %v", caps)
	}
}

func TestESearchCommandVerb(t *testing.T) {
	cmd := parseFullCommand(t, "a9 ESEARCH RETURN (MIN MAX) FROM \"fred\"\r\n")
	if cmd.Command.Kind != CmdESearch {
		t.Fatalf("kind = %v, want CmdESearch", cmd.Command.Kind)
	}
	if !cmd.Command.HasSearchReturn || len(cmd.Command.SearchReturnOpts) != 2 {
		t.Fatalf("return opts = %+v", cmd.Command.SearchReturnOpts)
	}
	if cmd.Command.SearchKeyRoot.Kind != SKFrom || cmd.Command.SearchKeyRoot.Text != "fred" {
		t.Fatalf("key = %+v", cmd.Command.SearchKeyRoot)
	}
}

// A present-but-empty RETURN () defaults to [ALL], distinct from the
// clause being absent.
func TestSearchEmptyReturnDefaultsToAll(t *testing.T) {
	cmd := parseFullCommand(t, "a7 SEARCH RETURN () SEEN\r\n")
	if !cmd.Command.HasSearchReturn {
		t.Fatalf("HasSearchReturn = false, want true")
	}
	if len(cmd.Command.SearchReturnOpts) != 1 || cmd.Command.SearchReturnOpts[0] != ReturnAll {
		t.Fatalf("return opts = %+v", cmd.Command.SearchReturnOpts)
	}
	cmd = parseFullCommand(t, "a8 SEARCH SEEN\r\n")
	if cmd.Command.HasSearchReturn {
		t.Fatalf("HasSearchReturn = true for absent clause")
	}
}

func TestSearchMultipleKeysFoldIntoAnd(t *testing.T) {
	cmd := parseFullCommand(t, "a9 SEARCH SEEN FROM fred SINCE 1-Feb-1994\r\n")
	key := cmd.Command.SearchKeyRoot
	if key.Kind != SKAnd || len(key.And) != 3 {
		t.Fatalf("key = %+v", key)
	}
	if key.And[0].Kind != SKSeen || key.And[1].Kind != SKFrom || key.And[2].Kind != SKSince {
		t.Fatalf("children = %+v", key.And)
	}
	if key.And[2].Date.Day != 1 || key.And[2].Date.Year != 1994 {
		t.Fatalf("date = %+v", key.And[2].Date)
	}
}

func TestSearchCharsetClause(t *testing.T) {
	cmd := parseFullCommand(t, "a10 SEARCH CHARSET UTF-8 TEXT hello\r\n")
	if !cmd.Command.HasSearchCharset || cmd.Command.SearchCharset != "UTF-8" {
		t.Fatalf("charset = %q (has=%v)", cmd.Command.SearchCharset, cmd.Command.HasSearchCharset)
	}
	if cmd.Command.SearchKeyRoot.Kind != SKText {
		t.Fatalf("key = %+v", cmd.Command.SearchKeyRoot)
	}
}

func TestStoreWithDollarAndUnchangedSince(t *testing.T) {
	cmd := parseFullCommand(t, "a11 STORE $ (UNCHANGEDSINCE 320162338) +FLAGS (\\Deleted)\r\n")
	if !cmd.Command.StoreSet.IsLastCommand() {
		t.Fatalf("expected $ store set")
	}
	if !cmd.Command.HasUnchangedSince || cmd.Command.StoreUnchangedSince != 320162338 {
		t.Fatalf("unchangedsince = %v %d", cmd.Command.HasUnchangedSince, cmd.Command.StoreUnchangedSince)
	}
	if cmd.Command.StoreMode != StoreAdd || cmd.Command.StoreSilent {
		t.Fatalf("mode=%v silent=%v", cmd.Command.StoreMode, cmd.Command.StoreSilent)
	}
}

func TestSelectWithQResync(t *testing.T) {
	cmd := parseFullCommand(t, "a12 SELECT INBOX (QRESYNC (67890007 20050715194045000 41,43:211))\r\n")
	if cmd.Command.Kind != CmdSelect {
		t.Fatalf("kind = %v", cmd.Command.Kind)
	}
	if len(cmd.Command.SelectQualifiers) != 1 {
		t.Fatalf("qualifiers = %+v", cmd.Command.SelectQualifiers)
	}
	q := cmd.Command.SelectQualifiers[0].QResync
	if q == nil || q.UIDValidity != 67890007 {
		t.Fatalf("qresync = %+v", q)
	}
	if q.KnownUIDs == nil || len(q.KnownUIDs.Ranges) != 2 {
		t.Fatalf("known uids = %+v", q.KnownUIDs)
	}
}
