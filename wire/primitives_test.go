package wire

import "testing"

func TestFixedStringCaseInsensitive(t *testing.T) {
	b := feedAll("LoGiN")
	if err := fixedString(b, "LOGIN", false); err != nil {
		t.Fatalf("fixedString: %v", err)
	}
	if b.Readable() != 0 {
		t.Fatalf("Readable = %d, want 0", b.Readable())
	}
}

func TestFixedStringMismatchRewindsCursor(t *testing.T) {
	b := feedAll("NOOP\r\n")
	before := b.Position()
	if err := fixedString(b, "LOGIN", false); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if b.Position() != before {
		t.Fatalf("cursor moved on failed fixedString: %d != %d", b.Position(), before)
	}
}

func TestFixedStringIncompleteOnShortBuffer(t *testing.T) {
	b := feedAll("LOG")
	err := fixedString(b, "LOGIN", false)
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
}

func TestOptionalRecoversParseError(t *testing.T) {
	b := feedAll("NOOP")
	v, ok, err := optional(b, func(b *ParseBuffer) (string, error) {
		return "", fixedString(b, "LOGIN", false)
	})
	if err != nil {
		t.Fatalf("optional propagated error: %v", err)
	}
	if ok {
		t.Fatalf("ok = true, want false; v=%q", v)
	}
	if b.Position() != 0 {
		t.Fatalf("cursor moved: %d", b.Position())
	}
}

func TestOptionalPropagatesIncomplete(t *testing.T) {
	b := feedAll("LOG")
	_, _, err := optional(b, func(b *ParseBuffer) (string, error) {
		return "", fixedString(b, "LOGIN", false)
	})
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
}

func TestOneOfTriesAlternativesInOrder(t *testing.T) {
	b := feedAll("BBB")
	got, err := oneOf(b,
		func(b *ParseBuffer) (string, error) {
			return "A", fixedString(b, "AAA", false)
		},
		func(b *ParseBuffer) (string, error) {
			return "B", fixedString(b, "BBB", false)
		},
	)
	if err != nil {
		t.Fatalf("oneOf: %v", err)
	}
	if got != "B" {
		t.Fatalf("got %q, want B", got)
	}
}

func TestOneOfAllFailYieldsParseError(t *testing.T) {
	b := feedAll("CCC")
	_, err := oneOf(b,
		func(b *ParseBuffer) (string, error) { return "", fixedString(b, "AAA", false) },
		func(b *ParseBuffer) (string, error) { return "", fixedString(b, "BBB", false) },
	)
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsIncomplete(err) {
		t.Fatalf("got ErrIncomplete, want ParseError")
	}
}

func TestZeroOrMoreStopsOnFirstFailure(t *testing.T) {
	b := feedAll("aaab")
	got, err := zeroOrMore(b, func(b *ParseBuffer) (byte, error) {
		c, err := b.PeekByte()
		if err != nil {
			return 0, err
		}
		if c != 'a' {
			return 0, parseErrorf(b.Position(), "not an a")
		}
		b.Consume(1)
		return c, nil
	})
	if err != nil {
		t.Fatalf("zeroOrMore: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	rest, _ := b.Peek(1)
	if string(rest) != "b" {
		t.Fatalf("remaining = %q, want b", rest)
	}
}

func TestParseNumberAndNZNumber(t *testing.T) {
	b := feedAll("0")
	if _, err := parseNZNumber(b); err == nil {
		t.Fatalf("expected error for nz-number 0")
	}
	b2 := feedAll("123 ")
	n, err := parseNumber(b2)
	if err != nil {
		t.Fatalf("parseNumber: %v", err)
	}
	if n != 123 {
		t.Fatalf("n = %d, want 123", n)
	}
}

// A digit run abutting the end of the buffer is never treated as the
// whole number: "12" out of an eventual "123" must signal incomplete,
// not succeed early as the number 12.
func TestParseNumberIncompleteAtBufferEnd(t *testing.T) {
	b := feedAll("12")
	if _, _, err := parseUnsignedInt64(b, true); !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
	if b.Position() != 0 {
		t.Fatalf("cursor moved on incomplete digit run: %d", b.Position())
	}
}

func TestParseQuotedWithEscapes(t *testing.T) {
	b := feedAll(`"hello \"world\" and \\slash"`)
	got, err := parseQuoted(b)
	if err != nil {
		t.Fatalf("parseQuoted: %v", err)
	}
	want := `hello "world" and \slash`
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestParseLiteralSync(t *testing.T) {
	b := feedAll("{5}\r\nhello")
	data, mode, err := parseLiteral(b, 0)
	if err != nil {
		t.Fatalf("parseLiteral: %v", err)
	}
	if string(data) != "hello" || mode != LiteralSync {
		t.Fatalf("got %q mode=%v", data, mode)
	}
}

func TestParseLiteralNonSync(t *testing.T) {
	b := feedAll("{11+}\r\nHello World\r\n")
	data, mode, err := parseLiteral(b, 0)
	if err != nil {
		t.Fatalf("parseLiteral: %v", err)
	}
	if string(data) != "Hello World" || mode != LiteralNonSync {
		t.Fatalf("got %q mode=%v", data, mode)
	}
}

func TestParseLiteralNoTransferEncoding(t *testing.T) {
	b := feedAll("~{3}\r\n\x00\x01\x02")
	data, mode, err := parseLiteral(b, 0)
	if err != nil {
		t.Fatalf("parseLiteral: %v", err)
	}
	if mode != LiteralNoTransferEncoding || len(data) != 3 {
		t.Fatalf("got %v mode=%v", data, mode)
	}
}

func TestParseLiteralTilde_NSyncInvalid(t *testing.T) {
	b := feedAll("~{3+}\r\nabc")
	if _, _, err := parseLiteral(b, 0); err == nil {
		t.Fatalf("expected error for ~{N+}")
	}
}

func TestParseLiteralExceedsMaxLength(t *testing.T) {
	b := feedAll("{100}\r\n")
	if _, _, err := parseLiteral(b, 10); err == nil {
		t.Fatalf("expected error for literal exceeding max length")
	}
}

func TestParseLiteralIncompleteBody(t *testing.T) {
	b := feedAll("{5}\r\nhel")
	_, _, err := parseLiteral(b, 0)
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
}

func TestParseNewlineLenientBareLF(t *testing.T) {
	b := feedAll("\n")
	if err := parseNewline(b); err != nil {
		t.Fatalf("parseNewline bare LF: %v", err)
	}
}

func TestParseNewlineCRLF(t *testing.T) {
	b := feedAll("\r\n")
	if err := parseNewline(b); err != nil {
		t.Fatalf("parseNewline CRLF: %v", err)
	}
}

func TestCompositeRestoresCursorAndStackOnFailure(t *testing.T) {
	b := feedAll("XYZ")
	st := NewStackTracker(10)
	_, err := composite(b, st, func(b *ParseBuffer) (int, error) {
		b.Consume(1)
		return 0, parseErrorf(b.Position(), "boom")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if b.Position() != 0 {
		t.Fatalf("cursor not restored: %d", b.Position())
	}
	if st.Depth() != 0 {
		t.Fatalf("depth not restored: %d", st.Depth())
	}
}

func TestFromLookupTableUnknownRewinds(t *testing.T) {
	b := feedAll("FOO BAR")
	table := map[string]int{"BAR": 1}
	_, _, err := parseFromLookupTable(b, table)
	if err == nil {
		t.Fatalf("expected error")
	}
	if b.Position() != 0 {
		t.Fatalf("cursor not rewound on unknown keyword: %d", b.Position())
	}
}

func TestFromLookupTableCaseInsensitive(t *testing.T) {
	b := feedAll("foo ")
	table := map[string]int{"FOO": 7}
	_, v, err := parseFromLookupTable(b, table)
	if err != nil {
		t.Fatalf("parseFromLookupTable: %v", err)
	}
	if v != 7 {
		t.Fatalf("v = %d, want 7", v)
	}
}

// A determined mismatch inside the buffered prefix is a ParseError even
// when fewer than len(s) bytes are buffered; reporting ErrIncomplete
// there would make an alternative wait for bytes the peer never sends.
func TestFixedStringMismatchedShortPrefixIsParseError(t *testing.T) {
	b := feedAll("~{4")
	err := fixedString(b, "CATENATE", false)
	if err == nil || IsIncomplete(err) {
		t.Fatalf("got %v, want ParseError", err)
	}
	if b.Position() != 0 {
		t.Fatalf("cursor moved: %d", b.Position())
	}
}

func TestCompositeRestoresCursorOnIncomplete(t *testing.T) {
	b := feedAll("AB")
	st := NewStackTracker(10)
	_, err := composite(b, st, func(b *ParseBuffer) (int, error) {
		b.Consume(2)
		return 0, ErrIncomplete
	})
	if !IsIncomplete(err) {
		t.Fatalf("got %v, want ErrIncomplete", err)
	}
	if b.Position() != 0 {
		t.Fatalf("cursor not restored on incomplete: %d", b.Position())
	}
}
