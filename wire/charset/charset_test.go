package charset

import (
	"bytes"
	"testing"
)

func TestDecodePassthrough(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf-8", "US-ASCII", "us-ascii"} {
		src := []byte("hello world")
		got, err := Decode(name, src)
		if err != nil {
			t.Fatalf("Decode(%q): %v", name, err)
		}
		if !bytes.Equal(got, src) {
			t.Fatalf("Decode(%q) = %q, want passthrough %q", name, got, src)
		}
	}
}

func TestDecodeISO8859_1(t *testing.T) {
	// 0xE9 is e-acute in ISO-8859-1.
	src := []byte{'r', 0xE9, 's', 'u', 'm', 0xE9}
	got, err := Decode("ISO-8859-1", src)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "résumé"
	if string(got) != want {
		t.Fatalf("Decode(ISO-8859-1) = %q, want %q", got, want)
	}
}

func TestDecodeGB2312Fallback(t *testing.T) {
	// ianaindex.MIME has no usable "gb2312" entry; the package falls
	// back to the GB18030 codec (a superset) rather than failing the
	// whole SEARCH.
	src := []byte{0xC4, 0xE3, 0xBA, 0xC3} // "你好" in GB2312
	got, err := Decode("gb2312", src)
	if err != nil {
		t.Fatalf("Decode(gb2312): %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("Decode(gb2312) returned empty output")
	}
}

func TestDecodeUnknownPassesThrough(t *testing.T) {
	src := []byte("raw bytes")
	got, err := Decode("x-made-up-charset", src)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Fatalf("Decode(unknown) = %q, want unchanged %q", got, src)
	}
}
