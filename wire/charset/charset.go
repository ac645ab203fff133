// Package charset decodes the bytes of a SEARCH command's non-ASCII
// literal operands according to the CHARSET name the command declared
// (RFC 3501 section 6.4.4). The wire grammar only records the charset
// atom and the literal's raw bytes (see wire.SearchKey); turning that
// pair into UTF-8 text is a caller concern, same as mailbox name
// decoding in package mutf7.
package charset

import (
	"bytes"
	"io"
	"log"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// Decode converts src from the named charset to UTF-8. "UTF-8" and
// "US-ASCII" (case-insensitive) are passed through unchanged, since
// US-ASCII is a strict subset of UTF-8.
func Decode(charsetName string, src []byte) ([]byte, error) {
	switch {
	case equalFold(charsetName, "UTF-8"), equalFold(charsetName, "US-ASCII"):
		return src, nil
	}
	enc, err := ianaindex.MIME.Encoding(charsetName)
	if err != nil || enc == nil {
		// ianaindex doesn't carry every charset IMAP clients send in
		// the wild (notably gb2312, which some legacy clients use
		// instead of the registered gbk/gb18030 names).
		if equalFold(charsetName, "gb2312") {
			enc = simplifiedchinese.GB18030
		} else {
			log.Printf("charset: no decoder for %q, passing through", charsetName)
			return src, nil
		}
	}
	r := enc.NewDecoder().Reader(bytes.NewReader(src))
	return io.ReadAll(r)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

