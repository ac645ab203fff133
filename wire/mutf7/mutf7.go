// Package mutf7 implements "Modified UTF-7", the mailbox-name encoding
// defined by RFC 3501 section 5.1.3 (a restriction of the original UTF-7
// in RFC 2152). The wire grammar returns mailbox names exactly as they
// appeared on the wire (see wire.Mailbox); decoding or encoding that
// name is a caller concern, and this package is the one place in the
// module doing it.
//
// Several MUST requirements in the RFC are relaxed for decoding: there
// is no good recovery from malformed UTF-7, so this package does the
// best it can rather than refusing outright.
package mutf7

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrInvalidUTF7 is returned by AppendDecode when src is not well-formed
// Modified UTF-7.
var ErrInvalidUTF7 = errors.New("mutf7: invalid modified UTF-7")

const encodeModB64 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,"

// modB64 is "modified BASE64", i.e. standard base64 with "," substituted
// for "/" and no padding, per RFC 3501 section 5.1.3.
var modB64 = base64.NewEncoding(encodeModB64).WithPadding(base64.NoPadding)

// AppendDecode decodes src (Modified UTF-7, as a mailbox name appears on
// the wire) and appends the resulting UTF-8 text to dst.
func AppendDecode(dst, src []byte) ([]byte, error) {
	for len(src) > 0 {
		c := src[0]
		src = src[1:]
		if c != '&' {
			dst = append(dst, c)
			continue
		}
		i := bytes.IndexByte(src, '-')
		if i == -1 {
			return nil, ErrInvalidUTF7
		}
		if i == 0 {
			src = src[1:]
			dst = append(dst, '&')
			continue
		}
		scratch := make([]byte, modB64.DecodedLen(i))
		n, err := modB64.Decode(scratch, src[:i])
		src = src[i+1:]
		if err != nil {
			return nil, fmt.Errorf("mutf7: decode: %v", err)
		}
		scratch = scratch[:n]
		if len(scratch)%2 == 1 {
			return nil, ErrInvalidUTF7
		}
		for len(scratch) > 0 {
			r := rune(scratch[0])<<8 | rune(scratch[1])
			scratch = scratch[2:]
			if utf16.IsSurrogate(r) {
				if len(scratch) < 2 {
					return nil, ErrInvalidUTF7
				}
				r2 := rune(scratch[0])<<8 | rune(scratch[1])
				scratch = scratch[2:]
				r = utf16.DecodeRune(r, r2)
			}
			dst = appendRune(dst, r)
		}
	}
	return dst, nil
}

func appendRune(slice []byte, c rune) []byte {
	var b [4]byte
	return append(slice, b[:utf8.EncodeRune(b[:], c)]...)
}

// AppendEncode encodes UTF-8 text src into Modified UTF-7, appending the
// result to dst, for use as an IMAP mailbox name on the wire.
func AppendEncode(dst, src []byte) ([]byte, error) {
	for len(src) > 0 {
		r, _ := utf8.DecodeRune(src)
		if r == '&' {
			dst = append(dst, '&', '-')
			src = src[1:]
			continue
		} else if r < utf8.RuneSelf {
			dst = append(dst, byte(r))
			src = src[1:]
			continue
		}
		scratch := make([]byte, 0, 64)
		for len(src) > 0 {
			r, sz := utf8.DecodeRune(src)
			if r < utf8.RuneSelf {
				break
			}
			src = src[sz:]
			if r1, r2 := utf16.EncodeRune(r); r1 != '�' {
				scratch = append(scratch, byte(r1>>8), byte(r1))
				r = r2
			}
			scratch = append(scratch, byte(r>>8), byte(r))
		}

		b64len := modB64.EncodedLen(len(scratch))
		dst = append(dst, '&')
		dst = append(dst, make([]byte, b64len)...)
		modB64.Encode(dst[len(dst)-b64len:], scratch)
		dst = append(dst, '-')
	}
	return dst, nil
}

// Decode is a convenience wrapper over AppendDecode for callers that
// don't need to reuse a destination buffer.
func Decode(src []byte) ([]byte, error) {
	return AppendDecode(nil, src)
}

// Encode is a convenience wrapper over AppendEncode for callers that
// don't need to reuse a destination buffer.
func Encode(src []byte) ([]byte, error) {
	return AppendEncode(nil, src)
}
