package vm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// Deescaper is a transform.Transformer that replaces every \DDD escape
// (three decimal digits) with the character of that code.
var Deescaper transform.Transformer = deescaper{}

type deescaper struct{ transform.NopResetter }

func (deescaper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\\' {
			if len(src)-nSrc < 4 && !atEOF {
				return nDst, nSrc, transform.ErrShortSrc
			}
			if len(src)-nSrc >= 4 && isDigit(src[nSrc+1]) && isDigit(src[nSrc+2]) && isDigit(src[nSrc+3]) {
				code := rune(src[nSrc+1]-'0')*100 + rune(src[nSrc+2]-'0')*10 + rune(src[nSrc+3]-'0')
				var buf [utf8.UTFMax]byte
				n := utf8.EncodeRune(buf[:], code)
				if nDst+n > len(dst) {
					return nDst, nSrc, transform.ErrShortDst
				}
				nDst += copy(dst[nDst:], buf[:n])
				nSrc += 4
				continue
			}
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Deescape returns s with all \DDD escapes replaced.
func Deescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	out, _, err := transform.String(Deescaper, s)
	if err != nil {
		return s
	}
	return out
}

// ValidEscapes reports whether every backslash in s starts a \DDD escape.
func ValidEscapes(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			continue
		}
		if i+3 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) || !isDigit(s[i+3]) {
			return false
		}
		i += 3
	}
	return true
}

// Escape is the inverse of Deescape for plain text: it encodes every
// backslash as \092 so the result de-escapes back to s.
func Escape(s string) string {
	return strings.ReplaceAll(s, `\`, `\092`)
}
