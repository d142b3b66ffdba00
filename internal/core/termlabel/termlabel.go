// Package termlabel cleans premium term labels typed by users or read from draft files
// Pipeline order
// 1 drop invalid UTF-8, NUL and C0/C1 controls
// 2 Unicode NFKC so fullwidth digits and compatibility forms match their ASCII spelling
// 3 remove format chars (ZWJ ZWNJ FEFF and friends)
// 4 collapse whitespace runs to one space and trim
// Case is kept; labels are shown as typed
package termlabel

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)),
		)
	},
}

// Clean returns the canonical display form of a term label
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = stripControls(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}
	return strings.Join(strings.Fields(ns), " ")
}

// stripControls drops invalid bytes and control runes; whitespace controls become spaces
func stripControls(s string) string {
	clean := true
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == utf8.RuneError && size == 1:
		case unicode.IsControl(r) && !unicode.IsSpace(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
