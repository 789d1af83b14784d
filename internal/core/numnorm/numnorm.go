// Package numnorm normalizes a searched lottery number to ASCII digits
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKC normalization (fullwidth and other compatibility digits)
// 3 Width fold
// 4 Thai digits to ASCII
// 5 Remove format chars, whitespace and common separators
package numnorm

import (
	"strings"
	"sync"
	"unicode"

	perr "glolotto/internal/platform/errors"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MaxLen bounds a searched number; the longest prize number has six digits
const MaxLen = 6

// transformer chains are not safe for concurrent use, so each caller takes one from the pool
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			width.Fold,
			runes.Map(thaiDigit),
			runes.Remove(runes.In(unicode.Cf)),
			runes.Remove(runes.Predicate(isSeparator)),
		)
	},
}

func thaiDigit(r rune) rune {
	if r >= '๐' && r <= '๙' {
		return '0' + (r - '๐')
	}
	return r
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '_' || r == ','
}

// Fold applies the pipeline without validating the result
func Fold(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	return out
}

// Digits folds s and requires one to MaxLen ASCII digits
func Digits(s string) (string, error) {
	out := Fold(s)
	if out == "" {
		return "", perr.WithField(perr.InvalidArgf("number is empty"), "number")
	}
	if len(out) > MaxLen {
		return "", perr.WithField(perr.InvalidArgf("number %q is longer than %d digits", out, MaxLen), "number")
	}
	for _, r := range out {
		if r < '0' || r > '9' {
			return "", perr.WithField(perr.InvalidArgf("number %q must contain digits only", s), "number")
		}
	}
	return out, nil
}
