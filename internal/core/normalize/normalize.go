// Package normalize canonicalizes operator questions before extraction and classification
// Pipeline order
// 1 sanitize controls and drop invalid UTF-8
// 2 NFKD so accents split into combining marks
// 3 case folding
// 4 remove combining marks and format chars (ZWJ, ZWNJ, FEFF)
// 5 width fold fullwidth to ASCII, then NFC
// 6 typographic dashes and quotes to ASCII
// 7 collapse whitespace to single spaces and trim
// digits are never touched; 800 tons stays 800 tons
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is safe for concurrent use
type Normalizer struct{}

// transformer chains are stateful, so each call borrows one
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

var std = New()

// Question normalizes s with the shared Normalizer
func Question(s string) string { return std.Normalize(s) }

// Normalize returns the normalized form of s following the pipeline above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(Sanitize(s), "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// fall back to the sanitized input; a bad rune must not drop the question
		ns = strings.ToLower(s)
	}

	return collapseSpaces(punctFold(ns))
}

// punctFold maps typographic punctuation that operators paste from documents
func punctFold(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '‐', '‑', '‒', '–', '—', '−':
			return '-'
		case '‘', '’', '‛', '′':
			return '\''
		case '“', '”', '″':
			return '"'
		}
		return r
	}, s)
}

// collapseSpaces turns any whitespace run, newlines included, into one space and trims
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
