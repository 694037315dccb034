package normalize

import "unicode"

// Words splits a normalized question into letter/digit tokens for keyword matching
// letter runs longer than two are squashed, so "tonnnnage" matches "tonnage"
func Words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	run := 0
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev, run = 0, 0
			continue
		}
		if r == prev && unicode.IsLetter(r) {
			run++
			if run > 2 {
				continue
			}
		} else {
			prev, run = r, 1
		}
		cur = append(cur, r)
	}
	flush()
	return out
}
