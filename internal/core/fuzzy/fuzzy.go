// Package fuzzy matches misspelled operator words ("tonage", "excavater") against known vocabulary
package fuzzy

import "unicode/utf8"

// Distance is the Levenshtein edit distance between a and b, counted in runes
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Budget is the edit allowance for a word of n runes: exact up to 4, one edit up to 7, two beyond
func Budget(n int) int {
	switch {
	case n <= 4:
		return 0
	case n <= 7:
		return 1
	default:
		return 2
	}
}

// Similar reports whether a is within the edit budget of b; the budget follows the longer word
func Similar(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	budget := Budget(max(la, lb))
	if budget == 0 || abs(la-lb) > budget {
		return false
	}
	return Distance(a, b) <= budget
}

// Best returns the closest candidate within budget; ties go to the alphabetically first candidate
func Best(word string, candidates []string) (string, bool) {
	best, bestD := "", -1
	for _, c := range candidates {
		if !Similar(word, c) {
			continue
		}
		d := Distance(word, c)
		if bestD < 0 || d < bestD || (d == bestD && c < best) {
			best, bestD = c, d
		}
	}
	return best, bestD >= 0
}

// ContainsWord reports whether any token fuzzily equals word
func ContainsWord(tokens []string, word string) bool {
	for _, t := range tokens {
		if Similar(t, word) {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
