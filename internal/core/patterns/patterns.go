// Package patterns holds the precompiled regexes and vocabularies shared by extraction,
// classification and SQL building. Everything here is built once at init and read-only after
package patterns

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	equipmentRe = regexp.MustCompile(`(?i)\b([a-z]{2,4})-?(\d{1,4})\b`)

	shiftListRe = regexp.MustCompile(`(?i)\bshifts?\s+([abc1-3])\b((?:\s*(?:,|and|&|/|or|\+)\s*[abc1-3]\b)*)`)
	shiftPreRe  = regexp.MustCompile(`(?i)\b([abc])((?:\s*(?:,|and|&|/|or|\+)\s*[abc])*)\s+shifts?\b`)
	shiftNameRe = regexp.MustCompile(`(?i)\b(morning|day|afternoon|evening|swing|night)\s+shifts?\b`)
	shiftTokRe  = regexp.MustCompile(`(?i)[abc1-3]`)
	joinerRe    = regexp.MustCompile(`(?i)\b(?:and|or)\b`)

	number = `(\d[\d,]*(?:\.\d+)?)`

	comparisonRe = regexp.MustCompile(`(?i)(>=|<=|=>|=<|>|<|=|\bno more than\b|\bno less than\b|\bat least\b|\bat most\b|` +
		`\bmore than\b|\bgreater than\b|\bhigher than\b|\bless than\b|\bfewer than\b|\blower than\b|` +
		`\babove\b|\bover\b|\bexceeding\b|\bunder\b|\bbelow\b|\bexactly\b|\bequal to\b|\bequals\b)\s*` + number + `\s*([a-z³0-9]*)`)
	betweenNumRe = regexp.MustCompile(`(?i)\bbetween\s+` + number + `\s*([a-z³0-9]*)\s+and\s+` + number + `\b`)

	measurementRe = regexp.MustCompile(`(?i)\b` + number + `\s*(tonnes|tonne|tons|ton|t|cubic meters|cubic metres|m3|bcm|` +
		`trips|trip|loads|load|kilometers|kilometres|km|meters|metres|meter|metre|m|liters|litres|liter|litre|l|hours|hour|hrs|hr)\b`)

	windowRe = regexp.MustCompile(`(?i)\b(?:last|past|previous|over the last|over the past|in the last|in the past)\s+(\d{1,4})\s+(hour|day|week|month|year)s?\b`)

	topNRe      = regexp.MustCompile(`(?i)\b(top|bottom|best|worst|highest|lowest)\s+(\d{1,3})\b`)
	rankWordRe  = regexp.MustCompile(`(?i)\b(highest|most|maximum|max|top|best|largest|biggest|lowest|least|minimum|min|bottom|worst|smallest|fewest)\b`)
	rowNumberRe = regexp.MustCompile(`(?i)\b(?:row|record|entry)\s*(?:number|no\.?|#)?\s*(\d{1,6})\b|\b(\d{1,6})(?:st|nd|rd|th)\s+(?:row|record|entry)\b`)
)

// equipment prefixes that are calendar, fiscal or ranking words
var equipmentStop = map[string]struct{}{
	"FY": {}, "CY": {}, "Q": {}, "H": {}, "QTR": {}, "WK": {}, "YR": {},
	"JAN": {}, "FEB": {}, "MAR": {}, "APR": {}, "MAY": {}, "JUN": {}, "JUL": {}, "AUG": {},
	"SEP": {}, "SEPT": {}, "OCT": {}, "NOV": {}, "DEC": {},
	"TOP": {}, "LAST": {}, "PAST": {}, "NEXT": {}, "ROW": {}, "NO": {}, "ID": {}, "KM": {}, "HRS": {},
}

// EquipmentIDs returns uppercased LETTERS-DIGITS ids in order of appearance, without duplicates
func EquipmentIDs(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range equipmentRe.FindAllStringSubmatch(text, -1) {
		prefix := strings.ToUpper(m[1])
		if _, stop := equipmentStop[prefix]; stop {
			continue
		}
		id := prefix + "-" + m[2]
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

var shiftNames = map[string]string{
	"morning": "A", "day": "A", "afternoon": "B", "evening": "B", "swing": "B", "night": "C",
}

// ShiftLetter maps 1/2/3 and a/b/c onto A/B/C
func ShiftLetter(s string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return "A", true
	case "B", "2":
		return "B", true
	case "C", "3":
		return "C", true
	}
	return "", false
}

// Shifts finds "shift A", "shifts A and B", "shift 2/3", "A and B shifts" and named shifts
// ("night shift"); values are A/B/C in order of appearance without duplicates
func Shifts(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		if l, ok := ShiftLetter(s); ok && !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	for _, m := range shiftListRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
		for _, t := range shiftTokRe.FindAllString(joinerRe.ReplaceAllString(m[2], " "), -1) {
			add(t)
		}
	}
	// a lone "a shift" is an article, so the trailing form needs B, C or a list
	for _, m := range shiftPreRe.FindAllStringSubmatch(text, -1) {
		rest := shiftTokRe.FindAllString(joinerRe.ReplaceAllString(m[2], " "), -1)
		if len(rest) == 0 && strings.EqualFold(m[1], "a") {
			continue
		}
		add(m[1])
		for _, t := range rest {
			add(t)
		}
	}
	for _, m := range shiftNameRe.FindAllStringSubmatch(text, -1) {
		add(shiftNames[strings.ToLower(m[1])])
	}
	return out
}

// Comparison is a numeric predicate read from the question
type Comparison struct {
	Operator string
	Value    float64
	Upper    *float64
	Unit     string
}

var operatorWords = map[string]string{
	">=": ">=", "=>": ">=", "<=": "<=", "=<": "<=", ">": ">", "<": "<", "=": "=",
	"no more than": "<=", "no less than": ">=", "at least": ">=", "at most": "<=",
	"more than": ">", "greater than": ">", "higher than": ">", "above": ">", "over": ">", "exceeding": ">",
	"less than": "<", "fewer than": "<", "lower than": "<", "under": "<", "below": "<",
	"exactly": "=", "equal to": "=", "equals": "=",
}

// calendar units after a number mean a window, not a filter ("over 30 days"); hours stay
// filters because downtime and operating hours are measured in them
var timeUnits = map[string]bool{
	"day": true, "days": true, "week": true, "weeks": true,
	"month": true, "months": true, "year": true, "years": true,
}

// Operator returns the canonical operator for a symbol or word form
func Operator(word string) (string, bool) {
	op, ok := operatorWords[strings.ToLower(strings.Join(strings.Fields(word), " "))]
	return op, ok
}

// NumericComparison returns the first comparison in text; "between N and M" yields operator between
func NumericComparison(text string) (Comparison, bool) {
	if m := betweenNumRe.FindStringSubmatch(text); m != nil {
		lo, okL := ParseNumber(m[1])
		hi, okH := ParseNumber(m[3])
		if okL && okH && !timeUnits[strings.ToLower(m[2])] {
			if hi < lo {
				lo, hi = hi, lo
			}
			return Comparison{Operator: "between", Value: lo, Upper: &hi, Unit: CanonicalUnit(m[2])}, true
		}
	}
	for _, m := range comparisonRe.FindAllStringSubmatch(text, -1) {
		if timeUnits[strings.ToLower(m[3])] {
			continue
		}
		op, ok := Operator(m[1])
		v, okV := ParseNumber(m[2])
		if ok && okV {
			return Comparison{Operator: op, Value: v, Unit: CanonicalUnit(m[3])}, true
		}
	}
	return Comparison{}, false
}

// BetweenYears reports whether text holds "between Y1 and Y2" where both sides look like years
func BetweenYears(text string) bool {
	m := betweenNumRe.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	year := func(s string) bool {
		n, err := strconv.Atoi(s)
		return err == nil && n >= 2000 && n <= 2100
	}
	return year(m[1]) && year(m[3])
}

// ParseNumber reads "1,250.5" style numbers
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v, err == nil
}

var units = map[string]string{
	"t": "ton", "ton": "ton", "tons": "ton", "tonne": "ton", "tonnes": "ton",
	"m3": "m3", "m³": "m3", "bcm": "m3", "cubic meters": "m3", "cubic metres": "m3",
	"trip": "trip", "trips": "trip", "load": "trip", "loads": "trip",
	"m": "meter", "meter": "meter", "meters": "meter", "metre": "meter", "metres": "meter",
	"km": "km", "kilometers": "km", "kilometres": "km",
	"l": "liter", "liter": "liter", "liters": "liter", "litre": "liter", "litres": "liter",
	"hr": "hour", "hrs": "hour", "hour": "hour", "hours": "hour",
}

// CanonicalUnit maps unit spellings onto ton, m3, trip, meter, km, liter or hour; unknown gives ""
func CanonicalUnit(u string) string {
	return units[strings.ToLower(strings.Join(strings.Fields(u), " "))]
}

// Measurement is a quantity with a canonical unit
type Measurement struct {
	Value float64
	Unit  string
}

// FirstMeasurement returns the first number followed by a known unit
func FirstMeasurement(text string) (Measurement, bool) {
	text = strings.ReplaceAll(text, "³", "3")
	for _, m := range measurementRe.FindAllStringSubmatch(text, -1) {
		v, ok := ParseNumber(m[1])
		u := CanonicalUnit(m[2])
		if ok && u != "" {
			return Measurement{Value: v, Unit: u}, true
		}
	}
	return Measurement{}, false
}

// Window is a trailing time window such as "past 24 hours"
type Window struct {
	Value int
	Unit  string
}

// TrailingWindow finds "last|past N unit(s)" with N >= 1
func TrailingWindow(text string) (Window, bool) {
	m := windowRe.FindStringSubmatch(text)
	if m == nil {
		return Window{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return Window{}, false
	}
	return Window{Value: n, Unit: strings.ToLower(m[2])}, true
}

// Rank types
const (
	RankTop    = "top"
	RankBottom = "bottom"
)

var rankWords = map[string]string{
	"highest": RankTop, "most": RankTop, "maximum": RankTop, "max": RankTop, "top": RankTop, "best": RankTop,
	"largest": RankTop, "biggest": RankTop,
	"lowest": RankBottom, "least": RankBottom, "minimum": RankBottom, "min": RankBottom, "bottom": RankBottom,
	"worst": RankBottom, "smallest": RankBottom, "fewest": RankBottom,
}

// Rank returns the ranking direction and an optional N from "top 5", "lowest 3" or a bare superlative.
// "at least" and "at most" are comparisons, not ranks
func Rank(text string) (rankType string, n int, ok bool) {
	if m := topNRe.FindStringSubmatch(text); m != nil {
		n, _ = strconv.Atoi(m[2])
		if n > 0 {
			return rankWords[strings.ToLower(m[1])], n, true
		}
	}
	lower := strings.ToLower(text)
	for _, loc := range rankWordRe.FindAllStringSubmatchIndex(lower, -1) {
		if prev := strings.Fields(lower[:loc[0]]); len(prev) > 0 && (prev[len(prev)-1] == "at" || prev[len(prev)-1] == "no") {
			continue
		}
		return rankWords[lower[loc[2]:loc[3]]], 0, true
	}
	return "", 0, false
}

// RowNumber finds "row 5", "record number 12" or "3rd row"
func RowNumber(text string) (int, bool) {
	m := rowNumberRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	s := m[1]
	if s == "" {
		s = m[2]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
