package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	quarterRe     = regexp.MustCompile(`(?i)\bq([1-4])\b(?:\s*(?:of\s+)?(?:fy\s*)?(\d{4})\b)?`)
	quarterYearRe = regexp.MustCompile(`(?i)\b(\d{4})\s*-?\s*q([1-4])\b`)
	quarterWordRe = regexp.MustCompile(`(?i)\b(first|second|third|fourth|1st|2nd|3rd|4th)\s+quarter\b(?:\s+(?:of\s+)?(\d{4})\b)?`)
	quarterRelRe  = regexp.MustCompile(`(?i)\b(this|current|last|previous)\s+quarter\b`)

	rangeRe = regexp.MustCompile(`(?i)\b(?:from|between)\s+(` + endpoint + `)\s+(?:to|and|until|till|through|thru|-)\s+(` + endpoint + `)`)

	inMonthRe    = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})` + ordinal + `\s*(?:to|-|through|until|till)\s*(\d{1,2})` + ordinal + `\b(?:,?\s+(\d{4})\b)?`)
	inMonthDMYRe = regexp.MustCompile(`(?i)\b(\d{1,2})` + ordinal + `\s*(?:to|-|through|until|till)\s*(\d{1,2})` + ordinal + `\s+(?:of\s+)?(` + monthAlt + `)\b\.?(?:,?\s+(\d{4})\b)?`)

	mdyRe = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\.?\s+(\d{1,2})` + ordinal + `\b,?\s+(\d{4})\b`)
	dmyRe = regexp.MustCompile(`(?i)\b(\d{1,2})` + ordinal + `\s+(?:of\s+)?(` + monthAlt + `)\b\.?,?\s+(\d{4})\b`)
	isoRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	todayRe   = regexp.MustCompile(`(?i)\b(today|yesterday)\b`)
	lastNRe   = regexp.MustCompile(`(?i)\b(?:last|past|previous)\s+(\d+)\s+(day|week|month|year)s?\b`)
	periodRe  = regexp.MustCompile(`(?i)\b(this|current|last|previous|past)\s+(week|month|year)\b`)
	monthYrRe = regexp.MustCompile(`(?i)\b(` + monthAlt + `)\b\.?,?\s+(?:of\s+)?(\d{4})\b`)
	yearRe    = regexp.MustCompile(`(?:^|[^\w-])(\d{4})(?:$|[^\w-])`)
)

// endpoint is one side of a from/between range; longer forms come first so a day never
// swallows the first digits of a year
const endpoint = `\d{4}-\d{2}-\d{2}` +
	`|(?:` + monthAlt + `)\.?\s+\d{1,2}` + ordinal + `\b(?:,?\s+\d{4}\b)?` +
	`|\d{1,2}` + ordinal + `\s+(?:of\s+)?(?:` + monthAlt + `)\b\.?(?:,?\s+\d{4}\b)?` +
	`|(?:` + monthAlt + `)\b\.?(?:,?\s+(?:of\s+)?\d{4}\b)?` +
	`|\d{4}\b`

var (
	epISO = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	epMDY = regexp.MustCompile(`(?i)^(` + monthAlt + `)\.?\s+(\d{1,2})` + ordinal + `(?:,?\s+(\d{4}))?$`)
	epDMY = regexp.MustCompile(`(?i)^(\d{1,2})` + ordinal + `\s+(?:of\s+)?(` + monthAlt + `)\.?(?:,?\s+(\d{4}))?$`)
	epMY  = regexp.MustCompile(`(?i)^(` + monthAlt + `)\.?(?:,?\s+(?:of\s+)?(\d{4}))?$`)
	epY   = regexp.MustCompile(`^(\d{4})$`)
)

var quarterWords = map[string]int{
	"first": 1, "1st": 1, "second": 2, "2nd": 2, "third": 3, "3rd": 3, "fourth": 4, "4th": 4,
}

// YearOK bounds every parsed year so tonnages and counts are not read as dates
func YearOK(y int) bool { return y >= 2000 && y <= 2100 }

// QuarterRange builds the ParsedDate of quarter q in year y
func QuarterRange(y, q int) *ParsedDate {
	first := time.Month(3*(q-1) + 1)
	last := first + 2
	return &ParsedDate{
		Kind:      KindQuarter,
		StartDate: iso(day(y, first, 1)),
		EndDate:   iso(day(y, last, LastDay(y, last))),
		Year:      y,
		Quarter:   q,
	}
}

// ParseQuarter matches Q1..Q4, "2024 Q3", "first..fourth quarter" and "this/last quarter"
// a missing year, or four digits outside YearOK ("Q3 1500 tons"), means the current year
func (p *Parser) ParseQuarter(text string) (*ParsedDate, bool) {
	year := p.today().Year()
	pick := func(q int, y string) (*ParsedDate, bool) {
		yr := year
		if y != "" && YearOK(atoi(y)) {
			yr = atoi(y)
		}
		return QuarterRange(yr, q), true
	}

	if m := quarterYearRe.FindStringSubmatch(text); m != nil && YearOK(atoi(m[1])) {
		return pick(atoi(m[2]), m[1])
	}
	if m := quarterRe.FindStringSubmatch(text); m != nil {
		return pick(atoi(m[1]), m[2])
	}
	if m := quarterWordRe.FindStringSubmatch(text); m != nil {
		return pick(quarterWords[strings.ToLower(m[1])], m[2])
	}
	if m := quarterRelRe.FindStringSubmatch(text); m != nil {
		t := p.today()
		q := (int(t.Month())-1)/3 + 1
		yr := t.Year()
		if w := strings.ToLower(m[1]); w == "last" || w == "previous" {
			q--
			if q == 0 {
				q, yr = 4, yr-1
			}
		}
		pd := QuarterRange(yr, q)
		pd.RelativePeriod = strings.ToLower(m[1]) + "_quarter"
		return pd, true
	}
	return nil, false
}

// ParseRangeEnds returns both sides of a from/between range; a side without a year borrows
// the other side's year, then the current year
func (p *Parser) ParseRangeEnds(text string) (start, end *ParsedDate, ok bool) {
	m := rangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}
	ls, lhasYear, lok := p.endpoint(m[1], 0)
	rs, rhasYear, rok := p.endpoint(m[2], 0)
	if !lok || !rok {
		return nil, nil, false
	}
	switch {
	case !lhasYear && rhasYear:
		ls, _, _ = p.endpoint(m[1], rs.Year)
		// "between december and february 2025" starts in the previous year
		if ls != nil && ls.Start().After(rs.End()) {
			ls, _, _ = p.endpoint(m[1], rs.Year-1)
		}
	case lhasYear && !rhasYear:
		rs, _, _ = p.endpoint(m[2], ls.Year)
		if rs != nil && rs.End().Before(ls.Start()) {
			rs, _, _ = p.endpoint(m[2], ls.Year+1)
		}
	}
	if ls == nil || rs == nil {
		return nil, nil, false
	}
	if rs.End().Before(ls.Start()) {
		ls, rs = rs, ls
	}
	return ls, rs, true
}

// endpoint parses one side of a range; year 0 means "use the current year when absent"
func (p *Parser) endpoint(s string, year int) (*ParsedDate, bool, bool) {
	s = strings.TrimSpace(s)
	if year == 0 {
		year = p.today().Year()
	}
	if m := epISO.FindStringSubmatch(s); m != nil {
		y, mo, d := atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
		if !YearOK(y) || mo < 1 || mo > 12 || !validDay(y, mo, d) {
			return nil, false, false
		}
		return singleDay(day(y, mo, d)), true, true
	}
	if m := epMDY.FindStringSubmatch(s); m != nil {
		return dayEndpoint(m[1], m[2], m[3], year)
	}
	if m := epDMY.FindStringSubmatch(s); m != nil {
		return dayEndpoint(m[2], m[1], m[3], year)
	}
	if m := epMY.FindStringSubmatch(s); m != nil {
		mo, ok := MonthOf(m[1])
		if !ok {
			return nil, false, false
		}
		// "march 1200 trips": the digits are a count, the month keeps the default year
		if m[2] == "" || !YearOK(atoi(m[2])) {
			return monthRange(year, mo), false, true
		}
		return monthRange(atoi(m[2]), mo), true, true
	}
	if m := epY.FindStringSubmatch(s); m != nil {
		y := atoi(m[1])
		if !YearOK(y) {
			return nil, false, false
		}
		return yearRange(y), true, true
	}
	return nil, false, false
}

func dayEndpoint(month, d, y string, year int) (*ParsedDate, bool, bool) {
	mo, ok := MonthOf(month)
	if !ok {
		return nil, false, false
	}
	yr := year
	if y != "" {
		yr = atoi(y)
	}
	dd := atoi(d)
	if !YearOK(yr) || !validDay(yr, mo, dd) {
		return nil, false, false
	}
	return singleDay(day(yr, mo, dd)), y != "", true
}

// ParseRange matches from/between X and/to Y, and day ranges inside one month
// ("March 3 to 17, 2024", "3-17 March 2024")
func (p *Parser) ParseRange(text string) (*ParsedDate, bool) {
	if s, e, ok := p.ParseRangeEnds(text); ok {
		pd := span(KindRange, s.Start(), e.End())
		if s.Year == e.Year {
			pd.Year = s.Year
		}
		return pd, true
	}
	if m := inMonthRe.FindStringSubmatch(text); m != nil {
		return p.inMonth(m[1], m[2], m[3], m[4])
	}
	if m := inMonthDMYRe.FindStringSubmatch(text); m != nil {
		return p.inMonth(m[3], m[1], m[2], m[4])
	}
	return nil, false
}

func (p *Parser) inMonth(month, from, to, year string) (*ParsedDate, bool) {
	mo, ok := MonthOf(month)
	if !ok {
		return nil, false
	}
	y := p.today().Year()
	if year != "" && YearOK(atoi(year)) {
		y = atoi(year)
	}
	d1, d2 := atoi(from), atoi(to)
	if d1 > d2 || !validDay(y, mo, d1) || !validDay(y, mo, d2) {
		return nil, false
	}
	pd := span(KindRange, day(y, mo, d1), day(y, mo, d2))
	pd.Year, pd.Month, pd.MonthName = y, int(mo), mo.String()
	return pd, true
}

// ParseSingle matches "January 15, 2025", "15 January 2025" and ISO 2025-01-15
func (p *Parser) ParseSingle(text string) (*ParsedDate, bool) {
	try := func(month, d, y string) (*ParsedDate, bool) {
		mo, ok := MonthOf(month)
		if !ok {
			return nil, false
		}
		yr, dd := atoi(y), atoi(d)
		if !YearOK(yr) || !validDay(yr, mo, dd) {
			return nil, false
		}
		return singleDay(day(yr, mo, dd)), true
	}
	if m := mdyRe.FindStringSubmatch(text); m != nil {
		if pd, ok := try(m[1], m[2], m[3]); ok {
			return pd, true
		}
	}
	if m := dmyRe.FindStringSubmatch(text); m != nil {
		if pd, ok := try(m[2], m[1], m[3]); ok {
			return pd, true
		}
	}
	if m := isoRe.FindStringSubmatch(text); m != nil {
		mo := atoi(m[2])
		if mo >= 1 && mo <= 12 {
			if pd, ok := try(time.Month(mo).String(), m[3], m[1]); ok {
				return pd, true
			}
		}
	}
	return nil, false
}

// ParseRelative matches today, yesterday, this/last week|month|year and last N units
// "last N days" is today-N through today; weeks start on Monday
func (p *Parser) ParseRelative(text string) (*ParsedDate, bool) {
	t := p.today()
	rel := func(start, end time.Time, period string) (*ParsedDate, bool) {
		pd := span(KindRelative, start, end)
		pd.RelativePeriod = period
		return pd, true
	}

	if m := lastNRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= 3650 {
			unit := strings.ToLower(m[2])
			var start time.Time
			switch unit {
			case "day":
				start = t.AddDate(0, 0, -n)
			case "week":
				start = t.AddDate(0, 0, -7*n)
			case "month":
				start = t.AddDate(0, -n, 0)
			case "year":
				start = t.AddDate(-n, 0, 0)
			}
			return rel(start, t, "last_"+m[1]+"_"+unit+"s")
		}
	}

	if m := todayRe.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "yesterday") {
			y := t.AddDate(0, 0, -1)
			return rel(y, y, "yesterday")
		}
		return rel(t, t, "today")
	}

	if m := periodRe.FindStringSubmatch(text); m != nil {
		which, unit := strings.ToLower(m[1]), strings.ToLower(m[2])
		last := which == "last" || which == "previous" || which == "past"
		prefix := "this_"
		if last {
			prefix = "last_"
		}
		switch unit {
		case "week":
			monday := t.AddDate(0, 0, -((int(t.Weekday()) + 6) % 7))
			if last {
				return rel(monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1), prefix+unit)
			}
			return rel(monday, t, prefix+unit)
		case "month":
			first := day(t.Year(), t.Month(), 1)
			if last {
				prev := first.AddDate(0, -1, 0)
				pd, _ := rel(prev, first.AddDate(0, 0, -1), prefix+unit)
				pd.Year, pd.Month, pd.MonthName = prev.Year(), int(prev.Month()), prev.Month().String()
				return pd, true
			}
			return rel(first, t, prefix+unit)
		case "year":
			if last {
				pd, _ := rel(day(t.Year()-1, 1, 1), day(t.Year()-1, 12, 31), prefix+unit)
				pd.Year = t.Year() - 1
				return pd, true
			}
			return rel(day(t.Year(), 1, 1), t, prefix+unit)
		}
	}
	return nil, false
}

// ParseMonth matches an explicit month and year ("February 2024", "mar, 2023")
func (p *Parser) ParseMonth(text string) (*ParsedDate, bool) {
	for _, m := range monthYrRe.FindAllStringSubmatch(text, -1) {
		mo, ok := MonthOf(m[1])
		if !ok || !YearOK(atoi(m[2])) {
			continue
		}
		return monthRange(atoi(m[2]), mo), true
	}
	return nil, false
}

// ParseYear matches a bare year in 2000..2100; digits glued to a hyphen, as in TIP-2045, are not years
func (p *Parser) ParseYear(text string) (*ParsedDate, bool) {
	for _, m := range yearRe.FindAllStringSubmatch(text, -1) {
		if y := atoi(m[1]); YearOK(y) {
			return yearRange(y), true
		}
	}
	return nil, false
}

// Invalid returns the first explicit calendar date in text that does not exist, such as
// 2024-02-30 or "February 30, 2024", so callers can refuse to drop the filter silently
func (p *Parser) Invalid(text string) (string, bool) {
	for _, m := range isoRe.FindAllStringSubmatch(text, -1) {
		y, mo, d := atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3])
		if YearOK(y) && (mo < 1 || mo > 12 || !validDay(y, mo, d)) {
			return m[0], true
		}
	}
	check := func(all [][]string, month, d, y int) (string, bool) {
		for _, m := range all {
			mo, ok := MonthOf(m[month])
			if ok && YearOK(atoi(m[y])) && !validDay(atoi(m[y]), mo, atoi(m[d])) {
				return m[0], true
			}
		}
		return "", false
	}
	if s, ok := check(mdyRe.FindAllStringSubmatch(text, -1), 1, 2, 3); ok {
		return s, true
	}
	return check(dmyRe.FindAllStringSubmatch(text, -1), 2, 1, 3)
}
