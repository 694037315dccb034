// Package dates turns date expressions in operator questions into canonical ISO ranges
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind names the rule that produced a ParsedDate
type Kind string

// Kinds of ParsedDate
const (
	KindQuarter  Kind = "quarter"
	KindRange    Kind = "range"
	KindSingle   Kind = "single"
	KindRelative Kind = "relative"
	KindMonth    Kind = "month"
	KindYear     Kind = "year"
)

// ISO is the layout of StartDate and EndDate
const ISO = "2006-01-02"

// ParsedDate is a closed date range [StartDate, EndDate] with optional display fields
type ParsedDate struct {
	Kind           Kind   `json:"type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Year           int    `json:"year,omitempty"`
	Quarter        int    `json:"quarter,omitempty"`
	Month          int    `json:"month,omitempty"`
	MonthName      string `json:"month_name,omitempty"`
	RelativePeriod string `json:"relative_period,omitempty"`
}

// Start parses StartDate
func (p *ParsedDate) Start() time.Time { t, _ := time.Parse(ISO, p.StartDate); return t }

// End parses EndDate
func (p *ParsedDate) End() time.Time { t, _ := time.Parse(ISO, p.EndDate); return t }

// SingleDay reports whether the range covers exactly one day
func (p *ParsedDate) SingleDay() bool { return p.StartDate == p.EndDate }

// Parser parses date expressions relative to Now; it holds no other state
type Parser struct {
	Now func() time.Time
}

// New returns a Parser on the wall clock
func New() *Parser { return &Parser{Now: time.Now} }

func (p *Parser) today() time.Time {
	now := time.Now()
	if p != nil && p.Now != nil {
		now = p.Now()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse tries quarter, range, single date, relative, month+year and bare year; first match wins
func (p *Parser) Parse(text string) (*ParsedDate, bool) {
	for _, rule := range []func(string) (*ParsedDate, bool){
		p.ParseQuarter,
		p.ParseRange,
		p.ParseSingle,
		p.ParseRelative,
		p.ParseMonth,
		p.ParseYear,
	} {
		if pd, ok := rule(text); ok {
			return pd, true
		}
	}
	return nil, false
}

const monthAlt = `january|february|march|april|may|june|july|august|september|october|november|december|` +
	`jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

const ordinal = `(?:st|nd|rd|th)?`

var monthNumber = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// MonthOf resolves a full or abbreviated month name
func MonthOf(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthNumber[name[:3]]
	if !ok {
		return 0, false
	}
	full := strings.ToLower(m.String())
	if name != full && !strings.HasPrefix(full, name) {
		return 0, false
	}
	return m, true
}

// LastDay is the last day of month m in year y, taken from the calendar
func LastDay(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func iso(t time.Time) string { return t.Format(ISO) }

func atoi(s string) int { n, _ := strconv.Atoi(s); return n }

// validDay rejects dates time.Date would normalize, like February 30
func validDay(y int, m time.Month, d int) bool {
	return d >= 1 && d <= LastDay(y, m)
}

func monthRange(y int, m time.Month) *ParsedDate {
	return &ParsedDate{
		Kind:      KindMonth,
		StartDate: iso(day(y, m, 1)),
		EndDate:   iso(day(y, m, LastDay(y, m))),
		Year:      y,
		Month:     int(m),
		MonthName: m.String(),
	}
}

func yearRange(y int) *ParsedDate {
	return &ParsedDate{Kind: KindYear, StartDate: iso(day(y, 1, 1)), EndDate: iso(day(y, 12, 31)), Year: y}
}

func singleDay(t time.Time) *ParsedDate {
	return &ParsedDate{
		Kind:      KindSingle,
		StartDate: iso(t),
		EndDate:   iso(t),
		Year:      t.Year(),
		Month:     int(t.Month()),
		MonthName: t.Month().String(),
	}
}

func span(kind Kind, start, end time.Time) *ParsedDate {
	if end.Before(start) {
		start, end = end, start
	}
	return &ParsedDate{Kind: kind, StartDate: iso(start), EndDate: iso(end)}
}

var columnRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ToSQLFilter renders pd as a predicate on column: = for one day, BETWEEN otherwise
// it returns "" for a nil date, malformed dates or a column that is not a plain identifier
func ToSQLFilter(pd *ParsedDate, column string) string {
	if pd == nil || !columnRe.MatchString(column) {
		return ""
	}
	s, errS := time.Parse(ISO, pd.StartDate)
	e, errE := time.Parse(ISO, pd.EndDate)
	if errS != nil || errE != nil || e.Before(s) {
		return ""
	}
	if pd.SingleDay() {
		return fmt.Sprintf("%s = '%s'", column, pd.StartDate)
	}
	return fmt.Sprintf("%s BETWEEN '%s' AND '%s'", column, pd.StartDate, pd.EndDate)
}
