package params

import (
	"fmt"
	"time"

	"opsroute/internal/core/dates"
	"opsroute/internal/core/patterns"
	"opsroute/internal/platform/logger"
)

// step fills part of the bag; steps never overwrite a populated field
type step struct {
	name string
	run  func(e *Extractor, text string, b *Bag)
}

// steps run in this order for every question
var steps = []step{
	{"equipment_ids", (*Extractor).equipment},
	{"date_range", (*Extractor).dateRange},
	{"month_year", (*Extractor).monthYear},
	{"shift", (*Extractor).shifts},
	{"numeric_filter", (*Extractor).numeric},
	{"time_window", (*Extractor).window},
	{"quarter", (*Extractor).quarter},
	{"measurement", (*Extractor).measurement},
	{"rank", (*Extractor).rank},
	{"machine_types", (*Extractor).machines},
	{"parsed_date", (*Extractor).parsedDate},
	{"invalid_date", (*Extractor).invalidDate},
}

// Extractor turns question text into a Bag; it is stateless apart from its date parser clock
type Extractor struct {
	dates *dates.Parser
}

// NewExtractor builds an Extractor; a nil parser uses the wall clock
func NewExtractor(p *dates.Parser) *Extractor {
	if p == nil {
		p = dates.New()
	}
	return &Extractor{dates: p}
}

// Extract runs every step; a step that panics is logged and skipped
func (e *Extractor) Extract(text string) Bag {
	var b Bag
	for _, s := range steps {
		e.safe(s, text, &b)
	}
	return b
}

func (e *Extractor) safe(s step, text string, b *Bag) {
	defer func() {
		if r := recover(); r != nil {
			logger.Named("params").Debug().Str("step", s.name).Str("panic", fmt.Sprint(r)).Msg("extraction step skipped")
		}
	}()
	s.run(e, text, b)
}

func intp(n int) *int { return &n }

func (e *Extractor) equipment(text string, b *Bag) {
	if len(b.EquipmentIDs) == 0 {
		b.EquipmentIDs = patterns.EquipmentIDs(text)
	}
}

func (e *Extractor) dateRange(text string, b *Bag) {
	if b.DateStart != "" {
		return
	}
	if s, end, ok := e.dates.ParseRangeEnds(text); ok {
		b.DateRange = &DateRange{Start: s, End: end}
		b.DateStart, b.DateEnd = s.StartDate, end.EndDate
		return
	}
	// day ranges inside one month ("March 3 to 17, 2024")
	pd, ok := e.dates.ParseRange(text)
	if !ok {
		return
	}
	day := func(iso string) *dates.ParsedDate {
		t, _ := time.Parse(dates.ISO, iso)
		return &dates.ParsedDate{
			Kind: dates.KindSingle, StartDate: iso, EndDate: iso,
			Year: t.Year(), Month: int(t.Month()), MonthName: t.Month().String(),
		}
	}
	b.DateRange = &DateRange{Start: day(pd.StartDate), End: day(pd.EndDate)}
	b.DateStart, b.DateEnd = pd.StartDate, pd.EndDate
}

// monthYear skips months that belong to a range already captured
func (e *Extractor) monthYear(text string, b *Bag) {
	if b.DateRange != nil || b.Month != nil {
		return
	}
	if pd, ok := e.dates.ParseMonth(text); ok {
		b.Month = intp(pd.Month)
		if b.Year == nil {
			b.Year = intp(pd.Year)
		}
	}
}

func (e *Extractor) shifts(text string, b *Bag) {
	if len(b.Shift) == 0 {
		if s := patterns.Shifts(text); len(s) > 0 {
			b.Shift = Shifts(s)
		}
	}
}

// numeric ignores "between 2022 and 2023" once it was read as a date range
func (e *Extractor) numeric(text string, b *Bag) {
	if b.NumericFilter != nil {
		return
	}
	c, ok := patterns.NumericComparison(text)
	if !ok {
		return
	}
	if c.Operator == "between" && b.DateRange != nil && patterns.BetweenYears(text) {
		return
	}
	b.NumericFilter = &NumericFilter{Operator: c.Operator, Value: c.Value, Upper: c.Upper}
}

func (e *Extractor) window(text string, b *Bag) {
	if b.TimeWindow != nil {
		return
	}
	if w, ok := patterns.TrailingWindow(text); ok {
		b.TimeWindow = &Window{Value: w.Value, Unit: w.Unit}
	}
}

func (e *Extractor) quarter(text string, b *Bag) {
	if b.Quarter != nil {
		return
	}
	if pd, ok := e.dates.ParseQuarter(text); ok {
		b.Quarter = intp(pd.Quarter)
		if b.Year == nil {
			b.Year = intp(pd.Year)
		}
	}
}

func (e *Extractor) measurement(text string, b *Bag) {
	if b.Measurement != nil {
		return
	}
	if m, ok := patterns.FirstMeasurement(text); ok {
		b.Measurement = &Measurement{Value: m.Value, Unit: m.Unit}
	}
}

func (e *Extractor) rank(text string, b *Bag) {
	if b.RowNumber == nil {
		if n, ok := patterns.RowNumber(text); ok {
			b.RowNumber = intp(n)
		}
	}
	if b.RankType != "" {
		return
	}
	if kind, n, ok := patterns.Rank(text); ok {
		b.RankType = kind
		if n > 0 && b.N == nil {
			b.N = intp(n)
		}
	}
}

func (e *Extractor) machines(text string, b *Bag) {
	if len(b.MachineTypes) == 0 {
		b.MachineTypes = patterns.MachineTypes(text)
	}
}

// invalidDate flags an explicit date the calendar rejects so builders do not drop the filter
func (e *Extractor) invalidDate(text string, b *Bag) {
	if b.InvalidDate == "" {
		b.InvalidDate, _ = e.dates.Invalid(text)
	}
}

// parsedDate records the overall date; a one-day result also fills Date
func (e *Extractor) parsedDate(text string, b *Bag) {
	if b.ParsedDate != nil {
		return
	}
	pd, ok := e.dates.Parse(text)
	if !ok {
		return
	}
	b.ParsedDate = pd
	if pd.SingleDay() && b.Date == "" {
		b.Date = pd.StartDate
	}
	if pd.Kind == dates.KindYear && b.Year == nil {
		b.Year = intp(pd.Year)
	}
}
