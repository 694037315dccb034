// Package params extracts a typed parameter bag from an operator question
package params

import (
	"encoding/json"
	"fmt"
	"strings"

	"opsroute/internal/core/dates"
)

// Bag holds the extracted parameters; a nil or empty field means "not specified"
type Bag struct {
	RowNumber     *int              `json:"row_number,omitempty"`
	N             *int              `json:"n,omitempty"`
	RankType      string            `json:"rank_type,omitempty"`
	Month         *int              `json:"month,omitempty"`
	Year          *int              `json:"year,omitempty"`
	Quarter       *int              `json:"quarter,omitempty"`
	Date          string            `json:"date,omitempty"`
	DateStart     string            `json:"date_start,omitempty"`
	DateEnd       string            `json:"date_end,omitempty"`
	ParsedDate    *dates.ParsedDate `json:"parsed_date,omitempty"`
	DateRange     *DateRange        `json:"-"`
	Shift         Shifts            `json:"shift,omitempty"`
	EquipmentIDs  []string          `json:"equipment_ids,omitempty"`
	MachineTypes  []string          `json:"machine_types,omitempty"`
	NumericFilter *NumericFilter    `json:"numeric_filter,omitempty"`
	Measurement   *Measurement      `json:"measurement,omitempty"`
	TimeWindow    *Window           `json:"time_window,omitempty"`
	// InvalidDate holds an explicit date that does not exist on the calendar, like 2024-02-30
	InvalidDate   string            `json:"invalid_date,omitempty"`
}

// DateRange keeps both parsed sides of a from/between expression
type DateRange struct {
	Start *dates.ParsedDate
	End   *dates.ParsedDate
}

// NumericFilter is a comparison on a metric; Upper is set only for between
type NumericFilter struct {
	Operator string   `json:"operator"`
	Value    float64  `json:"value"`
	Upper    *float64 `json:"upper,omitempty"`
}

// Measurement is a quantity with a canonical unit (ton, m3, trip, meter, km, liter, hour)
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Window is a trailing time window ("past 24 hours")
type Window struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// Shifts is a list of A/B/C; JSON is a bare string for one shift and an array for several
type Shifts []string

// MarshalJSON writes "A" for one shift and ["A","B"] for more
func (s Shifts) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON accepts either shape
func (s *Shifts) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*s = nil
			return nil
		}
		*s = Shifts{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("shift: want string or array: %w", err)
	}
	*s = Shifts(many)
	return nil
}

// bagFields has Bag's fields without its methods
type bagFields Bag

type bagWire struct {
	bagFields
	DateRangeStart *dates.ParsedDate `json:"date_range_start,omitempty"`
	DateRangeEnd   *dates.ParsedDate `json:"date_range_end,omitempty"`
}

// MarshalJSON flattens DateRange into date_range_start and date_range_end
func (b Bag) MarshalJSON() ([]byte, error) {
	w := bagWire{bagFields: bagFields(b)}
	if b.DateRange != nil {
		w.DateRangeStart, w.DateRangeEnd = b.DateRange.Start, b.DateRange.End
	}
	return json.Marshal(w)
}

// UnmarshalJSON reverses MarshalJSON
func (b *Bag) UnmarshalJSON(data []byte) error {
	var w bagWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = Bag(w.bagFields)
	if w.DateRangeStart != nil || w.DateRangeEnd != nil {
		b.DateRange = &DateRange{Start: w.DateRangeStart, End: w.DateRangeEnd}
	}
	return nil
}

// Parameter names as they appear in the intent catalog and decision reasons
const (
	ParamRowNumber     = "row_number"
	ParamN             = "n"
	ParamRankType      = "rank_type"
	ParamMonth         = "month"
	ParamYear          = "year"
	ParamQuarter       = "quarter"
	ParamDate          = "date"
	ParamDateRange     = "date_range"
	ParamParsedDate    = "parsed_date"
	ParamShift         = "shift"
	ParamEquipmentIDs  = "equipment_ids"
	ParamMachineTypes  = "machine_types"
	ParamNumericFilter = "numeric_filter"
	ParamMeasurement   = "measurement"
	ParamTimeWindow    = "time_window"
)

// Known reports whether name is a parameter the bag can carry
func Known(name string) bool {
	switch name {
	case ParamRowNumber, ParamN, ParamRankType, ParamMonth, ParamYear, ParamQuarter, ParamDate,
		ParamDateRange, ParamParsedDate, ParamShift, ParamEquipmentIDs, ParamMachineTypes,
		ParamNumericFilter, ParamMeasurement, ParamTimeWindow:
		return true
	}
	return false
}

// Count is how many values the named parameter holds: list length for lists, 1 for a set scalar, 0 when absent
func (b Bag) Count(name string) int {
	one := func(set bool) int {
		if set {
			return 1
		}
		return 0
	}
	switch name {
	case ParamRowNumber:
		return one(b.RowNumber != nil)
	case ParamN:
		return one(b.N != nil)
	case ParamRankType:
		return one(b.RankType != "")
	case ParamMonth:
		return one(b.Month != nil)
	case ParamYear:
		return one(b.Year != nil)
	case ParamQuarter:
		return one(b.Quarter != nil)
	case ParamDate:
		return one(b.Date != "")
	case ParamDateRange:
		return one(b.DateRange != nil || (b.DateStart != "" && b.DateEnd != ""))
	case ParamParsedDate:
		return one(b.ParsedDate != nil)
	case ParamShift:
		return len(b.Shift)
	case ParamEquipmentIDs:
		return len(b.EquipmentIDs)
	case ParamMachineTypes:
		return len(b.MachineTypes)
	case ParamNumericFilter:
		return one(b.NumericFilter != nil)
	case ParamMeasurement:
		return one(b.Measurement != nil)
	case ParamTimeWindow:
		return one(b.TimeWindow != nil)
	}
	return 0
}

// Has reports whether the named parameter is present
func (b Bag) Has(name string) bool { return b.Count(name) > 0 }

// HasDate reports whether any date field is set
func (b Bag) HasDate() bool {
	return b.Date != "" || b.DateStart != "" || b.ParsedDate != nil || b.Month != nil || b.Year != nil || b.Quarter != nil
}

// Present lists the names of the populated parameters in declaration order
func (b Bag) Present() []string {
	var out []string
	for _, n := range []string{
		ParamRowNumber, ParamN, ParamRankType, ParamMonth, ParamYear, ParamQuarter, ParamDate,
		ParamDateRange, ParamParsedDate, ParamShift, ParamEquipmentIDs, ParamMachineTypes,
		ParamNumericFilter, ParamMeasurement, ParamTimeWindow,
	} {
		if b.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Summary renders the populated parameters compactly for decision reasons and logs
func (b Bag) Summary() string {
	var parts []string
	add := func(k string, v any) { parts = append(parts, fmt.Sprintf("%s=%v", k, v)) }
	if len(b.EquipmentIDs) > 0 {
		add(ParamEquipmentIDs, strings.Join(b.EquipmentIDs, ","))
	}
	switch {
	case b.Date != "":
		add(ParamDate, b.Date)
	case b.DateStart != "":
		add(ParamDateRange, b.DateStart+".."+b.DateEnd)
	case b.ParsedDate != nil:
		add(ParamParsedDate, b.ParsedDate.StartDate+".."+b.ParsedDate.EndDate)
	}
	if len(b.Shift) > 0 {
		add(ParamShift, strings.Join(b.Shift, ","))
	}
	if b.NumericFilter != nil {
		v := fmt.Sprintf("%s%g", b.NumericFilter.Operator, b.NumericFilter.Value)
		if b.NumericFilter.Upper != nil {
			v = fmt.Sprintf("%g..%g", b.NumericFilter.Value, *b.NumericFilter.Upper)
		}
		add(ParamNumericFilter, v)
	}
	if b.RankType != "" {
		add(ParamRankType, b.RankType)
	}
	if b.N != nil {
		add(ParamN, *b.N)
	}
	if b.RowNumber != nil {
		add(ParamRowNumber, *b.RowNumber)
	}
	if len(b.MachineTypes) > 0 {
		add(ParamMachineTypes, strings.Join(b.MachineTypes, ","))
	}
	if b.InvalidDate != "" {
		add("invalid_date", b.InvalidDate)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
