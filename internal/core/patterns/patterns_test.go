package patterns

import (
	"reflect"
	"testing"
)

func TestEquipmentIDs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Compare BB-001 and TIP-45", []string{"BB-001", "TIP-45"}},
		{"ex12 vs EX-12 vs tip45", []string{"EX-12", "TIP-45"}},
		{"FY2024 output for q1 and CY2023", nil},
		{"tonnage in jan-2024 for top-5", nil},
		{"DT-0007 downtime", []string{"DT-0007"}},
		{"excavator12345", nil},
	}
	for _, c := range cases {
		if got := EquipmentIDs(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("EquipmentIDs(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestShifts(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"for shifts A and B with tonnage", []string{"A", "B"}},
		{"shift 1", []string{"A"}},
		{"shift 2/3 fuel", []string{"B", "C"}},
		{"shifts a, b and c", []string{"A", "B", "C"}},
		{"b and c shifts", []string{"B", "C"}},
		{"trips during a shift", nil},
		{"night shift downtime", []string{"C"}},
		{"shift b before shift a", []string{"B", "A"}},
		{"ran 3 shifts", nil},
	}
	for _, c := range cases {
		if got := Shifts(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Shifts(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestNumericComparison(t *testing.T) {
	cases := []struct {
		in    string
		op    string
		value float64
		unit  string
	}{
		{"tonnage above 800 tons", ">", 800, "ton"},
		{"more than 25 trips", ">", 25, "trip"},
		{"at least 1,500 tonnes", ">=", 1500, "ton"},
		{"no more than 12.5 hours of downtime", "<=", 12.5, "hour"},
		{"fuel below 300 liters", "<", 300, "liter"},
		{"trips >= 10", ">=", 10, ""},
		{"exactly 4 loads", "=", 4, "trip"},
	}
	for _, c := range cases {
		got, ok := NumericComparison(c.in)
		if !ok || got.Operator != c.op || got.Value != c.value || got.Unit != c.unit {
			t.Fatalf("NumericComparison(%q) = %+v %v", c.in, got, ok)
		}
	}

	b, ok := NumericComparison("trucks hauling between 500 and 800 tons")
	if !ok || b.Operator != "between" || b.Value != 500 || b.Upper == nil || *b.Upper != 800 {
		t.Fatalf("between = %+v %v", b, ok)
	}
	if _, ok := NumericComparison("tonnage over 30 days"); ok {
		t.Fatalf("a time span is a window, not a filter")
	}
	if _, ok := NumericComparison("between april 2024 and june 2024"); ok {
		t.Fatalf("month names are not numbers")
	}
	if !BetweenYears("between 2022 and 2023") || BetweenYears("between 500 and 800") {
		t.Fatalf("BetweenYears mismatch")
	}
}

func TestFirstMeasurement(t *testing.T) {
	cases := map[string]Measurement{
		"moved 1200 t today":       {1200, "ton"},
		"hauled 350 m³ of ore":     {350, "m3"},
		"45 trips":                 {45, "trip"},
		"a 2.5 km haul":            {2.5, "km"},
		"ramp of 300 metres":       {300, "meter"},
		"above 800 tons in shift A": {800, "ton"},
	}
	for in, want := range cases {
		if got, ok := FirstMeasurement(in); !ok || got != want {
			t.Fatalf("FirstMeasurement(%q) = %+v %v", in, got, ok)
		}
	}
	if _, ok := FirstMeasurement("BB-001 in 2024"); ok {
		t.Fatalf("no unit, no measurement")
	}
}

func TestTrailingWindow(t *testing.T) {
	w, ok := TrailingWindow("fuel over the past 24 hours")
	if !ok || w != (Window{24, "hour"}) {
		t.Fatalf("window = %+v %v", w, ok)
	}
	w, ok = TrailingWindow("last 3 weeks")
	if !ok || w != (Window{3, "week"}) {
		t.Fatalf("window = %+v %v", w, ok)
	}
	if _, ok := TrailingWindow("last 0 days"); ok {
		t.Fatalf("zero window accepted")
	}
}

func TestRank(t *testing.T) {
	cases := []struct {
		in   string
		kind string
		n    int
		ok   bool
	}{
		{"top 5 excavators by tonnage", RankTop, 5, true},
		{"lowest 3 tippers", RankBottom, 3, true},
		{"which excavator moved the most", RankTop, 0, true},
		{"least fuel used", RankBottom, 0, true},
		{"at least 100 tons", "", 0, false},
		{"trips at most 10", "", 0, false},
		{"tonnage for march", "", 0, false},
	}
	for _, c := range cases {
		kind, n, ok := Rank(c.in)
		if kind != c.kind || n != c.n || ok != c.ok {
			t.Fatalf("Rank(%q) = %q %d %v", c.in, kind, n, ok)
		}
	}
}

func TestRowNumber(t *testing.T) {
	for in, want := range map[string]int{"show row 5": 5, "record number 12": 12, "the 3rd row": 3, "entry #7": 7} {
		if got, ok := RowNumber(in); !ok || got != want {
			t.Fatalf("RowNumber(%q) = %d %v", in, got, ok)
		}
	}
	if _, ok := RowNumber("throw 5 rocks"); ok {
		t.Fatalf("row inside a word")
	}
}

func TestMachineTypes(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"excavators and tippers", []string{Excavator, Tipper}},
		{"excavater fuel", []string{Excavator}},
		{"dump truck trips", []string{Tipper}},
		{"loaded trips by ore grade", nil},
		{"a dozen shovels", []string{Excavator}},
	}
	for _, c := range cases {
		if got := MachineTypes(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("MachineTypes(%q) = %#v, want %#v", c.in, got, c.want)
		}
	}
}

func TestMetricAggregationGranularity(t *testing.T) {
	if m, ok := MetricOf("diesel used by tippers and tonnage"); !ok || m.Column != "fuel_liters" {
		t.Fatalf("fuel must win, got %+v", m)
	}
	if m, ok := MetricOf("total tonnage"); !ok || m.Name != "tonnage" {
		t.Fatalf("MetricOf tonnage = %+v", m)
	}
	if _, ok := MetricOf("which shift"); ok {
		t.Fatalf("no metric expected")
	}
	if m, ok := MetricByUnit("trip"); !ok || m.Column != "trips" {
		t.Fatalf("MetricByUnit = %+v", m)
	}

	for in, want := range map[string]string{
		"average cycle time": AggAvg, "how many trips": AggCount, "peak tonnage": AggMax,
		"lowest fuel": AggMin, "total tonnage": AggSum, "tonnage in march": AggSum,
	} {
		if got := Aggregation(in); got != want {
			t.Fatalf("Aggregation(%q) = %s, want %s", in, got, want)
		}
	}

	for in, want := range map[string]string{
		"daily tonnage trend": ByDay, "tonnage per shift": ByShift, "monthly fuel": ByMonth,
		"weekly trips": ByWeek, "tonnage": "",
	} {
		if got := Granularity(in); got != want {
			t.Fatalf("Granularity(%q) = %q, want %q", in, got, want)
		}
	}
}
