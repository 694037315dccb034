package patterns

import (
	"regexp"
	"sort"
	"strings"

	"opsroute/internal/core/fuzzy"
	"opsroute/internal/core/normalize"
)

// Machine types
const (
	Excavator = "excavator"
	Tipper    = "tipper"
	Dozer     = "dozer"
	Loader    = "loader"
	Grader    = "grader"
	Drill     = "drill"
	Crusher   = "crusher"
)

// single-word spellings per machine type; plurals are handled by the fuzzy budget
var machineWords = map[string]string{
	"excavator": Excavator, "shovel": Excavator, "digger": Excavator, "backhoe": Excavator,
	"tipper": Tipper, "dumper": Tipper, "truck": Tipper, "hauler": Tipper,
	"dozer": Dozer, "bulldozer": Dozer,
	"loader": Loader,
	"grader": Grader,
	"drill": Drill, "rig": Drill,
	"crusher": Crusher,
}

var machinePhrases = map[string]string{
	"dump truck": Tipper, "haul truck": Tipper, "wheel loader": Loader, "drill rig": Drill,
}

// words the fuzzy matcher would otherwise take for a machine ("ore grade", "a dozen")
var machineStop = map[string]struct{}{
	"grade": {}, "grades": {}, "graded": {}, "dozen": {}, "dozens": {}, "leader": {}, "leaders": {},
	"trucked": {}, "trick": {}, "track": {}, "tracks": {}, "loaded": {}, "hauled": {}, "dumped": {},
	"crushed": {}, "shoveled": {}, "drilled": {}, "tipped": {},
}

var machineVocab = func() []string {
	out := make([]string, 0, len(machineWords))
	for w := range machineWords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}()

// MachineTypes returns canonical machine types in order of appearance, matching typos and plurals fuzzily
func MachineTypes(text string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	lower := strings.ToLower(text)
	for _, phrase := range sortedKeys(machinePhrases) {
		if strings.Contains(lower, phrase) {
			add(machinePhrases[phrase])
		}
	}
	for _, w := range normalize.Words(lower) {
		if _, stop := machineStop[w]; stop {
			continue
		}
		if t, ok := machineWords[w]; ok {
			add(t)
			continue
		}
		if strings.HasSuffix(w, "s") {
			if t, ok := machineWords[strings.TrimSuffix(w, "s")]; ok {
				add(t)
				continue
			}
		}
		if best, ok := fuzzy.Best(w, machineVocab); ok {
			add(machineWords[best])
		}
	}
	return out
}

// Metric names a measured column of production_data
type Metric struct {
	Name   string // stable name used in SQL aliases
	Column string
	Unit   string
}

// Metrics in detection priority: a question naming fuel and tonnage is about fuel
var Metrics = []Metric{
	{Name: "fuel", Column: "fuel_liters", Unit: "liter"},
	{Name: "downtime", Column: "downtime_hours", Unit: "hour"},
	{Name: "cycle_time", Column: "cycle_time_min", Unit: "minute"},
	{Name: "distance", Column: "distance_km", Unit: "km"},
	{Name: "operating_hours", Column: "operating_hours", Unit: "hour"},
	{Name: "trips", Column: "trips", Unit: "trip"},
	{Name: "tonnage", Column: "tonnage", Unit: "ton"},
}

var metricRes = map[string]*regexp.Regexp{
	"fuel":            regexp.MustCompile(`(?i)\b(fuel|diesel|liters?|litres?)\b`),
	"downtime":        regexp.MustCompile(`(?i)\b(downtime|down time|breakdowns?|idle)\b`),
	"cycle_time":      regexp.MustCompile(`(?i)\bcycle\s*times?\b`),
	"distance":        regexp.MustCompile(`(?i)\b(distance|km|kilomet(?:er|re)s?|haul length)\b`),
	"operating_hours": regexp.MustCompile(`(?i)\b(operating hours|run\s*time|utili[sz]ation|engine hours)\b`),
	"trips":           regexp.MustCompile(`(?i)\b(trips?|loads?|cycles)\b`),
	"tonnage":         regexp.MustCompile(`(?i)\b(tonnage|tons?|tonnes?|production|material moved|output)\b`),
}

// MetricOf returns the first metric named in text
func MetricOf(text string) (Metric, bool) {
	for _, m := range Metrics {
		if metricRes[m.Name].MatchString(text) {
			return m, true
		}
	}
	return Metric{}, false
}

// MetricByUnit maps a canonical measurement unit onto its metric
func MetricByUnit(unit string) (Metric, bool) {
	switch unit {
	case "ton":
		return Metrics[6], true
	case "trip":
		return Metrics[5], true
	case "liter":
		return Metrics[0], true
	case "km":
		return Metrics[3], true
	}
	return Metric{}, false
}

// SQL aggregate functions
const (
	AggSum   = "SUM"
	AggAvg   = "AVG"
	AggCount = "COUNT"
	AggMax   = "MAX"
	AggMin   = "MIN"
)

var aggregationRes = []struct {
	fn string
	re *regexp.Regexp
}{
	{AggAvg, regexp.MustCompile(`(?i)\b(average|avg|mean|per\s+(?:trip|truck|machine|day))\b`)},
	{AggCount, regexp.MustCompile(`(?i)\b(how many|count|number of)\b`)},
	{AggMax, regexp.MustCompile(`(?i)\b(max|maximum|peak|highest)\b`)},
	{AggMin, regexp.MustCompile(`(?i)\b(min|minimum|lowest)\b`)},
	{AggSum, regexp.MustCompile(`(?i)\b(total|sum|overall|cumulative|how much)\b`)},
}

// Aggregation returns the SQL aggregate the question asks for, SUM when none is named
func Aggregation(text string) string {
	for _, a := range aggregationRes {
		if a.re.MatchString(text) {
			return a.fn
		}
	}
	return AggSum
}

// Granularity of a trend question
const (
	ByDay   = "day"
	ByWeek  = "week"
	ByMonth = "month"
	ByShift = "shift"
)

var granularityRes = []struct {
	g  string
	re *regexp.Regexp
}{
	{ByShift, regexp.MustCompile(`(?i)\b(per|by|each)\s+shifts?\b|\bshift[- ]wise\b`)},
	{ByMonth, regexp.MustCompile(`(?i)\b(monthly|per month|by month|each month|month[- ]wise|month over month)\b`)},
	{ByWeek, regexp.MustCompile(`(?i)\b(weekly|per week|by week|each week|week over week)\b`)},
	{ByDay, regexp.MustCompile(`(?i)\b(daily|per day|by day|each day|day[- ]wise|day by day|trend)\b`)},
}

// Granularity returns the grouping a trend question asks for, or ""
func Granularity(text string) string {
	for _, g := range granularityRes {
		if g.re.MatchString(text) {
			return g.g
		}
	}
	return ""
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
