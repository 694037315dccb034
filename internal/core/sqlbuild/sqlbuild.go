// Package sqlbuild turns an intent and its parameter bag into one SELECT statement.
// It either returns a complete statement or nothing; it never guesses
package sqlbuild

import (
	"fmt"
	"strings"

	"opsroute/internal/core/params"
	"opsroute/internal/core/patterns"
)

// Source tables
const (
	TableProduction  = "production_data"
	TableTrips       = "trip_summary"
	TableEquipment   = "equipment"
	TableMaintenance = "maintenance_log"
	TableFuel        = "fuel_log"
)

// Limits
const (
	DefaultLimit = 100
	DefaultTopN  = 5
	MaxTopN      = 100
)

// query is the statement under construction; a failed filter poisons it
type query struct {
	sel    []string
	from   string
	where  []string
	group  []string
	order  []string
	limit  int
	offset int
	bad    bool
}

func (q *query) filter(f string, ok bool) {
	if !ok {
		q.bad = true
		return
	}
	if f != "" {
		q.where = append(q.where, f)
	}
}

func (q *query) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(q.sel, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.from)
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
	if len(q.group) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(q.group, ", "))
	}
	if len(q.order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(q.order, ", "))
	}
	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.offset)
	}
	return sb.String()
}

type builder func(b params.Bag, question string) (*query, bool)

var builders = map[string]builder{
	"equipment_comparison":  comparison,
	"equipment_status":      status,
	"equipment_production":  equipmentProduction,
	"equipment_ranking":     ranking,
	"shift_comparison":      shifts,
	"shift_production":      shifts,
	"specific_row":          row,
	"total_tonnage":         metricOf("tonnage", patterns.AggSum),
	"total_trips":           metricOf("trips", patterns.AggSum),
	"average_tonnage":       metricOf("tonnage", patterns.AggAvg),
	"average_cycle_time":    metricOf("cycle_time", patterns.AggAvg),
	"distance_traveled":     metricOf("distance", patterns.AggSum),
	"fuel_consumption":      fuel,
	"downtime_analysis":     downtime,
	"utilization_rate":      utilization,
	"material_breakdown":    breakdown("material"),
	"location_production":   breakdown("location"),
	"maintenance_history":   maintenanceHistory,
	"daily_trend":           trend(patterns.ByDay),
	"monthly_report":        trend(patterns.ByMonth),
	"production_summary":    summary,
	"equipment_list":        equipmentList,
	"trip_details":          tripDetails,
	"production_efficiency": efficiency,
	"cost_analysis":         cost,
	"aggregation_query":     genericAggregation,
	"data_retrieval":        retrieval,
	"time_based_query":      retrieval,
	"equipment_query":       retrieval,
}

// Supports reports whether intent has a SQL template
func Supports(intent string) bool {
	_, ok := builders[intent]
	return ok
}

// Build returns the SQL for intent, or "", false when the intent has no template or a required
// parameter is missing or invalid. The question only picks metric and aggregate words
func Build(intent string, b params.Bag, question string) (string, bool) {
	fn, ok := builders[intent]
	// an unfiltered aggregate is not an answer to a question about a date that does not exist
	if !ok || b.InvalidDate != "" {
		return "", false
	}
	q, ok := fn(b, strings.ToLower(question))
	if !ok || q == nil || q.bad {
		return "", false
	}
	return q.String(), true
}

// production starts a production_data query with the common filters applied
func production(b params.Bag, sel ...string) *query {
	q := &query{sel: sel, from: TableProduction}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(DateFilter(b, "date"))
	q.filter(ShiftFilter(b, "shift"))
	q.filter(MachineFilter(b, "machine_type", ""))
	return q
}

// metric picks the measured column: measurement unit, then the question, then tonnage
func metric(b params.Bag, question string) patterns.Metric {
	if b.Measurement != nil {
		if m, ok := patterns.MetricByUnit(b.Measurement.Unit); ok {
			return m
		}
	}
	if m, ok := patterns.MetricOf(question); ok {
		return m
	}
	return patterns.Metrics[len(patterns.Metrics)-1]
}

func metricByName(name string) patterns.Metric {
	for _, m := range patterns.Metrics {
		if m.Name == name {
			return m
		}
	}
	panic("sqlbuild: unknown metric " + name)
}

func alias(agg string, m patterns.Metric) string {
	prefix := map[string]string{
		patterns.AggSum: "total_", patterns.AggAvg: "avg_", patterns.AggMax: "max_", patterns.AggMin: "min_",
	}[agg]
	return prefix + m.Column
}

func direction(b params.Bag) string {
	if b.RankType == patterns.RankBottom {
		return "ASC"
	}
	return "DESC"
}

func topN(b params.Bag, def int) int {
	if b.N != nil && *b.N > 0 {
		return min(*b.N, MaxTopN)
	}
	return def
}

func comparison(b params.Bag, question string) (*query, bool) {
	if len(b.EquipmentIDs) < 2 {
		return nil, false
	}
	q := production(b,
		"equipment_id",
		"SUM(tonnage) AS total_tonnage",
		"SUM(trips) AS total_trips",
		"SUM(fuel_liters) AS total_fuel_liters",
		"SUM(downtime_hours) AS total_downtime_hours",
	)
	q.filter(NumericFilter(b, metric(b, question).Column))
	q.group = []string{"equipment_id"}
	q.order = []string{"equipment_id"}
	return q, true
}

func status(b params.Bag, _ string) (*query, bool) {
	if len(b.EquipmentIDs) != 1 {
		return nil, false
	}
	q := &query{sel: []string{"equipment_id", "machine_type", "capacity_tons", "status", "site"}, from: TableEquipment}
	q.filter(EquipmentFilter(b, "equipment_id"))
	return q, true
}

func equipmentProduction(b params.Bag, question string) (*query, bool) {
	if len(b.EquipmentIDs) != 1 {
		return nil, false
	}
	q := production(b, "equipment_id", "SUM(tonnage) AS total_tonnage", "SUM(trips) AS total_trips", "SUM(operating_hours) AS total_operating_hours")
	q.filter(NumericFilter(b, metric(b, question).Column))
	q.group = []string{"equipment_id"}
	return q, true
}

func ranking(b params.Bag, question string) (*query, bool) {
	if b.RankType == "" && b.N == nil {
		return nil, false
	}
	m := metric(b, question)
	agg := patterns.AggSum
	if m.Name == "cycle_time" {
		agg = patterns.AggAvg
	}
	a := alias(agg, m)
	q := production(b, "equipment_id", "machine_type", fmt.Sprintf("%s(%s) AS %s", agg, m.Column, a))
	q.filter(NumericFilter(b, m.Column))
	q.group = []string{"equipment_id", "machine_type"}
	q.order = []string{a + " " + direction(b), "equipment_id"}
	q.limit = topN(b, DefaultTopN)
	return q, true
}

func shifts(b params.Bag, question string) (*query, bool) {
	m := metric(b, question)
	q := production(b, "shift", "SUM(tonnage) AS total_tonnage", "SUM(trips) AS total_trips", "AVG(cycle_time_min) AS avg_cycle_time_min")
	q.filter(NumericFilter(b, m.Column))
	q.group = []string{"shift"}
	q.order = []string{"shift"}
	if b.RankType != "" {
		a := alias(patterns.AggSum, m)
		if m.Name != "tonnage" && m.Name != "trips" {
			q.sel = append(q.sel, fmt.Sprintf("SUM(%s) AS %s", m.Column, a))
		}
		q.order = []string{a + " " + direction(b), "shift"}
	}
	return q, true
}

func row(b params.Bag, _ string) (*query, bool) {
	if b.RowNumber == nil || *b.RowNumber < 1 {
		return nil, false
	}
	q := production(b, "*")
	q.order = []string{"date", "shift", "equipment_id"}
	q.limit = 1
	q.offset = *b.RowNumber - 1
	return q, true
}

// group applies the shared grouping: period granularity, several ids, or a ranked question
func group(q *query, b params.Bag, question, valueAlias, idCol string) {
	if g := patterns.Granularity(question); g != "" {
		expr := period(g)
		q.sel = append([]string{expr + " AS period"}, q.sel...)
		q.group = []string{"period"}
		q.order = []string{"period"}
		return
	}
	if len(b.EquipmentIDs) > 1 || b.RankType != "" {
		q.sel = append([]string{idCol}, q.sel...)
		q.group = []string{idCol}
		q.order = []string{idCol}
		if b.RankType != "" {
			q.order = []string{valueAlias + " " + direction(b), idCol}
			q.limit = topN(b, 1)
		}
	}
}

func period(g string) string {
	switch g {
	case patterns.ByWeek:
		return "DATE_TRUNC('week', date)::date"
	case patterns.ByMonth:
		return "DATE_TRUNC('month', date)::date"
	case patterns.ByShift:
		return "shift"
	}
	return "date"
}

func metricOf(name, def string) builder {
	m := metricByName(name)
	return func(b params.Bag, question string) (*query, bool) {
		agg := def
		if a := patterns.Aggregation(question); def == patterns.AggSum && (a == patterns.AggMax || a == patterns.AggMin) {
			agg = a
		}
		a := alias(agg, m)
		q := production(b, fmt.Sprintf("%s(%s) AS %s", agg, m.Column, a))
		q.filter(NumericFilter(b, m.Column))
		group(q, b, question, a, "equipment_id")
		return q, true
	}
}

func fuel(b params.Bag, question string) (*query, bool) {
	q := &query{sel: []string{"SUM(liters) AS total_fuel_liters"}, from: TableFuel}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(DateFilter(b, "date"))
	q.filter(ShiftFilter(b, "shift"))
	q.filter(MachineFilter(b, "", "equipment_id"))
	q.filter(NumericFilter(b, "liters"))
	group(q, b, question, "total_fuel_liters", "equipment_id")
	return q, true
}

func downtime(b params.Bag, question string) (*query, bool) {
	q := &query{sel: []string{"equipment_id", "SUM(downtime_hours) AS total_downtime_hours", "COUNT(*) AS events"}, from: TableMaintenance}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(DateFilter(b, "date"))
	q.filter(MachineFilter(b, "", "equipment_id"))
	q.filter(NumericFilter(b, "downtime_hours"))
	q.group = []string{"equipment_id"}
	q.order = []string{"total_downtime_hours " + direction(b), "equipment_id"}
	if b.RankType != "" || b.N != nil {
		q.limit = topN(b, DefaultTopN)
	}
	return q, true
}

func utilization(b params.Bag, _ string) (*query, bool) {
	q := production(b,
		"SUM(operating_hours) AS total_operating_hours",
		"SUM(downtime_hours) AS total_downtime_hours",
		"ROUND(100.0 * SUM(operating_hours) / NULLIF(SUM(operating_hours) + SUM(downtime_hours), 0), 2) AS utilization_pct",
	)
	if len(b.EquipmentIDs) > 1 {
		q.sel = append([]string{"equipment_id"}, q.sel...)
		q.group = []string{"equipment_id"}
		q.order = []string{"equipment_id"}
	}
	return q, true
}

func breakdown(col string) builder {
	return func(b params.Bag, question string) (*query, bool) {
		q := production(b, col, "SUM(tonnage) AS total_tonnage", "SUM(trips) AS total_trips")
		q.filter(NumericFilter(b, metric(b, question).Column))
		q.group = []string{col}
		q.order = []string{"total_tonnage DESC", col}
		return q, true
	}
}

func maintenanceHistory(b params.Bag, _ string) (*query, bool) {
	q := &query{sel: []string{"date", "equipment_id", "downtime_hours", "reason", "cost"}, from: TableMaintenance}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(DateFilter(b, "date"))
	q.filter(MachineFilter(b, "", "equipment_id"))
	q.order = []string{"date DESC", "equipment_id"}
	q.limit = DefaultLimit
	return q, true
}

func trend(def string) builder {
	return func(b params.Bag, question string) (*query, bool) {
		g := patterns.Granularity(question)
		if g == "" {
			g = def
		}
		m := metric(b, question)
		agg := patterns.AggSum
		if m.Name == "cycle_time" {
			agg = patterns.AggAvg
		}
		q := production(b, period(g)+" AS period", fmt.Sprintf("%s(%s) AS %s", agg, m.Column, alias(agg, m)))
		q.filter(NumericFilter(b, m.Column))
		q.group = []string{"period"}
		q.order = []string{"period"}
		return q, true
	}
}

func summary(b params.Bag, _ string) (*query, bool) {
	return production(b,
		"COUNT(DISTINCT equipment_id) AS equipment_count",
		"SUM(tonnage) AS total_tonnage",
		"SUM(trips) AS total_trips",
		"SUM(fuel_liters) AS total_fuel_liters",
		"SUM(downtime_hours) AS total_downtime_hours",
	), true
}

func equipmentList(b params.Bag, _ string) (*query, bool) {
	q := &query{sel: []string{"equipment_id", "machine_type", "capacity_tons", "status", "site"}, from: TableEquipment}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(MachineFilter(b, "machine_type", ""))
	q.order = []string{"equipment_id"}
	return q, true
}

func tripDetails(b params.Bag, _ string) (*query, bool) {
	q := &query{sel: []string{"date", "shift", "tipper_id", "excavator_id", "trip_count", "tonnage"}, from: TableTrips}
	if f, ok := EquipmentFilter(b, "tipper_id"); ok && f != "" {
		g, _ := EquipmentFilter(b, "excavator_id")
		q.where = append(q.where, "("+f+" OR "+g+")")
	} else {
		q.filter(f, ok)
	}
	q.filter(DateFilter(b, "date"))
	q.filter(ShiftFilter(b, "shift"))
	q.filter(NumericFilter(b, "tonnage"))
	q.order = []string{"date", "shift", "tipper_id"}
	q.limit = DefaultLimit
	return q, true
}

func efficiency(b params.Bag, _ string) (*query, bool) {
	q := production(b, "equipment_id", "ROUND(SUM(tonnage) / NULLIF(SUM(operating_hours), 0), 2) AS tons_per_hour")
	q.group = []string{"equipment_id"}
	q.order = []string{"tons_per_hour " + direction(b), "equipment_id"}
	if b.RankType != "" || b.N != nil {
		q.limit = topN(b, DefaultTopN)
	}
	return q, true
}

func cost(b params.Bag, _ string) (*query, bool) {
	q := &query{sel: []string{"equipment_id", "SUM(cost) AS total_cost"}, from: TableMaintenance}
	q.filter(EquipmentFilter(b, "equipment_id"))
	q.filter(DateFilter(b, "date"))
	q.filter(MachineFilter(b, "", "equipment_id"))
	q.group = []string{"equipment_id"}
	q.order = []string{"total_cost " + direction(b), "equipment_id"}
	return q, true
}

// genericAggregation needs a named metric; "how many" without one counts rows
func genericAggregation(b params.Bag, question string) (*query, bool) {
	agg := patterns.Aggregation(question)
	m, ok := patterns.MetricOf(question)
	if b.Measurement != nil {
		if mu, okU := patterns.MetricByUnit(b.Measurement.Unit); okU {
			m, ok = mu, true
		}
	}
	if agg == patterns.AggCount && !ok {
		q := production(b, "COUNT(*) AS record_count")
		return q, true
	}
	if !ok {
		return nil, false
	}
	if agg == patterns.AggCount {
		agg = patterns.AggSum
	}
	a := alias(agg, m)
	q := production(b, fmt.Sprintf("%s(%s) AS %s", agg, m.Column, a))
	q.filter(NumericFilter(b, m.Column))
	group(q, b, question, a, "equipment_id")
	return q, true
}

// retrieval lists rows and refuses to run unfiltered
func retrieval(b params.Bag, question string) (*query, bool) {
	q := production(b, "date", "shift", "equipment_id", "machine_type", "material", "tonnage", "trips")
	q.filter(NumericFilter(b, metric(b, question).Column))
	if len(q.where) == 0 {
		return nil, false
	}
	q.order = []string{"date DESC", "shift", "equipment_id"}
	q.limit = DefaultLimit
	return q, true
}
