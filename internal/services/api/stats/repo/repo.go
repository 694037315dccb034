// Package repo reads decision stats from the clickhouse audit table
package repo

import (
	"context"
	"fmt"
	"regexp"

	"opsroute/internal/modkit/repokit"
)

// Repo is the minimal persistence surface for stats
type Repo interface {
	Decisions(ctx context.Context, start, end, task string) ([]RowDecisions, error)
	Intents(ctx context.Context, start, end string, limit int) ([]RowIntent, error)
}

// RowDecisions is a day, task and source bucket
type RowDecisions struct {
	Day           string
	Task          string
	RouteSource   string
	Decisions     uint64
	Errors        uint64
	AvgConfidence float64
}

// RowIntent is one intent bucket
type RowIntent struct {
	Intent       string
	Decisions    uint64
	LLMShare     float64
	AvgLatencyMS float64
}

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type queries struct {
	ch    repokit.Clickhouse
	table string
}

// NewCH reads from table on ch; the name is spliced into sql so it must be a plain identifier
func NewCH(ch repokit.Clickhouse, table string) Repo {
	if ch == nil {
		panic("stats.Repo requires a clickhouse client")
	}
	if !tableRe.MatchString(table) {
		panic(fmt.Sprintf("stats.Repo: bad table name %q", table))
	}
	return &queries{ch: ch, table: table}
}

func (r *queries) Decisions(ctx context.Context, start, end, task string) ([]RowDecisions, error) {
	sql := `
select toString(toDate(at)) as day, task, route_source,
	count() as decisions,
	countIf(error != '') as errors,
	ifNotFinite(avgIf(confidence, error = ''), 0) as avg_confidence
from ` + r.table + `
where toDate(at) between toDate(?) and toDate(?)
and (? = '' or task = ?)
group by day, task, route_source
order by day asc, task asc, route_source asc
`
	rows, err := r.ch.Query(ctx, sql, start, end, task, task)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowDecisions
	for rows.Next() {
		var rr RowDecisions
		if err := rows.Scan(&rr.Day, &rr.Task, &rr.RouteSource, &rr.Decisions, &rr.Errors, &rr.AvgConfidence); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *queries) Intents(ctx context.Context, start, end string, limit int) ([]RowIntent, error) {
	sql := `
select intent,
	count() as decisions,
	countIf(route_source = 'llm') / count() as llm_share,
	avg(latency_ms) as avg_latency_ms
from ` + r.table + `
where toDate(at) between toDate(?) and toDate(?)
and intent != ''
group by intent
order by decisions desc, intent asc
limit ?
`
	rows, err := r.ch.Query(ctx, sql, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RowIntent
	for rows.Next() {
		var rr RowIntent
		if err := rows.Scan(&rr.Intent, &rr.Decisions, &rr.LLMShare, &rr.AvgLatencyMS); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
