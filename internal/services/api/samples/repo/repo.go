// Package repo reads recent decisions from the clickhouse audit table
package repo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"opsroute/internal/modkit/repokit"
)

// Filter narrows Recent; empty fields match everything
type Filter struct {
	Task        string
	RouteSource string
	Intent      string
	ErrorsOnly  bool
	Limit       int
}

// Repo is the minimal persistence surface for samples
type Repo interface {
	Recent(ctx context.Context, f Filter) ([]Row, error)
}

// Row is one audited decision
type Row struct {
	DecisionID  string
	At          time.Time
	Question    string
	Intent      string
	Task        string
	RouteSource string
	Rule        string
	Confidence  float64
	SQL         string
	LatencyMS   uint32
	Error       string
}

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type queries struct {
	ch    repokit.Clickhouse
	table string
}

// NewCH reads from table on ch
func NewCH(ch repokit.Clickhouse, table string) Repo {
	if ch == nil {
		panic("samples.Repo requires a clickhouse client")
	}
	if !tableRe.MatchString(table) {
		panic(fmt.Sprintf("samples.Repo: bad table name %q", table))
	}
	return &queries{ch: ch, table: table}
}

func (r *queries) Recent(ctx context.Context, f Filter) ([]Row, error) {
	sql := `
select decision_id, at, question, intent, task, route_source, rule, confidence, sql, latency_ms, error
from ` + r.table + `
where (? = '' or task = ?)
and (? = '' or route_source = ?)
and (? = '' or intent = ?)
and (? = 0 or error != '')
order by at desc
limit ?
`
	errorsOnly := 0
	if f.ErrorsOnly {
		errorsOnly = 1
	}
	rows, err := r.ch.Query(ctx, sql,
		f.Task, f.Task,
		f.RouteSource, f.RouteSource,
		f.Intent, f.Intent,
		errorsOnly, f.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var rr Row
		if err := rows.Scan(&rr.DecisionID, &rr.At, &rr.Question, &rr.Intent, &rr.Task, &rr.RouteSource,
			&rr.Rule, &rr.Confidence, &rr.SQL, &rr.LatencyMS, &rr.Error); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
