package repo

import (
	"context"
	"strings"

	"opsroute/internal/modkit/repokit"
	"opsroute/internal/platform/config"
	"opsroute/internal/services/route/domain"
)

// DefaultAuditTable is the clickhouse table decisions land in
const DefaultAuditTable = "route_decisions"

// AuditTable reads SERVICE_CLICKHOUSE_AUDIT_TABLE from root
func AuditTable(root config.Conf) string {
	return root.Prefix("SERVICE_CLICKHOUSE_").MayString("AUDIT_TABLE", DefaultAuditTable)
}

// AuditDDL creates the audit table; Record writes columns in this order
const AuditDDL = `CREATE TABLE IF NOT EXISTS route_decisions (
	decision_id    String,
	at             DateTime64(3, 'UTC'),
	question       String,
	intent         LowCardinality(String),
	task           LowCardinality(String),
	route_source   LowCardinality(String),
	rule           LowCardinality(String),
	confidence     Float64,
	raw_confidence Float64,
	params         String,
	sql            String,
	latency_ms     UInt32,
	error          String
) ENGINE = MergeTree ORDER BY (at, decision_id)`

// CHAudit appends decisions to a clickhouse table, one row per decision
type CHAudit struct {
	ch    repokit.Clickhouse
	table string
}

// NewCHAudit writes to table on ch
func NewCHAudit(ch repokit.Clickhouse, table string) *CHAudit {
	if ch == nil {
		panic("route.CHAudit requires a clickhouse client")
	}
	if strings.TrimSpace(table) == "" {
		table = DefaultAuditTable
	}
	return &CHAudit{ch: ch, table: table}
}

// Record implements domain.AuditSink
func (a *CHAudit) Record(ctx context.Context, r domain.AuditRecord) error {
	return a.ch.Insert(ctx, a.table, [][]any{{
		r.DecisionID,
		r.At,
		r.Question,
		r.Intent,
		r.Task,
		r.RouteSource,
		r.Rule,
		r.Confidence,
		r.RawConfidence,
		r.Params,
		r.SQL,
		uint32(max(r.LatencyMS, 0)),
		r.Error,
	}})
}
