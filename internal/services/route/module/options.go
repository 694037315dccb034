package module

import (
	"time"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/platform/config"
	"opsroute/internal/services/route/guardrails"
	"opsroute/internal/services/route/repo"
)

// Options controls the route module
type Options struct {
	ExecuteSQL  bool
	MaxRows     int
	StmtTimeout time.Duration
	Audit       bool
	AuditTable  string
	Budgets     guardrails.Budgets
	LLM         llm.Options
}

// FromConfig reads CORE_ROUTE_, CORE_LLM_ and the clickhouse audit table from root
func FromConfig(root config.Conf) Options {
	c := root.Prefix("CORE_ROUTE_")
	return Options{
		ExecuteSQL:  c.MayBool("EXECUTE_SQL", false),
		MaxRows:     c.MayInt("MAX_ROWS", 500),
		StmtTimeout: c.MayDuration("STATEMENT_TIMEOUT", 10*time.Second),
		Audit:       c.MayBool("AUDIT", true),
		AuditTable:  repo.AuditTable(root),
		Budgets: guardrails.Budgets{
			Route: c.MayDuration("BUDGET", 90*time.Second),
			Query: c.MayDuration("QUERY_BUDGET", 30*time.Second),
		},
		LLM:         llm.OptionsFromConfig(root),
	}
}
