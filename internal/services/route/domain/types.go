// Package domain holds the route service DTOs and ports
package domain

import (
	"sort"
	"strings"
	"time"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/core/intent"
	"opsroute/internal/core/params"
	"opsroute/internal/core/router"
	"opsroute/internal/platform/store"
)

// Settings are per-request overrides
type Settings struct {
	LLMAPIKey string `json:"llm_api_key,omitempty" validate:"omitempty,max=256"`
}

// RouteInput is one question to route
type RouteInput struct {
	Question string `json:"question" validate:"notblank,max=2000" example:"Compare EX-12 and EX-14 tonnage last month"`
	// Parameters maps table name to columns; forwarded to the model as schema hints
	Parameters map[string][]string `json:"parameters,omitempty" validate:"omitempty,max=50"`
	Settings   Settings            `json:"settings,omitempty"`
	History    []llm.Turn          `json:"history,omitempty" validate:"omitempty,max=20,dive"`
}

// SchemaHint renders Parameters one table per line, sorted, or "" when none were sent
func (in RouteInput) SchemaHint() string {
	if len(in.Parameters) == 0 {
		return ""
	}
	tables := make([]string, 0, len(in.Parameters))
	for t := range in.Parameters {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t + "(" + strings.Join(in.Parameters[t], ", ") + ")")
	}
	return sb.String()
}

// RouteResult is a decision plus what the service built for it
type RouteResult struct {
	DecisionID string `json:"decision_id" example:"5f0c6a1e-8d59-4a3c-9d0f-2c1d1b0c7e11"`
	router.Decision
	SQL       string `json:"sql,omitempty" example:"SELECT equipment_id, SUM(tonnage) AS total_tonnage FROM production_data GROUP BY equipment_id"`
	LatencyMS int64  `json:"latency_ms" example:"3"`
}

// ExplainResult shows the work behind a deterministic decision; it never calls the model
type ExplainResult struct {
	Question   string             `json:"question"`
	Normalized string             `json:"normalized"`
	Params     params.Bag         `json:"params"`
	Candidates []intent.Candidate `json:"candidates"`
	Trace      router.Trace       `json:"trace"`
	Decision   *router.Decision   `json:"decision,omitempty"`
	SQL        string             `json:"sql,omitempty"`
	Fallback   bool               `json:"fallback"`
}

// QueryResult is a routed question and, for sql decisions, its rows
type QueryResult struct {
	RouteResult
	Result *store.ResultSet `json:"result,omitempty"`
}

// IntentInfo describes one catalog entry
type IntentInfo struct {
	Name     string   `json:"name" example:"equipment_comparison"`
	Tier     int      `json:"tier" example:"1"`
	Keywords []string `json:"keywords"`
}

// AuditRecord is one row of the decision audit
type AuditRecord struct {
	DecisionID    string
	At            time.Time
	Question      string
	Intent        string
	Task          string
	RouteSource   string
	Rule          string
	Confidence    float64
	RawConfidence float64
	Params        string // JSON
	SQL           string
	LatencyMS     int64
	Error         string
}
