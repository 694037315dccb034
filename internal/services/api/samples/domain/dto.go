// Package domain holds DTOs for decision sample http and service contracts
package domain

// SamplesInput filters recent audited decisions
type SamplesInput struct {
	Task        string `json:"task,omitempty" validate:"omitempty,oneof=sql rag optimize" example:"sql"`
	RouteSource string `json:"route_source,omitempty" validate:"omitempty,oneof=deterministic llm" example:"llm"`
	Intent      string `json:"intent,omitempty" validate:"omitempty,max=64,printascii" example:"equipment_comparison"`
	ErrorsOnly  bool   `json:"errors_only,omitempty" example:"false"`
	Limit       int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}

// Sample is one audited decision
type Sample struct {
	DecisionID  string  `json:"decision_id"`
	At          string  `json:"at"`
	Question    string  `json:"question"`
	Intent      string  `json:"intent"`
	Task        string  `json:"task"`
	RouteSource string  `json:"route_source"`
	Rule        string  `json:"rule"`
	Confidence  float64 `json:"confidence"`
	SQL         string  `json:"sql,omitempty"`
	LatencyMS   int64   `json:"latency_ms"`
	Error       string  `json:"error,omitempty"`
}
