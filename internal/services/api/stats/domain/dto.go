// Package domain holds DTOs for decision stats http and service contracts
package domain

// TimeRange is an inclusive day window
type TimeRange struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02" example:"2025-06-01"`
	End   string `json:"end" validate:"required,datetime=2006-01-02" example:"2025-06-30"`
}

// DecisionsInput buckets audited decisions by day, task and source
type DecisionsInput struct {
	Range TimeRange `json:"range"`
	// optional filter
	Task string `json:"task,omitempty" validate:"omitempty,oneof=sql rag optimize" example:"sql"`
}

// DecisionsRow is one day, task and source bucket
type DecisionsRow struct {
	Day           string  `json:"day" example:"2025-06-18"`
	Task          string  `json:"task" example:"sql"`
	RouteSource   string  `json:"route_source" example:"deterministic"`
	Decisions     int64   `json:"decisions" example:"420"`
	Errors        int64   `json:"errors" example:"3"`
	AvgConfidence float64 `json:"avg_confidence" example:"0.91"`
}

// IntentsInput ranks intents seen in the window
type IntentsInput struct {
	Range TimeRange `json:"range"`
	Limit int       `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"20"`
}

// IntentRow is one intent and how often the model had to step in for it
type IntentRow struct {
	Intent       string  `json:"intent" example:"equipment_comparison"`
	Decisions    int64   `json:"decisions" example:"88"`
	LLMShare     float64 `json:"llm_share" example:"0.12"`
	AvgLatencyMS float64 `json:"avg_latency_ms" example:"14.5"`
}
