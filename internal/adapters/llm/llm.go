// Package llm is the fallback brain: an OpenAI-compatible chat client that picks a task when the
// deterministic router declines and writes SQL when no template fits
package llm

import (
	"context"

	"opsroute/internal/core/params"
)

// Tasks the model may choose
const (
	TaskSQL      = "sql"
	TaskRAG      = "rag"
	TaskOptimize = "optimize"
)

// Turn is one prior exchange passed as conversation context
type Turn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"notblank"`
}

// DecideRequest asks the model to choose a task for a question
type DecideRequest struct {
	Question string
	Intent   string // classifier's best guess, may be empty
	Params   params.Bag
	Schema   string // table and column hints; the built-in warehouse schema when empty
	History  []Turn
}

// SQLRequest asks the model for one SELECT answering the question
type SQLRequest struct {
	Question string
	Intent   string
	Params   params.Bag
	Schema   string
	History  []Turn
}

// Decision is the model's routing answer after schema validation
type Decision struct {
	Task        string  `json:"task" validate:"required,oneof=sql rag optimize"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
	Explanation string  `json:"explanation" validate:"notblank"`
	Intent      string  `json:"intent,omitempty"`
}

// Client is the outbound port used by the orchestrator, always behind the llm breaker
type Client interface {
	Decide(ctx context.Context, req DecideRequest) (Decision, error)
	GenerateSQL(ctx context.Context, req SQLRequest) (string, error)
}
