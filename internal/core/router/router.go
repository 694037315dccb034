package router

import (
	"fmt"

	"opsroute/internal/core/intent"
	"opsroute/internal/core/params"
	"opsroute/internal/platform/logger"
)

// Decision is a deterministic routing outcome
type Decision struct {
	Task          Task       `json:"task"`
	Confidence    float64    `json:"confidence"`
	RawConfidence float64    `json:"raw_confidence"`
	Reason        string     `json:"reason"`
	RouteSource   string     `json:"route_source"`
	Intent        string     `json:"intent"`
	Params        params.Bag `json:"params"`
	TemplateUsed  string     `json:"template_used,omitempty"`
	Rule          string     `json:"rule,omitempty"`
}

// Why a rule did not fire
const (
	SkipIntent     = "intent mismatch"
	SkipConfidence = "below threshold"
	SkipParams     = "missing parameter"
)

// Step is one evaluated rule
type Step struct {
	Rule   string `json:"rule"`
	Fired  bool   `json:"fired"`
	Reason string `json:"reason,omitempty"`
}

// Trace lists the rules evaluated for one question, in order
type Trace []Step

// Router evaluates rules top to bottom; the first rule that fires wins
type Router struct {
	rules []Rule
}

// New returns a Router over rules; the slice is copied
func New(rules []Rule) *Router {
	return &Router{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the table
func (r *Router) Rules() []Rule { return append([]Rule(nil), r.rules...) }

// Route returns the decision of the first rule that fires; false means fall back to the LLM
func (r *Router) Route(question string, res intent.Result) (Decision, bool) {
	d, tr, ok := r.Evaluate(res)
	logger.Named("router").Debug().
		Str("question", question).
		Str("intent", res.Intent).
		Float64("confidence", res.Confidence).
		Interface("trace", tr).
		Bool("matched", ok).
		Msg("router trace")
	return d, ok
}

// Evaluate runs the rules and returns the decision together with the trace
func (r *Router) Evaluate(res intent.Result) (Decision, Trace, bool) {
	var tr Trace
	for _, rule := range r.rules {
		switch {
		case !rule.matchesIntent(res.Intent):
			tr = append(tr, Step{Rule: rule.Name, Reason: SkipIntent})
			continue
		case res.Confidence < rule.MinConfidence:
			tr = append(tr, Step{Rule: rule.Name, Reason: fmt.Sprintf("%s: %.2f < %.2f", SkipConfidence, res.Confidence, rule.MinConfidence)})
			continue
		case rule.Guard != nil && !rule.Guard.Test(res.Params):
			tr = append(tr, Step{Rule: rule.Name, Reason: SkipParams + ": " + rule.Guard.Desc})
			continue
		}
		tr = append(tr, Step{Rule: rule.Name, Fired: true})
		return Decision{
			Task:          rule.Task,
			Confidence:    max(rule.Floor, res.Confidence),
			RawConfidence: res.Confidence,
			Reason:        rule.reason(res.Intent, res.Params),
			RouteSource:   SourceDeterministic,
			Intent:        res.Intent,
			Params:        res.Params,
			TemplateUsed:  rule.Template,
			Rule:          rule.Name,
		}, tr, true
	}
	return Decision{}, tr, false
}
