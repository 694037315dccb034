package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/core/dates"
	"opsroute/internal/core/router"
	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/platform/store"
	kit "opsroute/internal/platform/testkit"
	"opsroute/internal/services/route/domain"
	"opsroute/internal/services/route/guardrails"
)

const compareQ = "Compare BB-001 and TIP-45 between April 2024 and June 2024 for shifts A and B with tonnage above 800 tons"

type fakeLLM struct {
	decision llm.Decision
	sql      string
	err      error
	decides  int
	sqls     int
	lastSQL  llm.SQLRequest
}

func (f *fakeLLM) Decide(_ context.Context, _ llm.DecideRequest) (llm.Decision, error) {
	f.decides++
	return f.decision, f.err
}

func (f *fakeLLM) GenerateSQL(_ context.Context, r llm.SQLRequest) (string, error) {
	f.sqls++
	f.lastSQL = r
	return f.sql, f.err
}

type fakeModels struct {
	c    *fakeLLM
	keys []string
}

func (m *fakeModels) For(key string) (llm.Client, error) {
	m.keys = append(m.keys, key)
	if m.c == nil {
		return nil, perr.Unavailablef("llm not configured")
	}
	return m.c, nil
}

func (m *fakeModels) Configured() bool { return m.c != nil }

type fakeAudit struct {
	mu   sync.Mutex
	recs []domain.AuditRecord
	err  error
}

func (a *fakeAudit) Record(_ context.Context, r domain.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recs = append(a.recs, r)
	return a.err
}

type fakeExec struct {
	calls int
	sql   string
}

func (e *fakeExec) Query(_ context.Context, sql string) (store.ResultSet, error) {
	e.calls++
	e.sql = sql
	return store.ResultSet{Columns: []string{"equipment_id"}, Rows: [][]any{{"BB-001"}}}, nil
}

var fastRetry = resilience.RetryPolicy{Attempts: 3, Initial: time.Millisecond, Max: 2 * time.Millisecond}

func newSvc(t *testing.T, cfg Config, opts ...Option) *Svc {
	t.Helper()
	base := []Option{
		WithDates(&dates.Parser{Now: func() time.Time { return kit.Day(2025, time.June, 18) }}),
		WithClock(nil, func() string { return "dec-1" }),
		WithBreakers(resilience.NewRegistry([]resilience.Settings{resilience.DefaultLLM(), resilience.DefaultDB()}, resilience.WithRetry(fastRetry))),
	}
	return New(nil, cfg, append(base, opts...)...)
}

func TestRouteCompareScenario(t *testing.T) {
	audit := &fakeAudit{}
	models := &fakeModels{c: &fakeLLM{}}
	s := newSvc(t, Config{}, WithAudit(audit), WithModels(models))

	out, err := s.Route(context.Background(), domain.RouteInput{Question: compareQ})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if out.Task != router.TaskSQL || out.RouteSource != router.SourceDeterministic || out.Rule != "comparison" {
		t.Fatalf("decision = %+v", out.Decision)
	}
	if out.Intent != "equipment_comparison" || out.RawConfidence < 0.7 || out.Confidence != router.FloorExact {
		t.Fatalf("intent/confidence = %s %v %v", out.Intent, out.RawConfidence, out.Confidence)
	}
	if out.DecisionID != "dec-1" {
		t.Fatalf("decision id = %q", out.DecisionID)
	}
	kit.MustContain(t, out.SQL, "equipment_id IN ('BB-001', 'TIP-45')")
	kit.MustContain(t, out.SQL, "date BETWEEN '2024-04-01' AND '2024-06-30'")
	kit.MustContain(t, out.SQL, "shift IN ('A', 'B')")
	kit.MustContain(t, out.SQL, "tonnage > 800")

	if models.c.decides+models.c.sqls != 0 {
		t.Fatalf("deterministic path must not call the model")
	}
	if len(audit.recs) != 1 || audit.recs[0].Task != "sql" || audit.recs[0].DecisionID != "dec-1" {
		t.Fatalf("audit = %+v", audit.recs)
	}
	kit.MustContain(t, audit.recs[0].Params, `"equipment_ids":["BB-001","TIP-45"]`)
}

func TestRouteMissWithoutModelIsUnavailable(t *testing.T) {
	audit := &fakeAudit{}
	s := newSvc(t, Config{}, WithAudit(audit))
	_, err := s.Route(context.Background(), domain.RouteInput{Question: "anything about haul"})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if len(audit.recs) != 1 || audit.recs[0].Error == "" {
		t.Fatalf("failed decisions are audited too: %+v", audit.recs)
	}
}

func TestRouteMissFallsBackToModel(t *testing.T) {
	f := &fakeLLM{decision: llm.Decision{Task: "rag", Confidence: 0.66, Explanation: "vague, search documents"}}
	models := &fakeModels{c: f}
	s := newSvc(t, Config{}, WithModels(models))

	out, err := s.Route(context.Background(), domain.RouteInput{
		Question: "anything about haul",
		Settings: domain.Settings{LLMAPIKey: "sk-user"},
	})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if out.Task != router.TaskRAG || out.RouteSource != router.SourceLLM || out.Confidence != 0.66 {
		t.Fatalf("decision = %+v", out.Decision)
	}
	kit.MustContain(t, out.Reason, "vague")
	if len(models.keys) != 1 || models.keys[0] != "sk-user" {
		t.Fatalf("per-request key not used: %v", models.keys)
	}
}

func TestModelSQLWhenTemplateDeclines(t *testing.T) {
	f := &fakeLLM{sql: "SELECT COUNT(*) FROM equipment;"}
	s := newSvc(t, Config{}, WithModels(&fakeModels{c: f}))

	out := domain.RouteResult{Decision: router.Decision{Task: router.TaskSQL, Intent: "aggregation_query", RouteSource: router.SourceDeterministic}}
	in := domain.RouteInput{Question: "how much", Parameters: map[string][]string{"equipment": {"equipment_id"}}}
	if err := s.attachSQL(context.Background(), in, "how much", &out); err != nil {
		t.Fatalf("attachSQL: %v", err)
	}
	if out.SQL != "SELECT COUNT(*) FROM equipment" {
		t.Fatalf("sql = %q", out.SQL)
	}
	if out.RouteSource != router.SourceLLM || f.sqls != 1 {
		t.Fatalf("route_source = %s sqls = %d", out.RouteSource, f.sqls)
	}
	if f.lastSQL.Schema != "equipment(equipment_id)" {
		t.Fatalf("schema hint = %q", f.lastSQL.Schema)
	}
}

func TestModelSQLRejectedByGuard(t *testing.T) {
	f := &fakeLLM{sql: "SELECT * FROM equipment; DROP TABLE equipment"}
	s := newSvc(t, Config{}, WithModels(&fakeModels{c: f}))
	out := domain.RouteResult{Decision: router.Decision{Task: router.TaskSQL, Intent: "aggregation_query"}}
	err := s.attachSQL(context.Background(), domain.RouteInput{}, "how much", &out)
	if !perr.IsCode(err, perr.ErrorCodeValidation) || out.SQL != "" {
		t.Fatalf("err = %v sql = %q", err, out.SQL)
	}
}

func TestTemplateDeclineWithoutModelKeepsDecision(t *testing.T) {
	s := newSvc(t, Config{})
	out := domain.RouteResult{Decision: router.Decision{Task: router.TaskSQL, Intent: "aggregation_query", RouteSource: router.SourceDeterministic}}
	if err := s.attachSQL(context.Background(), domain.RouteInput{}, "how much", &out); err != nil {
		t.Fatalf("attachSQL: %v", err)
	}
	if out.SQL != "" || out.RouteSource != router.SourceDeterministic {
		t.Fatalf("out = %+v", out)
	}
}

func TestOpenCircuitStopsTheModel(t *testing.T) {
	f := &fakeLLM{err: perr.Unavailablef("llm 503")}
	reg := resilience.NewRegistry(
		[]resilience.Settings{{Name: resilience.LLM, Threshold: 1, Window: time.Minute, Cooldown: time.Minute, Timeout: time.Second}},
		resilience.WithRetry(fastRetry),
	)
	s := newSvc(t, Config{}, WithModels(&fakeModels{c: f}), WithBreakers(reg))

	_, err := s.Route(context.Background(), domain.RouteInput{Question: "anything about haul"})
	if !perr.IsCode(err, perr.ErrorCodeCircuitOpen) {
		t.Fatalf("err = %v", err)
	}
	if f.decides != 1 {
		t.Fatalf("decides = %d, want 1", f.decides)
	}
	_, err = s.Route(context.Background(), domain.RouteInput{Question: "anything about haul"})
	if !perr.IsCode(err, perr.ErrorCodeCircuitOpen) || f.decides != 1 {
		t.Fatalf("open circuit must not call the model: %v %d", err, f.decides)
	}
}

func TestEmptyQuestion(t *testing.T) {
	s := newSvc(t, Config{})
	if _, err := s.Route(context.Background(), domain.RouteInput{Question: " \u200b "}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Explain(context.Background(), domain.RouteInput{Question: ""}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestExplain(t *testing.T) {
	s := newSvc(t, Config{})
	out, err := s.Explain(context.Background(), domain.RouteInput{Question: compareQ})
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if out.Fallback || out.Decision == nil || out.Decision.Rule != "comparison" {
		t.Fatalf("explain = %+v", out)
	}
	if len(out.Candidates) == 0 || out.Candidates[0].Intent != "equipment_comparison" {
		t.Fatalf("candidates = %+v", out.Candidates)
	}
	last := out.Trace[len(out.Trace)-1]
	if !last.Fired || last.Rule != "comparison" {
		t.Fatalf("trace = %+v", out.Trace)
	}
	kit.MustContain(t, out.SQL, "GROUP BY equipment_id")

	miss, _ := s.Explain(context.Background(), domain.RouteInput{Question: "anything about haul"})
	if !miss.Fallback || miss.Decision != nil {
		t.Fatalf("miss = %+v", miss)
	}
}

func TestIntents(t *testing.T) {
	s := newSvc(t, Config{})
	got, _ := s.Intents(context.Background())
	if len(got) != len(s.catalog.Intents()) || got[0].Name == "" || len(got[0].Keywords) == 0 {
		t.Fatalf("intents = %+v", got)
	}
}

func TestQuery(t *testing.T) {
	exec := &fakeExec{}

	off := newSvc(t, Config{}, WithExecutor(exec))
	if _, err := off.Query(context.Background(), domain.RouteInput{Question: compareQ}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("disabled execution err = %v", err)
	}

	on := newSvc(t, Config{ExecuteSQL: true}, WithExecutor(exec))
	out, err := on.Query(context.Background(), domain.RouteInput{Question: compareQ})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if out.Result == nil || len(out.Result.Rows) != 1 || exec.sql != out.SQL {
		t.Fatalf("query = %+v", out)
	}

	rag, err := on.Query(context.Background(), domain.RouteInput{Question: "what is the safety procedure after a near miss"})
	if err != nil {
		t.Fatalf("Query rag: %v", err)
	}
	if rag.Task != router.TaskRAG || rag.Result != nil || exec.calls != 1 {
		t.Fatalf("rag decisions are not executed: %+v calls=%d", rag, exec.calls)
	}
}

func TestAuditFailureNeverFailsTheRequest(t *testing.T) {
	audit := &fakeAudit{err: perr.Unavailablef("clickhouse down")}
	s := newSvc(t, Config{}, WithAudit(audit))
	if _, err := s.Route(context.Background(), domain.RouteInput{Question: "status of EX-12"}); err != nil {
		t.Fatalf("Route: %v", err)
	}
}

type slowLLM struct{ fakeLLM }

func (s *slowLLM) Decide(ctx context.Context, _ llm.DecideRequest) (llm.Decision, error) {
	<-ctx.Done()
	return llm.Decision{}, ctx.Err()
}

type slowModels struct{ c *slowLLM }

func (m slowModels) For(string) (llm.Client, error) { return m.c, nil }
func (m slowModels) Configured() bool               { return true }

func TestRouteBudgetBecomesTimeout(t *testing.T) {
	s := newSvc(t, Config{Budgets: guardrails.Budgets{Route: 30 * time.Millisecond}}, WithModels(slowModels{c: &slowLLM{}}))

	start := time.Now()
	_, err := s.Route(context.Background(), domain.RouteInput{Question: "anything about haul"})
	if !perr.IsCode(err, perr.ErrorCodeTimeout) {
		t.Fatalf("err = %v (code %v)", err, perr.CodeOf(err))
	}
	if time.Since(start) > time.Second {
		t.Fatalf("budget not enforced: %v", time.Since(start))
	}
}
