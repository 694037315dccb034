// Package service is the routing orchestrator: normalize, extract, classify, route,
// then attach SQL from a template or the model. The model is only reached through the llm breaker
package service

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"time"

	"opsroute/internal/adapters/llm"
	"opsroute/internal/core/dates"
	"opsroute/internal/core/intent"
	"opsroute/internal/core/normalize"
	"opsroute/internal/core/params"
	"opsroute/internal/core/router"
	"opsroute/internal/core/sqlbuild"
	"opsroute/internal/core/sqlguard"
	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/logger"
	"opsroute/internal/platform/resilience"
	"opsroute/internal/platform/store"
	"opsroute/internal/services/route/domain"
	"opsroute/internal/services/route/guardrails"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const auditTimeout = 2 * time.Second

// Service defines the route service contract
type Service interface {
	domain.ServicePort
}

// Config toggles optional behavior
type Config struct {
	ExecuteSQL bool
	Budgets    guardrails.Budgets
}

// Svc implements the route service
type Svc struct {
	cfg        Config
	catalog    *intent.Catalog
	extractor  *params.Extractor
	classifier *intent.Classifier
	router     *router.Router

	models   domain.Models
	breakers *resilience.Registry
	exec     domain.Executor
	audit    domain.AuditSink

	m     *metrics
	now   func() time.Time
	newID func() string
}

// Option configures a Svc
type Option func(*Svc)

// WithModels sets the llm client source; without it every router miss is Unavailable
func WithModels(m domain.Models) Option { return func(s *Svc) { s.models = m } }

// WithBreakers sets the breaker registry guarding llm and db calls
func WithBreakers(r *resilience.Registry) Option { return func(s *Svc) { s.breakers = r } }

// WithExecutor sets the read-only warehouse executor used by Query
func WithExecutor(e domain.Executor) Option { return func(s *Svc) { s.exec = e } }

// WithAudit sets the decision audit sink
func WithAudit(a domain.AuditSink) Option { return func(s *Svc) { s.audit = a } }

// WithMetrics registers the service collectors on reg
func WithMetrics(reg prometheus.Registerer) Option { return func(s *Svc) { s.m = newMetrics(reg) } }

// WithDates swaps the date parser, mostly to pin "today" in tests
func WithDates(p *dates.Parser) Option {
	return func(s *Svc) { s.extractor = params.NewExtractor(p) }
}

// WithClock swaps the clock and id source
func WithClock(now func() time.Time, newID func() string) Option {
	return func(s *Svc) {
		if now != nil {
			s.now = now
		}
		if newID != nil {
			s.newID = newID
		}
	}
}

// New builds the orchestrator over cat; a nil catalog loads the embedded one
func New(cat *intent.Catalog, cfg Config, opts ...Option) *Svc {
	if cat == nil {
		cat = intent.MustLoad()
	}
	s := &Svc{
		cfg:        cfg,
		catalog:    cat,
		extractor:  params.NewExtractor(nil),
		classifier: intent.NewClassifier(cat),
		router:     router.New(router.DefaultRules(cat.SpecificAggregations())),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	if s.m == nil {
		s.m = newMetrics(nil)
	}
	return s
}

// Route decides how to answer one question
func (s *Svc) Route(ctx context.Context, in domain.RouteInput) (domain.RouteResult, error) {
	start := s.now()
	id := s.newID()
	ctx = logger.WithDecision(ctx, id)

	rctx, cancel := guardrails.ForRoute(ctx, s.cfg.Budgets)
	out, err := s.route(rctx, in)
	if err != nil && ctx.Err() == nil && stderrs.Is(rctx.Err(), context.DeadlineExceeded) {
		err = perr.WithOp(perr.Wrapf(err, perr.ErrorCodeTimeout, "route budget of %s exceeded", s.cfg.Budgets.Route), "route.Route")
	}
	cancel()
	out.DecisionID = id
	out.LatencyMS = s.now().Sub(start).Milliseconds()
	s.record(ctx, in.Question, out, err)

	log := logger.C(ctx)
	if err != nil {
		log.Warn().Err(err).Str("code", perr.CodeOf(err).String()).Msg("route failed")
		return domain.RouteResult{}, err
	}
	s.m.decisions.WithLabelValues(string(out.Task), out.RouteSource).Inc()
	s.m.latency.WithLabelValues(out.RouteSource).Observe(s.now().Sub(start).Seconds())
	log.Info().
		Str("task", string(out.Task)).
		Str("source", out.RouteSource).
		Str("intent", out.Intent).
		Str("rule", out.Rule).
		Float64("raw_confidence", out.RawConfidence).
		Float64("confidence", out.Confidence).
		Bool("sql", out.SQL != "").
		Int64("latency_ms", out.LatencyMS).
		Msg("route decision")
	return out, nil
}

func (s *Svc) route(ctx context.Context, in domain.RouteInput) (domain.RouteResult, error) {
	q := normalize.Question(in.Question)
	if q == "" {
		return domain.RouteResult{}, perr.WithField(perr.Validationf("question is empty"), "question")
	}
	bag := s.extractor.Extract(q)
	res, ok := s.classifier.Classify(q, bag)
	if !ok {
		res = intent.Result{Params: bag}
	}

	if ok {
		if d, routed := s.router.Route(q, res); routed {
			out := domain.RouteResult{Decision: d}
			if d.Task == router.TaskSQL {
				if err := s.attachSQL(ctx, in, q, &out); err != nil {
					return domain.RouteResult{}, err
				}
			}
			return out, nil
		}
	}
	return s.fallback(ctx, in, q, res)
}

// fallback asks the model for a task when no rule fired
func (s *Svc) fallback(ctx context.Context, in domain.RouteInput, q string, res intent.Result) (domain.RouteResult, error) {
	c, err := s.client(in)
	if err != nil {
		return domain.RouteResult{}, perr.WithOp(err, "route.fallback")
	}
	d, err := resilience.Guard(ctx, s.breakers, resilience.LLM, "llm.decide", func(ctx context.Context) (llm.Decision, error) {
		return c.Decide(ctx, llm.DecideRequest{
			Question: q,
			Intent:   res.Intent,
			Params:   res.Params,
			Schema:   in.SchemaHint(),
			History:  in.History,
		})
	})
	s.countLLM("decide", err)
	if err != nil {
		return domain.RouteResult{}, err
	}

	name := res.Intent
	if name == "" {
		name = d.Intent
	}
	out := domain.RouteResult{Decision: router.Decision{
		Task:          router.Task(d.Task),
		Confidence:    d.Confidence,
		RawConfidence: res.Confidence,
		Reason:        "model: " + d.Explanation,
		RouteSource:   router.SourceLLM,
		Intent:        name,
		Params:        res.Params,
	}}
	if out.Task == router.TaskSQL {
		if err := s.attachSQL(ctx, in, q, &out); err != nil {
			return domain.RouteResult{}, err
		}
	}
	return out, nil
}

// attachSQL prefers the template; when it declines the model writes the statement and the
// decision is credited to the model. Without a model the decision ships without SQL
func (s *Svc) attachSQL(ctx context.Context, in domain.RouteInput, q string, out *domain.RouteResult) error {
	if sql, ok := sqlbuild.Build(out.Intent, out.Params, q); ok {
		out.SQL = sql
		s.m.sqlBuilt.WithLabelValues("template").Inc()
		return nil
	}
	c, err := s.client(in)
	if err != nil {
		logger.C(ctx).Debug().Str("intent", out.Intent).Msg("no template and no model; decision without sql")
		return nil
	}
	raw, err := resilience.Guard(ctx, s.breakers, resilience.LLM, "llm.generate_sql", func(ctx context.Context) (string, error) {
		return c.GenerateSQL(ctx, llm.SQLRequest{
			Question: q,
			Intent:   out.Intent,
			Params:   out.Params,
			Schema:   in.SchemaHint(),
			History:  in.History,
		})
	})
	s.countLLM("generate_sql", err)
	if err != nil {
		return err
	}
	sql, err := sqlguard.Validate(raw)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("sql", raw).Msg("model sql rejected")
		return err
	}
	out.SQL = sql
	out.RouteSource = router.SourceLLM
	out.Reason += "; sql written by model"
	s.m.sqlBuilt.WithLabelValues("model").Inc()
	return nil
}

func (s *Svc) client(in domain.RouteInput) (llm.Client, error) {
	if s.models == nil {
		return nil, perr.Unavailablef("llm not configured")
	}
	return s.models.For(in.Settings.LLMAPIKey)
}

func (s *Svc) countLLM(op string, err error) {
	code := "ok"
	if err != nil {
		code = perr.CodeOf(err).String()
	}
	s.m.llmCalls.WithLabelValues(op, code).Inc()
}

// record writes the audit row; audit failures are logged and never surface
func (s *Svc) record(ctx context.Context, question string, out domain.RouteResult, err error) {
	if s.audit == nil {
		return
	}
	p, _ := json.Marshal(out.Params)
	rec := domain.AuditRecord{
		DecisionID:    out.DecisionID,
		At:            s.now().UTC(),
		Question:      question,
		Intent:        out.Intent,
		Task:          string(out.Task),
		RouteSource:   out.RouteSource,
		Rule:          out.Rule,
		Confidence:    out.Confidence,
		RawConfidence: out.RawConfidence,
		Params:        string(p),
		SQL:           out.SQL,
		LatencyMS:     out.LatencyMS,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if aerr := s.audit.Record(actx, rec); aerr != nil {
		logger.C(ctx).Warn().Err(aerr).Msg("decision audit failed")
	}
}

// Explain runs the deterministic pipeline and reports every step
func (s *Svc) Explain(_ context.Context, in domain.RouteInput) (domain.ExplainResult, error) {
	q := normalize.Question(in.Question)
	if q == "" {
		return domain.ExplainResult{}, perr.WithField(perr.Validationf("question is empty"), "question")
	}
	bag := s.extractor.Extract(q)
	out := domain.ExplainResult{
		Question:   in.Question,
		Normalized: q,
		Params:     bag,
		Candidates: s.classifier.Explain(q, bag),
	}
	res, ok := s.classifier.Classify(q, bag)
	if !ok {
		out.Fallback = true
		return out, nil
	}
	d, trace, routed := s.router.Evaluate(res)
	out.Trace = trace
	if !routed {
		out.Fallback = true
		return out, nil
	}
	out.Decision = &d
	if d.Task == router.TaskSQL {
		out.SQL, _ = sqlbuild.Build(d.Intent, d.Params, q)
	}
	return out, nil
}

// Intents lists the catalog in definition order
func (s *Svc) Intents(context.Context) ([]domain.IntentInfo, error) {
	defs := s.catalog.Intents()
	out := make([]domain.IntentInfo, 0, len(defs))
	for _, d := range defs {
		kw := make([]string, 0, len(d.Keywords))
		for _, k := range d.Keywords {
			kw = append(kw, k.Text)
		}
		out = append(out, domain.IntentInfo{Name: d.Name, Tier: d.Tier, Keywords: kw})
	}
	return out, nil
}

// Query routes the question and runs the SQL of a sql decision through the db breaker
func (s *Svc) Query(ctx context.Context, in domain.RouteInput) (domain.QueryResult, error) {
	r, err := s.Route(ctx, in)
	if err != nil {
		return domain.QueryResult{}, err
	}
	out := domain.QueryResult{RouteResult: r}
	if r.Task != router.TaskSQL || r.SQL == "" {
		return out, nil
	}
	if !s.cfg.ExecuteSQL || s.exec == nil {
		return domain.QueryResult{}, perr.WithOp(perr.Unavailablef("sql execution is disabled"), "route.Query")
	}
	ctx, cancel := guardrails.ForQuery(logger.WithDecision(ctx, r.DecisionID), s.cfg.Budgets)
	defer cancel()
	rs, err := resilience.Guard(ctx, s.breakers, resilience.DB, "db.query", func(ctx context.Context) (store.ResultSet, error) {
		return s.exec.Query(ctx, r.SQL)
	})
	if err != nil {
		return domain.QueryResult{}, err
	}
	out.Result = &rs
	return out, nil
}
