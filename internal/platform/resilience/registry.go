package resilience

import (
	"sort"
	"time"

	"opsroute/internal/platform/logger"
)

// Dependency names guarded by the service
const (
	LLM = "llm"
	DB  = "db"
)

// Registry owns one breaker per dependency; it is built once and read concurrently
type Registry struct {
	breakers map[string]*Breaker
	retry    RetryPolicy
}

// Option configures a Registry
type Option func(*registryCfg)

type registryCfg struct {
	now   func() time.Time
	hooks []StateHook
	retry RetryPolicy
}

// WithClock injects the clock used by every breaker
func WithClock(now func() time.Time) Option {
	return func(c *registryCfg) { c.now = now }
}

// WithStateHook adds a transition observer, e.g. a prometheus gauge
func WithStateHook(h StateHook) Option {
	return func(c *registryCfg) {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
}

// WithRetry sets the retry policy shared by guarded calls
func WithRetry(p RetryPolicy) Option {
	return func(c *registryCfg) { c.retry = p }
}

// NewRegistry builds breakers for the given settings; transitions are always logged at warn
func NewRegistry(settings []Settings, opts ...Option) *Registry {
	cfg := registryCfg{retry: DefaultRetry()}
	for _, o := range opts {
		o(&cfg)
	}
	log := logger.Named("resilience")
	hooks := append([]StateHook{func(name string, from, to State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker transition")
	}}, cfg.hooks...)
	fanout := func(name string, from, to State) {
		for _, h := range hooks {
			h(name, from, to)
		}
	}

	r := &Registry{breakers: make(map[string]*Breaker, len(settings)), retry: cfg.retry}
	for _, s := range settings {
		r.breakers[s.Name] = NewBreaker(s, cfg.now, fanout)
	}
	return r
}

// Get returns the breaker for name, or nil when none is configured
func (r *Registry) Get(name string) *Breaker {
	if r == nil {
		return nil
	}
	return r.breakers[name]
}

// Retry returns the shared retry policy
func (r *Registry) Retry() RetryPolicy {
	if r == nil {
		return DefaultRetry()
	}
	return r.retry
}

// Snapshots lists every breaker sorted by name
func (r *Registry) Snapshots() []Snapshot {
	if r == nil {
		return nil
	}
	out := make([]Snapshot, 0, len(r.breakers))
	for _, b := range r.breakers {
		out = append(out, b.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultLLM is the llm breaker: 5 failures in 60s opens for 30s, 30s per attempt
func DefaultLLM() Settings {
	return Settings{Name: LLM, Threshold: 5, Window: 60 * time.Second, Cooldown: 30 * time.Second, Timeout: 30 * time.Second}
}

// DefaultDB is the warehouse breaker: 10 failures in 30s opens for 15s, 15s per attempt
func DefaultDB() Settings {
	return Settings{Name: DB, Threshold: 10, Window: 30 * time.Second, Cooldown: 15 * time.Second, Timeout: 15 * time.Second}
}
