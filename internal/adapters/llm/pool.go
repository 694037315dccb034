package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	perr "opsroute/internal/platform/errors"

	"golang.org/x/time/rate"
)

// maxClients bounds the per-key cache; a full cache is reset rather than grown
const maxClients = 64

// Pool hands out one client per API key. Requests may carry their own key; the configured key is the default.
// All clients share one rate limiter
type Pool struct {
	opts    Options
	limiter *rate.Limiter
	mu      sync.Mutex
	clients map[string]Client
	build   func(Options, *rate.Limiter) Client
}

// NewPool builds a pool over go-openai clients
func NewPool(opts Options) *Pool {
	opts = opts.withDefaults()
	return &Pool{
		opts:    opts,
		limiter: newLimiter(opts),
		clients: map[string]Client{},
		build:   func(o Options, l *rate.Limiter) Client { return NewOpenAI(o, l) },
	}
}

// Configured reports whether a default key exists
func (p *Pool) Configured() bool { return p != nil && p.opts.APIKey != "" }

// Model returns the configured model name
func (p *Pool) Model() string { return p.opts.Model }

// For returns the client for apiKey, falling back to the configured key.
// With neither it returns an Unavailable error: there is no model to fall back to
func (p *Pool) For(apiKey string) (Client, error) {
	if p == nil {
		return nil, perr.Unavailablef("llm not configured")
	}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = p.opts.APIKey
	}
	if key == "" {
		return nil, perr.Unavailablef("llm not configured")
	}
	h := hash(key)

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[h]; ok {
		return c, nil
	}
	if len(p.clients) >= maxClients {
		p.clients = map[string]Client{}
	}
	o := p.opts
	o.APIKey = key
	c := p.build(o, p.limiter)
	p.clients[h] = c
	return c, nil
}

func hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
