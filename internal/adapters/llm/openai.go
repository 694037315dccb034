package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"opsroute/internal/core/normalize"
	"opsroute/internal/platform/config"
	perr "opsroute/internal/platform/errors"
	"opsroute/internal/platform/logger"
	"opsroute/internal/platform/net/http/bind"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5.0
	defaultBurst   = 10
)

// Options configures an OpenAI-compatible client
type Options struct {
	APIKey      string
	BaseURL     string // empty means api.openai.com
	Model       string
	Timeout     time.Duration
	RPS         float64 // sustained calls per second; <= 0 disables limiting
	Burst       int
	Temperature float32
}

// OptionsFromConfig reads CORE_LLM_*
func OptionsFromConfig(root config.Conf) Options {
	c := root.Prefix("CORE_LLM_")
	return Options{
		APIKey:      c.MayString("API_KEY", ""),
		BaseURL:     c.MayString("BASE_URL", ""),
		Model:       c.MayString("MODEL", defaultModel),
		Timeout:     c.MayDuration("TIMEOUT", defaultTimeout),
		RPS:         c.MayFloat64("RPS", defaultRPS),
		Burst:       c.MayInt("BURST", defaultBurst),
		Temperature: float32(c.MayFloat64("TEMPERATURE", 0)),
	}
}

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	return o
}

// OpenAI implements Client over go-openai chat completions
type OpenAI struct {
	api     *openai.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
}

// NewOpenAI builds a client for opts.APIKey; limiter may be shared across clients and nil builds one from opts
func NewOpenAI(opts Options, limiter *rate.Limiter) *OpenAI {
	opts = opts.withDefaults()
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	if limiter == nil {
		limiter = newLimiter(opts)
	}
	return &OpenAI{
		api:     openai.NewClientWithConfig(cfg),
		opts:    opts,
		limiter: limiter,
		log:     *logger.Named("llm"),
	}
}

func newLimiter(o Options) *rate.Limiter {
	if o.RPS <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(o.RPS), max(o.Burst, 1))
}

// Decide asks for a task in JSON mode and validates the reply
func (c *OpenAI) Decide(ctx context.Context, req DecideRequest) (Decision, error) {
	const op = "llm.Decide"
	out, err := c.complete(ctx, op, decideMessages(req), true)
	if err != nil {
		return Decision{}, err
	}
	var d Decision
	if err := json.Unmarshal([]byte(normalize.Unfence(out)), &d); err != nil {
		return Decision{}, perr.WithOp(perr.Wrap(err, perr.ErrorCodeUpstream, "model reply is not a decision object"), op)
	}
	d.Task = strings.ToLower(strings.TrimSpace(d.Task))
	if err := bind.Struct(d); err != nil {
		return Decision{}, perr.WithOp(err, op)
	}
	return d, nil
}

// GenerateSQL returns the model's statement with any markdown fence removed; callers still vet it
func (c *OpenAI) GenerateSQL(ctx context.Context, req SQLRequest) (string, error) {
	const op = "llm.GenerateSQL"
	out, err := c.complete(ctx, op, sqlMessages(req), false)
	if err != nil {
		return "", err
	}
	sql := strings.TrimSpace(normalize.Unfence(out))
	if sql == "" {
		return "", perr.WithOp(perr.Upstreamf("model returned no sql"), op)
	}
	return sql, nil
}

func (c *OpenAI) complete(ctx context.Context, op string, msgs []openai.ChatCompletionMessage, jsonMode bool) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", perr.WithOp(ctx.Err(), op)
		}
		return "", perr.WithOp(perr.Wrap(err, perr.ErrorCodeTooManyRequests, "llm rate limit"), op)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Messages:    msgs,
		Temperature: c.opts.Temperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	lat := time.Since(start)
	if err != nil {
		c.log.Debug().Err(err).Str("op", op).Dur("latency", lat).Msg("llm call failed")
		return "", perr.WithOp(classify(ctx, err), op)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", perr.WithOp(perr.Upstreamf("model returned no choices"), op)
	}
	c.log.Debug().
		Str("op", op).
		Str("model", c.opts.Model).
		Dur("latency", lat).
		Int("tokens", resp.Usage.TotalTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("llm call")
	return resp.Choices[0].Message.Content, nil
}
