package httpkit

import (
	"net/http"
	"time"

	"opsroute/internal/platform/net/middleware"

	"github.com/prometheus/client_golang/prometheus"
)

// StackOptions tunes CommonStack; zero values pick the defaults
type StackOptions struct {
	Timeout        time.Duration
	SlowRequest    time.Duration
	AllowedOrigins []string
	Duration       *prometheus.HistogramVec
	// MaxInFlight caps concurrent requests; 0 disables throttling
	MaxInFlight int
}

// CommonStack returns the baseline middleware slice for the root router
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = 2 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		middleware.RecoverJSON,
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest, Duration: o.Duration}),
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.AllowedOrigins}),
		middleware.Heartbeat("/health"),
		middleware.Timeout(o.Timeout),
	}
	if o.MaxInFlight > 0 {
		stack = append(stack, middleware.Throttle(o.MaxInFlight, o.MaxInFlight*2, 5*time.Second))
	}
	return stack
}
