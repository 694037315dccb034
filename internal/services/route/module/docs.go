package module

import (
	"sync"

	"opsroute/internal/modkit/swaggerkit"
)

var docsOnce sync.Once

// registerDocs adds the route budget timeout to every /route operation in the served spec
func registerDocs() {
	docsOnce.Do(func() {
		swaggerkit.Register(func(spec map[string]any) {
			swaggerkit.AddDefaultResponse(spec, "504", swaggerkit.ErrorResponse("Gateway Timeout", map[string]any{
				"status_code": 504,
				"status":      "Gateway Timeout",
				"code_name":   "timeout",
				"error":       "route budget of 1m30s exceeded",
				"op":          "route.Route",
			}), "post", "/route")
		})
	})
}
