// Package http provides http transport for routing
package http

import (
	stdhttp "net/http"

	"opsroute/internal/modkit/httpkit"
	"opsroute/internal/services/route/domain"
)

// Register mounts the route endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// decide sql, rag or optimize
	httpkit.PostJSON[domain.RouteInput](r, "/", h.route)

	// candidates, params and router trace; never calls the llm
	httpkit.PostJSON[domain.RouteInput](r, "/explain", h.explain)

	// route then run sql decisions read-only
	httpkit.PostJSON[domain.RouteInput](r, "/query", h.query)

	httpkit.GetJSON(r, "/intents", h.intents)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /route Route routeQuestion
// @Summary Route a question
// @Tags Route
// @Accept json
// @Produce json
// @Param payload body domain.RouteInput true "Question"
// @Success 200 {object} domain.RouteResult "ok"
// @Failure 503 {object} httpkit.Envelope "circuit open or llm not configured"
// @Router /route [post]
func (h *handlers) route(r *stdhttp.Request, in domain.RouteInput) (any, error) {
	return h.svc.Route(r.Context(), in)
}

// swagger:route POST /route/explain Route routeExplain
// @Summary Explain a routing decision
// @Tags Route
// @Accept json
// @Produce json
// @Param payload body domain.RouteInput true "Question"
// @Success 200 {object} domain.ExplainResult "ok"
// @Router /route/explain [post]
func (h *handlers) explain(r *stdhttp.Request, in domain.RouteInput) (any, error) {
	return h.svc.Explain(r.Context(), in)
}

// swagger:route POST /route/query Route routeQuery
// @Summary Route and execute
// @Tags Route
// @Accept json
// @Produce json
// @Param payload body domain.RouteInput true "Question"
// @Success 200 {object} domain.QueryResult "ok"
// @Failure 503 {object} httpkit.Envelope "execution disabled"
// @Router /route/query [post]
func (h *handlers) query(r *stdhttp.Request, in domain.RouteInput) (any, error) {
	return h.svc.Query(r.Context(), in)
}

// swagger:route GET /route/intents Route routeIntents
// @Summary List intents
// @Tags Route
// @Produce json
// @Success 200 {array} domain.IntentInfo "ok"
// @Router /route/intents [get]
func (h *handlers) intents(r *stdhttp.Request) (any, error) {
	return h.svc.Intents(r.Context())
}
