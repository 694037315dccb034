// Package http provides http transport for decision stats
package http

import (
	stdhttp "net/http"

	"opsroute/internal/modkit/httpkit"
	"opsroute/internal/services/api/stats/domain"
	svc "opsroute/internal/services/api/stats/service"
)

// Register mounts stats endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// buckets by day, task and source
	httpkit.PostJSON[domain.DecisionsInput](r, "/decisions", h.decisions)

	// busiest intents in window
	httpkit.PostJSON[domain.IntentsInput](r, "/intents", h.intents)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /stats/decisions Stats statsDecisions
// @Summary Audited decisions by day, task and source
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.DecisionsInput true "Query"
// @Success 200 {array} domain.DecisionsRow "ok"
// @Router /stats/decisions [post]
func (h *handlers) decisions(r *stdhttp.Request, in domain.DecisionsInput) (any, error) {
	return h.svc.Decisions(r.Context(), in)
}

// swagger:route POST /stats/intents Stats statsIntents
// @Summary Busiest intents and their model share
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body domain.IntentsInput true "Query"
// @Success 200 {array} domain.IntentRow "ok"
// @Router /stats/intents [post]
func (h *handlers) intents(r *stdhttp.Request, in domain.IntentsInput) (any, error) {
	return h.svc.Intents(r.Context(), in)
}
