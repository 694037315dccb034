// Package http provides http transport for decision samples
package http

import (
	stdhttp "net/http"

	"opsroute/internal/modkit/httpkit"
	"opsroute/internal/services/api/samples/domain"
	svc "opsroute/internal/services/api/samples/service"
)

// Register mounts samples endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.SamplesInput](r, "/decisions", h.recent)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /samples/decisions Samples samplesRecent
// @Summary Recent audited decisions for review
// @Tags Samples
// @Accept json
// @Produce json
// @Param payload body domain.SamplesInput true "Query"
// @Success 200 {array} domain.Sample "ok"
// @Router /samples/decisions [post]
func (h *handlers) recent(r *stdhttp.Request, in domain.SamplesInput) (any, error) {
	return h.svc.Recent(r.Context(), in)
}
