package httpkit

import "net/http"

// MountUnder mounts a subrouter at prefix and applies per-module middlewares
// a nil mount leaves the prefix empty
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		if mount != nil {
			mount(sub)
		}
	})
}
