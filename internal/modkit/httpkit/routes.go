package httpkit

import "net/http"

// MountUnder mounts a subrouter at a module prefix such as "/results" and applies
// the module's own middlewares before mount registers its routes
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
