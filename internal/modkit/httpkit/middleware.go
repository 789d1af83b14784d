package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"glolotto/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Origins     []string
	Timeout     time.Duration
	SlowRequest time.Duration
}

// CommonStack returns the baseline middleware slice for the read API
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest}),

		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}
