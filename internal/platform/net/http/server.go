package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// ShutdownGrace bounds how long Run waits for in-flight requests once ctx is done
var ShutdownGrace = 10 * time.Second

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer creates an http server on addr (":4000" when empty)
// opts receive the *chi.Mux so callers can mount routes/mw
func NewServer(addr string, opts ...func(*chi.Mux)) *Server {
	if addr == "" {
		addr = ":4000"
	}
	m := chi.NewRouter()
	m.NotFound(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		RespondError(w, r, perr.NotFoundf("no route for %s %s", r.Method, r.URL.Path))
	})
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the configured listening address
func (s *Server) Addr() string { return s.addr }

// Run listens and serves until ctx is cancelled or the listener fails.
// Cancellation triggers a graceful shutdown bounded by ShutdownGrace
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
		defer cancel()
		log.Info().Msg("http shutting down")
		if err := s.srv.Shutdown(sctx); err != nil {
			return err
		}
		return nil
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
