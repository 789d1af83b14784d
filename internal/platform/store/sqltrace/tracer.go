// Package sqltrace carries query events from the store backends to a zerolog sink
package sqltrace

import (
	"context"
	"time"

	"glolotto/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one statement as seen by a backend adapter
type QueryEvent struct {
	Backend   string
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives query events
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that always prints SQL once enabled,
// independent of the process-wide root level
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "sql").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Debug()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if rid := logger.RunID(ctx); rid != "" {
		evt = evt.Str("run_id", rid)
	}
	evt.Str("backend", ev.Backend).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("sql query")
}

// Emit times a finished statement and hands it to t; nil t is a no-op.
// slowMs < 0 disables the slow flag
func Emit(ctx context.Context, t QueryTracer, backend string, slowMs int, sql string, args []any, start time.Time, err error) {
	if t == nil {
		return
	}
	elapsedUS := time.Since(start).Microseconds()
	t.OnQuery(ctx, QueryEvent{
		Backend:   backend,
		SQL:       sql,
		Args:      args,
		ElapsedUS: elapsedUS,
		Err:       err,
		Slow:      slowMs >= 0 && elapsedUS >= int64(slowMs)*1000,
	})
}

func compact(s string) string {
	out := make([]rune, 0, len(s))
	space := false
	for _, r := range s {
		if r == '\n' || r == '\t' || r == '\r' || r == ' ' {
			if !space {
				out = append(out, ' ')
				space = true
			}
			continue
		}
		space = false
		out = append(out, r)
	}
	return string(out)
}
