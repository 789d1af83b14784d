package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	pnet "glolotto/internal/platform/net"
	"glolotto/internal/services/results/domain"
)

// DefaultMaxLine bounds one inbound message; raw documents can be large
const DefaultMaxLine = 16 << 20

// Reporter writes the html report of one draw and returns its path
type Reporter interface {
	Save(ctx context.Context, date string) (string, error)
}

// SchemaEnsurer creates the results tables when missing
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Deps are the ports the tools call into
type Deps struct {
	Ingest  domain.IngestPort
	Reads   domain.ReadPort
	Reports Reporter
	Schema  SchemaEnsurer
}

// Config holds the server identity and limits
type Config struct {
	Name    string
	Version string
	// MaxLine is the largest accepted message in bytes; 0 means DefaultMaxLine
	MaxLine int
}

// Server answers line-delimited JSON-RPC requests
type Server struct {
	deps   Deps
	cfg    Config
	tools  []tool
	byName map[string]tool
}

// New builds a Server; every dependency is required
func New(deps Deps, cfg Config) *Server {
	if deps.Ingest == nil || deps.Reads == nil || deps.Reports == nil || deps.Schema == nil {
		panic("rpc.Server requires Ingest, Reads, Reports and Schema")
	}
	if cfg.Name == "" {
		cfg.Name = "glolotto"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxLine <= 0 {
		cfg.MaxLine = DefaultMaxLine
	}

	s := &Server{deps: deps, cfg: cfg}
	s.tools = s.catalog()
	s.byName = make(map[string]tool, len(s.tools))
	for _, t := range s.tools {
		s.byName[t.Name] = t
	}
	return s
}

// Tools lists the tool descriptors in catalog order
func (s *Server) Tools() []Tool {
	out := make([]Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, t.Tool)
	}
	return out
}

// Serve reads one request per line from r and writes one response per line to w
// until r is exhausted or ctx is done. Blank lines are ignored; a line longer than
// MaxLine is answered with a parse error and skipped
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	log := logger.C(ctx)
	br := bufio.NewReaderSize(r, min(64<<10, s.cfg.MaxLine))
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	log.Info().Str("server", s.cfg.Name).Str("version", s.cfg.Version).Int("tools", len(s.tools)).Msg("tool server ready")
	for {
		raw, tooLong, err := readLine(br, s.cfg.MaxLine)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeTransport, "read request")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var resp Response
		ok := true
		switch line := bytes.TrimSpace(raw); {
		case tooLong:
			log.Warn().Int("max_bytes", s.cfg.MaxLine).Msg("message too long")
			resp = Response{
				JSONRPC: "2.0",
				Error:   &Error{Code: CodeParseError, Message: "Parse error", Data: fmt.Sprintf("message exceeds %d bytes", s.cfg.MaxLine)},
				ID:      nullID,
			}
		case len(line) == 0:
			continue
		default:
			resp, ok = s.Handle(ctx, line)
		}
		if !ok {
			continue
		}
		if err := enc.Encode(resp); err != nil {
			return perr.Wrap(err, perr.ErrorCodeTransport, "write response")
		}
	}
	log.Info().Msg("tool server input closed")
	return nil
}

// readLine returns the next line without its terminator. A line over max bytes is
// consumed to its end and reported as tooLong with no content
func readLine(br *bufio.Reader, max int) (line []byte, tooLong bool, err error) {
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !tooLong {
			if len(line)+len(chunk) > max {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !more {
			return line, tooLong, nil
		}
	}
}

// Handle answers one message. ok is false for notifications, which get no reply
func (s *Server) Handle(ctx context.Context, line []byte) (resp Response, ok bool) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("unparseable message")
		return Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: CodeParseError, Message: "Parse error", Data: err.Error()},
			ID:      nullID,
		}, true
	}
	if !req.HasID() || strings.HasPrefix(req.Method, "notifications/") {
		logger.C(ctx).Debug().Str("method", req.Method).Msg("notification")
		return Response{}, false
	}

	ctx = pnet.WithRequest(ctx, pnet.NewRequestID())
	switch req.Method {
	case "initialize":
		return result(req, s.initialize()), true
	case "tools/list":
		return result(req, map[string]any{"tools": s.Tools()}), true
	case "tools/call":
		return s.call(ctx, req), true
	}
	logger.C(ctx).Debug().Str("method", req.Method).Msg("method not found")
	return failure(req, CodeMethodNotFound, "Method not found: "+req.Method, nil), true
}

func (s *Server) initialize() map[string]any {
	return map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo":      map[string]any{"name": s.cfg.Name, "version": s.cfg.Version},
	}
}

type callParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (s *Server) call(ctx context.Context, req Request) Response {
	b := bytes.TrimSpace(req.Params)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return failure(req, CodeInvalidParams, "Missing params", nil)
	}
	var p callParams
	if err := json.Unmarshal(b, &p); err != nil {
		return failure(req, CodeInvalidParams, "Invalid params", err.Error())
	}
	if p.Name == "" {
		return failure(req, CodeInvalidParams, "Missing tool name", nil)
	}
	t, ok := s.byName[p.Name]
	if !ok {
		return failure(req, CodeInternalError, "Tool execution error: Unknown tool: "+p.Name, nil)
	}

	log := logger.C(ctx).With().Str("tool", p.Name).Logger()
	start := time.Now()
	out, err := s.run(ctx, t, p.Arguments)
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("tool failed")
		return toolFailure(req, err)
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("tool done")

	if _, set := out["success"]; !set {
		out["success"] = true
	}
	text, err := json.Marshal(out)
	if err != nil {
		return failure(req, CodeInternalError, "Tool execution error: "+err.Error(), nil)
	}
	return result(req, ToolResult{Content: []TextContent{{Type: "text", Text: string(text)}}})
}

// run calls the tool, turning a panic into an ErrorCodePanic error
func (s *Server) run(ctx context.Context, t tool, args json.RawMessage) (out payload, err error) {
	defer func() {
		if v := recover(); v != nil {
			logger.C(ctx).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Str("tool", t.Name).
				Msg("panic recovered")
			out, err = nil, perr.PanicErrf("panic in %s", t.Name)
		}
	}()
	return t.run(ctx, args)
}
