// Package http provides the chi router facade, the server, and a consistent response envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "glolotto/internal/platform/errors"
	pnet "glolotto/internal/platform/net"
)

// Envelope is the standard response body for all JSON endpoints
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Kind       string         `json:"kind,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Count      *int           `json:"count,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HTML writes a rendered page with the given status
func HTML(w stdhttp.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	Handle(func(*stdhttp.Request) Response { return Error(err) })(w, r)
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	// Count is echoed in the envelope for list responses
	Count *int
	// HTML short-circuits the envelope and writes a page
	HTML   string
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	reqID := pnet.RequestID(r.Context())

	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		wr := perr.WireFrom(err)
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			Code:       wr.Code,
			Kind:       wr.Kind,
			Error:      wr.Message,
			Field:      wr.Field,
			RequestID:  reqID,
		})
		return
	}

	if resp.HTML != "" {
		HTML(w, status, resp.HTML)
		return
	}

	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Count:      resp.Count,
		Data:       resp.Body,
	})
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// List returns a 200 response carrying the item count
func List[T any](items []T) Response {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	return Response{Status: stdhttp.StatusOK, Body: items, Count: &n}
}

// Page returns a 200 text/html response
func Page(html string) Response { return Response{Status: stdhttp.StatusOK, HTML: html} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }
