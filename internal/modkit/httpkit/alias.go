// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "glolotto/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// List returns a 200 response with items and their count
func List[T any](items []T) Response { return phttp.List(items) }

// Page returns a 200 text/html response
func Page(html string) Response { return phttp.Page(html) }

// Call adapts a handler that takes no body
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.JSONHandler(fn) }

// Handle lets you directly adapt a Response-returning function if you prefer
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// Param returns a route parameter
func Param(r *http.Request, key string) string { return phttp.URLParam(r, key) }
