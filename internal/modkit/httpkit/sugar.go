package httpkit

import "net/http"

// Get registers a body-less handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// GetPage registers a handler rendering a full page; errors still use the JSON envelope
func GetPage(r Router, path string, h func(*http.Request) (string, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		page, err := h(req)
		if err != nil {
			return Error(err)
		}
		return Page(page)
	}))
}
