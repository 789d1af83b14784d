package swaggerkit

import (
	"encoding/json"
	"net/http"

	"glolotto/internal/platform/config"
	perr "glolotto/internal/platform/errors"
	"glolotto/internal/platform/logger"
	phttp "glolotto/internal/platform/net/http"

	docs "glolotto/internal/services/api/docs"
)

// docReader is a seam so tests can feed a broken document
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON renders the embedded document and fills in what every route shares
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			logger.C(r.Context()).Error().Err(err).Msg("openapi document unreadable")
			phttp.RespondError(w, r, perr.Wrapf(err, perr.ErrorCodeUnknown, "spec parse error"))
			return
		}

		ensureServers(spec, "/api/v1")

		cfg := config.New().Prefix("LOTTO_API_")
		if v := cfg.MayString("DOCS_TITLE_SUFFIX", ""); v != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + v
				}
			}
		}

		addDefaultError(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers sets the base url the UI prefixes every path with
func ensureServers(spec map[string]any, url string) {
	if _, ok := spec["openapi"].(string); !ok {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{
			map[string]any{"url": url},
		}
	}
}

// addDefaultError gives every operation a 500 response if it has none
func addDefaultError(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	errResp := map[string]any{
		"description": "Internal Server Error",
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				"example": map[string]any{
					"status_code": 500,
					"status":      "Internal Server Error",
					"code":        int(perr.ErrorCodeStorage),
					"kind":        "storage",
					"error":       "query draws",
					"request_id":  "579f33bf50b1/abc-000001",
				},
			},
		},
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			if _, exists := responses["500"]; !exists {
				responses["500"] = errResp
			}
		}
	}
}
