// Package net carries request scoped values shared by the HTTP API and the tool server
package net

import (
	"context"

	"glolotto/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// NewRequestID returns a fresh random request id
func NewRequestID() string { return uuid.NewString() }

// WithRequest stores reqID where both chi (GetReqID) and the logger (C) find it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	return logger.WithRequest(ctx, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }
