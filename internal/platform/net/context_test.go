package net_test

import (
	"context"
	"testing"

	pnet "glolotto/internal/platform/net"

	"github.com/google/uuid"
)

func TestWithRequest_AndRequestID(t *testing.T) {
	t.Parallel()
	base := context.Background()

	ctx := pnet.WithRequest(base, "req-123")
	if got := pnet.RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID got %q want req-123", got)
	}
	if pnet.WithRequest(base, "") != base {
		t.Fatalf("empty id should leave ctx untouched")
	}
	if got := pnet.RequestID(base); got != "" {
		t.Fatalf("RequestID on bare ctx = %q", got)
	}
}

func TestNewRequestID_IsUUID(t *testing.T) {
	t.Parallel()

	a, b := pnet.NewRequestID(), pnet.NewRequestID()
	if a == b {
		t.Fatalf("ids should differ")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("not a uuid: %q", a)
	}
}
