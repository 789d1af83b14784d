package repokit

import (
	"context"
	"errors"
	"testing"

	kit "glolotto/internal/platform/testkit"
)

type fakeQ struct{ Queryer }

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

type guardFunc func(context.Context) error

func (f guardFunc) Guard(ctx context.Context) error { return f(ctx) }

func TestBindFunc_AndMustBind(t *testing.T) {
	t.Parallel()

	b := BindFunc[string](func(q Queryer) string { return "bound" })
	if got := b.Bind(nil); got != "bound" {
		t.Fatalf("Bind = %q", got)
	}
	kit.MustPanic(t, func() { _ = MustBind[string](b, nil) })
	if got := MustBind[string](b, fakeQ{}); got != "bound" {
		t.Fatalf("MustBind = %q", got)
	}
}

func TestMustGuard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kit.MustNotPanic(t, func() { MustGuard(ctx, guard{}) })
	kit.MustPanic(t, func() { MustGuard(ctx, guard{err: errors.New("x")}) })
}

func TestMustGuard_AddsDeadline(t *testing.T) {
	t.Parallel()

	var saw bool
	MustGuard(context.Background(), guardFunc(func(ctx context.Context) error {
		_, saw = ctx.Deadline()
		return nil
	}))
	if !saw {
		t.Fatal("guard ran without a deadline")
	}
}
