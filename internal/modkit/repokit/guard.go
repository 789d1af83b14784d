package repokit

import (
	"context"
	"fmt"
	"time"
)

type guarder interface {
	Guard(context.Context) error
}

// GuardTimeout bounds MustGuard when ctx has no deadline
var GuardTimeout = 5 * time.Second

// MustGuard runs a store Guard and panics on any error; binaries call it at startup
func MustGuard(ctx context.Context, st guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, GuardTimeout)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
