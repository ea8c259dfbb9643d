package service

import (
	"context"
	"time"
)

// storeCtx bounds a single store call so a stuck database cannot hold a request forever.
func storeCtx(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
