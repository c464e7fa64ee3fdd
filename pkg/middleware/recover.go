package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/cubic-dev/ui/pkg/prefetch"
)

// Recover creates hook middleware that turns a panicking hook into an
// error, so one broken component fails its request instead of the process.
// A nil logger uses slog.Default().
func Recover(logger *slog.Logger) prefetch.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return prefetch.MiddlewareFunc(func(ctx context.Context, call *prefetch.Call, next func(context.Context) error) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("data hook panicked",
					"component", call.Component,
					"route", call.Route.Endpoint.Route,
					"panic", r,
					"stack", string(debug.Stack()))
				err = fmt.Errorf("panic in %s: %v", call.Component, r)
			}
		}()
		return next(ctx)
	})
}
