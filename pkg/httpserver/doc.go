// Package httpserver provides an HTTP server with graceful shutdown and
// probe handlers for liveness and readiness endpoints.
//
// Usage:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", slog.Any("error", err))
//	}
//
// Run blocks until the context is canceled or a SIGINT/SIGTERM arrives, then
// drains in-flight requests within the configured shutdown timeout.
package httpserver
