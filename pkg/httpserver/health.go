package httpserver

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthHandler serves liveness and readiness probes.
//
// With no probe functions it answers 200 "ALIVE" and suits a liveness
// endpoint. With probes it runs each against the request context and answers
// 200 "READY", or 503 "NOT_READY" on the first failure.
func HealthHandler(log *slog.Logger, probes ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ALIVE"))
			return
		}

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness probe failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	}
}
