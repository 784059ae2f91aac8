package metering

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/platefulapp/plateful/pkg/entitlement"
	"github.com/platefulapp/plateful/pkg/plan"
	"github.com/platefulapp/plateful/pkg/subscription"
)

// UserIDResolver extracts the authenticated user from a request.
// Authentication itself lives upstream; the default resolver trusts the
// X-User-ID header a gateway sets after verifying the session.
type UserIDResolver func(r *http.Request) (uuid.UUID, error)

var errNoUser = errors.New("missing user identity")

func headerUserID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, errNoUser
	}
	return uuid.Parse(raw)
}

// Router mounts the module's HTTP boundary.
//
//	GET  /usage            usage-summary projection for display
//	GET  /check/{feature}  read-only feature access check
//	POST /webhooks/billing billing provider webhook intake
func (m *Module) Router(resolve UserIDResolver) chi.Router {
	if resolve == nil {
		resolve = headerUserID
	}

	r := chi.NewRouter()

	r.Get("/usage", func(w http.ResponseWriter, req *http.Request) {
		userID, err := resolve(req)
		if err != nil {
			m.respondError(w, req, http.StatusUnauthorized, err)
			return
		}

		summary, err := m.Gate.UsageSummary(req.Context(), userID)
		if err != nil {
			m.respondError(w, req, http.StatusInternalServerError, err)
			return
		}
		m.respond(w, req, http.StatusOK, summary)
	})

	r.Get("/check/{feature}", func(w http.ResponseWriter, req *http.Request) {
		userID, err := resolve(req)
		if err != nil {
			m.respondError(w, req, http.StatusUnauthorized, err)
			return
		}

		feature := plan.Feature(chi.URLParam(req, "feature"))
		decision, err := m.Gate.Check(req.Context(), userID, feature)
		if err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, plan.ErrUnknownFeature):
				status = http.StatusNotFound
			case errors.Is(err, entitlement.ErrFeatureNotMetered):
				// Display-only budgets exist in the plan table but are not
				// checkable; the request is malformed, not a server fault.
				status = http.StatusBadRequest
			}
			m.respondError(w, req, status, err)
			return
		}
		m.respond(w, req, http.StatusOK, decision)
	})

	r.Post("/webhooks/billing", func(w http.ResponseWriter, req *http.Request) {
		payload, err := io.ReadAll(req.Body)
		if err != nil {
			m.respondError(w, req, http.StatusBadRequest, err)
			return
		}

		signature := req.Header.Get("Paddle-Signature")
		if err := m.Subscriptions.HandleWebhook(req.Context(), payload, signature); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, subscription.ErrWebhookVerificationFailed) {
				status = http.StatusUnauthorized
			}
			m.respondError(w, req, status, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func (m *Module) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		m.log.ErrorContext(r.Context(), "failed to encode response", slog.Any("error", err))
	}
}

func (m *Module) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		m.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	m.respond(w, r, status, map[string]string{"error": http.StatusText(status)})
}
