package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"fraudnotifier/internal/metrics"
)

const maxBodySize = 1 << 20 // 1MB

// Handler is the HTTP entry point for provider webhook deliveries.
type Handler struct {
	verifier   Verifier
	dispatcher *Dispatcher
	logger     *slog.Logger
}

// HandlerConfig configures the webhook handler.
type HandlerConfig struct {
	Verifier   Verifier
	Dispatcher *Dispatcher
	Logger     *slog.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		verifier:   cfg.Verifier,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
	}
}

type ackResponse struct {
	Received bool `json:"received"`
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// Keep the raw bytes: the signature covers them, not a re-encoded form.
	body, err := io.ReadAll(http.MaxBytesReader(rw, r.Body, maxBodySize))
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(rw, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), http.StatusBadRequest)
			return
		}
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	evt, err := h.verifier.Verify(body, r.Header.Get(SignatureHeader))
	if err != nil {
		metrics.WebhookRequests.WithLabelValues(metrics.OutcomeRejected).Inc()
		h.logger.Warn("webhook signature verification failed", "err", err, "remote", r.RemoteAddr)
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}
	metrics.WebhookRequests.WithLabelValues(metrics.OutcomeVerified).Inc()

	h.logger.Debug("webhook received", "event_id", evt.ID, "type", evt.Type, "body_len", len(body))

	classified, err := Classify(evt)
	if err != nil {
		// Verified but undecodable: acknowledge so the provider stops redelivering.
		h.logger.Error("cannot decode verified event", "event_id", evt.ID, "type", evt.Type, "err", err)
	} else {
		// The provider hanging up must not abort a notification in flight;
		// the outbound client timeout bounds it instead.
		h.dispatcher.Dispatch(context.WithoutCancel(r.Context()), classified)
	}

	writeJSON(rw, http.StatusOK, ackResponse{Received: true})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}
