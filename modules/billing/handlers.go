package billing

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/clientflow/clientflow/pkg/logger"
	"github.com/clientflow/clientflow/pkg/subscription"
)

// handleWebhook answers in the plain-text format the provider's dashboard shows.
func (m *Module) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Webhook Error: payload too large", http.StatusBadRequest)
			return
		}
		http.Error(w, "Webhook Error: unreadable body", http.StatusBadRequest)
		return
	}

	outcome, err := m.webhook.Handle(r.Context(), body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if subscription.IsVerificationError(err) || errors.Is(err, subscription.ErrInvalidPayload) {
			m.log.WarnContext(r.Context(), "webhook rejected", logger.Error(err))
			http.Error(w, "Webhook Error: "+classify(err).Message, http.StatusBadRequest)
			return
		}
		m.log.ErrorContext(r.Context(), "webhook processing failed", logger.Error(err))
		http.Error(w, "update failed", http.StatusInternalServerError)
		return
	}

	m.log.DebugContext(r.Context(), "webhook handled", logger.Outcome(string(outcome)))
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type checkoutRequest struct {
	PriceID      string `json:"priceId"`
	PriceIDSnake string `json:"price_id"`
	SuccessURL   string `json:"successUrl"`
	CancelURL    string `json:"cancelUrl"`
}

type portalRequest struct {
	ReturnURL string `json:"returnUrl"`
}

type linkResponse struct {
	URL string `json:"url"`
}

func (m *Module) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, m.log, ErrUnauthorized)
		return
	}
	var req checkoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, m.log, err)
		return
	}
	priceID := req.PriceID
	if priceID == "" {
		priceID = req.PriceIDSnake
	}

	link, err := m.billing.CreateCheckout(r.Context(), id, subscription.CheckoutRequest{
		PriceID:    priceID,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		writeError(w, r, m.log, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{URL: link.URL})
}

func (m *Module) handlePortal(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, m.log, ErrUnauthorized)
		return
	}
	var req portalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, m.log, err)
		return
	}

	link, err := m.billing.CreatePortal(r.Context(), id, req.ReturnURL)
	if err != nil {
		writeError(w, r, m.log, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{URL: link.URL})
}

func (m *Module) handleSync(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, m.log, ErrUnauthorized)
		return
	}

	snap, err := m.syncer.Sync(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, m.log, err)
		return
	}
	m.log.InfoContext(r.Context(), "subscription synced",
		logger.UserID(id.UserID),
		slog.String("status", string(snap.Status)),
	)
	writeJSON(w, http.StatusOK, snap)
}

type subscriptionResponse struct {
	subscription.Snapshot
	CanAccess bool `json:"can_access"`
}

func (m *Module) handleSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		writeError(w, r, m.log, ErrUnauthorized)
		return
	}

	allowed, rec, err := m.gate.Check(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, m.log, err)
		return
	}
	resp := subscriptionResponse{
		Snapshot:  subscription.Snapshot{Status: subscription.StatusInactive},
		CanAccess: allowed,
	}
	if rec != nil {
		resp.Snapshot = rec.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}
