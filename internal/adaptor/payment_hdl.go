package adaptor

import (
	"encoding/json"
	"io"
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Stripe caps webhook payloads well below this; anything larger is not ours.
const maxWebhookBody = 65536

type PaymentHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.BookingService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// InitiateCheckout handles POST /api/bookings/checkout (protected)
func (h *PaymentHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	checkout, err := h.service.InitiateCheckout(r.Context(), userID, &req)
	if err != nil {
		respondError(w, h.log, err, "initiate checkout")
		return
	}

	utils.ResponseSuccess(w, "success", checkout)
}

// GetPaymentStatus handles GET /api/bookings/payment-status/{session_id}
// (protected). Polled by the success page; reconciles against the provider.
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	status, err := h.service.ReconcilePaymentStatus(r.Context(), sessionID)
	if err != nil {
		respondError(w, h.log, err, "reconcile payment status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// StripeWebhook handles POST /api/webhook/stripe (public, signature-verified)
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Unable to read request body", nil)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.service.HandleWebhook(r.Context(), payload, signature); err != nil {
		respondError(w, h.log, err, "stripe webhook")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
