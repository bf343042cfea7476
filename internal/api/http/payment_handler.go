package http

import (
	"net/http"

	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

type PaymentHandler struct {
	paymentSvc service.PaymentService
}

func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// CreateIntent is the checkout create-or-reuse endpoint: safe to call on
// every checkout page load.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	handle, err := h.paymentSvc.CreateCheckoutIntent(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, handle)
}

func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.paymentSvc.Capture(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *PaymentHandler) ReleaseDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.paymentSvc.ReleaseDeposit(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}
