package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	quote, err := h.bookingSvc.Quote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	booking, err := h.bookingSvc.CreateDraft(r.Context(), callerFrom(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.bookingSvc.Submit(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, handle, err := h.bookingSvc.Approve(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking": booking,
		"payment": handle,
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	booking, err := h.bookingSvc.Cancel(r.Context(), callerFrom(r), id, body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.bookingSvc.CheckIn(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.bookingSvc.Complete(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, payments, err := h.bookingSvc.Get(r.Context(), callerFrom(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"booking":  booking,
		"payments": payments,
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	propertyID, _ := strconv.ParseInt(r.URL.Query().Get("property_id"), 10, 64)
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	bookings, total, err := h.bookingSvc.List(r.Context(), callerFrom(r), propertyID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"total":    total,
	})
}

func bookingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid booking id"})
		return 0, false
	}
	return id, true
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
