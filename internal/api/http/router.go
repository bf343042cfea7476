// Package http exposes the booking engine over REST. Authenticated
// routes live under /api/v1 behind the JWT middleware; the processor
// webhook is unauthenticated and verified by signature instead.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Bukenyae/medical-rentals-sub002/internal/security"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

func NewRouter(
	tokens security.TokenManager,
	bookingSvc service.BookingService,
	paymentSvc service.PaymentService,
	webhookSvc service.WebhookService,
	noteSvc service.NotificationService,
) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	webhooks := NewWebhookHandler(webhookSvc)
	router.HandleFunc("/webhooks/payments", webhooks.HandleEvent).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	bookings := NewBookingHandler(bookingSvc)
	api.HandleFunc("/quotes", bookings.Quote).Methods("POST")
	api.HandleFunc("/bookings", bookings.Create).Methods("POST")
	api.HandleFunc("/bookings", bookings.List).Methods("GET")
	api.HandleFunc("/bookings/{id}", bookings.Get).Methods("GET")
	api.HandleFunc("/bookings/{id}/submit", bookings.Submit).Methods("POST")
	api.HandleFunc("/bookings/{id}/approve", bookings.Approve).Methods("POST")
	api.HandleFunc("/bookings/{id}/cancel", bookings.Cancel).Methods("POST")
	api.HandleFunc("/bookings/{id}/checkin", bookings.CheckIn).Methods("POST")
	api.HandleFunc("/bookings/{id}/complete", bookings.Complete).Methods("POST")

	payments := NewPaymentHandler(paymentSvc)
	api.HandleFunc("/bookings/{id}/payment-intent", payments.CreateIntent).Methods("POST")
	api.HandleFunc("/bookings/{id}/capture", payments.Capture).Methods("POST")
	api.HandleFunc("/bookings/{id}/release-deposit", payments.ReleaseDeposit).Methods("POST")

	notifications := NewNotificationHandler(noteSvc)
	api.HandleFunc("/notifications", notifications.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods("POST")

	return router
}
