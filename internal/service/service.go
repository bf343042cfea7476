package service

import (
	"context"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/pricing"
)

// Caller is the authenticated identity attached to a request by the
// JWT middleware.
type Caller struct {
	ID   int64
	Role domain.Role
}

// QuoteRequest carries the inputs for pricing a stay or event window.
// The same shape backs the stateless quote endpoint and draft creation.
type QuoteRequest struct {
	PropertyID int64              `json:"property_id"`
	Kind       domain.BookingKind `json:"kind"`
	EventType  domain.EventType   `json:"event_type,omitempty"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	GuestCount        int32 `json:"guest_count"`
	EstimatedVehicles int32 `json:"estimated_vehicles,omitempty"`

	Alcohol        bool `json:"alcohol,omitempty"`
	AmplifiedSound bool `json:"amplified_sound,omitempty"`

	AddonsTotalCents int64 `json:"addons_total_cents,omitempty"`
}

// PaymentHandle is the client-usable result of intent orchestration:
// enough to drive the processor's client-side confirmation flow, nothing
// more.
type PaymentHandle struct {
	IntentID     string                `json:"intent_id"`
	ClientSecret string                `json:"client_secret,omitempty"`
	Status       domain.PaymentStatus  `json:"status"`
	Purpose      domain.PaymentPurpose `json:"purpose"`
	AmountCents  int64                 `json:"amount_cents"`
	Currency     string                `json:"currency"`
}

type BookingService interface {
	// Quote prices a request against the property's rate card without
	// persisting anything.
	Quote(ctx context.Context, req QuoteRequest) (*pricing.Quote, error)

	CreateDraft(ctx context.Context, caller Caller, req QuoteRequest) (*domain.Booking, error)
	Submit(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error)
	Approve(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, *PaymentHandle, error)
	Cancel(ctx context.Context, caller Caller, bookingID int64, reason string) (*domain.Booking, error)
	CheckIn(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error)
	Complete(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error)

	Get(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, []domain.Payment, error)
	List(ctx context.Context, caller Caller, propertyID int64, page, pageSize int32) ([]domain.Booking, int32, error)
}

type PaymentService interface {
	// EnsurePaymentIntent guarantees at most one live processor intent
	// per (booking, purpose), reusing a matching live intent when one
	// exists and creating a fresh one otherwise.
	EnsurePaymentIntent(ctx context.Context, booking *domain.Booking, purpose domain.PaymentPurpose, amountCents int64, currency string) (*PaymentHandle, error)

	// CreateCheckoutIntent is the checkout create-or-reuse path. The
	// first creation for a booking claims the intent column with a
	// conditional write; losing the claim cancels the just-created
	// intent and reports a conflict.
	CreateCheckoutIntent(ctx context.Context, caller Caller, bookingID int64) (*PaymentHandle, error)

	Capture(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error)
	ReleaseDeposit(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error)
}

type WebhookService interface {
	// HandleEvent verifies and applies one processor event. A signature
	// failure returns a ValidationError before any state is touched.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

type EmailService interface {
	SendPaymentRequestNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string, totalCents int64, currency string) error
	SendBookingConfirmedNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string) error
	SendPaymentFailedNotification(ctx context.Context, guestEmail, guestName, referenceCode, reason string) error
	SendPaymentReminderNotification(ctx context.Context, guestEmail, guestName, referenceCode string, totalCents int64, currency string) error
	SendDepositReleasedNotification(ctx context.Context, guestEmail, guestName, referenceCode string) error
	SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle, referenceCode string) error
}
