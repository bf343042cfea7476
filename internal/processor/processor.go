// Package processor wraps the external payment processor. Services
// depend on the Client and EventVerifier interfaces so that tests and
// local development can substitute the in-memory mock for the real
// Stripe-backed implementation.
package processor

import (
	"context"

	stripe "github.com/stripe/stripe-go/v78"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
)

// CreateIntentParams describes a new payment-intent request. Metadata
// must carry at least the booking id and purpose so webhook events can
// be reconciled back to local state.
type CreateIntentParams struct {
	AmountCents   int64
	Currency      string
	CaptureMethod string // "automatic" or "manual"
	Metadata      map[string]string
	// IdempotencyKey guards against duplicate intents when the same
	// request is retried at the transport level.
	IdempotencyKey string
}

// UpdateIntentParams describes an in-place amendment of an existing
// intent, used by checkout reloads.
type UpdateIntentParams struct {
	AmountCents int64
	Currency    string
	Metadata    map[string]string
}

// Client is the minimal payment-intent surface the engine needs.
type Client interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	UpdateIntent(ctx context.Context, id string, params UpdateIntentParams) (*stripe.PaymentIntent, error)
	CancelIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
}

// EventVerifier checks a webhook payload's signature against the shared
// endpoint secret and decodes the event. Implementations must reject
// unsigned or tampered payloads before any state is touched.
type EventVerifier interface {
	Verify(payload []byte, sigHeader string) (stripe.Event, error)
}

// NormalizeIntentStatus collapses the processor's intent-status
// vocabulary into the local one. Anything still in flight is PENDING;
// FAILED is only ever assigned by the reconciler from a payment-failed
// event, since intents themselves never settle in a failed status.
func NormalizeIntentStatus(s stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentStatusCancelled
	default:
		return domain.PaymentStatusPending
	}
}
