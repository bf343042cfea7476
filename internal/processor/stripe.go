package processor

import (
	"context"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

func (c *StripeClient) CreateIntent(ctx context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(params.AmountCents),
		Currency:      stripe.String(params.Currency),
		CaptureMethod: stripe.String(params.CaptureMethod),
	}
	p.Context = ctx
	if params.IdempotencyKey != "" {
		p.SetIdempotencyKey(params.IdempotencyKey)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	return c.api.PaymentIntents.New(p)
}

func (c *StripeClient) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{}
	p.Context = ctx
	return c.api.PaymentIntents.Get(id, p)
}

func (c *StripeClient) UpdateIntent(ctx context.Context, id string, params UpdateIntentParams) (*stripe.PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{}
	p.Context = ctx
	if params.AmountCents > 0 {
		p.Amount = stripe.Int64(params.AmountCents)
	}
	if params.Currency != "" {
		p.Currency = stripe.String(params.Currency)
	}
	for k, v := range params.Metadata {
		p.AddMetadata(k, v)
	}
	return c.api.PaymentIntents.Update(id, p)
}

func (c *StripeClient) CancelIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	p := &stripe.PaymentIntentCancelParams{}
	p.Context = ctx
	return c.api.PaymentIntents.Cancel(id, p)
}

// StripeVerifier verifies webhook payloads with the endpoint's shared
// signing secret.
type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

func (v *StripeVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, v.secret)
}
