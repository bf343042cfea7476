package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	stripe "github.com/stripe/stripe-go/v78"
)

// MockClient implements Client with in-memory intents. It backs local
// development (provider "mock") and the service tests, without touching
// the network.
type MockClient struct {
	mu      sync.Mutex
	seq     int
	intents map[string]*stripe.PaymentIntent

	// CreateErr, when set, is returned by the next CreateIntent call.
	CreateErr error
	// CancelledIDs records every intent cancelled through this client,
	// in order.
	CancelledIDs []string
}

func NewMockClient() *MockClient {
	return &MockClient{intents: make(map[string]*stripe.PaymentIntent)}
}

func (m *MockClient) CreateIntent(_ context.Context, params CreateIntentParams) (*stripe.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		err := m.CreateErr
		m.CreateErr = nil
		return nil, err
	}

	m.seq++
	id := fmt.Sprintf("pi_mock_%06d", m.seq)
	status := stripe.PaymentIntentStatusRequiresPaymentMethod
	pi := &stripe.PaymentIntent{
		ID:            id,
		Amount:        params.AmountCents,
		Currency:      stripe.Currency(params.Currency),
		CaptureMethod: stripe.PaymentIntentCaptureMethod(params.CaptureMethod),
		Status:        status,
		ClientSecret:  id + "_secret",
		Metadata:      copyMetadata(params.Metadata),
	}
	m.intents[id] = pi
	return clonePI(pi), nil
}

func (m *MockClient) GetIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("mock processor: no such intent %s", id)
	}
	return clonePI(pi), nil
}

func (m *MockClient) UpdateIntent(_ context.Context, id string, params UpdateIntentParams) (*stripe.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("mock processor: no such intent %s", id)
	}
	if params.AmountCents > 0 {
		pi.Amount = params.AmountCents
	}
	if params.Currency != "" {
		pi.Currency = stripe.Currency(params.Currency)
	}
	for k, v := range params.Metadata {
		if pi.Metadata == nil {
			pi.Metadata = map[string]string{}
		}
		pi.Metadata[k] = v
	}
	return clonePI(pi), nil
}

func (m *MockClient) CancelIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, ok := m.intents[id]
	if !ok {
		return nil, fmt.Errorf("mock processor: no such intent %s", id)
	}
	pi.Status = stripe.PaymentIntentStatusCanceled
	m.CancelledIDs = append(m.CancelledIDs, id)
	return clonePI(pi), nil
}

// SetStatus moves a stored intent to the given status. Test hook.
func (m *MockClient) SetStatus(id string, status stripe.PaymentIntentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pi, ok := m.intents[id]; ok {
		pi.Status = status
	}
}

// IntentCount reports how many intents have been created. Test hook.
func (m *MockClient) IntentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intents)
}

func copyMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func clonePI(pi *stripe.PaymentIntent) *stripe.PaymentIntent {
	cp := *pi
	cp.Metadata = copyMetadata(pi.Metadata)
	return &cp
}

// InsecureVerifier decodes webhook payloads without checking the
// signature. Only wired when the processor provider is "mock"; never in
// production.
type InsecureVerifier struct{}

func (InsecureVerifier) Verify(payload []byte, _ string) (stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}
	return event, nil
}
