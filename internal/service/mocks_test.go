package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	stripe "github.com/stripe/stripe-go/v78"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/processor"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByGuest(ctx context.Context, guestID int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, guestID, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByProperty(ctx context.Context, propertyID int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, propertyID, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) MarkSubmitted(ctx context.Context, id int64, mode domain.BookingMode, snapshot *domain.PricingSnapshot, blocksCalendar bool) error {
	args := m.Called(ctx, id, mode, snapshot, blocksCalendar)
	return args.Error(0)
}
func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, blocksCalendar bool) error {
	args := m.Called(ctx, id, from, to, blocksCalendar)
	return args.Error(0)
}
func (m *MockBookingRepo) MarkConfirmed(ctx context.Context, id int64, status domain.BookingStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ClaimPaymentIntent(ctx context.Context, id int64, intentID string) error {
	args := m.Called(ctx, id, intentID)
	return args.Error(0)
}
func (m *MockBookingRepo) SetPaymentIntent(ctx context.Context, id int64, intentID string) error {
	args := m.Called(ctx, id, intentID)
	return args.Error(0)
}
func (m *MockBookingRepo) MarkCancelled(ctx context.Context, id int64, failureCode, failureMessage string, failedAt *time.Time, clearCalendar bool) error {
	args := m.Called(ctx, id, failureCode, failureMessage, failedAt, clearCalendar)
	return args.Error(0)
}
func (m *MockBookingRepo) AddRiskFlags(ctx context.Context, bookingID int64, flags []domain.RiskFlag) error {
	args := m.Called(ctx, bookingID, flags)
	return args.Error(0)
}
func (m *MockBookingRepo) ListRiskFlags(ctx context.Context, bookingID int64) ([]domain.BookingRiskFlag, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.BookingRiskFlag), args.Error(1)
}
func (m *MockBookingRepo) CancelStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockBookingRepo) ListOverdueHolds(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListAwaitingPaymentSince(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) LatestByPurpose(ctx context.Context, bookingID int64, purpose domain.PaymentPurpose) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) UpdateStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus, chargeID string) error {
	args := m.Called(ctx, intentID, status, chargeID)
	return args.Error(0)
}
func (m *MockPaymentRepo) MarkFailedByIntentID(ctx context.Context, intentID, failureCode, failureMessage string) error {
	args := m.Called(ctx, intentID, failureCode, failureMessage)
	return args.Error(0)
}
func (m *MockPaymentRepo) MarkReleased(ctx context.Context, id int64, releasedAt time.Time) error {
	args := m.Called(ctx, id, releasedAt)
	return args.Error(0)
}

// MockPropertyRepo
type MockPropertyRepo struct {
	mock.Mock
}

func (m *MockPropertyRepo) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockProcessorClient
type MockProcessorClient struct {
	mock.Mock
}

func (m *MockProcessorClient) CreateIntent(ctx context.Context, params processor.CreateIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
func (m *MockProcessorClient) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
func (m *MockProcessorClient) UpdateIntent(ctx context.Context, id string, params processor.UpdateIntentParams) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
func (m *MockProcessorClient) CancelIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPaymentRequestNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string, totalCents int64, currency string) error {
	args := m.Called(ctx, guestEmail, guestName, propertyTitle, referenceCode, totalCents, currency)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingConfirmedNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string) error {
	args := m.Called(ctx, guestEmail, guestName, propertyTitle, referenceCode)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentFailedNotification(ctx context.Context, guestEmail, guestName, referenceCode, reason string) error {
	args := m.Called(ctx, guestEmail, guestName, referenceCode, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReminderNotification(ctx context.Context, guestEmail, guestName, referenceCode string, totalCents int64, currency string) error {
	args := m.Called(ctx, guestEmail, guestName, referenceCode, totalCents, currency)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositReleasedNotification(ctx context.Context, guestEmail, guestName, referenceCode string) error {
	args := m.Called(ctx, guestEmail, guestName, referenceCode)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle, referenceCode string) error {
	args := m.Called(ctx, ownerEmail, guestName, propertyTitle, referenceCode)
	return args.Error(0)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) EnsurePaymentIntent(ctx context.Context, booking *domain.Booking, purpose domain.PaymentPurpose, amountCents int64, currency string) (*PaymentHandle, error) {
	args := m.Called(ctx, booking, purpose, amountCents, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentHandle), args.Error(1)
}
func (m *MockPaymentService) CreateCheckoutIntent(ctx context.Context, caller Caller, bookingID int64) (*PaymentHandle, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentHandle), args.Error(1)
}
func (m *MockPaymentService) Capture(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockPaymentService) ReleaseDeposit(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

// stubVerifier feeds a canned event (or error) to the webhook service so
// tests bypass real signature checks.
type stubVerifier struct {
	event stripe.Event
	err   error
}

func (v *stubVerifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	if v.err != nil {
		return stripe.Event{}, v.err
	}
	return v.event, nil
}
