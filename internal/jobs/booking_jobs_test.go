package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bukenyae/medical-rentals-sub002/internal/config"
	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository/postgres"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

// stubBookingRepo overrides only the sweep queries; any other call
// panics through the embedded nil interface, which is what we want in a
// job test.
type stubBookingRepo struct {
	repository.BookingRepository
	cancelStaleDrafts        func(ctx context.Context, cutoff time.Time) (int64, error)
	listOverdueHolds         func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
	listAwaitingPaymentSince func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

func (s *stubBookingRepo) CancelStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.cancelStaleDrafts(ctx, cutoff)
}
func (s *stubBookingRepo) ListOverdueHolds(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return s.listOverdueHolds(ctx, cutoff)
}
func (s *stubBookingRepo) ListAwaitingPaymentSince(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	return s.listAwaitingPaymentSince(ctx, cutoff)
}

type stubUserRepo struct {
	repository.UserRepository
	users map[int64]*domain.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type stubPaymentService struct {
	service.PaymentService
	releaseDeposit func(ctx context.Context, caller service.Caller, bookingID int64) (*domain.Booking, error)
}

func (s *stubPaymentService) ReleaseDeposit(ctx context.Context, caller service.Caller, bookingID int64) (*domain.Booking, error) {
	return s.releaseDeposit(ctx, caller, bookingID)
}

type stubEmailService struct {
	service.EmailService
	reminded []string
	fail     map[string]bool
}

func (s *stubEmailService) SendPaymentReminderNotification(ctx context.Context, guestEmail, guestName, referenceCode string, totalCents int64, currency string) error {
	if s.fail[referenceCode] {
		return assert.AnError
	}
	s.reminded = append(s.reminded, referenceCode)
	return nil
}

func jobConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			StaleDraftDays:       7,
			HoldAutoReleaseDays:  7,
			PaymentReminderHours: 24,
		},
	}
}

func TestCancelStaleDrafts(t *testing.T) {
	t.Run("passes the configured cutoff", func(t *testing.T) {
		var gotCutoff time.Time
		bookings := &stubBookingRepo{
			cancelStaleDrafts: func(ctx context.Context, cutoff time.Time) (int64, error) {
				gotCutoff = cutoff
				return 3, nil
			},
		}
		jr := NewJobRunner(&postgres.Store{BookingRepository: bookings}, &Services{}, jobConfig())

		jr.CancelStaleDrafts()

		want := time.Now().UTC().AddDate(0, 0, -7)
		assert.WithinDuration(t, want, gotCutoff, time.Minute)
	})

	t.Run("query failure does not panic", func(t *testing.T) {
		bookings := &stubBookingRepo{
			cancelStaleDrafts: func(ctx context.Context, cutoff time.Time) (int64, error) {
				return 0, assert.AnError
			},
		}
		jr := NewJobRunner(&postgres.Store{BookingRepository: bookings}, &Services{}, jobConfig())

		jr.CancelStaleDrafts()
	})
}

func TestReleaseOverdueHolds(t *testing.T) {
	overdue := []domain.Booking{
		{ID: 11, ReferenceCode: "BK-AAAA1111"},
		{ID: 12, ReferenceCode: "BK-BBBB2222"},
		{ID: 13, ReferenceCode: "BK-CCCC3333"},
	}

	t.Run("releases each eligible hold as the system caller", func(t *testing.T) {
		bookings := &stubBookingRepo{
			listOverdueHolds: func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
				return overdue, nil
			},
		}
		var released []int64
		payments := &stubPaymentService{
			releaseDeposit: func(ctx context.Context, caller service.Caller, bookingID int64) (*domain.Booking, error) {
				require.Equal(t, domain.RoleAdmin, caller.Role)
				switch bookingID {
				case 12:
					// Hold already released by an owner, tolerated.
					return nil, service.NotFoundf("no deposit hold for booking %d", bookingID)
				case 13:
					return nil, service.Upstream("cancel payment intent", assert.AnError)
				default:
					released = append(released, bookingID)
					return &domain.Booking{ID: bookingID}, nil
				}
			},
		}
		jr := NewJobRunner(&postgres.Store{BookingRepository: bookings}, &Services{Payment: payments}, jobConfig())

		jr.ReleaseOverdueHolds()

		assert.Equal(t, []int64{11}, released)
	})

	t.Run("list failure releases nothing", func(t *testing.T) {
		bookings := &stubBookingRepo{
			listOverdueHolds: func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
				return nil, assert.AnError
			},
		}
		payments := &stubPaymentService{
			releaseDeposit: func(ctx context.Context, caller service.Caller, bookingID int64) (*domain.Booking, error) {
				t.Fatal("ReleaseDeposit should not be called")
				return nil, nil
			},
		}
		jr := NewJobRunner(&postgres.Store{BookingRepository: bookings}, &Services{Payment: payments}, jobConfig())

		jr.ReleaseOverdueHolds()
	})
}

func TestSendPaymentReminders(t *testing.T) {
	awaiting := []domain.Booking{
		{ID: 21, ReferenceCode: "BK-DDDD4444", GuestID: 1, TotalCents: 49000, Currency: "USD"},
		{ID: 22, ReferenceCode: "BK-EEEE5555", GuestID: 2, TotalCents: 107000, Currency: "USD"},
		{ID: 23, ReferenceCode: "BK-FFFF6666", GuestID: 9, TotalCents: 30000, Currency: "USD"},
	}

	bookings := &stubBookingRepo{
		listAwaitingPaymentSince: func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
			want := time.Now().UTC().Add(-24 * time.Hour)
			assert.WithinDuration(t, want, cutoff, time.Minute)
			return awaiting, nil
		},
	}
	users := &stubUserRepo{users: map[int64]*domain.User{
		1: {ID: 1, Email: "ana@example.com", Name: "Ana"},
		2: {ID: 2, Email: "bo@example.com", Name: "Bo"},
	}}
	emails := &stubEmailService{fail: map[string]bool{"BK-EEEE5555": true}}
	jr := NewJobRunner(
		&postgres.Store{BookingRepository: bookings, UserRepository: users},
		&Services{Email: emails},
		jobConfig(),
	)

	jr.SendPaymentReminders()

	// Guest 9 is unknown and BK-EEEE5555 failed to send; only the first
	// booking gets its reminder.
	assert.Equal(t, []string{"BK-DDDD4444"}, emails.reminded)
}

func TestJobPanicRecovery(t *testing.T) {
	bookings := &stubBookingRepo{
		listOverdueHolds: func(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
			panic("boom")
		},
	}
	jr := NewJobRunner(&postgres.Store{BookingRepository: bookings}, &Services{}, jobConfig())

	assert.NotPanics(t, func() { jr.ReleaseOverdueHolds() })
}
