package repository

import (
	"context"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int64, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByProperty(ctx context.Context, propertyID int64, page, pageSize int32) ([]domain.Booking, int32, error)

	// MarkSubmitted advances DRAFT -> SUBMITTED, stamping the resolved
	// mode, the pricing snapshot and the calendar block in one guarded
	// write. Returns ErrConflict when the booking is no longer a draft.
	MarkSubmitted(ctx context.Context, id int64, mode domain.BookingMode, snapshot *domain.PricingSnapshot, blocksCalendar bool) error

	// UpdateStatus is the generic guarded transition: the row moves to
	// `to` only if its current status is one of `from`. blocksCalendar
	// is written alongside. Returns ErrConflict on zero rows.
	UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, blocksCalendar bool) error

	// MarkConfirmed is the idempotent convergence operation shared by
	// the capture flow and the webhook reconciler. It reports whether
	// the row was (or already had been) brought into the given confirmed
	// state; false means the booking is in a state that cannot confirm.
	MarkConfirmed(ctx context.Context, id int64, status domain.BookingStatus) (bool, error)

	// ClaimPaymentIntent stamps the first total-intent id onto a
	// submitted booking. The write is conditional on the intent column
	// still being NULL; ErrConflict means another request won the race.
	ClaimPaymentIntent(ctx context.Context, id int64, intentID string) error

	// SetPaymentIntent overwrites the intent linkage unconditionally.
	// Used when replacing an abandoned intent with a fresh one.
	SetPaymentIntent(ctx context.Context, id int64, intentID string) error

	// MarkCancelled records a cancellation. When clearCalendar is true
	// (payment-failure path) the calendar block is dropped; the general
	// cancellation path leaves blocks_calendar untouched.
	MarkCancelled(ctx context.Context, id int64, failureCode, failureMessage string, failedAt *time.Time, clearCalendar bool) error

	AddRiskFlags(ctx context.Context, bookingID int64, flags []domain.RiskFlag) error
	ListRiskFlags(ctx context.Context, bookingID int64) ([]domain.BookingRiskFlag, error)

	// CancelStaleDrafts moves drafts created before the cutoff to
	// CANCELLED and returns how many rows moved. Drafts are never
	// physically deleted.
	CancelStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error)

	// ListOverdueHolds returns confirmed-with-open-hold bookings whose
	// window ended before the cutoff, for scheduled release.
	ListOverdueHolds(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)

	// ListAwaitingPaymentSince returns bookings parked in
	// AWAITING_PAYMENT since before the cutoff, for reminder emails.
	ListAwaitingPaymentSince(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error)

	// LatestByPurpose returns the most recent payment row for the
	// (booking, purpose) pair, regardless of status.
	LatestByPurpose(ctx context.Context, bookingID int64, purpose domain.PaymentPurpose) (*domain.Payment, error)

	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)

	// UpdateStatusByIntentID normalizes a processor-reported status onto
	// the local row. Writes are idempotent: re-applying an identical
	// status is a no-op overwrite.
	UpdateStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus, chargeID string) error

	// MarkFailedByIntentID records a processor failure with its code and
	// message for support visibility.
	MarkFailedByIntentID(ctx context.Context, intentID, failureCode, failureMessage string) error

	// MarkReleased marks a deposit-hold payment cancelled with a release
	// timestamp.
	MarkReleased(ctx context.Context, id int64, releasedAt time.Time) error
}

type PropertyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}
