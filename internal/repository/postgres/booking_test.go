package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

var bookingColumnNames = []string{
	"id", "reference_code", "property_id", "guest_id", "kind", "mode", "status",
	"start_at", "end_at", "check_in_date", "check_out_date", "guest_count",
	"subtotal_cents", "fees_cents", "addons_total_cents", "deposit_cents", "total_cents", "currency", "total_legacy",
	"pricing_snapshot", "blocks_calendar", "payment_intent_id",
	"failure_code", "failure_message", "failed_at",
	"created_at", "updated_at",
}

func bookingRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(bookingColumnNames).
		AddRow(1, "BK-1A2B3C4D", 3, 7, "STAY", "INSTANT", "SUBMITTED",
			now, now.Add(72*time.Hour), nil, nil, 2,
			42000, 7000, 0, 0, 49000, "USD", 490.00,
			nil, false, nil,
			"", "", nil,
			now, now)
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now().UTC()
		b := &domain.Booking{
			ReferenceCode: "BK-1A2B3C4D",
			PropertyID:    3,
			GuestID:       7,
			Kind:          domain.BookingKindStay,
			Mode:          domain.BookingModeInstant,
			Status:        domain.BookingStatusDraft,
			StartAt:       now,
			EndAt:         now.Add(72 * time.Hour),
			GuestCount:    2,
			SubtotalCents: 42000,
			FeesCents:     7000,
			TotalCents:    49000,
			Currency:      "USD",
			TotalLegacy:   490.00,
		}

		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.Create(ctx, b)
		assert.NoError(t, err)
		assert.Equal(t, int64(11), b.ID)
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int64(1)).
			WillReturnRows(bookingRow())

		b, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		assert.Equal(t, "BK-1A2B3C4D", b.ReferenceCode)
		assert.Equal(t, domain.BookingStatusSubmitted, b.Status)
		assert.Nil(t, b.PaymentIntentID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(bookingColumnNames))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestBookingRepository_MarkSubmitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	snapshot := &domain.PricingSnapshot{TotalCents: 49000, Currency: "USD"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET status = (.+) WHERE id = \\$6 AND status = \\$7").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkSubmitted(ctx, 1, domain.BookingModeInstant, snapshot, true)
		assert.NoError(t, err)
	})

	t.Run("NotADraft", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET status = (.+) WHERE id = \\$6 AND status = \\$7").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkSubmitted(ctx, 1, domain.BookingModeInstant, snapshot, true)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	from := []domain.BookingStatus{domain.BookingStatusSubmitted}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET status = (.+) WHERE id = \\$4 AND status = ANY\\(\\$5\\)").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(ctx, 1, from, domain.BookingStatusAwaitingPayment, true)
		assert.NoError(t, err)
	})

	t.Run("LostUpdate", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET status = (.+) WHERE id = \\$4 AND status = ANY\\(\\$5\\)").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, 1, from, domain.BookingStatusAwaitingPayment, true)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestBookingRepository_MarkConfirmed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Converged", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET status = \\$1, blocks_calendar = TRUE").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkConfirmed(ctx, 1, domain.BookingStatusConfirmed)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("NotConfirmable", func(t *testing.T) {
		// Cancelled bookings stay cancelled; zero rows is a report, not an
		// error.
		mock.ExpectExec("UPDATE bookings SET status = \\$1, blocks_calendar = TRUE").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkConfirmed(ctx, 1, domain.BookingStatusConfirmed)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBookingRepository_ClaimPaymentIntent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("FirstClaimWins", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET payment_intent_id = \\$1, (.+) AND payment_intent_id IS NULL").
			WithArgs("pi_123", sqlmock.AnyArg(), int64(1), string(domain.BookingStatusSubmitted)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ClaimPaymentIntent(ctx, 1, "pi_123")
		assert.NoError(t, err)
	})

	t.Run("LostRace", func(t *testing.T) {
		mock.ExpectExec("(?s)UPDATE bookings SET payment_intent_id = \\$1, (.+) AND payment_intent_id IS NULL").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ClaimPaymentIntent(ctx, 1, "pi_456")
		assert.ErrorIs(t, err, repository.ErrConflict)
	})
}

func TestBookingRepository_MarkCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("ClearCalendarOnPaymentFailure", func(t *testing.T) {
		failedAt := time.Now().UTC()
		mock.ExpectExec("UPDATE bookings SET (.+)blocks_calendar = FALSE WHERE id = \\$6 AND status <> \\$7").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkCancelled(ctx, 1, "card_declined", "Your card was declined.", &failedAt, true)
		assert.NoError(t, err)
	})

	t.Run("GeneralCancelKeepsCalendarBlock", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET status = \\$1, failure_code = \\$2, failure_message = \\$3, failed_at = \\$4, updated_at = \\$5 WHERE id = \\$6 AND status <> \\$7").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkCancelled(ctx, 1, "", "guest changed plans", nil, false)
		assert.NoError(t, err)
	})

	t.Run("AlreadyCancelledIsNoop", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET (.+) WHERE id = \\$6 AND status <> \\$7").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkCancelled(ctx, 1, "", "", nil, false)
		assert.NoError(t, err)
	})
}

func TestBookingRepository_CancelStaleDrafts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	cutoff := time.Now().UTC().AddDate(0, 0, -7)

	mock.ExpectExec("UPDATE bookings SET status = \\$1, updated_at = \\$2").
		WithArgs(string(domain.BookingStatusCancelled), sqlmock.AnyArg(), string(domain.BookingStatusDraft), cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.CancelStaleDrafts(ctx, cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
