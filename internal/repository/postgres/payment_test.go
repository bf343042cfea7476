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

var paymentColumnNames = []string{
	"id", "booking_id", "intent_id", "purpose", "capture_method", "status",
	"amount_cents", "currency", "charge_id", "failure_code", "failure_message",
	"released_at", "created_at", "updated_at",
}

func paymentRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(paymentColumnNames).
		AddRow(5, 1, "pi_123", "BOOKING_TOTAL", "AUTOMATIC", "PENDING",
			49000, "USD", "", "", "",
			nil, now, now)
}

func TestPaymentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := &domain.Payment{
		BookingID:     1,
		IntentID:      "pi_123",
		Purpose:       domain.PaymentPurposeBookingTotal,
		CaptureMethod: domain.CaptureMethodAutomatic,
		Status:        domain.PaymentStatusPending,
		AmountCents:   49000,
		Currency:      "USD",
	}

	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(p.BookingID, p.IntentID, string(p.Purpose), string(p.CaptureMethod), string(p.Status),
			p.AmountCents, p.Currency, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	err = repo.Create(ctx, p)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
}

func TestPaymentRepository_LatestByPurpose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT (.+) FROM payments(.+)WHERE booking_id = \\$1 AND purpose = \\$2 ORDER BY created_at DESC, id DESC LIMIT 1").
			WithArgs(int64(1), string(domain.PaymentPurposeBookingTotal)).
			WillReturnRows(paymentRow())

		p, err := repo.LatestByPurpose(ctx, 1, domain.PaymentPurposeBookingTotal)
		require.NoError(t, err)
		assert.Equal(t, "pi_123", p.IntentID)
		assert.Equal(t, domain.PaymentStatusPending, p.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("(?s)SELECT (.+) FROM payments").
			WillReturnRows(sqlmock.NewRows(paymentColumnNames))

		_, err := repo.LatestByPurpose(ctx, 1, domain.PaymentPurposeDepositHold)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPaymentRepository_UpdateStatusByIntentID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Empty charge id must not blank out a previously recorded one.
		mock.ExpectExec("UPDATE payments SET status = \\$1, charge_id = COALESCE\\(NULLIF\\(\\$2, ''\\), charge_id\\)").
			WithArgs(string(domain.PaymentStatusSucceeded), "ch_1", sqlmock.AnyArg(), "pi_123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatusByIntentID(ctx, "pi_123", domain.PaymentStatusSucceeded, "ch_1")
		assert.NoError(t, err)
	})

	t.Run("UnknownIntent", func(t *testing.T) {
		mock.ExpectExec("UPDATE payments SET status = \\$1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatusByIntentID(ctx, "pi_missing", domain.PaymentStatusSucceeded, "")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestPaymentRepository_MarkReleased(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPaymentRepository(db)
	ctx := context.Background()
	releasedAt := time.Now().UTC()

	mock.ExpectExec("UPDATE payments SET status = \\$1, released_at = \\$2").
		WithArgs(string(domain.PaymentStatusCancelled), releasedAt, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkReleased(ctx, 5, releasedAt)
	assert.NoError(t, err)
}
