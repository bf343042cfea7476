package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, booking_id, intent_id, purpose, capture_method, status,
	amount_cents, currency, COALESCE(charge_id, ''), COALESCE(failure_code, ''), COALESCE(failure_message, ''),
	released_at, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.BookingID, &p.IntentID, &p.Purpose, &p.CaptureMethod, &p.Status,
		&p.AmountCents, &p.Currency, &p.ChargeID, &p.FailureCode, &p.FailureMessage,
		&p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (booking_id, intent_id, purpose, capture_method, status, amount_cents, currency, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	return r.db.QueryRowContext(ctx, query,
		p.BookingID, p.IntentID, p.Purpose, p.CaptureMethod, p.Status, p.AmountCents, p.Currency, now, now,
	).Scan(&p.ID)
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *paymentRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE intent_id = $1 ORDER BY created_at DESC LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, intentID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *paymentRepository) LatestByPurpose(ctx context.Context, bookingID int64, purpose domain.PaymentPurpose) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
	          WHERE booking_id = $1 AND purpose = $2 ORDER BY created_at DESC, id DESC LIMIT 1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, bookingID, purpose))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (r *paymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) UpdateStatusByIntentID(ctx context.Context, intentID string, status domain.PaymentStatus, chargeID string) error {
	query := `UPDATE payments SET status = $1, charge_id = COALESCE(NULLIF($2, ''), charge_id), updated_at = $3
	          WHERE intent_id = $4`
	res, err := r.db.ExecContext(ctx, query, status, chargeID, time.Now().UTC(), intentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) MarkFailedByIntentID(ctx context.Context, intentID, failureCode, failureMessage string) error {
	query := `UPDATE payments SET status = $1, failure_code = $2, failure_message = $3, updated_at = $4
	          WHERE intent_id = $5`
	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusFailed, failureCode, failureMessage, time.Now().UTC(), intentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *paymentRepository) MarkReleased(ctx context.Context, id int64, releasedAt time.Time) error {
	query := `UPDATE payments SET status = $1, released_at = $2, updated_at = $3 WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusCancelled, releasedAt, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
