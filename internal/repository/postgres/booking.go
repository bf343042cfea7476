package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, reference_code, property_id, guest_id, kind, mode, status,
	start_at, end_at, check_in_date, check_out_date, guest_count,
	subtotal_cents, fees_cents, addons_total_cents, deposit_cents, total_cents, currency, total_legacy,
	pricing_snapshot, blocks_calendar, payment_intent_id,
	COALESCE(failure_code, ''), COALESCE(failure_message, ''), failed_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	var snapshot []byte
	err := row.Scan(
		&b.ID, &b.ReferenceCode, &b.PropertyID, &b.GuestID, &b.Kind, &b.Mode, &b.Status,
		&b.StartAt, &b.EndAt, &b.CheckInDate, &b.CheckOutDate, &b.GuestCount,
		&b.SubtotalCents, &b.FeesCents, &b.AddonsTotalCents, &b.DepositCents, &b.TotalCents, &b.Currency, &b.TotalLegacy,
		&snapshot, &b.BlocksCalendar, &b.PaymentIntentID,
		&b.FailureCode, &b.FailureMessage, &b.FailedAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &b.PricingSnapshot); err != nil {
			return nil, fmt.Errorf("decode pricing snapshot: %w", err)
		}
	}
	return b, nil
}

func statusList(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	var snapshot []byte
	if b.PricingSnapshot != nil {
		var err error
		snapshot, err = json.Marshal(b.PricingSnapshot)
		if err != nil {
			return fmt.Errorf("encode pricing snapshot: %w", err)
		}
	}
	query := `INSERT INTO bookings (reference_code, property_id, guest_id, kind, mode, status,
	            start_at, end_at, check_in_date, check_out_date, guest_count,
	            subtotal_cents, fees_cents, addons_total_cents, deposit_cents, total_cents, currency, total_legacy,
	            pricing_snapshot, blocks_calendar, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	          RETURNING id`
	now := time.Now().UTC()
	return r.db.QueryRowContext(ctx, query,
		b.ReferenceCode, b.PropertyID, b.GuestID, b.Kind, b.Mode, b.Status,
		b.StartAt, b.EndAt, b.CheckInDate, b.CheckOutDate, b.GuestCount,
		b.SubtotalCents, b.FeesCents, b.AddonsTotalCents, b.DepositCents, b.TotalCents, b.Currency, b.TotalLegacy,
		snapshot, b.BlocksCalendar, now, now,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return b, err
}

func (r *bookingRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, intentID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	return b, err
}

func (r *bookingRepository) list(ctx context.Context, where string, key int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM bookings WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, key).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, key, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) ListByGuest(ctx context.Context, guestID int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "guest_id = $1", guestID, page, pageSize)
}

func (r *bookingRepository) ListByProperty(ctx context.Context, propertyID int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "property_id = $1", propertyID, page, pageSize)
}

func (r *bookingRepository) MarkSubmitted(ctx context.Context, id int64, mode domain.BookingMode, snapshot *domain.PricingSnapshot, blocksCalendar bool) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode pricing snapshot: %w", err)
	}
	query := `UPDATE bookings SET status = $1, mode = $2, pricing_snapshot = $3, blocks_calendar = $4, updated_at = $5
	          WHERE id = $6 AND status = $7`
	res, err := r.db.ExecContext(ctx, query,
		domain.BookingStatusSubmitted, mode, data, blocksCalendar, time.Now().UTC(),
		id, domain.BookingStatusDraft)
	if err != nil {
		return err
	}
	return oneRowOrConflict(res)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from []domain.BookingStatus, to domain.BookingStatus, blocksCalendar bool) error {
	query := `UPDATE bookings SET status = $1, blocks_calendar = $2, updated_at = $3
	          WHERE id = $4 AND status = ANY($5)`
	res, err := r.db.ExecContext(ctx, query, to, blocksCalendar, time.Now().UTC(), id, pq.Array(statusList(from)))
	if err != nil {
		return err
	}
	return oneRowOrConflict(res)
}

func (r *bookingRepository) MarkConfirmed(ctx context.Context, id int64, status domain.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = $1, blocks_calendar = TRUE, updated_at = $2
	          WHERE id = $3 AND status = ANY($4)`
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id, pq.Array(statusList(domain.ConfirmableStatuses)))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *bookingRepository) ClaimPaymentIntent(ctx context.Context, id int64, intentID string) error {
	// The NULL guard is the whole point: the first concurrent checkout
	// request wins, every other one sees zero rows and backs off.
	query := `UPDATE bookings SET payment_intent_id = $1, updated_at = $2
	          WHERE id = $3 AND status = $4 AND payment_intent_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, intentID, time.Now().UTC(), id, domain.BookingStatusSubmitted)
	if err != nil {
		return err
	}
	return oneRowOrConflict(res)
}

func (r *bookingRepository) SetPaymentIntent(ctx context.Context, id int64, intentID string) error {
	query := `UPDATE bookings SET payment_intent_id = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, intentID, time.Now().UTC(), id)
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

func (r *bookingRepository) MarkCancelled(ctx context.Context, id int64, failureCode, failureMessage string, failedAt *time.Time, clearCalendar bool) error {
	set := []string{"status = $1", "failure_code = $2", "failure_message = $3", "failed_at = $4", "updated_at = $5"}
	if clearCalendar {
		set = append(set, "blocks_calendar = FALSE")
	}
	query := `UPDATE bookings SET ` + strings.Join(set, ", ") + ` WHERE id = $6 AND status <> $7`
	res, err := r.db.ExecContext(ctx, query,
		domain.BookingStatusCancelled, nullIfEmpty(failureCode), nullIfEmpty(failureMessage), failedAt, time.Now().UTC(),
		id, domain.BookingStatusCancelled)
	if err != nil {
		return err
	}
	// Cancelling an already-cancelled booking is a no-op, not a conflict.
	_, err = res.RowsAffected()
	return err
}

func (r *bookingRepository) AddRiskFlags(ctx context.Context, bookingID int64, flags []domain.RiskFlag) error {
	if len(flags) == 0 {
		return nil
	}
	query := `INSERT INTO booking_risk_flags (booking_id, flag, created_at) VALUES ($1, $2, $3)`
	now := time.Now().UTC()
	for _, f := range flags {
		if _, err := r.db.ExecContext(ctx, query, bookingID, f, now); err != nil {
			return err
		}
	}
	return nil
}

func (r *bookingRepository) ListRiskFlags(ctx context.Context, bookingID int64) ([]domain.BookingRiskFlag, error) {
	query := `SELECT id, booking_id, flag, created_at FROM booking_risk_flags WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []domain.BookingRiskFlag
	for rows.Next() {
		var f domain.BookingRiskFlag
		if err := rows.Scan(&f.ID, &f.BookingID, &f.Flag, &f.CreatedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (r *bookingRepository) CancelStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE bookings SET status = $1, updated_at = $2
	          WHERE status = $3 AND created_at < $4`
	res, err := r.db.ExecContext(ctx, query, domain.BookingStatusCancelled, time.Now().UTC(), domain.BookingStatusDraft, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *bookingRepository) ListOverdueHolds(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND end_at < $2 ORDER BY end_at`
	return r.listBookings(ctx, query, domain.BookingStatusConfirmedHoldOpen, cutoff)
}

func (r *bookingRepository) ListAwaitingPaymentSince(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`
	return r.listBookings(ctx, query, domain.BookingStatusAwaitingPayment, cutoff)
}

func (r *bookingRepository) listBookings(ctx context.Context, query string, args ...interface{}) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func oneRowOrConflict(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrConflict
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
