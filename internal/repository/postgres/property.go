package postgres

import (
	"context"
	"database/sql"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	p := &domain.Property{}
	query := `SELECT id, owner_id, title, nightly_rate_cents, cleaning_fee_cents,
	            hourly_rate_cents, min_event_hours, day_rate_hours, day_rate_cents, deposit_cents,
	            allow_instant_book, curfew_minutes, currency, created_at
	          FROM properties WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.NightlyRateCents, &p.CleaningFeeCents,
		&p.HourlyRateCents, &p.MinEventHours, &p.DayRateHours, &p.DayRateCents, &p.DepositCents,
		&p.AllowInstantBook, &p.CurfewMinutes, &p.Currency, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
