package domain

import "time"

// Property is the rate card a quote is priced from. Property CRUD lives
// outside this engine; these rows are read-only here.
type Property struct {
	ID      int64  `json:"id"`
	OwnerID int64  `json:"owner_id"`
	Title   string `json:"title"`

	NightlyRateCents int64 `json:"nightly_rate_cents"`
	CleaningFeeCents int64 `json:"cleaning_fee_cents"`

	HourlyRateCents int64  `json:"hourly_rate_cents"`
	MinEventHours   int    `json:"min_event_hours"`
	DayRateHours    int    `json:"day_rate_hours"`
	DayRateCents    *int64 `json:"day_rate_cents,omitempty"`
	DepositCents    int64  `json:"deposit_cents"`

	AllowInstantBook bool `json:"allow_instant_book"`
	// CurfewMinutes is minutes after midnight, local to the property.
	// Nil means no curfew.
	CurfewMinutes *int `json:"curfew_minutes,omitempty"`

	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}
