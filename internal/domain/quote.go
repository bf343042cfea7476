package domain

import "time"

// PricingSnapshot is the immutable record of the inputs and outputs that
// produced a booking's quote. It is captured at submission time, stored
// as JSONB on the booking row, and is the authoritative source for
// re-deriving the booking mode — the raw request inputs are never
// re-evaluated after submission.
type PricingSnapshot struct {
	Kind      BookingKind `json:"kind"`
	Mode      BookingMode `json:"mode"`
	EventType EventType   `json:"event_type,omitempty"`

	Nights        int `json:"nights,omitempty"`
	DurationHours int `json:"duration_hours,omitempty"`
	BillableHours int `json:"billable_hours,omitempty"`

	NightlyRateCents int64  `json:"nightly_rate_cents,omitempty"`
	HourlyRateCents  int64  `json:"hourly_rate_cents,omitempty"`
	DayRateCents     *int64 `json:"day_rate_cents,omitempty"`
	DayRateApplied   bool   `json:"day_rate_applied,omitempty"`

	SubtotalCents    int64  `json:"subtotal_cents"`
	FeesCents        int64  `json:"fees_cents"`
	AddonsTotalCents int64  `json:"addons_total_cents"`
	DepositCents     int64  `json:"deposit_cents"`
	TotalCents       int64  `json:"total_cents"`
	Currency         string `json:"currency"`

	GuestCount        int32      `json:"guest_count,omitempty"`
	EstimatedVehicles int32      `json:"estimated_vehicles,omitempty"`
	RiskFlags         []RiskFlag `json:"risk_flags,omitempty"`

	QuotedAt time.Time `json:"quoted_at"`
}

// ResolveMode re-derives the booking mode from the snapshot. Any risk
// flag forces manual review regardless of the mode the quote originally
// carried.
func (s *PricingSnapshot) ResolveMode() BookingMode {
	if len(s.RiskFlags) > 0 {
		return BookingModeRequest
	}
	if s.Mode == "" {
		return BookingModeRequest
	}
	return s.Mode
}
