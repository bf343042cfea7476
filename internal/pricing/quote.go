// Package pricing computes the priced, classified quote for a booking
// request. Every function here is pure: current time and currency are
// inputs, no I/O happens, and identical inputs always produce identical
// quotes.
package pricing

import (
	"math"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
)

// Instant-book policy gate thresholds. A single violation of any
// predicate forces manual review.
const (
	MaxInstantGuests   = 12
	MaxInstantVehicles = 8
)

// Quote is the priced, classified output for one booking request.
type Quote struct {
	Kind      domain.BookingKind
	Mode      domain.BookingMode
	EventType domain.EventType

	Nights        int
	DurationHours int
	BillableHours int

	NightlyRateCents int64
	HourlyRateCents  int64
	DayRateCents     *int64
	DayRateApplied   bool

	SubtotalCents    int64
	FeesCents        int64
	AddonsTotalCents int64
	DepositCents     int64
	TotalCents       int64
	Currency         string

	GuestCount        int32
	EstimatedVehicles int32
	RiskFlags         []domain.RiskFlag
}

// HasFlag reports whether the quote carries the given risk flag.
func (q *Quote) HasFlag(f domain.RiskFlag) bool {
	for _, rf := range q.RiskFlags {
		if rf == f {
			return true
		}
	}
	return false
}

// Snapshot freezes the quote into the immutable record persisted on the
// booking row at submission time.
func (q *Quote) Snapshot(quotedAt time.Time) *domain.PricingSnapshot {
	return &domain.PricingSnapshot{
		Kind:              q.Kind,
		Mode:              q.Mode,
		EventType:         q.EventType,
		Nights:            q.Nights,
		DurationHours:     q.DurationHours,
		BillableHours:     q.BillableHours,
		NightlyRateCents:  q.NightlyRateCents,
		HourlyRateCents:   q.HourlyRateCents,
		DayRateCents:      q.DayRateCents,
		DayRateApplied:    q.DayRateApplied,
		SubtotalCents:     q.SubtotalCents,
		FeesCents:         q.FeesCents,
		AddonsTotalCents:  q.AddonsTotalCents,
		DepositCents:      q.DepositCents,
		TotalCents:        q.TotalCents,
		Currency:          q.Currency,
		GuestCount:        q.GuestCount,
		EstimatedVehicles: q.EstimatedVehicles,
		RiskFlags:         q.RiskFlags,
		QuotedAt:          quotedAt.UTC(),
	}
}

// StayQuoteInput carries everything needed to price a stay.
type StayQuoteInput struct {
	NightlyRateCents int64
	CleaningFeeCents int64
	AddonsTotalCents int64
	CheckIn          time.Time
	CheckOut         time.Time
	GuestCount       int32
	Currency         string
}

// ComputeStayQuote prices a stay. Nights are the ceiling of the day span
// with a floor of one night; malformed or reversed date ranges clamp to
// the floor rather than erroring, for parity with rows priced by the
// legacy system. Stays never carry risk flags and always qualify for
// instant booking.
func ComputeStayQuote(in StayQuoteInput) Quote {
	nights := int(math.Ceil(in.CheckOut.Sub(in.CheckIn).Hours() / 24))
	if nights < 1 {
		nights = 1
	}

	subtotal := in.NightlyRateCents * int64(nights)
	total := subtotal + in.CleaningFeeCents + in.AddonsTotalCents

	return Quote{
		Kind:             domain.BookingKindStay,
		Mode:             domain.BookingModeInstant,
		Nights:           nights,
		NightlyRateCents: in.NightlyRateCents,
		SubtotalCents:    subtotal,
		FeesCents:        in.CleaningFeeCents,
		AddonsTotalCents: in.AddonsTotalCents,
		TotalCents:       total,
		Currency:         in.Currency,
		GuestCount:       in.GuestCount,
		RiskFlags:        nil,
	}
}

// EventQuoteInput carries everything needed to price an event or film
// shoot and evaluate the instant-book policy gate.
type EventQuoteInput struct {
	EventType         domain.EventType
	Start             time.Time
	End               time.Time
	GuestCount        int32
	EstimatedVehicles int32

	HourlyRateCents int64
	MinHours        int
	DayRateHours    int
	DayRateCents    *int64

	CleaningFeeCents int64
	DepositCents     int64
	AddonsTotalCents int64

	AllowInstantBook bool
	// CurfewMinutes is the property curfew as minutes after midnight.
	// Nil disables the late-end check.
	CurfewMinutes *int

	Alcohol        bool
	AmplifiedSound bool

	Currency string
}

// ComputeEventQuote prices an event window and derives its risk flags.
// The deposit is tracked on the quote but never added to the charged
// total; it becomes a separate manual-capture hold downstream.
func ComputeEventQuote(in EventQuoteInput) Quote {
	durationHours := int(math.Ceil(in.End.Sub(in.Start).Hours()))
	if durationHours < 0 {
		durationHours = 0
	}

	billableHours := durationHours
	if billableHours < in.MinHours {
		billableHours = in.MinHours
	}

	var subtotal int64
	dayRateApplied := false
	if in.DayRateCents != nil && in.DayRateHours > 0 && durationHours >= in.DayRateHours {
		subtotal = *in.DayRateCents
		dayRateApplied = true
	} else {
		subtotal = in.HourlyRateCents * int64(billableHours)
	}

	total := subtotal + in.CleaningFeeCents + in.AddonsTotalCents

	var flags []domain.RiskFlag
	if in.Alcohol {
		flags = append(flags, domain.RiskFlagAlcohol)
	}
	if in.AmplifiedSound {
		flags = append(flags, domain.RiskFlagAmplifiedSound)
	}
	if in.EstimatedVehicles > MaxInstantVehicles {
		flags = append(flags, domain.RiskFlagOverParking)
	}
	if in.CurfewMinutes != nil && minuteOfDay(in.End) > *in.CurfewMinutes {
		flags = append(flags, domain.RiskFlagLateEnd)
	}
	switch in.EventType {
	case domain.EventTypeWedding:
		flags = append(flags, domain.RiskFlagWedding)
	case domain.EventTypeProduction:
		flags = append(flags, domain.RiskFlagProduction)
	}
	if durationHours <= 0 {
		flags = append(flags, domain.RiskFlagInvalidDuration)
	}

	mode := domain.BookingModeRequest
	if in.AllowInstantBook &&
		in.GuestCount <= MaxInstantGuests &&
		!in.Alcohol && !in.AmplifiedSound &&
		in.EstimatedVehicles <= MaxInstantVehicles &&
		in.EventType != domain.EventTypeWedding &&
		in.EventType != domain.EventTypeProduction &&
		len(flags) == 0 {
		mode = domain.BookingModeInstant
	}

	return Quote{
		Kind:              domain.BookingKindEvent,
		Mode:              mode,
		EventType:         in.EventType,
		DurationHours:     durationHours,
		BillableHours:     billableHours,
		HourlyRateCents:   in.HourlyRateCents,
		DayRateCents:      in.DayRateCents,
		DayRateApplied:    dayRateApplied,
		SubtotalCents:     subtotal,
		FeesCents:         in.CleaningFeeCents,
		AddonsTotalCents:  in.AddonsTotalCents,
		DepositCents:      in.DepositCents,
		TotalCents:        total,
		Currency:          in.Currency,
		GuestCount:        in.GuestCount,
		EstimatedVehicles: in.EstimatedVehicles,
		RiskFlags:         flags,
	}
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
