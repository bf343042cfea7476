package domain

import "time"

type BookingKind string

const (
	BookingKindStay  BookingKind = "STAY"
	BookingKindEvent BookingKind = "EVENT"
	BookingKindFilm  BookingKind = "FILM"
)

type BookingMode string

const (
	// BookingModeInstant means the quote passed every instant-book policy
	// predicate and the booking is auto-approved at submission.
	BookingModeInstant BookingMode = "INSTANT"
	// BookingModeRequest means an owner or admin must review the booking
	// before any payment is collected.
	BookingModeRequest BookingMode = "REQUEST"
)

type BookingStatus string

const (
	BookingStatusDraft           BookingStatus = "DRAFT"
	BookingStatusSubmitted       BookingStatus = "SUBMITTED"
	BookingStatusApproved        BookingStatus = "APPROVED"
	BookingStatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED"
	// BookingStatusConfirmedHoldOpen is the confirmed variant that still
	// carries an uncaptured deposit authorization at the processor.
	BookingStatusConfirmedHoldOpen BookingStatus = "CONFIRMED_HOLD_OPEN"
	BookingStatusCheckedIn         BookingStatus = "CHECKED_IN"
	BookingStatusCompleted         BookingStatus = "COMPLETED"
	BookingStatusCancelled         BookingStatus = "CANCELLED"
	BookingStatusDepositReleased   BookingStatus = "DEPOSIT_RELEASED"
	// BookingStatusPaid only appears on rows imported from the legacy
	// system. It is accepted as input to the deposit-release transition
	// and never written by this engine.
	BookingStatusPaid BookingStatus = "PAID"
)

// CalendarBlockingStatuses are the statuses in which a booking reserves
// the property's availability.
var CalendarBlockingStatuses = []BookingStatus{
	BookingStatusApproved,
	BookingStatusAwaitingPayment,
	BookingStatusConfirmed,
	BookingStatusConfirmedHoldOpen,
	BookingStatusCheckedIn,
	BookingStatusCompleted,
}

// DepositReleaseEligibleStatuses are the statuses from which the booking
// may advance to DEPOSIT_RELEASED.
var DepositReleaseEligibleStatuses = []BookingStatus{
	BookingStatusConfirmed,
	BookingStatusConfirmedHoldOpen,
	BookingStatusCompleted,
	BookingStatusPaid,
}

// ConfirmableStatuses are the statuses the idempotent mark-confirmed
// convergence operation accepts. CONFIRMED and CONFIRMED_HOLD_OPEN are
// included so that a redelivered webhook converges to a no-op instead of
// a conflict.
var ConfirmableStatuses = []BookingStatus{
	BookingStatusSubmitted,
	BookingStatusApproved,
	BookingStatusAwaitingPayment,
	BookingStatusConfirmed,
	BookingStatusConfirmedHoldOpen,
}

func (s BookingStatus) BlocksCalendar() bool {
	for _, b := range CalendarBlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusDepositReleased
}

type EventType string

const (
	EventTypeWedding    EventType = "WEDDING"
	EventTypeProduction EventType = "PRODUCTION"
	EventTypeCorporate  EventType = "CORPORATE"
	EventTypeParty      EventType = "PARTY"
	EventTypeOther      EventType = "OTHER"
)

type Booking struct {
	ID            int64         `json:"id"`
	ReferenceCode string        `json:"reference_code"`
	PropertyID    int64         `json:"property_id"`
	GuestID       int64         `json:"guest_id"`
	Kind          BookingKind   `json:"kind"`
	Mode          BookingMode   `json:"mode"`
	Status        BookingStatus `json:"status"`

	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	// CheckInDate/CheckOutDate are the calendar-date projections of
	// StartAt/EndAt, populated for stays only and kept in sync with the
	// instants.
	CheckInDate  *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`
	GuestCount   int32      `json:"guest_count"`

	SubtotalCents    int64  `json:"subtotal_cents"`
	FeesCents        int64  `json:"fees_cents"`
	AddonsTotalCents int64  `json:"addons_total_cents"`
	DepositCents     int64  `json:"deposit_cents"`
	TotalCents       int64  `json:"total_cents"`
	Currency         string `json:"currency"`
	// TotalLegacy mirrors TotalCents as a decimal for screens that still
	// read the pre-migration column.
	TotalLegacy float64 `json:"total_legacy"`

	PricingSnapshot *PricingSnapshot `json:"pricing_snapshot,omitempty"`
	BlocksCalendar  bool             `json:"blocks_calendar"`

	// PaymentIntentID is the processor id of the total authorization
	// currently attached to this booking. At most one non-terminal value
	// at a time; the first checkout claim is a conditional write on this
	// column.
	PaymentIntentID *string `json:"payment_intent_id,omitempty"`

	FailureCode    string     `json:"failure_code,omitempty"`
	FailureMessage string     `json:"failure_message,omitempty"`
	FailedAt       *time.Time `json:"failed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RiskFlag string

const (
	RiskFlagAlcohol         RiskFlag = "ALCOHOL"
	RiskFlagAmplifiedSound  RiskFlag = "AMPLIFIED_SOUND"
	RiskFlagOverParking     RiskFlag = "OVER_PARKING"
	RiskFlagLateEnd         RiskFlag = "LATE_END"
	RiskFlagWedding         RiskFlag = "WEDDING"
	RiskFlagProduction      RiskFlag = "PRODUCTION"
	RiskFlagInvalidDuration RiskFlag = "INVALID_DURATION"
)

// BookingRiskFlag is one policy-exception marker attached at submission.
// Rows are immutable once written.
type BookingRiskFlag struct {
	ID        int64     `json:"id"`
	BookingID int64     `json:"booking_id"`
	Flag      RiskFlag  `json:"flag"`
	CreatedAt time.Time `json:"created_at"`
}
