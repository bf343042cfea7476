package domain

import "time"

type PaymentPurpose string

const (
	PaymentPurposeBookingTotal PaymentPurpose = "BOOKING_TOTAL"
	PaymentPurposeDepositHold  PaymentPurpose = "DEPOSIT_HOLD"
)

type CaptureMethod string

const (
	// CaptureMethodAutomatic charges as soon as the authorization
	// completes. Used for the booking total.
	CaptureMethodAutomatic CaptureMethod = "AUTOMATIC"
	// CaptureMethodManual authorizes now and captures or releases later.
	// Used for deposit holds.
	CaptureMethodManual CaptureMethod = "MANUAL"
)

// CaptureMethodFor maps an authorization purpose to its capture method.
func CaptureMethodFor(purpose PaymentPurpose) CaptureMethod {
	if purpose == PaymentPurposeDepositHold {
		return CaptureMethodManual
	}
	return CaptureMethodAutomatic
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Terminal reports whether the status can no longer change at the
// processor.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// Payment is one authorization attempt against the processor, scoped to
// a booking. A booking has at most one non-terminal payment per purpose;
// prior attempts are retained as history.
type Payment struct {
	ID            int64          `json:"id"`
	BookingID     int64          `json:"booking_id"`
	IntentID      string         `json:"intent_id"`
	Purpose       PaymentPurpose `json:"purpose"`
	CaptureMethod CaptureMethod  `json:"capture_method"`
	Status        PaymentStatus  `json:"status"`
	AmountCents   int64          `json:"amount_cents"`
	Currency      string         `json:"currency"`

	ChargeID       string     `json:"charge_id,omitempty"`
	FailureCode    string     `json:"failure_code,omitempty"`
	FailureMessage string     `json:"failure_message,omitempty"`
	ReleasedAt     *time.Time `json:"released_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
