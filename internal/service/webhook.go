package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	stripe "github.com/stripe/stripe-go/v78"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/processor"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

type webhookService struct {
	verifier     processor.EventVerifier
	bookingRepo  repository.BookingRepository
	paymentRepo  repository.PaymentRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	emailSvc     EmailService
	now          func() time.Time
}

func NewWebhookService(
	verifier processor.EventVerifier,
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
) WebhookService {
	return &webhookService{
		verifier:     verifier,
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *webhookService) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		return Validationf("webhook signature verification failed")
	}

	switch string(event.Type) {
	case eventIntentSucceeded, eventIntentFailed:
	default:
		logger.DebugContext(ctx, "ignoring webhook event", "type", event.Type)
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return Validationf("webhook payload does not carry a payment intent")
	}

	purpose := domain.PaymentPurpose(pi.Metadata["purpose"])
	if purpose == "" {
		// Events minted before purposes existed carry no marker; they
		// were always booking totals.
		logger.InfoContext(ctx, "webhook event without purpose, assuming booking total",
			"intent_id", pi.ID, "event_id", event.ID)
		purpose = domain.PaymentPurposeBookingTotal
	}

	if string(event.Type) == eventIntentSucceeded {
		return s.applySucceeded(ctx, &pi, purpose)
	}
	return s.applyFailed(ctx, &pi, purpose)
}

func (s *webhookService) applySucceeded(ctx context.Context, pi *stripe.PaymentIntent, purpose domain.PaymentPurpose) error {
	if err := s.paymentRepo.UpdateStatusByIntentID(ctx, pi.ID, domain.PaymentStatusSucceeded, chargeIDOf(pi)); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	// Holds settle through the capture flow, never through this event.
	if purpose == domain.PaymentPurposeDepositHold {
		return nil
	}

	if bookingID, ok := metadataBookingID(pi); ok {
		confirmed, err := s.confirmBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
		logger.WarnContext(ctx, "webhook named a booking that cannot confirm",
			"booking_id", bookingID, "intent_id", pi.ID)
	}

	// Reattachment: a booking that already references this intent id is
	// authoritative even when metadata is missing or stale.
	booking, err := s.bookingRepo.GetByIntentID(ctx, pi.ID)
	if err == nil {
		if _, err := s.confirmBooking(ctx, booking.ID); err != nil {
			return err
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return s.createFromMetadata(ctx, pi)
}

func (s *webhookService) applyFailed(ctx context.Context, pi *stripe.PaymentIntent, purpose domain.PaymentPurpose) error {
	code, msg := failureDetails(pi)
	if err := s.paymentRepo.MarkFailedByIntentID(ctx, pi.ID, code, msg); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	bookingID, byMeta := metadataBookingID(pi)
	if !byMeta {
		booking, err := s.bookingRepo.GetByIntentID(ctx, pi.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				logger.WarnContext(ctx, "payment failure event matches no booking", "intent_id", pi.ID)
				return nil
			}
			return err
		}
		bookingID = booking.ID
	}

	if purpose == domain.PaymentPurposeDepositHold {
		// A failed hold is retryable: the booking returns to awaiting
		// payment instead of dying.
		err := s.bookingRepo.UpdateStatus(ctx, bookingID,
			domain.ConfirmableStatuses, domain.BookingStatusAwaitingPayment, true)
		if errors.Is(err, repository.ErrConflict) {
			logger.InfoContext(ctx, "deposit failure arrived for a settled booking",
				"booking_id", bookingID, "intent_id", pi.ID)
			return nil
		}
		return err
	}

	failedAt := s.now().UTC()
	if err := s.bookingRepo.MarkCancelled(ctx, bookingID, code, msg, &failedAt, true); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Already cancelled; redelivery converges to a no-op.
			return nil
		}
		return err
	}

	s.notifyGuestPaymentFailed(ctx, bookingID, msg)
	return nil
}

// confirmBooking converges a booking onto its confirmed state, picking
// the hold-open variant when a local deposit hold is still live.
func (s *webhookService) confirmBooking(ctx context.Context, bookingID int64) (bool, error) {
	status := domain.BookingStatusConfirmed
	deposit, err := s.paymentRepo.LatestByPurpose(ctx, bookingID, domain.PaymentPurposeDepositHold)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if deposit != nil && !deposit.Status.Terminal() {
		status = domain.BookingStatusConfirmedHoldOpen
	}

	ok, err := s.bookingRepo.MarkConfirmed(ctx, bookingID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if ok {
		s.notifyGuestConfirmed(ctx, bookingID)
	}
	return ok, nil
}

// createFromMetadata is the recovery path for payments that succeeded
// without a linked local booking: when the event carries enough context
// to reconstruct one, a confirmed booking is created and the payment is
// attached to it.
func (s *webhookService) createFromMetadata(ctx context.Context, pi *stripe.PaymentIntent) error {
	propertyID, perr := strconv.ParseInt(pi.Metadata["property_id"], 10, 64)
	guestCount, gerr := strconv.ParseInt(pi.Metadata["guest_count"], 10, 32)
	startAt, serr := parseMetadataTime(pi.Metadata, "start_at", "check_in")
	endAt, eerr := parseMetadataTime(pi.Metadata, "end_at", "check_out")
	if perr != nil || gerr != nil || serr != nil || eerr != nil {
		logger.WarnContext(ctx, "succeeded payment matches no booking and metadata is not reconstructable",
			"intent_id", pi.ID)
		return nil
	}

	prop, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WarnContext(ctx, "fallback creation skipped, property unknown",
				"intent_id", pi.ID, "property_id", propertyID)
			return nil
		}
		return err
	}

	guestID, _ := strconv.ParseInt(pi.Metadata["guest_id"], 10, 64)
	kind := domain.BookingKind(pi.Metadata["kind"])
	if kind == "" {
		kind = domain.BookingKindStay
	}

	intentID := pi.ID
	booking := &domain.Booking{
		ReferenceCode:   newReferenceCode(),
		PropertyID:      prop.ID,
		GuestID:         guestID,
		Kind:            kind,
		Mode:            domain.BookingModeInstant,
		Status:          domain.BookingStatusConfirmed,
		StartAt:         startAt,
		EndAt:           endAt,
		GuestCount:      int32(guestCount),
		SubtotalCents:   pi.Amount,
		TotalCents:      pi.Amount,
		Currency:        string(pi.Currency),
		TotalLegacy:     float64(pi.Amount) / 100,
		BlocksCalendar:  true,
		PaymentIntentID: &intentID,
	}
	if kind == domain.BookingKindStay {
		checkIn := dateOf(startAt)
		checkOut := dateOf(endAt)
		booking.CheckInDate = &checkIn
		booking.CheckOutDate = &checkOut
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return err
	}

	pay := &domain.Payment{
		BookingID:     booking.ID,
		IntentID:      pi.ID,
		Purpose:       domain.PaymentPurposeBookingTotal,
		CaptureMethod: domain.CaptureMethodAutomatic,
		Status:        domain.PaymentStatusSucceeded,
		AmountCents:   pi.Amount,
		Currency:      string(pi.Currency),
		ChargeID:      chargeIDOf(pi),
	}
	if err := s.paymentRepo.Create(ctx, pay); err != nil {
		return err
	}

	logger.InfoContext(ctx, "booking recreated from webhook metadata",
		"booking_id", booking.ID, "intent_id", pi.ID)
	return nil
}

func (s *webhookService) notifyGuestConfirmed(ctx context.Context, bookingID int64) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return
	}
	guest, _ := s.userRepo.GetByID(ctx, booking.GuestID)
	if guest == nil {
		return
	}
	prop, _ := s.propertyRepo.GetByID(ctx, booking.PropertyID)
	if prop == nil {
		return
	}
	_ = s.emailSvc.SendBookingConfirmedNotification(ctx, guest.Email, guest.Name, prop.Title, booking.ReferenceCode)
}

func (s *webhookService) notifyGuestPaymentFailed(ctx context.Context, bookingID int64, reason string) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return
	}
	guest, _ := s.userRepo.GetByID(ctx, booking.GuestID)
	if guest == nil {
		return
	}
	_ = s.emailSvc.SendPaymentFailedNotification(ctx, guest.Email, guest.Name, booking.ReferenceCode, reason)
}

func metadataBookingID(pi *stripe.PaymentIntent) (int64, bool) {
	raw, ok := pi.Metadata["booking_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseMetadataTime(md map[string]string, key, dateKey string) (time.Time, error) {
	if raw, ok := md[key]; ok {
		return time.Parse(time.RFC3339, raw)
	}
	return time.Parse("2006-01-02", md[dateKey])
}

func failureDetails(pi *stripe.PaymentIntent) (code, msg string) {
	if pi.LastPaymentError != nil {
		return string(pi.LastPaymentError.Code), pi.LastPaymentError.Msg
	}
	return "payment_failed", "payment was declined by the processor"
}
