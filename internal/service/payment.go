package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v78"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/processor"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

type paymentService struct {
	bookingRepo  repository.BookingRepository
	paymentRepo  repository.PaymentRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	proc         processor.Client
	emailSvc     EmailService
	now          func() time.Time
}

func NewPaymentService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	proc processor.Client,
	emailSvc EmailService,
) PaymentService {
	return &paymentService{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		proc:         proc,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *paymentService) EnsurePaymentIntent(ctx context.Context, booking *domain.Booking, purpose domain.PaymentPurpose, amountCents int64, currency string) (*PaymentHandle, error) {
	latest, err := s.paymentRepo.LatestByPurpose(ctx, booking.ID, purpose)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if latest != nil && latest.IntentID != "" {
		live, err := s.proc.GetIntent(ctx, latest.IntentID)
		if err != nil {
			logger.WarnContext(ctx, "stale intent lookup failed, creating a fresh one",
				"booking_id", booking.ID, "intent_id", latest.IntentID, "error", err)
		} else if live.Amount == amountCents &&
			strings.EqualFold(string(live.Currency), currency) &&
			live.Status != stripe.PaymentIntentStatusCanceled {
			// Idempotent short-circuit: a matching live intent is reused
			// as-is so retried approvals never authorize twice.
			if uerr := s.paymentRepo.UpdateStatusByIntentID(ctx, live.ID, processor.NormalizeIntentStatus(live.Status), chargeIDOf(live)); uerr != nil {
				return nil, uerr
			}
			return handleFrom(live, purpose), nil
		}
	}

	return s.createIntent(ctx, booking, purpose, amountCents, currency)
}

func (s *paymentService) createIntent(ctx context.Context, booking *domain.Booking, purpose domain.PaymentPurpose, amountCents int64, currency string) (*PaymentHandle, error) {
	logger.ExternalServiceCall("processor", "create_intent", "booking_id", booking.ID, "purpose", purpose)
	pi, err := s.proc.CreateIntent(ctx, processor.CreateIntentParams{
		AmountCents:    amountCents,
		Currency:       strings.ToLower(currency),
		CaptureMethod:  captureMethodParam(purpose),
		Metadata:       intentMetadata(booking, purpose),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, Upstream("create intent", err)
	}

	pay := &domain.Payment{
		BookingID:     booking.ID,
		IntentID:      pi.ID,
		Purpose:       purpose,
		CaptureMethod: domain.CaptureMethodFor(purpose),
		Status:        processor.NormalizeIntentStatus(pi.Status),
		AmountCents:   amountCents,
		Currency:      currency,
	}
	if err := s.paymentRepo.Create(ctx, pay); err != nil {
		return nil, err
	}
	return handleFrom(pi, purpose), nil
}

func (s *paymentService) CreateCheckoutIntent(ctx context.Context, caller Caller, bookingID int64) (*PaymentHandle, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, Validationf("only the booking guest may open checkout")
	}
	if booking.Status.Terminal() {
		return nil, Conflictf("booking %d is %s", bookingID, booking.Status)
	}

	if booking.PaymentIntentID != nil {
		return s.reuseCheckoutIntent(ctx, booking)
	}

	if booking.Status != domain.BookingStatusSubmitted {
		return nil, Conflictf("booking %d is %s, checkout is not open", bookingID, booking.Status)
	}

	// First creation: the intent column claim is a conditional write, so
	// concurrent retries produce exactly one linked intent. The loser
	// cancels its processor-side intent before reporting the conflict.
	pi, err := s.proc.CreateIntent(ctx, processor.CreateIntentParams{
		AmountCents:    booking.TotalCents,
		Currency:       strings.ToLower(booking.Currency),
		CaptureMethod:  captureMethodParam(domain.PaymentPurposeBookingTotal),
		Metadata:       intentMetadata(booking, domain.PaymentPurposeBookingTotal),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, Upstream("create intent", err)
	}

	if err := s.bookingRepo.ClaimPaymentIntent(ctx, bookingID, pi.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			if _, cerr := s.proc.CancelIntent(ctx, pi.ID); cerr != nil {
				logger.ErrorContext(ctx, "compensating cancel failed, intent may be orphaned",
					"booking_id", bookingID, "intent_id", pi.ID, "error", cerr)
			}
			return nil, Conflictf("checkout already in progress for booking %d", bookingID)
		}
		return nil, err
	}

	pay := &domain.Payment{
		BookingID:     bookingID,
		IntentID:      pi.ID,
		Purpose:       domain.PaymentPurposeBookingTotal,
		CaptureMethod: domain.CaptureMethodAutomatic,
		Status:        processor.NormalizeIntentStatus(pi.Status),
		AmountCents:   booking.TotalCents,
		Currency:      booking.Currency,
	}
	if err := s.paymentRepo.Create(ctx, pay); err != nil {
		return nil, err
	}
	return handleFrom(pi, domain.PaymentPurposeBookingTotal), nil
}

// reuseCheckoutIntent handles checkout reloads for a booking that
// already carries an intent: succeeded intents are returned untouched,
// canceled ones are replaced, anything else is amended in place.
func (s *paymentService) reuseCheckoutIntent(ctx context.Context, booking *domain.Booking) (*PaymentHandle, error) {
	live, err := s.proc.GetIntent(ctx, *booking.PaymentIntentID)
	if err != nil {
		return nil, Upstream("get intent", err)
	}

	switch live.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return handleFrom(live, domain.PaymentPurposeBookingTotal), nil
	case stripe.PaymentIntentStatusCanceled:
		handle, err := s.createIntent(ctx, booking, domain.PaymentPurposeBookingTotal, booking.TotalCents, booking.Currency)
		if err != nil {
			return nil, err
		}
		if err := s.bookingRepo.SetPaymentIntent(ctx, booking.ID, handle.IntentID); err != nil {
			return nil, err
		}
		return handle, nil
	default:
		updated, err := s.proc.UpdateIntent(ctx, live.ID, processor.UpdateIntentParams{
			AmountCents: booking.TotalCents,
			Currency:    strings.ToLower(booking.Currency),
			Metadata:    intentMetadata(booking, domain.PaymentPurposeBookingTotal),
		})
		if err != nil {
			return nil, Upstream("update intent", err)
		}
		return handleFrom(updated, domain.PaymentPurposeBookingTotal), nil
	}
}

func (s *paymentService) Capture(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(ctx, s.propertyRepo, caller, booking); err != nil {
		return nil, err
	}

	total, err := s.paymentRepo.LatestByPurpose(ctx, bookingID, domain.PaymentPurposeBookingTotal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Conflictf("booking %d has no total payment to capture", bookingID)
		}
		return nil, err
	}

	live, err := s.proc.GetIntent(ctx, total.IntentID)
	if err != nil {
		return nil, Upstream("get intent", err)
	}
	if live.Status != stripe.PaymentIntentStatusSucceeded && live.Status != stripe.PaymentIntentStatusProcessing {
		return nil, Conflictf("booking total is %s, not settled", live.Status)
	}
	if err := s.paymentRepo.UpdateStatusByIntentID(ctx, live.ID, processor.NormalizeIntentStatus(live.Status), chargeIDOf(live)); err != nil {
		return nil, err
	}

	var depositStatus stripe.PaymentIntentStatus
	deposit, err := s.paymentRepo.LatestByPurpose(ctx, bookingID, domain.PaymentPurposeDepositHold)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if deposit != nil {
		depositLive, err := s.proc.GetIntent(ctx, deposit.IntentID)
		if err != nil {
			return nil, Upstream("get intent", err)
		}
		depositStatus = depositLive.Status
	}

	settled := resolveSettlement(true, depositStatus)
	ok, err := s.bookingRepo.MarkConfirmed(ctx, bookingID, settled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Conflictf("booking %d is %s and cannot confirm", bookingID, booking.Status)
	}

	booking.Status = settled
	booking.BlocksCalendar = true
	s.notifyGuestConfirmed(ctx, booking)
	return booking, nil
}

// resolveSettlement decides the post-capture booking status purely from
// "total settled?" and the live deposit-intent status. An authorization
// still awaiting manual capture keeps the hold-open variant.
func resolveSettlement(totalSettled bool, depositStatus stripe.PaymentIntentStatus) domain.BookingStatus {
	if !totalSettled {
		return domain.BookingStatusAwaitingPayment
	}
	if depositStatus == stripe.PaymentIntentStatusRequiresCapture {
		return domain.BookingStatusConfirmedHoldOpen
	}
	return domain.BookingStatusConfirmed
}

func (s *paymentService) ReleaseDeposit(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(ctx, s.propertyRepo, caller, booking); err != nil {
		return nil, err
	}

	deposit, err := s.paymentRepo.LatestByPurpose(ctx, bookingID, domain.PaymentPurposeDepositHold)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("booking %d has no deposit hold", bookingID)
		}
		return nil, err
	}

	live, err := s.proc.GetIntent(ctx, deposit.IntentID)
	if err != nil {
		return nil, Upstream("get intent", err)
	}
	if live.Status == stripe.PaymentIntentStatusRequiresCapture {
		if _, err := s.proc.CancelIntent(ctx, deposit.IntentID); err != nil {
			return nil, Upstream("cancel intent", err)
		}
	}

	if err := s.paymentRepo.MarkReleased(ctx, deposit.ID, s.now().UTC()); err != nil {
		return nil, err
	}

	err = s.bookingRepo.UpdateStatus(ctx, bookingID,
		domain.DepositReleaseEligibleStatuses, domain.BookingStatusDepositReleased, false)
	switch {
	case err == nil:
		booking.Status = domain.BookingStatusDepositReleased
		booking.BlocksCalendar = false
	case errors.Is(err, repository.ErrConflict):
		// The hold itself is released either way; the status only
		// advances from an eligible post-confirmation state.
		logger.InfoContext(ctx, "deposit released without status advance",
			"booking_id", bookingID, "status", booking.Status)
	default:
		return nil, err
	}

	s.notifyGuestDepositReleased(ctx, booking)
	return booking, nil
}

func (s *paymentService) loadBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("booking %d not found", bookingID)
		}
		return nil, err
	}
	return booking, nil
}

func (s *paymentService) notifyGuestConfirmed(ctx context.Context, booking *domain.Booking) {
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

func (s *paymentService) notifyGuestDepositReleased(ctx context.Context, booking *domain.Booking) {
	guest, _ := s.userRepo.GetByID(ctx, booking.GuestID)
	if guest == nil {
		return
	}
	_ = s.emailSvc.SendDepositReleasedNotification(ctx, guest.Email, guest.Name, booking.ReferenceCode)
}

// requireManager allows admins and the owner of the booked property.
func requireManager(ctx context.Context, properties repository.PropertyRepository, caller Caller, booking *domain.Booking) error {
	if caller.Role == domain.RoleAdmin {
		return nil
	}
	if !caller.Role.CanApprove() {
		return Validationf("caller may not manage booking %d", booking.ID)
	}
	prop, err := properties.GetByID(ctx, booking.PropertyID)
	if err != nil {
		return err
	}
	if prop.OwnerID != caller.ID {
		return Validationf("caller may not manage booking %d", booking.ID)
	}
	return nil
}

func captureMethodParam(purpose domain.PaymentPurpose) string {
	if domain.CaptureMethodFor(purpose) == domain.CaptureMethodManual {
		return string(stripe.PaymentIntentCaptureMethodManual)
	}
	return string(stripe.PaymentIntentCaptureMethodAutomatic)
}

func intentMetadata(booking *domain.Booking, purpose domain.PaymentPurpose) map[string]string {
	md := map[string]string{
		"booking_id":  strconv.FormatInt(booking.ID, 10),
		"purpose":     string(purpose),
		"kind":        string(booking.Kind),
		"property_id": strconv.FormatInt(booking.PropertyID, 10),
		"guest_count": strconv.FormatInt(int64(booking.GuestCount), 10),
		"start_at":    booking.StartAt.UTC().Format(time.RFC3339),
		"end_at":      booking.EndAt.UTC().Format(time.RFC3339),
	}
	if booking.CheckInDate != nil {
		md["check_in"] = booking.CheckInDate.Format("2006-01-02")
	}
	if booking.CheckOutDate != nil {
		md["check_out"] = booking.CheckOutDate.Format("2006-01-02")
	}
	return md
}

func chargeIDOf(pi *stripe.PaymentIntent) string {
	if pi.LatestCharge != nil {
		return pi.LatestCharge.ID
	}
	return ""
}

func handleFrom(pi *stripe.PaymentIntent, purpose domain.PaymentPurpose) *PaymentHandle {
	return &PaymentHandle{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       processor.NormalizeIntentStatus(pi.Status),
		Purpose:      purpose,
		AmountCents:  pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
	}
}
