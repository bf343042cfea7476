package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/pricing"
	"github.com/Bukenyae/medical-rentals-sub002/internal/repository"
)

type bookingService struct {
	bookingRepo  repository.BookingRepository
	paymentRepo  repository.PaymentRepository
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	noteRepo     repository.NotificationRepository
	paymentSvc   PaymentService
	emailSvc     EmailService
	now          func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	paymentRepo repository.PaymentRepository,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	paymentSvc PaymentService,
	emailSvc EmailService,
) BookingService {
	return &bookingService{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		noteRepo:     noteRepo,
		paymentSvc:   paymentSvc,
		emailSvc:     emailSvc,
		now:          time.Now,
	}
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*pricing.Quote, error) {
	prop, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("property %d not found", req.PropertyID)
		}
		return nil, err
	}
	return s.quoteAgainst(prop, req)
}

func (s *bookingService) quoteAgainst(prop *domain.Property, req QuoteRequest) (*pricing.Quote, error) {
	if req.GuestCount <= 0 {
		return nil, Validationf("guest_count must be positive")
	}

	switch req.Kind {
	case domain.BookingKindStay:
		q := pricing.ComputeStayQuote(pricing.StayQuoteInput{
			NightlyRateCents: prop.NightlyRateCents,
			CleaningFeeCents: prop.CleaningFeeCents,
			AddonsTotalCents: req.AddonsTotalCents,
			CheckIn:          req.StartAt,
			CheckOut:         req.EndAt,
			GuestCount:       req.GuestCount,
			Currency:         prop.Currency,
		})
		return &q, nil
	case domain.BookingKindEvent, domain.BookingKindFilm:
		eventType := req.EventType
		if req.Kind == domain.BookingKindFilm && eventType == "" {
			eventType = domain.EventTypeProduction
		}
		q := pricing.ComputeEventQuote(pricing.EventQuoteInput{
			EventType:         eventType,
			Start:             req.StartAt,
			End:               req.EndAt,
			GuestCount:        req.GuestCount,
			EstimatedVehicles: req.EstimatedVehicles,
			HourlyRateCents:   prop.HourlyRateCents,
			MinHours:          prop.MinEventHours,
			DayRateHours:      prop.DayRateHours,
			DayRateCents:      prop.DayRateCents,
			CleaningFeeCents:  prop.CleaningFeeCents,
			DepositCents:      prop.DepositCents,
			AddonsTotalCents:  req.AddonsTotalCents,
			AllowInstantBook:  prop.AllowInstantBook,
			CurfewMinutes:     prop.CurfewMinutes,
			Alcohol:           req.Alcohol,
			AmplifiedSound:    req.AmplifiedSound,
			Currency:          prop.Currency,
		})
		q.Kind = req.Kind
		return &q, nil
	default:
		return nil, Validationf("unknown booking kind %q", req.Kind)
	}
}

func (s *bookingService) CreateDraft(ctx context.Context, caller Caller, req QuoteRequest) (*domain.Booking, error) {
	prop, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("property %d not found", req.PropertyID)
		}
		return nil, err
	}

	quote, err := s.quoteAgainst(prop, req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := &domain.Booking{
		ReferenceCode:    newReferenceCode(),
		PropertyID:       prop.ID,
		GuestID:          caller.ID,
		Kind:             quote.Kind,
		Mode:             quote.Mode,
		Status:           domain.BookingStatusDraft,
		StartAt:          req.StartAt.UTC(),
		EndAt:            req.EndAt.UTC(),
		GuestCount:       req.GuestCount,
		SubtotalCents:    quote.SubtotalCents,
		FeesCents:        quote.FeesCents,
		AddonsTotalCents: quote.AddonsTotalCents,
		DepositCents:     quote.DepositCents,
		TotalCents:       quote.TotalCents,
		Currency:         quote.Currency,
		TotalLegacy:      float64(quote.TotalCents) / 100,
		PricingSnapshot:  quote.Snapshot(now),
		BlocksCalendar:   false,
	}
	if quote.Kind == domain.BookingKindStay {
		checkIn := dateOf(req.StartAt)
		checkOut := dateOf(req.EndAt)
		booking.CheckInDate = &checkIn
		booking.CheckOutDate = &checkOut
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) Submit(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, Validationf("only the booking guest may submit")
	}
	if booking.Status != domain.BookingStatusDraft {
		return nil, Conflictf("booking %d is %s, only drafts can be submitted", bookingID, booking.Status)
	}
	if booking.PricingSnapshot == nil {
		return nil, Conflictf("booking %d has no pricing snapshot", bookingID)
	}

	// The stored snapshot, not the raw request, is authoritative for the
	// resolved mode at submission.
	mode := booking.PricingSnapshot.ResolveMode()
	blocksCalendar := mode == domain.BookingModeInstant

	if err := s.bookingRepo.MarkSubmitted(ctx, bookingID, mode, booking.PricingSnapshot, blocksCalendar); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("booking %d was already submitted", bookingID)
		}
		return nil, err
	}
	if len(booking.PricingSnapshot.RiskFlags) > 0 {
		if err := s.bookingRepo.AddRiskFlags(ctx, bookingID, booking.PricingSnapshot.RiskFlags); err != nil {
			return nil, err
		}
	}

	booking.Status = domain.BookingStatusSubmitted
	booking.Mode = mode
	booking.BlocksCalendar = blocksCalendar

	s.notifyOwnerOfRequest(ctx, booking)
	return booking, nil
}

func (s *bookingService) Approve(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, *PaymentHandle, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireManager(ctx, caller, booking); err != nil {
		return nil, nil, err
	}
	if booking.Mode != domain.BookingModeRequest {
		return nil, nil, Conflictf("booking %d is instant-book, approval does not apply", bookingID)
	}
	if booking.Status != domain.BookingStatusSubmitted {
		return nil, nil, Conflictf("booking %d is %s, only submitted requests can be approved", bookingID, booking.Status)
	}

	total, err := s.paymentSvc.EnsurePaymentIntent(ctx, booking, domain.PaymentPurposeBookingTotal, booking.TotalCents, booking.Currency)
	if err != nil {
		return nil, nil, err
	}
	if booking.DepositCents > 0 {
		if _, err := s.paymentSvc.EnsurePaymentIntent(ctx, booking, domain.PaymentPurposeDepositHold, booking.DepositCents, booking.Currency); err != nil {
			return nil, nil, err
		}
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID,
		[]domain.BookingStatus{domain.BookingStatusSubmitted},
		domain.BookingStatusAwaitingPayment, true); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, Conflictf("booking %d changed state during approval", bookingID)
		}
		return nil, nil, err
	}
	if err := s.bookingRepo.SetPaymentIntent(ctx, bookingID, total.IntentID); err != nil {
		return nil, nil, err
	}

	booking.Status = domain.BookingStatusAwaitingPayment
	booking.BlocksCalendar = true
	booking.PaymentIntentID = &total.IntentID

	s.notifyGuestPaymentDue(ctx, booking)
	return booking, total, nil
}

func (s *bookingService) Cancel(ctx context.Context, caller Caller, bookingID int64, reason string) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != caller.ID {
		if err := s.requireManager(ctx, caller, booking); err != nil {
			return nil, err
		}
	}
	if booking.Status.Terminal() {
		return nil, Conflictf("booking %d is already %s", bookingID, booking.Status)
	}

	// Guest-initiated cancellation leaves the calendar block in place
	// for manual review; only the payment-failure path clears it.
	if err := s.bookingRepo.MarkCancelled(ctx, bookingID, "", reason, nil, false); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("booking %d is already cancelled", bookingID)
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	booking.FailureMessage = reason
	return booking, nil
}

func (s *bookingService) CheckIn(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	return s.advance(ctx, caller, bookingID,
		[]domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusConfirmedHoldOpen},
		domain.BookingStatusCheckedIn)
}

func (s *bookingService) Complete(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, error) {
	return s.advance(ctx, caller, bookingID,
		[]domain.BookingStatus{domain.BookingStatusCheckedIn},
		domain.BookingStatusCompleted)
}

func (s *bookingService) advance(ctx context.Context, caller Caller, bookingID int64, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, caller, booking); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, to, to.BlocksCalendar()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("booking %d is %s, cannot move to %s", bookingID, booking.Status, to)
		}
		return nil, err
	}
	booking.Status = to
	booking.BlocksCalendar = to.BlocksCalendar()
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, caller Caller, bookingID int64) (*domain.Booking, []domain.Payment, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if booking.GuestID != caller.ID {
		if err := s.requireManager(ctx, caller, booking); err != nil {
			return nil, nil, err
		}
	}
	payments, err := s.paymentRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return booking, payments, nil
}

func (s *bookingService) List(ctx context.Context, caller Caller, propertyID int64, page, pageSize int32) ([]domain.Booking, int32, error) {
	if propertyID > 0 && caller.Role.CanApprove() {
		return s.bookingRepo.ListByProperty(ctx, propertyID, page, pageSize)
	}
	return s.bookingRepo.ListByGuest(ctx, caller.ID, page, pageSize)
}

func (s *bookingService) getBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("booking %d not found", bookingID)
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) requireManager(ctx context.Context, caller Caller, booking *domain.Booking) error {
	return requireManager(ctx, s.propertyRepo, caller, booking)
}

func (s *bookingService) notifyOwnerOfRequest(ctx context.Context, booking *domain.Booking) {
	prop, err := s.propertyRepo.GetByID(ctx, booking.PropertyID)
	if err != nil {
		logger.WarnContext(ctx, "submit notification skipped", "booking_id", booking.ID, "error", err)
		return
	}
	owner, _ := s.userRepo.GetByID(ctx, prop.OwnerID)
	guest, _ := s.userRepo.GetByID(ctx, booking.GuestID)
	if owner == nil || guest == nil {
		return
	}
	_ = s.emailSvc.SendBookingRequestNotification(ctx, owner.Email, guest.Name, prop.Title, booking.ReferenceCode)

	notif := &domain.Notification{
		UserID:  owner.ID,
		Title:   "New Booking Request",
		Message: fmt.Sprintf("%s requested %s (%s)", guest.Name, prop.Title, booking.ReferenceCode),
		Attributes: map[string]string{
			"type":       "BOOKING_SUBMITTED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	_ = s.noteRepo.Create(ctx, notif)
}

func (s *bookingService) notifyGuestPaymentDue(ctx context.Context, booking *domain.Booking) {
	guest, _ := s.userRepo.GetByID(ctx, booking.GuestID)
	if guest == nil {
		return
	}
	prop, _ := s.propertyRepo.GetByID(ctx, booking.PropertyID)
	if prop == nil {
		return
	}
	_ = s.emailSvc.SendPaymentRequestNotification(ctx, guest.Email, guest.Name, prop.Title, booking.ReferenceCode, booking.TotalCents, booking.Currency)

	notif := &domain.Notification{
		UserID:  guest.ID,
		Title:   "Booking Approved",
		Message: fmt.Sprintf("Your request for %s was approved, payment is due", prop.Title),
		Attributes: map[string]string{
			"type":       "BOOKING_APPROVED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	_ = s.noteRepo.Create(ctx, notif)
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
