package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/Bukenyae/medical-rentals-sub002/internal/domain"
	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

// systemCaller is the identity scheduled jobs act under. Admin role so
// the payment operations pass the manager check.
var systemCaller = service.Caller{ID: 0, Role: domain.RoleAdmin}

// CancelStaleDrafts cancels DRAFT bookings older than the configured
// stale-draft window. Drafts never block the calendar, so the sweep is
// purely a hygiene pass over abandoned carts.
func (jr *JobRunner) CancelStaleDrafts() {
	jr.runWithRecovery("CancelStaleDrafts", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Booking.StaleDraftDays)

		count, err := jr.store.BookingRepository.CancelStaleDrafts(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to cancel stale drafts", "error", err)
			return
		}
		logger.Info("Cancelled stale drafts", "count", count, "cutoff", cutoff.Format("2006-01-02"))
	})
}

// ReleaseOverdueHolds releases deposit authorizations still open past
// the configured window after checkout. Card networks expire manual
// holds on their own schedule; releasing first keeps the guest's
// statement clean and our state honest.
func (jr *JobRunner) ReleaseOverdueHolds() {
	jr.runWithRecovery("ReleaseOverdueHolds", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().AddDate(0, 0, -jr.config.Booking.HoldAutoReleaseDays)

		bookings, err := jr.store.BookingRepository.ListOverdueHolds(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list overdue holds", "error", err)
			return
		}

		released := 0
		for _, b := range bookings {
			if _, err := jr.services.Payment.ReleaseDeposit(ctx, systemCaller, b.ID); err != nil {
				var notFound *service.NotFoundError
				if errors.As(err, &notFound) {
					// Hold row already gone, nothing to release.
					continue
				}
				logger.Error("Failed to release overdue hold",
					"booking_id", b.ID,
					"reference_code", b.ReferenceCode,
					"error", err)
				continue
			}
			released++
			logger.Debug("Released overdue deposit hold",
				"booking_id", b.ID,
				"reference_code", b.ReferenceCode)
		}

		logger.Info("Released overdue holds", "eligible", len(bookings), "released", released)
	})
}

// SendPaymentReminders nudges guests whose bookings have sat in
// AWAITING_PAYMENT past the reminder window. Email failures are logged
// and skipped; the booking state is untouched.
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery("SendPaymentReminders", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().Add(-time.Duration(jr.config.Booking.PaymentReminderHours) * time.Hour)

		bookings, err := jr.store.BookingRepository.ListAwaitingPaymentSince(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list bookings awaiting payment", "error", err)
			return
		}

		sent := 0
		for _, b := range bookings {
			guest, err := jr.store.UserRepository.GetByID(ctx, b.GuestID)
			if err != nil || guest == nil {
				logger.Error("Failed to load guest for payment reminder", "booking_id", b.ID, "guest_id", b.GuestID, "error", err)
				continue
			}

			if err := jr.services.Email.SendPaymentReminderNotification(ctx, guest.Email, guest.Name, b.ReferenceCode, b.TotalCents, b.Currency); err != nil {
				logger.Error("Failed to send payment reminder",
					"booking_id", b.ID,
					"reference_code", b.ReferenceCode,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent payment reminders", "eligible", len(bookings), "sent", sent)
	})
}
