package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendPaymentRequestNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string, totalCents int64, currency string) error {
	subject := fmt.Sprintf("Your booking %s was approved - payment due", referenceCode)
	body := fmt.Sprintf("Hello %s,\n\nYour booking request for %s was approved.\n\nAmount due: %s\n\nPlease complete payment to confirm your booking.\n\nBest regards,\nThe Bookings Team",
		guestName, propertyTitle, formatAmount(totalCents, currency))
	return s.send(ctx, guestEmail, guestName, subject, body)
}

func (s *emailService) SendBookingConfirmedNotification(ctx context.Context, guestEmail, guestName, propertyTitle, referenceCode string) error {
	subject := fmt.Sprintf("Booking %s confirmed", referenceCode)
	body := fmt.Sprintf("Hello %s,\n\nYour booking for %s is confirmed. We look forward to hosting you.\n\nBest regards,\nThe Bookings Team",
		guestName, propertyTitle)
	return s.send(ctx, guestEmail, guestName, subject, body)
}

func (s *emailService) SendPaymentFailedNotification(ctx context.Context, guestEmail, guestName, referenceCode, reason string) error {
	subject := fmt.Sprintf("Payment failed for booking %s", referenceCode)
	body := fmt.Sprintf("Hello %s,\n\nYour payment for booking %s did not go through.", guestName, referenceCode)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe Bookings Team"
	return s.send(ctx, guestEmail, guestName, subject, body)
}

func (s *emailService) SendPaymentReminderNotification(ctx context.Context, guestEmail, guestName, referenceCode string, totalCents int64, currency string) error {
	subject := fmt.Sprintf("Payment reminder for booking %s", referenceCode)
	body := fmt.Sprintf("Hello %s,\n\nYour booking %s is still awaiting payment of %s. The reservation is held for you until payment completes.\n\nBest regards,\nThe Bookings Team",
		guestName, referenceCode, formatAmount(totalCents, currency))
	return s.send(ctx, guestEmail, guestName, subject, body)
}

func (s *emailService) SendDepositReleasedNotification(ctx context.Context, guestEmail, guestName, referenceCode string) error {
	subject := fmt.Sprintf("Deposit released for booking %s", referenceCode)
	body := fmt.Sprintf("Hello %s,\n\nThe security deposit hold for booking %s has been released. No charge was made.\n\nBest regards,\nThe Bookings Team",
		guestName, referenceCode)
	return s.send(ctx, guestEmail, guestName, subject, body)
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, ownerEmail, guestName, propertyTitle, referenceCode string) error {
	subject := fmt.Sprintf("New booking request for %s", propertyTitle)
	body := fmt.Sprintf("Hello,\n\n%s requested to book %s (reference %s). Please review and approve or decline the request.\n\nBest regards,\nThe Bookings Team",
		guestName, propertyTitle, referenceCode)
	return s.send(ctx, ownerEmail, "", subject, body)
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
