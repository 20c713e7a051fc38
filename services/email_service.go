package services

import (
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"

	"aire-backend/models"
)

// EmailService sends booking confirmations through Resend. When no API key
// is configured it logs the send instead, so local flows keep working.
type EmailService struct {
	From   string
	client *resend.Client
}

func NewEmailService(apiKey string) *EmailService {
	s := &EmailService{From: "AIRE Resorts <bookings@resend.dev>"}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey)
	}
	return s
}

// ConfirmationEmail is the data rendered into one confirmation message.
type ConfirmationEmail struct {
	To           string
	CustomerName string
	PartnerName  string
	BookingID    string
	Resort       models.ResortSnapshot
	Itinerary    []models.ItineraryDay
	Test         bool
}

// SendConfirmation delivers the itinerary email. Callers on the payment path
// treat failure as log-and-continue; a confirmed payment is authoritative
// whether or not the notification goes out.
func (s *EmailService) SendConfirmation(msg ConfirmationEmail) error {
	subject := fmt.Sprintf("Your AI-Generated Itinerary for %s", msg.Resort.Name)
	if msg.Test {
		subject = "[TEST] " + subject
	}

	if s.client == nil {
		log.Printf("[MOCK EMAIL] to:%s subject:%q booking:%s", msg.To, subject, msg.BookingID)
		return nil
	}

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.From,
		To:      []string{msg.To},
		Subject: subject,
		Html:    renderConfirmationHTML(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	log.Printf("Confirmation email sent to %s (booking %s)", msg.To, msg.BookingID)
	return nil
}

func renderConfirmationHTML(msg ConfirmationEmail) string {
	esc := html.EscapeString

	var days strings.Builder
	for _, d := range msg.Itinerary {
		days.WriteString(fmt.Sprintf(`<div class="day"><h3>Day %d: %s</h3><ul>`, d.Day, esc(d.Title)))
		for _, a := range d.Activities {
			days.WriteString("<li>" + esc(a) + "</li>")
		}
		days.WriteString("</ul>")
		days.WriteString(fmt.Sprintf(
			"<p><strong>Breakfast:</strong> %s<br><strong>Lunch:</strong> %s<br><strong>Dinner:</strong> %s</p></div>",
			esc(d.Dining.Breakfast), esc(d.Dining.Lunch), esc(d.Dining.Dinner),
		))
	}

	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Booking Confirmation</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.day { border-top:1px solid #eee; padding-top:12px; margin-top:12px; }
.meta { color:#667; font-size:13px; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Your stay at %s is confirmed</h2>
    <p>Hi %s,</p>
    <p>Thank you for booking with %s. Your bespoke 5-day itinerary for %s in %s is below.</p>
    %s
    <p class="meta">Booking reference: %s</p>
  </div>
</div>
</body>
</html>`,
		esc(msg.Resort.Name), esc(msg.CustomerName), esc(msg.PartnerName),
		esc(msg.Resort.Name), esc(msg.Resort.Location), days.String(), esc(msg.BookingID))
}
