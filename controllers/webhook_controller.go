package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"

	"aire-backend/models"
	"aire-backend/services"
)

const maxWebhookBody = 64 * 1024

// WebhookController reconciles asynchronous payment confirmations. Only a
// correctly signed gateway event can move a booking to paid; the client is
// never trusted for that transition.
type WebhookController struct {
	Payments *services.PaymentService
	Bookings *services.BookingService
	Partners *services.PartnerService
	Email    *services.EmailService
}

func NewWebhookController(payments *services.PaymentService, bookings *services.BookingService, partners *services.PartnerService, email *services.EmailService) *WebhookController {
	return &WebhookController{Payments: payments, Bookings: bookings, Partners: partners, Email: email}
}

// HandleStripeEvent verifies the signature, applies checkout completions and
// answers 200 for anything else. Signature failure is 400 with no state
// change.
func (ctrl *WebhookController) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "cannot read body")
		return
	}

	event, err := ctrl.Payments.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	if event.Type == "checkout.session.completed" {
		ctrl.applyCheckoutCompleted(event)
	}

	c.Status(http.StatusOK)
}

func (ctrl *WebhookController) applyCheckoutCompleted(event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Printf("cannot parse checkout session payload: %v", err)
		return
	}

	bookingID := sess.ClientReferenceID
	if bookingID == "" {
		return
	}

	customerEmail := sess.CustomerEmail
	customerName := "Valued Guest"
	if sess.CustomerDetails != nil {
		if sess.CustomerDetails.Email != "" {
			customerEmail = sess.CustomerDetails.Email
		}
		if sess.CustomerDetails.Name != "" {
			customerName = sess.CustomerDetails.Name
		}
	}

	booking, err := ctrl.Bookings.MarkPaid(bookingID, customerEmail, customerName)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			log.Printf("webhook references unknown booking %s", bookingID)
			return
		}
		log.Printf("failed to apply payment for booking %s: %v", bookingID, err)
		return
	}
	log.Printf("booking %s marked as paid", booking.ID)

	if customerEmail == "" {
		return
	}

	// Notification is best-effort: the committed payment stands either way.
	snapshot, err := models.DecodeSnapshot(booking.ResortDetails)
	if err != nil {
		log.Printf("skipping confirmation email, snapshot unreadable: %v", err)
		return
	}
	days, err := models.DecodeItinerary(booking.ItineraryData)
	if err != nil {
		log.Printf("skipping confirmation email, itinerary unreadable: %v", err)
		return
	}

	partnerName := "AIRE"
	if partner, err := ctrl.Partners.FindByID(booking.PartnerID); err == nil {
		partnerName = partner.Subdomain
	}

	if err := ctrl.Email.SendConfirmation(services.ConfirmationEmail{
		To:           customerEmail,
		CustomerName: customerName,
		PartnerName:  partnerName,
		BookingID:    booking.ID,
		Resort:       snapshot,
		Itinerary:    days,
	}); err != nil {
		log.Printf("confirmation email failed for booking %s: %v", booking.ID, err)
	}
}
