package controllers

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"aire-backend/middleware"
	"aire-backend/models"
	"aire-backend/services"
	"aire-backend/utils"
)

// EmailController lets a partner send themselves a preview of the
// confirmation email. The limiter is an injected capability, one send per
// window per partner.
type EmailController struct {
	Partners *services.PartnerService
	Bookings *services.BookingService
	Email    *services.EmailService
	Limiter  services.RateLimiter
}

func NewEmailController(partners *services.PartnerService, bookings *services.BookingService, email *services.EmailService, limiter services.RateLimiter) *EmailController {
	return &EmailController{Partners: partners, Bookings: bookings, Email: email, Limiter: limiter}
}

func (ctrl *EmailController) SendTestEmail(c *gin.Context) {
	partnerID, err := ctrl.Partners.ResolvePartnerID(middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	if wait, ok := ctrl.Limiter.Reserve(partnerID); !ok {
		seconds := int(math.Ceil(wait.Seconds()))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Please wait %d seconds before sending another test email", seconds),
		})
		return
	}

	partner, err := ctrl.Partners.FindByID(partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snapshot, days := ctrl.sampleContent(partnerID)
	to := utils.EnvOrDefault("TEST_EMAIL", "test@example.com")

	if err := ctrl.Email.SendConfirmation(services.ConfirmationEmail{
		To:           to,
		CustomerName: "Test Customer",
		PartnerName:  partner.Subdomain,
		BookingID:    "test-preview",
		Resort:       snapshot,
		Itinerary:    days,
		Test:         true,
	}); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send test email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Test email sent to %s", to)})
}

// sampleContent prefers the partner's latest booking; a partner without
// bookings gets canned preview data.
func (ctrl *EmailController) sampleContent(partnerID string) (models.ResortSnapshot, []models.ItineraryDay) {
	if booking, err := ctrl.Bookings.LatestForPartner(partnerID); err == nil {
		snapshot, snapErr := models.DecodeSnapshot(booking.ResortDetails)
		days, daysErr := models.DecodeItinerary(booking.ItineraryData)
		if snapErr == nil && daysErr == nil && len(days) == models.ItineraryDays {
			return snapshot, days
		}
	}
	return sampleSnapshot(), services.FallbackItinerary(nil)
}

func sampleSnapshot() models.ResortSnapshot {
	return models.ResortSnapshot{
		Name:      "Sample Luxury Resort",
		Location:  "Paradise Island",
		Amenities: []string{"Infinity Pool", "Private Beach", "Spa"},
	}
}
