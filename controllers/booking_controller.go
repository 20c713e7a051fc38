package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aire-backend/middleware"
	"aire-backend/services"
)

// BookingController serves the dashboard's booking list. Reads are scoped by
// the session's resolved partner id, never by anything client-supplied.
type BookingController struct {
	Partners *services.PartnerService
	Bookings *services.BookingService
}

func NewBookingController(partners *services.PartnerService, bookings *services.BookingService) *BookingController {
	return &BookingController{Partners: partners, Bookings: bookings}
}

func (ctrl *BookingController) ListBookings(c *gin.Context) {
	partnerID, err := ctrl.Partners.ResolvePartnerID(middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	bookings, err := ctrl.Bookings.ListByPartner(partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
