package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"aire-backend/models"
	"aire-backend/services"
)

type CreateStorefrontBookingPayload struct {
	ResortID      string `json:"resortId" binding:"required"`
	Nights        string `json:"nights"`
	KidsAges      string `json:"kidsAges"`
	CustomerEmail string `json:"customerEmail"`
}

// StorefrontController serves the public tenant pages reached through the
// gatekeeper rewrite. The partner identity comes from the path subdomain,
// which the gatekeeper has already validated against the tenant directory;
// it is re-fetched here and cross-checked against every referenced entity.
type StorefrontController struct {
	Partners *services.PartnerService
	Resorts  *services.ResortService
	Bookings *services.BookingService
}

func NewStorefrontController(partners *services.PartnerService, resorts *services.ResortService, bookings *services.BookingService) *StorefrontController {
	return &StorefrontController{Partners: partners, Resorts: resorts, Bookings: bookings}
}

func (ctrl *StorefrontController) partnerFromPath(c *gin.Context) (*models.Partner, bool) {
	partner, err := ctrl.Partners.FindBySubdomain(c.Param("subdomain"))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return nil, false
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return nil, false
	}
	return partner, true
}

// Storefront returns the tenant's public landing data: brand plus resorts.
func (ctrl *StorefrontController) Storefront(c *gin.Context) {
	partner, ok := ctrl.partnerFromPath(c)
	if !ok {
		return
	}

	resorts, err := ctrl.Resorts.ListByPartner(partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"partner": gin.H{
			"subdomain": partner.Subdomain,
			"brandTone": partner.BrandTone,
			"logoUrl":   partner.LogoURL,
		},
		"resorts": resorts,
	})
}

// CreateBooking starts a checkout for one of this tenant's resorts. The
// resort must belong to the path partner; the booking service enforces the
// compound check again before any row is written.
func (ctrl *StorefrontController) CreateBooking(c *gin.Context) {
	var payload CreateStorefrontBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resortId is required"})
		return
	}

	partner, ok := ctrl.partnerFromPath(c)
	if !ok {
		return
	}

	nights := 0
	if strings.TrimSpace(payload.Nights) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(payload.Nights))
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nights must be a positive number"})
			return
		}
		nights = n
	}

	result, err := ctrl.Bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		PartnerID:     partner.ID,
		ResortID:      payload.ResortID,
		Nights:        nights,
		KidsAgesRaw:   payload.KidsAges,
		CustomerEmail: payload.CustomerEmail,
	})
	if err != nil {
		if errors.Is(err, services.ErrResortNotFound) || errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resort not found"})
			return
		}
		if strings.HasPrefix(err.Error(), "validation:") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not start checkout"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"bookingId":   result.Booking.ID,
		"totalPrice":  result.Booking.TotalPrice,
		"checkoutUrl": result.CheckoutURL,
	})
}

// GetBooking serves the post-checkout success view for this tenant.
func (ctrl *StorefrontController) GetBooking(c *gin.Context) {
	partner, ok := ctrl.partnerFromPath(c)
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.FindForPartner(c.Param("id"), partner.ID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := models.DecodeSnapshot(booking.ResortDetails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": gin.H{
			"id":         booking.ID,
			"status":     booking.Status,
			"totalPrice": booking.TotalPrice,
			"resort":     snapshot,
		},
	})
}

// GetItinerary serves the stored 5-day plan for one of this tenant's
// bookings.
func (ctrl *StorefrontController) GetItinerary(c *gin.Context) {
	partner, ok := ctrl.partnerFromPath(c)
	if !ok {
		return
	}

	booking, err := ctrl.Bookings.FindForPartner(c.Param("id"), partner.ID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	snapshot, err := models.DecodeSnapshot(booking.ResortDetails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	days, err := models.DecodeItinerary(booking.ItineraryData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resort":    snapshot,
		"itinerary": days,
	})
}
