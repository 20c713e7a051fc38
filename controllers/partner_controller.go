package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"aire-backend/middleware"
	"aire-backend/services"
)

type CreatePartnerPayload struct {
	Subdomain string `json:"subdomain" binding:"required"`
}

type UpdateSettingsPayload struct {
	MarkupRate *int    `json:"markupRate" binding:"required"`
	BrandTone  string  `json:"brandTone"`
	LogoURL    *string `json:"logoUrl"`
}

// PartnerController covers onboarding and the partner-facing dashboard
// settings. Every mutating path resolves the partner id from the session.
type PartnerController struct {
	Partners  *services.PartnerService
	Onboarder services.PartnerOnboarder
	AppURL    string
}

func NewPartnerController(partners *services.PartnerService, onboarder services.PartnerOnboarder, appURL string) *PartnerController {
	return &PartnerController{Partners: partners, Onboarder: onboarder, AppURL: appURL}
}

// CreatePartner claims a subdomain for the signed-in user, provisions a
// payout account and returns the gateway's onboarding link.
func (ctrl *PartnerController) CreatePartner(c *gin.Context) {
	var payload CreatePartnerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subdomain is required"})
		return
	}

	userID := middleware.CurrentUserID(c)

	accountID, err := ctrl.Onboarder.CreateExpressAccount()
	if err != nil {
		log.Printf("express account creation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payout account setup failed"})
		return
	}

	partner, err := ctrl.Partners.Create(userID, payload.Subdomain, &accountID)
	if err != nil {
		if errors.Is(err, services.ErrSubdomainTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "subdomain already taken"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := ctrl.Onboarder.OnboardingLink(accountID, ctrl.AppURL+"/dashboard")
	if err != nil {
		log.Printf("onboarding link creation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "onboarding link creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"partner": partner, "onboardingUrl": link})
}

// GetPartner returns the signed-in user's partner profile.
func (ctrl *PartnerController) GetPartner(c *gin.Context) {
	partner, err := ctrl.Partners.FindByUserID(middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrPartnerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// UpdateSettings writes markup rate, brand tone and logo for the partner
// resolved from the session. The partner id is never read from the payload.
func (ctrl *PartnerController) UpdateSettings(c *gin.Context) {
	var payload UpdateSettingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "markupRate is required"})
		return
	}

	partnerID, err := ctrl.Partners.ResolvePartnerID(middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	if err := ctrl.Partners.UpdateSettings(partnerID, *payload.MarkupRate, payload.BrandTone, payload.LogoURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated"})
}
