package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aire-backend/middleware"
	"aire-backend/services"
)

type CreateResortPayload struct {
	Name              string  `json:"name" binding:"required"`
	Location          string  `json:"location" binding:"required"`
	Description       string  `json:"description"`
	BasePricePerNight int     `json:"basePricePerNight" binding:"required"`
	Amenities         string  `json:"amenities"`
	ImageURL          *string `json:"imageUrl"`
}

// ResortController serves the dashboard's resort management. All operations
// are scoped by the partner id resolved from the authenticated session.
type ResortController struct {
	Partners *services.PartnerService
	Resorts  *services.ResortService
}

func NewResortController(partners *services.PartnerService, resorts *services.ResortService) *ResortController {
	return &ResortController{Partners: partners, Resorts: resorts}
}

func (ctrl *ResortController) resolvePartnerID(c *gin.Context) (string, bool) {
	partnerID, err := ctrl.Partners.ResolvePartnerID(middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return "", false
	}
	return partnerID, true
}

func (ctrl *ResortController) ListResorts(c *gin.Context) {
	partnerID, ok := ctrl.resolvePartnerID(c)
	if !ok {
		return
	}
	resorts, err := ctrl.Resorts.ListByPartner(partnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resorts": resorts})
}

// CreateResort takes the base price in whole currency units; the service
// stores cents.
func (ctrl *ResortController) CreateResort(c *gin.Context) {
	var payload CreateResortPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, location and basePricePerNight are required"})
		return
	}

	partnerID, ok := ctrl.resolvePartnerID(c)
	if !ok {
		return
	}

	resort, err := ctrl.Resorts.Create(partnerID, services.CreateResortInput{
		Name:              payload.Name,
		Location:          payload.Location,
		Description:       payload.Description,
		BasePricePerNight: payload.BasePricePerNight,
		AmenitiesCSV:      payload.Amenities,
		ImageURL:          payload.ImageURL,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"resort": resort})
}

// DeleteResort deletes only when the session's partner owns the resort; a
// wrong owner sees the same 404 as a missing id.
func (ctrl *ResortController) DeleteResort(c *gin.Context) {
	partnerID, ok := ctrl.resolvePartnerID(c)
	if !ok {
		return
	}

	if err := ctrl.Resorts.Delete(c.Param("id"), partnerID); err != nil {
		if errors.Is(err, services.ErrResortNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resort not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "resort deleted"})
}
