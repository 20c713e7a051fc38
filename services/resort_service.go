package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"aire-backend/models"
)

var ErrResortNotFound = errors.New("resort_not_found")

// ResortService handles tenant-scoped resort reads and writes. Every query
// carries the resolved partner id; entity ids are never trusted alone.
type ResortService struct {
	DB *gorm.DB
}

func NewResortService(db *gorm.DB) *ResortService {
	return &ResortService{DB: db}
}

// CreateResortInput carries dashboard form fields. BasePricePerNight is in
// whole currency units; storage converts to cents.
type CreateResortInput struct {
	Name              string
	Location          string
	Description       string
	BasePricePerNight int
	AmenitiesCSV      string
	ImageURL          *string
}

func (s *ResortService) Create(partnerID string, in CreateResortInput) (*models.Resort, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Location) == "" || in.BasePricePerNight <= 0 {
		return nil, errors.New("validation: name, location and a positive base price are required")
	}

	amenities := splitAmenities(in.AmenitiesCSV)
	amenitiesJSON, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amenities: %w", err)
	}

	resort := models.Resort{
		ID:                uuid.NewString(),
		PartnerID:         partnerID,
		Name:              strings.TrimSpace(in.Name),
		Location:          strings.TrimSpace(in.Location),
		Description:       strings.TrimSpace(in.Description),
		BasePricePerNight: in.BasePricePerNight * 100,
		Amenities:         datatypes.JSON(amenitiesJSON),
		ImageURL:          in.ImageURL,
	}
	if err := s.DB.Create(&resort).Error; err != nil {
		return nil, fmt.Errorf("failed to create resort: %w", err)
	}
	return &resort, nil
}

func (s *ResortService) ListByPartner(partnerID string) ([]models.Resort, error) {
	var resorts []models.Resort
	if err := s.DB.Where("partner_id = ?", partnerID).Order("created_at").Find(&resorts).Error; err != nil {
		return nil, fmt.Errorf("failed to list resorts: %w", err)
	}
	return resorts, nil
}

// FindForPartner loads a resort by id AND owning partner id. The compound
// predicate is what keeps one tenant's resorts invisible to another.
func (s *ResortService) FindForPartner(resortID, partnerID string) (*models.Resort, error) {
	var resort models.Resort
	err := s.DB.Where("id = ? AND partner_id = ?", resortID, partnerID).First(&resort).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResortNotFound
		}
		return nil, fmt.Errorf("failed to find resort: %w", err)
	}
	return &resort, nil
}

// Delete removes a resort only when the resolved partner owns it. Deleting
// with someone else's partner id touches zero rows and reports not found.
func (s *ResortService) Delete(resortID, partnerID string) error {
	result := s.DB.Where("id = ? AND partner_id = ?", resortID, partnerID).Delete(&models.Resort{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resort: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResortNotFound
	}
	return nil
}

func splitAmenities(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if a := strings.TrimSpace(p); a != "" {
			out = append(out, a)
		}
	}
	return out
}
