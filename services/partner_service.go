package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"aire-backend/models"
)

var (
	ErrNotAuthorized   = errors.New("not_authorized")
	ErrPartnerNotFound = errors.New("partner_not_found")
	ErrSubdomainTaken  = errors.New("subdomain_taken")
)

// PartnerService is the tenant directory. ResolvePartnerID is the only
// legitimate way to obtain a scoping partner id for a session; mutating
// operations must never accept one from client input.
type PartnerService struct {
	DB *gorm.DB
}

func NewPartnerService(db *gorm.DB) *PartnerService {
	return &PartnerService{DB: db}
}

// SubdomainExists implements the gatekeeper's directory lookup. The match is
// exact and case-sensitive against the stored lowercase form.
func (s *PartnerService) SubdomainExists(subdomain string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.Partner{}).Where("subdomain = ?", subdomain).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up subdomain: %w", err)
	}
	return count > 0, nil
}

func (s *PartnerService) FindBySubdomain(subdomain string) (*models.Partner, error) {
	var partner models.Partner
	if err := s.DB.Where("subdomain = ?", subdomain).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to find partner: %w", err)
	}
	return &partner, nil
}

func (s *PartnerService) FindByID(partnerID string) (*models.Partner, error) {
	var partner models.Partner
	if err := s.DB.Where("id = ?", partnerID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to find partner: %w", err)
	}
	return &partner, nil
}

// FindByUserID returns the partner owned by a verified identity, or
// ErrPartnerNotFound when onboarding has not happened yet.
func (s *PartnerService) FindByUserID(userID string) (*models.Partner, error) {
	if userID == "" {
		return nil, ErrNotAuthorized
	}
	var partner models.Partner
	if err := s.DB.Where("user_id = ?", userID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to find partner: %w", err)
	}
	return &partner, nil
}

// ResolvePartnerID maps a verified user id to exactly one partner id. Zero
// matches is an authorization failure, never a fallback to an unscoped query.
// Every tenant-scoped read and write sources its partner id from here.
func (s *PartnerService) ResolvePartnerID(userID string) (string, error) {
	partner, err := s.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, ErrPartnerNotFound) {
			return "", ErrNotAuthorized
		}
		return "", err
	}
	log.Printf("[SECURITY] validated partnerId %s for userId %s", partner.ID, userID)
	return partner.ID, nil
}

// Create claims a subdomain for a user. Subdomains are lowercased on the way
// in and immutable afterwards; uniqueness is enforced by the database index.
func (s *PartnerService) Create(userID, subdomain string, stripeAccountID *string) (*models.Partner, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		return nil, errors.New("subdomain_required")
	}

	partner := models.Partner{
		ID:              uuid.NewString(),
		UserID:          userID,
		Subdomain:       subdomain,
		MarkupRate:      models.DefaultMarkupRate,
		StripeAccountID: stripeAccountID,
		BrandTone:       models.DefaultBrandTone,
	}
	if err := s.DB.Create(&partner).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrSubdomainTaken
		}
		return nil, fmt.Errorf("failed to create partner: %w", err)
	}
	return &partner, nil
}

// UpdateSettings writes markup rate, brand tone and logo for the resolved
// partner only. A blank brand tone restores the default.
func (s *PartnerService) UpdateSettings(partnerID string, markupRate int, brandTone string, logoURL *string) error {
	if markupRate < 0 {
		return errors.New("invalid_markup_rate")
	}
	if strings.TrimSpace(brandTone) == "" {
		brandTone = models.DefaultBrandTone
	}

	result := s.DB.Model(&models.Partner{}).
		Where("id = ?", partnerID).
		Updates(map[string]interface{}{
			"markup_rate": markupRate,
			"brand_tone":  brandTone,
			"logo_url":    logoURL,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPartnerNotFound
	}
	return nil
}

// isDuplicateKey recognises unique-index violations across drivers: typed
// for MySQL (1062), string match elsewhere (sqlite in tests).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}
