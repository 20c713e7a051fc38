package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aire-backend/models"
)

// newTestDB opens an in-memory sqlite database shared across connections, so
// concurrent goroutines in a test see the same data.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("cannot open test database: %v", err)
	}
	// sqlite allows one writer; a single pooled connection keeps concurrent
	// test goroutines from tripping over table locks.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.Partner{}, &models.Resort{}, &models.Booking{}); err != nil {
		t.Fatalf("cannot migrate test database: %v", err)
	}
	return db
}

func seedPartner(t *testing.T, db *gorm.DB, subdomain string, markupRate int) *models.Partner {
	t.Helper()

	partner := models.Partner{
		ID:         uuid.NewString(),
		UserID:     "user_" + subdomain,
		Subdomain:  subdomain,
		MarkupRate: markupRate,
		BrandTone:  models.DefaultBrandTone,
	}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("cannot seed partner %s: %v", subdomain, err)
	}
	return &partner
}

func seedResort(t *testing.T, db *gorm.DB, partnerID, name string, priceCents int) *models.Resort {
	t.Helper()

	amenities, _ := json.Marshal([]string{"Pool", "Spa"})
	resort := models.Resort{
		ID:                uuid.NewString(),
		PartnerID:         partnerID,
		Name:              name,
		Location:          "Maldives",
		Description:       "Test resort",
		BasePricePerNight: priceCents,
		Amenities:         datatypes.JSON(amenities),
	}
	if err := db.Create(&resort).Error; err != nil {
		t.Fatalf("cannot seed resort %s: %v", name, err)
	}
	return &resort
}

// stubItinerary returns the deterministic fallback plan without any network.
type stubItinerary struct{}

func (stubItinerary) Generate(_ context.Context, req ItineraryRequest) []models.ItineraryDay {
	return FallbackItinerary(req.KidsAges)
}

// stubCheckout records the last checkout request and returns a fixed URL.
type stubCheckout struct {
	last *CheckoutInput
	err  error
}

func (s *stubCheckout) CreateCheckoutSession(in CheckoutInput) (string, error) {
	s.last = &in
	if s.err != nil {
		return "", s.err
	}
	return "https://checkout.test/session/" + in.BookingID, nil
}
