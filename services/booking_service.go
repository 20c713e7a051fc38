package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"aire-backend/models"
)

var ErrBookingNotFound = errors.New("booking_not_found")

// DefaultNights is assumed when a guest does not pick a stay length.
const DefaultNights = 5

// BookingService owns pricing and the checkout-initiation flow. All booking
// reads are scoped by partner id; the payment webhook is the only writer of
// paid status and customer identity.
type BookingService struct {
	DB        *gorm.DB
	Itinerary ItineraryGenerator
	Checkout  CheckoutCreator
	AppURL    string
}

func NewBookingService(db *gorm.DB, itinerary ItineraryGenerator, checkout CheckoutCreator, appURL string) *BookingService {
	return &BookingService{DB: db, Itinerary: itinerary, Checkout: checkout, AppURL: appURL}
}

// PriceStay computes the split for one stay, all in cents. The markup is
// floored integer percent of the base; the platform later retains exactly
// the base as its fee, leaving the markup as the partner's nominal share.
func PriceStay(basePricePerNight, nights, markupRate int) (basePrice, markupAmount, totalPrice int) {
	basePrice = basePricePerNight * nights
	markupAmount = basePrice * markupRate / 100
	totalPrice = basePrice + markupAmount
	return basePrice, markupAmount, totalPrice
}

// ParseKidsAges turns a free-text comma list into ages, silently dropping
// anything non-numeric. An empty result stays nil so storage distinguishes
// "no kids" from missing data.
func ParseKidsAges(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var ages []int
	for _, tok := range strings.Split(raw, ",") {
		if age, err := strconv.Atoi(strings.TrimSpace(tok)); err == nil {
			ages = append(ages, age)
		}
	}
	return ages
}

// CreateBookingInput carries the public storefront checkout form.
type CreateBookingInput struct {
	PartnerID     string
	ResortID      string
	Nights        int // 0 means unspecified
	KidsAgesRaw   string
	CustomerEmail string
}

// CreateBookingResult is a persisted pending booking plus its checkout URL.
type CreateBookingResult struct {
	Booking     models.Booking
	CheckoutURL string
}

// CreateBooking verifies the resort belongs to the claimed partner (the two
// ids are only trusted together), prices the stay, generates the itinerary,
// persists the booking as pending with a resort snapshot, and opens the
// checkout session. A gateway failure aborts the attempt; the pending row it
// leaves behind is an accepted, recoverable state.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingResult, error) {
	if in.PartnerID == "" || in.ResortID == "" {
		return nil, errors.New("validation: partnerId and resortId are required")
	}
	nights := in.Nights
	if nights == 0 {
		nights = DefaultNights
	}
	if nights < 0 {
		return nil, errors.New("validation: nights must be a positive number")
	}

	var partner models.Partner
	if err := s.DB.Where("id = ?", in.PartnerID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to load partner: %w", err)
	}

	// Compound ownership check: neither id is trusted alone.
	var resort models.Resort
	if err := s.DB.Where("id = ? AND partner_id = ?", in.ResortID, in.PartnerID).First(&resort).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResortNotFound
		}
		return nil, fmt.Errorf("failed to load resort: %w", err)
	}

	markupRate := partner.MarkupRate
	if markupRate == 0 {
		markupRate = models.DefaultMarkupRate
	}
	basePrice, _, totalPrice := PriceStay(resort.BasePricePerNight, nights, markupRate)

	kidsAges := ParseKidsAges(in.KidsAgesRaw)

	days := s.Itinerary.Generate(ctx, ItineraryRequest{
		ResortName:  resort.Name,
		Location:    resort.Location,
		Amenities:   resort.AmenityList(),
		Nights:      nights,
		KidsAges:    kidsAges,
		BrandTone:   partner.BrandTone,
		PartnerName: partner.Subdomain,
	})

	snapshot := models.SnapshotFromResort(&resort)
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode resort snapshot: %w", err)
	}
	itineraryJSON, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}

	booking := models.Booking{
		ID:            uuid.NewString(),
		PartnerID:     partner.ID,
		TotalPrice:    totalPrice,
		ResortDetails: datatypes.JSON(snapshotJSON),
		ItineraryData: datatypes.JSON(itineraryJSON),
		Status:        models.BookingStatusPending,
	}
	if len(kidsAges) > 0 {
		agesJSON, err := json.Marshal(kidsAges)
		if err != nil {
			return nil, fmt.Errorf("failed to encode kids ages: %w", err)
		}
		booking.KidsAges = datatypes.JSON(agesJSON)
	}

	if err := s.DB.Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	checkoutURL, err := s.Checkout.CreateCheckoutSession(CheckoutInput{
		BookingID:       booking.ID,
		ResortName:      resort.Name,
		ResortLocation:  resort.Location,
		Nights:          nights,
		BasePrice:       basePrice,
		TotalPrice:      totalPrice,
		CustomerEmail:   in.CustomerEmail,
		PayoutAccountID: partner.StripeAccountID,
		Origin:          s.AppURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}

	return &CreateBookingResult{Booking: booking, CheckoutURL: checkoutURL}, nil
}

// ListByPartner returns the partner's bookings, oldest first.
func (s *BookingService) ListByPartner(partnerID string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.DB.Where("partner_id = ?", partnerID).Order("created_at").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// FindForPartner loads a booking by id AND owning partner id.
func (s *BookingService) FindForPartner(bookingID, partnerID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Where("id = ? AND partner_id = ?", bookingID, partnerID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// LatestForPartner returns the most recent booking, or ErrBookingNotFound.
func (s *BookingService) LatestForPartner(partnerID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.Where("partner_id = ?", partnerID).Order("created_at DESC").First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// MarkPaid flips a booking to paid and records the customer's identity from
// the verified gateway event. The write is a single-row update keyed by
// booking id, so a replayed event just re-applies the same values.
func (s *BookingService) MarkPaid(bookingID, customerEmail, customerName string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Where("id = ?", bookingID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	if err := s.DB.Model(&booking).Updates(map[string]interface{}{
		"status":         models.BookingStatusPaid,
		"customer_email": customerEmail,
		"customer_name":  customerName,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	booking.Status = models.BookingStatusPaid
	booking.CustomerEmail = &customerEmail
	booking.CustomerName = &customerName
	return &booking, nil
}
