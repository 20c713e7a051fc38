package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	BookingStatusPending = "pending"
	BookingStatusPaid    = "paid"
)

// Booking records a checkout attempt against a partner's resort. ResortDetails
// is a denormalized snapshot taken at booking time, so later resort edits or
// deletions never change booking history. TotalPrice is fixed at creation.
// Customer email/name stay NULL until the payment gateway confirms; the
// webhook handler is the only writer of those fields. KidsAges is NULL (not
// an empty array) when no children travel.
type Booking struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	PartnerID     string         `gorm:"column:partner_id;size:36;index;not null" json:"partnerId"`
	CustomerEmail *string        `gorm:"column:customer_email;size:255" json:"customerEmail,omitempty"`
	CustomerName  *string        `gorm:"column:customer_name;size:255" json:"customerName,omitempty"`
	TotalPrice    int            `gorm:"column:total_price;not null" json:"totalPrice"`
	ResortDetails datatypes.JSON `gorm:"column:resort_details;not null" json:"resortDetails"`
	ItineraryData datatypes.JSON `gorm:"column:itinerary_data" json:"itineraryData,omitempty"`
	KidsAges      datatypes.JSON `gorm:"column:kids_ages" json:"kidsAges,omitempty"`
	Status        string         `gorm:"size:32;default:pending;not null" json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"-"`
}
