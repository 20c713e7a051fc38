package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Resort belongs to exactly one partner. Prices are stored in cents.
// Amenities keep their submitted order, stored as a JSON array of strings.
type Resort struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	PartnerID         string         `gorm:"column:partner_id;size:36;index;not null" json:"partnerId"`
	Name              string         `gorm:"size:255;not null" json:"name"`
	Location          string         `gorm:"size:255;not null" json:"location"`
	Description       string         `gorm:"type:text" json:"description"`
	BasePricePerNight int            `gorm:"column:base_price_per_night;not null" json:"basePricePerNight"`
	Amenities         datatypes.JSON `gorm:"column:amenities" json:"amenities"`
	ImageURL          *string        `gorm:"column:image_url;size:512" json:"imageUrl,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"-"`
}

// AmenityList decodes the stored amenities column. A broken or empty column
// yields an empty slice rather than an error; display data is best-effort.
func (r *Resort) AmenityList() []string {
	var out []string
	if len(r.Amenities) == 0 {
		return []string{}
	}
	if err := json.Unmarshal(r.Amenities, &out); err != nil {
		return []string{}
	}
	return out
}
