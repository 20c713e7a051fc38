package models

import "time"

// DefaultBrandTone is applied when a partner has not customised their voice.
const DefaultBrandTone = "luxurious, warm, and personalized"

// DefaultMarkupRate is the percentage added on top of a resort's base price.
const DefaultMarkupRate = 10

// Partner is a marketplace seller. Each partner owns exactly one storefront,
// reachable under its subdomain, and every resort/booking row is keyed to it.
// Subdomain is claimed once and never changes afterwards.
type Partner struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          string    `gorm:"column:user_id;size:191;uniqueIndex;not null" json:"-"`
	Subdomain       string    `gorm:"size:63;uniqueIndex;not null" json:"subdomain"`
	MarkupRate      int       `gorm:"column:markup_rate;default:10" json:"markupRate"`
	StripeAccountID *string   `gorm:"column:stripe_account_id;size:255" json:"-"`
	BrandTone       string    `gorm:"column:brand_tone;size:255" json:"brandTone"`
	LogoURL         *string   `gorm:"column:logo_url;size:512" json:"logoUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`
}
