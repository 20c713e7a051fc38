package models

import (
	"encoding/json"
	"fmt"
)

// ItineraryDays is the number of day entries every itinerary must carry,
// regardless of the actual stay length.
const ItineraryDays = 5

// DiningPlan describes the three meals of one itinerary day.
type DiningPlan struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// ItineraryDay is one entry of a generated 5-day plan.
type ItineraryDay struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Activities []string   `json:"activities"`
	Dining     DiningPlan `json:"dining"`
}

// ResortSnapshot is the public shape of a resort frozen into a booking row.
type ResortSnapshot struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Location          string   `json:"location"`
	Description       string   `json:"description"`
	BasePricePerNight int      `json:"basePricePerNight"`
	Amenities         []string `json:"amenities"`
	ImageURL          *string  `json:"imageUrl,omitempty"`
}

// SnapshotFromResort copies the resort's public fields into a snapshot.
func SnapshotFromResort(r *Resort) ResortSnapshot {
	return ResortSnapshot{
		ID:                r.ID,
		Name:              r.Name,
		Location:          r.Location,
		Description:       r.Description,
		BasePricePerNight: r.BasePricePerNight,
		Amenities:         r.AmenityList(),
		ImageURL:          r.ImageURL,
	}
}

// ValidateItinerary enforces the generator contract: exactly 5 days numbered
// 1..5 in order, each with 3-4 activities and all three meals present.
func ValidateItinerary(days []ItineraryDay) error {
	if len(days) != ItineraryDays {
		return fmt.Errorf("itinerary must have exactly %d days, got %d", ItineraryDays, len(days))
	}
	for i, d := range days {
		if d.Day != i+1 {
			return fmt.Errorf("day %d out of order (got day number %d)", i+1, d.Day)
		}
		if n := len(d.Activities); n < 3 || n > 4 {
			return fmt.Errorf("day %d must have 3-4 activities, got %d", d.Day, n)
		}
		if d.Dining.Breakfast == "" || d.Dining.Lunch == "" || d.Dining.Dinner == "" {
			return fmt.Errorf("day %d is missing a dining entry", d.Day)
		}
	}
	return nil
}

// DecodeItinerary reads a stored itinerary column back into typed days.
func DecodeItinerary(raw []byte) ([]ItineraryDay, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var days []ItineraryDay
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("itinerary payload corrupt: %w", err)
	}
	return days, nil
}

// DecodeSnapshot reads a stored resort snapshot column.
func DecodeSnapshot(raw []byte) (ResortSnapshot, error) {
	var snap ResortSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return snap, fmt.Errorf("resort snapshot corrupt: %w", err)
	}
	return snap, nil
}
