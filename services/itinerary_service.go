package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"aire-backend/models"
)

// ItineraryRequest is the input contract for itinerary generation.
type ItineraryRequest struct {
	ResortName  string
	Location    string
	Amenities   []string
	Nights      int
	KidsAges    []int
	BrandTone   string
	PartnerName string
}

// ItineraryGenerator produces exactly models.ItineraryDays day entries for a
// stay. Implementations must degrade to a deterministic fallback instead of
// returning an error or a malformed plan; callers rely on never receiving
// fewer or more than 5 days.
type ItineraryGenerator interface {
	Generate(ctx context.Context, req ItineraryRequest) []models.ItineraryDay
}

// GeminiGenerator asks Gemini for a 5-day plan in the partner's brand tone.
type GeminiGenerator struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewGeminiGenerator(apiKey string) *GeminiGenerator {
	return &GeminiGenerator{
		APIKey:  apiKey,
		Model:   "gemini-2.0-flash-exp",
		Timeout: 25 * time.Second,
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req ItineraryRequest) []models.ItineraryDay {
	days, err := g.generate(ctx, req)
	if err != nil {
		log.Printf("itinerary generation failed, using fallback: %v", err)
		return FallbackItinerary(req.KidsAges)
	}
	return days
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

func (g *GeminiGenerator) generate(ctx context.Context, req ItineraryRequest) ([]models.ItineraryDay, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, fmt.Errorf("cannot create client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2048)

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("generate request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}

	raw := jsonArrayPattern.FindString(sb.String())
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var days []models.ItineraryDay
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, fmt.Errorf("cannot parse itinerary: %w", err)
	}
	if err := models.ValidateItinerary(days); err != nil {
		return nil, err
	}
	return days, nil
}

func buildPrompt(req ItineraryRequest) string {
	tone := req.BrandTone
	if tone == "" {
		tone = models.DefaultBrandTone
	}
	name := req.PartnerName
	if name == "" {
		name = "AIRE"
	}

	kidsContext := "This trip may include adults and families. Provide a balanced mix of relaxation and adventure."
	if len(req.KidsAges) > 0 {
		ages := make([]string, len(req.KidsAges))
		for i, a := range req.KidsAges {
			ages[i] = fmt.Sprintf("%d", a)
		}
		kidsContext = fmt.Sprintf(
			"This is a family trip with kids aged %s years old. Include age-appropriate activities like Kids' Club, family-friendly excursions, and child-safe amenities.",
			strings.Join(ages, ", "),
		)
	}

	return fmt.Sprintf(`You are the AI Concierge for %s. Your brand tone is %s.
Use words like "Bespoke," "Curated," "Exclusive," "Unforgettable," and "Tailored" to describe the experience.

As a guest of %s, create a strictly 5-day vacation itinerary for a stay at %s in %s.
Even if the stay duration is different, provide a comprehensive 5-day plan.

The resort has the following amenities: %s.

%s

SYSTEM INSTRUCTION:
Return ONLY a JSON array of objects. Each object represents one day and must have the following keys:
- day: (number) The day number (1-5).
- title: (string) A catchy, luxury-themed title for the day.
- activities: (array of strings) A list of 3-4 specific activities for that day.
- dining: (object) with keys "breakfast", "lunch", "dinner" - each a string describing the dining experience.

Do not include any other text, markdown formatting, or code blocks. Output ONLY the raw JSON array.`,
		name, tone, name, req.ResortName, req.Location,
		strings.Join(req.Amenities, ", "), kidsContext)
}

// FallbackItinerary is the deterministic plan used whenever generation fails.
// It always satisfies models.ValidateItinerary.
func FallbackItinerary(kidsAges []int) []models.ItineraryDay {
	activities := []string{"Beach lounging", "Swimming at infinity pool", "Guided resort tour"}
	if len(kidsAges) > 0 {
		activities = []string{"Kids' Club activities", "Family pool time", "Beach games and sandcastle building"}
	}

	days := make([]models.ItineraryDay, models.ItineraryDays)
	for i := range days {
		days[i] = models.ItineraryDay{
			Day:        i + 1,
			Title:      fmt.Sprintf("Paradise Discovery Day %d", i+1),
			Activities: append([]string(nil), activities...),
			Dining: models.DiningPlan{
				Breakfast: "Buffet Breakfast",
				Lunch:     "Poolside Grill",
				Dinner:    "Resort Specialty Restaurant",
			},
		}
	}
	return days
}
