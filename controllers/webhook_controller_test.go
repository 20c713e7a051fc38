package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aire-backend/models"
	"aire-backend/services"
)

const testWebhookSecret = "whsec_testsecret"

type fixedItinerary struct{}

func (fixedItinerary) Generate(_ context.Context, req services.ItineraryRequest) []models.ItineraryDay {
	return services.FallbackItinerary(req.KidsAges)
}

type fixedCheckout struct{}

func (fixedCheckout) CreateCheckoutSession(in services.CheckoutInput) (string, error) {
	return "https://checkout.test/session/" + in.BookingID, nil
}

type webhookFixture struct {
	app      *gin.Engine
	db       *gorm.DB
	bookings *services.BookingService
	booking  models.Booking
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("cannot open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Partner{}, &models.Resort{}, &models.Booking{}); err != nil {
		t.Fatalf("cannot migrate test database: %v", err)
	}

	partner := models.Partner{
		ID:         uuid.NewString(),
		UserID:     "user_palms",
		Subdomain:  "palms",
		MarkupRate: 15,
		BrandTone:  models.DefaultBrandTone,
	}
	if err := db.Create(&partner).Error; err != nil {
		t.Fatalf("cannot seed partner: %v", err)
	}
	amenities, _ := json.Marshal([]string{"Pool"})
	resort := models.Resort{
		ID:                uuid.NewString(),
		PartnerID:         partner.ID,
		Name:              "Twin Palms",
		Location:          "Bali",
		BasePricePerNight: 20000,
		Amenities:         datatypes.JSON(amenities),
	}
	if err := db.Create(&resort).Error; err != nil {
		t.Fatalf("cannot seed resort: %v", err)
	}

	partners := services.NewPartnerService(db)
	bookings := services.NewBookingService(db, fixedItinerary{}, fixedCheckout{}, "https://app.test")
	payments := &services.PaymentService{WebhookSecret: testWebhookSecret}
	email := services.NewEmailService("") // mock mode

	res, err := bookings.CreateBooking(context.Background(), services.CreateBookingInput{
		PartnerID: partner.ID,
		ResortID:  resort.ID,
		Nights:    2,
	})
	if err != nil {
		t.Fatalf("cannot create pending booking: %v", err)
	}

	ctrl := NewWebhookController(payments, bookings, partners, email)
	app := gin.New()
	app.POST("/api/webhooks/stripe", ctrl.HandleStripeEvent)

	return &webhookFixture{app: app, db: db, bookings: bookings, booking: res.Booking}
}

func checkoutCompletedPayload(t *testing.T, bookingID string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_" + uuid.NewString(),
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":                  "cs_test_1",
				"client_reference_id": bookingID,
				"customer_details": map[string]interface{}{
					"email": "guest@example.com",
					"name":  "Jamie Guest",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("cannot marshal payload: %v", err)
	}
	return payload
}

func signPayload(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func (f *webhookFixture) post(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	f.app.ServeHTTP(w, req)
	return w
}

func (f *webhookFixture) reload(t *testing.T) models.Booking {
	t.Helper()
	var b models.Booking
	if err := f.db.Where("id = ?", f.booking.ID).First(&b).Error; err != nil {
		t.Fatalf("cannot reload booking: %v", err)
	}
	return b
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(t, f.booking.ID)

	w := f.post(payload, signPayload(payload, "whsec_wrong", time.Now()))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := f.reload(t); got.Status != models.BookingStatusPending {
		t.Fatalf("booking status = %q after rejected event, want pending", got.Status)
	}
}

func TestWebhookRejectsStaleSignature(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(t, f.booking.ID)

	w := f.post(payload, signPayload(payload, testWebhookSecret, time.Now().Add(-10*time.Minute)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a timestamp outside tolerance", w.Code)
	}
}

func TestWebhookAppliesCheckoutCompleted(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(t, f.booking.ID)
	sig := signPayload(payload, testWebhookSecret, time.Now())

	w := f.post(payload, sig)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", w.Code, w.Body.String())
	}

	got := f.reload(t)
	if got.Status != models.BookingStatusPaid {
		t.Fatalf("status = %q, want paid", got.Status)
	}
	if got.CustomerEmail == nil || *got.CustomerEmail != "guest@example.com" {
		t.Fatalf("CustomerEmail = %v", got.CustomerEmail)
	}
	if got.CustomerName == nil || *got.CustomerName != "Jamie Guest" {
		t.Fatalf("CustomerName = %v", got.CustomerName)
	}

	// delivery replays re-apply the same values
	w = f.post(payload, signPayload(payload, testWebhookSecret, time.Now()))
	if w.Code != http.StatusOK {
		t.Fatalf("replay status = %d, want 200", w.Code)
	}
	if got := f.reload(t); got.Status != models.BookingStatusPaid {
		t.Fatalf("replay changed status to %q", got.Status)
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	f := newWebhookFixture(t)
	payload, err := json.Marshal(map[string]interface{}{
		"id":          "evt_other",
		"api_version": stripe.APIVersion,
		"type":        "payment_intent.created",
		"data":        map[string]interface{}{"object": map[string]interface{}{}},
	})
	if err != nil {
		t.Fatalf("cannot marshal payload: %v", err)
	}

	w := f.post(payload, signPayload(payload, testWebhookSecret, time.Now()))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := f.reload(t); got.Status != models.BookingStatusPending {
		t.Fatalf("unrelated event changed status to %q", got.Status)
	}
}

func TestWebhookUnknownBookingStill200(t *testing.T) {
	f := newWebhookFixture(t)
	payload := checkoutCompletedPayload(t, "missing-booking-id")

	w := f.post(payload, signPayload(payload, testWebhookSecret, time.Now()))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
