package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aire-backend/config"
	"aire-backend/controllers"
	"aire-backend/middleware"
	"aire-backend/routes"
	"aire-backend/services"
	"aire-backend/utils"
)

func allowedDomains(baseDomain, appURL string) []string {
	domains := []string{"localhost:3000", "aire.com", "www.aire.com", "vercel.app", baseDomain}
	if appURL != "" {
		if u, err := url.Parse(appURL); err == nil && u.Host != "" {
			domains = append(domains, u.Host)
		}
	}

	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Println("⚠️  STRIPE_SECRET_KEY is not set; checkout session creation will fail")
	}
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Println("⚠️  GEMINI_API_KEY is not set; itineraries will use the fallback plan")
	}
	sessionSecret := utils.EnvOrDefault("SESSION_JWT_SECRET", "")
	if sessionSecret == "" {
		log.Fatal("❌ ERROR: SESSION_JWT_SECRET environment variable is not set. Cannot verify identity tokens.")
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	db := config.DB
	if db == nil {
		log.Fatal("❌ config.DB is nil after ConnectDatabase()")
	}
	log.Println("✅ Database connection established and migrations applied.")

	baseDomain := utils.EnvOrDefault("BASE_DOMAIN", "localhost:3000")
	appURL := utils.EnvOrDefault("APP_URL", "http://localhost:3000")
	signInURL := utils.EnvOrDefault("SIGN_IN_URL", appURL+"/sign-in")

	// Services
	partnerService := services.NewPartnerService(db)
	resortService := services.NewResortService(db)
	paymentService := services.NewPaymentService(stripeKey, os.Getenv("STRIPE_WEBHOOK_SECRET"))
	itineraryService := services.NewGeminiGenerator(geminiKey)
	bookingService := services.NewBookingService(db, itineraryService, paymentService, appURL)
	emailService := services.NewEmailService(os.Getenv("RESEND_API_KEY"))
	testEmailLimiter := services.NewRateLimiterFromEnv(os.Getenv("REDIS_URL"), time.Minute)

	// Controllers
	partnerController := controllers.NewPartnerController(partnerService, paymentService, appURL)
	resortController := controllers.NewResortController(partnerService, resortService)
	bookingController := controllers.NewBookingController(partnerService, bookingService)
	storefrontController := controllers.NewStorefrontController(partnerService, resortService, bookingService)
	webhookController := controllers.NewWebhookController(paymentService, bookingService, partnerService, emailService)
	emailController := controllers.NewEmailController(partnerService, bookingService, emailService, testEmailLimiter)

	router := routes.SetupRouter(routes.RouterDeps{
		Gatekeeper: middleware.GatekeeperConfig{
			BaseDomain:        baseDomain,
			AllowedDomains:    allowedDomains(baseDomain, appURL),
			PlatformSuffixes:  []string{".vercel.app"},
			ProtectedPrefixes: []string{"/dashboard", "/api/dashboard"},
			SignInURL:         signInURL,
		},
		Directory:     partnerService,
		SessionSecret: []byte(sessionSecret),

		Partners:   partnerController,
		Resorts:    resortController,
		Bookings:   bookingController,
		Storefront: storefrontController,
		Webhooks:   webhookController,
		Email:      emailController,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s (base domain %s)", addr, baseDomain)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
