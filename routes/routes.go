package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"aire-backend/controllers"
	"aire-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// RouterDeps bundles everything SetupRouter wires together.
type RouterDeps struct {
	Gatekeeper    middleware.GatekeeperConfig
	Directory     middleware.TenantDirectory
	SessionSecret []byte

	Partners   *controllers.PartnerController
	Resorts    *controllers.ResortController
	Bookings   *controllers.BookingController
	Storefront *controllers.StorefrontController
	Webhooks   *controllers.WebhookController
	Email      *controllers.EmailController
}

// SetupRouter builds the engine. The gatekeeper runs in front of every
// route: tenant hosts get rewritten into /tenants/{subdomain} before any
// handler sees them.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.Identity(deps.SessionSecret))
	r.Use(middleware.Gatekeeper(deps.Gatekeeper, deps.Directory, r))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public storefront routes, reached directly or via the host rewrite.
	tenants := r.Group("/tenants/:subdomain")
	{
		tenants.GET("", deps.Storefront.Storefront)
		tenants.GET("/", deps.Storefront.Storefront)
		tenants.POST("/bookings", deps.Storefront.CreateBooking)
		tenants.GET("/bookings/:id", deps.Storefront.GetBooking)
		tenants.GET("/bookings/:id/itinerary", deps.Storefront.GetItinerary)
	}

	api := r.Group("/api")
	{
		api.POST("/webhooks/stripe", deps.Webhooks.HandleStripeEvent)
		api.POST("/partners", middleware.RequireAuth(), deps.Partners.CreatePartner)

		dashboard := api.Group("/dashboard", middleware.RequireAuth())
		{
			dashboard.GET("/partner", deps.Partners.GetPartner)
			dashboard.PUT("/settings", deps.Partners.UpdateSettings)

			dashboard.GET("/resorts", deps.Resorts.ListResorts)
			dashboard.POST("/resorts", deps.Resorts.CreateResort)
			dashboard.DELETE("/resorts/:id", deps.Resorts.DeleteResort)

			dashboard.GET("/bookings", deps.Bookings.ListBookings)

			dashboard.POST("/test-email", deps.Email.SendTestEmail)
		}
	}

	return r
}
