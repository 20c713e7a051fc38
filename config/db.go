package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"aire-backend/models"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "aire_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Info,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.Partner{},
		&models.Resort{},
		&models.Booking{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}

// SeedDatabase creates two demo storefronts when the directory is empty so
// a fresh install has something to route to.
func SeedDatabase() {
	var partnerCount int64
	DB.Model(&models.Partner{}).Count(&partnerCount)
	if partnerCount > 0 {
		log.Println("Partners already seeded")
		return
	}

	type seedResort struct {
		name, location, description string
		pricePerNight               int
		amenities                   []string
	}
	seeds := []struct {
		subdomain, userID, brandTone string
		markupRate                   int
		resorts                      []seedResort
	}{
		{
			subdomain:  "sunset",
			userID:     "seed_user_sunset",
			brandTone:  models.DefaultBrandTone,
			markupRate: 10,
			resorts: []seedResort{
				{
					name: "Sunset Cove Resort", location: "Maldives",
					description:   "Overwater villas with private decks above a turquoise lagoon.",
					pricePerNight: 45000,
					amenities:     []string{"Infinity Pool", "Private Beach", "Spa", "Dive Center"},
				},
			},
		},
		{
			subdomain:  "palms",
			userID:     "seed_user_palms",
			brandTone:  "playful, family-first, and adventurous",
			markupRate: 15,
			resorts: []seedResort{
				{
					name: "Twin Palms Retreat", location: "Bali, Indonesia",
					description:   "Jungle-edge suites minutes from the surf.",
					pricePerNight: 20000,
					amenities:     []string{"Kids' Club", "Surf School", "Yoga Pavilion"},
				},
			},
		},
	}

	for _, s := range seeds {
		placeholder := "acct_1placeholder_" + s.subdomain
		partner := models.Partner{
			ID:              uuid.NewString(),
			UserID:          s.userID,
			Subdomain:       s.subdomain,
			MarkupRate:      s.markupRate,
			StripeAccountID: &placeholder,
			BrandTone:       s.brandTone,
		}
		if err := DB.Create(&partner).Error; err != nil {
			log.Printf("warning: failed to seed partner %s: %v", s.subdomain, err)
			continue
		}

		for _, r := range s.resorts {
			amenitiesJSON, _ := json.Marshal(r.amenities)
			resort := models.Resort{
				ID:                uuid.NewString(),
				PartnerID:         partner.ID,
				Name:              r.name,
				Location:          r.location,
				Description:       r.description,
				BasePricePerNight: r.pricePerNight,
				Amenities:         datatypes.JSON(amenitiesJSON),
			}
			if err := DB.Create(&resort).Error; err != nil {
				log.Printf("warning: failed to seed resort %s: %v", r.name, err)
			}
		}
	}

	log.Println("Demo partners seeded")
}
