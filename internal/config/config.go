package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBPath       string
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool

	// Weekly gate for the renewal generator cron trigger.
	RenewalRunDay time.Weekday

	// Fulfillment pipeline throttling.
	FulfillmentBatchSize  int
	FulfillmentBatchDelay time.Duration

	PackingConfigPath string

	// Shipping/consignment provider.
	ShippingAPIURL             string
	ShippingAPIKey             string
	ShippingSenderID           string
	ShippingTransportAgreement string

	// Webshop (e-commerce) API.
	WebshopAPIURL    string
	WebshopAPIKey    string
	WebshopAPISecret string
}

func LoadConfig() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	cfg := &Config{
		Port:                       getEnv("PORT", "8585"),
		DBPath:                     getEnv("DB_PATH", "./backoffice.db"),
		CookieDomain:               getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:               getEnv("COOKIE_SECURE", "false") == "true",
		PackingConfigPath:          getEnv("PACKING_CONFIG", "./packing.yml"),
		ShippingAPIURL:             getEnv("SHIPPING_API_URL", "https://cargonizer.example/api"),
		ShippingAPIKey:             os.Getenv("SHIPPING_API_KEY"),
		ShippingSenderID:           os.Getenv("SHIPPING_SENDER_ID"),
		ShippingTransportAgreement: os.Getenv("SHIPPING_TRANSPORT_AGREEMENT"),
		WebshopAPIURL:              getEnv("WEBSHOP_API_URL", "https://shop.example/wp-json/wc/v3"),
		WebshopAPIKey:              os.Getenv("WEBSHOP_API_KEY"),
		WebshopAPISecret:           os.Getenv("WEBSHOP_API_SECRET"),
	}

	cfg.RenewalRunDay = parseWeekday(getEnv("RENEWAL_RUN_DAY", "Monday"))
	cfg.FulfillmentBatchSize = getEnvInt("FULFILLMENT_BATCH_SIZE", 5)
	cfg.FulfillmentBatchDelay = time.Duration(getEnvInt("FULFILLMENT_BATCH_DELAY_MS", 2000)) * time.Millisecond

	// CSRF Key (critical for security)
	csrfKeyStr := os.Getenv("CSRF_KEY")
	if csrfKeyStr == "" {
		slog.Warn("CSRF_KEY environment variable not set. Generating a random key for development. This key will change on each restart. PLEASE SET CSRF_KEY IN PRODUCTION!")
		cfg.CSRFKey = generateRandomBytes(32)
	} else {
		decodedKey, err := base64.StdEncoding.DecodeString(csrfKeyStr)
		if err != nil || len(decodedKey) < 32 {
			slog.Warn("CSRF_KEY is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE CSRF_KEY IN PRODUCTION!")
			cfg.CSRFKey = generateRandomBytes(32)
		} else {
			cfg.CSRFKey = decodedKey
		}
	}

	// Session Key (critical for security)
	sessionKeyStr := os.Getenv("SESSION_KEY")
	if sessionKeyStr == "" {
		slog.Warn("SESSION_KEY environment variable not set. Generating a random key for development. Sessions will be invalid on restart. PLEASE SET SESSION_KEY IN PRODUCTION!")
		cfg.SessionKey = generateRandomBytes(32)
	} else {
		decodedKey, err := base64.StdEncoding.DecodeString(sessionKeyStr)
		if err != nil || len(decodedKey) < 32 {
			slog.Warn("SESSION_KEY is invalid or too short (min 32 bytes recommended). Generating a random key for development. PLEASE SET A SECURE SESSION_KEY IN PRODUCTION!")
			cfg.SessionKey = generateRandomBytes(32)
		} else {
			cfg.SessionKey = decodedKey
		}
	}

	// Make sure port is valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		slog.Warn("Invalid integer environment variable, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

func parseWeekday(name string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d
		}
	}
	slog.Warn("Invalid RENEWAL_RUN_DAY, falling back to Monday", "value", name)
	return time.Monday
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil { // Use crypto/rand
		slog.Error("Failed to read random bytes", "error", err)
		// Fallback to a less secure random string if crypto/rand fails
		// This fallback is only for panic prevention, not for production use
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		// Ensure the fallback key is at least n bytes long
		if len(fallbackKey) < n {
			paddedKey := make([]byte, n)
			copy(paddedKey, fallbackKey)
			return paddedKey
		}
		return []byte(fallbackKey)[:n]
	}
	return b
}
