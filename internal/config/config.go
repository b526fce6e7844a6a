package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application configuration values.
type Config struct {
	HTTPPort    string
	DBDriver    string
	DatabaseDSN string

	Secret     string
	SessionTTL time.Duration

	OperatorPasswordHash string
	AdminUsername        string
	AdminPasswordHash    string

	RedisURL string
	LogLevel string

	Location *time.Location
	Profile  StoreProfile

	SeedCatalog string
}

// Load reads configuration from the environment (and a .env file when
// present) with reasonable defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:      getenv("HTTP_PORT", "8080"),
		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		Secret:        getenv("SECRET", "dev_secret"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		SeedCatalog:   getenv("SEED_CATALOG", "assets/products.csv"),
	}

	// Validate that port is numeric.
	if _, err := strconv.Atoi(cfg.HTTPPort); err != nil {
		logrus.Warnf("invalid HTTP_PORT value %q, defaulting to 8080", cfg.HTTPPort)
		cfg.HTTPPort = "8080"
	}

	switch cfg.DBDriver {
	case "sqlite", "pgx", "mysql":
	case "postgres":
		cfg.DBDriver = "pgx"
	default:
		logrus.Warnf("unknown DB_DRIVER %q, defaulting to sqlite", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}
	if cfg.DatabaseDSN == "" {
		if cfg.DBDriver != "sqlite" {
			logrus.Warnf("DATABASE_DSN is required for %s, falling back to sqlite", cfg.DBDriver)
			cfg.DBDriver = "sqlite"
		}
		cfg.DatabaseDSN = "file:pos.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	cfg.SessionTTL = 12 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			logrus.Warnf("invalid SESSION_TTL value %q, defaulting to 12h", raw)
		} else {
			cfg.SessionTTL = ttl
		}
	}

	cfg.OperatorPasswordHash = secretHash("OPERATOR_PASSWORD_HASH", "OPERATOR_PASSWORD")
	cfg.AdminPasswordHash = secretHash("ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD")
	if cfg.OperatorPasswordHash == "" {
		logrus.Warn("no operator password configured; billing unlock is disabled")
	}
	if cfg.AdminUsername == "" || cfg.AdminPasswordHash == "" {
		logrus.Warn("no admin credentials configured; admin login is disabled")
	}

	tz := getenv("STORE_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logrus.Warnf("invalid STORE_TIMEZONE %q, using UTC: %v", tz, err)
		loc = time.UTC
	}
	cfg.Location = loc

	cfg.Profile = DefaultProfile()
	if path := os.Getenv("STORE_PROFILE"); path != "" {
		profile, err := LoadProfile(path)
		if err != nil {
			logrus.Warnf("unable to load store profile %s: %v", path, err)
		} else {
			cfg.Profile = profile
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// secretHash prefers a stored bcrypt hash. A plaintext variable is accepted
// for local setups and hashed at startup so it is never compared directly.
func secretHash(hashKey, plainKey string) string {
	if hash := os.Getenv(hashKey); hash != "" {
		return hash
	}
	plain := os.Getenv(plainKey)
	if plain == "" {
		return ""
	}
	logrus.Warnf("%s is set in plaintext; prefer %s", plainKey, hashKey)
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		logrus.Errorf("unable to hash %s: %v", plainKey, err)
		return ""
	}
	return string(hashed)
}
