package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT (issued by the external auth provider, validated here)
	JWTSecret string

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	SentryDSN   string

	// Kafka event publishing (empty brokers disables publishing)
	KafkaBrokers string
	KafkaTopic   string

	// Moderation policy
	HideThreshold    int
	DeleteThreshold  int
	AppealWindowDays int

	// Discovery feed
	FeedTotalItems    int
	FeedNewSlots      int
	FeedRandomSlots   int
	FeedBoostNewHours int
	FeedHalfLifeHours int

	// System status cache
	StatusCacheTTL time.Duration

	// Listing lifecycle
	ListingTTLDays int
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "zaruud_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),

		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "zaruud.moderation"),

		HideThreshold:    getEnvInt("HIDE_THRESHOLD", 15),
		DeleteThreshold:  getEnvInt("DELETE_THRESHOLD", 25),
		AppealWindowDays: getEnvInt("APPEAL_WINDOW_DAYS", 7),

		FeedTotalItems:    getEnvInt("FEED_TOTAL_ITEMS", 20),
		FeedNewSlots:      getEnvInt("FEED_NEW_SLOTS", 3),
		FeedRandomSlots:   getEnvInt("FEED_RANDOM_SLOTS", 2),
		FeedBoostNewHours: getEnvInt("FEED_BOOST_NEW_HOURS", 24),
		FeedHalfLifeHours: getEnvInt("FEED_HALF_LIFE_HOURS", 168),

		StatusCacheTTL: parseDuration(getEnv("SYSTEM_STATUS_CACHE_TTL", "60s")),

		ListingTTLDays: getEnvInt("LISTING_TTL_DAYS", 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Minute
	}
	return d
}
