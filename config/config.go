package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything read from the environment at boot. Values are
// immutable after Load; components receive what they need as parameters
// instead of reading the environment themselves.
type Config struct {
	Port           string
	AllowedOrigins []string

	MongoURI     string
	DatabaseName string

	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration

	AdminEmail    string
	AdminPassword string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
}

// Load reads the environment into a Config. The JWT secret is the one
// value the process cannot run without: serving requests with an empty
// signing key would make every token forgeable.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	cfg := &Config{
		Port:          getEnvDefault("PORT", "8080"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		DatabaseName:  getEnvDefault("DATABASE_NAME", "tasknest"),
		JWTSecret:     secret,
		TokenTTL:      time.Duration(getEnvIntDefault("TOKEN_TTL_DAYS", 7)) * 24 * time.Hour,
		ResetTTL:      time.Duration(getEnvIntDefault("RESET_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AdminEmail:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvIntDefault("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPass:      os.Getenv("SMTP_PASSWORD"),
		MailFrom:      getEnvDefault("MAIL_FROM", "no-reply@tasknest.app"),
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// SMTPConfigured reports whether outgoing mail can actually be sent.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
