package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTSecret        = "default-access-secret-change-me"
	defaultJWTRefreshSecret = "default-refresh-secret-change-me"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBLogLevel string

	JWTSecret           string
	JWTRefreshSecret    string
	JWTExpiresIn        time.Duration
	JWTRefreshExpiresIn time.Duration
	AllowedEmailDomain  string

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleCalendarID   string
	MSAccessToken      string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AdapterTimeout          time.Duration
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration

	ReminderInterval  time.Duration
	ReminderLookahead time.Duration
}

func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "task_management"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		JWTSecret:           getEnv("JWT_SECRET", defaultJWTSecret),
		JWTRefreshSecret:    getEnv("JWT_REFRESH_SECRET", defaultJWTRefreshSecret),
		JWTExpiresIn:        getDurationEnv("JWT_EXPIRES_IN", 15*time.Minute),
		JWTRefreshExpiresIn: getDurationEnv("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		AllowedEmailDomain:  strings.ToLower(getEnv("ALLOWED_EMAIL_DOMAIN", "company.com")),

		BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
		BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		BootstrapAdminName:     getEnv("BOOTSTRAP_ADMIN_NAME", "System Administrator"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GoogleCalendarID:   getEnv("GOOGLE_CALENDAR_ID", "primary"),
		MSAccessToken:      getEnv("MS_ACCESS_TOKEN", ""),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getIntEnv("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		SMTPFrom: getEnv("SMTP_FROM", ""),

		AdapterTimeout:          getDurationEnv("ADAPTER_TIMEOUT", 10*time.Second),
		BreakerFailureThreshold: uint32(getIntEnv("BREAKER_FAILURE_THRESHOLD", 5)),
		BreakerOpenTimeout:      getDurationEnv("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRequests:  getIntEnv("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:    getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),

		ReminderInterval:  getDurationEnv("REMINDER_INTERVAL", 0),
		ReminderLookahead: getDurationEnv("REMINDER_LOOKAHEAD", 24*time.Hour),
	}
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	var problems []string

	switch c.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		problems = append(problems, "JWT_SECRET and JWT_REFRESH_SECRET are required")
	} else if c.JWTSecret == c.JWTRefreshSecret {
		problems = append(problems, "JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || c.JWTRefreshSecret == defaultJWTRefreshSecret) {
		problems = append(problems, "default JWT secrets are not allowed in release mode")
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpiresIn <= 0 {
		problems = append(problems, "token lifetimes must be positive")
	}
	if c.AllowedEmailDomain == "" {
		problems = append(problems, "ALLOWED_EMAIL_DOMAIN is required")
	}
	if c.AdapterTimeout <= 0 {
		problems = append(problems, "ADAPTER_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
