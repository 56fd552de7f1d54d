package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the fallback used when JWT_SECRET is unset. Running
// on it is a deployment misconfiguration, not a supported mode; Load logs
// a warning but continues so local setups still boot.
const DefaultJWTSecret = "your-secret-key"

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Approval ApprovalConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	BaseURL        string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret          string
	SessionTokenExpiry time.Duration
	MagicLinkExpiry    time.Duration
	CleanupInterval    time.Duration
	// Path prefixes the perimeter gate protects. Requests elsewhere pass
	// through untouched.
	ProtectedPrefixes []string
	SignInPath        string
	// ReportPath is the default landing page after magic-link verification
	// when no explicit destination was carried through the flow.
	ReportPath string
	// AdminEmail is the single reserved administrator address; registration
	// against it is always rejected.
	AdminEmail    string
	AdminPassword string
}

type ApprovalConfig struct {
	// AllowRedecide permits an administrator to overwrite an APPROVED or
	// DENIED status with a later decision. Matches the original behavior
	// when true; when false the decision endpoint returns a conflict.
	AllowRedecide bool
}

type EmailConfig struct {
	Enabled     bool
	AWSRegion   string
	FromAddress string
}

func Load(logger *slog.Logger) (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		jwtSecret = DefaultJWTSecret
		logger.Warn("JWT_SECRET not set, falling back to the built-in default; do not run production this way")
	} else if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	adminEmail := strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", "")))
	if adminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL is required")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "gatehouse"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:8080"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			SessionTokenExpiry: getEnvAsDuration("SESSION_TOKEN_EXPIRY", 7*24*time.Hour),
			MagicLinkExpiry:    getEnvAsDuration("MAGIC_LINK_EXPIRY", 15*time.Minute),
			CleanupInterval:    getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 1*time.Hour),
			ProtectedPrefixes:  parsePrefixes(getEnv("PROTECTED_PREFIXES", "/report,/admin")),
			SignInPath:         getEnv("SIGNIN_PATH", "/signin"),
			ReportPath:         getEnv("REPORT_PATH", "/report"),
			AdminEmail:         adminEmail,
			AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		},
		Approval: ApprovalConfig{
			AllowRedecide: getEnvAsBool("APPROVAL_ALLOW_REDECIDE", true),
		},
		Email: EmailConfig{
			Enabled:     getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", false),
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@localhost"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum standards for an explicitly configured
// secret. The built-in default bypasses this; it is already known-bad.
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parsePrefixes(raw string) []string {
	parts := strings.Split(raw, ",")
	prefixes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
