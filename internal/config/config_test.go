package config

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(testLogger())
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"SessionTokenExpiry", cfg.Auth.SessionTokenExpiry, 7 * 24 * time.Hour},
		{"MagicLinkExpiry", cfg.Auth.MagicLinkExpiry, 15 * time.Minute},
		{"CleanupInterval", cfg.Auth.CleanupInterval, 1 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Auth.SignInPath != "/signin" || cfg.Auth.ReportPath != "/report" {
		t.Errorf("paths: got %q and %q, want /signin and /report", cfg.Auth.SignInPath, cfg.Auth.ReportPath)
	}

	if !cfg.Approval.AllowRedecide {
		t.Error("AllowRedecide: got false, want true by default")
	}

	wantPrefixes := []string{"/report", "/admin"}
	if len(cfg.Auth.ProtectedPrefixes) != len(wantPrefixes) {
		t.Fatalf("ProtectedPrefixes: got %v, want %v", cfg.Auth.ProtectedPrefixes, wantPrefixes)
	}
	for i, p := range wantPrefixes {
		if cfg.Auth.ProtectedPrefixes[i] != p {
			t.Errorf("ProtectedPrefixes[%d]: got %q, want %q", i, cfg.Auth.ProtectedPrefixes[i], p)
		}
	}
}

func TestLoad_AdminEmailRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "test")
	t.Setenv("ADMIN_EMAIL", "")

	if _, err := Load(testLogger()); err == nil {
		t.Fatal("Load() = nil, want error when ADMIN_EMAIL is unset")
	}
}

func TestLoad_AdminEmailNormalized(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.COM ")

	cfg, err := Load(testLogger())
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.AdminEmail != "admin@example.com" {
		t.Errorf("AdminEmail: got %q, want %q", cfg.Auth.AdminEmail, "admin@example.com")
	}
}

func TestLoad_MissingJWTSecretFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load(testLogger())
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.JWTSecret != DefaultJWTSecret {
		t.Errorf("JWTSecret: got %q, want the built-in default", cfg.Auth.JWTSecret)
	}
}

func TestLoad_ShortJWTSecretRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(testLogger()); err == nil {
		t.Fatal("Load() = nil, want error for a too-short explicit secret")
	}
}

func TestLoad_ProductionRequiresLongerSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "sixteen-chars-ok")

	if _, err := Load(testLogger()); err == nil {
		t.Fatal("Load() = nil, want error for a 16-char secret in production")
	}
}

func TestLoad_CustomPrefixes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROTECTED_PREFIXES", "/dashboard, /internal ,")

	cfg, err := Load(testLogger())
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if len(cfg.Auth.ProtectedPrefixes) != 2 {
		t.Fatalf("ProtectedPrefixes: got %v, want two entries", cfg.Auth.ProtectedPrefixes)
	}
	if cfg.Auth.ProtectedPrefixes[0] != "/dashboard" || cfg.Auth.ProtectedPrefixes[1] != "/internal" {
		t.Errorf("ProtectedPrefixes: got %v", cfg.Auth.ProtectedPrefixes)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secretpw",
		Name:     "gatehouse",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=postgres password=secretpw dbname=gatehouse sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN(): got %q, want %q", got, want)
	}
}

func TestMain(m *testing.M) {
	// Make sure ambient environment does not leak into tests
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("ADMIN_EMAIL")
	os.Exit(m.Run())
}
