package config

import (
	"testing"
	"time"
)

// 必須環境変数が揃っている場合の読み込みとデフォルト値を検証する。
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notehub")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://localhost/notehub" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.TokenExpiry != 30*time.Minute {
		t.Errorf("TokenExpiry = %v, want 30m", cfg.TokenExpiry)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q", cfg.CORSAllowedOrigin)
	}
}

// 環境変数による上書きを検証する。
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notehub")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_EXPIRY", "1h")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("RATE_LIMIT_GENERAL", "10")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TokenExpiry != time.Hour {
		t.Errorf("TokenExpiry = %v, want 1h", cfg.TokenExpiry)
	}
	if cfg.BcryptCost != 4 {
		t.Errorf("BcryptCost = %d, want 4", cfg.BcryptCost)
	}
	if cfg.RateLimitGeneral != 10 {
		t.Errorf("RateLimitGeneral = %d, want 10", cfg.RateLimitGeneral)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
}

// 必須環境変数が欠けている場合にエラーになることを検証する。
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load should fail when required variables are missing")
	}
}

// 不正な形式のオプション値はデフォルトにフォールバックすることを検証する。
func TestLoad_InvalidOptionalValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/notehub")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_EXPIRY", "not-a-duration")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.TokenExpiry != 30*time.Minute {
		t.Errorf("TokenExpiry = %v, want default 30m", cfg.TokenExpiry)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want default 12", cfg.BcryptCost)
	}
}
