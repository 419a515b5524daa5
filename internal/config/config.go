package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Estimation
	Region                       string  // 係数検索に使用する地域
	PurchaseDefaultFactorEnabled bool    // 未知の購入カテゴリにデフォルト係数を代用するか
	PurchaseDefaultFactor        float64 // 代用する中立係数

	// Dashboard
	DashboardWindowDays int // デフォルトの集計ウィンドウ（日）

	// Session
	SessionMaxAge int // 秒

	// Rate Limit
	RateLimitGeneral  int // API全般（req/min/user）
	RateLimitLogWrite int // 活動記録の書き込み（req/min/user）

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.Region = getEnvString("REGION", "Global")
	cfg.PurchaseDefaultFactorEnabled = getEnvBool("PURCHASE_DEFAULT_FACTOR_ENABLED", true)
	cfg.PurchaseDefaultFactor = getEnvFloat("PURCHASE_DEFAULT_FACTOR", 1.0)
	cfg.DashboardWindowDays = getEnvInt("DASHBOARD_WINDOW_DAYS", 30)
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitLogWrite = getEnvInt("RATE_LIMIT_LOG_WRITE", 30)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	if cfg.DashboardWindowDays < 1 || cfg.DashboardWindowDays > 365 {
		return nil, fmt.Errorf("DASHBOARD_WINDOW_DAYS must be between 1 and 365, got %d", cfg.DashboardWindowDays)
	}
	if cfg.PurchaseDefaultFactor <= 0 {
		return nil, fmt.Errorf("PURCHASE_DEFAULT_FACTOR must be positive, got %g", cfg.PurchaseDefaultFactor)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
