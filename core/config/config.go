package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App      AppConfig
	Paths    PathsConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	AI       AIConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	TrustedProxies     []string
	BaseUrl            string
	CorsAllowedOrigins []string
	ServerID           string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB Name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

// CatalogConfig configures the upstream media catalog API (TMDB).
type CatalogConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
	Language    string
}

type AIConfig struct {
	Provider           string // "gemini" or "openai"
	GeminiAPIKey       string
	OpenAIAPIKey       string
	Model              string
	LiteModel          string
	Timeout            time.Duration
	GlobalSystemPrompt string
}

// CacheConfig controls the in-memory media cache and history retention.
type CacheConfig struct {
	ListTTL             time.Duration
	RecommendationTTL   time.Duration
	HistoryMaxEntries   int
	HistoryMaxAgeDays   int
	HistoryDedupWindow  time.Duration
	CleanupIntervalMins int
	RecommendationLimit int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := getEnv("APP_DEBUG", ""); v == "true" || v == "1" || v == "on" {
		debug = true
	}

	var basicAuth []string
	if v := getEnv("APP_BASIC_AUTH", ""); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:4200", "http://localhost:5173"}
	if v := getEnv("APP_CORS_ALLOWED_ORIGINS", ""); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	appCfg := AppConfig{
		Version:            "v1.4.0",
		Port:               getEnv("APP_PORT", "3000"),
		Debug:              debug,
		Environment:        getEnv("APP_ENV", "development"),
		BasicAuth:          basicAuth,
		BasePath:           getEnv("APP_BASE_PATH", ""),
		BaseUrl:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		CorsAllowedOrigins: corsOrigins,
		ServerID:           getEnv("SERVER_ID", ""),
	}
	if v := getEnv("APP_TRUSTED_PROXIES", ""); v != "" {
		appCfg.TrustedProxies = strings.Split(v, ",")
	}

	pathsCfg := PathsConfig{
		BaseDir:  baseDir,
		Storages: baseDir,
	}

	dbCfg := DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", "sqlite"),
		Name:            getEnv("DB_NAME", filepath.Join(pathsCfg.Storages, "novareel.db")),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
		ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
		ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
		ValkeyDB:        getEnvInt("VALKEY_DB", 0),
		ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "novareel:"),
	}

	catalogCfg := CatalogConfig{
		BaseURL:     getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		BearerToken: getEnv("TMDB_API_BEARER_TOKEN", ""),
		Timeout:     time.Duration(getEnvInt("TMDB_TIMEOUT_SECONDS", 10)) * time.Second,
		Language:    getEnv("TMDB_LANGUAGE", "en-US"),
	}

	aiCfg := AIConfig{
		Provider:           getEnv("AI_PROVIDER", "gemini"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		Model:              getEnv("AI_MODEL", "gemini-2.5-flash"),
		LiteModel:          getEnv("AI_LITE_MODEL", "gemini-2.5-flash-lite"),
		Timeout:            time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 120)) * time.Second,
		GlobalSystemPrompt: getEnv("AI_GLOBAL_SYSTEM_PROMPT", ""),
	}

	cacheCfg := CacheConfig{
		ListTTL:             time.Duration(getEnvInt("CACHE_LIST_TTL_MINUTES", 5)) * time.Minute,
		RecommendationTTL:   time.Duration(getEnvInt("CACHE_RECOMMENDATION_TTL_MINUTES", 30)) * time.Minute,
		HistoryMaxEntries:   getEnvInt("HISTORY_MAX_ENTRIES", 50),
		HistoryMaxAgeDays:   getEnvInt("HISTORY_MAX_AGE_DAYS", 7),
		HistoryDedupWindow:  time.Duration(getEnvInt("HISTORY_DEDUP_WINDOW_MINUTES", 60)) * time.Minute,
		CleanupIntervalMins: getEnvInt("HISTORY_CLEANUP_INTERVAL_MINUTES", 1440),
		RecommendationLimit: getEnvInt("RECOMMENDATION_LIMIT", 5),
	}

	cfg := &Config{
		App:      appCfg,
		Paths:    pathsCfg,
		Database: dbCfg,
		Catalog:  catalogCfg,
		AI:       aiCfg,
		Cache:    cacheCfg,
	}

	Global = cfg
	return cfg, nil
}
