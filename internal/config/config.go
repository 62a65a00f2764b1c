package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Sync modes for the spreadsheet mirror.
const (
	SyncModeAwait = "await"
	SyncModeAsync = "async"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	SheetsCredJSON    string
	SheetsCredFile    string
	SpreadsheetID     string
	SheetName         string
	SyncMode          string
	SyncTimeout       time.Duration
	TaskBoardCacheTTL time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SEGUIMIENTO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Seguimiento CMR API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sheet.name", "Hoja1")
	v.SetDefault("sync.timeout_ms", 4000)
	v.SetDefault("tasks.cache_ttl", "5m")

	ttlString := v.GetString("tasks.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid tasks cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("sync.timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 4000
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		SheetsCredJSON:    v.GetString("sheets.credentials"),
		SheetsCredFile:    v.GetString("sheets.credentials_file"),
		SpreadsheetID:     v.GetString("spreadsheet.id"),
		SheetName:         v.GetString("sheet.name"),
		SyncTimeout:       time.Duration(timeoutMs) * time.Millisecond,
		TaskBoardCacheTTL: ttl,
	}

	cfg.SyncMode, err = resolveSyncMode(v.GetString("sync.mode"), cfg.IsProduction())
	if err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

// resolveSyncMode picks the spreadsheet sync strategy: an explicit override
// always wins, otherwise production awaits the sync and every other
// environment fires and forgets.
func resolveSyncMode(override string, production bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "":
		if production {
			return SyncModeAwait, nil
		}
		return SyncModeAsync, nil
	case SyncModeAwait:
		return SyncModeAwait, nil
	case SyncModeAsync:
		return SyncModeAsync, nil
	default:
		return "", fmt.Errorf("invalid sync mode %q", override)
	}
}
