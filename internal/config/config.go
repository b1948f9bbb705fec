package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Favorites storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds each provider call. Zero means no timeout.
	HTTPTimeout time.Duration

	// ProviderRPS caps outbound provider requests per second (0 = unlimited).
	ProviderRPS   float64
	ProviderBurst int

	Port     string
	LogLevel string

	// Calendar used for forecast day grouping and labels.
	Locale   string
	Timezone string

	FavoritesBackend string
	SQLitePath       string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	// RefreshInterval re-runs every session's last search (0 = disabled).
	RefreshInterval time.Duration

	// DefaultLocation answers "search my location" when the browser cannot.
	DefaultLocation *weather.Coordinates

	// EnvFileErr is why .env was not loaded, if it was not. Load does not
	// fail on it; the caller logs it once a logger exists.
	EnvFileErr error
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileErr = godotenv.Load()

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}

	cfg.ProviderRPS, err = strconv.ParseFloat(getenvDefault("PROVIDER_RPS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_RPS: %w", err)
	}
	cfg.ProviderBurst = getenvInt("PROVIDER_BURST", 1)

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Locale = getenvDefault("LOCALE", "en")
	cfg.Timezone = getenvDefault("TIMEZONE", "Local")

	cfg.FavoritesBackend = strings.ToLower(getenvDefault("FAVORITES_BACKEND", BackendMemory))
	switch cfg.FavoritesBackend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid FAVORITES_BACKEND %q", cfg.FavoritesBackend)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "weather-dashboard.db")
	cfg.RedisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	if cfg.DefaultLocation, err = loadDefaultLocation(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Calendar builds the forecast calendar from Locale and Timezone.
func (c *AppConfig) Calendar() (weather.Calendar, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return weather.Calendar{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	return weather.Calendar{
		Location:   loc,
		Translator: translatorFor(c.Locale),
		Now:        time.Now,
	}, nil
}

func translatorFor(locale string) locales.Translator {
	switch strings.ToLower(locale) {
	case "de":
		return de.New()
	case "es":
		return es.New()
	case "fr":
		return fr.New()
	default:
		return en.New()
	}
}

func loadDefaultLocation() (*weather.Coordinates, error) {
	latStr, lonStr := os.Getenv("DEFAULT_LAT"), os.Getenv("DEFAULT_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("DEFAULT_LAT and DEFAULT_LON must be set together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LAT: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LON: %w", err)
	}
	return &weather.Coordinates{Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
