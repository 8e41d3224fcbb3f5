package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	RequestTimeout time.Duration

	ProviderTimeout  time.Duration
	ReviewsProvider  string
	SimulateProvider string

	OutscraperKey   string
	OutscraperBase  string
	OutscraperAsync bool
	OutscraperLang  string
	SerpAPIKey      string
	SerpAPIBase     string
	SerpAPILang     string

	PollMaxAttempts int
	PollInterval    time.Duration
	PollStep        time.Duration
	PageMaxPages    int
	PageMaxRecords  int

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	RateLimitRPS float64
	BatchWorkers int
}

// Load reads the environment once, after merging an optional .env file.
// Variables already set in the process win over the file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,

		ProviderTimeout:  time.Duration(atoi("PROVIDER_TIMEOUT_SECONDS", 8)) * time.Second,
		ReviewsProvider:  strings.ToLower(env("REVIEWS_PROVIDER", "outscraper")),
		SimulateProvider: strings.ToLower(env("SIMULATE_PROVIDER", "serpapi")),

		OutscraperKey:   env("OUTSCRAPER_API_KEY", ""),
		OutscraperBase:  env("OUTSCRAPER_BASE_URL", "https://api.app.outscraper.com"),
		OutscraperAsync: atob("OUTSCRAPER_ASYNC", false),
		OutscraperLang:  env("OUTSCRAPER_LANGUAGE", "en"),
		SerpAPIKey:      env("SERPAPI_KEY", ""),
		SerpAPIBase:     env("SERPAPI_BASE_URL", "https://serpapi.com"),
		SerpAPILang:     env("SERPAPI_LANGUAGE", "de"),

		PollMaxAttempts: atoi("POLL_MAX_ATTEMPTS", 12),
		PollInterval:    time.Duration(atoi("POLL_INTERVAL_MS", 400)) * time.Millisecond,
		PollStep:        time.Duration(atoi("POLL_STEP_MS", 0)) * time.Millisecond,
		PageMaxPages:    atoi("PAGE_MAX_PAGES", 25),
		PageMaxRecords:  atoi("PAGE_MAX_RECORDS", 1000),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 0)) * time.Second,

		RateLimitRPS: atof("RATE_LIMIT_RPS", 0),
		BatchWorkers: atoi("BATCH_WORKERS", 4),
	}
	if c.OutscraperKey == "" {
		log.Warn().Msg("OUTSCRAPER_API_KEY is empty")
	}
	if c.SerpAPIKey == "" {
		log.Warn().Msg("SERPAPI_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := env(k, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("var", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := env(k, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("var", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}

func atob(k string, def bool) bool {
	if v := env(k, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("var", k).Str("value", v).Msg("not a boolean, using default")
	}
	return def
}
