package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type PipelineConfig struct {
	// MinContentLength is the scrape short-circuit threshold: pages shorter
	// than this skip the extraction call entirely.
	MinContentLength  int
	ScrapeTimeout     time.Duration
	GenerationTimeout time.Duration
	LockTTL           time.Duration
	ScrapeCacheTTL    time.Duration
	// ReuseDraftProjects makes prepare-assets reuse an existing draft project
	// for the same user and product URL instead of inserting a new row.
	ReuseDraftProjects bool
}

type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	APIKey        string
	Port          string

	ScraperAPIKey string
	GeminiAPIKey  string
	GeminiModel   string
	FALAPIKey     string
	FALFluxModel  string
	FALVeoModel   string

	R2       R2Config
	Stripe   StripeConfig
	Pipeline PipelineConfig
}

func LoadConfig() *Config {
	cfg := &Config{
		DatabaseURL:   mustGetenv("DATABASE_URL"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		APIKey:        mustGetenv("API_KEY"),
		Port:          getenv("PORT", "8080"),

		ScraperAPIKey: mustGetenv("SCRAPERAPI_KEY"),
		GeminiAPIKey:  mustGetenv("GEMINI_API_KEY"),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-1.5-pro"),
		FALAPIKey:     mustGetenv("FAL_API_KEY"),
		FALFluxModel:  getenv("FAL_FLUX_MODEL", "fal-ai/flux-pro/v1.1"),
		FALVeoModel:   getenv("FAL_VEO_MODEL", "fal-ai/google-veo-3.1"),
	}

	cfg.R2.AccountID = mustGetenv("R2_ACCOUNT_ID")
	cfg.R2.AccessKeyID = mustGetenv("R2_ACCESS_KEY_ID")
	cfg.R2.SecretAccessKey = mustGetenv("R2_SECRET_ACCESS_KEY")
	cfg.R2.Bucket = getenv("R2_BUCKET", "ugc-videos")
	cfg.R2.PublicURL = mustGetenv("R2_PUBLIC_URL")

	cfg.Stripe.SecretKey = mustGetenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = mustGetenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.SuccessURL = getenv("CHECKOUT_SUCCESS_URL", "https://example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}")
	cfg.Stripe.CancelURL = getenv("CHECKOUT_CANCEL_URL", "https://example.com/checkout/cancel")

	cfg.Pipeline.MinContentLength = getenvInt("PIPELINE_MIN_CONTENT_LENGTH", 100)
	cfg.Pipeline.ScrapeTimeout = getenvDuration("PIPELINE_SCRAPE_TIMEOUT", 60*time.Second)
	cfg.Pipeline.GenerationTimeout = getenvDuration("PIPELINE_GENERATION_TIMEOUT", 5*time.Minute)
	cfg.Pipeline.LockTTL = getenvDuration("PIPELINE_LOCK_TTL", 10*time.Minute)
	cfg.Pipeline.ScrapeCacheTTL = getenvDuration("PIPELINE_SCRAPE_CACHE_TTL", time.Hour)
	cfg.Pipeline.ReuseDraftProjects = getenvBool("PIPELINE_REUSE_DRAFT_PROJECTS", false)

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("%s is not set", key)
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer: %v", key, err)
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("%s must be a boolean: %v", key, err)
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s must be a duration: %v", key, err)
	}
	return d
}
