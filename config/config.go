package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type BackURLs struct {
	Success string
	Failure string
	Pending string
}

type Config struct {
	Port   string
	AppEnv string

	DBURL            string
	DBMaxOpenConns   int
	DBMaxIdleTime    time.Duration
	DBConnectTimeout time.Duration

	MPAccessToken   string
	MPBaseURL       string
	MPTimeout       time.Duration
	MPSandbox       bool
	MPWebhookSecret string

	NotificationURL      string
	BackURLs             BackURLs
	AutoReturn           string
	PreferenceExpiration time.Duration
	ItemTitle            string
	Currency             string
	MaxAmount            decimal.Decimal

	CORSOrigin string
	JWTSecret  string
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads the process environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from an arbitrary lookup function.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	r := reader{lookup: lookup}

	cfg := &Config{
		Port:   r.get("PORT", "3000"),
		AppEnv: r.get("APP_ENV", "development"),

		DBURL:            r.must("DB_URL", "DATABASE_URL"),
		DBMaxOpenConns:   r.getInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleTime:    r.getDuration("DB_MAX_IDLE_TIME", 30*time.Second),
		DBConnectTimeout: r.getDuration("DB_CONNECT_TIMEOUT", 2*time.Second),

		MPAccessToken:   r.must("MP_TOKEN"),
		MPBaseURL:       r.get("MP_API_URL", "https://api.mercadopago.com"),
		MPTimeout:       r.getDuration("MP_TIMEOUT", 10*time.Second),
		MPSandbox:       r.getBool("MP_SANDBOX", false),
		MPWebhookSecret: r.get("MP_WEBHOOK_SECRET", ""),

		NotificationURL: r.must("MP_NOTIFICATION_URL"),
		BackURLs: BackURLs{
			Success: r.get("MP_SUCCESS_URL", "https://seu-site.com/sucesso"),
			Failure: r.get("MP_FAILURE_URL", "https://seu-site.com/erro"),
			Pending: r.get("MP_PENDING_URL", "https://seu-site.com/pendente"),
		},
		AutoReturn:           r.get("MP_AUTO_RETURN", "approved"),
		PreferenceExpiration: r.getDuration("PREFERENCE_EXPIRATION", 24*time.Hour),
		ItemTitle:            r.get("PAYMENT_ITEM_TITLE", "Acesso ao cálculo da nota"),
		Currency:             r.get("PAYMENT_CURRENCY", "BRL"),
		MaxAmount:            r.getDecimal("PAYMENT_MAX_AMOUNT", decimal.NewFromInt(10000)),

		CORSOrigin: r.get("CORS_ORIGIN", "*"),
		JWTSecret:  r.get("JWT_SECRET", ""),
	}

	if r.err != nil {
		return nil, r.err
	}
	if !cfg.MaxAmount.IsPositive() {
		return nil, fmt.Errorf("PAYMENT_MAX_AMOUNT must be positive, got %s", cfg.MaxAmount)
	}
	if cfg.PreferenceExpiration <= 0 {
		return nil, fmt.Errorf("PREFERENCE_EXPIRATION must be positive, got %s", cfg.PreferenceExpiration)
	}
	return cfg, nil
}

// reader keeps the first error so Load can report it after reading every key.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (r *reader) get(key, fallback string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return fallback
}

func (r *reader) must(keys ...string) string {
	for _, key := range keys {
		if v, ok := r.raw(key); ok {
			return v
		}
	}
	r.fail(fmt.Errorf("missing required environment variable: %s", keys[0]))
	return ""
}

func (r *reader) getInt(key string, fallback int) int {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return n
}

func (r *reader) getBool(key string, fallback bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return b
}

func (r *reader) getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return d
}

func (r *reader) getDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		r.fail(fmt.Errorf("invalid %s %q: %w", key, v, err))
		return fallback
	}
	return d
}
