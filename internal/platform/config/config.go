// Package config builds process configuration from environment variables so
// main stays lean. Provider entries follow an indexed naming convention
// (RC_PROVIDER_BASE_1, RC_PROVIDER_KEY_1, RC_PROVIDER_BASE_2, ...); an entry
// with no base endpoint is simply absent from the chain.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxProviders bounds the ordinary ranked provider chain.
const MaxProviders = 4

// Provider captures the raw, unvalidated configuration of one external
// RC data provider. Validation happens in the provider registry.
type Provider struct {
	Index            int // configured env slot (1-based); 0 for the last-resort entry
	Base             string
	Key              string
	Method           string
	AuthHeader       string
	AuthScheme       string
	AuthSchemeSet    bool // distinguishes "empty scheme" from "not configured"
	PayloadField     string
	ExtraParamsJSON  string
	ExtraHeadersJSON string
	SigningKey       string // path to a PEM file or inline PEM material
	SignatureHeader  string
	TimestampHeader  string
	Shape            string // "surepass" (structured) or "raw"
}

// Redis captures connection settings for the optional hot cache layer.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures settings for the optional audit analytics stream.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Config is the full server configuration.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	AdminToken    string
	LookupTimeout time.Duration
	LookupPrice   string // decimal string, rupees per delivered record
	CacheTTL      time.Duration
	Providers     []Provider
	LastResort    *Provider
	Redis         Redis
	Kafka         Kafka
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:          getenv("RC_GATEWAY_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		LookupTimeout: getenvDuration("RC_PROVIDER_TIMEOUT", 15*time.Second),
		LookupPrice:   getenv("RC_LOOKUP_PRICE", "15"),
		CacheTTL:      getenvDuration("RC_CACHE_TTL", 10*time.Minute),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenv("KAFKA_AUDIT_TOPIC", "rc.lookup.attempts"),
		},
	}

	// Gaps in the index sequence are skipped but the slot number is kept:
	// a provider configured in slot 2 stays ordinal 2 even when slot 1 is
	// absent, so provenance and audit references stay stable.
	for i := 1; i <= MaxProviders; i++ {
		p := providerFromEnv(indexedKey(i))
		if p.Base == "" {
			continue
		}
		p.Index = i
		cfg.Providers = append(cfg.Providers, p)
	}

	// The last-resort provider uses separate non-indexed keys and is
	// activated only when its credential is present.
	if os.Getenv("RC_LASTRESORT_KEY") != "" {
		lr := providerFromEnv(func(name string) string { return "RC_LASTRESORT_" + name })
		if lr.Base != "" {
			cfg.LastResort = &lr
		}
	}

	return cfg
}

func indexedKey(i int) func(string) string {
	suffix := "_" + strconv.Itoa(i)
	return func(name string) string { return "RC_PROVIDER_" + name + suffix }
}

func providerFromEnv(key func(string) string) Provider {
	scheme, schemeSet := os.LookupEnv(key("AUTH_SCHEME"))
	return Provider{
		Base:             os.Getenv(key("BASE")),
		Key:              os.Getenv(key("KEY")),
		Method:           os.Getenv(key("METHOD")),
		AuthHeader:       os.Getenv(key("AUTH_HEADER")),
		AuthScheme:       scheme,
		AuthSchemeSet:    schemeSet,
		PayloadField:     os.Getenv(key("FIELD")),
		ExtraParamsJSON:  os.Getenv(key("EXTRA_PARAMS")),
		ExtraHeadersJSON: os.Getenv(key("EXTRA_HEADERS")),
		SigningKey:       os.Getenv(key("SIGNING_KEY")),
		SignatureHeader:  os.Getenv(key("SIGNATURE_HEADER")),
		TimestampHeader:  os.Getenv(key("TIMESTAMP_HEADER")),
		Shape:            os.Getenv(key("SHAPE")),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
