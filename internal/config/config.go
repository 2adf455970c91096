// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, external-service credentials, chat
// behavior, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "site-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// ContactConfig groups the contact-form relay settings. TurnstileSecret and
// ResendAPIKey deliberately have no defaults; an empty value leaves the
// corresponding collaborator unconfigured and the relay fails closed.
type ContactConfig struct {
	TurnstileSecret string        // TURNSTILE_SECRET_KEY
	ResendAPIKey    string        // RESEND_API_KEY
	OperatorAddr    string        // CONTACT_OPERATOR_ADDR (lead recipient)
	LeadFrom        string        // CONTACT_LEAD_FROM (operator-mail sender header)
	AckFrom         string        // CONTACT_ACK_FROM (acknowledgment sender header)
	FallbackTTL     time.Duration // CONTACT_FALLBACK_TTL (lead record retention)
}

// ChatConfig groups the chat-session settings.
type ChatConfig struct {
	Cooldown   time.Duration // CHAT_COOLDOWN (minimum interval between sends)
	TypingMin  time.Duration // CHAT_TYPING_MIN
	TypingMax  time.Duration // CHAT_TYPING_MAX
	SessionTTL time.Duration // CHAT_SESSION_TTL (idle eviction window)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath      string // SQLite path for leads and idempotency records
	BotDataPath string // chatbot response database (JSON)

	// Features
	Contact ContactConfig
	Chat    ChatConfig

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// App
		DBPath:      getenv("DB_PATH", "leads.db"),
		BotDataPath: getenv("BOT_DATA_PATH", "data/chatbot-db.json"),

		// Contact relay
		Contact: ContactConfig{
			TurnstileSecret: getenv("TURNSTILE_SECRET_KEY", ""),
			ResendAPIKey:    getenv("RESEND_API_KEY", ""),
			OperatorAddr:    getenv("CONTACT_OPERATOR_ADDR", "contact@domindev.com"),
			LeadFrom:        getenv("CONTACT_LEAD_FROM", "DominDev System <contact@domindev.com>"),
			AckFrom:         getenv("CONTACT_ACK_FROM", "Contact DominDev <contact@domindev.com>"),
			FallbackTTL:     getdur("CONTACT_FALLBACK_TTL", 7*24*time.Hour),
		},

		// Chat sessions
		Chat: ChatConfig{
			Cooldown:   getdur("CHAT_COOLDOWN", 500*time.Millisecond),
			TypingMin:  getdur("CHAT_TYPING_MIN", 600*time.Millisecond),
			TypingMax:  getdur("CHAT_TYPING_MAX", 1100*time.Millisecond),
			SessionTTL: getdur("CHAT_SESSION_TTL", 30*time.Minute),
		},

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "site-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.BotDataPath) == "" {
		return cfg, errors.New("BOT_DATA_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.Contact.OperatorAddr) == "" {
		return cfg, errors.New("CONTACT_OPERATOR_ADDR must not be empty")
	}
	if cfg.Contact.FallbackTTL <= 0 {
		return cfg, errors.New("CONTACT_FALLBACK_TTL must be > 0")
	}
	if cfg.Chat.Cooldown < 0 {
		return cfg, errors.New("CHAT_COOLDOWN must be >= 0")
	}
	if cfg.Chat.TypingMin < 0 || cfg.Chat.TypingMax < cfg.Chat.TypingMin {
		return cfg, errors.New("CHAT_TYPING_MIN/MAX must satisfy 0 <= min <= max")
	}
	if cfg.Chat.SessionTTL <= 0 {
		return cfg, errors.New("CHAT_SESSION_TTL must be > 0")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
