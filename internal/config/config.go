package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string

	// Primary and fallback Gemini models for front/back generation.
	PrimaryModel  string
	FallbackModel string

	// GenerationTimeout races against the primary-or-fallback resolution.
	GenerationTimeout time.Duration

	// HistoryCap bounds the card history; oldest entries are evicted first.
	HistoryCap int

	// ConsentIntensity is the high-water mark at or above which a deck
	// requires confirmation before drawing.
	ConsentIntensity int

	// RedrawDelay is the pause between fading a disliked card and issuing
	// the automatic redraw.
	RedrawDelay time.Duration

	PrefsBackend string // "memory" or "redis"
	RedisAddr    string

	AuditBackend string // "memory" or "firestore"

	UseMockLLM    bool // true = use mock even on GCP
	UseMockSpeech bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("ALUMA_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("ALUMA_PORT", "8080"),

		GCPProjectID: getEnv("ALUMA_GCP_PROJECT", ""),
		GCPLocation:  getEnv("ALUMA_GCP_LOCATION", "us-central1"),

		PrimaryModel:  getEnv("ALUMA_PRIMARY_MODEL", "gemini-2.5-flash"),
		FallbackModel: getEnv("ALUMA_FALLBACK_MODEL", "gemini-2.5-flash-lite"),

		GenerationTimeout: getDurationEnv("ALUMA_GENERATION_TIMEOUT", 30*time.Second),
		HistoryCap:        getIntEnv("ALUMA_HISTORY_CAP", 12),
		ConsentIntensity:  getIntEnv("ALUMA_CONSENT_INTENSITY", 4),
		RedrawDelay:       getDurationEnv("ALUMA_REDRAW_DELAY", 600*time.Millisecond),

		PrefsBackend: getEnv("ALUMA_PREFS_BACKEND", "memory"),
		RedisAddr:    getEnv("ALUMA_REDIS_ADDR", "localhost:6379"),

		AuditBackend: getEnv("ALUMA_AUDIT_BACKEND", "memory"),

		UseMockLLM:    getBoolEnv("ALUMA_USE_MOCK_LLM", mode == ModeLocal),
		UseMockSpeech: getBoolEnv("ALUMA_USE_MOCK_SPEECH", mode == ModeLocal),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("ALUMA_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
