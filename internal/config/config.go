package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Security   SecurityConfig
	Detection  DetectionConfig
	Heuristics HeuristicsConfig
	OCR        OCRConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

// DetectionConfig holds the tuning values of the detection pipeline.
type DetectionConfig struct {
	// MatchTolerance is the relative tolerance used when pairing a
	// pattern-matched value with a normalized amount (0.10 = 10%).
	MatchTolerance float64
	// DeviationTolerance is the relative deviation above which a confidence
	// penalty applies to an approximate match (0.05 = 5%).
	DeviationTolerance float64
	// ContextWindow is the number of characters inspected on each side of an
	// amount during contextual keyword classification.
	ContextWindow int
	// ProvenanceWindow is the number of characters quoted on each side of an
	// amount when no single source line contains it.
	ProvenanceWindow int
	// MaxTextLength caps accepted text input, in characters.
	MaxTextLength int
	// MaxUploadBytes caps accepted image uploads.
	MaxUploadBytes int64
}

// HeuristicsConfig drives the noise filters applied to extracted tokens.
// These are tunable guesses about what is not a monetary amount.
type HeuristicsConfig struct {
	// TollFreePrefixes marks tokens that look like phone numbers.
	TollFreePrefixes []string
	// IDValueThreshold rejects huge undecorated integers as likely
	// invoice or account identifiers.
	IDValueThreshold float64
	// SmallValueFloor rejects values below it unless a billing keyword
	// appears somewhere in the text.
	SmallValueFloor float64
	// BillingKeywords whitelists small values and raises extraction
	// confidence when present.
	BillingKeywords []string
}

type OCRConfig struct {
	Enabled bool
	Binary  string
	Lang    string
	Timeout time.Duration
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			Environment:  getEnv("APP_ENV", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
		},
		Detection:  LoadDetection(),
		Heuristics: LoadHeuristics(),
		OCR: OCRConfig{
			Enabled: getBoolEnv("OCR_ENABLED", true),
			Binary:  getEnv("OCR_BINARY", "tesseract"),
			Lang:    getEnv("OCR_LANG", "eng"),
			Timeout: getDurationEnv("OCR_TIMEOUT", 20*time.Second),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	return config
}

// LoadDetection loads only the pipeline tuning values, for tests and tools
// that need no server configuration.
func LoadDetection() DetectionConfig {
	return DetectionConfig{
		MatchTolerance:     getFloatEnv("DETECTION_MATCH_TOLERANCE", 0.10),
		DeviationTolerance: getFloatEnv("DETECTION_DEVIATION_TOLERANCE", 0.05),
		ContextWindow:      getIntEnv("DETECTION_CONTEXT_WINDOW", 50),
		ProvenanceWindow:   getIntEnv("DETECTION_PROVENANCE_WINDOW", 20),
		MaxTextLength:      getIntEnv("DETECTION_MAX_TEXT_LENGTH", 10000),
		MaxUploadBytes:     int64(getIntEnv("DETECTION_MAX_UPLOAD_BYTES", 10*1024*1024)),
	}
}

// LoadHeuristics loads the noise-filter tuning values.
func LoadHeuristics() HeuristicsConfig {
	return HeuristicsConfig{
		TollFreePrefixes: getSliceEnv("HEURISTIC_TOLLFREE_PREFIXES",
			[]string{"800", "888", "877", "866", "855", "844"}),
		IDValueThreshold: getFloatEnv("HEURISTIC_ID_VALUE_THRESHOLD", 10_000_000),
		SmallValueFloor:  getFloatEnv("HEURISTIC_SMALL_VALUE_FLOOR", 10),
		BillingKeywords: getSliceEnv("HEURISTIC_BILLING_KEYWORDS",
			[]string{"total", "paid", "due", "tax", "discount", "bill", "amount"}),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		}
		return []string{"*"}
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	return origins
}
