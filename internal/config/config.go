package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreBackendMemory = "memory"
	StoreBackendFile   = "file"
	StoreBackendRedis  = "redis"
	StoreBackendMongo  = "mongo"
)

// Verification service modes
const (
	VerificationModeHTTP = "http"
	VerificationModeFake = "fake"
)

// Config holds all configuration values
type Config struct {
	// Server configuration
	Port        int    `json:"port"`
	Environment string `json:"environment"`

	// Remote verification service
	VerificationBaseURL string        `json:"verification_base_url"`
	VerificationTimeout time.Duration `json:"verification_timeout"`
	VerificationMode    string        `json:"verification_mode"`

	// Session store
	StoreBackend           string        `json:"store_backend"`
	StoreFilePath          string        `json:"store_file_path"`
	StoreKeyPrefix         string        `json:"store_key_prefix"`
	VerificationSessionTTL time.Duration `json:"verification_session_ttl"`

	// Redis configuration
	RedisURI      string `json:"redis_uri"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`

	// MongoDB configuration
	MongoURI             string `json:"mongo_uri"`
	MongoDatabase        string `json:"mongo_database"`
	MongoStoreCollection string `json:"mongo_store_collection"`

	// Flow behaviour
	ResendWindow          time.Duration `json:"resend_window"`
	CloseGraceDelay       time.Duration `json:"close_grace_delay"`
	PostLoginDestination  string        `json:"post_login_destination"`
	AllowedCountryCodes   []string      `json:"allowed_country_codes"`
	DefaultCountryCode    string        `json:"default_country_code"`
	StrictPhoneValidation bool          `json:"strict_phone_validation"`

	// Login broadcast
	LoginEventsChannel string `json:"login_events_channel"`

	// Tracing
	TracingEnabled  bool   `json:"tracing_enabled"`
	TracingEndpoint string `json:"tracing_endpoint"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present.
func LoadConfig() error {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// FromEnv builds a Config from the current environment without touching
// AppConfig.
func FromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	verificationTimeout, err := time.ParseDuration(getEnvOrDefault("VERIFICATION_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_TIMEOUT: %w", err)
	}

	sessionTTL, err := time.ParseDuration(getEnvOrDefault("VERIFICATION_SESSION_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid VERIFICATION_SESSION_TTL: %w", err)
	}

	resendWindow, err := time.ParseDuration(getEnvOrDefault("RESEND_WINDOW", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESEND_WINDOW: %w", err)
	}
	if resendWindow < time.Second {
		return nil, fmt.Errorf("invalid RESEND_WINDOW: must be at least 1s, got %s", resendWindow)
	}

	closeGrace, err := time.ParseDuration(getEnvOrDefault("CLOSE_GRACE_DELAY", "300ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_GRACE_DELAY: %w", err)
	}

	strictPhone, err := strconv.ParseBool(getEnvOrDefault("STRICT_PHONE_VALIDATION", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid STRICT_PHONE_VALIDATION: %w", err)
	}

	tracingEnabled, err := strconv.ParseBool(getEnvOrDefault("TRACING_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACING_ENABLED: %w", err)
	}

	storeBackend := strings.ToLower(getEnvOrDefault("STORE_BACKEND", StoreBackendMemory))
	switch storeBackend {
	case StoreBackendMemory, StoreBackendFile, StoreBackendRedis, StoreBackendMongo:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND: %q", storeBackend)
	}

	verificationMode := strings.ToLower(getEnvOrDefault("VERIFICATION_MODE", VerificationModeHTTP))
	switch verificationMode {
	case VerificationModeHTTP, VerificationModeFake:
	default:
		return nil, fmt.Errorf("invalid VERIFICATION_MODE: %q", verificationMode)
	}

	countryCodes := splitList(getEnvOrDefault("ALLOWED_COUNTRY_CODES", "+20,+966"))
	if len(countryCodes) == 0 {
		return nil, fmt.Errorf("ALLOWED_COUNTRY_CODES must list at least one code")
	}
	defaultCode := getEnvOrDefault("DEFAULT_COUNTRY_CODE", countryCodes[0])
	if !contains(countryCodes, defaultCode) {
		return nil, fmt.Errorf("DEFAULT_COUNTRY_CODE %q is not in ALLOWED_COUNTRY_CODES", defaultCode)
	}

	return &Config{
		// Server configuration
		Port:        port,
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Remote verification service
		VerificationBaseURL: strings.TrimRight(getEnvOrDefault("VERIFICATION_BASE_URL", "http://localhost:8000/api"), "/"),
		VerificationTimeout: verificationTimeout,
		VerificationMode:    verificationMode,

		// Session store
		StoreBackend:           storeBackend,
		StoreFilePath:          getEnvOrDefault("STORE_FILE_PATH", ".app-login/store.json"),
		StoreKeyPrefix:         getEnvOrDefault("STORE_KEY_PREFIX", "app-login:"),
		VerificationSessionTTL: sessionTTL,

		// Redis configuration
		RedisURI:      getEnvOrDefault("REDIS_URI", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// MongoDB configuration
		MongoURI:             getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnvOrDefault("MONGODB_DATABASE", "app_login"),
		MongoStoreCollection: getEnvOrDefault("MONGODB_STORE_COLLECTION", "client_store"),

		// Flow behaviour
		ResendWindow:          resendWindow,
		CloseGraceDelay:       closeGrace,
		PostLoginDestination:  getEnvOrDefault("POST_LOGIN_DESTINATION", "/"),
		AllowedCountryCodes:   countryCodes,
		DefaultCountryCode:    defaultCode,
		StrictPhoneValidation: strictPhone,

		LoginEventsChannel: getEnvOrDefault("LOGIN_EVENTS_CHANNEL", ""),

		TracingEnabled:  tracingEnabled,
		TracingEndpoint: getEnvOrDefault("TRACING_ENDPOINT", "localhost:4317"),
	}, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
