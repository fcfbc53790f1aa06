package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	MetricsPort    string
	Env            string
	LogLevel       string
	UseMemoryQueue bool
	DatabaseURL    string

	// Twilio guardian-SMS configuration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Gemini crisis-score adapter
	GeminiAPIKey  string
	GeminiModelID string
	AITimeout     time.Duration

	// Alert dispatch pipeline
	AlertQueueURL       string
	AlertPollInterval   time.Duration
	AlertOutboxBatch    int
	SMSTimeout          time.Duration
	CrisisHotline       string
	CrisisTextLine      string
	CounselorRosterTTL  time.Duration
	CounselorJWTSecret  string
	CORSAllowedOrigins  []string
	PublicRateLimit     float64
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		MetricsPort:    getEnv("METRICS_PORT", "9091"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", false),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		AITimeout:     getEnvAsDuration("AI_TIMEOUT", 8*time.Second),

		AlertQueueURL:       getEnv("ALERT_QUEUE_URL", ""),
		AlertPollInterval:   getEnvAsDuration("ALERT_POLL_INTERVAL", 2*time.Second),
		AlertOutboxBatch:    getEnvAsInt("ALERT_OUTBOX_BATCH", 25),
		SMSTimeout:          getEnvAsDuration("SMS_TIMEOUT", 10*time.Second),
		CrisisHotline:       getEnv("CRISIS_HOTLINE", "988"),
		CrisisTextLine:      getEnv("CRISIS_TEXT_LINE", "741741"),
		CounselorRosterTTL:  getEnvAsDuration("COUNSELOR_ROSTER_TTL", 24*time.Hour),
		CounselorJWTSecret:  getEnv("COUNSELOR_JWT_SECRET", ""),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS"),
		PublicRateLimit:     getEnvAsFloat("PUBLIC_RATE_LIMIT", 0),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "MindHaven"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
