package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                         string
	StoreDriver                  string
	MongoURI                     string
	MongoDatabase                string
	RecordCollection             string
	FailedNotificationCollection string
	Timeout                      time.Duration
	Timezone                     string
	JWTConfigs                   []JWTConfig
	JWTAudience                  string
	AllowedOrigins               []string

	AIProvider          string
	GoogleCloudProject  string
	GoogleCloudLocation string
	GeminiModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	AITimeout           time.Duration

	QuestionnairePath  string
	SessionIdleTimeout time.Duration
	MaxResumeBytes     int64

	MessengerEndpoint         string
	MessengerAdminDestination string
	MessengerTimeout          time.Duration
	AdminRecordBaseURL        string

	LogLevel  string
	LogFormat string
}

// 保存先ドライバ。
const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

// AI プロバイダ。
const (
	AIProviderGemini = "gemini"
	AIProviderOpenAI = "openai"
	AIProviderNone   = "none"
)

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	var errs []error
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return fallback
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, raw))
			return fallback
		}
		return parsed
	}

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "interview-desk-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_OAUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_OAUTH_JWT_ISSUER", "auth-oauth"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		errs = append(errs, errors.New("JWT secrets not configured. Set AUTH_JWT_SECRET or AUTH_OAUTH_JWT_SECRET"))
	}

	storeDriver := strings.ToLower(envOrDefault("STORE_DRIVER", StoreDriverMongo))
	if storeDriver != StoreDriverMongo && storeDriver != StoreDriverMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", storeDriver))
	}

	aiProvider := strings.ToLower(envOrDefault("AI_PROVIDER", AIProviderGemini))
	switch aiProvider {
	case AIProviderGemini, AIProviderOpenAI, AIProviderNone:
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER: unknown provider %q", aiProvider))
	}

	var maxResume int64 = 5 << 20
	if raw := strings.TrimSpace(os.Getenv("MAX_RESUME_BYTES")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			errs = append(errs, fmt.Errorf("MAX_RESUME_BYTES: invalid size %q", raw))
		} else {
			maxResume = parsed
		}
	}

	cfg := Config{
		Addr:                         envOrDefault("HTTP_ADDR", ":8080"),
		StoreDriver:                  storeDriver,
		MongoURI:                     envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:                envOrDefault("MONGO_DB", "interview-desk"),
		RecordCollection:             envOrDefault("RECORD_COLLECTION", "interview_records"),
		FailedNotificationCollection: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),
		Timeout:                      duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		Timezone:                     envOrDefault("TIMEZONE", "Asia/Seoul"),
		JWTConfigs:                   jwtConfigs,
		JWTAudience:                  strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE")),
		AllowedOrigins:               parseList("API_ALLOWED_ORIGINS", []string{"*"}),

		AIProvider:          aiProvider,
		GoogleCloudProject:  strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT")),
		GoogleCloudLocation: envOrDefault("GOOGLE_CLOUD_LOCATION", "us-central1"),
		GeminiModel:         envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:       envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:         envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:           duration("AI_TIMEOUT", 60*time.Second),

		QuestionnairePath:  strings.TrimSpace(os.Getenv("QUESTIONNAIRE_PATH")),
		SessionIdleTimeout: duration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		MaxResumeBytes:     maxResume,

		MessengerEndpoint:         strings.TrimRight(strings.TrimSpace(os.Getenv("MESSENGER_GATEWAY_URL")), "/"),
		MessengerAdminDestination: strings.TrimSpace(os.Getenv("MESSENGER_ADMIN_DESTINATION")),
		MessengerTimeout:          duration("MESSENGER_GATEWAY_TIMEOUT", 3*time.Second),
		AdminRecordBaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("ADMIN_RECORD_BASE_URL")), "/"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
