package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Twilio    TwilioConfig
	Synthesis SynthesisConfig
	Dialer    DialerConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	// ValidateSignatures toggles webhook signature checks; disable only for
	// local testing behind a tunnel.
	ValidateSignatures bool
}

type SynthesisConfig struct {
	Enabled bool

	ElevenLabsKey     string
	ElevenLabsBaseURL string
	ElevenLabsModel   string

	// OpenAI is the secondary provider, used on primary quota exhaustion.
	OpenAIKey   string
	OpenAIVoice string

	CacheDir    string
	Concurrency int
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Voices maps variant keys (warm/bold/calm) to primary voice ids, given
	// as "variant=voiceid" pairs.
	Voices         map[string]string
	DefaultVoiceID string
}

type DialerConfig struct {
	// PublicBaseURL is the externally reachable base of this service, used
	// for webhook callbacks and clip URLs.
	PublicBaseURL string

	LinkURL  string
	LinkBody string

	HandoffNumber  string
	RingTimeoutSec int
}

type AuthConfig struct {
	APIKey       string
	APIKeyHeader string
}

func Load() (*Config, error) {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	concurrency, err := getEnvInt("SYNTH_CONCURRENCY", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNTH_CONCURRENCY: %w", err)
	}

	maxAttempts, err := getEnvInt("SYNTH_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNTH_MAX_ATTEMPTS: %w", err)
	}

	baseDelay, err := getEnvDuration("SYNTH_BASE_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNTH_BASE_DELAY: %w", err)
	}

	maxDelay, err := getEnvDuration("SYNTH_MAX_DELAY", 8*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNTH_MAX_DELAY: %w", err)
	}

	ringTimeout, err := getEnvInt("DIAL_RING_TIMEOUT_SEC", 25)
	if err != nil {
		return nil, fmt.Errorf("invalid DIAL_RING_TIMEOUT_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Twilio: TwilioConfig{
			AccountSID:         getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:          getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber:         getEnv("TWILIO_FROM_NUMBER", ""),
			ValidateSignatures: getEnvBool("TWILIO_VALIDATE_SIGNATURES", true),
		},
		Synthesis: SynthesisConfig{
			Enabled:           getEnvBool("SYNTH_ENABLED", true),
			ElevenLabsKey:     getEnv("ELEVENLABS_API_KEY", ""),
			ElevenLabsBaseURL: getEnv("ELEVENLABS_BASE_URL", ""),
			ElevenLabsModel:   getEnv("ELEVENLABS_MODEL_ID", ""),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIVoice:       getEnv("SYNTH_OPENAI_VOICE", ""),
			CacheDir:          getEnv("SYNTH_CACHE_DIR", "clips"),
			Concurrency:       concurrency,
			MaxAttempts:       maxAttempts,
			BaseDelay:         baseDelay,
			MaxDelay:          maxDelay,
			Voices:            parseVoices(getEnv("SYNTH_VOICES", "")),
			DefaultVoiceID:    getEnv("SYNTH_DEFAULT_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		},
		Dialer: DialerConfig{
			PublicBaseURL:  strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", ""), "/"),
			LinkURL:        getEnv("DIAL_LINK_URL", ""),
			LinkBody:       getEnv("DIAL_LINK_BODY", ""),
			HandoffNumber:  getEnv("DIAL_HANDOFF_NUMBER", ""),
			RingTimeoutSec: ringTimeout,
		},
		Auth: AuthConfig{
			APIKey:       getEnv("API_KEY", ""),
			APIKeyHeader: getEnv("API_KEY_HEADER", "X-API-Key"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Twilio.AccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID")
	}
	if c.Twilio.AuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN")
	}
	if c.Twilio.FromNumber == "" {
		missing = append(missing, "TWILIO_FROM_NUMBER")
	}
	if c.Dialer.PublicBaseURL == "" {
		missing = append(missing, "PUBLIC_BASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseVoices reads "warm=id1,bold=id2,calm=id3".
func parseVoices(raw string) map[string]string {
	voices := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" || v == "" {
			continue
		}
		voices[k] = v
	}
	return voices
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}
