package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	REST     RESTConfig
	Cache    CacheConfig
	Currency CurrencyConfig
	Security SecurityConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port string
}

// RESTConfig points at the backend that owns the sector snapshots.
type RESTConfig struct {
	BaseURL      string
	Token        string
	Timeout      time.Duration
	SnapshotPath string
}

type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

type CurrencyConfig struct {
	Locale string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

type KafkaConfig struct {
	Brokers        []string
	GroupID        string
	SnapshotTopics []string
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
	AddSource bool
}

const defaultSnapshotPath = "/api/v1/snapshot/hospital/%s/sectors"

// Load reads the process environment. Callers load .env files beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		REST: RESTConfig{
			BaseURL:      getEnv("REST_BASE_URL", "http://localhost:3000"),
			Token:        strings.TrimSpace(getEnv("REST_TOKEN", "")),
			Timeout:      getEnvDuration("REST_TIMEOUT", 10*time.Second),
			SnapshotPath: getEnv("SNAPSHOT_PATH_TEMPLATE", defaultSnapshotPath),
		},
		Cache: CacheConfig{
			Capacity: getEnvInt("SNAPSHOT_CACHE_CAPACITY", 1),
			TTL:      getEnvDuration("SNAPSHOT_CACHE_TTL", 0),
		},
		Currency: CurrencyConfig{
			Locale: getEnv("CURRENCY_LOCALE", "pt-BR"),
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(getEnv("JWT_SECRET", "")),
			JWTPublicKey: strings.ReplaceAll(getEnv("JWT_PUBLIC_KEY", ""), `\n`, "\n"),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", getEnvList("KAFKA_BROKER", nil)),
			GroupID:        getEnv("KAFKA_GROUP_ID", "hospital-sectors-ws"),
			SnapshotTopics: getEnvList("KAFKA_SNAPSHOT_TOPICS", []string{"hospital-sectors.snapshot.updated"}),
		},
		Logging: LoggingConfig{
			Directory: getEnv("LOG_DIR", "./logs"),
			Level:     getEnv("LOG_LEVEL", "info"),
			Format:    getEnv("LOG_FORMAT", "text"),
			AddSource: getEnvBool("LOG_ADD_SOURCE", true),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid PORT: %s", c.Server.Port))
	}
	if strings.Count(c.REST.SnapshotPath, "%s") != 1 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_PATH_TEMPLATE needs exactly one %%s placeholder: %s", c.REST.SnapshotPath))
	}
	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_CACHE_CAPACITY must be positive: %d", c.Cache.Capacity))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("SNAPSHOT_CACHE_TTL must not be negative: %s", c.Cache.TTL))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether inbound requests must carry a valid JWT.
func (c *Config) AuthEnabled() bool {
	return c.Security.JWTSecret != "" || strings.TrimSpace(c.Security.JWTPublicKey) != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}
