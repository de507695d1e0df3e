package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	BodyLimit       string        `env:"HTTP_BODY_LIMIT" envDefault:"10M"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DatabaseURL      string `env:"DATABASE_URL"`
	DBMigrateOnStart bool   `env:"DB_MIGRATE_ON_START" envDefault:"true"`

	Import  ImportOptions
	Redis   RedisOptions
	Kafka   KafkaOptions
	Metrics MetricsOptions
}

type ImportOptions struct {
	MaxRows int    `env:"IMPORT_MAX_ROWS" envDefault:"5000"`
	BaseDir string `env:"IMPORT_BASE_DIR" envDefault:"."`
}

type RedisOptions struct {
	URL        string        `env:"REDIS_URL"`
	PreviewTTL time.Duration `env:"PREVIEW_TTL" envDefault:"30m"`
}

type KafkaOptions struct {
	Enabled     bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	ImportTopic string   `env:"KAFKA_IMPORT_TOPIC" envDefault:"clients.import"`
}

type MetricsOptions struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads the optional env files that exist and then parses the process
// environment. Values already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env", ".env.local"}
	}

	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks what the API server needs; the CLI only checks the database.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	if c.Import.MaxRows <= 0 {
		return fmt.Errorf("IMPORT_MAX_ROWS must be positive, got %d", c.Import.MaxRows)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}
