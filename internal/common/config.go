package common

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	DB       DBConfig       `mapstructure:",squash"`
	RabbitMQ RabbitMQConfig `mapstructure:",squash"`

	// AdminTokenHash is the bcrypt hash of the bearer token that unlocks the write endpoints.
	AdminTokenHash string `mapstructure:"ADMIN_TOKEN_HASH"`

	ReadPolicy      string        `mapstructure:"READ_POLICY"`
	FallbackCatalog string        `mapstructure:"FALLBACK_CATALOG"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	RateLimitRPS    float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `mapstructure:"RATE_LIMIT_BURST"`
}

type DBConfig struct {
	Host           string        `mapstructure:"POSTGRES_HOST"`
	Port           string        `mapstructure:"POSTGRES_PORT"`
	User           string        `mapstructure:"POSTGRES_USER"`
	Password       string        `mapstructure:"POSTGRES_PASSWORD"`
	Name           string        `mapstructure:"POSTGRES_DB"`
	MaxOpenConns   int           `mapstructure:"POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns   int           `mapstructure:"POSTGRES_MAX_IDLE_CONNS"`
	MaxIdleTime    time.Duration `mapstructure:"POSTGRES_MAX_IDLE_TIME"`
	MigrationsPath string        `mapstructure:"MIGRATIONS_PATH"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"RABBITMQ_HOST"`
	Port     string `mapstructure:"RABBITMQ_PORT"`
	User     string `mapstructure:"RABBITMQ_USER"`
	Password string `mapstructure:"RABBITMQ_PASSWORD"`
}

// URI returns the AMQP connection string. An empty host disables the broker.
func (c RabbitMQConfig) URI() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

var configDefaults = map[string]any{
	"PORT":                    "4000",
	"ENVIRONMENT":             "development",
	"VERSION":                 "1.0.0",
	"POSTGRES_HOST":           "localhost",
	"POSTGRES_PORT":           "5432",
	"POSTGRES_USER":           "",
	"POSTGRES_PASSWORD":       "",
	"POSTGRES_DB":             "",
	"POSTGRES_MAX_OPEN_CONNS": 10,
	"POSTGRES_MAX_IDLE_CONNS": 5,
	"POSTGRES_MAX_IDLE_TIME":  "15m",
	"MIGRATIONS_PATH":         "file://migrations",
	"RABBITMQ_HOST":           "",
	"RABBITMQ_PORT":           "5672",
	"RABBITMQ_USER":           "guest",
	"RABBITMQ_PASSWORD":       "guest",
	"ADMIN_TOKEN_HASH":        "",
	"READ_POLICY":             "swallow",
	"FALLBACK_CATALOG":        "",
	"CACHE_TTL":               "1m",
	"RATE_LIMIT_RPS":          20,
	"RATE_LIMIT_BURST":        40,
}

// LoadConfig reads the .env file at path, if any, and lets environment variables override it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
