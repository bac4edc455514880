// Package config builds the process configuration once at startup from
// defaults overridden by EASYSHOP_* environment variables. Components
// receive the resulting struct explicitly; nothing reads the environment
// after Load returns.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "EASYSHOP_"

type ServerConfig struct {
	Port string `koanf:"port"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type SecurityConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
}

type KafkaConfig struct {
	Brokers        []string `koanf:"brokers"`
	CreatedTopic   string   `koanf:"created_topic"`
	CancelledTopic string   `koanf:"cancelled_topic"`
	GroupID        string   `koanf:"group_id"`
}

type UploadsConfig struct {
	Dir string `koanf:"dir"`
}

type WorkerConfig struct {
	EmailServiceURL string `koanf:"email_service_url"`
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Uploads  UploadsConfig  `koanf:"uploads"`
	Worker   WorkerConfig   `koanf:"worker"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			CreatedTopic:   "order.created",
			CancelledTopic: "order.cancelled",
			GroupID:        "easyshop-notifications",
		},
		Uploads: UploadsConfig{
			Dir: "uploads",
		},
	}
}

// Load assembles the configuration: struct defaults first, then EASYSHOP_*
// environment variables. EASYSHOP_SECURITY_JWT_SECRET maps to
// security.jwt_secret: the first underscore after the prefix separates the
// section from the field.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(s, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the API server cannot run without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("config: database url is required (EASYSHOP_DATABASE_URL)")
	}
	if c.Security.JWTSecret == "" {
		return errors.New("config: jwt secret is required (EASYSHOP_SECURITY_JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < 32 {
		return errors.New("config: jwt secret must be at least 32 characters")
	}
	return nil
}
