package config

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-rental/internal/platform/config"
)

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port               string
	AppEnv             string
	PersistenceEnabled bool
	CatalogCacheTTL    time.Duration
	DBConfig           config.DatabaseConfig
	JWTConfig          config.JWTConfig
	KafkaConfig        config.KafkaConfig
	RedisConfig        config.RedisConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}
	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("PERSISTENCE_ENABLED", true)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")

	return &ServiceConfig{
		Port:               config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:             config.GetAppEnv(v),
		PersistenceEnabled: v.GetBool("PERSISTENCE_ENABLED"),
		CatalogCacheTTL:    v.GetDuration("CATALOG_CACHE_TTL"),
		DBConfig:           config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:          config.LoadJWTConfig(v),
		KafkaConfig:        config.LoadKafkaConfig(v),
		RedisConfig:        config.LoadRedisConfig(v),
	}, nil
}
