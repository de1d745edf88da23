package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything main needs to wire the registry. Values come
// from the environment with development defaults so a bare `go run` works.
type Config struct {
	Addr       string
	Controller string

	// JWTSigningKey validates caller identity tokens. Empty disables JWT
	// auth and the transport falls back to the X-Caller-Identity header.
	JWTSigningKey string

	// PostgresDSN switches the parcel store from memory to PostgreSQL.
	PostgresDSN string

	Redis RedisConfig

	// KafkaBrokers switches notification publishing from the in-memory
	// recorder to Kafka.
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig tunes the shared verifier membership store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds the Config so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("LAND_REGISTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	controller := os.Getenv("LAND_REGISTRY_CONTROLLER")
	if controller == "" {
		// Development default - production deployments must set the
		// controller identity explicitly.
		controller = "controller"
	}

	topic := os.Getenv("LAND_REGISTRY_KAFKA_TOPIC")
	if topic == "" {
		topic = "land-registry.notifications"
	}

	var brokers []string
	if raw := os.Getenv("LAND_REGISTRY_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Config{
		Addr:          addr,
		Controller:    controller,
		JWTSigningKey: os.Getenv("LAND_REGISTRY_JWT_KEY"),
		PostgresDSN:   os.Getenv("LAND_REGISTRY_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("LAND_REGISTRY_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers: brokers,
		KafkaTopic:   topic,
	}
}
