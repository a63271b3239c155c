package config

import (
	"fmt"
	"os"
	"time"
)

// Config captures everything the server binary needs from the environment,
// so main stays lean.
type Config struct {
	Addr            string
	JWTSecret       string
	ResultsCacheTTL time.Duration
	Postgres        Postgres
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ConnString renders the lib/pq connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.DBName)
}

// FromEnv builds the configuration from environment variables. Callers load
// a .env file first (godotenv) when running outside a container.
func FromEnv() Config {
	addr := os.Getenv("BALLOT_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}

	ttl := 30 * time.Second
	if raw := os.Getenv("BALLOT_RESULTS_CACHE_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}

	return Config{
		Addr:            addr,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ResultsCacheTTL: ttl,
		Postgres: Postgres{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
		},
	}
}
