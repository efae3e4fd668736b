package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Postgres, caller-scoped credential (conversations/messages)
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME,required"`

	// Postgres, elevated read-only credential (document_chunks/documents)
	ServiceDBUser     string `env:"SERVICE_DB_USER,required"`
	ServiceDBPassword string `env:"SERVICE_DB_PASSWORD,required"`

	// Auth token verification (same secret the identity provider signs with)
	JWTSecret string `env:"JWT_SECRET,required"`

	// AI gateway
	AIGatewayURL string `env:"AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1"`
	AIGatewayKey string `env:"AI_GATEWAY_KEY,required"`

	// MinIO document file storage
	MinIOEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY"`
	MinIOBucket    string `env:"MINIO_BUCKET" envDefault:"mineai-documents"`

	Port string `env:"PORT" envDefault:"8000"`
}

// LoadConfig reads .env (if present) and the process environment.
// Required secrets missing -> error, so main can refuse to serve at all.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
