package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	CORS     CORS     `yaml:"cors"`
	Orders   Orders   `yaml:"orders"`
	Items    Items    `yaml:"items"`
}

// Server holds HTTP server configuration
type Server struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"SERVER_PORT" env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Database holds document store configuration
type Database struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mongo"`

	// MongoDB
	MongoURI      string `yaml:"mongo_uri" env:"DB_URL" env-default:"mongodb://localhost:27017"`
	MongoDatabase string `yaml:"mongo_database" env:"DB_NAME" env-default:"campus_market"`

	// PostgreSQL
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`

	// Connection pool settings
	MaxOpenConns int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`

	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"10s"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT" env-default:"5s"`
}

// Log holds logger configuration
type Log struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// CORS holds cross-origin settings for the web client
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	MaxAge         int      `yaml:"max_age" env:"CORS_MAX_AGE" env-default:"300"`
}

// Orders holds order lifecycle settings
type Orders struct {
	// EnforceTransitions rejects status changes that skip the state machine
	EnforceTransitions bool `yaml:"enforce_transitions" env:"ORDERS_ENFORCE_TRANSITIONS" env-default:"true"`
}

// Items holds listing settings
type Items struct {
	MinTextLength int `yaml:"min_text_length" env:"ITEMS_MIN_TEXT_LENGTH" env-default:"20"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
