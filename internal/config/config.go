package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, loaded once at startup.
// Request handling never reads the environment directly.
type Config struct {
	Port       string
	DBAdapter  string
	SQLiteFile string

	// Token signing material; invalid values are fatal at startup.
	JWTSecret        string
	JWTExpiryMinutes int

	AllowedOrigins []string
	LogLevel       string
	LogDev         bool

	// PostgreSQL connection settings
	PostgresDSN      string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// BuildPostgresDSN constructs a PostgreSQL DSN from individual components or
// returns the provided DSN unchanged.
func (c *Config) BuildPostgresDSN() (string, error) {
	if c.PostgresDSN != "" {
		return c.PostgresDSN, nil
	}

	if c.PostgresHost == "" {
		return "", errors.New("POSTGRES_HOST or POSTGRES_DSN must be set")
	}
	if c.PostgresUser == "" {
		return "", errors.New("POSTGRES_USER must be set")
	}
	if c.PostgresDB == "" {
		return "", errors.New("POSTGRES_DB must be set")
	}

	port := c.PostgresPort
	if port == "" {
		port = "5432"
	}

	sslMode := c.PostgresSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		c.PostgresHost, port, c.PostgresUser, c.PostgresDB, sslMode)

	if c.PostgresPassword != "" {
		dsn += " password=" + c.PostgresPassword
	}

	return dsn, nil
}

func New() (*Config, error) {
	// optional .env for local development; absence is not an error
	_ = godotenv.Load()

	c := &Config{
		Port:             getenv("PORT", "8080"),
		DBAdapter:        getenv("DB_ADAPTER", "sqlite"),
		SQLiteFile:       getenv("SQLITE_FILE", "./data/auth.db"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogDev:           os.Getenv("LOG_DEV") == "1",
		PostgresDSN:      getenv("POSTGRES_DSN", ""),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getenv("POSTGRES_PORT", "5432"),
		PostgresUser:     getenv("POSTGRES_USER", ""),
		PostgresPassword: getenv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getenv("POSTGRES_DB", ""),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}

	if c.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	expiry := getenv("JWT_EXPIRY_MINUTES", "60")
	n, err := strconv.Atoi(expiry)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_MINUTES: %s", expiry)
	}
	c.JWTExpiryMinutes = n

	origins := getenv("CORS_ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowedOrigins = append(c.AllowedOrigins, o)
		}
	}

	switch c.DBAdapter {
	case "postgres":
		dsn, err := c.BuildPostgresDSN()
		if err != nil {
			return nil, fmt.Errorf("postgres configuration error: %w", err)
		}
		c.PostgresDSN = dsn
	case "sqlite":
		if c.SQLiteFile == "" {
			return nil, errors.New("SQLITE_FILE must be set when DB_ADAPTER=sqlite")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_ADAPTER: %s (supported: postgres, sqlite, memory)", c.DBAdapter)
	}

	if _, err := strconv.Atoi(c.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT: %s", c.Port)
	}

	return c, nil
}
