package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port             string        `toml:"port"`
	JWTSecret        string        `toml:"jwt_secret"`
	JWTAccessExpiry  time.Duration `toml:"-"`
	JWTRefreshExpiry time.Duration `toml:"-"`

	StoreDriver string `toml:"store_driver"`
	MongoURI    string `toml:"mongo_uri"`
	MongoDBName string `toml:"mongo_db_name"`
	PostgresDSN string `toml:"postgres_dsn"`
	SQLitePath  string `toml:"sqlite_path"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`

	BootstrapAdminEmail string   `toml:"bootstrap_admin_email"`
	CORSOrigins         []string `toml:"cors_origins"`

	FirebaseCredentials string        `toml:"firebase_credentials"`
	GoogleProjectID     string        `toml:"google_project_id"`
	GoogleCredentials   string        `toml:"google_credentials"`
	ActivityTopic       string        `toml:"activity_topic"`
	ReminderInterval    time.Duration `toml:"-"`
	ReminderLead        time.Duration `toml:"-"`
}

// fileConfig mirrors the durations as strings so "15m" parses from TOML.
type fileConfig struct {
	Config
	JWTAccessExpiry  string `toml:"jwt_access_expiry"`
	JWTRefreshExpiry string `toml:"jwt_refresh_expiry"`
	ReminderInterval string `toml:"reminder_interval"`
	ReminderLead     string `toml:"reminder_lead"`
}

func defaults() *Config {
	return &Config{
		Port:             "8000",
		JWTSecret:        "your-secret-key-change-in-production",
		JWTAccessExpiry:  24 * time.Hour,
		JWTRefreshExpiry: 168 * time.Hour, // 7 days
		StoreDriver:      DriverMongo,
		MongoURI:         "mongodb://localhost:27017",
		MongoDBName:      "taskboard",
		SQLitePath:       "taskboard.db",
		LogLevel:         "info",
		ReminderInterval: time.Minute,
		ReminderLead:     time.Hour,
	}
}

// Load builds the configuration from defaults, an optional TOML file,
// an optional .env file and the process environment, in that order.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("TASKBOARD_CONFIG")
	if path == "" {
		if _, err := os.Stat("taskboard.toml"); err == nil {
			path = "taskboard.toml"
		}
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Load .env file if it exists
	_ = godotenv.Load()

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	fc := fileConfig{Config: *cfg}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}
	*cfg = fc.Config

	durations := []struct {
		raw string
		dst *time.Duration
		key string
	}{
		{fc.JWTAccessExpiry, &cfg.JWTAccessExpiry, "jwt_access_expiry"},
		{fc.JWTRefreshExpiry, &cfg.JWTRefreshExpiry, "jwt_refresh_expiry"},
		{fc.ReminderInterval, &cfg.ReminderInterval, "reminder_interval"},
		{fc.ReminderLead, &cfg.ReminderLead, "reminder_lead"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func loadEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", cfg.StoreDriver))
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDBName = getEnv("MONGO_DB_NAME", cfg.MongoDBName)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.BootstrapAdminEmail = getEnv("BOOTSTRAP_ADMIN_EMAIL", cfg.BootstrapAdminEmail)
	cfg.FirebaseCredentials = getEnv("FIREBASE_CREDENTIALS", cfg.FirebaseCredentials)
	cfg.GoogleProjectID = getEnv("GOOGLE_PROJECT_ID", cfg.GoogleProjectID)
	cfg.GoogleCredentials = getEnv("GOOGLE_CREDENTIALS", cfg.GoogleCredentials)
	cfg.ActivityTopic = getEnv("ACTIVITY_TOPIC", cfg.ActivityTopic)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_ACCESS_EXPIRY", &cfg.JWTAccessExpiry},
		{"JWT_REFRESH_EXPIRY", &cfg.JWTRefreshExpiry},
		{"REMINDER_INTERVAL", &cfg.ReminderInterval},
		{"REMINDER_LEAD", &cfg.ReminderLead},
	}
	for _, d := range durations {
		exp := os.Getenv(d.key)
		if exp == "" {
			continue
		}
		parsed, err := time.ParseDuration(exp)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the mongo store")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTAccessExpiry <= 0 || c.JWTRefreshExpiry <= 0 {
		return fmt.Errorf("token expiries must be positive")
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	return nil
}

// RemindersEnabled reports whether push reminders can be delivered.
func (c *Config) RemindersEnabled() bool {
	return c.FirebaseCredentials != ""
}

// ActivityEventsEnabled reports whether activities are published to Pub/Sub.
func (c *Config) ActivityEventsEnabled() bool {
	return c.GoogleProjectID != "" && c.ActivityTopic != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
