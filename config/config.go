package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the runtime settings, read from MINARET_* environment
// variables. A .env file is honored for local development.
type Config struct {
	Port        string        `envconfig:"PORT" default:"8080"`
	DBDSN       string        `envconfig:"DB_DSN"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"72h"`
	ReleaseMode bool          `envconfig:"RELEASE_MODE" default:"false"`
}

func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("minaret", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &cfg, nil
}

// OpenDB connects to MySQL and applies the connection pool settings.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
