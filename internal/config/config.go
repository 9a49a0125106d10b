package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	Port        int
	LogLevel    string
	DatabaseURL string
	DBMaxConns  int32
	AutoMigrate bool

	JWTSecret string
	JWKSURL   string

	Redis RedisConfig
	Minio MinioConfig
	Jobs  JobsConfig

	ReportCacheTTL time.Duration
}

// RedisConfig configures the report cache connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig configures the object store used for report exports.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
}

// JobsConfig controls the background scheduler.
type JobsConfig struct {
	Enabled                bool
	OverdueSweepInterval   time.Duration
	ReportSnapshotInterval time.Duration
}

// Load reads an optional .env file, an optional CONFIG_FILE and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	// An explicitly empty REDIS_ADDR or MINIO_ENDPOINT turns that backend off.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetInt("port"),
		LogLevel:    v.GetString("log_level"),
		DatabaseURL: v.GetString("database_url"),
		DBMaxConns:  v.GetInt32("db_max_conns"),
		AutoMigrate: v.GetBool("auto_migrate"),
		JWTSecret:   v.GetString("jwt_secret"),
		JWKSURL:     v.GetString("jwks_url"),
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("minio_endpoint"),
			AccessKey: v.GetString("minio_access_key"),
			SecretKey: v.GetString("minio_secret_key"),
			UseSSL:    v.GetBool("minio_use_ssl"),
			Region:    v.GetString("minio_region"),
			Bucket:    v.GetString("report_bucket"),
		},
		Jobs: JobsConfig{
			Enabled:                v.GetBool("jobs_enabled"),
			OverdueSweepInterval:   v.GetDuration("overdue_sweep_interval"),
			ReportSnapshotInterval: v.GetDuration("report_snapshot_interval"),
		},
		ReportCacheTTL: v.GetDuration("report_cache_ttl"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("auto_migrate", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "minioadmin")
	v.SetDefault("minio_secret_key", "minioadmin")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_region", "us-east-1")
	v.SetDefault("report_bucket", "rent-reports")
	v.SetDefault("jobs_enabled", true)
	v.SetDefault("overdue_sweep_interval", time.Hour)
	v.SetDefault("report_snapshot_interval", 24*time.Hour)
	v.SetDefault("report_cache_ttl", time.Minute)
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("one of JWT_SECRET or JWKS_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReportCacheTTL < 0 {
		return errors.New("REPORT_CACHE_TTL cannot be negative")
	}
	return nil
}
