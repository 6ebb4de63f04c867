package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	Port        string
	Env         string
	MetricsPort string

	DatabaseDriver  string
	PostgresConnStr string
	SQLitePath      string
	AutoMigrate     bool

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int
	AuthHeader string

	StorageDriver           string
	UploadDir               string
	MaxUploadSize           int64
	MongoURI                string
	MongoDatabase           string
	FirebaseCredentialsPath string
	FirebaseStorageBucket   string

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustProxy takes the client IP from X-Forwarded-For when the peer is a
	// private or loopback address. Off, the TCP peer address is used.
	TrustProxy bool
}

// SetDefaults registers the default of every key so that Load works with
// or without bound flags.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("metrics-port", "9090")
	v.SetDefault("database-driver", "postgres")
	v.SetDefault("sqlite-path", "blog.db")
	v.SetDefault("auto-migrate", true)
	v.SetDefault("jwt-secret", DefaultJWTSecret)
	v.SetDefault("jwt-ttl", "72h")
	v.SetDefault("bcrypt-cost", 10)
	v.SetDefault("auth-header", "auth")
	v.SetDefault("storage-driver", "disk")
	v.SetDefault("upload-dir", "uploads")
	v.SetDefault("max-upload-size", "10MiB")
	v.SetDefault("mongo-database", "blog")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("rate-limit-rps", 20.0)
	v.SetDefault("rate-limit-burst", 40)
	v.SetDefault("trust-proxy", false)
}

// Load reads the configuration from v. Keys map to environment variables by
// upper-casing and replacing dashes with underscores (jwt-secret -> JWT_SECRET).
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	maxUpload, err := bytes.Parse(v.GetString("max-upload-size"))
	if err != nil {
		return nil, fmt.Errorf("invalid max-upload-size %q: %w", v.GetString("max-upload-size"), err)
	}

	cfg := &Config{
		Port:                    v.GetString("port"),
		Env:                     v.GetString("env"),
		MetricsPort:             v.GetString("metrics-port"),
		DatabaseDriver:          strings.ToLower(v.GetString("database-driver")),
		PostgresConnStr:         v.GetString("postgres-conn-str"),
		SQLitePath:              v.GetString("sqlite-path"),
		AutoMigrate:             v.GetBool("auto-migrate"),
		JWTSecret:               v.GetString("jwt-secret"),
		JWTTTL:                  v.GetDuration("jwt-ttl"),
		BcryptCost:              v.GetInt("bcrypt-cost"),
		AuthHeader:              v.GetString("auth-header"),
		StorageDriver:           strings.ToLower(v.GetString("storage-driver")),
		UploadDir:               v.GetString("upload-dir"),
		MaxUploadSize:           maxUpload,
		MongoURI:                v.GetString("mongo-uri"),
		MongoDatabase:           v.GetString("mongo-database"),
		FirebaseCredentialsPath: v.GetString("firebase-credentials-path"),
		FirebaseStorageBucket:   v.GetString("firebase-storage-bucket"),
		LogLevel:                v.GetString("log-level"),
		LogFormat:               v.GetString("log-format"),
		RateLimitRPS:            v.GetFloat64("rate-limit-rps"),
		RateLimitBurst:          v.GetInt("rate-limit-burst"),
		TrustProxy:              v.GetBool("trust-proxy"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks that the selected drivers have what they need.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt-secret must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("jwt-secret must be set in production")
	}
	if c.AuthHeader == "" {
		return fmt.Errorf("auth-header must not be empty")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max-upload-size must be positive")
	}

	switch c.DatabaseDriver {
	case "postgres":
		if c.PostgresConnStr == "" {
			return fmt.Errorf("postgres-conn-str is required for the postgres driver")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite-path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid database-driver %q (expected postgres or sqlite)", c.DatabaseDriver)
	}

	switch c.StorageDriver {
	case "disk":
		if c.UploadDir == "" {
			return fmt.Errorf("upload-dir is required for the disk storage driver")
		}
	case "gridfs":
		if c.MongoURI == "" {
			return fmt.Errorf("mongo-uri is required for the gridfs storage driver")
		}
	case "firebase":
		if c.FirebaseCredentialsPath == "" || c.FirebaseStorageBucket == "" {
			return fmt.Errorf("firebase-credentials-path and firebase-storage-bucket are required for the firebase storage driver")
		}
	default:
		return fmt.Errorf("invalid storage-driver %q (expected disk, gridfs or firebase)", c.StorageDriver)
	}
	return nil
}
