package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Media     MediaConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Frontend  FrontendConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host                   string
	Port                   string
	User                   string
	Password               string
	Database               string
	Schema                 string
	Encrypt                bool
	TrustServerCertificate bool
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxIdleTime        time.Duration
	AutoMigrate            bool
}

// MediaConfig selects and configures the product image store
type MediaConfig struct {
	Driver          string // "s3" or "disk"
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	PublicURL       string
	Folder          string
	LocalDir        string
	MaxUploadBytes  int64
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type FrontendConfig struct {
	Origins []string
}

func Load() *Config {
	// Export .env into the process environment so viper and any library
	// reading os.Getenv see the same values.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("DB_ENCRYPT", false)
	v.SetDefault("DB_TRUST_SERVER_CERTIFICATE", false)
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 0)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "10s")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("MEDIA_FOLDER", "Product")
	v.SetDefault("MEDIA_LOCAL_DIR", "uploads")
	v.SetDefault("MEDIA_MAX_UPLOAD_BYTES", 5*1024*1024)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
}

func fromViper(v *viper.Viper) *Config {
	env := v.GetString("SERVER_ENV")

	autoMigrate := env != "production"
	if v.IsSet("DB_AUTO_MIGRATE") {
		autoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	}

	driver := v.GetString("MEDIA_DRIVER")
	if driver == "" {
		driver = "disk"
		if v.GetString("MEDIA_ACCESS_KEY_ID") != "" {
			driver = "s3"
		}
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Env:  env,
		},
		Database: DatabaseConfig{
			Host:                   v.GetString("DB_HOST"),
			Port:                   v.GetString("DB_PORT"),
			User:                   v.GetString("DB_USER"),
			Password:               v.GetString("DB_PASSWORD"),
			Database:               v.GetString("DB_DATABASE"),
			Schema:                 v.GetString("DB_SCHEMA"),
			Encrypt:                v.GetBool("DB_ENCRYPT"),
			TrustServerCertificate: v.GetBool("DB_TRUST_SERVER_CERTIFICATE"),
			MaxOpenConns:           v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:           v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime:        v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			AutoMigrate:            autoMigrate,
		},
		Media: MediaConfig{
			Driver:          strings.ToLower(driver),
			Region:          v.GetString("MEDIA_REGION"),
			AccessKeyID:     v.GetString("MEDIA_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("MEDIA_SECRET_ACCESS_KEY"),
			Bucket:          v.GetString("MEDIA_BUCKET"),
			Endpoint:        v.GetString("MEDIA_ENDPOINT"),
			PublicURL:       strings.TrimRight(v.GetString("MEDIA_PUBLIC_URL"), "/"),
			Folder:          v.GetString("MEDIA_FOLDER"),
			LocalDir:        v.GetString("MEDIA_LOCAL_DIR"),
			MaxUploadBytes:  v.GetInt64("MEDIA_MAX_UPLOAD_BYTES"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Frontend: FrontendConfig{
			Origins: splitList(v.GetString("FRONTEND_URL")),
		},
	}
}

// IsProduction reports whether the runtime environment flag is "production"
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SSLMode maps the encrypt / trust-certificate flags onto a libpq sslmode
func (d DatabaseConfig) SSLMode() string {
	switch {
	case !d.Encrypt:
		return "disable"
	case d.TrustServerCertificate:
		return "require"
	default:
		return "verify-full"
	}
}

// DSN builds a postgres connection URL understood by pgx
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Database,
	}

	q := url.Values{}
	q.Set("sslmode", d.SSLMode())
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Addr returns the redis address, or "" when redis is not configured
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
