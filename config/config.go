package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultPort         = "8080"
	defaultDatabaseURL  = "user=postgres password=password dbname=jobportal host=localhost port=5432 sslmode=disable"
	defaultDevJWTSecret = "dev-insecure-secret"
	defaultSendGridFrom = "noreply@jobportal.dev"
	defaultSendGridName = "Job Portal"
	defaultAMQPQueue    = "jobportal.notifications"
	defaultUploadDir    = "_uploads"
)

type Config struct {
	App struct {
		Env       string `yaml:"env"`
		Port      string `yaml:"port"`
		LogFormat string `yaml:"log_format"`
		UploadDir string `yaml:"upload_dir"`
	} `yaml:"app"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		Issuer     string        `yaml:"issuer"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
	} `yaml:"auth"`

	RateLimit struct {
		AuthPerMinute  int    `yaml:"auth_per_minute"`
		ApplyPerMinute int    `yaml:"apply_per_minute"`
		RedisURL       string `yaml:"redis_url"`
		// TrustProxy honours X-Forwarded-For and X-Real-IP for client
		// addresses. Enable only behind a proxy that overwrites them.
		TrustProxy     bool   `yaml:"trust_proxy"`
	} `yaml:"rate_limit"`

	Notify struct {
		SendGridAPIKey    string `yaml:"sendgrid_api_key"`
		SendGridFromEmail string `yaml:"sendgrid_from_email"`
		SendGridFromName  string `yaml:"sendgrid_from_name"`
		AMQPURL           string `yaml:"amqp_url"`
		AMQPQueue         string `yaml:"amqp_queue"`
	} `yaml:"notify"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`

	Scheduler struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"scheduler"`
}

// Load reads .env when present, then the YAML file named by CONFIG_FILE,
// then applies environment overrides on top.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFile(os.Getenv("CONFIG_FILE"))
}

// LoadFile is Load without the .env step. An empty path skips the YAML file.
func LoadFile(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaults() Config {
	var cfg Config
	cfg.App.Env = EnvDevelopment
	cfg.App.Port = defaultPort
	cfg.App.LogFormat = "text"
	cfg.App.UploadDir = defaultUploadDir
	cfg.Database.URL = defaultDatabaseURL
	cfg.Auth.Issuer = "jobportal"
	cfg.Auth.AccessTTL = 60 * time.Minute
	cfg.Auth.RefreshTTL = 7 * 24 * time.Hour
	cfg.RateLimit.AuthPerMinute = 10
	cfg.RateLimit.ApplyPerMinute = 30
	cfg.Notify.SendGridFromEmail = defaultSendGridFrom
	cfg.Notify.SendGridFromName = defaultSendGridName
	cfg.Notify.AMQPQueue = defaultAMQPQueue
	cfg.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Scheduler.Interval = 0
	return cfg
}

func (c *Config) applyEnv() error {
	setString(&c.App.Env, "APP_ENV")
	setString(&c.App.Port, "PORT")
	setString(&c.App.LogFormat, "LOG_FORMAT")
	setString(&c.App.UploadDir, "UPLOAD_DIR")
	setString(&c.Database.URL, "DB_CONNECTION_STRING")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.Issuer, "JWT_ISSUER")
	setString(&c.RateLimit.RedisURL, "REDIS_URL")
	setString(&c.Notify.SendGridAPIKey, "SENDGRID_API_KEY")
	setString(&c.Notify.SendGridFromEmail, "SENDGRID_FROM_EMAIL")
	setString(&c.Notify.SendGridFromName, "SENDGRID_FROM_NAME")
	setString(&c.Notify.AMQPURL, "AMQP_URL")
	setString(&c.Notify.AMQPQueue, "AMQP_QUEUE")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}

	var errs []error
	errs = append(errs,
		setDuration(&c.Auth.AccessTTL, "ACCESS_TOKEN_TTL"),
		setDuration(&c.Auth.RefreshTTL, "REFRESH_TOKEN_TTL"),
		setDuration(&c.Scheduler.Interval, "SCHEDULER_INTERVAL"),
		setInt(&c.RateLimit.AuthPerMinute, "RATE_LIMIT_AUTH_PER_MINUTE"),
		setInt(&c.RateLimit.ApplyPerMinute, "RATE_LIMIT_APPLY_PER_MINUTE"),
		setBool(&c.RateLimit.TrustProxy, "TRUST_PROXY"),
	)
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// Validate returns warnings for degraded-but-usable settings and an error for
// settings the server cannot start with. In development a missing JWT secret
// falls back to an insecure default.
func (c *Config) Validate() (warnings []string, err error) {
	var errs []error

	if c.Auth.JWTSecret == "" {
		if c.IsDevelopment() {
			c.Auth.JWTSecret = defaultDevJWTSecret
			warnings = append(warnings, "JWT_SECRET not set, using an insecure development secret")
		} else {
			errs = append(errs, errors.New("JWT_SECRET is required outside development"))
		}
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	} else if c.Auth.RefreshTTL < c.Auth.AccessTTL {
		errs = append(errs, errors.New("refresh token TTL must not be shorter than access token TTL"))
	}
	if c.RateLimit.AuthPerMinute < 0 || c.RateLimit.ApplyPerMinute < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Scheduler.Interval < 0 {
		errs = append(errs, errors.New("scheduler interval must not be negative"))
	}
	if c.Database.URL == defaultDatabaseURL {
		warnings = append(warnings, "DB_CONNECTION_STRING not set, using default local connection string")
	}
	if c.Notify.SendGridAPIKey == "" {
		warnings = append(warnings, "SENDGRID_API_KEY not set, notification e-mails are disabled")
	}
	if c.RateLimit.RedisURL == "" {
		warnings = append(warnings, "REDIS_URL not set, rate limits are per-process")
	}
	return warnings, errors.Join(errs...)
}
