package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Storage   StorageConfig
	MQ        MQConfig
	Mail      MailConfig
	PDF       PDFConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
	PublicURL   string
	// FrontendURL is used to build links in verification and reset emails.
	FrontendURL string
}

func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, EnvProduction)
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type StorageConfig struct {
	// Backend is one of "none", "minio", "gcs", "s3".
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
	S3      S3Config
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UsePathStyle bool
	UseSSL       bool
}

type MQConfig struct {
	// Backend is one of "memory", "rabbitmq", "pubsub", "nats".
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
	NATS     NATSConfig
}

type RabbitMQConfig struct {
	URL             string
	PrefetchCount   int
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type NATSConfig struct {
	URL        string
	Name       string
	QueueGroup string
}

type MailConfig struct {
	// Provider is "resend" or "log".
	Provider string
	APIKey   string
	Sender   string
}

type PDFConfig struct {
	ChromePath    string
	RenderTimeout time.Duration
	MaxTabs       int
	ExportWorkers int
}

type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

type LogConfig struct {
	Level  string
	Format string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	if env := strings.TrimSpace(os.Getenv("APP_ENV")); env == "" || strings.EqualFold(env, EnvDevelopment) {
		_ = godotenv.Load()
	}

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}

	cfg.App = AppConfig{
		AppName:     optDefault("APP_NAME", "cv-builder"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
		PublicURL:   optDefault("PUBLIC_URL", "http://localhost:8080"),
		FrontendURL: optDefault("FRONTEND_URL", "http://localhost:3000"),
	}

	cfg.Database = DatabaseConfig{
		Driver:                strings.ToLower(optDefault("DB_DRIVER", "postgres")),
		DBHost:                opt("DB_HOST"),
		DBPort:                optDefault("DB_PORT", "5432"),
		DBName:                opt("DB_NAME"),
		DBUser:                opt("DB_USER"),
		DBPassword:            opt("DB_PASSWORD"),
		DBSSLMode:             optDefault("DB_SSL_MODE", "disable"),
		ConnectTimeout:        durationSeconds(opt("DB_CONNECT_TIMEOUT"), 5*time.Second),
		PoolMaxConns:          int32(intOr(opt("DB_POOL_MAX_CONNS"), 10)),
		PoolMinConns:          int32(intOr(opt("DB_POOL_MIN_CONNS"), 0)),
		PoolMaxConnLifetime:   durationSeconds(opt("DB_POOL_MAX_CONN_LIFETIME"), time.Hour),
		PoolMaxConnIdleTime:   durationSeconds(opt("DB_POOL_MAX_CONN_IDLE_TIME"), 30*time.Minute),
		PoolHealthCheckPeriod: durationSeconds(opt("DB_POOL_HEALTH_CHECK_PERIOD"), time.Minute),
	}
	if cfg.Database.Driver == "postgres" {
		cfg.Database.DBHost = req("DB_HOST")
		cfg.Database.DBName = req("DB_NAME")
		cfg.Database.DBUser = req("DB_USER")
	}

	cfg.JWT = JWTConfig{
		AccessSecret:     req("JWT_ACCESS_SECRET"),
		RefreshSecret:    req("JWT_REFRESH_SECRET"),
		AccessExpiresIn:  durationSeconds(opt("JWT_ACCESS_EXPIRES_IN"), 15*time.Minute),
		RefreshExpiresIn: durationSeconds(opt("JWT_REFRESH_EXPIRES_IN"), 7*24*time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		DB:       intOr(opt("REDIS_DB"), 0),
		TTL:      durationSeconds(opt("REDIS_TTL"), 600*time.Second),
	}

	cfg.Storage = StorageConfig{
		Backend: strings.ToLower(optDefault("STORAGE_BACKEND", "none")),
		Minio: MinioConfig{
			Endpoint:  opt("MINIO_ENDPOINT"),
			AccessKey: opt("MINIO_ACCESS_KEY"),
			SecretKey: opt("MINIO_SECRET_KEY"),
			Bucket:    optDefault("MINIO_BUCKET", "cv-exports"),
			UseSSL:    boolOr(opt("MINIO_USE_SSL"), false),
		},
		GCS: GCSConfig{
			Bucket:          opt("GCS_BUCKET"),
			ProjectID:       opt("GCS_PROJECT_ID"),
			CredentialsFile: opt("GCS_CREDENTIALS_FILE"),
		},
		S3: S3Config{
			Endpoint:     opt("S3_ENDPOINT"),
			Region:       optDefault("S3_REGION", "us-east-1"),
			AccessKey:    opt("S3_ACCESS_KEY"),
			SecretKey:    opt("S3_SECRET_KEY"),
			Bucket:       opt("S3_BUCKET"),
			UsePathStyle: boolOr(opt("S3_USE_PATH_STYLE"), false),
			UseSSL:       boolOr(opt("S3_USE_SSL"), true),
		},
	}

	cfg.MQ = MQConfig{
		Backend: strings.ToLower(optDefault("MQ_BACKEND", "memory")),
		RabbitMQ: RabbitMQConfig{
			URL:             opt("RABBITMQ_URL"),
			PrefetchCount:   intOr(opt("RABBITMQ_PREFETCH"), 4),
			QueueDurable:    boolOr(opt("RABBITMQ_QUEUE_DURABLE"), true),
			QueueAutoDelete: boolOr(opt("RABBITMQ_QUEUE_AUTO_DELETE"), false),
		},
		PubSub: PubSubConfig{
			ProjectID:          opt("PUBSUB_PROJECT_ID"),
			CredentialsFile:    opt("PUBSUB_CREDENTIALS_FILE"),
			SubscriptionSuffix: optDefault("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
		NATS: NATSConfig{
			URL:        optDefault("NATS_URL", "nats://localhost:4222"),
			Name:       optDefault("NATS_CLIENT_NAME", "cv-builder"),
			QueueGroup: optDefault("NATS_QUEUE_GROUP", "cv-builder-workers"),
		},
	}

	cfg.Mail = MailConfig{
		Provider: strings.ToLower(optDefault("MAIL_PROVIDER", "log")),
		APIKey:   opt("EMAIL_API_KEY"),
		Sender:   optDefault("EMAIL_SENDER", "CV Builder <no-reply@cv-builder.local>"),
	}
	if cfg.Mail.Provider == "resend" {
		cfg.Mail.APIKey = req("EMAIL_API_KEY")
	}

	cfg.PDF = PDFConfig{
		ChromePath:    opt("PDF_CHROME_PATH"),
		RenderTimeout: durationSeconds(opt("PDF_RENDER_TIMEOUT"), 30*time.Second),
		MaxTabs:       intOr(opt("PDF_MAX_TABS"), 4),
		ExportWorkers: intOr(opt("PDF_EXPORT_WORKERS"), 2),
	}

	cfg.RateLimit = RateLimitConfig{
		AuthPerMinute: intOr(opt("RATE_LIMIT_AUTH_PER_MINUTE"), 10),
		AuthBurst:     intOr(opt("RATE_LIMIT_AUTH_BURST"), 10),
	}

	cfg.Log = LogConfig{
		Level:  optDefault("LOG_LEVEL", "info"),
		Format: optDefault("LOG_FORMAT", "json"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func intOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// durationSeconds accepts either a Go duration ("15m") or a plain number of seconds.
func durationSeconds(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return time.Duration(v) * time.Second
}
