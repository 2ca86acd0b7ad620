package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ZAHABI_DB_DSN"
	EnvDBHost = "ZAHABI_DB_HOST"
	EnvDBUser = "ZAHABI_DB_USER"
	EnvDBName = "ZAHABI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Fees          FeeConfig
	PriceFeed     PriceFeedConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Eventing      EventingConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ZAHABI_APP_ENV" required:"true"`
	Port         string `envconfig:"ZAHABI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZAHABI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZAHABI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ZAHABI_DB_DSN"`
	Driver string `envconfig:"ZAHABI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ZAHABI_DB_HOST"`
	LegacyPort     int    `envconfig:"ZAHABI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ZAHABI_DB_USER"`
	LegacyPassword string `envconfig:"ZAHABI_DB_PASSWORD"`
	LegacyName     string `envconfig:"ZAHABI_DB_NAME"`
	LegacySSLMode  string `envconfig:"ZAHABI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZAHABI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZAHABI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZAHABI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZAHABI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZAHABI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ZAHABI_REDIS_ADDR"`
	Password     string        `envconfig:"ZAHABI_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZAHABI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZAHABI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZAHABI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZAHABI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZAHABI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZAHABI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret               string `envconfig:"ZAHABI_JWT_SECRET" required:"true"`
	Issuer               string `envconfig:"ZAHABI_JWT_ISSUER" required:"true"`
	ExpirationMinutes    int    `envconfig:"ZAHABI_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLHours int    `envconfig:"ZAHABI_JWT_REFRESH_TTL_HOURS" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh session lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(j.RefreshTokenTTLHours) * time.Hour
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"ZAHABI_PASSWORD_BCRYPT_COST" default:"12"`
	MinLength  int `envconfig:"ZAHABI_PASSWORD_MIN_LENGTH" default:"10"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ZAHABI_AUTH_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"ZAHABI_AUTH_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"ZAHABI_AUTH_LOGIN_EMAIL_LIMIT" default:"8"`
	RegisterWindow     time.Duration `envconfig:"ZAHABI_AUTH_REGISTER_WINDOW" default:"10m"`
	RegisterIPLimit    int           `envconfig:"ZAHABI_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"ZAHABI_AUTH_REGISTER_EMAIL_LIMIT" default:"4"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ZAHABI_FEATURE_AUTO_MIGRATE" default:"false"`
}

// FeeConfig holds per-operation fees in basis points of the cash amount.
type FeeConfig struct {
	GoldPurchaseBps int `envconfig:"ZAHABI_FEE_GOLD_PURCHASE_BPS" default:"100"`
	GoldSaleBps     int `envconfig:"ZAHABI_FEE_GOLD_SALE_BPS" default:"100"`
	WithdrawalBps   int `envconfig:"ZAHABI_FEE_WITHDRAWAL_BPS" default:"50"`
	DepositBps      int `envconfig:"ZAHABI_FEE_DEPOSIT_BPS" default:"0"`
	DeliveryBps     int `envconfig:"ZAHABI_FEE_DELIVERY_BPS" default:"200"`
}

type PriceFeedConfig struct {
	BaseURL      string        `envconfig:"ZAHABI_PRICE_FEED_URL"`
	APIKey       string        `envconfig:"ZAHABI_PRICE_FEED_API_KEY"`
	Source       string        `envconfig:"ZAHABI_PRICE_FEED_SOURCE" default:"goldapi"`
	Timeout      time.Duration `envconfig:"ZAHABI_PRICE_FEED_TIMEOUT" default:"10s"`
	MaxStaleness time.Duration `envconfig:"ZAHABI_PRICE_MAX_STALENESS" default:"15m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ZAHABI_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ZAHABI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ZAHABI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	TransactionTopic         string `envconfig:"ZAHABI_PUBSUB_TRANSACTION_TOPIC" default:"zh-transaction-events"`
	TransactionSubscription  string `envconfig:"ZAHABI_PUBSUB_TRANSACTION_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"ZAHABI_PUBSUB_NOTIFICATION_TOPIC" default:"zh-notification-events"`
	NotificationSubscription string `envconfig:"ZAHABI_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ZAHABI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ZAHABI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ZAHABI_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"ZAHABI_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"ZAHABI_CRON_INTERVAL" default:"1m"`
	LockTTL          time.Duration `envconfig:"ZAHABI_CRON_LOCK_TTL" default:"5m"`
	StalePendingAge  time.Duration `envconfig:"ZAHABI_CRON_STALE_PENDING_AGE" default:"48h"`
	SnapshotInterval string        `envconfig:"ZAHABI_CRON_SNAPSHOT_INTERVAL" default:"1m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
