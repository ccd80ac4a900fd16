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

	EnvDBDSN  = "TORQUEHUB_DB_DSN"
	EnvDBHost = "TORQUEHUB_DB_HOST"
	EnvDBUser = "TORQUEHUB_DB_USER"
	EnvDBName = "TORQUEHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Clerk        ClerkConfig
	Email        EmailConfig
	Invitations  InvitationsConfig
	Waitlist     WaitlistConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"TORQUEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"TORQUEHUB_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"TORQUEHUB_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"TORQUEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TORQUEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TORQUEHUB_DB_DSN"`
	Driver string `envconfig:"TORQUEHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TORQUEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"TORQUEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TORQUEHUB_DB_USER"`
	LegacyPassword string `envconfig:"TORQUEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"TORQUEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"TORQUEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TORQUEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TORQUEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TORQUEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TORQUEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TORQUEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TORQUEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"TORQUEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"TORQUEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TORQUEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TORQUEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TORQUEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TORQUEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TORQUEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ClerkConfig holds the identity provider credentials. Sessions are
// minted by the provider; the API only verifies them.
type ClerkConfig struct {
	SecretKey        string        `envconfig:"TORQUEHUB_CLERK_SECRET_KEY" required:"true"`
	WebhookSecret    string        `envconfig:"TORQUEHUB_CLERK_WEBHOOK_SECRET" required:"true"`
	JWTPublicKeyPEM  string        `envconfig:"TORQUEHUB_CLERK_JWT_PUBLIC_KEY"`
	AuthorizedParty  string        `envconfig:"TORQUEHUB_CLERK_AUTHORIZED_PARTY"`
	BaseURL          string        `envconfig:"TORQUEHUB_CLERK_BASE_URL" default:"https://api.clerk.com/v1"`
	RequestTimeout   time.Duration `envconfig:"TORQUEHUB_CLERK_REQUEST_TIMEOUT" default:"10s"`
	WebhookTolerance time.Duration `envconfig:"TORQUEHUB_CLERK_WEBHOOK_TOLERANCE" default:"5m"`
}

type EmailConfig struct {
	APIKey         string        `envconfig:"TORQUEHUB_SENDGRID_API_KEY"`
	DefaultFrom    string        `envconfig:"TORQUEHUB_SENDGRID_FROM_EMAIL" default:"hello@torquehub.app"`
	BaseURL        string        `envconfig:"TORQUEHUB_SENDGRID_BASE_URL" default:"https://api.sendgrid.com/v3"`
	RequestTimeout time.Duration `envconfig:"TORQUEHUB_SENDGRID_REQUEST_TIMEOUT" default:"10s"`
}

type InvitationsConfig struct {
	TTL        time.Duration `envconfig:"TORQUEHUB_INVITATION_TTL" default:"168h"`
	AcceptPath string        `envconfig:"TORQUEHUB_INVITATION_ACCEPT_PATH" default:"/accept-invite"`
	TokenBytes int           `envconfig:"TORQUEHUB_INVITATION_TOKEN_BYTES" default:"32"`
}

// AcceptURL builds the redirect target embedded in provider invitations.
func (i InvitationsConfig) AcceptURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + i.AcceptPath
}

type WaitlistConfig struct {
	NotifyEmail string        `envconfig:"TORQUEHUB_WAITLIST_NOTIFY_EMAIL"`
	RateWindow  time.Duration `envconfig:"TORQUEHUB_WAITLIST_RATE_WINDOW" default:"1m"`
	RateIPLimit int           `envconfig:"TORQUEHUB_WAITLIST_RATE_IP_LIMIT" default:"10"`
}

type CronConfig struct {
	LockTTL     time.Duration `envconfig:"TORQUEHUB_CRON_LOCK_TTL" default:"50m"`
	Interval    time.Duration `envconfig:"TORQUEHUB_CRON_INTERVAL" default:"1h"`
	ExpiryBatch int           `envconfig:"TORQUEHUB_CRON_EXPIRY_BATCH" default:"200"`
	MetricsAddr string        `envconfig:"TORQUEHUB_CRON_METRICS_ADDR" default:":9464"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TORQUEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TORQUEHUB_AUTO_MIGRATE" default:"false"`
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
