package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "AGRIKM"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "AGRIKM_APP_ENV"
	EnvPort     = "AGRIKM_APP_PORT"
	EnvDBDSN    = "AGRIKM_DB_DSN"
	EnvDBHost   = "AGRIKM_DB_HOST"
	EnvDBUser   = "AGRIKM_DB_USER"
	EnvDBName   = "AGRIKM_DB_NAME"
	EnvRedisURL = "AGRIKM_REDIS_URL"

	EnvJWTSecret              = "AGRIKM_JWT_SECRET"
	EnvJWTIssuer              = "AGRIKM_JWT_ISSUER"
	EnvJWTExpMins             = "AGRIKM_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "AGRIKM_REFRESH_TOKEN_TTL_MINUTES"

	EnvPublicBaseURL = "AGRIKM_PUBLIC_BASE_URL"
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
	Mail          MailConfig
	GoogleMaps    GoogleMapsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Cart          CartConfig
	Orders        OrdersConfig
	Notify        NotifyConfig
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
	Env           string `envconfig:"AGRIKM_APP_ENV" required:"true"`
	Port          string `envconfig:"AGRIKM_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"AGRIKM_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"AGRIKM_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string `envconfig:"AGRIKM_PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AGRIKM_DB_DSN"`
	Driver string `envconfig:"AGRIKM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRIKM_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRIKM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRIKM_DB_USER"`
	LegacyPassword string `envconfig:"AGRIKM_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRIKM_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRIKM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRIKM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRIKM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRIKM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRIKM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRIKM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGRIKM_REDIS_ADDR"`
	Password     string        `envconfig:"AGRIKM_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRIKM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRIKM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRIKM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRIKM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRIKM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRIKM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AGRIKM_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AGRIKM_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AGRIKM_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AGRIKM_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AGRIKM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AGRIKM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AGRIKM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AGRIKM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AGRIKM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AGRIKM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AGRIKM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AGRIKM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AGRIKM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AGRIKM_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AGRIKM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGRIKM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGRIKM_AUTO_MIGRATE" default:"false"`
}

// MailConfig selects the outbound email transport. Provider may force a
// specific transport ("sendgrid", "smtp", "log"); when empty the first
// configured transport wins, falling back to log-only delivery.
type MailConfig struct {
	Provider       string `envconfig:"AGRIKM_MAIL_PROVIDER"`
	From           string `envconfig:"AGRIKM_MAIL_FROM" default:"no-reply@agrikmzero.it"`
	FromName       string `envconfig:"AGRIKM_MAIL_FROM_NAME" default:"Agri KM Zero"`
	SendgridAPIKey string `envconfig:"AGRIKM_SENDGRID_API_KEY"`
	SMTPHost       string `envconfig:"AGRIKM_SMTP_HOST"`
	SMTPPort       int    `envconfig:"AGRIKM_SMTP_PORT" default:"587"`
	SMTPUser       string `envconfig:"AGRIKM_SMTP_USER"`
	SMTPPassword   string `envconfig:"AGRIKM_SMTP_PASSWORD"`
}

type GoogleMapsConfig struct {
	APIKey string `envconfig:"AGRIKM_GOOGLE_MAPS_API_KEY"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AGRIKM_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"AGRIKM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AGRIKM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"AGRIKM_GCS_BUCKET_NAME"`
	PublicURL   string `envconfig:"AGRIKM_GCS_PUBLIC_URL"`
	MaxUploadMB int    `envconfig:"AGRIKM_MAX_UPLOAD_MB" default:"10"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"AGRIKM_CART_TTL" default:"168h"`
}

type OrdersConfig struct {
	CreateMaxAttempts int           `envconfig:"AGRIKM_ORDERS_CREATE_MAX_ATTEMPTS" default:"3"`
	CreateBackoffBase time.Duration `envconfig:"AGRIKM_ORDERS_CREATE_BACKOFF_BASE" default:"500ms"`
}

type NotifyConfig struct {
	DispatchTimeout time.Duration `envconfig:"AGRIKM_NOTIFY_DISPATCH_TIMEOUT" default:"10s"`
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
