package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "tabac"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "TABAC_DB_DSN"
	EnvDBHost = "TABAC_DB_HOST"
	EnvDBUser = "TABAC_DB_USER"
	EnvDBName = "TABAC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	SMTP          SMTPConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"TABAC_APP_ENV" required:"true"`
	Port         string `envconfig:"TABAC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TABAC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TABAC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TABAC_DB_DSN"`
	Driver string `envconfig:"TABAC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TABAC_DB_HOST"`
	LegacyPort     int    `envconfig:"TABAC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TABAC_DB_USER"`
	LegacyPassword string `envconfig:"TABAC_DB_PASSWORD"`
	LegacyName     string `envconfig:"TABAC_DB_NAME"`
	LegacySSLMode  string `envconfig:"TABAC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TABAC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TABAC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TABAC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TABAC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TABAC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TABAC_REDIS_ADDR"`
	Password     string        `envconfig:"TABAC_REDIS_PASSWORD"`
	DB           int           `envconfig:"TABAC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TABAC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TABAC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TABAC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TABAC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TABAC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TABAC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TABAC_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TABAC_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TABAC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TABAC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TABAC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TABAC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TABAC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TABAC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TABAC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TABAC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TABAC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TABAC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TABAC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"TABAC_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type SMTPConfig struct {
	Host     string `envconfig:"TABAC_SMTP_HOST"`
	Port     string `envconfig:"TABAC_SMTP_PORT" default:"587"`
	Username string `envconfig:"TABAC_SMTP_USERNAME"`
	Password string `envconfig:"TABAC_SMTP_PASSWORD"`
	From     string `envconfig:"TABAC_SMTP_FROM"`
	FromName string `envconfig:"TABAC_SMTP_FROM_NAME" default:"Tabac"`
}

// Configured reports whether outbound delivery credentials are present.
// When false the mailer logs instead of sending.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.Username != "" && s.Password != "" && s.From != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TABAC_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	SweepInterval    time.Duration `envconfig:"TABAC_CRON_SWEEP_INTERVAL" default:"1h"`
	CleanupRetention int           `envconfig:"TABAC_CRON_CLEANUP_RETENTION_DAYS" default:"30"`
	LockTTL          time.Duration `envconfig:"TABAC_CRON_LOCK_TTL" default:"2h"`
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
