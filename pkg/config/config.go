package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "PANTRYPAL"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Gemini        GeminiConfig
	Media         MediaConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"PANTRYPAL_APP_ENV" required:"true"`
	Port         string `envconfig:"PANTRYPAL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PANTRYPAL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PANTRYPAL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PANTRYPAL_DB_DSN"`
	Driver string `envconfig:"PANTRYPAL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PANTRYPAL_DB_HOST"`
	Port     int    `envconfig:"PANTRYPAL_DB_PORT" default:"5432"`
	User     string `envconfig:"PANTRYPAL_DB_USER"`
	Password string `envconfig:"PANTRYPAL_DB_PASSWORD"`
	Name     string `envconfig:"PANTRYPAL_DB_NAME"`
	SSLMode  string `envconfig:"PANTRYPAL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PANTRYPAL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PANTRYPAL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PANTRYPAL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PANTRYPAL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PANTRYPAL_REDIS_URL"`
	Address      string        `envconfig:"PANTRYPAL_REDIS_ADDR"`
	Password     string        `envconfig:"PANTRYPAL_REDIS_PASSWORD"`
	DB           int           `envconfig:"PANTRYPAL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PANTRYPAL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PANTRYPAL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PANTRYPAL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PANTRYPAL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PANTRYPAL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PANTRYPAL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PANTRYPAL_JWT_ISSUER" default:"pantrypal"`
	ExpirationMinutes      int    `envconfig:"PANTRYPAL_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"PANTRYPAL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PANTRYPAL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PANTRYPAL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PANTRYPAL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PANTRYPAL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PANTRYPAL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PANTRYPAL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type GeminiConfig struct {
	APIKey          string        `envconfig:"PANTRYPAL_GEMINI_API_KEY"`
	Model           string        `envconfig:"PANTRYPAL_GEMINI_MODEL" default:"gemini-1.5-flash"`
	BaseURL         string        `envconfig:"PANTRYPAL_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	Timeout         time.Duration `envconfig:"PANTRYPAL_GEMINI_TIMEOUT" default:"60s"`
	MaxOutputTokens int           `envconfig:"PANTRYPAL_GEMINI_MAX_OUTPUT_TOKENS" default:"2048"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"PANTRYPAL_MAX_UPLOAD_MB" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PANTRYPAL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct {
		env   string
		value string
	}{
		{"PANTRYPAL_DB_HOST", db.Host},
		{"PANTRYPAL_DB_USER", db.User},
		{"PANTRYPAL_DB_NAME", db.Name},
	} {
		if pair.value == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either PANTRYPAL_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
