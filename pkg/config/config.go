package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Realtime      RealtimeConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WISHLANE_APP_ENV" required:"true"`
	Port         string `envconfig:"WISHLANE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WISHLANE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WISHLANE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WISHLANE_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"WISHLANE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WISHLANE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WISHLANE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WISHLANE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WISHLANE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WISHLANE_REDIS_ADDR"`
	Password     string        `envconfig:"WISHLANE_REDIS_PASSWORD"`
	DB           int           `envconfig:"WISHLANE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WISHLANE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WISHLANE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WISHLANE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WISHLANE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WISHLANE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WISHLANE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WISHLANE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WISHLANE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WISHLANE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WISHLANE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WISHLANE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WISHLANE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WISHLANE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WISHLANE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WISHLANE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WISHLANE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WISHLANE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WISHLANE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WISHLANE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WISHLANE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type RealtimeConfig struct {
	ReadLimitBytes   int64         `envconfig:"WISHLANE_REALTIME_READ_LIMIT_BYTES" default:"65536"`
	SendBufferSize   int           `envconfig:"WISHLANE_REALTIME_SEND_BUFFER_SIZE" default:"32"`
	WriteTimeout     time.Duration `envconfig:"WISHLANE_REALTIME_WRITE_TIMEOUT" default:"10s"`
	PongTimeout      time.Duration `envconfig:"WISHLANE_REALTIME_PONG_TIMEOUT" default:"60s"`
	PingInterval     time.Duration `envconfig:"WISHLANE_REALTIME_PING_INTERVAL" default:"25s"`
	BridgeEnabled    bool          `envconfig:"WISHLANE_REALTIME_BRIDGE_ENABLED" default:"false"`
	BridgeChannelTag string        `envconfig:"WISHLANE_REALTIME_BRIDGE_CHANNEL_TAG" default:"wl"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WISHLANE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WISHLANE_AUTO_MIGRATE" default:"false"`
}
