package config

// EnvPrefix is passed to envconfig; each field carries a fully qualified
// envconfig tag so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical variable names, used by tests and deploy tooling.
const (
	EnvAppEnv                 = "WISHLANE_APP_ENV"
	EnvPort                   = "WISHLANE_APP_PORT"
	EnvDBDSN                  = "WISHLANE_DB_DSN"
	EnvRedisURL               = "WISHLANE_REDIS_URL"
	EnvJWTSecret              = "WISHLANE_JWT_SECRET"
	EnvJWTIssuer              = "WISHLANE_JWT_ISSUER"
	EnvJWTExpMins             = "WISHLANE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WISHLANE_REFRESH_TOKEN_TTL_MINUTES"
)
