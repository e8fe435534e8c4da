package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "ESTOQUE_APP_ENV"
	EnvPort       = "ESTOQUE_APP_PORT"
	EnvDBDSN      = "ESTOQUE_DB_DSN"
	EnvRedisURL   = "ESTOQUE_REDIS_URL"
	EnvJWTSecret  = "ESTOQUE_JWT_SECRET"
	EnvJWTIssuer  = "ESTOQUE_JWT_ISSUER"
	EnvJWTExpMins = "ESTOQUE_JWT_EXPIRATION_MINUTES"
	EnvMLBaseURL  = "ESTOQUE_ML_BASE_URL"
	EnvMLToken    = "ESTOQUE_ML_ACCESS_TOKEN"
)
