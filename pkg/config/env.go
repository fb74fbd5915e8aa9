package config

const (
	EnvPrefix = "GREENGROCER"

	EnvAppEnv        = "GREENGROCER_APP_ENV"
	EnvPort          = "GREENGROCER_APP_PORT"
	EnvPublicOrigin  = "GREENGROCER_PUBLIC_ORIGIN"
	EnvAPIURL        = "GREENGROCER_API_URL"
	EnvChatbotURL    = "GREENGROCER_CHATBOT_URL"
	EnvStateBackend  = "GREENGROCER_STATE_BACKEND"
	EnvDBDSN         = "GREENGROCER_DB_DSN"
	EnvDBHost        = "GREENGROCER_DB_HOST"
	EnvDBUser        = "GREENGROCER_DB_USER"
	EnvDBName        = "GREENGROCER_DB_NAME"
	EnvRedisURL      = "GREENGROCER_REDIS_URL"
	EnvUseSQLite     = "GREENGROCER_USE_SQLITE"
	EnvGCPProjectID  = "GREENGROCER_GCP_PROJECT_ID"
	EnvPubSubEnabled = "GREENGROCER_PUBSUB_ENABLED"
	EnvRestoreCart   = "GREENGROCER_CHECKOUT_RESTORE_CART_ON_FAILURE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StateBackendRedis = "redis"
	StateBackendSQL   = "sql"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
