package config

// EnvPrefix is empty because every variable carries the full SOCIALAI_ name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
)

// Environment variable names, kept as constants so tests stay in sync.
const (
	EnvAppEnv         = "SOCIALAI_APP_ENV"
	EnvPort           = "SOCIALAI_APP_PORT"
	EnvBackendBaseURL = "SOCIALAI_BACKEND_BASE_URL"
	EnvStoreDriver    = "SOCIALAI_STORE_DRIVER"
	EnvStoreFilePath  = "SOCIALAI_STORE_FILE_PATH"
	EnvDBPath         = "SOCIALAI_DB_PATH"
	EnvRedisURL       = "SOCIALAI_REDIS_URL"
	EnvRedisAddr      = "SOCIALAI_REDIS_ADDR"
)
