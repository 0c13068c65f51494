package config

const (
	EnvPrefix = "MAKEITSELL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MAKEITSELL_DB_DSN"
	EnvDBHost = "MAKEITSELL_DB_HOST"
	EnvDBUser = "MAKEITSELL_DB_USER"
	EnvDBName = "MAKEITSELL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
