package config

const (
	// EnvPrefix namespaces every environment variable consumed by envconfig.
	EnvPrefix = "OAKLINE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "OAKLINE_DB_DSN"
	EnvDBHost = "OAKLINE_DB_HOST"
	EnvDBUser = "OAKLINE_DB_USER"
	EnvDBName = "OAKLINE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
