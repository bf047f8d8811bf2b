package config

type Config interface {
	EnvConfig
	CorsConfig
	SSOConfig
	GatewayConfig
	StoreConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	SSO
	Gateway
	Store
	Security
}

func New() Config {
	return mainConfig{}
}
