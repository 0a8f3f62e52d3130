package config

type Config interface {
	EnvConfig
	TransferConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetScheme() string
	GetBaseDomain() string
	GetIdentityURL() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	Transfer
}

func New() Config {
	return mainConfig{}
}
