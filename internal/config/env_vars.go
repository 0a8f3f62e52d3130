package config

import "os"

const (
	appNameVar     = "APP_NAME"
	schemeEnvVar   = "APP_SCHEME"
	baseDomainVar  = "BASE_DOMAIN"
	identityURLVar = "IDENTITY_URL"
	folderEnvVar   = "FOLDER"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Dashlytic Client")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetScheme returns the protocol used when composing cross-tenant URLs
func (EnvVars) GetScheme() string {
	return GetEnv(schemeEnvVar, "http")
}

// GetBaseDomain returns the base (non-tenant) host, port included
// (e.g. "localhost:3000" or "app.example.com")
func (EnvVars) GetBaseDomain() string {
	return GetEnv(baseDomainVar, "localhost:3000")
}

// GetIdentityURL returns the base URL of the external identity service
func (EnvVars) GetIdentityURL() string {
	return GetEnv(identityURLVar, "http://localhost:8000/api/v1/auth")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
