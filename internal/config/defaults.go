package config

const (
	defaultVaultDir       = "~/.local/share/tagwater"
	defaultLogDir         = "~/.local/share/tagwater/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultCategory       = "default"
	defaultBusyTimeoutMS  = 5000
	defaultConfigPath     = "~/.config/tagwater/config.toml"
	projectConfigFileName = "tagwater.toml"
	vaultEnvVar           = "TAGWATER_VAULT"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VaultDir: defaultVaultDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Catalog: Catalog{
			DefaultCategory: defaultCategory,
			BusyTimeoutMS:   defaultBusyTimeoutMS,
		},
	}
}
