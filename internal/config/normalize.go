package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeCatalog()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(vaultEnvVar); ok && strings.TrimSpace(value) != "" {
		c.Paths.VaultDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.VaultDir) == "" {
		c.Paths.VaultDir = defaultVaultDir
	}

	var err error
	if c.Paths.VaultDir, err = expandPath(c.Paths.VaultDir); err != nil {
		return fmt.Errorf("paths.vault_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.DefaultCategory = strings.TrimSpace(c.Catalog.DefaultCategory)
	if c.Catalog.DefaultCategory == "" {
		c.Catalog.DefaultCategory = defaultCategory
	}
	if c.Catalog.BusyTimeoutMS == 0 {
		c.Catalog.BusyTimeoutMS = defaultBusyTimeoutMS
	}
}
