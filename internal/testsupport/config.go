package testsupport

import (
	"path/filepath"
	"testing"

	"tagwater/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose vault and log directories live under a
// unique temp directory per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.VaultDir = filepath.Join(base, "vault")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Catalog.BusyTimeoutMS = 1000

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithDefaultCategory overrides the catalog's default tag category.
func WithDefaultCategory(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.DefaultCategory = name
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.VaultDir)
}
