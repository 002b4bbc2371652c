package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tagwater/internal/catalog"
	"tagwater/internal/config"
	"tagwater/internal/ingest"
	"tagwater/internal/logging"
	"tagwater/internal/vault"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *slog.Logger
	store  *catalog.Store
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	verbose := c.verboseFlag != nil && *c.verboseFlag
	logger, err := logging.NewFromConfig(cfg, verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	c.logger = logger
	return logger, nil
}

// catalog opens the catalog once per invocation; close releases it.
func (c *commandContext) catalog() (*catalog.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) pipeline() (*ingest.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := c.catalog()
	if err != nil {
		return nil, err
	}
	v, err := vault.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	return ingest.New(store, v, logger), nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// errReported signals that the command already wrote its diagnostics to
// stderr and only the exit status remains.
var errReported = errors.New("failure already reported")

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
