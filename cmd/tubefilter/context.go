package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	bbolt "go.etcd.io/bbolt"
	"go.uber.org/multierr"

	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/config"
	"github.com/haukened/tubefilter/internal/filter/repos/settings"
	"github.com/haukened/tubefilter/internal/filter/repos/settings/bolt"
)

type commandContext struct {
	dbFlag   *string
	logLevel *string

	configOnce sync.Once
	config     *config.AppConfig
	configErr  error
}

func newCommandContext(dbFlag, logLevel *string) *commandContext {
	return &commandContext{
		dbFlag:   dbFlag,
		logLevel: logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

func (c *commandContext) configureLogging() error {
	level := "warn"
	if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
		level = strings.TrimSpace(*c.logLevel)
	}
	if err := log.Configure("prod", level); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	return nil
}

func (c *commandContext) databasePath() (string, error) {
	if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
		return strings.TrimSpace(*c.dbFlag), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.SettingsDB, nil
}

// withRepository opens the settings database for the duration of fn.
func (c *commandContext) withRepository(fn func(*settings.Repository) error) (err error) {
	path, err := c.databasePath()
	if err != nil {
		return err
	}
	store, err := bolt.New(path)
	if err != nil {
		return wrapOpenError(err, path)
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()
	return fn(settings.NewRepository(store))
}

func wrapOpenError(err error, path string) error {
	if errors.Is(err, bbolt.ErrTimeout) {
		return fmt.Errorf("settings database %s is in use; stop tubefilterd or use its control API", path)
	}
	return err
}

func commandContextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
