package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/derktes/ir-remote/config"
	"github.com/derktes/ir-remote/logging"
	"github.com/derktes/ir-remote/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.Discard()
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return logging.Discard()
	}
	return logger
}

func (c *commandContext) withStore(cmd *cobra.Command, fn func(context.Context, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := store.OpenBackend(ctx, cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, backend, c.logger(cmd))
	if err != nil {
		_ = backend.Close()
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
