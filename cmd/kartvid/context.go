package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kartvid/internal/config"
	"kartvid/internal/emit"
	"kartvid/internal/kv"
	"kartvid/internal/logging"
	"kartvid/internal/masks"
	"kartvid/internal/pipeline"
	"kartvid/internal/racedb"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	catalogOnce sync.Once
	catalog     *masks.Catalog
	catalogErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
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
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor builds the logger once, writing console output to the
// command's stderr.
func (c *commandContext) loggerFor(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		errOut := cmd.ErrOrStderr()
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, errOut, shouldColorize(errOut))
	})
	return c.logger, c.loggerErr
}

// loadCatalog loads the configured mask directory once per invocation.
func (c *commandContext) loadCatalog(logger *slog.Logger) (*masks.Catalog, error) {
	c.catalogOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.catalogErr = err
			return
		}
		opts := pipeline.CatalogOptions(cfg)
		opts.Logger = logger
		c.catalog, c.catalogErr = masks.Load(cfg.Paths.MaskDir, opts)
		if c.catalogErr == nil {
			logger.Debug("mask catalog loaded",
				logging.String("mask_dir", cfg.Paths.MaskDir),
				logging.Int("masks", c.catalog.Len()),
			)
		}
	})
	return c.catalog, c.catalogErr
}

// runOptions assembles the shared pipeline options for processing commands.
// The returned cleanup releases the store and debug directory.
func (c *commandContext) runOptions(cmd *cobra.Command) (pipeline.Options, func(), error) {
	noop := func() {}
	cfg, err := c.ensureConfig()
	if err != nil {
		return pipeline.Options{}, noop, err
	}
	logger, err := c.loggerFor(cmd)
	if err != nil {
		return pipeline.Options{}, noop, err
	}
	catalog, err := c.loadCatalog(logger)
	if err != nil {
		return pipeline.Options{}, noop, fmt.Errorf("load masks: %w", err)
	}

	opts := pipeline.Options{
		Catalog: catalog,
		Params:  pipeline.ParamsFromConfig(cfg),
		Logger:  logger,
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Output.Store {
		store, err := racedb.Open(cfg)
		if err != nil {
			return opts, noop, fmt.Errorf("open run database: %w", err)
		}
		opts.Store = store
		closers = append(closers, func() { _ = store.Close() })
	}
	if cfg.Paths.DebugDir != "" {
		writer, err := emit.NewDebugFrameWriter(cfg.Paths.DebugDir)
		if err != nil {
			cleanup()
			return opts, noop, err
		}
		opts.FrameWriter = writer
		closers = append(closers, func() { _ = writer.Close() })
	}
	return opts, cleanup, nil
}

// useJSON reports whether records should be written as JSON lines.
func (c *commandContext) useJSON(jsonFlag bool) bool {
	if jsonFlag {
		return true
	}
	cfg, err := c.ensureConfig()
	return err == nil && cfg.Output.Format == "json"
}

// newEmitter returns the record emitter for w.
func newEmitter(w io.Writer, asJSON, color bool) kv.Emitter {
	if asJSON {
		return emit.NewJSONEmitter(w)
	}
	return emit.NewTextEmitter(w, color)
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
