package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"iiifingest/internal/auth"
	"iiifingest/internal/client"
	"iiifingest/internal/config"
	"iiifingest/internal/ingest"
	"iiifingest/internal/joblog"
	"iiifingest/internal/logging"
	"iiifingest/internal/storage"
)

type commandContext struct {
	configFlag *string
	dryRunFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, dryRunFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, dryRunFlag: dryRunFlag}
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
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) dryRun() bool {
	return c.dryRunFlag != nil && *c.dryRunFlag
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

// buildClient wires the configured collaborators into a client. The
// returned cleanup closes the job log.
func (c *commandContext) buildClient(ctx context.Context) (*client.Client, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	credentials, err := auth.New(cfg.Auth, logger)
	if err != nil {
		return nil, nil, err
	}

	var store storage.Store
	if c.dryRun() {
		store = storage.NewMemoryStore()
	} else {
		s3Store, err := storage.NewS3Store(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		store = s3Store
	}

	var proxy *ingest.ProxySigner
	if cfg.Endpoints.ProxyURL != "" && !c.dryRun() {
		proxy, err = ingest.NewProxySigner(ctx, cfg.Endpoints.ProxyURL, cfg.Ingest.Environment, cfg.Endpoints.ProxyRegion)
		if err != nil {
			return nil, nil, err
		}
	}

	var jobLog *joblog.Store
	cleanup := func() {}
	if cfg.JobLog.Enabled && !c.dryRun() {
		jobLog, err = joblog.Open(cfg.JobLog.Path)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { _ = jobLog.Close() }
	}

	cl, err := client.New(client.Options{
		Config:      cfg,
		Store:       store,
		Credentials: credentials,
		Proxy:       proxy,
		JobLog:      jobLog,
		Logger:      logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return cl, cleanup, nil
}
