package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/filedock/internal/bytesource"
	"github.com/dyluth/filedock/internal/config"
	"github.com/dyluth/filedock/internal/diag"
	"github.com/dyluth/filedock/internal/dispatch"
	dockerpkg "github.com/dyluth/filedock/internal/docker"
	"github.com/dyluth/filedock/internal/filetype"
	"github.com/dyluth/filedock/internal/handler"
	"github.com/dyluth/filedock/internal/logging"
	"github.com/dyluth/filedock/internal/plugins"
	"github.com/dyluth/filedock/internal/printer"
	"github.com/dyluth/filedock/internal/workspace"
	"github.com/dyluth/filedock/pkg/journal"
	"go.uber.org/zap"
)

// app is everything a command needs to classify and dispatch: the loaded
// configuration wired into a registry, catalog, workspace and loader.
type app struct {
	cfg    *config.FiledockConfig
	logger *zap.Logger

	registry  *filetype.Registry
	catalog   *handler.Catalog
	workspace *workspace.Workspace
	resolver  *dispatch.Resolver
	driver    *filetype.Driver
	loader    *dispatch.Loader

	mux     *bytesource.Mux
	closers []func() error
}

// loadConfig reads the configuration named by --config, $FILEDOCK_CONFIG or
// ./filedock.yml, using defaults when no file exists.
func loadConfig() (*config.FiledockConfig, error) {
	path := config.ResolvePath(configPath)
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"File": path},
			[]string{"Check the file against the template:\n  filedock init --force"},
		)
	}
	return cfg, nil
}

// openApp loads the configuration and builds an app from it.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(debug)
	if err != nil {
		return nil, err
	}

	var rec diag.Recorder
	if cfg.Journal != nil {
		jc, err := openJournal(ctx, cfg)
		if err != nil {
			return nil, err
		}
		rec = jc
	}
	return newApp(cfg, logger, rec)
}

// newApp wires cfg into a ready app. Events go to the logger and, when rec is
// non-nil, to the journal.
func newApp(cfg *config.FiledockConfig, logger *zap.Logger, rec diag.Recorder) (*app, error) {
	logger = logging.OrNop(logger)

	sinks := diag.Fanout{diag.NewLogSink(logger)}
	if rec != nil {
		sinks = append(sinks, diag.NewJournalSink(rec, logger))
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: filetype.NewRegistry(sinks, logger),
		catalog:  handler.NewCatalog(),
		mux:      bytesource.NewMux(&bytesource.FileSource{ReadTimeout: cfg.Sample.ReadTimeout}),
	}

	if err := plugins.InstallRecognizers(a.registry, cfg); err != nil {
		sinks.Close()
		return nil, err
	}
	if err := plugins.InstallHandlers(a.catalog, cfg); err != nil {
		sinks.Close()
		return nil, err
	}
	startup, err := plugins.StartupTask(a.catalog, cfg.StartupHandler)
	if err != nil {
		sinks.Close()
		return nil, err
	}

	a.workspace, err = workspace.New(workspace.Options{
		StartupTask: startup,
		RecentSize:  cfg.Workspace.RecentSize,
		Sink:        sinks,
		Logger:      logger,
	})
	if err != nil {
		sinks.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.workspace.Close)

	a.resolver = dispatch.NewResolver(a.workspace, a.catalog)
	a.driver = filetype.NewDriver(a.registry, a.mux, filetype.DriverOptions{
		MaxBytes: cfg.Sample.MaxBytes,
		Sink:     sinks,
		Logger:   logger,
	})
	a.loader = dispatch.NewLoader(a.driver, a.resolver, cfg.Workspace.Concurrency, logger)
	return a, nil
}

// ensureSources connects the sources that locators need beyond the local
// filesystem. The Docker daemon is only contacted for docker:// locators.
func (a *app) ensureSources(ctx context.Context, locators []string) error {
	if a.mux.Handles("docker") {
		return nil
	}
	for _, l := range locators {
		if scheme, _ := bytesource.Scheme(l); scheme != "docker" {
			continue
		}
		src, cli, err := dockerpkg.NewSource(ctx, a.cfg.Sample.ReadTimeout)
		if err != nil {
			return printer.Error(
				"cannot read docker:// locators",
				err.Error(),
				[]string{"Start Docker, or open files from the local filesystem"},
			)
		}
		a.mux.Handle("docker", src)
		a.closers = append(a.closers, cli.Close)
		return nil
	}
	return nil
}

// Close releases the workspace, journal and Docker client.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// openJournal connects to the journal configured in cfg.
func openJournal(ctx context.Context, cfg *config.FiledockConfig) (*journal.Client, error) {
	if cfg.Journal == nil {
		return nil, printer.Error(
			"no journal configured",
			"This command reads the event journal, which is not enabled.",
			[]string{
				"Add a journal section to filedock.yml:\n  journal:\n    redis_url: redis://localhost:6379/0",
				fmt.Sprintf("Or set %s", config.EnvRedisURL),
			},
		)
	}

	opts, err := cfg.Journal.RedisOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	jc, err := journal.NewClient(opts, cfg.Journal.Instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal client: %w", err)
	}

	if err := jc.Ping(ctx); err != nil {
		jc.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to the journal at %s", cfg.Journal.RedisURL),
			map[string]string{"Instance": cfg.Journal.Instance},
			[]string{"Check that Redis is running and journal.redis_url is correct"},
		)
	}
	return jc, nil
}
