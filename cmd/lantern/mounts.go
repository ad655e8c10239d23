package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"mercator-hq/lantern/pkg/config"
	"mercator-hq/lantern/pkg/router"
	"mercator-hq/lantern/pkg/static"
	"mercator-hq/lantern/pkg/telemetry"
)

// mount is an opened static content mount.
type mount struct {
	config config.MountConfig
	source router.ContentSource
	closer io.Closer
	check  func(ctx context.Context) error
}

// openMounts opens the content source of every configured mount. On error
// the sources opened so far are closed.
func openMounts(cfgs []config.MountConfig, logger *slog.Logger) ([]*mount, error) {
	mounts := make([]*mount, 0, len(cfgs))
	for i, cfg := range cfgs {
		m, err := openMount(cfg, logger)
		if err != nil {
			closeMounts(mounts)
			return nil, fmt.Errorf("static.mounts[%d]: %w", i, err)
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}

func openMount(cfg config.MountConfig, logger *slog.Logger) (*mount, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		source, err := static.NewSQLiteSourceWithConfig(static.SQLiteSourceConfig{
			DBPath: cfg.Path,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		return &mount{
			config: cfg,
			source: source,
			closer: source,
			check: func(ctx context.Context) error {
				_, err := source.Count(ctx)
				return err
			},
		}, nil
	default:
		source, err := static.NewDirSource(cfg.Path, cfg.Watch, logger)
		if err != nil {
			return nil, err
		}
		return &mount{
			config: cfg,
			source: source,
			closer: source,
			check: func(ctx context.Context) error {
				info, err := os.Stat(cfg.Path)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", cfg.Path)
				}
				return nil
			},
		}, nil
	}
}

func closeMounts(mounts []*mount) error {
	var errs []error
	for _, m := range mounts {
		if err := m.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", m.config.Path, err))
		}
	}
	return errors.Join(errs...)
}

// newEndpoint builds the server endpoint: telemetry routes first, then one
// static route per mount in configuration order.
func newEndpoint(cfg *config.Config, tel *telemetry.Telemetry, mounts []*mount) *router.Endpoint {
	endpoint := router.NewEndpoint("", func(e *router.Endpoint) error {
		tel.RegisterRoutes(&e.Definitions)
		for _, m := range mounts {
			route := router.NewStaticRoute(m.config.Pattern, m.config.Root, m.source)
			route.SetIndexFile(cfg.Server.IndexFile)
			e.AddStaticRoute(route)
		}
		return nil
	})
	endpoint.SetLogger(tel.Logger().Slog().With("component", "router"))

	for i, m := range mounts {
		tel.Health().RegisterCheck(fmt.Sprintf("mount_%d", i), m.check)
	}
	return endpoint
}
