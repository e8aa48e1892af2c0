package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/app"
	"github.com/nhle/notification-center/internal/cache"
	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/metrics"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
	"github.com/nhle/notification-center/internal/remote"
	"github.com/nhle/notification-center/internal/store"
)

// connector builds a notification service for the configured backend.
type connector struct {
	log     *zap.Logger
	metrics *metrics.Collectors
}

// backend is a notify.Service plus whatever else has to be closed with it.
type backend struct {
	*notify.Service
	closers []io.Closer
}

func (b *backend) Close() error {
	errs := []error{b.Service.Close()}
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (c *connector) connect(cfg model.AppConfig, apiKey string) (app.Backend, error) {
	return c.open(cfg, apiKey)
}

// open builds the service for cfg. An empty apiKey is looked up from the
// environment or keyring.
func (c *connector) open(cfg model.AppConfig, apiKey string) (*backend, error) {
	var (
		st      store.Store
		closers []io.Closer
	)

	switch cfg.Backend.Mode {
	case model.BackendLocal:
		local, err := store.NewSQLiteStore(cfg.Backend.LocalPath)
		if err != nil {
			return nil, err
		}
		st = local
		closers = append(closers, local)
	default:
		if apiKey == "" {
			key, err := credential.APIKey()
			if err != nil {
				return nil, fmt.Errorf("no api key configured: %w", err)
			}
			apiKey = key
		}
		client := remote.NewClient(remote.Options{
			BaseURL:     cfg.Backend.BaseURL,
			APIKey:      apiKey,
			AccessToken: credential.AccessToken(),
			Timeout:     time.Duration(cfg.Backend.TimeoutSec) * time.Second,
			MaxRetries:  cfg.Backend.MaxRetries,
			Logger:      c.log.Named("remote"),
		})
		st = remote.NewStore(client)
	}

	feeds, err := c.cache(cfg.Cache)
	if err != nil {
		for _, cl := range closers {
			cl.Close()
		}
		return nil, err
	}

	svc := notify.New(st,
		notify.WithCache(feeds),
		notify.WithLogger(c.log.Named("notify")),
		notify.WithMetrics(c.metrics),
	)
	return &backend{Service: svc, closers: closers}, nil
}

func (c *connector) cache(cfg model.CacheConfig) (notify.Cache, error) {
	if cfg.Driver != model.CacheRedis {
		return cache.NewMemory(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return cache.NewRedis(ctx, cache.RedisOptions{
		Addr:   cfg.RedisAddr,
		DB:     cfg.RedisDB,
		Prefix: cfg.Prefix,
	})
}
