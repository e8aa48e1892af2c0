// Command notifications is the terminal inbox for member notifications.
package main

import (
	"context"
	"fmt"
	"net"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/app"
	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/logging"
	"github.com/nhle/notification-center/internal/metrics"
	"github.com/nhle/notification-center/internal/model"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	path := model.DefaultConfigPath()
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := serveMetrics(ctx, cfg.Metrics.Addr, log); err != nil {
		return err
	}

	c := &connector{
		log:     log,
		metrics: metrics.New(prometheus.DefaultRegisterer),
	}

	if len(os.Args) > 1 && os.Args[1] == "publish" {
		b, err := c.open(*cfg, "")
		if err != nil {
			return err
		}
		defer b.Close()
		return runPublish(ctx, b, os.Args[2:], os.Stdout)
	}

	root := app.New(app.Options{
		Config:     *cfg,
		ConfigPath: path,
		Connect:    c.connect,
		SaveAPIKey: func(key string) error {
			return credential.Set(credential.KeyAPIKey, key)
		},
		Logger: log,
	})

	final, err := tea.NewProgram(root, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	if m, ok := final.(app.Model); ok {
		if err := m.Close(); err != nil {
			log.Warn("closing backend", zap.Error(err))
		}
	}
	return nil
}

// serveMetrics exposes the service counters on addr in the background. An
// empty addr disables it.
func serveMetrics(ctx context.Context, addr string, log *zap.Logger) error {
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening for metrics on %s: %w", addr, err)
	}
	log.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := metrics.Serve(ctx, ln, prometheus.DefaultGatherer); err != nil {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}
