// Command devbackend serves a local stand-in for the hosted notification
// backend over SQLite.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/credential"
	"github.com/nhle/notification-center/internal/devserver"
	"github.com/nhle/notification-center/internal/logging"
	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", model.DefaultConfigPath(), "config file")
	memory := flag.Bool("memory", false, "keep data in memory only")
	dev := flag.Bool("dev", false, "human-readable logs")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: *dev})
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	dbPath := cfg.DevServer.DBPath
	if *memory || dbPath == "" {
		dbPath = ":memory:"
	}
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DevServer.Seed {
		member := cfg.Member.ID
		if member == "" {
			member = "demo"
		}
		if err := store.SeedDemo(ctx, st, member, time.Now()); err != nil {
			return err
		}
		log.Info("seeded demo data", zap.String("member_id", member))
	}

	srv := devserver.New(st, devserver.Options{
		APIKey: os.Getenv(credential.EnvAPIKey),
		Logger: log,
	})
	return srv.Run(ctx, cfg.DevServer.Addr)
}
